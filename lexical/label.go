package lexical

import (
	"github.com/nihei9/lltab/automaton"
	"github.com/nihei9/lltab/automaton/serial"
	"github.com/nihei9/lltab/spec"
	spec_grammar "github.com/nihei9/lltab/spec/grammar"
)

// NewLabelTable returns the label table of a compiled automaton. Kinds lists the
// token kinds of specs in declaration order.
func NewLabelTable(dfa *automaton.Automaton, specs []spec.TokenSpec) (*spec_grammar.LabelTable, error) {
	if !dfa.IsEnumerated() {
		return nil, serial.ErrNotEnumerated
	}
	tab := &spec_grammar.LabelTable{
		Labels: map[int][]string{},
	}
	for _, s := range specs {
		tab.Kinds = append(tab.Kinds, s.KindName())
	}
	for _, s := range dfa.Finals() {
		id, _ := s.ID()
		tab.Labels[id] = append([]string{}, dfa.Labels(s)...)
	}
	fp, err := tab.GenFingerprint()
	if err != nil {
		return nil, err
	}
	tab.Fingerprint = fp
	return tab, nil
}
