package grammar

import (
	"github.com/nihei9/lltab/compressor"
	spec "github.com/nihei9/lltab/spec/grammar"
)

// Compile derives the LL(1) table of g and packs it into the artifact format.
func Compile(name string, g *Grammar) (*spec.CompiledGrammar, error) {
	tab, err := GenParsingTable(g)
	if err != nil {
		return nil, err
	}
	syn, err := tab.Spec()
	if err != nil {
		return nil, err
	}
	return &spec.CompiledGrammar{
		Name:      name,
		Syntactic: syn,
	}, nil
}

// Spec converts the table into its artifact form with a compressed matrix and a
// fingerprint.
func (t *ParsingTable) Spec() (*spec.ParsingTable, error) {
	orig, err := compressor.NewOriginalTable(t.Matrix(), len(t.Terminals))
	if err != nil {
		return nil, err
	}
	comp := compressor.NewTable(spec.RuleIDNil)
	err = comp.Compress(orig)
	if err != nil {
		return nil, err
	}

	rules := make([]*spec.Rule, len(t.Rules))
	for i, r := range t.Rules {
		rules[i] = &spec.Rule{
			ID:   r.ID,
			Head: r.Head,
			Body: append([]string{}, r.Body...),
		}
	}
	entries := make([]*spec.Entry, len(t.Entries))
	for i, e := range t.Entries {
		entries[i] = &spec.Entry{
			NonTerminal: e.NonTerminal,
			Lookahead:   e.Lookahead,
			Rule:        e.RuleID,
		}
	}

	syn := &spec.ParsingTable{
		Start:        t.Start,
		NonTerminals: append([]string{}, t.NonTerminals...),
		Terminals:    append([]string{}, t.Terminals...),
		EndMarker:    EndMarker,
		Rules:        rules,
		Entries:      entries,
		Compressed:   comp,
	}
	syn.Fingerprint, err = syn.GenFingerprint()
	if err != nil {
		return nil, err
	}

	tracer().Debugf("compressed %vx%v cells into %v", len(t.NonTerminals), len(t.Terminals), comp.Size())

	return syn, nil
}
