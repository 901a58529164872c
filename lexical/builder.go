package lexical

import (
	"fmt"
	"unicode/utf8"

	"github.com/nihei9/lltab/automaton"
	"github.com/nihei9/lltab/spec"
)

// Build returns the automaton of one token specification. Every accepting state is
// labelled with the token kind.
//
// A literal token becomes one chain of states per string, all starting from state 0.
// An explicit token keeps its state numbers; its transition symbols are expanded:
// a single character, an inclusive range `X-Y`, `\c` for every lowercase letter of
// the addressable character space, `\d` for every decimal digit, and `\.` for the
// wildcard, which stays a single transition.
func Build(tok spec.TokenSpec) (*automaton.Automaton, error) {
	switch t := tok.(type) {
	case *spec.LiteralToken:
		return buildLiteral(t)
	case *spec.ExplicitToken:
		return buildExplicit(t)
	}
	return nil, &CompileError{
		Kind:   tok.KindName(),
		Cause:  ErrMalformedSpecification,
		Detail: fmt.Sprintf("unknown token specification %T", tok),
	}
}

func buildLiteral(tok *spec.LiteralToken) (*automaton.Automaton, error) {
	if len(tok.Strings) == 0 {
		return nil, &CompileError{
			Kind:   tok.Kind,
			Cause:  ErrMalformedSpecification,
			Detail: "no literal",
		}
	}

	root := automaton.NewState(0)
	a := automaton.New(root)
	next := 1
	for _, s := range tok.Strings {
		if s == "" {
			return nil, &CompileError{
				Kind:   tok.Kind,
				Cause:  ErrMalformedSpecification,
				Detail: "empty literal",
			}
		}
		from := root
		for _, c := range s {
			if !isAddressable(c) {
				return nil, &CompileError{
					Kind:   tok.Kind,
					Cause:  ErrMalformedSpecification,
					Detail: fmt.Sprintf("character %U of %q is outside the addressable space", c, s),
				}
			}
			to := automaton.NewState(next)
			next++
			a.AddTransition(from, automaton.Symbol(c), to)
			from = to
		}
		a.AddFinal(from, tok.Kind)
	}

	tracer().Debugf("%v: %v literals, %v states", tok.Kind, len(tok.Strings), a.StateCount())

	return a, nil
}

func buildExplicit(tok *spec.ExplicitToken) (*automaton.Automaton, error) {
	a := automaton.New(automaton.NewState(0))
	for _, t := range tok.Transitions {
		if t.From < 0 || t.To < 0 {
			return nil, &CompileError{
				Kind:   tok.Kind,
				Cause:  ErrMalformedSpecification,
				Detail: fmt.Sprintf("negative state in [%v, %q, %v]", t.From, t.Symbol, t.To),
			}
		}
		syms, err := expandSymbol(t.Symbol)
		if err != nil {
			return nil, &CompileError{
				Kind:   tok.Kind,
				Cause:  err,
				Detail: t.Symbol,
			}
		}
		for _, sym := range syms {
			a.AddTransition(automaton.NewState(t.From), sym, automaton.NewState(t.To))
		}
	}
	for _, f := range tok.Finals {
		if f < 0 {
			return nil, &CompileError{
				Kind:   tok.Kind,
				Cause:  ErrMalformedSpecification,
				Detail: fmt.Sprintf("negative final state %v", f),
			}
		}
		a.AddFinal(automaton.NewState(f), tok.Kind)
	}

	tracer().Debugf("%v: %v transitions, %v states", tok.Kind, len(tok.Transitions), a.StateCount())

	return a, nil
}

func expandSymbol(sym string) ([]automaton.Symbol, error) {
	switch sym {
	case `\c`:
		return automaton.LowercaseLetters(), nil
	case `\d`:
		return automaton.Digits(), nil
	case `\.`:
		return []automaton.Symbol{automaton.Any}, nil
	}

	if !utf8.ValidString(sym) {
		return nil, ErrMalformedSpecification
	}
	rs := []rune(sym)
	switch {
	case len(rs) == 1:
		if !isAddressable(rs[0]) {
			return nil, ErrMalformedSpecification
		}
		return []automaton.Symbol{automaton.Symbol(rs[0])}, nil
	case len(rs) == 3 && rs[1] == '-':
		from, to := rs[0], rs[2]
		if !isAddressable(from) || !isAddressable(to) || from > to {
			return nil, ErrMalformedSpecification
		}
		syms := make([]automaton.Symbol, 0, to-from+1)
		for c := from; c <= to; c++ {
			syms = append(syms, automaton.Symbol(c))
		}
		return syms, nil
	}
	return nil, ErrMalformedSpecification
}

func isAddressable(c rune) bool {
	return automaton.Symbol(c) >= automaton.CharMin && automaton.Symbol(c) <= automaton.CharMax
}
