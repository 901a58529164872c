package lexical

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/nihei9/lltab/automaton"
	"github.com/nihei9/lltab/spec"
	mlspec "github.com/nihei9/maleeni/spec"
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'lltab.lexical'.
func tracer() tracing.Trace {
	return tracing.Select("lltab.lexical")
}

type compileConfig struct {
	parallel       bool
	skipWhitespace bool
}

type CompileOption func(config *compileConfig)

// Parallel builds the automata of the token kinds concurrently.
func Parallel() CompileOption {
	return func(config *compileConfig) {
		config.parallel = true
	}
}

// SkipWhitespace controls whether the initial state of the result loops on white
// space characters, so that a lexer driven by it skips white space between tokens.
// It is enabled by default.
func SkipWhitespace(skip bool) CompileOption {
	return func(config *compileConfig) {
		config.skipWhitespace = skip
	}
}

// Validate checks the token kinds of specs: there must be at least one, no kind may
// be defined twice, and no two kinds may differ only in spelling (`left_paren` and
// `LeftParen`).
func Validate(specs []spec.TokenSpec) error {
	if len(specs) == 0 {
		return ErrNoTokenSpec
	}

	var kinds []string
	seen := map[string]struct{}{}
	for _, s := range specs {
		if _, ok := seen[s.KindName()]; ok {
			return fmt.Errorf("%w: %v", ErrDuplicateKind, s.KindName())
		}
		seen[s.KindName()] = struct{}{}
		kinds = append(kinds, s.KindName())
	}

	duplicated := mlspec.FindSpellingInconsistencies(kinds)
	if len(duplicated) > 0 {
		var b strings.Builder
		fmt.Fprintf(&b, "%v", strings.Join(duplicated[0], ", "))
		for _, dup := range duplicated[1:] {
			fmt.Fprintf(&b, "; %v", strings.Join(dup, ", "))
		}
		return fmt.Errorf("%w: %v", ErrSpellingInconsistency, b.String())
	}

	return nil
}

// Compile turns the token specifications into one enumerated deterministic automaton.
// The automata of the token kinds are united by a left fold in the order of specs,
// determinized and enumerated. The kinds of a final state are ordered by the position
// of their specification in specs, so the first kind is the one declared first.
//
// A token kind whose specification is malformed is reported in the returned
// CompileErrors and left out; the other kinds are still compiled. The error is
// non-nil whenever the result is incomplete.
func Compile(specs []spec.TokenSpec, opts ...CompileOption) (*automaton.Automaton, error, []*CompileError) {
	config := &compileConfig{
		skipWhitespace: true,
	}
	for _, opt := range opts {
		opt(config)
	}

	err := Validate(specs)
	if err != nil {
		return nil, fmt.Errorf("invalid lexical specification: %w", err), nil
	}

	automata := make([]*automaton.Automaton, len(specs))
	cerrs := make([]*CompileError, len(specs))
	build := func(i int) {
		a, err := Build(specs[i])
		if err != nil {
			cerr, ok := err.(*CompileError)
			if !ok {
				cerr = &CompileError{
					Kind:  specs[i].KindName(),
					Cause: err,
				}
			}
			cerrs[i] = cerr
			return
		}
		automata[i] = a
	}
	if config.parallel {
		var wg sync.WaitGroup
		for i := range specs {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				build(i)
			}(i)
		}
		wg.Wait()
	} else {
		for i := range specs {
			build(i)
		}
	}

	var errs []*CompileError
	var nfa *automaton.Automaton
	for i, a := range automata {
		if cerrs[i] != nil {
			tracer().Errorf("%v", cerrs[i])
			errs = append(errs, cerrs[i])
			continue
		}
		if nfa == nil {
			nfa = a
			continue
		}
		nfa = automaton.Union(nfa, a)
	}
	if nfa == nil {
		return nil, fmt.Errorf("compile error: no token kind could be compiled"), errs
	}
	if len(specs)-len(errs) == 1 {
		// A lone kind still gets a fresh initial state, so no transition of the kind
		// leads back to the state the white space loops are put on.
		nfa = automaton.Union(nfa, automaton.New(automaton.NewState(0)))
	}

	dfa := automaton.Determinize(nfa).Enumerate()
	orderLabels(dfa, specs)
	if config.skipWhitespace {
		patchWhitespace(dfa)
	}

	tracer().Infof("compiled %v token kinds: %v states, %v final states", len(specs)-len(errs), dfa.StateCount(), len(dfa.Finals()))

	if len(errs) > 0 {
		return dfa, fmt.Errorf("compile error: %v of %v token kinds failed", len(errs), len(specs)), errs
	}
	return dfa, nil, nil
}

// orderLabels sorts the kinds of every final state by declaration order.
func orderLabels(a *automaton.Automaton, specs []spec.TokenSpec) {
	priority := make(map[string]int, len(specs))
	for i, s := range specs {
		priority[s.KindName()] = i
	}
	for _, s := range a.Finals() {
		kinds := a.Labels(s)
		sort.SliceStable(kinds, func(i, j int) bool {
			return priority[kinds[i]] < priority[kinds[j]]
		})
		a.SetLabels(s, kinds)
	}
}

// patchWhitespace adds a self-loop on the initial state for every white space
// character that has no transition from it.
func patchWhitespace(a *automaton.Automaton) {
	initial := a.Initial()
	for _, c := range automaton.Whitespace() {
		if len(a.Successors(initial, c)) > 0 {
			continue
		}
		a.AddTransition(initial, c, initial)
	}
}
