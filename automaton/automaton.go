package automaton

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'lltab.automaton'.
func tracer() tracing.Trace {
	return tracing.Select("lltab.automaton")
}

// Automaton is a finite automaton over Symbol. It may be nondeterministic (epsilon
// transitions or several successors for one symbol) until it passes through
// Determinize.
type Automaton struct {
	initial     State
	states      StateSet
	alphabet    Alphabet
	transitions map[State]map[Symbol]StateSet
	finals      StateSet
	labels      map[State][]string
}

// New returns an automaton consisting of the initial state only.
func New(initial State) *Automaton {
	a := &Automaton{
		initial:     initial,
		states:      StateSet{},
		alphabet:    Alphabet{},
		transitions: map[State]map[Symbol]StateSet{},
		finals:      StateSet{},
		labels:      map[State][]string{},
	}
	a.AddState(initial)
	return a
}

// AddState registers s. Every registered state owns a (possibly empty) row in the
// transition table.
func (a *Automaton) AddState(s State) {
	if !a.states.add(s) {
		return
	}
	a.transitions[s] = map[Symbol]StateSet{}
}

// AddTransition adds the edge from --sym--> to, registering both states.
func (a *Automaton) AddTransition(from State, sym Symbol, to State) {
	a.AddState(from)
	a.AddState(to)
	a.alphabet.add(sym)
	row := a.transitions[from]
	succ, ok := row[sym]
	if !ok {
		succ = StateSet{}
		row[sym] = succ
	}
	succ.add(to)
}

// AddFinal marks s as accepting and tags it with token kinds. Kinds already present
// are not repeated; the order of first appearance is kept.
func (a *Automaton) AddFinal(s State, kinds ...string) {
	a.AddState(s)
	a.finals.add(s)
	ks := a.labels[s]
	for _, k := range kinds {
		if containsKind(ks, k) {
			continue
		}
		ks = append(ks, k)
	}
	a.labels[s] = ks
}

func containsKind(kinds []string, kind string) bool {
	for _, k := range kinds {
		if k == kind {
			return true
		}
	}
	return false
}

// Initial returns the initial state.
func (a *Automaton) Initial() State {
	return a.initial
}

// States returns all states ordered by smallest label.
func (a *Automaton) States() []State {
	return a.states.Sorted()
}

// StateCount returns the number of states.
func (a *Automaton) StateCount() int {
	return len(a.states)
}

// HasState reports whether s belongs to the automaton.
func (a *Automaton) HasState(s State) bool {
	return a.states.Has(s)
}

// Alphabet returns the input symbols, without Epsilon.
func (a *Automaton) Alphabet() Alphabet {
	c := make(Alphabet, len(a.alphabet))
	for s := range a.alphabet {
		c[s] = struct{}{}
	}
	return c
}

// Finals returns the accepting states ordered by smallest label.
func (a *Automaton) Finals() []State {
	return a.finals.Sorted()
}

// IsFinal reports whether s is accepting.
func (a *Automaton) IsFinal(s State) bool {
	return a.finals.Has(s)
}

// Labels returns the token kinds of an accepting state.
func (a *Automaton) Labels(s State) []string {
	return append([]string{}, a.labels[s]...)
}

// SetLabels replaces the token kinds of an accepting state.
func (a *Automaton) SetLabels(s State, kinds []string) {
	if !a.finals.Has(s) {
		return
	}
	a.labels[s] = append([]string{}, kinds...)
}

// Successors returns the states reachable from s by reading sym, without following
// epsilon transitions or falling back to Any.
func (a *Automaton) Successors(s State, sym Symbol) []State {
	succ, ok := a.transitions[s][sym]
	if !ok {
		return nil
	}
	return succ.Sorted()
}

// Symbols returns the symbols leaving s, including Epsilon when present.
func (a *Automaton) Symbols(s State) []Symbol {
	row := a.transitions[s]
	syms := make([]Symbol, 0, len(row))
	for sym, succ := range row {
		if len(succ) == 0 {
			continue
		}
		syms = append(syms, sym)
	}
	sortSymbols(syms)
	return syms
}

// Edge is one transition of an automaton.
type Edge struct {
	From   State
	Symbol Symbol
	To     State
}

// Edges returns every transition, sorted by source state, then symbol, then target.
func (a *Automaton) Edges() []Edge {
	var edges []Edge
	for _, from := range a.States() {
		for _, sym := range a.Symbols(from) {
			for _, to := range a.transitions[from][sym].Sorted() {
				edges = append(edges, Edge{
					From:   from,
					Symbol: sym,
					To:     to,
				})
			}
		}
	}
	return edges
}

// IsDeterministic reports whether a has no epsilon transition and no state with
// more than one successor for a single symbol.
func (a *Automaton) IsDeterministic() bool {
	for _, row := range a.transitions {
		if len(row[Epsilon]) > 0 {
			return false
		}
		for _, succ := range row {
			if len(succ) > 1 {
				return false
			}
		}
	}
	return true
}

// IsEnumerated reports whether the states are labelled densely 0..n-1 with the
// initial state at 0.
func (a *Automaton) IsEnumerated() bool {
	if id, ok := a.initial.ID(); !ok || id != 0 {
		return false
	}
	seen := make([]bool, len(a.states))
	for s := range a.states {
		id, ok := s.ID()
		if !ok || id < 0 || id >= len(seen) || seen[id] {
			return false
		}
		seen[id] = true
	}
	return true
}

// Copy returns a structural copy of a.
func (a *Automaton) Copy() *Automaton {
	c := &Automaton{
		initial:     a.initial,
		states:      a.states.copy(),
		alphabet:    a.Alphabet(),
		transitions: make(map[State]map[Symbol]StateSet, len(a.transitions)),
		finals:      a.finals.copy(),
		labels:      make(map[State][]string, len(a.labels)),
	}
	for s, row := range a.transitions {
		r := make(map[Symbol]StateSet, len(row))
		for sym, succ := range row {
			r[sym] = succ.copy()
		}
		c.transitions[s] = r
	}
	for s, ks := range a.labels {
		c.labels[s] = append([]string{}, ks...)
	}
	return c
}

// Equal reports whether a and b are structurally identical, including state
// identities and the order of labels.
func (a *Automaton) Equal(b *Automaton) bool {
	if a.initial != b.initial || len(a.states) != len(b.states) || len(a.finals) != len(b.finals) {
		return false
	}
	if len(a.alphabet) != len(b.alphabet) {
		return false
	}
	for sym := range a.alphabet {
		if !b.alphabet.Has(sym) {
			return false
		}
	}
	for s := range a.states {
		if !b.states.Has(s) {
			return false
		}
		if !equalRows(a.transitions[s], b.transitions[s]) {
			return false
		}
	}
	for s := range a.finals {
		if !b.finals.Has(s) {
			return false
		}
		la, lb := a.labels[s], b.labels[s]
		if len(la) != len(lb) {
			return false
		}
		for i := range la {
			if la[i] != lb[i] {
				return false
			}
		}
	}
	return true
}

func equalRows(r1, r2 map[Symbol]StateSet) bool {
	count := func(r map[Symbol]StateSet) int {
		n := 0
		for _, succ := range r {
			if len(succ) > 0 {
				n++
			}
		}
		return n
	}
	if count(r1) != count(r2) {
		return false
	}
	for sym, succ := range r1 {
		if len(succ) == 0 {
			continue
		}
		other := r2[sym]
		if len(other) != len(succ) {
			return false
		}
		for s := range succ {
			if !other.Has(s) {
				return false
			}
		}
	}
	return true
}

// step returns the successors of s on the character c: the explicit transitions
// when there are any, the wildcard transitions otherwise.
func (a *Automaton) step(s State, c Symbol) StateSet {
	row := a.transitions[s]
	if succ, ok := row[c]; ok && len(succ) > 0 {
		return succ
	}
	return row[Any]
}

// Accepts runs input through the automaton. It reports whether the automaton ends in
// an accepting state and, if so, the token kinds of the accepting states reached.
func (a *Automaton) Accepts(input string) ([]string, bool) {
	current := a.closure(newStateSet(a.initial))
	for _, c := range input {
		next := StateSet{}
		for s := range current {
			for t := range a.step(s, Symbol(c)) {
				next.add(t)
			}
		}
		if len(next) == 0 {
			return nil, false
		}
		current = a.closure(next)
	}

	var kinds []string
	accepted := false
	for _, s := range current.Sorted() {
		if !a.finals.Has(s) {
			continue
		}
		accepted = true
		for _, k := range a.labels[s] {
			if !containsKind(kinds, k) {
				kinds = append(kinds, k)
			}
		}
	}
	return kinds, accepted
}

// closure returns the states reachable from any member of set through epsilon
// transitions, set included.
func (a *Automaton) closure(set StateSet) StateSet {
	c := StateSet{}
	for s := range set {
		a.epsilonClosure(s, c)
	}
	return c
}

// epsilonClosure adds s and every state reachable from it through epsilon
// transitions to visited. The visited set guards against epsilon cycles.
func (a *Automaton) epsilonClosure(s State, visited StateSet) {
	if !visited.add(s) {
		return
	}
	for t := range a.transitions[s][Epsilon] {
		a.epsilonClosure(t, visited)
	}
}
