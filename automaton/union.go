package automaton

// Union returns a nondeterministic automaton recognizing the union of the languages
// of a and b. The result has a fresh initial state 0 with epsilon transitions to the
// initial states of a, shifted by 1, and b, shifted by |a.states|+1. Neither input is
// modified; an input that is not densely enumerated is enumerated on a copy first.
//
// Left-folding Union over a list of automata yields one automaton for all of them.
// The folding order changes the state numbering only.
func Union(a, b *Automaton) *Automaton {
	if !a.IsEnumerated() {
		a = a.Copy().Enumerate()
	}
	if !b.IsEnumerated() {
		b = b.Copy().Enumerate()
	}

	u := New(NewState(0))
	offsetA := 1
	offsetB := a.StateCount() + 1
	copyShifted(u, a, offsetA)
	copyShifted(u, b, offsetB)
	u.AddTransition(u.initial, Epsilon, shift(a.initial, offsetA))
	u.AddTransition(u.initial, Epsilon, shift(b.initial, offsetB))

	tracer().Debugf("union: %v + %v states -> %v states", a.StateCount(), b.StateCount(), u.StateCount())

	return u
}

func copyShifted(dst, src *Automaton, offset int) {
	for s := range src.states {
		dst.AddState(shift(s, offset))
	}
	for sym := range src.alphabet {
		dst.alphabet.add(sym)
	}
	for from, row := range src.transitions {
		for sym, succ := range row {
			for to := range succ {
				dst.AddTransition(shift(from, offset), sym, shift(to, offset))
			}
		}
	}
	for s := range src.finals {
		dst.AddFinal(shift(s, offset), src.labels[s]...)
	}
}

func shift(s State, offset int) State {
	labels := s.Labels()
	for i := range labels {
		labels[i] += offset
	}
	return NewState(labels...)
}
