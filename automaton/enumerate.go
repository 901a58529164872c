package automaton

// Enumerate renumbers the states of a in place: the initial state becomes 0 and the
// remaining states become 1..n-1, ordered by their smallest label and then by their
// full label sequence. Transitions, final states and labels are rewritten
// accordingly. Enumerate returns its receiver; callers that still need the original
// numbering must Copy first.
func (a *Automaton) Enumerate() *Automaton {
	order := make([]State, 0, len(a.states))
	for s := range a.states {
		if s == a.initial {
			continue
		}
		order = append(order, s)
	}
	sortStates(order)

	ids := make(map[State]State, len(a.states))
	ids[a.initial] = NewState(0)
	for i, s := range order {
		ids[s] = NewState(i + 1)
	}

	states := make(StateSet, len(a.states))
	transitions := make(map[State]map[Symbol]StateSet, len(a.transitions))
	for s := range a.states {
		states.add(ids[s])
		row := map[Symbol]StateSet{}
		for sym, succ := range a.transitions[s] {
			r := make(StateSet, len(succ))
			for t := range succ {
				r.add(ids[t])
			}
			row[sym] = r
		}
		transitions[ids[s]] = row
	}
	finals := make(StateSet, len(a.finals))
	labels := make(map[State][]string, len(a.labels))
	for s := range a.finals {
		finals.add(ids[s])
		if ks, ok := a.labels[s]; ok {
			labels[ids[s]] = ks
		}
	}

	a.initial = ids[a.initial]
	a.states = states
	a.transitions = transitions
	a.finals = finals
	a.labels = labels

	return a
}
