package automaton

import (
	"github.com/emirpasic/gods/sets/treeset"
	"github.com/emirpasic/gods/stacks/arraystack"
)

// Determinize returns a deterministic automaton equivalent to a. When a is already
// deterministic the result is a structural copy, so Determinize is idempotent.
//
// The states of the result are subsets of the states of a (of an enumerated copy of
// a when a is not enumerated), identified by the merged labels of their members. A
// subset is accepting iff it contains an accepting state, and it carries the labels
// of every accepting member.
func Determinize(a *Automaton) *Automaton {
	if a.IsDeterministic() {
		return a.Copy()
	}
	src := a
	if !src.IsEnumerated() {
		src = a.Copy().Enumerate()
	}

	closures := make(map[State]StateSet, len(src.states))
	for s := range src.states {
		c := StateSet{}
		src.epsilonClosure(s, c)
		closures[s] = c
	}

	// Every member of src carries a distinct single label, so the merged labels of a
	// subset identify its members.
	initialSet := closures[src.initial]
	d := New(merge(initialSet))
	d.alphabet = src.Alphabet()
	members := map[State]StateSet{
		d.initial: initialSet,
	}

	stack := arraystack.New()
	stack.Push(d.initial)
	for !stack.Empty() {
		v, _ := stack.Pop()
		current := v.(State)
		set := members[current]
		for _, sym := range leavingSymbols(src, set) {
			next := StateSet{}
			for m := range set {
				succ := src.transitions[m][sym]
				if sym != Any && len(succ) == 0 {
					succ = src.transitions[m][Any]
				}
				for t := range succ {
					for c := range closures[t] {
						next.add(c)
					}
				}
			}
			if len(next) == 0 {
				continue
			}
			target := merge(next)
			d.AddTransition(current, sym, target)
			if _, ok := members[target]; ok {
				continue
			}
			members[target] = next
			stack.Push(target)
		}
	}

	for s, set := range members {
		for _, m := range set.Sorted() {
			if !src.finals.Has(m) {
				continue
			}
			d.AddFinal(s, src.labels[m]...)
		}
	}

	tracer().Debugf("determinize: %v states -> %v states (%v final)", src.StateCount(), d.StateCount(), len(d.finals))

	return d
}

// merge returns the state whose labels are the union of the labels of set.
func merge(set StateSet) State {
	labels := treeset.NewWithIntComparator()
	for s := range set {
		for _, l := range s.Labels() {
			labels.Add(l)
		}
	}
	return stateFromLabelSet(labels)
}

// leavingSymbols returns the non-epsilon symbols leaving any member of set.
func leavingSymbols(a *Automaton, set StateSet) []Symbol {
	syms := Alphabet{}
	for s := range set {
		for sym, succ := range a.transitions[s] {
			if sym == Epsilon || len(succ) == 0 {
				continue
			}
			syms.add(sym)
		}
	}
	return syms.Sorted()
}
