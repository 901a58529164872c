package automaton

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/emirpasic/gods/sets/treeset"
)

// State identifies an automaton state by the set of labels merged into it.
// A state built by one token builder carries a single label; subset construction
// merges the labels of all member states. Two states are equal iff their label
// sets are equal, so State values are comparable and usable as map keys.
type State struct {
	// key holds the labels in ascending order, separated by '+'.
	key string
}

// NewState returns the state made of the given labels. Duplicates are ignored.
func NewState(labels ...int) State {
	if len(labels) == 0 {
		return State{}
	}
	ls := append([]int{}, labels...)
	sort.Ints(ls)
	var b strings.Builder
	last := 0
	for i, l := range ls {
		if i > 0 {
			if l == last {
				continue
			}
			b.WriteByte('+')
		}
		b.WriteString(strconv.Itoa(l))
		last = l
	}
	return State{
		key: b.String(),
	}
}

func stateFromLabelSet(set *treeset.Set) State {
	labels := make([]int, 0, set.Size())
	for _, v := range set.Values() {
		labels = append(labels, v.(int))
	}
	return NewState(labels...)
}

// IsNil reports whether the state carries no label.
func (s State) IsNil() bool {
	return s.key == ""
}

// Labels returns the labels of the state in ascending order.
func (s State) Labels() []int {
	if s.key == "" {
		return nil
	}
	parts := strings.Split(s.key, "+")
	labels := make([]int, len(parts))
	for i, p := range parts {
		// The key is produced by NewState only.
		labels[i], _ = strconv.Atoi(p)
	}
	return labels
}

// Min returns the smallest label of the state.
func (s State) Min() int {
	labels := s.Labels()
	if len(labels) == 0 {
		return -1
	}
	return labels[0]
}

// ID returns the label of a single-label state. The second result is false when
// the state has been merged from several labels.
func (s State) ID() (int, bool) {
	labels := s.Labels()
	if len(labels) != 1 {
		return 0, false
	}
	return labels[0], true
}

func (s State) String() string {
	return fmt.Sprintf("{%v}", strings.ReplaceAll(s.key, "+", ","))
}

// less orders states by their smallest label, then by the full label sequence.
func (s State) less(t State) bool {
	ls := s.Labels()
	lt := t.Labels()
	for i := 0; i < len(ls) && i < len(lt); i++ {
		if ls[i] != lt[i] {
			return ls[i] < lt[i]
		}
	}
	return len(ls) < len(lt)
}

func stateComparator(a, b interface{}) int {
	s := a.(State)
	t := b.(State)
	switch {
	case s == t:
		return 0
	case s.less(t):
		return -1
	default:
		return 1
	}
}

// StateSet is a set of states.
type StateSet map[State]struct{}

func newStateSet(states ...State) StateSet {
	set := StateSet{}
	for _, s := range states {
		set[s] = struct{}{}
	}
	return set
}

func (set StateSet) add(s State) bool {
	if _, ok := set[s]; ok {
		return false
	}
	set[s] = struct{}{}
	return true
}

// Has reports whether s is a member of the set.
func (set StateSet) Has(s State) bool {
	_, ok := set[s]
	return ok
}

// Sorted returns the members ordered by smallest label.
func (set StateSet) Sorted() []State {
	ss := make([]State, 0, len(set))
	for s := range set {
		ss = append(ss, s)
	}
	sortStates(ss)
	return ss
}

func (set StateSet) copy() StateSet {
	c := make(StateSet, len(set))
	for s := range set {
		c[s] = struct{}{}
	}
	return c
}

func sortStates(ss []State) {
	sort.Slice(ss, func(i, j int) bool {
		return ss[i].less(ss[j])
	})
}
