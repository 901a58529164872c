package serial

import (
	"fmt"
	"io"
	"sort"
)

// Table is a decoded automaton. State 0 is the initial state.
type Table struct {
	width       int
	finals      map[int]struct{}
	transitions map[int]map[byte]int
	labels      map[int][]string
}

// Decode reads the binary form written by Encode. labels, when not nil, is read as the
// table written by EncodeLabels.
func Decode(data []byte, labels io.Reader) (*Table, error) {
	if len(data) < 1 {
		return nil, fmt.Errorf("%w: empty input", ErrMalformedArtifact)
	}
	w := int(data[0])
	if w < 1 || w > 4 {
		return nil, fmt.Errorf("%w: state id width %v", ErrMalformedArtifact, w)
	}
	sentinel := 1<<(8*w) - 1
	t := &Table{
		width:       w,
		finals:      map[int]struct{}{},
		transitions: map[int]map[byte]int{},
		labels:      map[int][]string{},
	}

	pos := 1
	for {
		if pos+w > len(data) {
			return nil, fmt.Errorf("%w: the final state list is not terminated", ErrMalformedArtifact)
		}
		id := readID(data[pos : pos+w])
		pos += w
		if id == sentinel {
			break
		}
		t.finals[id] = struct{}{}
	}

	size := 2*w + 1
	if (len(data)-pos)%size != 0 {
		return nil, fmt.Errorf("%w: %v trailing bytes", ErrMalformedArtifact, (len(data)-pos)%size)
	}
	for ; pos < len(data); pos += size {
		from := readID(data[pos : pos+w])
		sym := data[pos+w]
		to := readID(data[pos+w+1 : pos+size])
		row, ok := t.transitions[from]
		if !ok {
			row = map[byte]int{}
			t.transitions[from] = row
		}
		if _, ok := row[sym]; ok {
			return nil, fmt.Errorf("%w: state %v has two transitions on 0x%02x", ErrMalformedArtifact, from, sym)
		}
		row[sym] = to
	}

	if labels != nil {
		ls, err := DecodeLabels(labels)
		if err != nil {
			return nil, err
		}
		for id, kinds := range ls {
			if _, ok := t.finals[id]; !ok {
				return nil, fmt.Errorf("%w: state %v has token kinds but is not final", ErrMalformedArtifact, id)
			}
			t.labels[id] = kinds
		}
	}

	tracer().Debugf("decoded: width %v, %v finals, %v states with transitions", w, len(t.finals), len(t.transitions))

	return t, nil
}

// Width returns the state id width of the decoded artifact.
func (t *Table) Width() int {
	return t.width
}

// Finals returns the final state ids in ascending order.
func (t *Table) Finals() []int {
	ids := make([]int, 0, len(t.finals))
	for id := range t.finals {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// IsFinal reports whether state is final.
func (t *Table) IsFinal(state int) bool {
	_, ok := t.finals[state]
	return ok
}

// Labels returns the token kinds of a final state. The first one is the kind the
// state resolves to.
func (t *Table) Labels(state int) []string {
	return t.labels[state]
}

// Step returns the successor of state on c: the explicit transition when there is
// one, the wildcard transition otherwise.
func (t *Table) Step(state int, c rune) (int, bool) {
	row := t.transitions[state]
	if c > 0 && c <= 0xff {
		if next, ok := row[byte(c)]; ok {
			return next, true
		}
	}
	next, ok := row[AnyByte]
	return next, ok
}

// Accepts runs input from state 0 and reports whether it ends in a final state, along
// with the token kinds of that state.
func (t *Table) Accepts(input string) ([]string, bool) {
	state := 0
	for _, c := range input {
		next, ok := t.Step(state, c)
		if !ok {
			return nil, false
		}
		state = next
	}
	if !t.IsFinal(state) {
		return nil, false
	}
	return t.Labels(state), true
}

// States returns the ids of the states that have transitions, in ascending order.
func (t *Table) States() []int {
	ids := make([]int, 0, len(t.transitions))
	for id := range t.transitions {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// Transitions returns the transitions leaving state keyed by symbol byte. AnyByte keys
// the wildcard transition.
func (t *Table) Transitions(state int) map[byte]int {
	row := make(map[byte]int, len(t.transitions[state]))
	for c, next := range t.transitions[state] {
		row[c] = next
	}
	return row
}
