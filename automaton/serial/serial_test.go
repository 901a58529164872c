package serial

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/nihei9/lltab/automaton"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
)

func genDFA(t *testing.T) *automaton.Automaton {
	t.Helper()

	kw := automaton.New(automaton.NewState(0))
	kw.AddTransition(automaton.NewState(0), 'i', automaton.NewState(1))
	kw.AddTransition(automaton.NewState(1), 'f', automaton.NewState(2))
	kw.AddFinal(automaton.NewState(2), "if")

	id := automaton.New(automaton.NewState(0))
	for _, c := range automaton.LowercaseLetters() {
		id.AddTransition(automaton.NewState(0), c, automaton.NewState(1))
		id.AddTransition(automaton.NewState(1), c, automaton.NewState(1))
	}
	id.AddFinal(automaton.NewState(1), "id")

	str := automaton.New(automaton.NewState(0))
	str.AddTransition(automaton.NewState(0), '"', automaton.NewState(1))
	str.AddTransition(automaton.NewState(1), automaton.Any, automaton.NewState(1))
	str.AddTransition(automaton.NewState(1), '"', automaton.NewState(2))
	str.AddFinal(automaton.NewState(2), "str")

	return automaton.Determinize(automaton.Union(automaton.Union(kw, id), str)).Enumerate()
}

// expectedStep follows a's transition on c from s, falling back to the wildcard.
func expectedStep(a *automaton.Automaton, s automaton.State, c automaton.Symbol) (int, bool) {
	succ := a.Successors(s, c)
	if len(succ) == 0 {
		succ = a.Successors(s, automaton.Any)
	}
	if len(succ) == 0 {
		return 0, false
	}
	id, _ := succ[0].ID()
	return id, true
}

func TestRoundTrip(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "lltab.serial")
	defer teardown()

	a := genDFA(t)

	tests := []struct {
		caption string
		opts    []EncodeOption
	}{
		{caption: "wildcard as a symbol"},
		{caption: "wildcard expanded", opts: []EncodeOption{ExpandWildcard()}},
	}
	for _, tt := range tests {
		t.Run(tt.caption, func(t *testing.T) {
			data, err := Encode(a, tt.opts...)
			if err != nil {
				t.Fatal(err)
			}
			labels, err := EncodeLabels(a)
			if err != nil {
				t.Fatal(err)
			}
			table, err := Decode(data, bytes.NewReader(labels))
			if err != nil {
				t.Fatal(err)
			}
			if table.Width() != 1 {
				t.Fatalf("unexpected width: %v", table.Width())
			}

			for _, s := range a.States() {
				id, _ := s.ID()
				if table.IsFinal(id) != a.IsFinal(s) {
					t.Fatalf("state %v: unexpected finality", id)
				}
				if a.IsFinal(s) && strings.Join(table.Labels(id), ",") != strings.Join(a.Labels(s), ",") {
					t.Fatalf("state %v: unexpected labels; want: %v, got: %v", id, a.Labels(s), table.Labels(id))
				}
				for c := automaton.CharMin; c <= automaton.CharMax; c++ {
					want, wantOK := expectedStep(a, s, c)
					got, gotOK := table.Step(id, rune(c))
					if want != got || wantOK != gotOK {
						t.Fatalf("state %v, symbol %v: want: %v %v, got: %v %v", id, c, want, wantOK, got, gotOK)
					}
				}
			}

			for _, input := range []string{"if", "ifx", `"a;b"`, `"`, "", "9"} {
				wantKinds, wantOK := a.Accepts(input)
				gotKinds, gotOK := table.Accepts(input)
				if wantOK != gotOK || strings.Join(wantKinds, ",") != strings.Join(gotKinds, ",") {
					t.Fatalf("%q: want: %v %v, got: %v %v", input, wantKinds, wantOK, gotKinds, gotOK)
				}
			}
		})
	}
}

func TestEncode_Layout(t *testing.T) {
	a := automaton.New(automaton.NewState(0))
	a.AddTransition(automaton.NewState(0), 'b', automaton.NewState(2))
	a.AddTransition(automaton.NewState(0), 'a', automaton.NewState(1))
	a.AddTransition(automaton.NewState(1), automaton.Any, automaton.NewState(1))
	a.AddFinal(automaton.NewState(2), "b")
	a.AddFinal(automaton.NewState(1), "a")

	data, err := Encode(a)
	if err != nil {
		t.Fatal(err)
	}
	expected := []byte{
		0x01,
		0x01, 0x02, 0xff,
		0x00, 'a', 0x01,
		0x00, 'b', 0x02,
		0x01, 0x00, 0x01,
	}
	if !bytes.Equal(data, expected) {
		t.Fatalf("unexpected encoding;\nwant: % x\ngot:  % x", expected, data)
	}

	labels, err := EncodeLabels(a)
	if err != nil {
		t.Fatal(err)
	}
	if string(labels) != "1:a\n2:b\n" {
		t.Fatalf("unexpected label table: %q", labels)
	}

	table, err := Decode(data, nil)
	if err != nil {
		t.Fatal(err)
	}
	if ids := table.States(); len(ids) != 2 || ids[0] != 0 || ids[1] != 1 {
		t.Fatalf("unexpected states: %v", ids)
	}
	row := table.Transitions(0)
	if len(row) != 2 || row['a'] != 1 || row['b'] != 2 {
		t.Fatalf("unexpected transitions of state 0: %v", row)
	}
	row = table.Transitions(1)
	if next, ok := row[AnyByte]; len(row) != 1 || !ok || next != 1 {
		t.Fatalf("unexpected transitions of state 1: %v", row)
	}
}

func TestWidth(t *testing.T) {
	tests := []struct {
		states int
		width  int
	}{
		{states: 1, width: 1},
		{states: 255, width: 1},
		{states: 256, width: 2},
		{states: 65535, width: 2},
		{states: 65536, width: 3},
	}
	for _, tt := range tests {
		if w := Width(tt.states); w != tt.width {
			t.Errorf("%v states: want: %v, got: %v", tt.states, tt.width, w)
		}
	}
}

func TestEncode_WideStateIDs(t *testing.T) {
	a := automaton.New(automaton.NewState(0))
	for i := 0; i < 299; i++ {
		a.AddTransition(automaton.NewState(i), 'a', automaton.NewState(i+1))
	}
	a.AddFinal(automaton.NewState(255), "short")
	a.AddFinal(automaton.NewState(299), "long")

	data, err := Encode(a)
	if err != nil {
		t.Fatal(err)
	}
	table, err := Decode(data, nil)
	if err != nil {
		t.Fatal(err)
	}
	if table.Width() != 2 {
		t.Fatalf("unexpected width: %v", table.Width())
	}
	if !table.IsFinal(255) || !table.IsFinal(299) || len(table.Finals()) != 2 {
		t.Fatalf("unexpected finals: %v", table.Finals())
	}
	if _, ok := table.Accepts(strings.Repeat("a", 255)); !ok {
		t.Fatalf("state 255 must be reachable and final")
	}
	if _, ok := table.Accepts(strings.Repeat("a", 256)); ok {
		t.Fatalf("state 256 is not final")
	}
}

func TestEncode_Errors(t *testing.T) {
	nfa := automaton.New(automaton.NewState(0))
	nfa.AddTransition(automaton.NewState(0), automaton.Epsilon, automaton.NewState(1))
	if _, err := Encode(nfa); !errors.Is(err, ErrNotDeterministic) {
		t.Fatalf("unexpected error: %v", err)
	}

	sparse := automaton.New(automaton.NewState(0))
	sparse.AddTransition(automaton.NewState(0), 'a', automaton.NewState(5))
	if _, err := Encode(sparse); !errors.Is(err, ErrNotEnumerated) {
		t.Fatalf("unexpected error: %v", err)
	}

	wide := automaton.New(automaton.NewState(0))
	wide.AddTransition(automaton.NewState(0), 'あ', automaton.NewState(1))
	if _, err := Encode(wide); !errors.Is(err, ErrUnaddressableSymbol) {
		t.Fatalf("unexpected error: %v", err)
	}

	badKind := automaton.New(automaton.NewState(0))
	badKind.AddFinal(automaton.NewState(0), "a,b")
	if _, err := EncodeLabels(badKind); !errors.Is(err, ErrInvalidKindName) {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestDecode_Malformed(t *testing.T) {
	tests := []struct {
		caption string
		data    []byte
		labels  string
	}{
		{caption: "empty", data: []byte{}},
		{caption: "zero width", data: []byte{0x00}},
		{caption: "unterminated finals", data: []byte{0x01, 0x01}},
		{caption: "truncated transition", data: []byte{0x01, 0xff, 0x00, 'a'}},
		{caption: "duplicate transition", data: []byte{0x01, 0xff, 0x00, 'a', 0x01, 0x00, 'a', 0x02}},
		{caption: "labels on a non-final state", data: []byte{0x01, 0xff}, labels: "0:a\n"},
		{caption: "malformed label line", data: []byte{0x01, 0x00, 0xff}, labels: "0\n"},
	}
	for _, tt := range tests {
		t.Run(tt.caption, func(t *testing.T) {
			var labels io.Reader
			if tt.labels != "" {
				labels = strings.NewReader(tt.labels)
			}
			_, err := Decode(tt.data, labels)
			if !errors.Is(err, ErrMalformedArtifact) {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}
