package lexical

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/nihei9/lltab/automaton"
	"github.com/nihei9/lltab/automaton/serial"
	"github.com/nihei9/lltab/spec"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/timtadh/lexmachine"
	"github.com/timtadh/lexmachine/machines"
)

// testSpecs is a small language whose lexmachine counterpart is testPatterns.
var testSpecs = []spec.TokenSpec{
	&spec.LiteralToken{Kind: "kw_if", Strings: []string{"if"}},
	&spec.LiteralToken{Kind: "kw_else", Strings: []string{"else"}},
	&spec.LiteralToken{Kind: "op_cmp", Strings: []string{"<", "<=", "=="}},
	&spec.LiteralToken{Kind: "op_assign", Strings: []string{"="}},
	&spec.ExplicitToken{
		Kind: "id",
		Transitions: []spec.Transition{
			{From: 0, Symbol: "a-z", To: 1},
			{From: 1, Symbol: "a-z", To: 1},
			{From: 1, Symbol: `\d`, To: 1},
		},
		Finals: []int{1},
	},
	&spec.ExplicitToken{
		Kind: "const_int",
		Transitions: []spec.Transition{
			{From: 0, Symbol: `\d`, To: 1},
			{From: 1, Symbol: "0-9", To: 1},
		},
		Finals: []int{1},
	},
	&spec.ExplicitToken{
		Kind: "const_string",
		Transitions: []spec.Transition{
			{From: 0, Symbol: `"`, To: 1},
			{From: 1, Symbol: `\.`, To: 1},
			{From: 1, Symbol: `"`, To: 2},
		},
		Finals: []int{2},
	},
}

var testPatterns = []string{
	`if`,
	`else`,
	`<|<=|==`,
	`=`,
	`[a-z][a-z0-9]*`,
	`[0-9]+`,
	`"[^"]*"`,
}

// oracle returns the kind lexmachine assigns to input when input is scanned as a
// single token.
func oracle(t *testing.T, input string) (string, bool) {
	t.Helper()

	lexer := lexmachine.NewLexer()
	for i, p := range testPatterns {
		id := i
		lexer.Add([]byte(p), func(s *lexmachine.Scanner, m *machines.Match) (interface{}, error) {
			return s.Token(id, string(m.Bytes), m), nil
		})
	}
	err := lexer.Compile()
	if err != nil {
		t.Fatal(err)
	}
	scanner, err := lexer.Scanner([]byte(input))
	if err != nil {
		t.Fatal(err)
	}
	tok, err, eof := scanner.Next()
	if err != nil || eof {
		return "", false
	}
	token := tok.(*lexmachine.Token)
	if string(token.Lexeme) != input {
		return "", false
	}
	return testSpecs[token.Type].KindName(), true
}

func TestCompile_AgreesWithLexmachine(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "lltab.lexical")
	defer teardown()

	dfa, err, cerrs := Compile(testSpecs, SkipWhitespace(false))
	if err != nil {
		t.Fatalf("%v: %v", err, cerrs)
	}
	if !dfa.IsDeterministic() || !dfa.IsEnumerated() {
		t.Fatalf("the result must be an enumerated deterministic automaton")
	}

	inputs := []string{
		"if", "ifx", "i", "else", "elsif", "iff", "x1",
		"<", "<=", "==", "=", "=<", "<<",
		"0", "42", "4a",
		`""`, `"if"`, `"a<=b"`, `"unterminated`, `"a"b"`,
		"", "If", "_",
	}
	for _, input := range inputs {
		want, wantOK := oracle(t, input)
		kinds, ok := dfa.Accepts(input)
		if ok != wantOK {
			t.Errorf("%q: lexmachine accepts: %v, the automaton accepts: %v", input, wantOK, ok)
			continue
		}
		if ok && kinds[0] != want {
			t.Errorf("%q: lexmachine: %v, the automaton: %v", input, want, kinds)
		}
	}
}

func TestCompile_LabelPriority(t *testing.T) {
	dfa, err, _ := Compile(testSpecs, SkipWhitespace(false))
	if err != nil {
		t.Fatal(err)
	}
	kinds, ok := dfa.Accepts("if")
	if !ok {
		t.Fatalf("if must be accepted")
	}
	if strings.Join(kinds, ",") != "kw_if,id" {
		t.Fatalf("every contributing kind must be kept in declaration order; got: %v", kinds)
	}

	// Declaring the identifiers first makes them win.
	reordered := append([]spec.TokenSpec{testSpecs[4]}, testSpecs[:4]...)
	dfa, err, _ = Compile(reordered, SkipWhitespace(false))
	if err != nil {
		t.Fatal(err)
	}
	kinds, _ = dfa.Accepts("if")
	if strings.Join(kinds, ",") != "id,kw_if" {
		t.Fatalf("unexpected kinds: %v", kinds)
	}
}

func TestCompile_Parallel(t *testing.T) {
	seq, err, _ := Compile(testSpecs)
	if err != nil {
		t.Fatal(err)
	}
	par, err, _ := Compile(testSpecs, Parallel())
	if err != nil {
		t.Fatal(err)
	}
	if !seq.Equal(par) {
		t.Fatalf("parallel compilation must produce the same automaton;\nsequential: %v\nparallel:   %v", seq.Text(), par.Text())
	}
}

func TestCompile_SkipWhitespace(t *testing.T) {
	dfa, err, _ := Compile(testSpecs)
	if err != nil {
		t.Fatal(err)
	}
	initial := dfa.Initial()
	for _, c := range automaton.Whitespace() {
		succ := dfa.Successors(initial, c)
		if len(succ) != 1 || succ[0] != initial {
			t.Fatalf("the initial state must loop on %v", c)
		}
	}
	if kinds, ok := dfa.Accepts(" \t\nif"); !ok || kinds[0] != "kw_if" {
		t.Fatalf("leading white space must be skipped; got: %v %v", kinds, ok)
	}
	if !dfa.IsDeterministic() {
		t.Fatalf("the patch must keep the automaton deterministic")
	}
	if _, ok := dfa.Accepts(`"a b"`); !ok {
		t.Fatalf("white space inside a string must still be accepted")
	}
}

func TestCompile_SkipWhitespace_SingleKind(t *testing.T) {
	specs := []spec.TokenSpec{
		&spec.ExplicitToken{
			Kind: "ab_loop",
			Transitions: []spec.Transition{
				{From: 0, Symbol: "a", To: 1},
				{From: 1, Symbol: "b", To: 0},
			},
			Finals: []int{1},
		},
	}
	dfa, err, _ := Compile(specs)
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		caption string
		input   string
		ok      bool
	}{
		{caption: "one round", input: "a", ok: true},
		{caption: "back to the start of the token", input: "aba", ok: true},
		{caption: "leading white space", input: " \taba", ok: true},
		{caption: "white space inside the token", input: "ab a"},
		{caption: "white space after a back edge", input: "ab\naba"},
	}
	for _, tt := range tests {
		t.Run(tt.caption, func(t *testing.T) {
			kinds, ok := dfa.Accepts(tt.input)
			if ok != tt.ok {
				t.Fatalf("%q: want: %v, got: %v %v", tt.input, tt.ok, ok, kinds)
			}
			if ok && kinds[0] != "ab_loop" {
				t.Fatalf("%q: unexpected kinds: %v", tt.input, kinds)
			}
		})
	}
}

func TestCompile_Errors(t *testing.T) {
	bad := &spec.ExplicitToken{
		Kind: "bad",
		Transitions: []spec.Transition{
			{From: 0, Symbol: `\w`, To: 1},
		},
		Finals: []int{1},
	}
	specs := []spec.TokenSpec{testSpecs[0], bad, testSpecs[4]}
	dfa, err, cerrs := Compile(specs)
	if err == nil {
		t.Fatalf("an error was expected")
	}
	if len(cerrs) != 1 || cerrs[0].Kind != "bad" || !errors.Is(cerrs[0], ErrMalformedSpecification) {
		t.Fatalf("unexpected compile errors: %v", cerrs)
	}
	if dfa == nil {
		t.Fatalf("the other token kinds must still be compiled")
	}
	if kinds, ok := dfa.Accepts("if"); !ok || kinds[0] != "kw_if" {
		t.Fatalf("unexpected result: %v %v", kinds, ok)
	}

	tests := []struct {
		caption string
		specs   []spec.TokenSpec
		err     error
	}{
		{
			caption: "no token",
			err:     ErrNoTokenSpec,
		},
		{
			caption: "a duplicate kind",
			specs:   []spec.TokenSpec{testSpecs[0], &spec.LiteralToken{Kind: "kw_if", Strings: []string{"iff"}}},
			err:     ErrDuplicateKind,
		},
		{
			caption: "a spelling inconsistency",
			specs:   []spec.TokenSpec{testSpecs[0], &spec.LiteralToken{Kind: "KwIf", Strings: []string{"iff"}}},
			err:     ErrSpellingInconsistency,
		},
	}
	for _, tt := range tests {
		t.Run(tt.caption, func(t *testing.T) {
			_, err, _ := Compile(tt.specs)
			if !errors.Is(err, tt.err) {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestNewLabelTable(t *testing.T) {
	dfa, err, _ := Compile(testSpecs)
	if err != nil {
		t.Fatal(err)
	}
	tab, err := NewLabelTable(dfa, testSpecs)
	if err != nil {
		t.Fatal(err)
	}
	if len(tab.Kinds) != len(testSpecs) || tab.Kinds[0] != "kw_if" {
		t.Fatalf("unexpected kinds: %v", tab.Kinds)
	}
	if len(tab.Labels) != len(dfa.Finals()) {
		t.Fatalf("every final state needs labels; finals: %v, labels: %v", len(dfa.Finals()), len(tab.Labels))
	}
	if tab.Fingerprint == "" {
		t.Fatalf("the table must have a fingerprint")
	}

	data, err := serial.Encode(dfa)
	if err != nil {
		t.Fatal(err)
	}
	labels, err := serial.EncodeLabels(dfa)
	if err != nil {
		t.Fatal(err)
	}
	decoded, err := serial.Decode(data, bytes.NewReader(labels))
	if err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		input string
		kind  string
	}{
		{input: "if", kind: "kw_if"},
		{input: "iff", kind: "id"},
		{input: "<=", kind: "op_cmp"},
		{input: `"x"`, kind: "const_string"},
	}
	for _, tt := range tests {
		state := 0
		for _, c := range tt.input {
			next, ok := decoded.Step(state, c)
			if !ok {
				t.Fatalf("%q must be accepted", tt.input)
			}
			state = next
		}
		kind, ok := tab.Kind(state)
		if !ok || kind != tt.kind {
			t.Errorf("%q: want: %v, got: %v", tt.input, tt.kind, kind)
		}
	}

	if _, err := NewLabelTable(automaton.New(automaton.NewState(1, 2)), testSpecs); !errors.Is(err, serial.ErrNotEnumerated) {
		t.Fatalf("unexpected error: %v", err)
	}
}
