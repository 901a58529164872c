package spec

import (
	"bytes"
	"errors"
	"reflect"
	"strings"
	"testing"

	verr "github.com/nihei9/lltab/error"
)

const testTokenSpecs = `{
  "kw_if": {"string": "if"},
  "op_sign": {"string": ["+", "-"]},
  "id": {
    "transitions": [[0, "\\c", 1], [1, "\\c", 1], [1, "0-9", 1]],
    "final_states": [1]
  },
  "const_string": {
    "transitions": [[0, "\"", 1], [1, "\\.", 1], [1, "\"", 2]],
    "final_states": [2]
  }
}`

func TestReadTokenSpecs(t *testing.T) {
	specs, err := ReadTokenSpecs(strings.NewReader(testTokenSpecs))
	if err != nil {
		t.Fatal(err)
	}

	expected := []TokenSpec{
		&LiteralToken{
			Kind:    "kw_if",
			Strings: []string{"if"},
		},
		&LiteralToken{
			Kind:    "op_sign",
			Strings: []string{"+", "-"},
		},
		&ExplicitToken{
			Kind: "id",
			Transitions: []Transition{
				{From: 0, Symbol: `\c`, To: 1},
				{From: 1, Symbol: `\c`, To: 1},
				{From: 1, Symbol: "0-9", To: 1},
			},
			Finals: []int{1},
		},
		&ExplicitToken{
			Kind: "const_string",
			Transitions: []Transition{
				{From: 0, Symbol: `"`, To: 1},
				{From: 1, Symbol: `\.`, To: 1},
				{From: 1, Symbol: `"`, To: 2},
			},
			Finals: []int{2},
		},
	}
	if !reflect.DeepEqual(specs, expected) {
		t.Fatalf("unexpected token specs;\nwant: %#v\ngot:  %#v", expected, specs)
	}

	var b bytes.Buffer
	err = WriteTokenSpecs(&b, specs)
	if err != nil {
		t.Fatal(err)
	}
	again, err := ReadTokenSpecs(&b)
	if err != nil {
		t.Fatalf("failed to read the written token specs: %v\n%v", err, b.String())
	}
	if !reflect.DeepEqual(again, expected) {
		t.Fatalf("the written token specs differ;\nwant: %#v\ngot:  %#v", expected, again)
	}
}

func TestReadTokenSpecs_Errors(t *testing.T) {
	tests := []struct {
		caption string
		src     string
		causes  []*SyntaxError
	}{
		{
			caption: "not an object",
			src:     `[]`,
			causes:  []*SyntaxError{synErrTokenSpecNotObject},
		},
		{
			caption: "a string and transitions",
			src:     `{"a": {"string": "a", "transitions": [[0, "a", 1]], "final_states": [1]}}`,
			causes:  []*SyntaxError{synErrAmbiguousTokenShape},
		},
		{
			caption: "neither a string nor transitions",
			src:     `{"a": {"final_states": [1]}}`,
			causes:  []*SyntaxError{synErrNoTokenShape},
		},
		{
			caption: "a string of a wrong type",
			src:     `{"a": {"string": 1}}`,
			causes:  []*SyntaxError{synErrInvalidString},
		},
		{
			caption: "an empty list of strings",
			src:     `{"a": {"string": []}}`,
			causes:  []*SyntaxError{synErrInvalidString},
		},
		{
			caption: "no final states",
			src:     `{"a": {"transitions": [[0, "a", 1]]}}`,
			causes:  []*SyntaxError{synErrNoFinalStates},
		},
		{
			caption: "a short transition",
			src:     `{"a": {"transitions": [[0, "a"]], "final_states": [1]}}`,
			causes:  []*SyntaxError{synErrInvalidTransition},
		},
		{
			caption: "every malformed token is reported",
			src:     `{"a": {"string": "a"}, "a": {"string": "b"}, "b": {}, "c": {"string": "c"}}`,
			causes:  []*SyntaxError{synErrDuplicateKind, synErrNoTokenShape},
		},
	}
	for _, tt := range tests {
		t.Run(tt.caption, func(t *testing.T) {
			_, err := ReadTokenSpecs(strings.NewReader(tt.src))
			var specErrs verr.SpecErrors
			if !errors.As(err, &specErrs) {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(specErrs) != len(tt.causes) {
				t.Fatalf("unexpected error count; want: %v, got: %v: %v", len(tt.causes), len(specErrs), err)
			}
			for i, cause := range tt.causes {
				if specErrs[i].Cause != cause {
					t.Errorf("#%v: unexpected cause; want: %v, got: %v", i, cause, specErrs[i].Cause)
				}
			}
		})
	}
}

func TestReadTokenSpecs_InvalidJSON(t *testing.T) {
	_, err := ReadTokenSpecs(strings.NewReader(`{"a": {"string": "a"`))
	if err == nil {
		t.Fatalf("an error was expected")
	}
}
