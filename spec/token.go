package spec

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	verr "github.com/nihei9/lltab/error"
)

// TokenSpec is the definition of one token kind. It is either a *LiteralToken or an
// *ExplicitToken.
type TokenSpec interface {
	KindName() string
	tokenSpec()
}

// LiteralToken defines a token kind by the literal strings it matches.
type LiteralToken struct {
	Kind    string
	Strings []string
}

func (t *LiteralToken) KindName() string {
	return t.Kind
}

func (t *LiteralToken) tokenSpec() {}

// Transition is one `[state, symbol, next state]` triple of an explicit token. The
// symbol is a single character, a range `X-Y`, or one of the escapes `\c` (lowercase
// letters), `\d` (digits) and `\.` (any character).
type Transition struct {
	From   int
	Symbol string
	To     int
}

func (t *Transition) UnmarshalJSON(data []byte) error {
	var elems []json.RawMessage
	err := json.Unmarshal(data, &elems)
	if err != nil || len(elems) != 3 {
		return synErrInvalidTransition
	}
	if json.Unmarshal(elems[0], &t.From) != nil ||
		json.Unmarshal(elems[1], &t.Symbol) != nil ||
		json.Unmarshal(elems[2], &t.To) != nil {
		return synErrInvalidTransition
	}
	return nil
}

func (t Transition) MarshalJSON() ([]byte, error) {
	return json.Marshal([]interface{}{t.From, t.Symbol, t.To})
}

// ExplicitToken defines a token kind by a transition table whose initial state is 0.
type ExplicitToken struct {
	Kind        string
	Transitions []Transition
	Finals      []int
}

func (t *ExplicitToken) KindName() string {
	return t.Kind
}

func (t *ExplicitToken) tokenSpec() {}

type tokenEntry struct {
	String      json.RawMessage `json:"string"`
	Transitions []Transition    `json:"transitions"`
	FinalStates []int           `json:"final_states"`
}

// ReadTokenSpecs reads a JSON object mapping token kinds to their definitions:
//
//	{"kind": {"string": "literal" | ["literal", ...]},
//	 "kind": {"transitions": [[state, "symbol", next], ...], "final_states": [state, ...]}}
//
// The token specs are returned in the order of the keys, which is the priority of the
// kinds. Every malformed entry is reported; the result is then a verr.SpecErrors.
func ReadTokenSpecs(r io.Reader) ([]TokenSpec, error) {
	d := json.NewDecoder(r)
	tok, err := d.Token()
	if err != nil {
		return nil, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, verr.SpecErrors{
			{
				Cause: synErrTokenSpecNotObject,
			},
		}
	}

	var specs []TokenSpec
	var errs verr.SpecErrors
	seen := map[string]struct{}{}
	for d.More() {
		tok, err := d.Token()
		if err != nil {
			return nil, err
		}
		kind := tok.(string)

		var entry tokenEntry
		err = d.Decode(&entry)
		if err != nil {
			if err == synErrInvalidTransition {
				errs = append(errs, &verr.SpecError{
					Cause:  synErrInvalidTransition,
					Detail: kind,
				})
				continue
			}
			return nil, fmt.Errorf("failed to decode token %v: %w", kind, err)
		}

		if _, ok := seen[kind]; ok {
			errs = append(errs, &verr.SpecError{
				Cause:  synErrDuplicateKind,
				Detail: kind,
			})
			continue
		}
		seen[kind] = struct{}{}

		spec, synErr := entry.toTokenSpec(kind)
		if synErr != nil {
			errs = append(errs, &verr.SpecError{
				Cause:  synErr,
				Detail: kind,
			})
			continue
		}
		specs = append(specs, spec)
	}
	_, err = d.Token()
	if err != nil {
		return nil, err
	}
	if len(errs) > 0 {
		return nil, errs
	}

	tracer().Debugf("read %v token specifications", len(specs))

	return specs, nil
}

func (e *tokenEntry) toTokenSpec(kind string) (TokenSpec, *SyntaxError) {
	hasString := len(e.String) > 0 && !bytes.Equal(e.String, []byte("null"))
	hasTransitions := e.Transitions != nil
	switch {
	case hasString && hasTransitions:
		return nil, synErrAmbiguousTokenShape
	case hasString:
		var s string
		if json.Unmarshal(e.String, &s) == nil {
			return &LiteralToken{
				Kind:    kind,
				Strings: []string{s},
			}, nil
		}
		var ss []string
		if json.Unmarshal(e.String, &ss) == nil && len(ss) > 0 {
			return &LiteralToken{
				Kind:    kind,
				Strings: ss,
			}, nil
		}
		return nil, synErrInvalidString
	case hasTransitions:
		if len(e.FinalStates) == 0 {
			return nil, synErrNoFinalStates
		}
		return &ExplicitToken{
			Kind:        kind,
			Transitions: e.Transitions,
			Finals:      e.FinalStates,
		}, nil
	}
	return nil, synErrNoTokenShape
}

// WriteTokenSpecs writes specs in the format ReadTokenSpecs reads, keeping their order.
func WriteTokenSpecs(w io.Writer, specs []TokenSpec) error {
	var b bytes.Buffer
	b.WriteString("{\n")
	for i, spec := range specs {
		key, err := json.Marshal(spec.KindName())
		if err != nil {
			return err
		}
		var value []byte
		switch s := spec.(type) {
		case *LiteralToken:
			if len(s.Strings) == 1 {
				value, err = json.Marshal(map[string]interface{}{"string": s.Strings[0]})
			} else {
				value, err = json.Marshal(map[string]interface{}{"string": s.Strings})
			}
		case *ExplicitToken:
			value, err = json.Marshal(map[string]interface{}{
				"transitions":  s.Transitions,
				"final_states": s.Finals,
			})
		}
		if err != nil {
			return err
		}
		fmt.Fprintf(&b, "  %s: %s", key, value)
		if i < len(specs)-1 {
			b.WriteString(",")
		}
		b.WriteString("\n")
	}
	b.WriteString("}\n")
	_, err := w.Write(b.Bytes())
	return err
}
