package grammar

import (
	"encoding/json"
	"errors"
	"testing"

	spec "github.com/nihei9/lltab/spec/grammar"
)

func TestCompile(t *testing.T) {
	gram := readTestGrammar(t, expressionSrc)
	cg, err := Compile("expr", gram)
	if err != nil {
		t.Fatal(err)
	}
	if cg.Name != "expr" || cg.Syntactic == nil {
		t.Fatalf("unexpected artifact: %+v", cg)
	}
	if cg.Syntactic.Fingerprint == "" {
		t.Fatalf("the table must have a fingerprint")
	}

	data, err := json.Marshal(cg)
	if err != nil {
		t.Fatal(err)
	}
	decoded := &spec.CompiledGrammar{}
	err = json.Unmarshal(data, decoded)
	if err != nil {
		t.Fatal(err)
	}
	fp, err := decoded.Syntactic.GenFingerprint()
	if err != nil {
		t.Fatal(err)
	}
	if fp != cg.Syntactic.Fingerprint {
		t.Fatalf("the fingerprint must survive JSON; want: %v, got: %v", cg.Syntactic.Fingerprint, fp)
	}

	tab, err := GenParsingTable(gram)
	if err != nil {
		t.Fatal(err)
	}
	for _, nt := range tab.NonTerminals {
		for _, la := range tab.Terminals {
			expected, expectedOK := tab.Lookup(nt, la)
			r, ok, err := decoded.Syntactic.Lookup(nt, la)
			if err != nil {
				t.Fatal(err)
			}
			if ok != expectedOK {
				t.Fatalf("unexpected cell [%v, %v]; want: %v, got: %v", nt, la, expectedOK, ok)
			}
			if ok && r.ID != expected {
				t.Fatalf("unexpected rule of [%v, %v]; want: %v, got: %v", nt, la, expected, r.ID)
			}
		}
	}
	if len(decoded.Syntactic.Entries) != len(tab.Entries) {
		t.Fatalf("unexpected entry count: %v", len(decoded.Syntactic.Entries))
	}
}

func TestCompile_Fingerprint(t *testing.T) {
	a, err := Compile("a", readTestGrammar(t, expressionSrc))
	if err != nil {
		t.Fatal(err)
	}
	b, err := Compile("b", readTestGrammar(t, expressionSrc))
	if err != nil {
		t.Fatal(err)
	}
	if a.Syntactic.Fingerprint != b.Syntactic.Fingerprint {
		t.Fatalf("equal tables must have equal fingerprints")
	}

	c, err := Compile("c", readTestGrammar(t, "S, a S b\nS, ''\n"))
	if err != nil {
		t.Fatal(err)
	}
	if a.Syntactic.Fingerprint == c.Syntactic.Fingerprint {
		t.Fatalf("different tables must have different fingerprints")
	}
}

func TestCompile_NotLL1(t *testing.T) {
	_, err := Compile("bad", readTestGrammar(t, arithmeticSrc))
	if !errors.Is(err, ErrGrammarNotLL1) {
		t.Fatalf("unexpected error: %v", err)
	}
}
