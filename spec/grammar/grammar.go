// Package grammar defines the artifacts lltab writes: the LL(1) parsing table of a
// grammar and the label table of a compiled lexer.
package grammar

import (
	"fmt"

	"github.com/cnf/structhash"
	"github.com/nihei9/lltab/compressor"
)

// RuleIDNil is the value of an empty cell of the compressed table.
const RuleIDNil = 0

type CompiledGrammar struct {
	Name      string        `json:"name"`
	Lexical   *LabelTable   `json:"lexical,omitempty"`
	Syntactic *ParsingTable `json:"syntactic"`
}

type Rule struct {
	ID   int      `json:"id"`
	Head string   `json:"head"`
	Body []string `json:"body"`
}

type Entry struct {
	NonTerminal string `json:"non_terminal"`
	Lookahead   string `json:"lookahead"`
	Rule        int    `json:"rule"`
}

// ParsingTable holds everything a table-driven LL(1) parser needs. Compressed is the
// matrix with a row per non-terminal and a column per terminal in the order of
// NonTerminals and Terminals.
type ParsingTable struct {
	Start        string            `json:"start"`
	NonTerminals []string          `json:"non_terminals"`
	Terminals    []string          `json:"terminals"`
	EndMarker    string            `json:"end_marker"`
	Rules        []*Rule           `json:"rules"`
	Entries      []*Entry          `json:"entries"`
	Compressed   *compressor.Table `json:"compressed"`
	Fingerprint  string            `json:"fingerprint" hash:"-"`
}

// GenFingerprint hashes the structure of the table. Equal tables have equal
// fingerprints whatever their Fingerprint field holds.
func (t *ParsingTable) GenFingerprint() (string, error) {
	return structhash.Hash(t, 1)
}

// Lookup returns the rule of a cell using the compressed matrix.
func (t *ParsingTable) Lookup(nonTerminal, lookahead string) (*Rule, bool, error) {
	row := indexOf(t.NonTerminals, nonTerminal)
	col := indexOf(t.Terminals, lookahead)
	if row < 0 || col < 0 {
		return nil, false, nil
	}
	id, err := t.Compressed.Lookup(row, col)
	if err != nil {
		return nil, false, err
	}
	if id == RuleIDNil {
		return nil, false, nil
	}
	if id < 1 || id > len(t.Rules) {
		return nil, false, fmt.Errorf("a rule ID is out of range: %v", id)
	}
	return t.Rules[id-1], true, nil
}

func indexOf(syms []string, sym string) int {
	for i, s := range syms {
		if s == sym {
			return i
		}
	}
	return -1
}

// LabelTable maps the final states of a serialized lexer automaton to their token
// kinds. The first kind of a state is the one the lexer reports.
type LabelTable struct {
	Kinds       []string         `json:"kinds"`
	Labels      map[int][]string `json:"labels"`
	Fingerprint string           `json:"fingerprint" hash:"-"`
}

func (t *LabelTable) GenFingerprint() (string, error) {
	return structhash.Hash(t, 1)
}

// Kind returns the token kind reported in a state.
func (t *LabelTable) Kind(state int) (string, bool) {
	kinds, ok := t.Labels[state]
	if !ok || len(kinds) == 0 {
		return "", false
	}
	return kinds[0], true
}
