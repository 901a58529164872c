package grammar

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Entry says that NonTerminal expands by the rule RuleID when the lookahead is
// Lookahead.
type Entry struct {
	NonTerminal string
	Lookahead   string
	RuleID      int
}

// ParsingTable is the LL(1) table of a grammar.
type ParsingTable struct {
	Start        string
	NonTerminals []string
	// Terminals are the lookaheads a parser may meet: the terminals of the grammar and
	// EndMarker, in symbol order.
	Terminals []string
	Rules     []*Rule
	// Entries are ordered by non-terminal, lookahead and rule ID.
	Entries []*Entry

	cells map[string]map[string]int
}

// GenParsingTable derives the LL(1) table. A left-recursive grammar, alternatives
// sharing a First terminal, and alternatives meeting in one cell through Follow all
// fail with a NotLL1Error.
func GenParsingTable(g *Grammar) (*ParsingTable, error) {
	err := g.CheckLL1()
	if err != nil {
		return nil, err
	}

	tab := &ParsingTable{
		Start:        g.start,
		NonTerminals: g.NonTerminals(),
		Terminals:    sortSymbols(append(g.Terminals(), EndMarker)),
		Rules:        g.Rules(),
		cells:        map[string]map[string]int{},
	}

	nerr := &NotLL1Error{}
	for _, nt := range g.order {
		tab.cells[nt] = map[string]int{}
		for _, r := range g.rules[nt] {
			id, err := g.RuleID(r.Head, r.Body)
			if err != nil {
				return nil, err
			}

			fst, err := g.first.find(r.Body, 0)
			if err != nil {
				return nil, err
			}
			las := fst.sorted()
			if fst.empty {
				flw, err := g.follow.find(nt)
				if err != nil {
					return nil, err
				}
				las = append(las, flw.sorted()...)
			}

			// Collisions are grouped by the rule already in the cell.
			var others []int
			conflicting := map[int][]string{}
			for _, la := range las {
				prev, ok := tab.cells[nt][la]
				if ok && prev != id {
					if _, seen := conflicting[prev]; !seen {
						others = append(others, prev)
					}
					conflicting[prev] = append(conflicting[prev], la)
					continue
				}
				tab.cells[nt][la] = id
			}
			for _, other := range others {
				prevRule, err := g.Rule(other)
				if err != nil {
					return nil, err
				}
				tracer().Debugf("FIRST/FOLLOW conflict on %v: %v / %v", nt, prevRule, r)
				nerr.TableConflicts = append(nerr.TableConflicts, &Conflict{
					NonTerminal: nt,
					Lookaheads:  sortSymbols(conflicting[other]),
					Rules:       [2]*Rule{prevRule, r},
				})
			}
		}
	}
	if !nerr.empty() {
		return nil, nerr
	}

	for nt, row := range tab.cells {
		for la, id := range row {
			tab.Entries = append(tab.Entries, &Entry{
				NonTerminal: nt,
				Lookahead:   la,
				RuleID:      id,
			})
		}
	}
	sort.Slice(tab.Entries, func(i, j int) bool {
		a, b := tab.Entries[i], tab.Entries[j]
		if a.NonTerminal != b.NonTerminal {
			return a.NonTerminal < b.NonTerminal
		}
		if a.Lookahead != b.Lookahead {
			return lessSymbol(a.Lookahead, b.Lookahead)
		}
		return a.RuleID < b.RuleID
	})

	tracer().Infof("LL(1) table: %v non-terminals, %v lookaheads, %v entries", len(tab.NonTerminals), len(tab.Terminals), len(tab.Entries))

	return tab, nil
}

// Lookup returns the rule ID of a cell.
func (t *ParsingTable) Lookup(nt, lookahead string) (int, bool) {
	row, ok := t.cells[nt]
	if !ok {
		return 0, false
	}
	id, ok := row[lookahead]
	return id, ok
}

// Rule returns the rule with an ID.
func (t *ParsingTable) Rule(id int) (*Rule, error) {
	if id < 1 || id > len(t.Rules) {
		return nil, fmt.Errorf("%w: #%v", ErrRuleNotFound, id)
	}
	return t.Rules[id-1], nil
}

// Matrix lays the table out with a row per non-terminal and a column per terminal,
// in the order of NonTerminals and Terminals. An empty cell is 0.
func (t *ParsingTable) Matrix() []int {
	cols := map[string]int{}
	for i, la := range t.Terminals {
		cols[la] = i
	}
	rows := map[string]int{}
	for i, nt := range t.NonTerminals {
		rows[nt] = i
	}
	m := make([]int, len(t.NonTerminals)*len(t.Terminals))
	for _, e := range t.Entries {
		m[rows[e.NonTerminal]*len(t.Terminals)+cols[e.Lookahead]] = e.RuleID
	}
	return m
}

// Text writes the table as `{N...};S;{T...};[A,t,r]...`: the sorted non-terminals,
// the start symbol, the lookaheads used by the entries and the entries.
func (t *ParsingTable) Text() string {
	nts := append([]string{}, t.NonTerminals...)
	sort.Strings(nts)

	var las []string
	seen := map[string]struct{}{}
	for _, e := range t.Entries {
		if _, ok := seen[e.Lookahead]; ok {
			continue
		}
		seen[e.Lookahead] = struct{}{}
		las = append(las, e.Lookahead)
	}
	sortSymbols(las)

	var b strings.Builder
	fmt.Fprintf(&b, "{%v};%v;{%v};", strings.Join(nts, ","), t.Start, strings.Join(las, ","))
	for _, e := range t.Entries {
		fmt.Fprintf(&b, "[%v,%v,%v]", e.NonTerminal, e.Lookahead, e.RuleID)
	}
	return b.String()
}

// IsNotLL1 reports whether err says that a grammar is not LL(1) and returns the details.
func IsNotLL1(err error) (*NotLL1Error, bool) {
	var nerr *NotLL1Error
	if errors.As(err, &nerr) {
		return nerr, true
	}
	return nil, false
}
