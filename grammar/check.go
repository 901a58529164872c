package grammar

import (
	"fmt"
	"strings"
)

// LeftRecursion is an alternative of NonTerminal that derives NonTerminal again as its
// leftmost symbol.
type LeftRecursion struct {
	NonTerminal string
	Rule        *Rule
}

func (r *LeftRecursion) String() string {
	return fmt.Sprintf("left recursion on %v: %v", r.NonTerminal, r.Rule)
}

// Conflict is a pair of alternatives of NonTerminal that are both chosen by the same
// lookaheads.
type Conflict struct {
	NonTerminal string
	Lookaheads  []string
	Rules       [2]*Rule
}

func (c *Conflict) String() string {
	return fmt.Sprintf("conflict on %v for {%v}: (%v) and (%v)", c.NonTerminal, strings.Join(c.Lookaheads, ", "), c.Rules[0], c.Rules[1])
}

// NotLL1Error lists every reason that keeps a grammar from having an LL(1) table.
// FirstConflicts are found between the First sets of two alternatives; TableConflicts
// are found when Follow sets bring two alternatives into one cell.
type NotLL1Error struct {
	LeftRecursions []*LeftRecursion
	FirstConflicts []*Conflict
	TableConflicts []*Conflict
}

func (e *NotLL1Error) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%v", ErrGrammarNotLL1)
	for _, r := range e.LeftRecursions {
		fmt.Fprintf(&b, "\n%v", r)
	}
	for _, c := range e.FirstConflicts {
		fmt.Fprintf(&b, "\n%v", c)
	}
	for _, c := range e.TableConflicts {
		fmt.Fprintf(&b, "\n%v", c)
	}
	return b.String()
}

func (e *NotLL1Error) Unwrap() error {
	return ErrGrammarNotLL1
}

func (e *NotLL1Error) empty() bool {
	return len(e.LeftRecursions) == 0 && len(e.FirstConflicts) == 0 && len(e.TableConflicts) == 0
}

// LeftRecursions returns every alternative that starts with its own head, directly or
// through other non-terminals, skipping nullable symbols.
func (g *Grammar) LeftRecursions() []*LeftRecursion {
	var recs []*LeftRecursion
	for _, nt := range g.order {
		for _, r := range g.rules[nt] {
			if g.startsWith(nt, r.Body, map[string]struct{}{}) {
				tracer().Debugf("left recursion: %v", r)
				recs = append(recs, &LeftRecursion{
					NonTerminal: nt,
					Rule:        r,
				})
			}
		}
	}
	return recs
}

func (g *Grammar) startsWith(nt string, body []string, visited map[string]struct{}) bool {
	for _, sym := range body {
		if g.IsTerminal(sym) {
			return false
		}
		if sym == nt {
			return true
		}
		if _, ok := visited[sym]; !ok {
			visited[sym] = struct{}{}
			for _, r := range g.rules[sym] {
				if g.startsWith(nt, r.Body, visited) {
					return true
				}
			}
		}
		if !g.first.isNullable(sym) {
			return false
		}
	}
	return false
}

// FirstConflicts compares every unordered pair of distinct alternatives of each
// non-terminal and returns the pairs whose First sets share a terminal.
func (g *Grammar) FirstConflicts() ([]*Conflict, error) {
	var conflicts []*Conflict
	for _, nt := range g.order {
		alts := g.rules[nt]
		firsts := make([]*firstEntry, len(alts))
		for i, r := range alts {
			e, err := g.first.find(r.Body, 0)
			if err != nil {
				return nil, err
			}
			firsts[i] = e
		}
		for i := 0; i < len(alts); i++ {
			for j := i + 1; j < len(alts); j++ {
				common := firsts[i].intersect(firsts[j])
				if len(common) == 0 {
					continue
				}
				tracer().Debugf("FIRST/FIRST conflict on %v: %v / %v", nt, alts[i], alts[j])
				conflicts = append(conflicts, &Conflict{
					NonTerminal: nt,
					Lookaheads:  common,
					Rules:       [2]*Rule{alts[i], alts[j]},
				})
			}
		}
	}
	return conflicts, nil
}

// CheckLL1 returns a NotLL1Error when the grammar is left-recursive or two alternatives
// of a non-terminal share a First terminal.
func (g *Grammar) CheckLL1() error {
	conflicts, err := g.FirstConflicts()
	if err != nil {
		return err
	}
	nerr := &NotLL1Error{
		LeftRecursions: g.LeftRecursions(),
		FirstConflicts: conflicts,
	}
	if nerr.empty() {
		return nil
	}
	return nerr
}
