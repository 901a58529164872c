package grammar

import (
	"fmt"
)

type firstEntry struct {
	symbols map[string]struct{}
	empty   bool
}

func newFirstEntry() *firstEntry {
	return &firstEntry{
		symbols: map[string]struct{}{},
		empty:   false,
	}
}

func (e *firstEntry) add(sym string) bool {
	if _, ok := e.symbols[sym]; ok {
		return false
	}
	e.symbols[sym] = struct{}{}
	return true
}

func (e *firstEntry) addEmpty() bool {
	if !e.empty {
		e.empty = true
		return true
	}
	return false
}

func (e *firstEntry) mergeExceptEmpty(target *firstEntry) bool {
	if target == nil {
		return false
	}
	changed := false
	for sym := range target.symbols {
		added := e.add(sym)
		if added {
			changed = true
		}
	}
	return changed
}

func (e *firstEntry) sorted() []string {
	syms := make([]string, 0, len(e.symbols))
	for sym := range e.symbols {
		syms = append(syms, sym)
	}
	return sortSymbols(syms)
}

// intersect returns the terminals both entries contain.
func (e *firstEntry) intersect(f *firstEntry) []string {
	var syms []string
	for sym := range e.symbols {
		if _, ok := f.symbols[sym]; ok {
			syms = append(syms, sym)
		}
	}
	return sortSymbols(syms)
}

// firstSet holds an entry per non-terminal; every other symbol is a terminal.
type firstSet struct {
	set map[string]*firstEntry
}

func newFirstSet(g *Grammar) *firstSet {
	fst := &firstSet{
		set: map[string]*firstEntry{},
	}
	for _, nt := range g.order {
		fst.set[nt] = newFirstEntry()
	}
	return fst
}

// find returns First of body[head:].
func (fst *firstSet) find(body []string, head int) (*firstEntry, error) {
	entry := newFirstEntry()
	if len(body) <= head {
		entry.addEmpty()
		return entry, nil
	}
	for _, sym := range body[head:] {
		e, ok := fst.set[sym]
		if !ok {
			entry.add(sym)
			return entry, nil
		}
		if e == nil {
			return nil, fmt.Errorf("an entry of FIRST was not found; symbol: %s", sym)
		}
		for s := range e.symbols {
			entry.add(s)
		}
		if !e.empty {
			return entry, nil
		}
	}
	entry.addEmpty()
	return entry, nil
}

func (fst *firstSet) isNullable(sym string) bool {
	e, ok := fst.set[sym]
	return ok && e.empty
}

// genFirstSet repeats a pass over every rule until no entry changes.
func genFirstSet(g *Grammar) (*firstSet, error) {
	fst := newFirstSet(g)
	pass := 0
	for {
		pass++
		more := false
		for _, r := range g.Rules() {
			e := fst.set[r.Head]
			if e == nil {
				return nil, fmt.Errorf("an entry of FIRST was not found; symbol: %s", r.Head)
			}
			if genRuleFirstEntry(fst, e, r) {
				more = true
			}
		}
		if !more {
			break
		}
	}

	tracer().Debugf("FIRST converged after %v passes", pass)

	return fst, nil
}

func genRuleFirstEntry(fst *firstSet, acc *firstEntry, r *Rule) bool {
	if r.IsEmpty() {
		return acc.addEmpty()
	}

	changed := false
	for _, sym := range r.Body {
		e, ok := fst.set[sym]
		if !ok {
			return acc.add(sym) || changed
		}

		if acc.mergeExceptEmpty(e) {
			changed = true
		}
		if !e.empty {
			return changed
		}
	}
	return acc.addEmpty() || changed
}
