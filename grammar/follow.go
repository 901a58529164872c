package grammar

import (
	"fmt"
)

type followEntry struct {
	symbols map[string]struct{}
	eof     bool
}

func newFollowEntry() *followEntry {
	return &followEntry{
		symbols: map[string]struct{}{},
		eof:     false,
	}
}

func (e *followEntry) add(sym string) bool {
	if _, ok := e.symbols[sym]; ok {
		return false
	}
	e.symbols[sym] = struct{}{}
	return true
}

func (e *followEntry) addEOF() bool {
	if !e.eof {
		e.eof = true
		return true
	}
	return false
}

func (e *followEntry) merge(fst *firstEntry, flw *followEntry) bool {
	changed := false

	if fst != nil {
		for sym := range fst.symbols {
			added := e.add(sym)
			if added {
				changed = true
			}
		}
	}

	if flw != nil {
		for sym := range flw.symbols {
			added := e.add(sym)
			if added {
				changed = true
			}
		}
		if flw.eof {
			added := e.addEOF()
			if added {
				changed = true
			}
		}
	}

	return changed
}

// sorted returns the symbols and EndMarker if the entry contains it.
func (e *followEntry) sorted() []string {
	syms := make([]string, 0, len(e.symbols)+1)
	for sym := range e.symbols {
		syms = append(syms, sym)
	}
	if e.eof {
		syms = append(syms, EndMarker)
	}
	return sortSymbols(syms)
}

type followSet struct {
	set map[string]*followEntry
}

func newFollow(g *Grammar) *followSet {
	flw := &followSet{
		set: map[string]*followEntry{},
	}
	for _, nt := range g.order {
		flw.set[nt] = newFollowEntry()
	}
	return flw
}

func (flw *followSet) find(sym string) (*followEntry, error) {
	e, ok := flw.set[sym]
	if !ok {
		return nil, fmt.Errorf("an entry of FOLLOW was not found; symbol: %s", sym)
	}
	return e, nil
}

// genFollowSet seeds Follow of the start symbol with the end marker and repeats a pass
// over every occurrence of every non-terminal until no entry changes. An occurrence
// takes First of the rest of its body and, when the rest is nullable, Follow of the
// head.
func genFollowSet(g *Grammar, first *firstSet) (*followSet, error) {
	flw := newFollow(g)
	rules := g.Rules()
	for {
		more := false
		for _, nt := range g.order {
			e, err := flw.find(nt)
			if err != nil {
				return nil, err
			}
			if nt == g.start {
				changed := e.addEOF()
				if changed {
					more = true
				}
			}
			for _, r := range rules {
				for i, sym := range r.Body {
					if sym != nt {
						continue
					}
					fst, err := first.find(r.Body, i+1)
					if err != nil {
						return nil, err
					}
					changed := e.merge(fst, nil)
					if changed {
						more = true
					}
					if fst.empty {
						hf, err := flw.find(r.Head)
						if err != nil {
							return nil, err
						}
						changed := e.merge(nil, hf)
						if changed {
							more = true
						}
					}
				}
			}
		}
		if !more {
			break
		}
	}

	return flw, nil
}
