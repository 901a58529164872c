package grammar

import (
	"fmt"
	"io"
	"strings"

	verr "github.com/nihei9/lltab/error"
	"github.com/nihei9/lltab/spec"
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'lltab.grammar'.
func tracer() tracing.Trace {
	return tracing.Select("lltab.grammar")
}

// Rule is one alternative of a non-terminal. Body is empty for the empty body.
type Rule struct {
	// ID is the 1-based position of the rule when the alternatives are listed
	// non-terminal by non-terminal in rule order.
	ID   int
	Head string
	Body []string
}

func (r *Rule) IsEmpty() bool {
	return len(r.Body) == 0
}

func (r *Rule) String() string {
	if r.IsEmpty() {
		return fmt.Sprintf("%v, %v", r.Head, spec.EmptyBody)
	}
	return fmt.Sprintf("%v, %v", r.Head, strings.Join(r.Body, " "))
}

func sameBody(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// Grammar is a context-free grammar together with its First and Follow sets. The
// start symbol is the head of the first rule; the rule order is the order in which
// the heads first appear.
type Grammar struct {
	start     string
	order     []string
	rules     map[string][]*Rule
	terminals []string
	first     *firstSet
	follow    *followSet
}

type buildConfig struct {
	classifier Classifier
}

type BuildOption func(config *buildConfig)

// WithClassifier replaces DefaultClassifier.
func WithClassifier(c Classifier) BuildOption {
	return func(config *buildConfig) {
		config.classifier = c
	}
}

// Read parses a grammar text and builds the grammar.
func Read(src io.Reader, opts ...BuildOption) (*Grammar, error) {
	s, err := spec.ParseGrammar(src)
	if err != nil {
		return nil, err
	}
	b := &GrammarBuilder{
		Source: s,
	}
	return b.Build(opts...)
}

type GrammarBuilder struct {
	Source *spec.GrammarSource

	errs verr.SpecErrors
}

func (b *GrammarBuilder) Build(opts ...BuildOption) (*Grammar, error) {
	config := &buildConfig{
		classifier: DefaultClassifier,
	}
	for _, opt := range opts {
		opt(config)
	}

	if b.Source == nil || len(b.Source.Rules) == 0 {
		return nil, verr.SpecErrors{
			{
				Cause: semErrNoRule,
			},
		}
	}

	g := &Grammar{
		start: b.Source.Rules[0].Head,
		rules: map[string][]*Rule{},
	}
	for _, r := range b.Source.Rules {
		if _, ok := g.rules[r.Head]; ok {
			continue
		}
		g.order = append(g.order, r.Head)
		g.rules[r.Head] = nil
	}

	terms := map[string]struct{}{}
	for _, r := range b.Source.Rules {
		if config.classifier(r.Head, true) {
			b.errs = append(b.errs, &verr.SpecError{
				Cause:  semErrHeadIsTerminal,
				Detail: r.Head,
				Row:    r.Pos.Row,
				Col:    r.Pos.Col,
			})
			continue
		}

		dup := false
		for _, alt := range g.rules[r.Head] {
			if sameBody(alt.Body, r.Body) {
				dup = true
				break
			}
		}
		if dup {
			b.errs = append(b.errs, &verr.SpecError{
				Cause:  semErrDuplicateRule,
				Detail: (&Rule{Head: r.Head, Body: r.Body}).String(),
				Row:    r.Pos.Row,
				Col:    r.Pos.Col,
			})
			continue
		}

		for _, sym := range r.Body {
			_, declared := g.rules[sym]
			if config.classifier(sym, declared) {
				if _, ok := terms[sym]; !ok {
					terms[sym] = struct{}{}
					g.terminals = append(g.terminals, sym)
				}
				continue
			}
			if !declared {
				b.errs = append(b.errs, &verr.SpecError{
					Cause:  semErrUndefinedNonTerminal,
					Detail: sym,
					Row:    r.Pos.Row,
					Col:    r.Pos.Col,
				})
			}
		}

		g.rules[r.Head] = append(g.rules[r.Head], &Rule{
			Head: r.Head,
			Body: r.Body,
		})
	}
	if len(b.errs) > 0 {
		return nil, b.errs
	}

	id := 1
	for _, head := range g.order {
		for _, r := range g.rules[head] {
			r.ID = id
			id++
		}
	}

	var err error
	g.first, err = genFirstSet(g)
	if err != nil {
		return nil, err
	}
	g.follow, err = genFollowSet(g, g.first)
	if err != nil {
		return nil, err
	}

	for _, nt := range g.unreachable() {
		tracer().Infof("%v is unreachable from %v", nt, g.start)
	}
	tracer().Debugf("grammar: %v non-terminals, %v terminals, %v rules", len(g.order), len(g.terminals), id-1)

	return g, nil
}

func (g *Grammar) unreachable() []string {
	reached := map[string]struct{}{
		g.start: {},
	}
	stack := []string{g.start}
	for len(stack) > 0 {
		nt := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, r := range g.rules[nt] {
			for _, sym := range r.Body {
				if g.IsTerminal(sym) {
					continue
				}
				if _, ok := reached[sym]; ok {
					continue
				}
				reached[sym] = struct{}{}
				stack = append(stack, sym)
			}
		}
	}
	var syms []string
	for _, nt := range g.order {
		if _, ok := reached[nt]; !ok {
			syms = append(syms, nt)
		}
	}
	return syms
}

func (g *Grammar) Start() string {
	return g.start
}

// NonTerminals returns the non-terminals in rule order.
func (g *Grammar) NonTerminals() []string {
	return append([]string{}, g.order...)
}

// Terminals returns the terminals in the order of their first appearance.
func (g *Grammar) Terminals() []string {
	return append([]string{}, g.terminals...)
}

func (g *Grammar) IsTerminal(sym string) bool {
	_, ok := g.rules[sym]
	return !ok
}

// Alternatives returns the rules of a non-terminal in declaration order.
func (g *Grammar) Alternatives(nt string) []*Rule {
	return g.rules[nt]
}

// Rules returns every rule ordered by ID.
func (g *Grammar) Rules() []*Rule {
	var rules []*Rule
	for _, head := range g.order {
		rules = append(rules, g.rules[head]...)
	}
	return rules
}

// RuleID returns the ID of the rule `head, body`.
func (g *Grammar) RuleID(head string, body []string) (int, error) {
	for _, r := range g.rules[head] {
		if sameBody(r.Body, body) {
			return r.ID, nil
		}
	}
	return 0, fmt.Errorf("%w: %v", ErrRuleNotFound, (&Rule{Head: head, Body: body}).String())
}

// Rule returns the rule with an ID.
func (g *Grammar) Rule(id int) (*Rule, error) {
	for _, head := range g.order {
		for _, r := range g.rules[head] {
			if r.ID == id {
				return r, nil
			}
		}
	}
	return nil, fmt.Errorf("%w: #%v", ErrRuleNotFound, id)
}

// First returns the terminals that can begin a derivation of sym and whether sym
// derives the empty string. The First of a terminal is the terminal itself.
func (g *Grammar) First(sym string) ([]string, bool) {
	e, err := g.first.find([]string{sym}, 0)
	if err != nil {
		return nil, false
	}
	return e.sorted(), e.empty
}

// FirstOfBody is First of a sequence of symbols.
func (g *Grammar) FirstOfBody(body []string) ([]string, bool) {
	e, err := g.first.find(body, 0)
	if err != nil {
		return nil, false
	}
	return e.sorted(), e.empty
}

// Follow returns the terminals that can follow nt, EndMarker included.
func (g *Grammar) Follow(nt string) []string {
	e, err := g.follow.find(nt)
	if err != nil {
		return nil
	}
	return e.sorted()
}

// FirstFollowString lists First and then Follow of every non-terminal in rule order,
// `First(S) = {(, 1}; ...; Follow(S) = {$, )}`. The empty string is written as ''.
func (g *Grammar) FirstFollowString() string {
	var entries []string
	for _, nt := range g.order {
		syms, empty := g.First(nt)
		if empty {
			syms = append([]string{spec.EmptyBody}, syms...)
		}
		entries = append(entries, fmt.Sprintf("First(%v) = {%v}", nt, strings.Join(syms, ", ")))
	}
	for _, nt := range g.order {
		entries = append(entries, fmt.Sprintf("Follow(%v) = {%v}", nt, strings.Join(g.Follow(nt), ", ")))
	}
	return strings.Join(entries, "; ")
}
