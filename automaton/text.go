package automaton

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

// ErrMalformedText is returned by ParseText when its input does not follow the text
// form of an automaton.
var ErrMalformedText = errors.New("malformed automaton text")

// Text returns the text form of a:
//
//	n;initial;{final,...};{symbol,...};from,symbol,to;...
//
// A state is written as its labels joined by '+'. The symbols '&' and `\.` stand for
// Epsilon and Any; the characters ';', ',', '{', '}', '&' and '\' are escaped with a
// backslash. Token kinds are not part of the text form.
func (a *Automaton) Text() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%v;%v;{", a.StateCount(), a.initial.key)
	for i, s := range a.Finals() {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s.key)
	}
	b.WriteString("};{")
	for i, sym := range a.alphabet.Sorted() {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(symbolText(sym))
	}
	b.WriteString("}")
	for _, e := range a.Edges() {
		fmt.Fprintf(&b, ";%v,%v,%v", e.From.key, symbolText(e.Symbol), e.To.key)
	}
	return b.String()
}

func symbolText(sym Symbol) string {
	switch sym {
	case Epsilon:
		return "&"
	case Any:
		return `\.`
	}
	switch sym {
	case ';', ',', '{', '}', '&', '\\':
		return `\` + string(rune(sym))
	}
	return string(rune(sym))
}

// ParseText reads the text form written by Text. A state count that disagrees with
// the states named in the text is an error.
func ParseText(text string) (*Automaton, error) {
	fields := splitUnescaped(strings.TrimSpace(text), ';')
	if len(fields) < 4 {
		return nil, fmt.Errorf("%w: expected at least 4 fields, got %v", ErrMalformedText, len(fields))
	}
	n, err := strconv.Atoi(fields[0])
	if err != nil {
		return nil, fmt.Errorf("%w: state count: %v", ErrMalformedText, err)
	}
	initial, err := parseStateText(fields[1])
	if err != nil {
		return nil, err
	}
	a := New(initial)

	finals, err := parseBraced(fields[2])
	if err != nil {
		return nil, err
	}
	for _, f := range finals {
		s, err := parseStateText(f)
		if err != nil {
			return nil, err
		}
		a.AddFinal(s)
	}

	syms, err := parseBraced(fields[3])
	if err != nil {
		return nil, err
	}
	for _, f := range syms {
		sym, err := parseSymbolText(f)
		if err != nil {
			return nil, err
		}
		a.alphabet.add(sym)
	}

	for _, field := range fields[4:] {
		if field == "" {
			continue
		}
		parts := splitUnescaped(field, ',')
		if len(parts) != 3 {
			return nil, fmt.Errorf("%w: transition %q", ErrMalformedText, field)
		}
		from, err := parseStateText(parts[0])
		if err != nil {
			return nil, err
		}
		sym, err := parseSymbolText(parts[1])
		if err != nil {
			return nil, err
		}
		to, err := parseStateText(parts[2])
		if err != nil {
			return nil, err
		}
		a.AddTransition(from, sym, to)
	}

	if a.StateCount() != n {
		return nil, fmt.Errorf("%w: declared %v states, found %v", ErrMalformedText, n, a.StateCount())
	}

	tracer().Debugf("parsed automaton text: %v states, %v symbols", a.StateCount(), len(a.alphabet))

	return a, nil
}

func parseBraced(field string) ([]string, error) {
	if len(field) < 2 || field[0] != '{' || field[len(field)-1] != '}' {
		return nil, fmt.Errorf("%w: expected a braced list: %q", ErrMalformedText, field)
	}
	inner := field[1 : len(field)-1]
	if inner == "" {
		return nil, nil
	}
	return splitUnescaped(inner, ','), nil
}

func parseStateText(text string) (State, error) {
	parts := strings.Split(text, "+")
	labels := make([]int, len(parts))
	for i, p := range parts {
		l, err := strconv.Atoi(p)
		if err != nil {
			return State{}, fmt.Errorf("%w: state %q", ErrMalformedText, text)
		}
		labels[i] = l
	}
	return NewState(labels...), nil
}

func parseSymbolText(text string) (Symbol, error) {
	switch text {
	case "", "&":
		return Epsilon, nil
	case `\.`:
		return Any, nil
	}
	if strings.HasPrefix(text, `\`) {
		text = text[1:]
	}
	r, size := utf8.DecodeRuneInString(text)
	if r == utf8.RuneError || size != len(text) {
		return 0, fmt.Errorf("%w: symbol %q", ErrMalformedText, text)
	}
	return Symbol(r), nil
}

// splitUnescaped splits s at every sep that is not preceded by a backslash. Escapes
// are kept in the resulting fields.
func splitUnescaped(s string, sep byte) []string {
	var fields []string
	start := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '\\':
			i++
		case sep:
			fields = append(fields, s[start:i])
			start = i + 1
		}
	}
	return append(fields, s[start:])
}
