package automaton

import (
	"fmt"
	"sort"
	"unicode"
)

// Symbol is an input symbol of an automaton. Non-negative values are characters;
// the negative values are reserved for the two special symbols.
type Symbol rune

const (
	// Epsilon labels an empty transition. It never appears in an alphabet and is
	// removed by determinization.
	Epsilon = Symbol(-1)

	// Any matches every character for which the state it leaves has no explicit
	// transition. It stays a symbol of its own until serialization.
	Any = Symbol(-2)

	// CharMin and CharMax bound the addressable character space. The serialized form
	// stores a symbol in one byte and reserves 0x00 for Any.
	CharMin = Symbol(0x01)
	CharMax = Symbol(0xff)
)

// IsChar reports whether s is an ordinary character.
func (s Symbol) IsChar() bool {
	return s >= 0
}

// IsAddressable reports whether s fits the serialized symbol space.
func (s Symbol) IsAddressable() bool {
	return s == Any || (s >= CharMin && s <= CharMax)
}

func (s Symbol) String() string {
	switch s {
	case Epsilon:
		return "&"
	case Any:
		return `\.`
	}
	return fmt.Sprintf("%q", rune(s))
}

// LowercaseLetters returns every character of the addressable space that is a
// lowercase letter.
func LowercaseLetters() []Symbol {
	var syms []Symbol
	for c := CharMin; c <= CharMax; c++ {
		if unicode.IsLetter(rune(c)) && unicode.IsLower(rune(c)) {
			syms = append(syms, c)
		}
	}
	return syms
}

// Digits returns the decimal digits.
func Digits() []Symbol {
	syms := make([]Symbol, 0, 10)
	for c := '0'; c <= '9'; c++ {
		syms = append(syms, Symbol(c))
	}
	return syms
}

// Whitespace returns every character of the addressable space that is white space.
func Whitespace() []Symbol {
	var syms []Symbol
	for c := CharMin; c <= CharMax; c++ {
		if unicode.IsSpace(rune(c)) {
			syms = append(syms, c)
		}
	}
	return syms
}

// Alphabet is a set of symbols.
type Alphabet map[Symbol]struct{}

func (a Alphabet) add(syms ...Symbol) {
	for _, s := range syms {
		if s == Epsilon {
			continue
		}
		a[s] = struct{}{}
	}
}

// Has reports whether s is a member of the alphabet.
func (a Alphabet) Has(s Symbol) bool {
	_, ok := a[s]
	return ok
}

// Sorted returns the symbols in ascending order; Any comes first.
func (a Alphabet) Sorted() []Symbol {
	syms := make([]Symbol, 0, len(a))
	for s := range a {
		syms = append(syms, s)
	}
	sortSymbols(syms)
	return syms
}

func sortSymbols(syms []Symbol) {
	sort.Slice(syms, func(i, j int) bool {
		return syms[i] < syms[j]
	})
}
