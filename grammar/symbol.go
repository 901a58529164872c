package grammar

import (
	"sort"
	"unicode"

	"github.com/nihei9/lltab/spec"
)

// EndMarker is the lookahead of the end of input. It belongs to Follow of the start
// symbol.
const EndMarker = spec.EndMarker

// Classifier reports whether a body symbol is a terminal. declared tells whether the
// symbol is the head of some rule.
type Classifier func(sym string, declared bool) bool

// DefaultClassifier treats the heads of the rules as non-terminals and every other
// symbol as a terminal.
func DefaultClassifier(sym string, declared bool) bool {
	return !declared
}

// UpperCaseClassifier treats the symbols written in upper case letters only as
// non-terminals. `E'` counts as upper case.
func UpperCaseClassifier(sym string, declared bool) bool {
	upper := false
	for _, c := range sym {
		if unicode.IsLower(c) {
			return true
		}
		if unicode.IsUpper(c) {
			upper = true
		}
	}
	return !upper
}

// symbolKey orders letters before every other character.
func symbolKey(c rune) rune {
	if unicode.IsLetter(c) {
		return c
	}
	return c + 'z'
}

// lessSymbol orders symbols character by character, letters first.
func lessSymbol(a, b string) bool {
	ra := []rune(a)
	rb := []rune(b)
	for i := 0; i < len(ra) && i < len(rb); i++ {
		ka, kb := symbolKey(ra[i]), symbolKey(rb[i])
		if ka != kb {
			return ka < kb
		}
	}
	return len(ra) < len(rb)
}

func sortSymbols(syms []string) []string {
	sort.Slice(syms, func(i, j int) bool {
		return lessSymbol(syms[i], syms[j])
	})
	return syms
}
