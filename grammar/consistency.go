package grammar

import (
	"fmt"
	"strings"

	mlspec "github.com/nihei9/maleeni/spec"
)

// TokenError is a mismatch between the terminals of a grammar and a set of token kinds.
type TokenError struct {
	Cause   error
	Symbols []string
}

func (e *TokenError) Error() string {
	return fmt.Sprintf("%v: %v", e.Cause, strings.Join(e.Symbols, ", "))
}

func (e *TokenError) Unwrap() error {
	return e.Cause
}

// CheckTokens compares the terminals of g with the kinds a lexer can produce. Every
// terminal without a kind is an ErrUndefinedTokenReference, every kind the grammar
// never uses is an ErrUnusedTokenDefinition, and symbols that differ only in spelling
// (`left_paren` and `LeftParen`) are an ErrSpellingInconsistency. Only the undefined
// references keep a parser from working; the others are advisory.
func CheckTokens(g *Grammar, kinds []string) []*TokenError {
	var errs []*TokenError

	defined := map[string]struct{}{}
	for _, k := range kinds {
		defined[k] = struct{}{}
	}
	used := map[string]struct{}{}
	for _, t := range g.terminals {
		used[t] = struct{}{}
		if _, ok := defined[t]; ok {
			continue
		}
		tracer().Errorf("undefined token: %v", t)
		errs = append(errs, &TokenError{
			Cause:   ErrUndefinedTokenReference,
			Symbols: []string{t},
		})
	}
	for _, k := range kinds {
		if _, ok := used[k]; ok {
			continue
		}
		tracer().Infof("unused token: %v", k)
		errs = append(errs, &TokenError{
			Cause:   ErrUnusedTokenDefinition,
			Symbols: []string{k},
		})
	}

	ids := append(g.Terminals(), kinds...)
	for _, dup := range mlspec.FindSpellingInconsistencies(ids) {
		errs = append(errs, &TokenError{
			Cause:   ErrSpellingInconsistency,
			Symbols: dup,
		})
	}

	return errs
}

// IsFatal reports whether a token error keeps a parser from working.
func (e *TokenError) IsFatal() bool {
	return e.Cause == ErrUndefinedTokenReference
}
