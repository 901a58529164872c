package lexical

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedSpecification reports a token specification that cannot be turned into
	// an automaton.
	ErrMalformedSpecification = errors.New("malformed token specification")

	ErrNoTokenSpec           = errors.New("the lexical specification must have at least one token")
	ErrDuplicateKind         = errors.New("a token kind is defined twice")
	ErrSpellingInconsistency = errors.New("token kinds differ only in spelling")
)

// CompileError is an error in the specification of one token kind.
type CompileError struct {
	Kind   string
	Cause  error
	Detail string
}

func (e *CompileError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("%v: %v", e.Kind, e.Cause)
	}
	return fmt.Sprintf("%v: %v: %v", e.Kind, e.Cause, e.Detail)
}

func (e *CompileError) Unwrap() error {
	return e.Cause
}
