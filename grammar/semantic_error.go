package grammar

import "errors"

type SemanticError struct {
	message string
}

func newSemanticError(message string) *SemanticError {
	return &SemanticError{
		message: message,
	}
}

func (e *SemanticError) Error() string {
	return e.message
}

var (
	semErrNoRule               = newSemanticError("a grammar needs at least one rule")
	semErrHeadIsTerminal       = newSemanticError("the head of a rule must be a non-terminal")
	semErrDuplicateRule        = newSemanticError("duplicate rule")
	semErrUndefinedNonTerminal = newSemanticError("a non-terminal has no rule")
)

var (
	// ErrGrammarNotLL1 is wrapped by NotLL1Error.
	ErrGrammarNotLL1 = errors.New("the grammar is not LL(1)")

	// ErrRuleNotFound means a rule was looked up that the grammar does not have.
	ErrRuleNotFound = errors.New("rule not found")

	ErrUndefinedTokenReference = errors.New("a terminal has no token definition")
	ErrUnusedTokenDefinition   = errors.New("a token definition is not used by the grammar")
	ErrSpellingInconsistency   = errors.New("symbols differ only in spelling")
)
