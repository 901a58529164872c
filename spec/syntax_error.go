package spec

import "fmt"

type SyntaxError struct {
	message string
}

func newSyntaxError(message string) *SyntaxError {
	return &SyntaxError{
		message: message,
	}
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("syntax error: %s", e.message)
}

var (
	// grammar text
	synErrInvalidToken    = newSyntaxError("invalid token")
	synErrNoRule          = newSyntaxError("a grammar must have at least one rule")
	synErrNoHead          = newSyntaxError("a rule must start with its head symbol")
	synErrNoComma         = newSyntaxError("a comma must follow the head symbol")
	synErrNoBody          = newSyntaxError("a rule needs a body; write '' for the empty body")
	synErrEmptyNotAlone   = newSyntaxError("'' must be the only symbol of a body")
	synErrUnexpectedComma = newSyntaxError("a body must not contain a comma")
	synErrReservedSymbol  = newSyntaxError("$ is reserved for the end of input")

	// token specifications
	synErrTokenSpecNotObject  = newSyntaxError("token specifications must be a JSON object")
	synErrDuplicateKind       = newSyntaxError("a token kind is defined twice")
	synErrAmbiguousTokenShape = newSyntaxError("a token needs either a string or transitions, not both")
	synErrNoTokenShape        = newSyntaxError("a token needs a string or transitions")
	synErrInvalidString       = newSyntaxError("a string must be a string or a list of strings")
	synErrNoFinalStates       = newSyntaxError("a token defined by transitions needs final states")
	synErrInvalidTransition   = newSyntaxError("a transition must be [state, symbol, next state]")
)
