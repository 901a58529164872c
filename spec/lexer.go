package spec

import (
	"fmt"
	"io"
	"strings"
	"sync"

	mlcompiler "github.com/nihei9/maleeni/compiler"
	mldriver "github.com/nihei9/maleeni/driver"
	mlspec "github.com/nihei9/maleeni/spec"
)

type tokenKind string

const (
	tokenKindSymbol  = tokenKind("symbol")
	tokenKindEmpty   = tokenKind("''")
	tokenKindComma   = tokenKind(",")
	tokenKindNewline = tokenKind("newline")
	tokenKindEOF     = tokenKind("eof")
	tokenKindInvalid = tokenKind("invalid")
)

type Position struct {
	Row int
	Col int
}

func newPosition(row, col int) Position {
	return Position{
		Row: row,
		Col: col,
	}
}

type token struct {
	kind tokenKind
	text string
	pos  Position
}

func newSymbolToken(kind tokenKind, pos Position) *token {
	return &token{
		kind: kind,
		pos:  pos,
	}
}

func newGrammarSymbolToken(text string, pos Position) *token {
	return &token{
		kind: tokenKindSymbol,
		text: text,
		pos:  pos,
	}
}

func newEOFToken(pos Position) *token {
	return &token{
		kind: tokenKindEOF,
		pos:  pos,
	}
}

func newInvalidToken(text string, pos Position) *token {
	return &token{
		kind: tokenKindInvalid,
		text: text,
		pos:  pos,
	}
}

// lexEntries is the lexical specification of the grammar text format. Entries listed
// earlier win over later ones matching the same text.
var lexEntries = []*mlspec.LexEntry{
	{Kind: "white_space", Pattern: `[\u{0009}\u{0020}\u{000D}]+`},
	{Kind: "newline", Pattern: `\u{000A}`},
	{Kind: "line_comment", Pattern: `#[^\u{000A}]*`},
	{Kind: "comma", Pattern: `,`},
	{Kind: "empty", Pattern: `''`},
	{Kind: "symbol", Pattern: `[^\u{0009}\u{000A}\u{000D}\u{0020},#]+`},
}

var (
	lexSpecOnce sync.Once
	lexSpec     *mlspec.CompiledLexSpec
	lexSpecErr  error
)

func compiledLexSpec() (*mlspec.CompiledLexSpec, error) {
	lexSpecOnce.Do(func() {
		var cErrs []*mlcompiler.CompileError
		lexSpec, lexSpecErr, cErrs = mlcompiler.Compile(&mlspec.LexSpec{
			Name:    "lltab_grammar",
			Entries: lexEntries,
		}, mlcompiler.CompressionLevel(mlcompiler.CompressionLevelMax))
		if lexSpecErr != nil && len(cErrs) > 0 {
			var b strings.Builder
			fmt.Fprintf(&b, "%v: %v", cErrs[0].Kind, cErrs[0].Cause)
			for _, cErr := range cErrs[1:] {
				fmt.Fprintf(&b, "\n%v: %v", cErr.Kind, cErr.Cause)
			}
			lexSpecErr = fmt.Errorf("failed to compile the grammar lexer: %v", b.String())
		}
		if lexSpecErr == nil {
			tracer().Debugf("grammar lexer compiled: %v kinds", len(lexSpec.KindNames)-1)
		}
	})
	return lexSpec, lexSpecErr
}

type lexer struct {
	s *mlspec.CompiledLexSpec
	d *mldriver.Lexer
}

func newLexer(src io.Reader) (*lexer, error) {
	s, err := compiledLexSpec()
	if err != nil {
		return nil, err
	}
	d, err := mldriver.NewLexer(mldriver.NewLexSpec(s), src)
	if err != nil {
		return nil, err
	}
	return &lexer{
		s: s,
		d: d,
	}, nil
}

func (l *lexer) next() (*token, error) {
	var tok *mldriver.Token
	for {
		var err error
		tok, err = l.d.Next()
		if err != nil {
			return nil, err
		}
		if tok.Invalid {
			return newInvalidToken(string(tok.Lexeme), newPosition(tok.Row+1, tok.Col+1)), nil
		}
		if tok.EOF {
			return newEOFToken(newPosition(tok.Row+1, tok.Col+1)), nil
		}
		switch l.s.KindNames[tok.KindID] {
		case "white_space":
			continue
		case "line_comment":
			continue
		}

		break
	}

	pos := newPosition(tok.Row+1, tok.Col+1)
	switch l.s.KindNames[tok.KindID] {
	case "newline":
		return newSymbolToken(tokenKindNewline, pos), nil
	case "comma":
		return newSymbolToken(tokenKindComma, pos), nil
	case "empty":
		return newSymbolToken(tokenKindEmpty, pos), nil
	case "symbol":
		return newGrammarSymbolToken(string(tok.Lexeme), pos), nil
	default:
		return newInvalidToken(string(tok.Lexeme), pos), nil
	}
}
