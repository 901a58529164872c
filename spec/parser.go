package spec

import (
	"io"

	verr "github.com/nihei9/lltab/error"
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'lltab.spec'.
func tracer() tracing.Trace {
	return tracing.Select("lltab.spec")
}

// EmptyBody is the text that denotes the empty body in the grammar text format.
const EmptyBody = "''"

// EndMarker is the symbol of the end of input. It must not appear in a grammar.
const EndMarker = "$"

// GrammarSource is a parsed grammar text: its rules in the order of the lines.
type GrammarSource struct {
	Rules []*RuleNode
}

// RuleNode is one `head, body` line. Body is empty for the empty body.
type RuleNode struct {
	Head string
	Body []string
	Pos  Position
}

// ParseGrammar reads a grammar text. Each line holds one rule: the head symbol, a comma
// and the body symbols separated by white space. `''` denotes the empty body and `#`
// starts a comment. Every line containing a syntax error is reported; the result is
// then a verr.SpecErrors.
func ParseGrammar(src io.Reader) (*GrammarSource, error) {
	p, err := newParser(src)
	if err != nil {
		return nil, err
	}
	return p.parse()
}

func raiseSyntaxError(row, col int, synErr *SyntaxError) {
	panic(&verr.SpecError{
		Cause: synErr,
		Row:   row,
		Col:   col,
	})
}

func raiseSyntaxErrorWithDetail(pos Position, synErr *SyntaxError, detail string) {
	panic(&verr.SpecError{
		Cause:  synErr,
		Detail: detail,
		Row:    pos.Row,
		Col:    pos.Col,
	})
}

type parser struct {
	lex     *lexer
	lastTok *token
	errs    verr.SpecErrors
}

func newParser(src io.Reader) (*parser, error) {
	lex, err := newLexer(src)
	if err != nil {
		return nil, err
	}
	return &parser{
		lex: lex,
	}, nil
}

func (p *parser) parse() (*GrammarSource, error) {
	src := &GrammarSource{}
	for {
		rule, done, err := p.parseLine()
		if err != nil {
			return nil, err
		}
		if rule != nil {
			src.Rules = append(src.Rules, rule)
		}
		if done {
			break
		}
	}
	if len(p.errs) > 0 {
		return nil, p.errs
	}
	if len(src.Rules) == 0 {
		return nil, verr.SpecErrors{
			{
				Cause: synErrNoRule,
			},
		}
	}

	tracer().Debugf("parsed %v rules", len(src.Rules))

	return src, nil
}

// parseLine parses one line. A syntax error is recorded and the rest of the line is
// skipped, so that the following lines are still checked. An I/O error aborts.
func (p *parser) parseLine() (rule *RuleNode, done bool, retErr error) {
	defer func() {
		v := recover()
		if v == nil {
			return
		}
		switch err := v.(type) {
		case *verr.SpecError:
			p.errs = append(p.errs, err)
			rule = nil
			done, retErr = p.skipLine()
		case error:
			rule, done, retErr = nil, true, err
		default:
			panic(v)
		}
	}()

	tok := p.next()
	switch tok.kind {
	case tokenKindEOF:
		return nil, true, nil
	case tokenKindNewline:
		return nil, false, nil
	case tokenKindSymbol:
	case tokenKindInvalid:
		raiseSyntaxErrorWithDetail(tok.pos, synErrInvalidToken, tok.text)
	default:
		raiseSyntaxError(tok.pos.Row, tok.pos.Col, synErrNoHead)
	}
	if tok.text == EndMarker {
		raiseSyntaxError(tok.pos.Row, tok.pos.Col, synErrReservedSymbol)
	}
	rule = &RuleNode{
		Head: tok.text,
		Body: []string{},
		Pos:  tok.pos,
	}

	tok = p.next()
	if tok.kind != tokenKindComma {
		raiseSyntaxError(tok.pos.Row, tok.pos.Col, synErrNoComma)
	}

	empty := false
	count := 0
	for {
		tok = p.next()
		switch tok.kind {
		case tokenKindSymbol:
			if tok.text == EndMarker {
				raiseSyntaxError(tok.pos.Row, tok.pos.Col, synErrReservedSymbol)
			}
			rule.Body = append(rule.Body, tok.text)
			count++
			continue
		case tokenKindEmpty:
			empty = true
			count++
			continue
		case tokenKindComma:
			raiseSyntaxError(tok.pos.Row, tok.pos.Col, synErrUnexpectedComma)
		case tokenKindInvalid:
			raiseSyntaxErrorWithDetail(tok.pos, synErrInvalidToken, tok.text)
		}
		break
	}
	if count == 0 {
		raiseSyntaxError(rule.Pos.Row, rule.Pos.Col, synErrNoBody)
	}
	if empty && count > 1 {
		raiseSyntaxError(rule.Pos.Row, rule.Pos.Col, synErrEmptyNotAlone)
	}

	return rule, tok.kind == tokenKindEOF, nil
}

// skipLine consumes tokens up to the end of the current line.
func (p *parser) skipLine() (bool, error) {
	if p.lastTok != nil {
		switch p.lastTok.kind {
		case tokenKindNewline:
			return false, nil
		case tokenKindEOF:
			return true, nil
		}
	}
	for {
		tok, err := p.lex.next()
		if err != nil {
			return true, err
		}
		switch tok.kind {
		case tokenKindNewline:
			return false, nil
		case tokenKindEOF:
			return true, nil
		}
	}
}

// next returns the next token. An error of the lexer is raised as is and aborts
// parsing.
func (p *parser) next() *token {
	tok, err := p.lex.next()
	if err != nil {
		panic(err)
	}
	p.lastTok = tok
	return tok
}
