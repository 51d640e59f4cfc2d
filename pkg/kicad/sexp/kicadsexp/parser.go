package kicadsexp

import (
	"fmt"
	"io"
)

// Parser parses S-expressions from a lexer
type Parser struct {
	lexer   *Lexer
	current Token
}

// NewParser creates a new parser from an io.Reader
func NewParser(r io.Reader) *Parser {
	return &Parser{
		lexer: NewLexer(r),
	}
}

// ParseAll parses all top-level S-expressions from the input
func (p *Parser) ParseAll() ([]Sexp, error) {
	var result []Sexp

	if err := p.advance(); err != nil {
		return nil, err
	}

	for p.current.Type != TokenEOF {
		expr, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		result = append(result, expr)

		if err := p.advance(); err != nil {
			return nil, err
		}
	}

	return result, nil
}

// ParseOne parses the first top-level expression and ignores the rest of
// the input. It is used to sniff file headers.
func (p *Parser) ParseOne() (Sexp, error) {
	if err := p.advance(); err != nil {
		return nil, err
	}
	if p.current.Type == TokenEOF {
		return nil, fmt.Errorf("empty input")
	}
	return p.parseExpr()
}

func (p *Parser) advance() error {
	tok, err := p.lexer.NextToken()
	if err != nil {
		return err
	}
	p.current = tok
	return nil
}

func (p *Parser) parseExpr() (Sexp, error) {
	switch p.current.Type {
	case TokenLeftParen:
		return p.parseList()

	case TokenSymbol, TokenString:
		return Symbol(p.current.Value), nil

	case TokenRightParen:
		return nil, fmt.Errorf("line %d: unexpected ')'", p.current.Line)

	default:
		return nil, fmt.Errorf("line %d: unexpected %v", p.current.Line, p.current.Type)
	}
}

func (p *Parser) parseList() (Sexp, error) {
	list := &List{line: p.current.Line}

	for {
		if err := p.advance(); err != nil {
			return nil, err
		}

		switch p.current.Type {
		case TokenRightParen:
			return list, nil
		case TokenEOF:
			return nil, fmt.Errorf("line %d: unexpected EOF in list opened at line %d", p.current.Line, list.line)
		}

		elem, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		list.elements = append(list.elements, elem)
	}
}
