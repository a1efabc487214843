package kicadsexp

import "strconv"

// DefaultMaxDepth bounds list nesting when Options.MaxDepth is zero.
const DefaultMaxDepth = 512

// Options controls parser limits
type Options struct {
	MaxDepth int // maximum list nesting; 0 means DefaultMaxDepth
}

// Parser parses S-expressions from a lexer
type Parser struct {
	lexer    *Lexer
	current  Token
	depth    int
	maxDepth int
}

// NewParser creates a new parser over text
func NewParser(text string, opts Options) (*Parser, error) {
	lex, err := NewLexer(text)
	if err != nil {
		return nil, err
	}

	maxDepth := opts.MaxDepth
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}

	return &Parser{lexer: lex, maxDepth: maxDepth}, nil
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

// ParseOne parses exactly one S-expression. Empty input and trailing
// content after the first expression are syntax errors.
func (p *Parser) ParseOne() (Sexp, error) {
	if err := p.advance(); err != nil {
		return nil, err
	}
	if p.current.Type == TokenEOF {
		return nil, &SyntaxError{Offset: p.current.Offset, Msg: "unexpected end of input"}
	}

	expr, err := p.parseExpr()
	if err != nil {
		return nil, err
	}

	if err := p.advance(); err != nil {
		return nil, err
	}
	if p.current.Type != TokenEOF {
		return nil, &SyntaxError{Offset: p.current.Offset, Msg: "unexpected content after top-level expression"}
	}

	return expr, nil
}

func (p *Parser) advance() error {
	tok, err := p.lexer.NextToken()
	if err != nil {
		return err
	}
	p.current = tok
	return nil
}

// parseExpr parses the S-expression starting at the current token
func (p *Parser) parseExpr() (Sexp, error) {
	switch p.current.Type {
	case TokenLeftParen:
		return p.parseList()

	case TokenSymbol, TokenString:
		return Symbol(p.current.Value), nil

	case TokenRightParen:
		return nil, &SyntaxError{Offset: p.current.Offset, Msg: "unexpected ')'"}

	default:
		return nil, &SyntaxError{Offset: p.current.Offset, Msg: "unexpected end of input"}
	}
}

// parseList parses a list: ( ... )
func (p *Parser) parseList() (Sexp, error) {
	start := p.current.Offset

	p.depth++
	if p.depth > p.maxDepth {
		return nil, &NestingTooDeepError{Offset: start, Limit: p.maxDepth}
	}
	defer func() { p.depth-- }()

	var elements []Sexp
	for {
		if err := p.advance(); err != nil {
			return nil, err
		}

		switch p.current.Type {
		case TokenRightParen:
			return &List{elements: elements, offset: start}, nil
		case TokenEOF:
			return nil, &SyntaxError{Offset: p.current.Offset, Msg: "unexpected end of input inside list opened at offset " + strconv.Itoa(start)}
		}

		elem, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		elements = append(elements, elem)
	}
}
