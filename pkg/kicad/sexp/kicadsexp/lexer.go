package kicadsexp

import (
	"strings"

	"github.com/alecthomas/participle/v2/lexer"
)

// SexpLexer defines the lexical structure of KiCad S-expression files.
// Every byte of input matches exactly one rule, so lexing itself never fails;
// an unterminated string is surfaced as its own token class.
var SexpLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Whitespace", Pattern: `[ \t\r\n]+`},
	{Name: "LParen", Pattern: `\(`},
	{Name: "RParen", Pattern: `\)`},

	// Quoted string; a backslash escapes the following character
	{Name: "String", Pattern: `"(?:[^"\\]|\\[\s\S])*"`},

	// Opening quote with no closing quote before end of input
	{Name: "Unterminated", Pattern: `"[\s\S]*`},

	// Bare token: maximal run of anything but whitespace and parentheses
	{Name: "Atom", Pattern: `[^ \t\r\n()"][^ \t\r\n()]*`},
})

var (
	symbols          = SexpLexer.Symbols()
	ruleWhitespace   = symbols["Whitespace"]
	ruleLParen       = symbols["LParen"]
	ruleRParen       = symbols["RParen"]
	ruleString       = symbols["String"]
	ruleUnterminated = symbols["Unterminated"]
	ruleAtom         = symbols["Atom"]
)

// TokenType represents the type of a token
type TokenType int

const (
	TokenEOF TokenType = iota
	TokenLeftParen
	TokenRightParen
	TokenSymbol
	TokenString
)

// Token represents a lexical token
type Token struct {
	Type   TokenType
	Value  string
	Offset int // byte offset of the first character
}

// Lexer tokenizes S-expression text, skipping whitespace.
type Lexer struct {
	lex    lexer.Lexer
	offset int
	size   int
}

// NewLexer creates a new lexer over text
func NewLexer(text string) (*Lexer, error) {
	lex, err := SexpLexer.LexString("", text)
	if err != nil {
		return nil, &SyntaxError{Offset: 0, Msg: err.Error()}
	}
	return &Lexer{lex: lex, size: len(text)}, nil
}

// NextToken reads the next significant token from the input
func (l *Lexer) NextToken() (Token, error) {
	for {
		tok, err := l.lex.Next()
		if err != nil {
			return Token{}, &SyntaxError{Offset: l.offset, Msg: err.Error()}
		}
		if tok.EOF() {
			return Token{Type: TokenEOF, Offset: l.size}, nil
		}
		l.offset = tok.Pos.Offset

		switch tok.Type {
		case ruleWhitespace:
			continue
		case ruleLParen:
			return Token{Type: TokenLeftParen, Value: "(", Offset: tok.Pos.Offset}, nil
		case ruleRParen:
			return Token{Type: TokenRightParen, Value: ")", Offset: tok.Pos.Offset}, nil
		case ruleString:
			return Token{Type: TokenString, Value: unescape(tok.Value), Offset: tok.Pos.Offset}, nil
		case ruleUnterminated:
			return Token{}, &SyntaxError{Offset: tok.Pos.Offset, Msg: "unterminated string"}
		case ruleAtom:
			return Token{Type: TokenSymbol, Value: tok.Value, Offset: tok.Pos.Offset}, nil
		default:
			return Token{}, &SyntaxError{Offset: tok.Pos.Offset, Msg: "unexpected input " + quote(tok.Value)}
		}
	}
}

// unescape strips the surrounding quotes of a String token and resolves
// backslash escapes. \n, \t and \r become control characters; any other
// escaped character stands for itself.
func unescape(raw string) string {
	body := raw[1 : len(raw)-1]
	if !strings.Contains(body, `\`) {
		return body
	}

	var b strings.Builder
	b.Grow(len(body))
	for i := 0; i < len(body); i++ {
		c := body[i]
		if c != '\\' || i+1 == len(body) {
			b.WriteByte(c)
			continue
		}
		i++
		switch body[i] {
		case 'n':
			b.WriteByte('\n')
		case 't':
			b.WriteByte('\t')
		case 'r':
			b.WriteByte('\r')
		default:
			b.WriteByte(body[i])
		}
	}
	return b.String()
}
