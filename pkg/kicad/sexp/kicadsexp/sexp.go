// Package kicadsexp provides a lightweight S-expression parser for KiCad
// files. It knows nothing about schematics: text goes in, a tree of atoms and
// lists comes out.
package kicadsexp

import (
	"os"
	"strings"
)

// Sexp represents an S-expression node.
// It is either a leaf (Symbol) or a list (*List).
type Sexp interface {
	// IsLeaf returns true if this is an atom (not a list)
	IsLeaf() bool

	// String returns the S-expression text for the node
	String() string
}

// Symbol represents an atom: a bare token or the unescaped body of a quoted string.
type Symbol string

func (s Symbol) IsLeaf() bool { return true }

func (s Symbol) String() string {
	if needsQuoting(string(s)) {
		return quote(string(s))
	}
	return string(s)
}

// List represents a parenthesized list of S-expressions
type List struct {
	elements []Sexp
	offset   int
}

// NewList builds a list from the given elements.
func NewList(elements ...Sexp) *List {
	return &List{elements: elements}
}

func (l *List) IsLeaf() bool { return false }

// Len returns the number of elements in the list
func (l *List) Len() int {
	return len(l.elements)
}

// Get returns the element at the given index, or nil when out of range
func (l *List) Get(index int) Sexp {
	if index < 0 || index >= len(l.elements) {
		return nil
	}
	return l.elements[index]
}

// Items returns the list elements. The slice must not be modified.
func (l *List) Items() []Sexp {
	return l.elements
}

// Head returns the first element, or nil for an empty list
func (l *List) Head() Sexp {
	return l.Get(0)
}

// Offset returns the byte offset of the opening parenthesis in the source text.
func (l *List) Offset() int {
	return l.offset
}

func (l *List) String() string {
	var b strings.Builder
	b.WriteByte('(')
	for i, elem := range l.elements {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(elem.String())
	}
	b.WriteByte(')')
	return b.String()
}

func needsQuoting(s string) bool {
	if s == "" || s[0] == '"' {
		return true
	}
	return strings.ContainsAny(s, " \t\r\n()")
}

func quote(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"', '\\':
			b.WriteByte('\\')
			b.WriteRune(r)
		case '\n':
			b.WriteString(`\n`)
		case '\t':
			b.WriteString(`\t`)
		case '\r':
			b.WriteString(`\r`)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
	return b.String()
}

// Parse parses a document holding exactly one S-expression.
func Parse(text string) (Sexp, error) {
	return ParseWithOptions(text, Options{})
}

// ParseWithOptions is Parse with explicit parser options.
func ParseWithOptions(text string, opts Options) (Sexp, error) {
	p, err := NewParser(text, opts)
	if err != nil {
		return nil, err
	}
	return p.ParseOne()
}

// ParseAll parses every top-level S-expression in text.
func ParseAll(text string) ([]Sexp, error) {
	p, err := NewParser(text, Options{})
	if err != nil {
		return nil, err
	}
	return p.ParseAll()
}

// ParseRoot parses text and checks that it is a single list whose first atom
// is rootTag, e.g. "kicad_sch".
func ParseRoot(text, rootTag string, opts Options) (*List, error) {
	s, err := ParseWithOptions(text, opts)
	if err != nil {
		return nil, err
	}

	list, ok := s.(*List)
	if !ok {
		return nil, &FormatError{Tag: rootTag, Msg: "document root is an atom, expected a list"}
	}

	head, ok := list.Head().(Symbol)
	if !ok {
		return nil, &FormatError{Tag: rootTag, Msg: "document root has no tag"}
	}
	if string(head) != rootTag {
		return nil, &FormatError{Tag: rootTag, Msg: "unexpected root tag " + quote(string(head))}
	}

	return list, nil
}

// ParseFile reads a file and parses it with ParseRoot.
func ParseFile(filename, rootTag string, opts Options) (*List, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	return ParseRoot(string(data), rootTag, opts)
}
