package kicadsexp

import (
	"errors"
	"strings"
	"testing"
)

func TestParseBareTokenRoundTrip(t *testing.T) {
	tokens := []string{
		"a",
		"kicad_sch",
		"20231120",
		"-2.54",
		"Device:R",
		"a\"b",
		"${REFERENCE}",
		"~",
	}

	for _, tok := range tokens {
		t.Run(tok, func(t *testing.T) {
			s, err := Parse("(" + tok + ")")
			if err != nil {
				t.Fatalf("Parse failed: %v", err)
			}
			list, ok := s.(*List)
			if !ok {
				t.Fatalf("expected list, got %T", s)
			}
			if list.Len() != 1 {
				t.Fatalf("expected 1 element, got %d", list.Len())
			}
			if got := list.Get(0); got != Symbol(tok) {
				t.Errorf("element = %q, want %q", got, tok)
			}
		})
	}
}

func TestParseQuotedStrings(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "simple", input: `("hello")`, want: "hello"},
		{name: "with spaces", input: `("Example Board")`, want: "Example Board"},
		{name: "escaped quote", input: `("a\"b")`, want: `a"b`},
		{name: "escaped backslash", input: `("a\\b")`, want: `a\b`},
		{name: "newline escape", input: `("line1\nline2")`, want: "line1\nline2"},
		{name: "parens inside", input: `("f(x)")`, want: "f(x)"},
		{name: "empty", input: `("")`, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := Parse(tt.input)
			if err != nil {
				t.Fatalf("Parse failed: %v", err)
			}
			got := s.(*List).Get(0)
			if got != Symbol(tt.want) {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseNestedAndEmptyLists(t *testing.T) {
	s, err := Parse("(a () (b (c d)) \t\r\n e)")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	root := s.(*List)
	if root.Len() != 4 {
		t.Fatalf("expected 4 elements, got %d", root.Len())
	}
	if empty, ok := root.Get(1).(*List); !ok || empty.Len() != 0 {
		t.Errorf("expected empty list at index 1, got %v", root.Get(1))
	}
	inner := root.Get(2).(*List).Get(1).(*List)
	if inner.String() != "(c d)" {
		t.Errorf("inner = %s, want (c d)", inner)
	}
	if root.Get(3) != Symbol("e") {
		t.Errorf("last element = %v, want e", root.Get(3))
	}
}

func TestParseSyntaxErrors(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		wantOffset int
	}{
		{name: "unterminated string", input: `(a "abc`, wantOffset: 3},
		{name: "missing close paren", input: "(a (b c)", wantOffset: 8},
		{name: "stray close paren", input: ")", wantOffset: 0},
		{name: "empty input", input: "   ", wantOffset: 3},
		{name: "trailing content", input: "(a) b", wantOffset: 4},
		{name: "escaped quote does not terminate", input: `("a\")`, wantOffset: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.input)
			if err == nil {
				t.Fatal("expected error")
			}
			var syn *SyntaxError
			if !errors.As(err, &syn) {
				t.Fatalf("expected *SyntaxError, got %T: %v", err, err)
			}
			if syn.Offset != tt.wantOffset {
				t.Errorf("offset = %d, want %d", syn.Offset, tt.wantOffset)
			}
			if !errors.Is(err, ErrSyntax) {
				t.Error("errors.Is(err, ErrSyntax) = false")
			}
		})
	}
}

func TestParseNestingTooDeep(t *testing.T) {
	input := strings.Repeat("(", 20) + strings.Repeat(")", 20)

	if _, err := ParseWithOptions(input, Options{MaxDepth: 20}); err != nil {
		t.Fatalf("depth 20 with limit 20 should parse: %v", err)
	}

	_, err := ParseWithOptions(input, Options{MaxDepth: 19})
	var deep *NestingTooDeepError
	if !errors.As(err, &deep) {
		t.Fatalf("expected *NestingTooDeepError, got %v", err)
	}
	if deep.Limit != 19 || deep.Offset != 19 {
		t.Errorf("got limit %d offset %d, want 19/19", deep.Limit, deep.Offset)
	}
	if !errors.Is(err, ErrNestingTooDeep) {
		t.Error("errors.Is(err, ErrNestingTooDeep) = false")
	}
}

func TestParseRoot(t *testing.T) {
	root, err := ParseRoot(`(kicad_sch (version 20231120))`, "kicad_sch", Options{})
	if err != nil {
		t.Fatalf("ParseRoot failed: %v", err)
	}
	if root.Len() != 2 {
		t.Errorf("expected 2 elements, got %d", root.Len())
	}

	for _, input := range []string{`(kicad_pcb (version 1))`, `kicad_sch`, `()`, `(("x"))`} {
		_, err := ParseRoot(input, "kicad_sch", Options{})
		var fe *FormatError
		if !errors.As(err, &fe) {
			t.Errorf("%s: expected *FormatError, got %v", input, err)
			continue
		}
		if fe.Tag != "kicad_sch" {
			t.Errorf("%s: tag = %q, want kicad_sch", input, fe.Tag)
		}
	}
}

func TestParseAllMultipleExpressions(t *testing.T) {
	exprs, err := ParseAll("(a) (b c) d")
	if err != nil {
		t.Fatalf("ParseAll failed: %v", err)
	}
	if len(exprs) != 3 {
		t.Fatalf("expected 3 expressions, got %d", len(exprs))
	}
}

func TestListStringQuotesWhenNeeded(t *testing.T) {
	s, err := Parse(`(property "Reference" "R 1" "")`)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	want := `(property Reference "R 1" "")`
	if got := s.String(); got != want {
		t.Errorf("String() = %s, want %s", got, want)
	}
}
