package kicadsexp

import (
	"errors"
	"fmt"
)

// Sentinel errors for errors.Is matching against the typed errors below.
var (
	ErrSyntax         = errors.New("syntax error")
	ErrFormat         = errors.New("format error")
	ErrNestingTooDeep = errors.New("nesting too deep")
)

// SyntaxError reports malformed S-expression text: an unterminated string,
// unbalanced parentheses or an unexpected end of input.
type SyntaxError struct {
	Offset int // byte offset into the source text
	Msg    string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("syntax error at offset %d: %s", e.Offset, e.Msg)
}

func (e *SyntaxError) Is(target error) bool {
	return target == ErrSyntax
}

// FormatError reports a well-formed tree whose content is not what the
// caller requires, e.g. a wrong root tag or a non-numeric coordinate.
type FormatError struct {
	Tag string // the offending tag name
	Msg string
	Err error
}

func (e *FormatError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("format error in (%s): %s: %v", e.Tag, e.Msg, e.Err)
	}
	return fmt.Sprintf("format error in (%s): %s", e.Tag, e.Msg)
}

func (e *FormatError) Unwrap() error {
	return e.Err
}

func (e *FormatError) Is(target error) bool {
	return target == ErrFormat
}

// NestingTooDeepError is returned when list nesting exceeds the parser limit.
type NestingTooDeepError struct {
	Offset int
	Limit  int
}

func (e *NestingTooDeepError) Error() string {
	return fmt.Sprintf("nesting deeper than %d levels at offset %d", e.Limit, e.Offset)
}

func (e *NestingTooDeepError) Is(target error) bool {
	return target == ErrNestingTooDeep
}
