package smtlib

import "fmt"

// ParseError reports malformed input at a position of a named source.
type ParseError struct {
	Name   string
	Line   int
	Column int
	Msg    string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("Parse Error: %s:%d.%d: %s", e.Name, e.Line, e.Column, e.Msg)
}

func parseErrorf(name string, line, col int, format string, args ...any) *ParseError {
	return &ParseError{Name: name, Line: line, Column: col, Msg: fmt.Sprintf(format, args...)}
}
