package lexer

import "fmt"

// Error is raised by Lex when the pattern cannot be tokenized: an unknown
// flag, a missing closing delimiter, a pattern shorter than two characters,
// or a malformed escape sequence (spec §4.1, §7).
type Error struct {
	Message string
	Offset  int
}

func (e *Error) Error() string {
	return fmt.Sprintf("lexer: %s (at offset %d)", e.Message, e.Offset)
}

func errorf(offset int, format string, args ...any) *Error {
	return &Error{Message: fmt.Sprintf(format, args...), Offset: offset}
}
