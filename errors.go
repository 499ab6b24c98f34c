package rescope

import (
	"github.com/0x4d5352/rescope/internal/automata"
	"github.com/0x4d5352/rescope/internal/lexer"
	"github.com/0x4d5352/rescope/internal/parser"
)

// The error taxonomy of spec §7, re-exported at the facade so callers
// never need to import internal packages to type-switch on them.
type (
	// LexerError is raised when a pattern cannot be tokenized: an
	// unknown flag, a missing closing delimiter, a pattern shorter than
	// two characters, or a malformed escape sequence.
	LexerError = lexer.Error
	// ParseError wraps one or more syntax violations raised while
	// parsing a pattern's token stream.
	ParseError = parser.ParseError
	// SyntaxError describes one parse failure at a byte offset with a
	// human-readable expectation.
	SyntaxError = parser.SyntaxError
	// UnsupportedFeatureError reports that the automata pipeline was
	// asked to process a construct outside the regular languages.
	UnsupportedFeatureError = automata.UnsupportedFeatureError
	// ComplexityError reports that a construction exceeded one of the
	// pipeline's budget ceilings.
	ComplexityError = automata.ComplexityError
)
