package parser

import (
	"strconv"
	"strings"

	"github.com/0x4d5352/rescope/internal/ast"
	"github.com/0x4d5352/rescope/internal/token"
	"github.com/0x4d5352/rescope/internal/unescape"
)

func parseCallout(t token.Token) ast.Node {
	inner := extractBetween(t.Text, "(?C", ")")
	if inner == "" {
		return ast.NewCallout(t.Span, 0, false, "")
	}
	if inner[0] == '"' {
		return ast.NewCallout(t.Span, 0, false, strings.Trim(inner, `"`))
	}
	n, err := strconv.Atoi(inner)
	if err != nil {
		return ast.NewCallout(t.Span, 0, false, inner)
	}
	return ast.NewCallout(t.Span, n, true, "")
}

// parseUnicodeProp decodes \p{Name}, \pN, \P{Name}, \PN.
func parseUnicodeProp(t token.Token) ast.Node {
	text := t.Text
	negated := text[1] == 'P'
	rest := text[2:]
	braces := strings.HasPrefix(rest, "{")
	name := strings.TrimSuffix(strings.TrimPrefix(rest, "{"), "}")
	return ast.NewUnicodeProp(t.Span, name, braces, negated)
}

// parseUnicodeEscape decodes \x{H...}, \xHH, \uHHHH, \u{H...} into a single
// code point, preserving the original spelling.
func parseUnicodeEscape(t token.Token) ast.Node {
	text := t.Text
	var digits string
	if idx := strings.IndexByte(text, '{'); idx >= 0 {
		digits = strings.TrimSuffix(text[idx+1:], "}")
	} else {
		digits = text[2:]
	}
	r, ok := unescape.Hex(digits)
	if !ok {
		r = 0xFFFD
	}
	return ast.NewCharLiteral(t.Span, r, text, ast.CharUnicode)
}

// parseOctalEscape decodes \NNN (legacy) or \o{O...} (full range).
func parseOctalEscape(t token.Token) ast.Node {
	text := t.Text
	if strings.HasPrefix(text, `\o{`) {
		digits := strings.TrimSuffix(strings.TrimPrefix(text, `\o{`), "}")
		r, ok := unescape.OctalFull(digits)
		if !ok {
			r = 0xFFFD
		}
		return ast.NewCharLiteral(t.Span, r, text, ast.CharOctal)
	}
	digits := text[1:]
	r, ok := unescape.Octal(digits)
	if !ok {
		r = 0xFFFD
	}
	return ast.NewCharLiteral(t.Span, r, text, ast.CharOctalLegacy)
}

func parseControlEscape(t token.Token) ast.Node {
	x := t.Text[2]
	return ast.NewCharLiteral(t.Span, unescape.Control(x), t.Text, ast.CharUnicode)
}

// parseBackref decodes \1, \g{1}, \g1, \g-1, \k<name>, \k'name', \k{name}.
// \g<name> is lexed as a Subroutine token and does not reach here.
func parseBackref(t token.Token) ast.Node {
	text := t.Text
	switch {
	case strings.HasPrefix(text, `\g{`):
		return ast.NewBackref(t.Span, extractBetween(text, `\g{`, "}"), false)
	case strings.HasPrefix(text, `\g`):
		return ast.NewBackref(t.Span, text[2:], false)
	case strings.HasPrefix(text, `\k<`):
		return ast.NewBackref(t.Span, extractBetween(text, `\k<`, ">"), true)
	case strings.HasPrefix(text, `\k'`):
		return ast.NewBackref(t.Span, extractBetween(text, `\k'`, "'"), true)
	case strings.HasPrefix(text, `\k{`):
		return ast.NewBackref(t.Span, extractBetween(text, `\k{`, "}"), true)
	default:
		return ast.NewBackref(t.Span, text[1:], false)
	}
}

func parsePcreVerb(t token.Token) ast.Node {
	inner := extractBetween(t.Text, "(*", ")")
	if idx := strings.IndexByte(inner, ':'); idx >= 0 {
		return ast.NewPcreVerb(t.Span, inner[:idx], inner[idx+1:])
	}
	return ast.NewPcreVerb(t.Span, inner, "")
}

func parseLimitMatch(t token.Token) ast.Node {
	inner := extractBetween(t.Text, "(*", ")")
	_, numStr, _ := strings.Cut(inner, "=")
	n, _ := strconv.Atoi(numStr)
	return ast.NewLimitMatch(t.Span, n)
}

func parseScriptRun(t token.Token) ast.Node {
	inner := extractBetween(t.Text, "(*", ")")
	name, _, _ := strings.Cut(inner, ":")
	atomic := strings.HasPrefix(name, "atomic_")
	return ast.NewScriptRun(t.Span, strings.TrimPrefix(name, "atomic_"), atomic)
}
