package linter

import (
	"strings"
	"unicode"

	"github.com/0x4d5352/rescope/internal/ast"
)

func init() {
	Register(Rule{
		ID:          "regex.lint.escape.suspicious",
		Description: "a backslash escapes a letter with no special regex meaning, which PCRE2 rejects and other engines silently treat as the bare letter",
		Check:       checkSuspiciousEscape,
	})
}

// checkSuspiciousEscape relies on the lexer leaving any escape it did not
// recognize (not a class shorthand, anchor, property, numeric, or verb
// escape) as a two-rune Literal of the form `\<char>`: if that char is a
// letter, the escape has no defined meaning and is almost always a typo
// for either the bare letter or a different escape.
func checkSuspiciousEscape(r *ast.Regex, ctx Context) []Warning {
	var out []Warning
	ast.Walk(r.Body, ast.PreOrder, func(n ast.Node) bool {
		lit, ok := n.(*ast.Literal)
		if !ok {
			return true
		}
		rs := []rune(lit.Value)
		// letter escapes with a PCRE2 meaning that the lexer leaves as text
		if len(rs) == 2 && rs[0] == '\\' && unicode.IsLetter(rs[1]) && !strings.ContainsRune("aefnrtvVhHRXNGEQC", rs[1]) {
			out = append(out, Warning{
				ID:      "regex.lint.escape.suspicious",
				Message: "\\" + string(rs[1]) + " has no special meaning; escaping it is likely a mistake",
				Span:    lit.Span(),
			})
		}
		return true
	})
	return out
}
