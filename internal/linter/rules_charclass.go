package linter

import (
	"github.com/0x4d5352/rescope/internal/ast"
	"github.com/0x4d5352/rescope/internal/charset"
)

func init() {
	Register(Rule{
		ID:          "regex.lint.charclass.redundant",
		Description: "a character class has exactly one literal member and could be written as that bare literal",
		Check:       checkRedundantCharClass,
	})
	Register(Rule{
		ID:          "regex.lint.charclass.duplicate_chars",
		Description: "a character class repeats the same literal character",
		Check:       checkDuplicateClassChars,
	})
	Register(Rule{
		ID:          "regex.lint.charclass.suspicious_range",
		Description: "a character range spans across letter case or digit/letter boundaries in a way that looks unintentional",
		Check:       checkSuspiciousRange,
	})
	Register(Rule{
		ID:          "regex.lint.charclass.suspicious_pipe",
		Description: "a literal | inside a character class, which is likely a misplaced alternation",
		Check:       checkSuspiciousPipe,
	})
	Register(Rule{
		ID:          "regex.lint.range.useless",
		Description: "a character range has identical bounds and could be a single literal",
		Check:       checkUselessRange,
	})
}

func checkRedundantCharClass(r *ast.Regex, ctx Context) []Warning {
	var out []Warning
	ast.Walk(r.Body, ast.PreOrder, func(n ast.Node) bool {
		cc, ok := n.(*ast.CharClass)
		if !ok || cc.Negated || len(cc.Children) != 1 {
			return true
		}
		if _, isLit := cc.Children[0].(*ast.Literal); isLit {
			out = append(out, Warning{
				ID:      "regex.lint.charclass.redundant",
				Message: "single-member character class can be written as a bare literal",
				Span:    cc.Span(),
			})
		}
		return true
	})
	return out
}

func checkDuplicateClassChars(r *ast.Regex, ctx Context) []Warning {
	var out []Warning
	ast.Walk(r.Body, ast.PreOrder, func(n ast.Node) bool {
		cc, ok := n.(*ast.CharClass)
		if !ok {
			return true
		}
		seen := map[string]bool{}
		for _, m := range cc.Children {
			lit, ok := m.(*ast.Literal)
			if !ok {
				continue
			}
			if seen[lit.Value] {
				out = append(out, Warning{
					ID:      "regex.lint.charclass.duplicate_chars",
					Message: "character class repeats " + lit.Value,
					Span:    cc.Span(),
				})
			}
			seen[lit.Value] = true
		}
		return true
	})
	return out
}

// checkSuspiciousRange flags ranges that cross from digits into letters or
// span both cases (e.g. "[0-z]", "[A-z]"), almost always an accidental
// boundary rather than an intentional set.
func checkSuspiciousRange(r *ast.Regex, ctx Context) []Warning {
	var out []Warning
	ast.Walk(r.Body, ast.PreOrder, func(n ast.Node) bool {
		rg, ok := n.(*ast.Range)
		if !ok {
			return true
		}
		lo, loOK := singleRune(rg.Start)
		hi, hiOK := singleRune(rg.End)
		if !loOK || !hiOK {
			return true
		}
		if lo <= 'Z' && hi >= 'a' && lo >= 'A' {
			out = append(out, Warning{
				ID:      "regex.lint.charclass.suspicious_range",
				Message: "range spans from uppercase into lowercase, likely unintentional (includes punctuation between)",
				Span:    rg.Span(),
			})
		} else if lo <= '9' && hi >= 'A' && lo >= '0' {
			out = append(out, Warning{
				ID:      "regex.lint.charclass.suspicious_range",
				Message: "range spans from digits into letters, likely unintentional (includes punctuation between)",
				Span:    rg.Span(),
			})
		}
		return true
	})
	return out
}

func checkSuspiciousPipe(r *ast.Regex, ctx Context) []Warning {
	var out []Warning
	ast.Walk(r.Body, ast.PreOrder, func(n ast.Node) bool {
		cc, ok := n.(*ast.CharClass)
		if !ok {
			return true
		}
		for _, m := range cc.Children {
			if lit, ok := m.(*ast.Literal); ok && lit.Value == "|" {
				out = append(out, Warning{
					ID:      "regex.lint.charclass.suspicious_pipe",
					Message: "| inside a character class is a literal pipe, not alternation",
					Span:    cc.Span(),
				})
			}
		}
		return true
	})
	return out
}

func checkUselessRange(r *ast.Regex, ctx Context) []Warning {
	var out []Warning
	ast.Walk(r.Body, ast.PreOrder, func(n ast.Node) bool {
		rg, ok := n.(*ast.Range)
		if !ok {
			return true
		}
		lo, loOK := singleRune(rg.Start)
		hi, hiOK := singleRune(rg.End)
		if loOK && hiOK && lo == hi {
			out = append(out, Warning{
				ID:      "regex.lint.range.useless",
				Message: "range has identical bounds and could be a single literal",
				Span:    rg.Span(),
			})
		}
		return true
	})
	return out
}

func singleRune(n ast.Node) (rune, bool) {
	switch x := n.(type) {
	case *ast.Literal:
		rs := []rune(x.Value)
		if len(rs) == 1 {
			return rs[0], true
		}
	case *ast.CharLiteral:
		return x.Rune, true
	}
	return 0, false
}

// overlapCharClasses is used by the alternation overlap rule.
func overlapCharClasses(a, b ast.Node, unicodeFlag bool) bool {
	return charset.FirstSet(a, unicodeFlag).Intersects(charset.FirstSet(b, unicodeFlag))
}
