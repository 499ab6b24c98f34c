package linter

import (
	"strings"
	"unicode"

	"github.com/0x4d5352/rescope/internal/ast"
)

func init() {
	Register(Rule{
		ID:          "regex.lint.flag.useless.i",
		Description: "the i flag is set but no atom's matched set changes under case folding",
		Check:       checkUselessFlagI,
	})
	Register(Rule{
		ID:          "regex.lint.flag.useless.m",
		Description: "the m flag is set but the pattern contains no ^ or $ anchor",
		Check:       checkUselessFlagM,
	})
	Register(Rule{
		ID:          "regex.lint.flag.useless.s",
		Description: "the s flag is set but the pattern contains no . dot-all atom",
		Check:       checkUselessFlagS,
	})
	Register(Rule{
		ID:          "regex.lint.flag.redundant",
		Description: "an inline flag group re-sets a flag already active from the pattern-level flags",
		Check:       checkRedundantInlineFlag,
	})
	Register(Rule{
		ID:          "regex.lint.flag.override",
		Description: "a nested inline-flag group turns on a flag that an enclosing one already turned on",
		Check:       checkFlagOverride,
	})
}

// checkUselessFlagI walks literals and class members looking for any atom
// whose matched set changes under case folding: an ASCII or Unicode letter.
// If none exists, the i flag has no effect.
func checkUselessFlagI(r *ast.Regex, ctx Context) []Warning {
	if !ctx.HasFlag('i') {
		return nil
	}
	useful := false
	ast.Walk(r.Body, ast.PreOrder, func(n ast.Node) bool {
		if useful {
			return false
		}
		switch x := n.(type) {
		case *ast.Literal:
			for _, c := range x.Value {
				if unicode.IsLetter(c) {
					useful = true
					return false
				}
			}
		case *ast.CharLiteral:
			if unicode.IsLetter(x.Rune) {
				useful = true
				return false
			}
		case *ast.UnicodeProp:
			if x.Name == "L" || x.Name == "Lu" || x.Name == "Ll" || x.Name == "Lt" {
				useful = true
				return false
			}
		case *ast.CharType:
			if x.Class == 'w' || x.Class == 'W' {
				useful = true
				return false
			}
		}
		return true
	})
	if useful {
		return nil
	}
	return []Warning{{
		ID:      "regex.lint.flag.useless.i",
		Message: "the i flag is set but the pattern matches no letters, so case folding has no effect",
		Span:    r.Span(),
	}}
}

func checkUselessFlagM(r *ast.Regex, ctx Context) []Warning {
	if !ctx.HasFlag('m') {
		return nil
	}
	hasAnchor := false
	ast.Walk(r.Body, ast.PreOrder, func(n ast.Node) bool {
		if a, ok := n.(*ast.Anchor); ok && (a.Form == "^" || a.Form == "$") {
			hasAnchor = true
			return false
		}
		return !hasAnchor
	})
	if hasAnchor {
		return nil
	}
	return []Warning{{
		ID:      "regex.lint.flag.useless.m",
		Message: "the m flag is set but the pattern contains no ^ or $ anchor",
		Span:    r.Span(),
	}}
}

func checkUselessFlagS(r *ast.Regex, ctx Context) []Warning {
	if !ctx.HasFlag('s') {
		return nil
	}
	hasDot := false
	ast.Walk(r.Body, ast.PreOrder, func(n ast.Node) bool {
		if _, ok := n.(*ast.Dot); ok {
			hasDot = true
			return false
		}
		return !hasDot
	})
	if hasDot {
		return nil
	}
	return []Warning{{
		ID:      "regex.lint.flag.useless.s",
		Message: "the s flag is set but the pattern contains no . atom for it to affect",
		Span:    r.Span(),
	}}
}

// checkRedundantInlineFlag flags an inline-flags group, scoped or unscoped
// (e.g. (?i) or (?i:...)), that turns on a flag already active from the
// pattern-level flag set.
func checkRedundantInlineFlag(r *ast.Regex, ctx Context) []Warning {
	var out []Warning
	ast.Walk(r.Body, ast.PreOrder, func(n ast.Node) bool {
		g, ok := n.(*ast.Group)
		if !ok || g.Type != ast.GroupInlineFlags {
			return true
		}
		for _, c := range onFlags(g.Flags) {
			if ctx.HasFlag(byte(c)) {
				out = append(out, Warning{
					ID:      "regex.lint.flag.redundant",
					Message: "inline flag " + string(c) + " is already set at the pattern level",
					Span:    g.Span(),
				})
			}
		}
		return true
	})
	return out
}

// checkFlagOverride flags a nested inline-flags group that turns on a flag
// an enclosing inline-flags group already turned on. Flags turned off
// after '-' are not tracked.
func checkFlagOverride(r *ast.Regex, ctx Context) []Warning {
	var out []Warning
	var walk func(n ast.Node, active map[byte]bool)
	walk = func(n ast.Node, active map[byte]bool) {
		if n == nil {
			return
		}
		if g, ok := n.(*ast.Group); ok && g.Type == ast.GroupInlineFlags {
			for _, c := range onFlags(g.Flags) {
				if active[byte(c)] {
					out = append(out, Warning{
						ID:      "regex.lint.flag.override",
						Message: "inline flag " + string(c) + " is already active from an enclosing scope",
						Span:    g.Span(),
					})
				}
			}
			nested := make(map[byte]bool, len(active))
			for k, v := range active {
				nested[k] = v
			}
			for _, c := range onFlags(g.Flags) {
				nested[byte(c)] = true
			}
			walk(g.Child, nested)
			return
		}
		for _, c := range ast.Children(n) {
			walk(c, active)
		}
	}
	walk(r.Body, map[byte]bool{})
	return out
}

// onFlags splits an inline-flags group's Flags string on the PCRE2 "on-off"
// separator '-', returning only the letters being turned on.
func onFlags(flags string) []byte {
	on := flags
	if i := strings.IndexByte(flags, '-'); i >= 0 {
		on = flags[:i]
	}
	return []byte(on)
}
