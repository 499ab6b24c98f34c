package linter

import (
	"github.com/0x4d5352/rescope/internal/ast"
	"github.com/0x4d5352/rescope/internal/compiler"
)

func init() {
	Register(Rule{
		ID:          "regex.lint.alternation.duplicate_disjunction",
		Description: "an alternation has two structurally identical branches, so one can never match",
		Check:       checkDuplicateDisjunction,
	})
	Register(Rule{
		ID:          "regex.lint.alternation.empty",
		Description: "an alternation has an empty branch, making the whole construct optional in a confusing way",
		Check:       checkEmptyAlternationBranch,
	})
	Register(Rule{
		ID:          "regex.lint.alternation.overlap",
		Description: "two alternation branches share a non-empty first-set, so the engine must backtrack to try both",
		Check:       checkAlternationOverlap,
	})
	Register(Rule{
		ID:          "regex.lint.overlap.charset",
		Description: "two alternation branches are both character classes with overlapping members",
		Check:       checkCharsetOverlap,
	})
}

// branchText renders a branch through the compiler for a cheap structural
// equality check: two branches that compile to the same canonical text are
// the same language, modulo non-semantic spelling differences the compiler
// already normalizes (see compiler's round-trip law).
func branchText(n ast.Node) string {
	return compiler.Compile(ast.NewRegex(n.Span(), n, "", '/'))
}

func checkDuplicateDisjunction(r *ast.Regex, ctx Context) []Warning {
	var out []Warning
	ast.Walk(r.Body, ast.PreOrder, func(n ast.Node) bool {
		alt, ok := n.(*ast.Alternation)
		if !ok {
			return true
		}
		seen := map[string]bool{}
		for _, b := range alt.Branches {
			text := branchText(b)
			if seen[text] {
				out = append(out, Warning{
					ID:      "regex.lint.alternation.duplicate_disjunction",
					Message: "alternation has a duplicate branch that can never match",
					Span:    b.Span(),
				})
			}
			seen[text] = true
		}
		return true
	})
	return out
}

func checkEmptyAlternationBranch(r *ast.Regex, ctx Context) []Warning {
	var out []Warning
	ast.Walk(r.Body, ast.PreOrder, func(n ast.Node) bool {
		alt, ok := n.(*ast.Alternation)
		if !ok {
			return true
		}
		for _, b := range alt.Branches {
			if seq, ok := b.(*ast.Sequence); ok && len(seq.Children) == 0 {
				out = append(out, Warning{
					ID:      "regex.lint.alternation.empty",
					Message: "alternation has an empty branch; consider a trailing ? quantifier instead",
					Span:    alt.Span(),
				})
			}
		}
		return true
	})
	return out
}

func checkAlternationOverlap(r *ast.Regex, ctx Context) []Warning {
	unicodeFlag := ctx.HasFlag('u')
	var out []Warning
	ast.Walk(r.Body, ast.PreOrder, func(n ast.Node) bool {
		alt, ok := n.(*ast.Alternation)
		if !ok {
			return true
		}
		for i := 0; i < len(alt.Branches); i++ {
			for j := i + 1; j < len(alt.Branches); j++ {
				if overlapCharClasses(alt.Branches[i], alt.Branches[j], unicodeFlag) {
					out = append(out, Warning{
						ID:      "regex.lint.alternation.overlap",
						Message: "alternation branches share a common first character, requiring backtracking to disambiguate",
						Span:    alt.Span(),
					})
				}
			}
		}
		return true
	})
	return out
}

func checkCharsetOverlap(r *ast.Regex, ctx Context) []Warning {
	unicodeFlag := ctx.HasFlag('u')
	var out []Warning
	ast.Walk(r.Body, ast.PreOrder, func(n ast.Node) bool {
		alt, ok := n.(*ast.Alternation)
		if !ok {
			return true
		}
		for i := 0; i < len(alt.Branches); i++ {
			ci, ok := alt.Branches[i].(*ast.CharClass)
			if !ok {
				continue
			}
			for j := i + 1; j < len(alt.Branches); j++ {
				cj, ok := alt.Branches[j].(*ast.CharClass)
				if !ok {
					continue
				}
				if overlapCharClasses(ci, cj, unicodeFlag) {
					out = append(out, Warning{
						ID:      "regex.lint.overlap.charset",
						Message: "two character-class alternatives share members",
						Span:    alt.Span(),
					})
				}
			}
		}
		return true
	})
	return out
}
