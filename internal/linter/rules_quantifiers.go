package linter

import (
	"github.com/0x4d5352/rescope/internal/ast"
	"github.com/0x4d5352/rescope/internal/charset"
	"github.com/0x4d5352/rescope/internal/token"
)

func init() {
	Register(Rule{
		ID:          "regex.lint.quantifier.nested",
		Description: "a quantified atom contains another unbounded quantifier whose first-set overlaps it",
		Check:       checkNestedQuantifier,
	})
	Register(Rule{
		ID:          "regex.lint.quantifier.useless",
		Description: "a quantifier with min == max == 1 has no effect",
		Check:       checkUselessQuantifier,
	})
	Register(Rule{
		ID:          "regex.lint.quantifier.zero",
		Description: "a quantifier with max == 0 always matches nothing",
		Check:       checkZeroQuantifier,
	})
	Register(Rule{
		ID:          "regex.lint.quantifier.concatenation",
		Description: "two adjacent identical quantified atoms could be combined into one quantifier",
		Check:       checkQuantifierConcatenation,
	})
	Register(Rule{
		ID:          "regex.lint.dotstar.nested",
		Description: "an unbounded . repetition sits inside another unbounded repetition",
		Check:       checkNestedDotStar,
	})
}

// checkNestedDotStar flags an unbounded Dot quantifier (".*", ".+") nested
// anywhere inside another unbounded quantifier's body, a classic
// backtracking-blowup shape even without the first-set overlap that
// regex.lint.quantifier.nested requires.
func checkNestedDotStar(r *ast.Regex, ctx Context) []Warning {
	var out []Warning
	ast.Walk(r.Body, ast.PreOrder, func(n ast.Node) bool {
		outer, ok := n.(*ast.Quantifier)
		if !ok || outer.Max != ast.Unbounded {
			return true
		}
		ast.Walk(outer.Child, ast.PreOrder, func(inner ast.Node) bool {
			q, ok := inner.(*ast.Quantifier)
			if !ok || q.Max != ast.Unbounded {
				return true
			}
			if _, isDot := q.Child.(*ast.Dot); isDot {
				out = append(out, Warning{
					ID:      "regex.lint.dotstar.nested",
					Message: "unbounded . repetition nested inside another unbounded repetition",
					Span:    q.Span(),
				})
			}
			return true
		})
		return true
	})
	return out
}

func checkNestedQuantifier(r *ast.Regex, ctx Context) []Warning {
	var out []Warning
	unicodeFlag := ctx.HasFlag('u')
	ast.Walk(r.Body, ast.PreOrder, func(n ast.Node) bool {
		q, ok := n.(*ast.Quantifier)
		if !ok || q.Max != ast.Unbounded {
			return true
		}
		outerFirst := charset.FirstSet(q.Child, unicodeFlag)
		var found bool
		ast.Walk(q.Child, ast.PreOrder, func(inner ast.Node) bool {
			if found {
				return false
			}
			iq, ok := inner.(*ast.Quantifier)
			if !ok || iq.Max != ast.Unbounded {
				return true
			}
			if outerFirst.Intersects(charset.FirstSet(iq.Child, unicodeFlag)) {
				out = append(out, Warning{
					ID:      "regex.lint.quantifier.nested",
					Message: "nested unbounded quantifiers with overlapping first-sets can cause catastrophic backtracking",
					Span:    iq.Span(),
				})
				found = true
				return false
			}
			return true
		})
		return true
	})
	return out
}

func checkUselessQuantifier(r *ast.Regex, ctx Context) []Warning {
	var out []Warning
	ast.Walk(r.Body, ast.PreOrder, func(n ast.Node) bool {
		q, ok := n.(*ast.Quantifier)
		if ok && q.Min == 1 && q.Max == 1 {
			out = append(out, Warning{
				ID:      "regex.lint.quantifier.useless",
				Message: "quantifier {1} (or {1,1}) matches exactly once and has no effect",
				Span:    q.Span(),
			})
		}
		return true
	})
	return out
}

func checkZeroQuantifier(r *ast.Regex, ctx Context) []Warning {
	var out []Warning
	ast.Walk(r.Body, ast.PreOrder, func(n ast.Node) bool {
		q, ok := n.(*ast.Quantifier)
		if ok && q.Max == 0 {
			out = append(out, Warning{
				ID:      "regex.lint.quantifier.zero",
				Message: "quantifier {0} (or {0,0}) never lets its atom match",
				Span:    q.Span(),
			})
		}
		return true
	})
	return out
}

// checkQuantifierConcatenation flags adjacent Quantifier siblings within a
// Sequence whose child atoms and quantifier type are identical (e.g.
// "a*a*"; the bounds may differ, as in "a*a+"), which collapse to a single
// quantifier over the same atom.
func checkQuantifierConcatenation(r *ast.Regex, ctx Context) []Warning {
	var out []Warning
	ast.Walk(r.Body, ast.PreOrder, func(n ast.Node) bool {
		seq, ok := n.(*ast.Sequence)
		if !ok {
			return true
		}
		for i := 0; i+1 < len(seq.Children); i++ {
			a, aok := seq.Children[i].(*ast.Quantifier)
			b, bok := seq.Children[i+1].(*ast.Quantifier)
			if !aok || !bok {
				continue
			}
			if a.Type == b.Type && sameAtom(a.Child, b.Child) {
				out = append(out, Warning{
					ID:      "regex.lint.quantifier.concatenation",
					Message: "adjacent identical quantified atoms can be combined into one quantifier",
					Span:    token.Combine(a.Span(), b.Span()),
				})
			}
		}
		return true
	})
	return out
}

func sameAtom(a, b ast.Node) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Kind() != b.Kind() {
		return false
	}
	switch x := a.(type) {
	case *ast.Literal:
		return x.Value == b.(*ast.Literal).Value
	case *ast.CharLiteral:
		return x.Rune == b.(*ast.CharLiteral).Rune
	case *ast.CharType:
		return x.Class == b.(*ast.CharType).Class
	case *ast.Dot:
		return true
	default:
		return false
	}
}
