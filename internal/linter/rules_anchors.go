package linter

import (
	"github.com/0x4d5352/rescope/internal/ast"
)

func init() {
	Register(Rule{
		ID:          "regex.lint.anchor.impossible.start",
		Description: "a ^ anchor is preceded by an atom guaranteed to consume at least one character",
		Check:       checkImpossibleAnchorStart,
	})
	Register(Rule{
		ID:          "regex.lint.anchor.impossible.end",
		Description: "a $ anchor is followed by an atom guaranteed to consume at least one character",
		Check:       checkImpossibleAnchorEnd,
	})
}

func checkImpossibleAnchorStart(r *ast.Regex, ctx Context) []Warning {
	if ctx.HasFlag('m') {
		return nil
	}
	var out []Warning
	forEachSequence(r.Body, func(children []ast.Node) {
		consumed := 0
		for _, c := range children {
			if a, ok := c.(*ast.Anchor); ok && a.Form == "^" {
				if consumed > 0 {
					out = append(out, Warning{
						ID:      "regex.lint.anchor.impossible.start",
						Message: "^ cannot match here: a preceding atom always consumes at least one character and m is not set",
						Span:    a.Span(),
					})
				}
			}
			consumed += minConsumed(c)
		}
	})
	return out
}

func checkImpossibleAnchorEnd(r *ast.Regex, ctx Context) []Warning {
	if ctx.HasFlag('m') {
		return nil
	}
	var out []Warning
	forEachSequence(r.Body, func(children []ast.Node) {
		// Compute, for each index, the minimum consumed by everything
		// strictly after it, right to left.
		suffix := make([]int, len(children)+1)
		for i := len(children) - 1; i >= 0; i-- {
			suffix[i] = suffix[i+1] + minConsumed(children[i])
		}
		for i, c := range children {
			if a, ok := c.(*ast.Anchor); ok && a.Form == "$" {
				if suffix[i+1] > 0 {
					out = append(out, Warning{
						ID:      "regex.lint.anchor.impossible.end",
						Message: "$ cannot match here: a following atom always consumes at least one character and m is not set",
						Span:    a.Span(),
					})
				}
			}
		}
	})
	return out
}

// forEachSequence calls fn with the child list of every Sequence node in
// the tree, in pre-order. A branch or group body that is a single
// non-Sequence atom is not passed to fn.
func forEachSequence(n ast.Node, fn func(children []ast.Node)) {
	ast.Walk(n, ast.PreOrder, func(node ast.Node) bool {
		if seq, ok := node.(*ast.Sequence); ok {
			fn(seq.Children)
		}
		return true
	})
}

// minConsumed estimates the minimum number of characters n is guaranteed
// to consume on any successful match, used to decide whether a ^/$ anchor
// adjacent to it can ever fire. Unknowable atoms (backreferences,
// subroutine calls) are conservatively treated as possibly zero-width.
func minConsumed(n ast.Node) int {
	switch x := n.(type) {
	case *ast.Sequence:
		total := 0
		for _, c := range x.Children {
			total += minConsumed(c)
		}
		return total
	case *ast.Alternation:
		min := -1
		for _, b := range x.Branches {
			m := minConsumed(b)
			if min == -1 || m < min {
				min = m
			}
		}
		if min < 0 {
			return 0
		}
		return min
	case *ast.Group:
		switch x.Type {
		case ast.GroupLookaheadPos, ast.GroupLookaheadNeg, ast.GroupLookbehindPos, ast.GroupLookbehindNeg:
			return 0
		case ast.GroupInlineFlags:
			if x.Child == nil {
				return 0
			}
			return minConsumed(x.Child)
		default:
			return minConsumed(x.Child)
		}
	case *ast.Quantifier:
		return x.Min * minConsumed(x.Child)
	case *ast.Literal:
		return len([]rune(x.Value))
	case *ast.CharLiteral, *ast.CharType, *ast.Dot, *ast.CharClass:
		return 1
	case *ast.Conditional:
		yes := minConsumed(x.Yes)
		if x.No == nil {
			return 0
		}
		no := minConsumed(x.No)
		if yes < no {
			return yes
		}
		return no
	default:
		return 0
	}
}
