package linter

import "github.com/0x4d5352/rescope/internal/ast"

func init() {
	Register(Rule{
		ID:          "regex.lint.group.redundant",
		Description: "a non-capturing group wraps a single atom and is not itself quantified",
		Check:       checkRedundantGroup,
	})
}

func checkRedundantGroup(r *ast.Regex, ctx Context) []Warning {
	var out []Warning
	var walk func(n ast.Node, quantified bool)
	walk = func(n ast.Node, quantified bool) {
		if n == nil {
			return
		}
		switch x := n.(type) {
		case *ast.Quantifier:
			walk(x.Child, true)
			return
		case *ast.Group:
			if x.Type == ast.GroupNonCapturing && !quantified && isSingleAtom(x.Child) {
				out = append(out, Warning{
					ID:      "regex.lint.group.redundant",
					Message: "non-capturing group around a single atom can be removed",
					Span:    x.Span(),
				})
			}
			walk(x.Child, false)
			return
		}
		for _, c := range ast.Children(n) {
			walk(c, false)
		}
	}
	walk(r.Body, false)
	return out
}

// isSingleAtom reports whether n is a lone atom rather than an alternation
// or multi-element sequence, i.e. the kind of child a non-capturing group
// adds no grouping value around.
func isSingleAtom(n ast.Node) bool {
	if n == nil {
		return true
	}
	switch x := n.(type) {
	case *ast.Alternation:
		return false
	case *ast.Sequence:
		return len(x.Children) <= 1
	default:
		return true
	}
}
