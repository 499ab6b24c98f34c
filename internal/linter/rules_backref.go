package linter

import (
	"strconv"

	"github.com/0x4d5352/rescope/internal/ast"
)

func init() {
	Register(Rule{
		ID:          "regex.lint.backref.useless",
		Description: "a backreference points to a group that has not been opened yet at that point in the pattern",
		Check:       checkUselessBackref,
	})
}

// checkUselessBackref flags a backreference occurring before, in source
// order, the group it refers to: outside of recursion (which this linter
// does not attempt to model), such a reference can never have a captured
// value and always fails to match (or matches empty, depending on engine).
func checkUselessBackref(r *ast.Regex, ctx Context) []Warning {
	declByNumber := map[int]int{}  // group number -> declaration start offset
	declByName := map[string]int{} // group name -> declaration start offset

	ast.Walk(r.Body, ast.PreOrder, func(n ast.Node) bool {
		g, ok := n.(*ast.Group)
		if !ok {
			return true
		}
		if g.Type == ast.GroupCapturing || g.Type == ast.GroupNamed {
			declByNumber[g.Number] = g.Span().Start
			if g.Name != "" {
				declByName[g.Name] = g.Span().Start
			}
		}
		return true
	})

	var out []Warning
	ast.Walk(r.Body, ast.PreOrder, func(n ast.Node) bool {
		b, ok := n.(*ast.Backref)
		if !ok {
			return true
		}
		var declStart int
		var found bool
		if b.Named {
			declStart, found = declByName[b.Ref]
		} else if n, err := strconv.Atoi(b.Ref); err == nil && n > 0 {
			declStart, found = declByNumber[n]
		}
		if found && b.Span().Start < declStart {
			out = append(out, Warning{
				ID:      "regex.lint.backref.useless",
				Message: "backreference precedes the group it refers to and can never have a value outside recursion",
				Span:    b.Span(),
			})
		}
		return true
	})
	return out
}
