package automata

import "github.com/0x4d5352/rescope/internal/ast"

// Validate walks n and returns an *UnsupportedFeatureError for the first
// construct found outside the regular languages: backreferences,
// subroutines/recursion, conditionals, lookarounds, PCRE verbs, and \K.
// Named and non-capturing groups, atomic groups, inline-flags scopes, and
// branch-reset groups are regular (they scope a sub-pattern, nothing
// more) and are accepted; their capture bookkeeping is irrelevant to the
// automata pipeline, which only cares about the language a pattern
// accepts.
func Validate(n ast.Node) error {
	switch x := n.(type) {
	case nil:
		return nil
	case *ast.Backref:
		return &UnsupportedFeatureError{Feature: "backreference", Offset: x.Span().Start}
	case *ast.Subroutine:
		return &UnsupportedFeatureError{Feature: "subroutine/recursion", Offset: x.Span().Start}
	case *ast.Conditional:
		return &UnsupportedFeatureError{Feature: "conditional", Offset: x.Span().Start}
	case *ast.Define:
		return &UnsupportedFeatureError{Feature: "DEFINE block", Offset: x.Span().Start}
	case *ast.PcreVerb:
		return &UnsupportedFeatureError{Feature: "backtracking verb (*" + x.Name + ")", Offset: x.Span().Start}
	case *ast.Keep:
		return &UnsupportedFeatureError{Feature: `\K`, Offset: x.Span().Start}
	case *ast.ScriptRun:
		return &UnsupportedFeatureError{Feature: "script run", Offset: x.Span().Start}
	case *ast.Regex:
		return Validate(x.Body)
	case *ast.Sequence:
		for _, c := range x.Children {
			if err := Validate(c); err != nil {
				return err
			}
		}
		return nil
	case *ast.Alternation:
		for _, b := range x.Branches {
			if err := Validate(b); err != nil {
				return err
			}
		}
		return nil
	case *ast.Group:
		switch x.Type {
		case ast.GroupLookaheadPos, ast.GroupLookaheadNeg, ast.GroupLookbehindPos, ast.GroupLookbehindNeg:
			return &UnsupportedFeatureError{Feature: "lookaround (" + x.Type.String() + ")", Offset: x.Span().Start}
		}
		return Validate(x.Child)
	case *ast.Quantifier:
		return Validate(x.Child)
	case *ast.CharClass:
		for _, m := range x.Children {
			if err := Validate(m); err != nil {
				return err
			}
		}
		return nil
	case *ast.Range:
		if err := Validate(x.Start); err != nil {
			return err
		}
		return Validate(x.End)
	case *ast.ClassOperation:
		if err := Validate(x.Left); err != nil {
			return err
		}
		return Validate(x.Right)
	default:
		return nil
	}
}
