// Package validator walks a parsed regex AST for semantic issues that the
// parser's grammar cannot catch on its own: duplicate capture names,
// dangling references, and malformed classes/properties that are
// syntactically well-formed tokens but meaningless values.
package validator

import (
	"fmt"
	"strconv"
	"unicode"

	"github.com/0x4d5352/rescope/internal/ast"
	"github.com/0x4d5352/rescope/internal/token"
)

// Issue identifiers. Stable strings so downstream consumers can filter or
// suppress by ID.
const (
	IssueDuplicateGroupName = "regex.validate.group.duplicate_name"
	IssueReversedRange      = "regex.validate.class.reversed_range"
	IssueOutOfRangeOctal    = "regex.validate.escape.octal_out_of_range"
	IssueMalformedUnicode   = "regex.validate.escape.malformed_unicode_property"
	IssueUndefinedGroupRef  = "regex.validate.reference.undefined_group"
	IssueQuantifierMinMax   = "regex.validate.quantifier.min_gt_max"
	IssuePosixOutsideClass  = "regex.validate.class.posix_outside_class"
)

// Issue is a single semantic problem found in a pattern.
type Issue struct {
	ID      string
	Message string
	Span    token.Span
}

// Validate walks r's AST and returns every semantic issue found. A nil
// slice means the pattern is semantically clean.
func Validate(r *ast.Regex) []Issue {
	v := &validator{}
	v.collectGroups(r.Body)
	ast.Walk(r.Body, ast.PreOrder, func(n ast.Node) bool {
		v.visit(n)
		return true
	})
	v.checkReferences(r.Body)
	return v.issues
}

type groupInfo struct {
	number int
	name   string
}

type validator struct {
	issues  []Issue
	numbers map[int]bool
	names   map[string]bool
	// maxGroupNumber is the highest capture number declared, used to
	// resolve relative references such as \g-1.
	maxGroupNumber int
}

func (v *validator) add(id string, span token.Span, format string, args ...any) {
	v.issues = append(v.issues, Issue{ID: id, Message: fmt.Sprintf(format, args...), Span: span})
}

// collectGroups performs a first pass recording every declared group name
// and number, flagging duplicate names that are not both inside the same
// branch-reset group's distinct alternatives.
func (v *validator) collectGroups(root ast.Node) {
	v.numbers = map[int]bool{}
	v.names = map[string]bool{}
	v.walkGroups(root)
}

// walkGroups descends the tree recording every declared group's number and
// name, duplicate-checking names against the pattern-wide table except
// inside a branch-reset group, which gets the narrower per-alternative
// check in walkBranch (duplicate names across *different* alternatives of
// the same branch-reset group are tolerated, mirroring PCRE2's numbered-
// capture reuse).
func (v *validator) walkGroups(n ast.Node) {
	if n == nil {
		return
	}
	switch g := n.(type) {
	case *ast.Group:
		if g.Type == ast.GroupBranchReset {
			v.recordNumberOnly(g)
			if alt, ok := g.Child.(*ast.Alternation); ok {
				for _, branch := range alt.Branches {
					seen := map[string]bool{}
					v.walkBranch(branch, seen)
				}
			} else {
				seen := map[string]bool{}
				v.walkBranch(g.Child, seen)
			}
			return
		}
		if g.Type == ast.GroupNamed || g.Type == ast.GroupCapturing {
			v.recordGroup(g)
		}
		v.walkGroups(g.Child)
		return
	}
	for _, c := range ast.Children(n) {
		v.walkGroups(c)
	}
}

// walkBranch is like walkGroups but tracks a per-alternative name set for
// branch-reset duplicate detection, still recording numbers/names globally.
func (v *validator) walkBranch(n ast.Node, seenInAlt map[string]bool) {
	if n == nil {
		return
	}
	switch g := n.(type) {
	case *ast.Group:
		if g.Type == ast.GroupNamed || g.Type == ast.GroupCapturing {
			if g.Type == ast.GroupNamed && g.Name != "" {
				if seenInAlt[g.Name] {
					v.add(IssueDuplicateGroupName, g.Span(), "duplicate group name %q within the same branch-reset alternative", g.Name)
				}
				seenInAlt[g.Name] = true
			}
			// Duplicate-name checking across different alternatives of a
			// branch-reset group is intentionally skipped here (that's
			// allowed, like reused capture numbers); only register for
			// later reference resolution.
			v.recordGroupNoDupCheck(g)
		}
		if g.Type == ast.GroupBranchReset {
			v.walkGroups(g)
			return
		}
		v.walkBranch(g.Child, seenInAlt)
		return
	}
	for _, c := range ast.Children(n) {
		v.walkBranch(c, seenInAlt)
	}
}

func (v *validator) recordNumberOnly(g *ast.Group) {
	if g.Number > v.maxGroupNumber {
		v.maxGroupNumber = g.Number
	}
}

// recordGroupNoDupCheck registers a group's number and name without
// flagging duplicates against the global table, for use inside a
// branch-reset alternative where the containing walkBranch call already
// applies the narrower per-alternative duplicate check.
func (v *validator) recordGroupNoDupCheck(g *ast.Group) {
	if g.Number > v.maxGroupNumber {
		v.maxGroupNumber = g.Number
	}
	v.numbers[g.Number] = true
	if g.Type == ast.GroupNamed && g.Name != "" {
		v.names[g.Name] = true
	}
}

func (v *validator) recordGroup(g *ast.Group) {
	if g.Number > v.maxGroupNumber {
		v.maxGroupNumber = g.Number
	}
	v.numbers[g.Number] = true
	if g.Type == ast.GroupNamed && g.Name != "" {
		if v.names[g.Name] {
			v.add(IssueDuplicateGroupName, g.Span(), "duplicate group name %q", g.Name)
		}
		v.names[g.Name] = true
	}
}

// visit performs the per-node checks that don't require global group
// information: ranges, octal escapes, Unicode properties, quantifier
// bounds, and stray POSIX classes.
func (v *validator) visit(n ast.Node) {
	switch x := n.(type) {
	case *ast.Range:
		v.checkRange(x)
	case *ast.CharLiteral:
		v.checkOctalRange(x)
	case *ast.UnicodeProp:
		v.checkUnicodeProp(x)
	case *ast.Quantifier:
		v.checkQuantifierBounds(x)
	case *ast.PosixClass:
		// PosixClass nodes only ever appear as parsed children of a
		// CharClass in this grammar (the lexer only emits "[:name:]"
		// tokens while l.insideClass is set), so this branch is
		// unreachable in practice; kept as a defensive backstop in case
		// a future grammar change adds another POSIX-class entry point.
		v.add(IssuePosixOutsideClass, x.Span(), "POSIX class [:%s:] used outside a character class", x.Name)
	}
}

func (v *validator) checkRange(r *ast.Range) {
	lo, loOK := runeOf(r.Start)
	hi, hiOK := runeOf(r.End)
	if loOK && hiOK && lo > hi {
		v.add(IssueReversedRange, r.Span(), "character range is reversed: %U > %U", lo, hi)
	}
}

func runeOf(n ast.Node) (rune, bool) {
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

func (v *validator) checkOctalRange(c *ast.CharLiteral) {
	if c.Type != ast.CharOctalLegacy && c.Type != ast.CharOctal {
		return
	}
	if c.Rune > 0x10FFFF {
		v.add(IssueOutOfRangeOctal, c.Span(), "octal escape %q is out of Unicode code point range", c.Original)
	}
}

// checkUnicodeProp validates \p{Name} against the stdlib's
// unicode.Categories, unicode.Scripts and unicode.Properties tables,
// rather than a bespoke property
// database (spec's Non-goal is a *full* Unicode-property database, not
// consuming the one the standard library already maintains).
func (v *validator) checkUnicodeProp(u *ast.UnicodeProp) {
	if u.Name == "" {
		v.add(IssueMalformedUnicode, u.Span(), "empty Unicode property name")
		return
	}
	if _, ok := unicode.Categories[u.Name]; ok {
		return
	}
	if _, ok := unicode.Scripts[u.Name]; ok {
		return
	}
	if _, ok := unicode.Properties[u.Name]; ok {
		return
	}
	switch u.Name {
	case "Any", "L", "N", "P", "S", "Z", "C", "M":
		return
	}
	v.add(IssueMalformedUnicode, u.Span(), "unknown Unicode property %q", u.Name)
}

func (v *validator) checkQuantifierBounds(q *ast.Quantifier) {
	if q.Max != ast.Unbounded && q.Min > q.Max {
		v.add(IssueQuantifierMinMax, q.Span(), "quantifier bounds {%d,%d} have min > max", q.Min, q.Max)
	}
}

// checkReferences walks the tree a second time (group numbers/names are
// now fully known) flagging backreferences and subroutine calls to groups
// that were never declared.
func (v *validator) checkReferences(root ast.Node) {
	ast.Walk(root, ast.PreOrder, func(n ast.Node) bool {
		switch x := n.(type) {
		case *ast.Backref:
			v.checkBackref(x)
		case *ast.Subroutine:
			v.checkSubroutine(x)
		}
		return true
	})
}

func (v *validator) checkBackref(b *ast.Backref) {
	if b.Named {
		if !v.names[b.Ref] {
			v.add(IssueUndefinedGroupRef, b.Span(), "backreference to undefined group name %q", b.Ref)
		}
		return
	}
	if b.Ref == "R" || b.Ref == "" {
		return
	}
	n, err := strconv.Atoi(b.Ref)
	if err != nil {
		return
	}
	if n < 0 {
		n = v.maxGroupNumber + n + 1
	}
	if !v.numbers[n] {
		v.add(IssueUndefinedGroupRef, b.Span(), "backreference to undefined group %d", n)
	}
}

func (v *validator) checkSubroutine(s *ast.Subroutine) {
	switch s.Origin {
	case "R":
		return // whole-pattern recursion, always valid
	case "g", "&", "P>":
		if !v.names[s.Ref] {
			if n, err := strconv.Atoi(s.Ref); err != nil || !v.numbers[n] {
				v.add(IssueUndefinedGroupRef, s.Span(), "subroutine call to undefined group %q", s.Ref)
			}
		}
	default:
		n, err := strconv.Atoi(s.Ref)
		if err != nil {
			if !v.names[s.Ref] {
				v.add(IssueUndefinedGroupRef, s.Span(), "subroutine call to undefined group %q", s.Ref)
			}
			return
		}
		if n < 0 {
			n = v.maxGroupNumber + n + 1
		}
		if n != 0 && !v.numbers[n] {
			v.add(IssueUndefinedGroupRef, s.Span(), "subroutine call to undefined group %d", n)
		}
	}
}
