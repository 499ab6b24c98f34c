package redos

import (
	"fmt"
	"strings"

	"github.com/0x4d5352/rescope/internal/ast"
	"github.com/0x4d5352/rescope/internal/charset"
	"github.com/0x4d5352/rescope/internal/compiler"
	"github.com/0x4d5352/rescope/internal/token"
)

const (
	issueNestedQuantifier     = "redos.nested_quantifier"
	issueEvilTwinAlternation  = "redos.evil_twin_alternation"
	issueAmbiguousAdjacent    = "redos.ambiguous_adjacent_quantifiers"
	issueGreedyLiteralOverlap = "redos.greedy_literal_overlap"
	issueHeuristicPattern     = "redos.heuristic_pattern"
)

// text renders n back to source-equivalent text for a Finding's Pattern
// field, the same "compile the node through a neutral delimiter" trick
// the linter's branchText helper uses for structural comparison.
func text(n ast.Node) string {
	body := compiler.Compile(ast.NewRegex(n.Span(), n, "", '/'))
	return strings.TrimSuffix(strings.TrimPrefix(body, "/"), "/")
}

// unbounded reports whether q's repetition has no upper bound: *, + or
// {n,}. A bounded {n,m} is not counted, however wide its range.
func unbounded(q *ast.Quantifier) bool {
	return q.Max == ast.Unbounded
}

// detectNestedQuantifiers flags a quantified atom R+ whose body R itself
// contains a top-level unbounded quantifier whose first-set intersects
// R's first-set: (a+)+, (a*)*, ([a-z]+\d*)+ when the digit branch can be
// empty and the outer set overlaps.
func detectNestedQuantifiers(root ast.Node, unicodeFlag bool) []Finding {
	var out []Finding
	ast.Walk(root, ast.PreOrder, func(n ast.Node) bool {
		outer, ok := n.(*ast.Quantifier)
		if !ok || !unbounded(outer) {
			return true
		}
		outerFirst := charset.FirstSet(outer.Child, unicodeFlag)
		ast.Walk(outer.Child, ast.PreOrder, func(inner ast.Node) bool {
			iq, ok := inner.(*ast.Quantifier)
			if !ok || !unbounded(iq) {
				return true
			}
			if !outerFirst.Intersects(charset.FirstSet(iq.Child, unicodeFlag)) {
				return true
			}
			exact := !outerFirst.Unknown
			confidence := ConfidenceMedium
			if exact {
				confidence = ConfidenceHigh
			}
			out = append(out, Finding{
				Severity:         SeverityCritical,
				Message:          fmt.Sprintf("nested unbounded quantifiers with overlapping first-sets: %s", text(outer)),
				IssueID:          issueNestedQuantifier,
				Pattern:          text(outer),
				Trigger:          "nested-unbounded-quantifier",
				Confidence:       confidence,
				SuggestedRewrite: "wrap the inner repetition in an atomic group, e.g. (?>" + text(iq.Child) + "+)",
				Span:             outer.Span(),
			})
			return false
		})
		return true
	})
	return out
}

// detectEvilTwinAlternations flags a quantified Alternation where two
// branches share a non-empty first-set, the canonical (a|a)+ shape.
func detectEvilTwinAlternations(root ast.Node, unicodeFlag bool) []Finding {
	var out []Finding
	ast.Walk(root, ast.PreOrder, func(n ast.Node) bool {
		q, ok := n.(*ast.Quantifier)
		if !ok || !unbounded(q) {
			return true
		}
		alt := nestedAlternationBody(q.Child)
		if alt == nil || len(alt.Branches) < 2 {
			return true
		}
		for i := 0; i < len(alt.Branches); i++ {
			fi := charset.FirstSet(alt.Branches[i], unicodeFlag)
			for j := i + 1; j < len(alt.Branches); j++ {
				fj := charset.FirstSet(alt.Branches[j], unicodeFlag)
				if !fi.Intersects(fj) {
					continue
				}
				exact := !fi.Unknown && !fj.Unknown
				confidence := ConfidenceMedium
				if exact {
					confidence = ConfidenceHigh
				}
				out = append(out, Finding{
					Severity:         SeverityCritical,
					Message:          fmt.Sprintf("quantified alternation has overlapping branches: %s", text(q)),
					IssueID:          issueEvilTwinAlternation,
					Pattern:          text(q),
					Trigger:          "evil-twin-alternation",
					Confidence:       confidence,
					SuggestedRewrite: "reorder or merge overlapping alternatives, or wrap the repetition in an atomic group",
					Span:             q.Span(),
				})
			}
		}
		return true
	})
	return out
}

// nestedAlternationBody returns n itself (if it is an Alternation) or the
// Alternation a group of any kind directly wraps, else nil. Mirrors the
// optimizer's flatten-alternation recognition: a quantified group wrapping
// an alternation is the only shape real parsed input produces.
func nestedAlternationBody(n ast.Node) *ast.Alternation {
	switch x := n.(type) {
	case *ast.Alternation:
		return x
	case *ast.Group:
		if a, ok := x.Child.(*ast.Alternation); ok {
			return a
		}
	}
	return nil
}

// detectAmbiguousAdjacentQuantifiers flags consecutive quantified atoms
// X+Y+ within a Sequence where Y's first-set is a subset of X's, e.g.
// \w+\d+ against an all-digit suffix: the engine can attribute the
// trailing digits to either quantifier, multiplying the search space.
func detectAmbiguousAdjacentQuantifiers(root ast.Node, unicodeFlag bool) []Finding {
	var out []Finding
	ast.Walk(root, ast.PreOrder, func(n ast.Node) bool {
		seq, ok := n.(*ast.Sequence)
		if !ok {
			return true
		}
		for i := 0; i+1 < len(seq.Children); i++ {
			x, xok := seq.Children[i].(*ast.Quantifier)
			y, yok := seq.Children[i+1].(*ast.Quantifier)
			if !xok || !yok || !unbounded(x) || !unbounded(y) {
				continue
			}
			fx := charset.FirstSet(x.Child, unicodeFlag)
			fy := charset.FirstSet(y.Child, unicodeFlag)
			if fy.Unknown || fx.Unknown || fy.IsEmpty() {
				continue
			}
			if !fy.Subtract(fx).IsEmpty() {
				continue
			}
			span := token.Combine(x.Span(), y.Span())
			out = append(out, Finding{
				Severity:         SeverityHigh,
				Message:          fmt.Sprintf("adjacent unbounded quantifiers are ambiguous: %s%s", text(x), text(y)),
				IssueID:          issueAmbiguousAdjacent,
				Pattern:          text(x) + text(y),
				Trigger:          "ambiguous-adjacent-quantifiers",
				Confidence:       ConfidenceHigh,
				SuggestedRewrite: "make the boundary unambiguous, e.g. a negative lookahead or a possessive quantifier on the first atom",
				Span:             span,
			})
		}
		return true
	})
	return out
}

// detectGreedyLiteralOverlap flags a greedy unbounded quantifier X+
// immediately followed by a literal atom L whose first character is a
// member of X's first-set: backtracking must retry every position X
// could have stopped at before concluding L can never match.
func detectGreedyLiteralOverlap(root ast.Node, unicodeFlag bool) []Finding {
	var out []Finding
	ast.Walk(root, ast.PreOrder, func(n ast.Node) bool {
		seq, ok := n.(*ast.Sequence)
		if !ok {
			return true
		}
		for i := 0; i+1 < len(seq.Children); i++ {
			q, qok := seq.Children[i].(*ast.Quantifier)
			if !qok || q.Type != ast.Greedy || !unbounded(q) {
				continue
			}
			lit, litok := literalAtom(seq.Children[i+1])
			if !litok {
				continue
			}
			fx := charset.FirstSet(q.Child, unicodeFlag)
			fl := charset.FirstSet(lit, unicodeFlag)
			if !fx.Intersects(fl) {
				continue
			}
			severity := SeverityMedium
			// Combined with an ambiguous-adjacent-quantifiers finding at
			// the very same boundary, the two quantified atoms plus this
			// trailing literal form a three-way ambiguity, so the
			// combined risk is reported as high rather than medium.
			if i > 0 {
				if prevQ, ok := seq.Children[i-1].(*ast.Quantifier); ok && unbounded(prevQ) {
					prevFirst := charset.FirstSet(prevQ.Child, unicodeFlag)
					if !prevFirst.Unknown && !fx.Unknown && fx.Subtract(prevFirst).IsEmpty() {
						severity = SeverityHigh
					}
				}
			}
			out = append(out, Finding{
				Severity:         severity,
				Message:          fmt.Sprintf("greedy repetition immediately precedes an overlapping literal: %s%s", text(q), text(lit)),
				IssueID:          issueGreedyLiteralOverlap,
				Pattern:          text(q) + text(lit),
				Trigger:          "greedy-literal-overlap",
				Confidence:       ConfidenceMedium,
				SuggestedRewrite: "make the quantifier possessive (" + text(q) + "+) since it cannot give back characters the literal needs",
				Span:             token.Combine(q.Span(), lit.Span()),
			})
		}
		return true
	})
	return out
}

// literalAtom reports whether n is a single-character literal atom for
// the purposes of the greedy-then-literal rule.
func literalAtom(n ast.Node) (ast.Node, bool) {
	switch n.(type) {
	case *ast.Literal, *ast.CharLiteral:
		return n, true
	default:
		return nil, false
	}
}

// dangerousSubstrings are textual motifs known to combine unbounded
// quantifiers ambiguously even when the structural rules above, applied
// node-by-node, don't directly see the adjacency (e.g. across a group
// boundary the rules don't unwrap). Used only as a last-resort, low-
// confidence fallback when no structural finding fired.
var dangerousSubstrings = []string{
	"*.*", "+.+", "*.+", "+.*",
	`\d*\d+`, `\d+\d*`, `\d*\d*`,
	`\w*\w+`, `\w+\w*`, `\w*\w*`,
}

func detectHeuristicPatterns(r *ast.Regex) []Finding {
	pattern := text(r.Body)
	var out []Finding
	for _, motif := range dangerousSubstrings {
		if !strings.Contains(pattern, motif) {
			continue
		}
		out = append(out, Finding{
			Severity:   SeverityMedium,
			Message:    fmt.Sprintf("pattern contains a textually dangerous motif: %s", motif),
			IssueID:    issueHeuristicPattern,
			Pattern:    motif,
			Trigger:    "heuristic-motif",
			Confidence: ConfidenceLow,
		})
	}
	return out
}
