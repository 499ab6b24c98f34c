package redos

import (
	"testing"

	"github.com/0x4d5352/rescope/internal/parser"
)

func analyze(t *testing.T, pattern string, opts Options) ReDoSAnalysis {
	t.Helper()
	r, err := parser.Parse(pattern, parser.Options{})
	if err != nil {
		t.Fatalf("Parse(%q) error: %v", pattern, err)
	}
	return Analyze(r, opts)
}

func hasTrigger(a ReDoSAnalysis, trigger string) bool {
	for _, f := range a.Findings {
		if f.Trigger == trigger {
			return true
		}
	}
	return false
}

func TestSafePatternHasNoFindings(t *testing.T) {
	a := analyze(t, "/abc/", DefaultOptions())
	if a.Severity != SeveritySafe {
		t.Fatalf("got severity %q, want safe", a.Severity)
	}
	if len(a.Findings) != 0 {
		t.Fatalf("got %d findings, want 0: %+v", len(a.Findings), a.Findings)
	}
	if a.Score != 0 {
		t.Fatalf("got score %d, want 0", a.Score)
	}
}

func TestNestedQuantifier(t *testing.T) {
	a := analyze(t, "/(a+)+/", DefaultOptions())
	if !hasTrigger(a, "nested-unbounded-quantifier") {
		t.Fatalf("expected nested-unbounded-quantifier finding, got %+v", a.Findings)
	}
	if a.Severity != SeverityCritical {
		t.Fatalf("got severity %q, want critical", a.Severity)
	}
	if a.VulnerablePart != "(a+)+" {
		t.Fatalf("got vulnerable part %q, want (a+)+", a.VulnerablePart)
	}
	if a.Confidence != ConfidenceHigh {
		t.Fatalf("got confidence %q, want high (exact, non-Unknown first-sets)", a.Confidence)
	}
}

func TestNestedQuantifierFiresWhenInnerOverlapsOuterFirstSet(t *testing.T) {
	a := analyze(t, "/(a+b+)+/", DefaultOptions())
	// the inner a+ overlaps the outer group's own first-set {a}, so this
	// still fires; it is not a disjoint-atoms counter-example.
	if !hasTrigger(a, "nested-unbounded-quantifier") {
		t.Fatal("expected nested-unbounded-quantifier finding for (a+b+)+")
	}
}

func TestEvilTwinAlternation(t *testing.T) {
	a := analyze(t, "/(a|a)+/", DefaultOptions())
	if !hasTrigger(a, "evil-twin-alternation") {
		t.Fatalf("expected evil-twin-alternation finding, got %+v", a.Findings)
	}
	if a.Severity != SeverityCritical {
		t.Fatalf("got severity %q, want critical", a.Severity)
	}
}

func TestEvilTwinAlternationDoesNotFireForDisjointBranches(t *testing.T) {
	a := analyze(t, "/(a|b)+/", DefaultOptions())
	if hasTrigger(a, "evil-twin-alternation") {
		t.Fatal("unexpected evil-twin-alternation finding for disjoint branches")
	}
}

func TestEvilTwinAlternationThroughWrapperGroup(t *testing.T) {
	// A quantified group that itself wraps an alternation is the shape
	// real parsed input takes for "(?:aa|ab)+": the group adds no
	// precedence value but must still be looked through.
	a := analyze(t, "/(?:aa|ab)+/", DefaultOptions())
	if !hasTrigger(a, "evil-twin-alternation") {
		t.Fatalf("expected evil-twin-alternation finding, got %+v", a.Findings)
	}
}

func TestAmbiguousAdjacentQuantifiers(t *testing.T) {
	a := analyze(t, `/\w+\d+/`, DefaultOptions())
	if !hasTrigger(a, "ambiguous-adjacent-quantifiers") {
		t.Fatalf("expected ambiguous-adjacent-quantifiers finding, got %+v", a.Findings)
	}
	if a.Severity != SeverityHigh {
		t.Fatalf("got severity %q, want high", a.Severity)
	}
}

func TestAmbiguousAdjacentQuantifiersDoesNotFireForDisjointSets(t *testing.T) {
	a := analyze(t, `/\d+\D+/`, DefaultOptions())
	if hasTrigger(a, "ambiguous-adjacent-quantifiers") {
		t.Fatal("unexpected ambiguous-adjacent-quantifiers finding for disjoint \\d+\\D+")
	}
}

func TestGreedyLiteralOverlap(t *testing.T) {
	a := analyze(t, "/a+a/", DefaultOptions())
	if !hasTrigger(a, "greedy-literal-overlap") {
		t.Fatalf("expected greedy-literal-overlap finding, got %+v", a.Findings)
	}
}

func TestGreedyLiteralOverlapDoesNotFireForDisjointLiteral(t *testing.T) {
	a := analyze(t, "/a+b/", DefaultOptions())
	if hasTrigger(a, "greedy-literal-overlap") {
		t.Fatal("unexpected greedy-literal-overlap finding for a+b")
	}
}

func TestThresholdFiltersLowerSeverityFindings(t *testing.T) {
	opts := DefaultOptions()
	opts.Threshold = SeverityCritical
	a := analyze(t, "/a+a/", opts) // greedy-literal-overlap is medium
	if len(a.Findings) != 0 {
		t.Fatalf("expected findings filtered out below critical threshold, got %+v", a.Findings)
	}
}

func TestModeOffSkipsAnalysis(t *testing.T) {
	a := analyze(t, "/(a+)+/", Options{Mode: ModeOff})
	if len(a.Findings) != 0 || a.Severity != SeveritySafe {
		t.Fatalf("expected no analysis under ModeOff, got %+v", a)
	}
}

func TestHeuristicFallbackFiresOnlyWithoutStructuralFindings(t *testing.T) {
	// Inside a character class, * and . are plain literal members, not
	// quantifier/dot operators, so no Quantifier node exists anywhere in
	// the tree and none of the structural rules (which all key off
	// *ast.Quantifier or *ast.Alternation) can fire. The compiled text
	// still contains the literal substring "*.*", which is exactly what
	// the textual fallback was grounded to catch as a last resort.
	a := analyze(t, "/[*.*b]/", DefaultOptions())
	if len(a.Findings) == 0 {
		t.Fatal("expected the heuristic fallback finding")
	}
	for _, f := range a.Findings {
		if f.IssueID != issueHeuristicPattern {
			t.Fatalf("expected only heuristic findings, got %+v", f)
		}
	}
	if a.Confidence != ConfidenceLow {
		t.Fatalf("got confidence %q, want low for heuristic-only findings", a.Confidence)
	}
}

func TestHotspotsCoverFindingSpans(t *testing.T) {
	a := analyze(t, "/(a+)+/", DefaultOptions())
	if len(a.Hotspots) == 0 {
		t.Fatal("expected at least one hotspot")
	}
	for _, h := range a.Hotspots {
		if h.Severity != SeverityCritical {
			t.Fatalf("got hotspot severity %q, want critical", h.Severity)
		}
	}
}

func TestRecommendationsAreDeduplicated(t *testing.T) {
	a := analyze(t, "/(a+)+|(b+)+/", DefaultOptions())
	seen := map[string]bool{}
	for _, rec := range a.Recommendations {
		if seen[rec] {
			t.Fatalf("duplicate recommendation: %q", rec)
		}
		seen[rec] = true
	}
}

func TestConfirmReportsObservationForZeroSpanFinding(t *testing.T) {
	r, err := parser.Parse("/abc/", parser.Options{})
	if err != nil {
		t.Fatal(err)
	}
	// A finding whose Span has zero length cannot be matched to a node,
	// so buildProbe falls back to the whole pattern's first-set ({a}
	// here); Confirm must still report an observation rather than
	// panicking.
	f := Finding{Pattern: "abc"}
	outcome := Confirm(r, f, DefaultConfirmOptions())
	if outcome.Observation == "" {
		t.Fatal("expected a non-empty observation")
	}
}

func TestConfirmedModeRunsWithoutPanic(t *testing.T) {
	opts := DefaultOptions()
	opts.Mode = ModeConfirmed
	opts.Confirm.MinInputLength = 4
	opts.Confirm.MaxInputLength = 8
	opts.Confirm.Steps = 2
	opts.Confirm.Iterations = 1
	opts.Confirm.TimeoutMs = 50
	a := analyze(t, "/(a+)+b/", opts)
	// Whether or not the short probe actually trips the timeout on this
	// machine, Confirm must run without error and leave Confirmed a
	// definite bool rather than panicking the analysis.
	_ = a.Confirmed
}
