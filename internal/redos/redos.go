// Package redos walks a parsed regex AST looking for shapes known to cause
// catastrophic (exponential or high-degree polynomial) backtracking in a
// traditional backtracking engine, and optionally confirms a finding by
// actually driving a backtracking matcher against an adversarial input.
//
// The structural rules are a from-scratch reimplementation, against this
// module's own AST and internal/charset first-sets, of the heuristics a
// regexp/syntax-walking detector would use: nested unbounded quantifiers,
// overlapping alternation branches, ambiguous adjacent quantifiers, and a
// greedy repetition immediately followed by an overlapping literal.
package redos

import (
	"sort"

	"github.com/0x4d5352/rescope/internal/ast"
	"github.com/0x4d5352/rescope/internal/token"
)

// Severity is the stable public severity taxonomy for ReDoS findings.
type Severity string

const (
	SeveritySafe     Severity = "safe"
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
	SeverityUnknown  Severity = "unknown"
)

var severityRank = map[Severity]int{
	SeveritySafe:     0,
	SeverityLow:      1,
	SeverityMedium:   2,
	SeverityHigh:     3,
	SeverityCritical: 4,
	SeverityUnknown:  -1,
}

// score maps a severity to its [0,10] numeric representation.
func (s Severity) score() int {
	switch s {
	case SeveritySafe:
		return 0
	case SeverityLow:
		return 2
	case SeverityMedium:
		return 5
	case SeverityHigh:
		return 8
	case SeverityCritical:
		return 10
	default:
		return 0
	}
}

// max returns whichever of s, other ranks higher; SeverityUnknown never
// wins a comparison against a known severity.
func (s Severity) max(other Severity) Severity {
	if severityRank[other] > severityRank[s] {
		return other
	}
	return s
}

// Confidence qualifies how sure the analyzer is about a finding.
type Confidence string

const (
	ConfidenceLow    Confidence = "low"
	ConfidenceMedium Confidence = "medium"
	ConfidenceHigh   Confidence = "high"
)

// Mode selects how much work redos.Analyze does.
type Mode string

const (
	ModeOff         Mode = "off"
	ModeTheoretical Mode = "theoretical"
	ModeConfirmed   Mode = "confirmed"
)

// Options configures a ReDoS analysis run.
type Options struct {
	// Mode selects whether the analyzer runs at all, and whether it also
	// drives the confirmation runner.
	Mode Mode
	// Threshold suppresses the result entirely when the detected severity
	// ranks below it; the zero value (empty string) disables filtering.
	Threshold Severity
	// Confirm configures the confirmation runner, used only when Mode is
	// ModeConfirmed.
	Confirm ConfirmOptions
}

// DefaultOptions returns the analyzer's conservative default: theoretical
// analysis, no severity floor, default confirmation knobs.
func DefaultOptions() Options {
	return Options{Mode: ModeTheoretical, Confirm: DefaultConfirmOptions()}
}

// Finding is one structural or confirmed issue located in the pattern.
type Finding struct {
	Severity         Severity   `json:"severity"`
	Message          string     `json:"message"`
	IssueID          string     `json:"issue_id"`
	Pattern          string     `json:"pattern"`
	Trigger          string     `json:"trigger"`
	Confidence       Confidence `json:"confidence"`
	SuggestedRewrite string     `json:"suggested_rewrite,omitempty"`
	Span             token.Span `json:"-"`
}

// Hotspot is a byte span with the worst severity among findings touching
// it, used for heatmap-style rendering; overlapping spans collapse into
// the max severity among them.
type Hotspot struct {
	Start    int      `json:"start"`
	End      int      `json:"end"`
	Severity Severity `json:"severity"`
}

// ReDoSAnalysis is the complete result of analyzing one pattern.
type ReDoSAnalysis struct {
	Severity        Severity   `json:"severity"`
	Score           int        `json:"score"`
	Mode            Mode       `json:"mode"`
	Confirmed       bool       `json:"confirmed"`
	Confidence      Confidence `json:"confidence"`
	VulnerablePart  string     `json:"vulnerable_part"`
	Trigger         string     `json:"trigger"`
	Recommendations []string   `json:"recommendations"`
	Findings        []Finding  `json:"findings"`
	Hotspots        []Hotspot  `json:"hotspots"`
}

// Analyze runs the structural detection rules against r, and — when
// opts.Mode is ModeConfirmed — drives the confirmation runner against the
// worst finding. ModeOff returns an all-safe, empty-findings result
// without walking the tree.
func Analyze(r *ast.Regex, opts Options) ReDoSAnalysis {
	if opts.Mode == "" {
		opts = DefaultOptions()
	}
	if opts.Mode == ModeOff {
		return ReDoSAnalysis{Severity: SeveritySafe, Confidence: ConfidenceHigh}
	}

	unicodeFlag := r.Flags != "" && containsByte(r.Flags, 'u')
	var findings []Finding
	findings = append(findings, detectNestedQuantifiers(r.Body, unicodeFlag)...)
	findings = append(findings, detectEvilTwinAlternations(r.Body, unicodeFlag)...)
	findings = append(findings, detectAmbiguousAdjacentQuantifiers(r.Body, unicodeFlag)...)
	findings = append(findings, detectGreedyLiteralOverlap(r.Body, unicodeFlag)...)
	if len(findings) == 0 {
		findings = append(findings, detectHeuristicPatterns(r)...)
	}

	if opts.Threshold != "" {
		filtered := findings[:0]
		for _, f := range findings {
			if severityRank[f.Severity] >= severityRank[opts.Threshold] {
				filtered = append(filtered, f)
			}
		}
		findings = filtered
	}

	analysis := aggregate(findings, opts.Mode)

	if opts.Mode == ModeConfirmed && len(findings) > 0 {
		worst := worstFinding(findings)
		outcome := Confirm(r, worst, opts.Confirm)
		analysis.Confirmed = outcome.Confirmed
		if outcome.Confirmed {
			analysis.Confidence = ConfidenceHigh
		}
	}

	return analysis
}

func aggregate(findings []Finding, mode Mode) ReDoSAnalysis {
	if len(findings) == 0 {
		return ReDoSAnalysis{Severity: SeveritySafe, Score: 0, Mode: mode, Confidence: ConfidenceHigh}
	}

	out := ReDoSAnalysis{Mode: mode, Findings: findings}
	worst := worstFinding(findings)
	out.Severity = worst.Severity
	out.Score = worst.Severity.score()
	out.VulnerablePart = worst.Pattern
	out.Trigger = worst.Trigger

	exactWitness := false
	onlyHeuristics := true
	recSeen := map[string]bool{}
	for _, f := range findings {
		if f.Severity != "" {
			out.Severity = out.Severity.max(f.Severity)
		}
		if f.Confidence == ConfidenceHigh {
			exactWitness = true
		}
		if f.IssueID != issueHeuristicPattern {
			onlyHeuristics = false
		}
		if f.SuggestedRewrite != "" && !recSeen[f.SuggestedRewrite] {
			recSeen[f.SuggestedRewrite] = true
			out.Recommendations = append(out.Recommendations, f.SuggestedRewrite)
		}
	}
	out.Score = out.Severity.score()

	switch {
	case exactWitness:
		out.Confidence = ConfidenceHigh
	case onlyHeuristics:
		out.Confidence = ConfidenceLow
	default:
		out.Confidence = ConfidenceMedium
	}

	out.Hotspots = buildHotspots(findings)
	return out
}

// worstFinding returns the finding with the highest-ranked severity,
// preferring the earliest in the findings slice on a tie (Analyze appends
// findings detector by detector, not in source order).
func worstFinding(findings []Finding) Finding {
	best := findings[0]
	for _, f := range findings[1:] {
		if severityRank[f.Severity] > severityRank[best.Severity] {
			best = f
		}
	}
	return best
}

// buildHotspots collapses every finding's span into a sorted, non-
// overlapping sequence of [start,end) ranges, each carrying the max
// severity of any finding that touches it. Implemented as a plain sweep
// over the distinct boundary positions rather than an interval tree: the
// number of findings per pattern is always small.
func buildHotspots(findings []Finding) []Hotspot {
	var spans []token.Span
	var sev []Severity
	for _, f := range findings {
		if f.Span.Len() == 0 {
			continue
		}
		spans = append(spans, f.Span)
		sev = append(sev, f.Severity)
	}
	if len(spans) == 0 {
		return nil
	}

	positions := map[int]bool{}
	for _, sp := range spans {
		positions[sp.Start] = true
		positions[sp.End] = true
	}
	cuts := make([]int, 0, len(positions))
	for p := range positions {
		cuts = append(cuts, p)
	}
	sort.Ints(cuts)

	var out []Hotspot
	for i := 0; i+1 < len(cuts); i++ {
		start, end := cuts[i], cuts[i+1]
		worst := SeveritySafe
		touched := false
		for j, sp := range spans {
			if sp.Start <= start && sp.End >= end {
				touched = true
				worst = worst.max(sev[j])
			}
		}
		if !touched {
			continue
		}
		if n := len(out); n > 0 && out[n-1].End == start && out[n-1].Severity == worst {
			out[n-1].End = end
			continue
		}
		out = append(out, Hotspot{Start: start, End: end, Severity: worst})
	}
	return out
}

func containsByte(s string, c byte) bool {
	for i := 0; i < len(s); i++ {
		if s[i] == c {
			return true
		}
	}
	return false
}
