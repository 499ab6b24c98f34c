package rescope

import (
	"strings"

	"github.com/0x4d5352/rescope/internal/linter"
	"github.com/0x4d5352/rescope/internal/optimizer"
	"github.com/0x4d5352/rescope/internal/validator"
)

// ValidateResult is spec §6's validate() output: a syntactic check only
// (does the pattern parse), distinct from the semantic issues Issues
// returns.
type ValidateResult struct {
	IsValid bool   `json:"is_valid"`
	Error   string `json:"error,omitempty"`
}

// ValidatorIssueRecord is validator.Issue reshaped with JSON tags for the
// facade boundary.
type ValidatorIssueRecord struct {
	IssueID string `json:"issue_id"`
	Message string `json:"message"`
	Start   int    `json:"start"`
	End     int    `json:"end"`
}

func issueRecords(issues []validator.Issue) []ValidatorIssueRecord {
	out := make([]ValidatorIssueRecord, len(issues))
	for i, iss := range issues {
		out[i] = ValidatorIssueRecord{IssueID: iss.ID, Message: iss.Message, Start: iss.Span.Start, End: iss.Span.End}
	}
	return out
}

// LintSeverity is the stable severity taxonomy lint issues carry.
type LintSeverity string

const (
	LintInfo    LintSeverity = "info"
	LintWarning LintSeverity = "warning"
	LintError   LintSeverity = "error"
)

// LintIssue is spec §6's `LintIssue{ issueId, message, span, severity,
// hint? }`. Severity is derived from the issue ID: the linter registry
// itself only ever collects a Rule's warnings, not a severity — rules
// that can only ever flag something outright broken (an impossible
// anchor, a useless backreference, a zero quantifier) are promoted to
// "error"; other IDs naming a useless or redundant construct are
// "info"; everything else is a "warning".
type LintIssue struct {
	IssueID  string       `json:"issue_id"`
	Message  string       `json:"message"`
	Start    int          `json:"start"`
	End      int          `json:"end"`
	Severity LintSeverity `json:"severity"`
	Hint     string       `json:"hint,omitempty"`
}

var errorLintIDs = map[string]bool{
	"regex.lint.anchor.impossible.start": true,
	"regex.lint.anchor.impossible.end":   true,
	"regex.lint.backref.useless":         true,
	"regex.lint.quantifier.zero":         true,
}

func lintSeverityFor(id string) LintSeverity {
	if errorLintIDs[id] {
		return LintError
	}
	if strings.Contains(id, "useless") || strings.Contains(id, "redundant") {
		return LintInfo
	}
	return LintWarning
}

func lintIssues(warnings []linter.Warning) []LintIssue {
	out := make([]LintIssue, len(warnings))
	for i, w := range warnings {
		out[i] = LintIssue{
			IssueID:  w.ID,
			Message:  w.Message,
			Start:    w.Span.Start,
			End:      w.Span.End,
			Severity: lintSeverityFor(w.ID),
		}
	}
	return out
}

// ChangeRecord is one optimizer rewrite, reported alongside the before
// and after pattern text.
type ChangeRecord struct {
	Rule  string `json:"rule"`
	Start int    `json:"start"`
	End   int    `json:"end"`
}

func changeRecords(changes []optimizer.Change) []ChangeRecord {
	out := make([]ChangeRecord, len(changes))
	for i, c := range changes {
		out[i] = ChangeRecord{Rule: c.Rule, Start: c.Span.Start, End: c.Span.End}
	}
	return out
}

// OptimizeResult is spec §6's `optimize() -> { original, optimized,
// changes[] }`.
type OptimizeResult struct {
	Original  string         `json:"original"`
	Optimized string         `json:"optimized"`
	Changes   []ChangeRecord `json:"changes"`
	Verified  bool           `json:"verified"`
}

// Dfa is a built automaton's summary, suitable for JSON output.
type Dfa struct {
	States   int             `json:"states"`
	Start    int             `json:"start"`
	Alphabet []AlphabetRange `json:"alphabet"`
	Accepts  []int           `json:"accepting_states"`
}

// AlphabetRange is one byte range of a Dfa's effective alphabet.
type AlphabetRange struct {
	Lo int `json:"lo"`
	Hi int `json:"hi"`
}

// CompareMethod selects which language relationship Compare checks.
type CompareMethod string

const (
	CompareIntersectionEmpty CompareMethod = "intersection_empty"
	CompareSubset            CompareMethod = "subset"
	CompareEquivalent        CompareMethod = "equivalent"
)

// CompareResult is spec §6's `compare() -> { isEmpty/isSubset/equivalent,
// example?, counter? }`; exactly one of IsEmpty/IsSubset/Equivalent is
// set, matching Method.
type CompareResult struct {
	Method         CompareMethod `json:"method"`
	IsEmpty        *bool         `json:"is_empty,omitempty"`
	IsSubset       *bool         `json:"is_subset,omitempty"`
	Equivalent     *bool         `json:"equivalent,omitempty"`
	Example        string        `json:"example,omitempty"`
	Counterexample string        `json:"counterexample,omitempty"`
}
