package redos

import (
	"strings"
	"time"

	"github.com/dlclark/regexp2"

	"github.com/0x4d5352/rescope/internal/ast"
	"github.com/0x4d5352/rescope/internal/charset"
	"github.com/0x4d5352/rescope/internal/compiler"
	"github.com/0x4d5352/rescope/internal/token"
)

// ConfirmOptions configures the confirmation runner (spec §6
// "Confirmation" options). The pattern is probed with inputs of growing
// length between MinInputLength and MaxInputLength, in Steps increments,
// each run Iterations times for a steadier timing signal.
type ConfirmOptions struct {
	MinInputLength int
	MaxInputLength int
	Steps          int
	Iterations     int
	TimeoutMs      int
	// BacktrackLimit and RecursionLimit are carried for the full §6
	// option shape but unused by this runner: dlclark/regexp2 exposes a
	// wall-clock MatchTimeout, not a step or stack-depth budget, so
	// TimeoutMs is the only knob that actually bounds a probe here.
	BacktrackLimit int
	RecursionLimit int
	DisableJit     bool
	PreviewLength  int
}

// DefaultConfirmOptions returns knobs sized for a quick, interactive
// confirmation pass: short inputs, a short per-attempt timeout, so a
// genuinely catastrophic pattern trips the timeout well before it
// threatens the process running the analyzer itself.
func DefaultConfirmOptions() ConfirmOptions {
	return ConfirmOptions{
		MinInputLength: 8,
		MaxInputLength: 32,
		Steps:          4,
		Iterations:     2,
		TimeoutMs:      250,
		BacktrackLimit: 1_000_000,
		RecursionLimit: 1_000,
		PreviewLength:  64,
	}
}

// ConfirmOutcome is the result of probing one Finding against a real
// backtracking engine.
type ConfirmOutcome struct {
	// Confirmed is true when growing the probe input produced either a
	// timeout or clearly super-linear elapsed time.
	Confirmed bool
	// Observation names what was seen: "timeout", "super-linear", or
	// "no-blowup"; "not-probable" when the pattern could not be compiled
	// for probing.
	Observation string
	// ProbeLengths and ElapsedMs run in parallel, one entry per probe
	// size tried.
	ProbeLengths []int
	ElapsedMs    []int64
	// Preview is the adversarial input that triggered the observation
	// (or the largest one tried, if none did), truncated to
	// Options.PreviewLength.
	Preview string
}

// Confirm drives dlclark/regexp2 — a real backtracking engine, unlike the
// linear-time stdlib regexp — against the pattern r compiles to, with
// inputs built from the culprit finding's vulnerable part: a run of
// characters sampled from its first-set followed by one character outside
// it, forcing the engine to exhaust every way the repetition could have
// matched before failing.
func Confirm(r *ast.Regex, f Finding, opts ConfirmOptions) ConfirmOutcome {
	re, probeChar, failChar, ok := buildProbe(r, f)
	if !ok {
		return ConfirmOutcome{Observation: "not-probable"}
	}

	steps := opts.Steps
	if steps < 1 {
		steps = 1
	}
	minLen, maxLen := opts.MinInputLength, opts.MaxInputLength
	if maxLen < minLen {
		maxLen = minLen
	}
	timeout := time.Duration(opts.TimeoutMs) * time.Millisecond
	if timeout <= 0 {
		timeout = 250 * time.Millisecond
	}
	re.MatchTimeout = timeout

	out := ConfirmOutcome{Observation: "no-blowup"}
	var lastInput string
	for i := 0; i < steps; i++ {
		n := minLen
		if steps > 1 {
			n = minLen + (maxLen-minLen)*i/(steps-1)
		}
		input := strings.Repeat(string(probeChar), n) + string(failChar)
		lastInput = input

		var elapsed time.Duration
		timedOut := false
		iterations := opts.Iterations
		if iterations < 1 {
			iterations = 1
		}
		for iter := 0; iter < iterations; iter++ {
			start := time.Now()
			_, err := re.FindStringMatch(input)
			elapsed += time.Since(start)
			if err != nil {
				timedOut = true
			}
		}
		elapsed /= time.Duration(iterations)

		out.ProbeLengths = append(out.ProbeLengths, n)
		out.ElapsedMs = append(out.ElapsedMs, elapsed.Milliseconds())

		if timedOut {
			out.Confirmed = true
			out.Observation = "timeout"
			break
		}
		if superLinear(out.ProbeLengths, out.ElapsedMs) {
			out.Confirmed = true
			out.Observation = "super-linear"
			break
		}
	}

	preview := lastInput
	if len(preview) > opts.PreviewLength && opts.PreviewLength > 0 {
		preview = preview[:opts.PreviewLength]
	}
	out.Preview = preview
	return out
}

// buildProbe compiles r's whole pattern with dlclark/regexp2 (a real
// backtracking engine, required to observe backtracking blowup at all)
// and picks a probe/fail character pair from the culprit node's
// first-set, falling back to the whole pattern's first-set when the
// finding's span can't be matched back to a specific node (the textual
// heuristic fallback has no span of its own).
func buildProbe(r *ast.Regex, f Finding) (*regexp2.Regexp, rune, rune, bool) {
	body := strings.TrimSuffix(strings.TrimPrefix(compiler.Compile(ast.NewRegex(r.Body.Span(), r.Body, "", '/')), "/"), "/")
	re, err := regexp2.Compile(body, regexOptionsFor(r.Flags))
	if err != nil {
		return nil, 0, 0, false
	}

	unicodeFlag := containsByte(r.Flags, 'u')
	culprit := r.Body
	if f.Span.Len() > 0 {
		if n := nodeAt(r.Body, f.Span); n != nil {
			culprit = n
		}
	}
	set := charset.FirstSet(culprit, unicodeFlag)
	if set.IsEmpty() {
		set = charset.FirstSet(r.Body, unicodeFlag)
	}
	probe, ok := set.Sample()
	if !ok {
		probe = 'a'
	}
	fail, ok := set.Complement(0x10FFFF).Sample()
	if !ok {
		fail = '!'
	}
	return re, probe, fail, true
}

// nodeAt returns the node within root whose span exactly matches want,
// preferring the most specific (deepest) match.
func nodeAt(root ast.Node, want token.Span) ast.Node {
	var found ast.Node
	var walk func(n ast.Node)
	walk = func(n ast.Node) {
		if n == nil {
			return
		}
		if n.Span() == want {
			found = n
		}
		for _, c := range ast.Children(n) {
			walk(c)
		}
	}
	walk(root)
	return found
}

func regexOptionsFor(flags string) regexp2.RegexOptions {
	opts := regexp2.None
	if containsByte(flags, 'i') {
		opts |= regexp2.IgnoreCase
	}
	if containsByte(flags, 'm') {
		opts |= regexp2.Multiline
	}
	if containsByte(flags, 's') {
		opts |= regexp2.Singleline
	}
	if containsByte(flags, 'x') {
		opts |= regexp2.IgnorePatternWhitespace
	}
	return opts
}

// superLinear reports whether the elapsed-time series grew faster than a
// small constant factor relative to input-length growth, a signal of
// polynomial-or-worse blowup even when no single probe timed out.
func superLinear(lengths []int, elapsedMs []int64) bool {
	if len(lengths) < 2 {
		return false
	}
	i, j := len(lengths)-2, len(lengths)-1
	if elapsedMs[i] <= 0 {
		return false
	}
	lengthRatio := float64(lengths[j]) / float64(lengths[i])
	timeRatio := float64(elapsedMs[j]) / float64(elapsedMs[i])
	// A linear-time match's timeRatio tracks lengthRatio; require clearing
	// several times that to call it super-linear, since process jitter on
	// short, sub-millisecond runs is otherwise indistinguishable from it.
	return timeRatio > lengthRatio*4
}
