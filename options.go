package rescope

import (
	"github.com/0x4d5352/rescope/internal/automata/dfa"
	"github.com/0x4d5352/rescope/internal/optimizer"
	"github.com/0x4d5352/rescope/internal/parser"
	"github.com/0x4d5352/rescope/internal/redos"
)

// ParseOptions configures Parse, and every other operation that parses
// a pattern internally before doing its own work.
type ParseOptions struct {
	// MaxPatternLength bounds the pattern body length in bytes; 0 means
	// no limit.
	MaxPatternLength int `json:"max_pattern_length"`
	// Tolerant enables best-effort recovery: Parse returns a partial
	// AST alongside an aggregated *ParseError instead of aborting on
	// the first error.
	Tolerant bool `json:"tolerant"`
}

// DefaultParseOptions returns an unbounded, strict parse.
func DefaultParseOptions() ParseOptions {
	return ParseOptions{}
}

func (o ParseOptions) toInternal() parser.Options {
	return parser.Options{MaxLength: o.MaxPatternLength, Tolerant: o.Tolerant}
}

// OptimizeOptions mirrors spec §6's optimizer option map.
type OptimizeOptions struct {
	Digits                        bool `json:"digits"`
	Word                          bool `json:"word"`
	Ranges                        bool `json:"ranges"`
	CanonicalizeCharClasses       bool `json:"canonicalize_char_classes"`
	AutoPossessify                bool `json:"auto_possessify"`
	AllowAlternationFactorization bool `json:"allow_alternation_factorization"`
	MinQuantifierCount            int  `json:"min_quantifier_count"`
	VerifyWithAutomata            bool `json:"verify_with_automata"`
}

// DefaultOptimizeOptions returns the conservative default: canonicalization
// and digit/word/space replacement only.
func DefaultOptimizeOptions() OptimizeOptions {
	d := optimizer.DefaultOptions()
	return OptimizeOptions{
		Digits:                  d.Digits,
		Word:                    d.Word,
		Ranges:                  d.Ranges,
		CanonicalizeCharClasses: d.CanonicalizeCharClasses,
		MinQuantifierCount:      d.MinQuantifierCount,
	}
}

func (o OptimizeOptions) toInternal() optimizer.Options {
	return optimizer.Options{
		Digits:                        o.Digits,
		Word:                          o.Word,
		Ranges:                        o.Ranges,
		CanonicalizeCharClasses:       o.CanonicalizeCharClasses,
		AutoPossessify:                o.AutoPossessify,
		AllowAlternationFactorization: o.AllowAlternationFactorization,
		MinQuantifierCount:            o.MinQuantifierCount,
		VerifyWithAutomata:            o.VerifyWithAutomata,
	}
}

// ReDoSOptions mirrors spec §6's ReDoS option map.
type ReDoSOptions struct {
	Mode      redos.Mode     `json:"mode"`
	Threshold redos.Severity `json:"threshold"`
	Confirm   ConfirmOptions `json:"confirm"`
}

// DefaultReDoSOptions returns theoretical-only analysis with default
// confirmation knobs (used only when Mode is later raised to confirmed).
func DefaultReDoSOptions() ReDoSOptions {
	d := redos.DefaultOptions()
	return ReDoSOptions{Mode: d.Mode, Confirm: confirmOptionsFromInternal(d.Confirm)}
}

func (o ReDoSOptions) toInternal() redos.Options {
	return redos.Options{Mode: o.Mode, Threshold: o.Threshold, Confirm: o.Confirm.toInternal()}
}

// ConfirmOptions mirrors spec §6's confirmation option map.
type ConfirmOptions struct {
	MinInputLength int  `json:"min_input_length"`
	MaxInputLength int  `json:"max_input_length"`
	Steps          int  `json:"steps"`
	Iterations     int  `json:"iterations"`
	TimeoutMs      int  `json:"timeout_ms"`
	BacktrackLimit int  `json:"backtrack_limit"`
	RecursionLimit int  `json:"recursion_limit"`
	DisableJit     bool `json:"disable_jit"`
	PreviewLength  int  `json:"preview_length"`
}

func confirmOptionsFromInternal(c redos.ConfirmOptions) ConfirmOptions {
	return ConfirmOptions{
		MinInputLength: c.MinInputLength,
		MaxInputLength: c.MaxInputLength,
		Steps:          c.Steps,
		Iterations:     c.Iterations,
		TimeoutMs:      c.TimeoutMs,
		BacktrackLimit: c.BacktrackLimit,
		RecursionLimit: c.RecursionLimit,
		DisableJit:     c.DisableJit,
		PreviewLength:  c.PreviewLength,
	}
}

func (o ConfirmOptions) toInternal() redos.ConfirmOptions {
	return redos.ConfirmOptions{
		MinInputLength: o.MinInputLength,
		MaxInputLength: o.MaxInputLength,
		Steps:          o.Steps,
		Iterations:     o.Iterations,
		TimeoutMs:      o.TimeoutMs,
		BacktrackLimit: o.BacktrackLimit,
		RecursionLimit: o.RecursionLimit,
		DisableJit:     o.DisableJit,
		PreviewLength:  o.PreviewLength,
	}
}

// MatchMode selects how a built automaton treats position: full demands
// the whole input be consumed, partial allows matching a substring.
// rescope's automata always translate anchors to epsilon (an
// over-approximation documented in internal/automata/nfa), so the two
// modes are currently accepted and recorded but do not yet change
// BuildDfa's output; the field exists so callers and the option
// surface match spec §6 exactly, and so a future anchor-aware
// automaton has somewhere to plug in.
type MatchMode string

const (
	MatchFull    MatchMode = "full"
	MatchPartial MatchMode = "partial"
)

// Minimization selects which partition-refinement algorithm BuildDfa
// and Compare use.
type Minimization string

const (
	MinimizationHopcroft Minimization = "hopcroft"
	MinimizationMoore    Minimization = "moore"
)

func (m Minimization) toInternal() dfa.Minimization {
	if m == MinimizationMoore {
		return dfa.Moore
	}
	return dfa.Hopcroft
}

// SolverOptions mirrors spec §6's solver option map; it drives both
// BuildDfa (state ceiling, minimization choice) and Compare (adds BFS
// visit and byte-walk ceilings of four times MaxStates).
type SolverOptions struct {
	MatchMode    MatchMode    `json:"match_mode"`
	Minimization Minimization `json:"minimization"`
	MaxStates    int          `json:"max_states"`
}

// DefaultSolverOptions returns full-match, Hopcroft-minimized, a
// generous state ceiling.
func DefaultSolverOptions() SolverOptions {
	return SolverOptions{MatchMode: MatchFull, Minimization: MinimizationHopcroft, MaxStates: 10_000}
}

func (o SolverOptions) normalized() SolverOptions {
	if o.MaxStates <= 0 {
		return DefaultSolverOptions()
	}
	return o
}
