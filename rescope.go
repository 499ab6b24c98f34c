package rescope

import (
	"strings"

	"github.com/0x4d5352/rescope/internal/ast"
	"github.com/0x4d5352/rescope/internal/automata"
	"github.com/0x4d5352/rescope/internal/automata/dfa"
	"github.com/0x4d5352/rescope/internal/automata/nfa"
	"github.com/0x4d5352/rescope/internal/automata/solver"
	"github.com/0x4d5352/rescope/internal/compiler"
	"github.com/0x4d5352/rescope/internal/linter"
	"github.com/0x4d5352/rescope/internal/optimizer"
	"github.com/0x4d5352/rescope/internal/parser"
	"github.com/0x4d5352/rescope/internal/redos"
	"github.com/0x4d5352/rescope/internal/validator"
)

// Parse lexes and parses pattern (delimiters and flags included) into a
// Regex AST.
//
//	r, err := rescope.Parse(`/\d+/`, rescope.DefaultParseOptions())
func Parse(pattern string, opts ParseOptions) (*ast.Regex, error) {
	return parser.Parse(pattern, opts.toInternal())
}

// MustParse parses pattern and panics if it fails. Useful for patterns
// known to be valid, such as test fixtures.
func MustParse(pattern string) *ast.Regex {
	r, err := Parse(pattern, DefaultParseOptions())
	if err != nil {
		panic("rescope: Parse(" + pattern + "): " + err.Error())
	}
	return r
}

// Validate reports only whether pattern parses; it never returns a Go
// error, matching spec §6's "validate never throws" — any parse failure
// is folded into the result's Error field instead.
func Validate(pattern string, opts ParseOptions) ValidateResult {
	_, err := Parse(pattern, opts)
	if err != nil {
		return ValidateResult{IsValid: false, Error: err.Error()}
	}
	return ValidateResult{IsValid: true}
}

// Issues runs the semantic validator visitor (spec §4.4) over r: duplicate
// group names, reversed ranges, dangling references, and the like. These
// are collected, never thrown.
func Issues(r *ast.Regex) []ValidatorIssueRecord {
	return issueRecords(validator.Validate(r))
}

// Compile renders r back to pattern text (spec §4.3's compiler visitor).
func Compile(r *ast.Regex) string {
	return compiler.Compile(r)
}

// Lint runs the registered lint rules (spec §4.5) over r. disabled names
// rule IDs to skip.
func Lint(r *ast.Regex, disabled ...string) []LintIssue {
	return lintIssues(linter.Lint(r, disabled...))
}

// Optimize rewrites r (spec §4.6) and re-parses the result to verify the
// safety gate: a structural round-trip or, when opts.VerifyWithAutomata
// is set, language equivalence via the automata pipeline, which fails for
// a tree outside the regular subset. A failed
// verification discards the rewrite and returns the original pattern
// unchanged with Verified false.
func Optimize(r *ast.Regex, opts OptimizeOptions) OptimizeResult {
	original := compiler.Compile(r)
	optimized, changes := optimizer.Optimize(r, opts.toInternal())

	ok := optimizer.Verify(r, optimized, opts.toInternal(), automataEquivalentAST)
	if !ok {
		return OptimizeResult{Original: original, Optimized: original, Changes: nil, Verified: false}
	}
	return OptimizeResult{
		Original:  original,
		Optimized: compiler.Compile(optimized),
		Changes:   changeRecords(changes),
		Verified:  true,
	}
}

// automataEquivalentAST bridges optimizer.Verify's injectable hook (which
// exists solely to avoid optimizer importing automata, an import cycle)
// to a real automata-backed equivalence check. Patterns outside the
// regular subset (or whose automata blow a complexity ceiling) report
// inequivalence conservatively: the optimizer's safety gate is meant to
// discard any rewrite it cannot actually prove safe.
func automataEquivalentAST(a, b *ast.Regex) (bool, error) {
	da, err := buildDfaFromAST(a, DefaultSolverOptions())
	if err != nil {
		return false, err
	}
	db, err := buildDfaFromAST(b, DefaultSolverOptions())
	if err != nil {
		return false, err
	}
	ok, _, err := solver.Equivalent(da, db, solver.DefaultOptions())
	return ok, err
}

// ReDoS runs the ReDoS analyzer (spec §4.7) over r.
func ReDoS(r *ast.Regex, opts ReDoSOptions) redos.ReDoSAnalysis {
	return redos.Analyze(r, opts.toInternal())
}

func unicodeFlag(r *ast.Regex) bool {
	return strings.ContainsRune(r.Flags, 'u')
}

// buildDfaFromAST is BuildDfa's shared core, operating on an already
// validated-and-parsed AST.
func buildDfaFromAST(r *ast.Regex, opts SolverOptions) (*dfa.DFA, error) {
	opts = opts.normalized()
	if err := automata.Validate(r.Body); err != nil {
		return nil, err
	}
	n, err := nfa.Build(r.Body, unicodeFlag(r), nfa.DefaultOptions())
	if err != nil {
		return nil, err
	}
	dopts := dfa.DefaultOptions()
	dopts.MaxStates = opts.MaxStates
	d, err := dfa.Build(n, dopts)
	if err != nil {
		return nil, err
	}
	return dfa.Minimize(d, opts.Minimization.toInternal()), nil
}

// BuildDfa validates pattern against the regular subset (spec §4.8.1),
// builds its Thompson NFA (§4.8.2), determinizes it via subset
// construction (§4.8.3), and minimizes it (§4.8.4).
func BuildDfa(pattern string, parseOpts ParseOptions, opts SolverOptions) (*Dfa, error) {
	r, err := parser.Parse(pattern, parseOpts.toInternal())
	if err != nil {
		return nil, err
	}
	d, err := buildDfaFromAST(r, opts)
	if err != nil {
		return nil, err
	}
	return toDfaRecord(d), nil
}

func toDfaRecord(d *dfa.DFA) *Dfa {
	alphabet := make([]AlphabetRange, len(d.Alphabet))
	for i, r := range d.Alphabet {
		alphabet[i] = AlphabetRange{Lo: int(r.Lo), Hi: int(r.Hi)}
	}
	var accepts []int
	for i, s := range d.States {
		if s.Accept {
			accepts = append(accepts, i)
		}
	}
	return &Dfa{
		States:   len(d.States),
		Start:    int(d.Start),
		Alphabet: alphabet,
		Accepts:  accepts,
	}
}

// Compare answers a language-level question about two patterns (spec
// §4.8.5) by building each pattern's minimized DFA and walking their
// product automaton.
func Compare(patternA, patternB string, method CompareMethod, parseOpts ParseOptions, opts SolverOptions) (*CompareResult, error) {
	ra, err := parser.Parse(patternA, parseOpts.toInternal())
	if err != nil {
		return nil, err
	}
	rb, err := parser.Parse(patternB, parseOpts.toInternal())
	if err != nil {
		return nil, err
	}
	da, err := buildDfaFromAST(ra, opts)
	if err != nil {
		return nil, err
	}
	db, err := buildDfaFromAST(rb, opts)
	if err != nil {
		return nil, err
	}

	sopts := solver.Options{MaxVisited: opts.normalized().MaxStates * 4, MaxBytesWalked: opts.normalized().MaxStates * 4}

	switch method {
	case CompareSubset:
		ok, witness, err := solver.SubsetOf(da, db, sopts)
		if err != nil {
			return nil, err
		}
		res := &CompareResult{Method: method, IsSubset: &ok}
		if !ok {
			res.Counterexample = string(witness)
		}
		return res, nil
	case CompareEquivalent:
		ok, witness, err := solver.Equivalent(da, db, sopts)
		if err != nil {
			return nil, err
		}
		res := &CompareResult{Method: method, Equivalent: &ok}
		if !ok {
			res.Counterexample = string(witness)
		}
		return res, nil
	default:
		empty, witness, err := solver.IntersectionEmpty(da, db, sopts)
		if err != nil {
			return nil, err
		}
		res := &CompareResult{Method: CompareIntersectionEmpty, IsEmpty: &empty}
		if !empty {
			res.Example = string(witness)
		}
		return res, nil
	}
}
