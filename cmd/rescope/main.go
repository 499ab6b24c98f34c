// Command rescope runs one static-analysis operation against a pattern
// and writes the result as JSON to stdout.
package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/0x4d5352/rescope"
	"github.com/0x4d5352/rescope/internal/redos"
)

var version = "0.1.0"

func main() {
	var stdin io.Reader
	stat, _ := os.Stdin.Stat()
	if (stat.Mode() & os.ModeCharDevice) == 0 {
		stdin = os.Stdin
	}
	if err := run(os.Args, stdin, os.Stdout, os.Stderr); err != nil {
		os.Exit(1)
	}
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("rescope", flag.ContinueOnError)
	fs.SetOutput(stderr)

	op := fs.String("op", "parse", "Operation: parse|validate|lint|optimize|redos|dfa|compare")
	showVersion := fs.Bool("v", false, "Show version")
	pattern2 := fs.String("pattern2", "", "Second pattern, for -op compare")
	method := fs.String("method", "equivalent", "Compare method: intersection_empty|subset|equivalent")
	disabled := fs.String("disable", "", "Comma-separated lint rule IDs to skip, for -op lint")

	maxLength := fs.Int("max-length", 0, "Max pattern length in bytes, 0 = unbounded")
	tolerant := fs.Bool("tolerant", false, "Best-effort recovery on parse errors")

	verifyAutomata := fs.Bool("verify-automata", false, "Verify optimizer rewrites via automata-level equivalence, for -op optimize")
	redosMode := fs.String("redos-mode", "theoretical", "ReDoS mode: off|theoretical|confirmed")

	minimization := fs.String("minimization", "hopcroft", "DFA minimization: hopcroft|moore")
	maxStates := fs.Int("max-states", 10_000, "DFA/solver state ceiling, for -op dfa and -op compare")

	fs.Usage = func() {
		fmt.Fprintf(stderr, "rescope - static analysis for PCRE2-style regular expressions\n\n")
		fmt.Fprintf(stderr, "Usage:\n")
		fmt.Fprintf(stderr, "  rescope -op <operation> [flags] <pattern>\n")
		fmt.Fprintf(stderr, "  echo 'pattern' | rescope -op <operation> [flags]\n\n")
		fmt.Fprintf(stderr, "Flags:\n")
		fs.PrintDefaults()
		fmt.Fprintf(stderr, "\nExamples:\n")
		fmt.Fprintf(stderr, "  rescope -op lint '/(a+)+/'\n")
		fmt.Fprintf(stderr, "  rescope -op redos -redos-mode confirmed '/(a+)+b/'\n")
		fmt.Fprintf(stderr, "  rescope -op compare -pattern2 '/a*/' -method subset '/a+/'\n")
	}

	if err := fs.Parse(args[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}

	if *showVersion {
		fmt.Fprintf(stdout, "rescope version %s\n", version)
		return nil
	}

	pattern, err := getInput(fs.Args(), stdin)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		fs.Usage()
		return err
	}

	parseOpts := rescope.ParseOptions{MaxPatternLength: *maxLength, Tolerant: *tolerant}

	var result any
	switch *op {
	case "validate":
		result = rescope.Validate(pattern, parseOpts)

	case "lint":
		r, err := rescope.Parse(pattern, parseOpts)
		if err != nil {
			return reportError(stderr, err)
		}
		var rules []string
		if *disabled != "" {
			rules = strings.Split(*disabled, ",")
		}
		result = rescope.Lint(r, rules...)

	case "optimize":
		r, err := rescope.Parse(pattern, parseOpts)
		if err != nil {
			return reportError(stderr, err)
		}
		optOpts := rescope.DefaultOptimizeOptions()
		optOpts.VerifyWithAutomata = *verifyAutomata
		result = rescope.Optimize(r, optOpts)

	case "redos":
		r, err := rescope.Parse(pattern, parseOpts)
		if err != nil {
			return reportError(stderr, err)
		}
		redosOpts := rescope.DefaultReDoSOptions()
		redosOpts.Mode = redos.Mode(*redosMode)
		result = rescope.ReDoS(r, redosOpts)

	case "dfa":
		solverOpts := rescope.SolverOptions{
			MatchMode:    rescope.MatchFull,
			Minimization: rescope.Minimization(*minimization),
			MaxStates:    *maxStates,
		}
		d, err := rescope.BuildDfa(pattern, parseOpts, solverOpts)
		if err != nil {
			return reportError(stderr, err)
		}
		result = d

	case "compare":
		if *pattern2 == "" {
			err := fmt.Errorf("-op compare requires -pattern2")
			return reportError(stderr, err)
		}
		solverOpts := rescope.SolverOptions{
			MatchMode:    rescope.MatchFull,
			Minimization: rescope.Minimization(*minimization),
			MaxStates:    *maxStates,
		}
		cmp, err := rescope.Compare(pattern, *pattern2, rescope.CompareMethod(*method), parseOpts, solverOpts)
		if err != nil {
			return reportError(stderr, err)
		}
		result = cmp

	default: // "parse" and any unrecognized op fall back to a parse report
		r, err := rescope.Parse(pattern, parseOpts)
		if err != nil {
			return reportError(stderr, err)
		}
		result = struct {
			Flags     string `json:"flags"`
			Delimiter string `json:"delimiter"`
			Compiled  string `json:"compiled"`
			Issues    []rescope.ValidatorIssueRecord `json:"issues"`
		}{
			Flags:     r.Flags,
			Delimiter: string(r.Delimiter),
			Compiled:  rescope.Compile(r),
			Issues:    rescope.Issues(r),
		}
	}

	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

func reportError(stderr io.Writer, err error) error {
	fmt.Fprintf(stderr, "Error: %v\n", err)
	return err
}

// getInput retrieves the pattern from the first CLI argument, falling
// back to stdin.
func getInput(args []string, stdin io.Reader) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	if stdin != nil {
		input, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("failed to read from stdin: %w", err)
		}
		return strings.TrimSpace(string(input)), nil
	}
	return "", fmt.Errorf("no pattern provided")
}
