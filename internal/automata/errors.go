// Package automata turns a validated, purely-regular AST into the
// automata pipeline: NFA (Thompson construction), DFA (subset
// construction, Hopcroft/Moore minimization), and a BFS-based language
// solver over the product DFA. Its own top-level files host the
// regular-subset validator and the error kinds every stage below it
// raises; nfa, dfa, and solver are its subpackages.
package automata

import "fmt"

// UnsupportedFeatureError reports that the automata pipeline was asked
// to process a construct outside the regular languages: backreferences,
// lookarounds, subroutines/recursion, conditionals, PCRE verbs, or \K.
type UnsupportedFeatureError struct {
	Feature string
	Offset  int
}

func (e *UnsupportedFeatureError) Error() string {
	return fmt.Sprintf("automata: unsupported feature %q (at offset %d)", e.Feature, e.Offset)
}

// ComplexityError reports that a construction exceeded one of the
// pipeline's budget ceilings: quantifier unrolling, DFA state/transition
// counts, or product-BFS visited states.
type ComplexityError struct {
	Ceiling string
	Limit   int
	Got     int
}

func (e *ComplexityError) Error() string {
	return fmt.Sprintf("automata: %s exceeded (limit %d, got %d)", e.Ceiling, e.Limit, e.Got)
}
