// Package nfa builds a Thompson-construction NFA from a rescope AST
// that has already passed automata.Validate (the regular subset only:
// no backreferences, lookarounds, subroutines, conditionals, verbs, or
// \K — capturing groups are stripped to their child, since capture
// bookkeeping plays no role once a pattern is reduced to the language
// it accepts). States and the byte-range/epsilon/split shape they carry
// are adapted line-for-shape from coregx/coregex/nfa/nfa.go, which
// builds the same kind of state graph for a matching engine; this NFA
// is read purely by the DFA subset construction downstream and is never
// itself executed as a matcher.
package nfa

import "fmt"

// StateID uniquely identifies an NFA state.
type StateID uint32

// InvalidState marks an as-yet-unpatched or absent transition target.
const InvalidState StateID = 0xFFFFFFFF

// StateKind identifies the type of NFA state and determines which
// transitions are valid.
type StateKind uint8

const (
	// StateMatch is the single accepting state.
	StateMatch StateKind = iota
	// StateByteRange consumes one byte in [Lo, Hi] and moves to Next.
	StateByteRange
	// StateSparse consumes one byte matching any of several disjoint
	// [Lo, Hi] ranges, one per Transition, all sharing the same target
	// (the fragment this state belongs to has exactly one accept per
	// character-class atom, regardless of how many ranges compose it).
	StateSparse
	// StateSplit is an epsilon transition to two states, used for
	// alternation and for the loop/skip edges of a quantifier.
	StateSplit
	// StateEpsilon is an epsilon transition to exactly one state, used
	// to chain fragments together without consuming input.
	StateEpsilon
)

func (k StateKind) String() string {
	switch k {
	case StateMatch:
		return "Match"
	case StateByteRange:
		return "ByteRange"
	case StateSparse:
		return "Sparse"
	case StateSplit:
		return "Split"
	case StateEpsilon:
		return "Epsilon"
	default:
		return fmt.Sprintf("Unknown(%d)", k)
	}
}

// Transition is one byte range of a Sparse state.
type Transition struct {
	Lo, Hi byte
	Next   StateID
}

// State is a single NFA state. Which fields are meaningful depends on
// Kind.
type State struct {
	Kind StateKind

	// ByteRange
	Lo, Hi byte
	Next   StateID

	// Sparse
	Transitions []Transition

	// Split
	Left, Right StateID
}

// NFA is an immutable Thompson construction: a slice of states plus the
// start state. State 0 is always the single StateMatch accept state,
// so every fragment's dangling out-edges patch to it at the very end of
// a successful build.
type NFA struct {
	States []State
	Start  StateID
}

// State returns the state with id, or nil if id is out of range.
func (n *NFA) State(id StateID) *State {
	if int(id) >= len(n.States) {
		return nil
	}
	return &n.States[id]
}

func (n *NFA) String() string {
	return fmt.Sprintf("NFA{states: %d, start: %d}", len(n.States), n.Start)
}
