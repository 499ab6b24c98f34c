// Package dfa determinizes a Thompson NFA via subset construction over
// its "effective alphabet" — the byte ranges that actually discriminate
// between NFA transitions, rather than all 256 individual byte values —
// and minimizes the result with a choice of Hopcroft or Moore
// partition refinement. State 0 is always a synthetic dead state
// (adapted from coregx/coregex/dfa/lazy's "dead state is index 0"
// convention), giving every DFA a total transition function.
package dfa

import (
	"sort"
	"strconv"
	"strings"

	"github.com/0x4d5352/rescope/internal/automata"
	"github.com/0x4d5352/rescope/internal/automata/nfa"
)

// AlphabetRange is one byte range of the effective alphabet; all bytes
// within a range are indistinguishable to every NFA transition.
type AlphabetRange struct {
	Lo, Hi byte
}

// StateID indexes DFA.States. 0 is always the dead state.
type StateID uint32

// State is one DFA state: a total transition table (one entry per
// AlphabetRange, in the same order as DFA.Alphabet) plus the set of NFA
// states it represents and whether any of them is the NFA's accept
// state.
type State struct {
	Accept    bool
	NFAStates []nfa.StateID
	Trans     []StateID
}

// DFA is a total, deterministic automaton: every state has exactly one
// outgoing transition per AlphabetRange, and state 0 is the dead sink
// all undefined transitions end up at.
type DFA struct {
	States   []State
	Start    StateID
	Alphabet []AlphabetRange
}

// Options bounds subset construction.
type Options struct {
	MaxStates      int
	MaxTransitions int
}

func DefaultOptions() Options {
	return Options{MaxStates: 10_000, MaxTransitions: 1_000_000}
}

// Build runs subset construction over n, producing a total DFA.
func Build(n *nfa.NFA, opts Options) (*DFA, error) {
	if opts.MaxStates <= 0 {
		opts = DefaultOptions()
	}
	alphabet := effectiveAlphabet(n)

	d := &DFA{Alphabet: alphabet}
	seen := map[string]StateID{}

	addState := func(nfaStates map[nfa.StateID]bool) StateID {
		ids := setToSortedSlice(nfaStates)
		k := key(ids)
		if id, ok := seen[k]; ok {
			return id
		}
		id := StateID(len(d.States))
		seen[k] = id
		d.States = append(d.States, State{
			Accept:    nfaStates[0], // state 0 of an nfa.NFA is always StateMatch
			NFAStates: ids,
			Trans:     make([]StateID, len(alphabet)),
		})
		return id
	}

	// state 0: the dead sink, transitions entirely to itself.
	dead := addState(map[nfa.StateID]bool{})
	for i := range d.States[dead].Trans {
		d.States[dead].Trans[i] = dead
	}

	startSet := epsilonClosure(n, []nfa.StateID{n.Start})
	d.Start = addState(startSet)

	worklist := []StateID{d.Start}
	setByID := map[StateID]map[nfa.StateID]bool{d.Start: startSet, dead: {}}

	for len(worklist) > 0 {
		id := worklist[0]
		worklist = worklist[1:]
		current := setByID[id]

		for ai, rng := range alphabet {
			target := move(n, current, rng.Lo)
			targetID := addState(target)
			if _, ok := setByID[targetID]; !ok {
				setByID[targetID] = target
				worklist = append(worklist, targetID)
			}
			d.States[id].Trans[ai] = targetID

			if len(d.States) > opts.MaxStates {
				return nil, &automata.ComplexityError{Ceiling: "dfa states", Limit: opts.MaxStates, Got: len(d.States)}
			}
			if len(d.States)*len(alphabet) > opts.MaxTransitions {
				return nil, &automata.ComplexityError{Ceiling: "dfa transitions", Limit: opts.MaxTransitions, Got: len(d.States) * len(alphabet)}
			}
		}
	}

	return d, nil
}

// effectiveAlphabet collects every byte boundary referenced by an NFA
// transition and partitions [0,256) into the maximal ranges no
// transition splits — the DFA never needs to distinguish two bytes no
// NFA edge treats differently.
func effectiveAlphabet(n *nfa.NFA) []AlphabetRange {
	bounds := map[int]bool{0: true, 256: true}
	for i := range n.States {
		s := &n.States[i]
		switch s.Kind {
		case nfa.StateByteRange:
			bounds[int(s.Lo)] = true
			bounds[int(s.Hi)+1] = true
		case nfa.StateSparse:
			for _, tr := range s.Transitions {
				bounds[int(tr.Lo)] = true
				bounds[int(tr.Hi)+1] = true
			}
		}
	}
	pts := make([]int, 0, len(bounds))
	for p := range bounds {
		pts = append(pts, p)
	}
	sort.Ints(pts)

	var out []AlphabetRange
	for i := 0; i+1 < len(pts); i++ {
		lo, hi := pts[i], pts[i+1]-1
		if lo > 255 {
			continue
		}
		if hi > 255 {
			hi = 255
		}
		out = append(out, AlphabetRange{Lo: byte(lo), Hi: byte(hi)})
	}
	return out
}

// epsilonClosure returns the set of NFA states reachable from ids by
// epsilon/split edges alone, including ids themselves.
func epsilonClosure(n *nfa.NFA, ids []nfa.StateID) map[nfa.StateID]bool {
	seen := map[nfa.StateID]bool{}
	stack := append([]nfa.StateID{}, ids...)
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if seen[id] {
			continue
		}
		seen[id] = true
		s := n.State(id)
		if s == nil {
			continue
		}
		switch s.Kind {
		case nfa.StateEpsilon:
			stack = append(stack, s.Next)
		case nfa.StateSplit:
			stack = append(stack, s.Left, s.Right)
		}
	}
	return seen
}

// move returns the epsilon-closure of every NFA state reachable from
// current by consuming byte b.
func move(n *nfa.NFA, current map[nfa.StateID]bool, b byte) map[nfa.StateID]bool {
	var next []nfa.StateID
	for id := range current {
		s := n.State(id)
		if s == nil {
			continue
		}
		switch s.Kind {
		case nfa.StateByteRange:
			if b >= s.Lo && b <= s.Hi {
				next = append(next, s.Next)
			}
		case nfa.StateSparse:
			for _, tr := range s.Transitions {
				if b >= tr.Lo && b <= tr.Hi {
					next = append(next, tr.Next)
				}
			}
		}
	}
	if len(next) == 0 {
		return map[nfa.StateID]bool{}
	}
	return epsilonClosure(n, next)
}

func setToSortedSlice(set map[nfa.StateID]bool) []nfa.StateID {
	out := make([]nfa.StateID, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func key(ids []nfa.StateID) string {
	var sb strings.Builder
	for _, id := range ids {
		sb.WriteString(strconv.FormatUint(uint64(id), 10))
		sb.WriteByte(',')
	}
	return sb.String()
}
