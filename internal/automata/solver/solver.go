// Package solver answers language-level questions about two DFAs —
// does their intersection contain anything, is one a subset of the
// other, are they equivalent — by a breadth-first walk of their
// product automaton. Every operation shares the same BFS scaffolding,
// differing only in which pair of states counts as a hit; BFS order
// guarantees the first hit found is a shortest witness, and visiting
// each combined-alphabet range in ascending-byte order makes the
// witness deterministic.
package solver

import (
	"sort"

	"github.com/0x4d5352/rescope/internal/automata"
	"github.com/0x4d5352/rescope/internal/automata/dfa"
)

// Options bounds the product BFS.
type Options struct {
	// MaxVisited caps the number of distinct product states explored.
	MaxVisited int
	// MaxBytesWalked caps how many states the BFS dequeues — a proxy
	// for how many bytes the longest witness considered could be.
	MaxBytesWalked int
}

func DefaultOptions() Options {
	return Options{MaxVisited: 100_000, MaxBytesWalked: 100_000}
}

func normalizeOpts(opts Options) Options {
	if opts.MaxVisited <= 0 || opts.MaxBytesWalked <= 0 {
		return DefaultOptions()
	}
	return opts
}

// IntersectionEmpty reports whether a and b accept no string in
// common. When they do, witness is a shortest string both accept.
func IntersectionEmpty(a, b *dfa.DFA, opts Options) (empty bool, witness []byte, err error) {
	found, w, err := bfs(a, b, func(pa, pb dfa.StateID) bool {
		return a.States[pa].Accept && b.States[pb].Accept
	}, normalizeOpts(opts))
	if err != nil {
		return false, nil, err
	}
	return !found, w, nil
}

// SubsetOf reports whether every string a accepts is also accepted by
// b. When it is not, witness is a shortest string a accepts that b
// rejects.
func SubsetOf(a, b *dfa.DFA, opts Options) (ok bool, witness []byte, err error) {
	found, w, err := bfs(a, b, func(pa, pb dfa.StateID) bool {
		return a.States[pa].Accept && !b.States[pb].Accept
	}, normalizeOpts(opts))
	if err != nil {
		return false, nil, err
	}
	return !found, w, nil
}

// Equivalent reports whether a and b accept exactly the same language.
// When they don't, witness is a shortest string one accepts and the
// other rejects.
func Equivalent(a, b *dfa.DFA, opts Options) (ok bool, witness []byte, err error) {
	opts = normalizeOpts(opts)
	okAB, wAB, err := SubsetOf(a, b, opts)
	if err != nil {
		return false, nil, err
	}
	if !okAB {
		return false, wAB, nil
	}
	okBA, wBA, err := SubsetOf(b, a, opts)
	if err != nil {
		return false, nil, err
	}
	if !okBA {
		return false, wBA, nil
	}
	return true, nil, nil
}

// combinedAlphabet merges two DFAs' effective alphabets into one set
// of ranges coarse enough that every byte in a range behaves
// identically in both automata — the product BFS only needs one
// representative byte per range to explore every distinct transition
// pair.
func combinedAlphabet(a, b *dfa.DFA) []dfa.AlphabetRange {
	bounds := map[int]bool{0: true, 256: true}
	for _, r := range a.Alphabet {
		bounds[int(r.Lo)] = true
		bounds[int(r.Hi)+1] = true
	}
	for _, r := range b.Alphabet {
		bounds[int(r.Lo)] = true
		bounds[int(r.Hi)+1] = true
	}
	pts := make([]int, 0, len(bounds))
	for p := range bounds {
		pts = append(pts, p)
	}
	sort.Ints(pts)

	var out []dfa.AlphabetRange
	for i := 0; i+1 < len(pts); i++ {
		lo, hi := pts[i], pts[i+1]-1
		if lo > 255 {
			continue
		}
		if hi > 255 {
			hi = 255
		}
		out = append(out, dfa.AlphabetRange{Lo: byte(lo), Hi: byte(hi)})
	}
	return out
}

func symbolOf(d *dfa.DFA, b byte) int {
	for i, r := range d.Alphabet {
		if b >= r.Lo && b <= r.Hi {
			return i
		}
	}
	return -1
}

func step(d *dfa.DFA, s dfa.StateID, b byte) dfa.StateID {
	sym := symbolOf(d, b)
	if sym < 0 {
		return s
	}
	return d.States[s].Trans[sym]
}

type pairKey uint64

func keyOf(p, q dfa.StateID) pairKey { return pairKey(p)<<32 | pairKey(q) }

type parentLink struct {
	prev pairKey
	b    byte
	has  bool
}

// bfs explores the product of a and b breadth-first, returning the
// first pair hit satisfies and a shortest byte-string witness leading
// to it.
func bfs(a, b *dfa.DFA, hit func(pa, pb dfa.StateID) bool, opts Options) (bool, []byte, error) {
	alphabet := combinedAlphabet(a, b)

	startKey := keyOf(a.Start, b.Start)
	stateA := map[pairKey]dfa.StateID{startKey: a.Start}
	stateB := map[pairKey]dfa.StateID{startKey: b.Start}
	parent := map[pairKey]parentLink{startKey: {}}
	visited := map[pairKey]bool{startKey: true}

	if hit(a.Start, b.Start) {
		return true, nil, nil
	}

	queue := []pairKey{startKey}
	dequeued := 0
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		dequeued++
		if dequeued > opts.MaxBytesWalked {
			return false, nil, &automata.ComplexityError{Ceiling: "solver states walked", Limit: opts.MaxBytesWalked, Got: dequeued}
		}

		pa, pb := stateA[cur], stateB[cur]
		for _, r := range alphabet {
			nb := r.Lo
			na := step(a, pa, nb)
			npb := step(b, pb, nb)
			nk := keyOf(na, npb)
			if visited[nk] {
				continue
			}
			visited[nk] = true
			if len(visited) > opts.MaxVisited {
				return false, nil, &automata.ComplexityError{Ceiling: "solver visited states", Limit: opts.MaxVisited, Got: len(visited)}
			}
			stateA[nk], stateB[nk] = na, npb
			parent[nk] = parentLink{prev: cur, b: nb, has: true}
			if hit(na, npb) {
				return true, reconstruct(parent, nk), nil
			}
			queue = append(queue, nk)
		}
	}
	return false, nil, nil
}

func reconstruct(parent map[pairKey]parentLink, k pairKey) []byte {
	var rev []byte
	for {
		link := parent[k]
		if !link.has {
			break
		}
		rev = append(rev, link.b)
		k = link.prev
	}
	for i, j := 0, len(rev)-1; i < j; i, j = i+1, j-1 {
		rev[i], rev[j] = rev[j], rev[i]
	}
	return rev
}
