package dfa

import (
	"strconv"
	"strings"
)

// partitionMoore repeatedly splits blocks of states that disagree on
// where some symbol leads, until the number of distinct blocks stops
// growing. O(|alphabet| * n^2): each round recomputes a signature per
// state from scratch rather than tracking incremental splits, trading
// Hopcroft's asymptotics for a fixpoint simple enough to trust by
// inspection alone.
func partitionMoore(d *DFA) []int {
	n := len(d.States)
	block := make([]int, n)
	for i, s := range d.States {
		if s.Accept {
			block[i] = 1
		}
	}

	for {
		type sig struct {
			block int
			trans string
		}
		ids := map[sig]int{}
		next := make([]int, n)
		for i := range d.States {
			var sb strings.Builder
			for _, t := range d.States[i].Trans {
				sb.WriteString(strconv.Itoa(block[t]))
				sb.WriteByte(',')
			}
			s := sig{block: block[i], trans: sb.String()}
			id, ok := ids[s]
			if !ok {
				id = len(ids)
				ids[s] = id
			}
			next[i] = id
		}
		if len(ids) == distinctCount(block) {
			return next
		}
		block = next
	}
}

func distinctCount(block []int) int {
	seen := map[int]bool{}
	for _, b := range block {
		seen[b] = true
	}
	return len(seen)
}
