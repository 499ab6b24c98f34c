package dfa

// partitionHopcroft runs the worklist-driven refinement at the heart of
// Hopcroft's algorithm: repeatedly pick a splitter set S and a symbol,
// and break every current block into the states that move into S on
// that symbol and the states that don't. It omits the textbook
// "requeue only the smaller half" bookkeeping that gives the algorithm
// its O(|alphabet| * n log n) bound — every split requeues both halves
// for every symbol — so it does more work than the optimal version but
// is far easier to verify by hand: each split is independent, strictly
// increases the number of blocks, and the process can run at most n-1
// splits before the worklist drains.
func partitionHopcroft(d *DFA) []int {
	n := len(d.States)
	alphabetSize := len(d.Alphabet)

	var accept, nonAccept []int
	for i, s := range d.States {
		if s.Accept {
			accept = append(accept, i)
		} else {
			nonAccept = append(nonAccept, i)
		}
	}

	type block = map[int]bool
	toBlock := func(ids []int) block {
		b := make(block, len(ids))
		for _, id := range ids {
			b[id] = true
		}
		return b
	}

	var partition []block
	if len(nonAccept) > 0 {
		partition = append(partition, toBlock(nonAccept))
	}
	if len(accept) > 0 {
		partition = append(partition, toBlock(accept))
	}

	type splitter struct {
		sym int
		set block
	}
	var worklist []splitter
	for _, b := range partition {
		for sym := 0; sym < alphabetSize; sym++ {
			worklist = append(worklist, splitter{sym: sym, set: b})
		}
	}

	for len(worklist) > 0 {
		sp := worklist[0]
		worklist = worklist[1:]

		// X = states that move into sp.set on sp.sym.
		x := make(block)
		for i := 0; i < n; i++ {
			t := d.States[i].Trans[sp.sym]
			if sp.set[int(t)] {
				x[i] = true
			}
		}
		if len(x) == 0 {
			continue
		}

		refined := make([]block, 0, len(partition)+1)
		for _, y := range partition {
			var in, out block
			for id := range y {
				if x[id] {
					if in == nil {
						in = make(block)
					}
					in[id] = true
				} else {
					if out == nil {
						out = make(block)
					}
					out[id] = true
				}
			}
			if len(in) > 0 && len(out) > 0 {
				refined = append(refined, in, out)
				for sym := 0; sym < alphabetSize; sym++ {
					worklist = append(worklist, splitter{sym: sym, set: in}, splitter{sym: sym, set: out})
				}
			} else {
				refined = append(refined, y)
			}
		}
		partition = refined
	}

	result := make([]int, n)
	for bi, b := range partition {
		for id := range b {
			result[id] = bi
		}
	}
	return result
}
