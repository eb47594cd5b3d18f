package trellis

const numStates = 4

const infCost = 1 << 30

// Metric scores the cost of hypothesizing state at a position where
// observed was actually read. The default is Hamming distance on the base
// alphabet; it is kept pluggable so a symbol-specific error model (e.g.
// A<->G transition priors in nanopore sequencing) can replace it without
// touching the trellis topology below.
type Metric func(state, observed Base) int

// Hamming is the default single-symbol metric: 0 if the hypothesis matches
// the observed base, 1 otherwise.
func Hamming(state, observed Base) int {
	if state == observed {
		return 0
	}
	return 1
}

// ViterbiDecode finds the minimum-cost homopolymer-free base sequence
// consistent with observed, given the deterministic initial state the
// encoder seeded from the shard's address. It operates on a single shard's
// payload (a few hundred positions) with 4 states: O(L) memory, O(L*4*3)
// time. Ties are broken by lowest state index; no ordering beyond that is
// observable, matching the spec's "no tie-break ordering is observable
// beyond CRC-gated acceptance".
func ViterbiDecode(initial Base, observed Sequence) Sequence {
	return viterbiDecode(initial, observed, Hamming)
}

// ViterbiDecodeWith runs the same algorithm under a caller-supplied metric.
func ViterbiDecodeWith(initial Base, observed Sequence, metric Metric) Sequence {
	return viterbiDecode(initial, observed, metric)
}

func viterbiDecode(initial Base, observed Sequence, metric Metric) Sequence {
	l := len(observed)
	if l == 0 {
		return nil
	}

	cost := make([][numStates]int, l)
	prev := make([][numStates]int8, l)

	for s := Base(0); s < numStates; s++ {
		prev[0][s] = -1
		if s == initial {
			cost[0][s] = infCost
			continue
		}
		cost[0][s] = metric(s, observed[0])
	}

	for i := 1; i < l; i++ {
		for s := Base(0); s < numStates; s++ {
			best, bestPrev := infCost, int8(-1)
			for sp := Base(0); sp < numStates; sp++ {
				if sp == s {
					continue // homopolymer transition is disallowed
				}
				c := cost[i-1][sp]
				if c < best {
					best, bestPrev = c, int8(sp)
				}
			}
			prev[i][s] = bestPrev
			if bestPrev < 0 {
				cost[i][s] = infCost
			} else {
				cost[i][s] = best + metric(s, observed[i])
			}
		}
	}

	bestFinal, bestCost := Base(0), infCost+1
	for s := Base(0); s < numStates; s++ {
		if cost[l-1][s] < bestCost {
			bestCost, bestFinal = cost[l-1][s], s
		}
	}

	path := make(Sequence, l)
	cur := bestFinal
	for i := l - 1; i >= 0; i-- {
		path[i] = cur
		if p := prev[i][cur]; p >= 0 {
			cur = Base(p)
		}
	}
	return path
}
