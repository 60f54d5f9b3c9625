package simulation

import "math/rand"

// placeDepth is how far down the finishing order each trial samples. Every
// supported bet type consumes at most the first three positions, so sampling
// can stop there regardless of field size.
const placeDepth = 3

// weightTree is a Fenwick (binary indexed) tree over entrant weights. It
// supports prefix-sum lookup, point update, and weighted draw in O(log n),
// which keeps draw-and-remove cheap even for large fields. A plain linear
// walk over the weights would also be correct for typical fields (<= 20
// runners) but scales as O(n) per draw.
type weightTree struct {
	sums    []float64 // 1-based internal nodes
	n       int
	highBit int // largest power of two <= n
}

func newWeightTree(weights []float64) *weightTree {
	n := len(weights)
	highBit := 1
	for highBit<<1 <= n {
		highBit <<= 1
	}
	t := &weightTree{sums: make([]float64, n+1), n: n, highBit: highBit}
	for i, w := range weights {
		t.add(i, w)
	}
	return t
}

// add applies delta to the weight at 0-based index i.
func (t *weightTree) add(i int, delta float64) {
	for j := i + 1; j <= t.n; j += j & (-j) {
		t.sums[j] += delta
	}
}

// total returns the sum of all remaining weights.
func (t *weightTree) total() float64 {
	sum := 0.0
	for j := t.n; j > 0; j -= j & (-j) {
		sum += t.sums[j]
	}
	return sum
}

// find returns the 0-based index of the entrant whose cumulative weight range
// contains u, i.e. the smallest i with prefix(i+1) > u. A removed entrant has
// zero weight and an empty range, so it can never be returned. If u lies at or
// beyond the remaining total (a floating-point boundary artifact), find
// returns n and the caller resolves to the last remaining candidate.
func (t *weightTree) find(u float64) int {
	idx := 0
	for bit := t.highBit; bit > 0; bit >>= 1 {
		next := idx + bit
		if next <= t.n && t.sums[next] <= u {
			idx = next
			u -= t.sums[next]
		}
	}
	return idx
}

// sampler draws complete depth-limited finishing orders from one fixed set of
// weighted entrants. It is owned by a single worker and reused across trials;
// the tree is restored after every trial instead of rebuilt.
type sampler struct {
	runnerNos []int
	weights   []float64
	tree      *weightTree
	drawn     [placeDepth]int
}

func newSampler(runnerNos []int, weights []float64) *sampler {
	return &sampler{
		runnerNos: runnerNos,
		weights:   weights,
		tree:      newWeightTree(weights),
	}
}

// depth returns how many positions one trial fills.
func (s *sampler) depth() int {
	if len(s.runnerNos) < placeDepth {
		return len(s.runnerNos)
	}
	return placeDepth
}

// sample draws one trial: for each position it scales a single uniform draw by
// the remaining total weight, locates the matching entrant, removes it, and
// continues. The finishing order is appended to order (reused across trials)
// and returned.
func (s *sampler) sample(rng *rand.Rand, order []int) []int {
	depth := s.depth()
	total := s.tree.total()

	for pos := 0; pos < depth; pos++ {
		u := rng.Float64() * total
		idx := s.tree.find(u)
		if idx >= len(s.weights) {
			idx = s.lastRemaining(pos)
		}

		s.drawn[pos] = idx
		order = append(order, s.runnerNos[idx])
		s.tree.add(idx, -s.weights[idx])
		total -= s.weights[idx]
	}

	// Restore removed weights for the next trial.
	for pos := 0; pos < depth; pos++ {
		s.tree.add(s.drawn[pos], s.weights[s.drawn[pos]])
	}

	return order
}

// lastRemaining resolves a boundary draw to the highest-index entrant not yet
// taken in this trial. pos is the number of entrants already drawn.
func (s *sampler) lastRemaining(pos int) int {
	for idx := len(s.weights) - 1; idx >= 0; idx-- {
		taken := false
		for p := 0; p < pos; p++ {
			if s.drawn[p] == idx {
				taken = true
				break
			}
		}
		if !taken {
			return idx
		}
	}
	return 0
}
