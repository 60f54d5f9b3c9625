package simulation

import (
	"math/rand"
	"testing"
)

func TestWeightTreeFind(t *testing.T) {
	tree := newWeightTree([]float64{1, 2, 3, 4})

	cases := []struct {
		u    float64
		want int
	}{
		{0, 0},
		{0.999, 0},
		{1.0, 1}, // exact boundary resolves to the following entrant
		{2.5, 1},
		{3.0, 2},
		{5.5, 2},
		{6.0, 3},
		{9.999, 3},
	}
	for _, c := range cases {
		if got := tree.find(c.u); got != c.want {
			t.Fatalf("find(%v) = %d, want %d", c.u, got, c.want)
		}
	}
}

func TestWeightTreeRemoveSkipsEntrant(t *testing.T) {
	weights := []float64{1, 2, 3, 4}
	tree := newWeightTree(weights)

	tree.add(1, -weights[1])
	if got := tree.total(); got != 8 {
		t.Fatalf("expected total 8 after removal, got %v", got)
	}
	// The removed entrant's range is empty; draws that used to land on it
	// now fall through to its successor.
	if got := tree.find(1.5); got != 2 {
		t.Fatalf("expected removed entrant to be skipped, got index %d", got)
	}
}

func TestWeightTreeBeyondTotal(t *testing.T) {
	tree := newWeightTree([]float64{1, 2})
	if got := tree.find(3.0); got != 2 {
		t.Fatalf("expected out-of-range sentinel for u at total, got %d", got)
	}
}

func TestSamplerDrawsDistinctRunners(t *testing.T) {
	runnerNos := []int{4, 7, 9, 11, 15}
	weights := []float64{5, 4, 3, 2, 1}
	s := newSampler(runnerNos, weights)
	rng := rand.New(rand.NewSource(99))

	order := make([]int, 0, placeDepth)
	for trial := 0; trial < 500; trial++ {
		order = s.sample(rng, order[:0])
		if len(order) != 3 {
			t.Fatalf("expected depth 3, got %d", len(order))
		}
		if order[0] == order[1] || order[0] == order[2] || order[1] == order[2] {
			t.Fatalf("trial produced duplicate runners: %v", order)
		}
	}
}

func TestSamplerShortField(t *testing.T) {
	s := newSampler([]int{1, 2}, []float64{1, 1})
	rng := rand.New(rand.NewSource(1))

	order := s.sample(rng, nil)
	if len(order) != 2 {
		t.Fatalf("expected depth 2 for a two-runner field, got %d", len(order))
	}
	if order[0] == order[1] {
		t.Fatalf("both positions filled by runner %d", order[0])
	}
}

func TestSamplerRestoresWeightsBetweenTrials(t *testing.T) {
	s := newSampler([]int{1, 2, 3, 4}, []float64{1, 2, 3, 4})
	rng := rand.New(rand.NewSource(7))

	s.sample(rng, nil)
	if got := s.tree.total(); got != 10 {
		t.Fatalf("expected full weight restored after trial, got total %v", got)
	}
}

func TestSamplerFavorsHeavierWeights(t *testing.T) {
	s := newSampler([]int{1, 2}, []float64{9, 1})
	rng := rand.New(rand.NewSource(123))

	wins := 0
	const trials = 10000
	order := make([]int, 0, placeDepth)
	for i := 0; i < trials; i++ {
		order = s.sample(rng, order[:0])
		if order[0] == 1 {
			wins++
		}
	}
	rate := float64(wins) / trials
	if rate < 0.87 || rate > 0.93 {
		t.Fatalf("expected win rate near 0.9 for 9:1 weights, got %v", rate)
	}
}
