package simulation

import (
	"fmt"
	"math"
)

// Entrant is one runner in the race to be simulated: a race-unique runner
// number and the raw strength score produced by the ranking model.
type Entrant struct {
	RunnerNo int
	Score    float64
}

// TransformFunc converts raw ranker scores into strictly positive sampling
// weights. It must be strictly increasing so that a higher score always means
// a higher weight.
type TransformFunc func(scores []float64) []float64

// ExpTransform is the default score-to-weight link. Scores are re-centered on
// the race maximum before exponentiating, so large or negative scores cannot
// overflow and the largest weight is always exactly 1.
func ExpTransform(scores []float64) []float64 {
	maxScore := math.Inf(-1)
	for _, s := range scores {
		if s > maxScore {
			maxScore = s
		}
	}

	weights := make([]float64, len(scores))
	for i, s := range scores {
		weights[i] = math.Exp(s - maxScore)
	}
	return weights
}

// validateEntrants rejects inputs the sampler cannot handle: an empty field,
// duplicate runner numbers, or non-finite scores.
func validateEntrants(entrants []Entrant) error {
	if len(entrants) == 0 {
		return fmt.Errorf("%w: no entrants", ErrInvalidInput)
	}

	seen := make(map[int]struct{}, len(entrants))
	for _, e := range entrants {
		if math.IsNaN(e.Score) || math.IsInf(e.Score, 0) {
			return fmt.Errorf("%w: runner %d has non-finite score %v", ErrInvalidInput, e.RunnerNo, e.Score)
		}
		if _, dup := seen[e.RunnerNo]; dup {
			return fmt.Errorf("%w: duplicate runner number %d", ErrInvalidInput, e.RunnerNo)
		}
		seen[e.RunnerNo] = struct{}{}
	}
	return nil
}

// validateWeights checks the transform output. Entrants whose transformed
// weight is non-finite or non-positive are rejected rather than silently
// zeroed out.
func validateWeights(entrants []Entrant, weights []float64) error {
	if len(weights) != len(entrants) {
		return fmt.Errorf("%w: transform returned %d weights for %d entrants", ErrInvalidInput, len(weights), len(entrants))
	}
	for i, w := range weights {
		if math.IsNaN(w) || math.IsInf(w, 0) || w <= 0 {
			return fmt.Errorf("%w: runner %d has invalid weight %v", ErrInvalidInput, entrants[i].RunnerNo, w)
		}
	}
	return nil
}
