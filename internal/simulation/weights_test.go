package simulation

import (
	"math"
	"testing"
)

func TestExpTransformPositiveAndIncreasing(t *testing.T) {
	scores := []float64{-40.5, -1.2, 0, 3.7, 250}
	weights := ExpTransform(scores)

	if len(weights) != len(scores) {
		t.Fatalf("expected %d weights, got %d", len(scores), len(weights))
	}
	for i, w := range weights {
		if w <= 0 || math.IsInf(w, 0) || math.IsNaN(w) {
			t.Fatalf("weight %d is not strictly positive and finite: %v", i, w)
		}
		if i > 0 && weights[i] <= weights[i-1] {
			t.Fatalf("weights not strictly increasing with score: %v", weights)
		}
	}
}

func TestExpTransformMaxCentered(t *testing.T) {
	// Re-centering puts the top score at weight exactly 1, so even huge
	// scores cannot overflow.
	weights := ExpTransform([]float64{700, 710, 720})
	if weights[2] != 1.0 {
		t.Fatalf("expected max weight 1.0, got %v", weights[2])
	}
	for _, w := range weights {
		if math.IsInf(w, 0) {
			t.Fatalf("transform overflowed: %v", weights)
		}
	}
}

func TestValidateEntrantsRejectsDuplicates(t *testing.T) {
	err := validateEntrants([]Entrant{{RunnerNo: 3, Score: 1}, {RunnerNo: 3, Score: 2}})
	if err == nil {
		t.Fatal("expected error for duplicate runner number")
	}
}

func TestValidateEntrantsRejectsNonFinite(t *testing.T) {
	for _, score := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		err := validateEntrants([]Entrant{{RunnerNo: 1, Score: score}})
		if err == nil {
			t.Fatalf("expected error for score %v", score)
		}
	}
}

func TestValidateWeightsRejectsNonPositive(t *testing.T) {
	entrants := []Entrant{{RunnerNo: 1}, {RunnerNo: 2}}
	if err := validateWeights(entrants, []float64{1, 0}); err == nil {
		t.Fatal("expected error for zero weight")
	}
	if err := validateWeights(entrants, []float64{1, -0.5}); err == nil {
		t.Fatal("expected error for negative weight")
	}
	if err := validateWeights(entrants, []float64{1}); err == nil {
		t.Fatal("expected error for weight count mismatch")
	}
}
