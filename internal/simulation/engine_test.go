package simulation

import (
	"context"
	"errors"
	"math"
	"reflect"
	"testing"
)

func runEngine(t *testing.T, cfg Config, entrants []Entrant) *Report {
	t.Helper()
	engine, err := NewEngine(cfg, nil)
	if err != nil {
		t.Fatalf("NewEngine failed: %v", err)
	}
	report, err := engine.Run(context.Background(), entrants)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	return report
}

func TestWinProbabilitiesSumToOne(t *testing.T) {
	entrants := []Entrant{
		{RunnerNo: 1, Score: 1.4},
		{RunnerNo: 2, Score: 0.9},
		{RunnerNo: 3, Score: 0.2},
		{RunnerNo: 4, Score: -0.5},
		{RunnerNo: 5, Score: -1.1},
	}
	report := runEngine(t, Config{Trials: 20000, Seed: 42}, entrants)

	sum := 0.0
	for _, e := range report.Entrants {
		sum += e.Win
	}
	// Exactly one winner per trial, so the counts sum to the trial count.
	if math.Abs(sum-1.0) > 1e-9 {
		t.Fatalf("win probabilities sum to %v, want 1.0", sum)
	}
}

func TestPlaceAtLeastWin(t *testing.T) {
	entrants := []Entrant{
		{RunnerNo: 1, Score: 2.0},
		{RunnerNo: 2, Score: 1.0},
		{RunnerNo: 3, Score: 0.5},
		{RunnerNo: 4, Score: 0.0},
		{RunnerNo: 5, Score: -0.4},
		{RunnerNo: 6, Score: -1.0},
	}
	report := runEngine(t, Config{Trials: 20000, Seed: 7}, entrants)

	for _, e := range report.Entrants {
		if e.Place < e.Win {
			t.Fatalf("runner %d place %v below win %v", e.RunnerNo, e.Place, e.Win)
		}
	}
}

func TestWinMonotonicInScore(t *testing.T) {
	entrants := []Entrant{
		{RunnerNo: 1, Score: 1.0},
		{RunnerNo: 2, Score: 0.0},
		{RunnerNo: 3, Score: -1.0},
		{RunnerNo: 4, Score: -2.0},
	}
	for _, seed := range []int64{1, 2, 3, 4, 5} {
		report := runEngine(t, Config{Trials: 20000, Seed: seed}, entrants)
		for no := 1; no < 4; no++ {
			hi := report.Entrant(no)
			lo := report.Entrant(no + 1)
			if hi.Win < lo.Win {
				t.Fatalf("seed %d: runner %d win %v below runner %d win %v",
					seed, no, hi.Win, no+1, lo.Win)
			}
		}
	}
}

func TestSingleEntrantDegenerate(t *testing.T) {
	report := runEngine(t, Config{Trials: 500, Seed: 11}, []Entrant{{RunnerNo: 8, Score: -3.2}})

	e := report.Entrant(8)
	if e == nil {
		t.Fatal("missing sole entrant in report")
	}
	if e.Win != 1.0 || e.Place != 1.0 {
		t.Fatalf("expected exact win and place 1.0, got win=%v place=%v", e.Win, e.Place)
	}
	if e.WinStdErr != 0 || e.PlaceStdErr != 0 {
		t.Fatalf("expected zero variance, got win_err=%v place_err=%v", e.WinStdErr, e.PlaceStdErr)
	}
	if len(report.Exacta) != 0 || len(report.Trifecta) != 0 || len(report.Quinella) != 0 || len(report.Trio) != 0 {
		t.Fatal("combination lists must be empty for a one-runner field")
	}
}

func TestTwoEntrantFieldDegradesToPairs(t *testing.T) {
	report := runEngine(t, Config{Trials: 2000, Seed: 3}, []Entrant{
		{RunnerNo: 1, Score: 0.5},
		{RunnerNo: 2, Score: 0.0},
	})

	if len(report.Trifecta) != 0 || len(report.Trio) != 0 {
		t.Fatal("triple combinations must be absent for a two-runner field")
	}
	if len(report.Exacta) == 0 || len(report.Quinella) != 1 {
		t.Fatalf("expected pair combinations, got exacta=%d quinella=%d",
			len(report.Exacta), len(report.Quinella))
	}
	total := 0
	for _, c := range report.Exacta {
		total += c.Count
	}
	if total != report.Trials {
		t.Fatalf("exacta counts cover %d of %d trials", total, report.Trials)
	}
}

func TestReproducibleAcrossRuns(t *testing.T) {
	entrants := []Entrant{
		{RunnerNo: 1, Score: 0.8},
		{RunnerNo: 2, Score: 0.3},
		{RunnerNo: 3, Score: -0.1},
		{RunnerNo: 4, Score: -0.7},
	}
	cfg := Config{Trials: 5000, Seed: 31, Workers: 4}

	first := runEngine(t, cfg, entrants)
	second := runEngine(t, cfg, entrants)
	if !reflect.DeepEqual(first, second) {
		t.Fatal("identical input and seed produced different reports")
	}
}

func TestReportInvariantAcrossWorkerCounts(t *testing.T) {
	entrants := []Entrant{
		{RunnerNo: 1, Score: 1.2},
		{RunnerNo: 2, Score: 0.4},
		{RunnerNo: 3, Score: 0.0},
		{RunnerNo: 4, Score: -0.3},
		{RunnerNo: 5, Score: -0.9},
	}
	var baseline *Report
	for _, workers := range []int{1, 2, 3, 8} {
		report := runEngine(t, Config{Trials: 6000, Seed: 17, Workers: workers}, entrants)
		if baseline == nil {
			baseline = report
			continue
		}
		// Per-trial seeding makes the merged tally independent of how
		// trials are sliced across workers.
		if !reflect.DeepEqual(baseline, report) {
			t.Fatalf("report differs with %d workers", workers)
		}
	}
}

func TestThreeEntrantScenario(t *testing.T) {
	report := runEngine(t, Config{Trials: 100000, Seed: 20240607}, []Entrant{
		{RunnerNo: 1, Score: 2.0},
		{RunnerNo: 2, Score: 1.0},
		{RunnerNo: 3, Score: 0.0},
	})

	first := report.Entrant(1)
	second := report.Entrant(2)
	third := report.Entrant(3)
	if !(first.Win > second.Win && second.Win > third.Win) {
		t.Fatalf("expected strict win ordering, got %v > %v > %v",
			first.Win, second.Win, third.Win)
	}
	// Every runner always finishes in the top three of a three-runner field.
	for _, e := range report.Entrants {
		if e.Place != 1.0 {
			t.Fatalf("runner %d place %v, want exactly 1.0", e.RunnerNo, e.Place)
		}
	}
}

func TestEqualScoresScenario(t *testing.T) {
	entrants := make([]Entrant, 5)
	for i := range entrants {
		entrants[i] = Entrant{RunnerNo: i + 1, Score: 0.7}
	}
	report := runEngine(t, Config{Trials: 50000, Seed: 5}, entrants)

	for _, e := range report.Entrants {
		if math.Abs(e.Win-0.2) > 0.02 {
			t.Fatalf("runner %d win %v outside tolerance of 0.2", e.RunnerNo, e.Win)
		}
		if math.Abs(e.Place-0.6) > 0.02 {
			t.Fatalf("runner %d place %v outside tolerance of 0.6", e.RunnerNo, e.Place)
		}
	}
}

func TestDuplicateRunnerRejected(t *testing.T) {
	engine, err := NewEngine(Config{Trials: 1000, Seed: 1}, nil)
	if err != nil {
		t.Fatalf("NewEngine failed: %v", err)
	}
	_, err = engine.Run(context.Background(), []Entrant{
		{RunnerNo: 6, Score: 0.1},
		{RunnerNo: 6, Score: 0.2},
	})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestNonFiniteScoreRejected(t *testing.T) {
	engine, err := NewEngine(Config{Trials: 1000}, nil)
	if err != nil {
		t.Fatalf("NewEngine failed: %v", err)
	}
	_, err = engine.Run(context.Background(), []Entrant{
		{RunnerNo: 1, Score: math.NaN()},
		{RunnerNo: 2, Score: 0},
	})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestConfigRejected(t *testing.T) {
	if _, err := NewEngine(Config{Trials: -1}, nil); !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig for negative trials, got %v", err)
	}
	if _, err := NewEngine(Config{Workers: -2}, nil); !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig for negative workers, got %v", err)
	}
	if _, err := NewEngine(Config{TopK: -1}, nil); !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig for negative top-k, got %v", err)
	}
}

func TestTopKBoundsCombinationLists(t *testing.T) {
	entrants := make([]Entrant, 8)
	for i := range entrants {
		entrants[i] = Entrant{RunnerNo: i + 1, Score: float64(i) * 0.1}
	}
	report := runEngine(t, Config{Trials: 10000, Seed: 9, TopK: 5}, entrants)

	for name, list := range map[string][]Combination{
		"exacta": report.Exacta, "trifecta": report.Trifecta,
		"quinella": report.Quinella, "trio": report.Trio,
	} {
		if len(list) > 5 {
			t.Fatalf("%s list has %d entries, want at most 5", name, len(list))
		}
		for i := 1; i < len(list); i++ {
			if list[i].Probability > list[i-1].Probability {
				t.Fatalf("%s list not sorted by descending probability", name)
			}
		}
	}
}

func TestCustomTransform(t *testing.T) {
	linear := func(scores []float64) []float64 {
		weights := make([]float64, len(scores))
		for i, s := range scores {
			weights[i] = s
		}
		return weights
	}
	report := runEngine(t, Config{Trials: 5000, Seed: 2, Transform: linear}, []Entrant{
		{RunnerNo: 1, Score: 3.0},
		{RunnerNo: 2, Score: 1.0},
	})
	if report.Entrant(1).Win <= report.Entrant(2).Win {
		t.Fatal("custom transform not applied")
	}

	// A transform yielding a non-positive weight is rejected, not zeroed.
	engine, _ := NewEngine(Config{Trials: 100, Transform: linear}, nil)
	_, err := engine.Run(context.Background(), []Entrant{
		{RunnerNo: 1, Score: 1.0},
		{RunnerNo: 2, Score: 0.0},
	})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for zero weight, got %v", err)
	}
}
