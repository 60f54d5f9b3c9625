package simulation

import (
	"math"
	"sort"
)

// EntrantResult holds the simulated marginal probabilities for one runner.
type EntrantResult struct {
	RunnerNo    int     `json:"runner_no"`
	Win         float64 `json:"win"`
	WinStdErr   float64 `json:"win_std_err"`
	Place       float64 `json:"place"`
	PlaceStdErr float64 `json:"place_std_err"`
}

// Combination is one ranked finish combination (exacta, trifecta, quinella or
// trio) with its occurrence count across all trials.
type Combination struct {
	RunnerNos   []int   `json:"runner_nos"`
	Count       int     `json:"count"`
	Probability float64 `json:"probability"`
	StdErr      float64 `json:"std_err"`
}

// Report is the full probability table produced by one simulation run.
// Combination lists are ranked by descending probability, ties broken by
// ascending runner numbers; combinations never observed are omitted.
type Report struct {
	Trials   int             `json:"trials"`
	Seed     int64           `json:"seed"`
	Entrants []EntrantResult `json:"entrants"`
	Exacta   []Combination   `json:"exacta"`
	Trifecta []Combination   `json:"trifecta"`
	Quinella []Combination   `json:"quinella"`
	Trio     []Combination   `json:"trio"`
}

// Entrant returns the result row for the given runner number, or nil.
func (r *Report) Entrant(runnerNo int) *EntrantResult {
	for i := range r.Entrants {
		if r.Entrants[i].RunnerNo == runnerNo {
			return &r.Entrants[i]
		}
	}
	return nil
}

// stdErr is the Monte Carlo standard error of an estimated probability.
func stdErr(p float64, trials int) float64 {
	return math.Sqrt(p * (1 - p) / float64(trials))
}

// buildReport normalizes a merged tally into the final probability report.
func buildReport(t *tally, entrants []Entrant, seed int64, topK int) *Report {
	n := float64(t.trials)

	results := make([]EntrantResult, 0, len(entrants))
	for _, e := range entrants {
		win := float64(t.win[e.RunnerNo]) / n
		place := float64(t.place[e.RunnerNo]) / n
		results = append(results, EntrantResult{
			RunnerNo:    e.RunnerNo,
			Win:         win,
			WinStdErr:   stdErr(win, t.trials),
			Place:       place,
			PlaceStdErr: stdErr(place, t.trials),
		})
	}
	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Win != results[j].Win {
			return results[i].Win > results[j].Win
		}
		return results[i].RunnerNo < results[j].RunnerNo
	})

	return &Report{
		Trials:   t.trials,
		Seed:     seed,
		Entrants: results,
		Exacta:   rankPairs(t.exacta, t.trials, topK),
		Trifecta: rankTriples(t.trifecta, t.trials, topK),
		Quinella: rankPairs(t.quinella, t.trials, topK),
		Trio:     rankTriples(t.trio, t.trials, topK),
	}
}

func rankPairs(counts map[[2]int]int, trials, topK int) []Combination {
	combos := make([]Combination, 0, len(counts))
	for key, count := range counts {
		p := float64(count) / float64(trials)
		combos = append(combos, Combination{
			RunnerNos:   []int{key[0], key[1]},
			Count:       count,
			Probability: p,
			StdErr:      stdErr(p, trials),
		})
	}
	return rankCombinations(combos, topK)
}

func rankTriples(counts map[[3]int]int, trials, topK int) []Combination {
	combos := make([]Combination, 0, len(counts))
	for key, count := range counts {
		p := float64(count) / float64(trials)
		combos = append(combos, Combination{
			RunnerNos:   []int{key[0], key[1], key[2]},
			Count:       count,
			Probability: p,
			StdErr:      stdErr(p, trials),
		})
	}
	return rankCombinations(combos, topK)
}

// rankCombinations sorts by descending probability with a deterministic
// ascending-key tie-break, then applies the top-K cutoff (topK <= 0 keeps
// everything).
func rankCombinations(combos []Combination, topK int) []Combination {
	sort.Slice(combos, func(i, j int) bool {
		if combos[i].Count != combos[j].Count {
			return combos[i].Count > combos[j].Count
		}
		return lessKey(combos[i].RunnerNos, combos[j].RunnerNos)
	})
	if topK > 0 && len(combos) > topK {
		combos = combos[:topK]
	}
	return combos
}

func lessKey(a, b []int) bool {
	for i := range a {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return false
}
