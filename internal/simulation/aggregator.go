package simulation

import "fmt"

// tally accumulates outcome counts for a slice of trials. Each worker owns its
// own tally during simulation; partial tallies are merged once all workers
// finish, so no locking is needed.
type tally struct {
	trials   int
	win      map[int]int
	place    map[int]int
	exacta   map[[2]int]int
	trifecta map[[3]int]int
	quinella map[[2]int]int
	trio     map[[3]int]int
}

func newTally() *tally {
	return &tally{
		win:      make(map[int]int),
		place:    make(map[int]int),
		exacta:   make(map[[2]int]int),
		trifecta: make(map[[3]int]int),
		quinella: make(map[[2]int]int),
		trio:     make(map[[3]int]int),
	}
}

// record tallies one trial outcome: the ordered runner numbers of the first
// one to three finishers. A malformed outcome is a programming error in the
// sampler, not bad caller input, and aborts the run rather than corrupting
// the report.
func (t *tally) record(order []int) {
	if len(order) == 0 || len(order) > placeDepth {
		panic(fmt.Sprintf("simulation: trial outcome has depth %d", len(order)))
	}
	for i := 1; i < len(order); i++ {
		for j := 0; j < i; j++ {
			if order[i] == order[j] {
				panic(fmt.Sprintf("simulation: runner %d finished twice in one trial", order[i]))
			}
		}
	}

	t.trials++
	t.win[order[0]]++
	for _, no := range order {
		t.place[no]++
	}

	if len(order) >= 2 {
		t.exacta[[2]int{order[0], order[1]}]++
		t.quinella[sortPair(order[0], order[1])]++
	}
	if len(order) == 3 {
		t.trifecta[[3]int{order[0], order[1], order[2]}]++
		t.trio[sortTriple(order[0], order[1], order[2])]++
	}
}

// merge folds another worker's partial tally into this one.
func (t *tally) merge(other *tally) {
	t.trials += other.trials
	for k, v := range other.win {
		t.win[k] += v
	}
	for k, v := range other.place {
		t.place[k] += v
	}
	for k, v := range other.exacta {
		t.exacta[k] += v
	}
	for k, v := range other.trifecta {
		t.trifecta[k] += v
	}
	for k, v := range other.quinella {
		t.quinella[k] += v
	}
	for k, v := range other.trio {
		t.trio[k] += v
	}
}

func sortPair(a, b int) [2]int {
	if a > b {
		a, b = b, a
	}
	return [2]int{a, b}
}

func sortTriple(a, b, c int) [3]int {
	if a > b {
		a, b = b, a
	}
	if b > c {
		b, c = c, b
	}
	if a > b {
		a, b = b, a
	}
	return [3]int{a, b, c}
}
