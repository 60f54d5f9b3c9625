package simulation

import (
	"context"
	"fmt"
	"math/rand"
	"runtime"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Config controls one simulation run.
type Config struct {
	// Trials is the number of simulated races. Defaults to 30000 when zero.
	Trials int
	// Seed fixes the random stream. When zero a time-derived seed is used;
	// the effective seed is recorded in the report so any run can be
	// reproduced exactly.
	Seed int64
	// Workers is the size of the worker pool. Defaults to GOMAXPROCS when
	// zero; a negative value is rejected.
	Workers int
	// TopK bounds each ranked combination list. Zero keeps every observed
	// combination.
	TopK int
	// Transform converts ranker scores to sampling weights. Defaults to
	// ExpTransform.
	Transform TransformFunc
}

// DefaultConfig returns the config used by the prediction pipeline.
func DefaultConfig() Config {
	return Config{
		Trials: 30000,
		TopK:   10,
	}
}

// Validate checks config parameters that cannot be defaulted away.
func (c Config) Validate() error {
	if c.Trials < 0 {
		return fmt.Errorf("%w: trials must be positive, got %d", ErrInvalidConfig, c.Trials)
	}
	if c.Workers < 0 {
		return fmt.Errorf("%w: workers must be positive, got %d", ErrInvalidConfig, c.Workers)
	}
	if c.TopK < 0 {
		return fmt.Errorf("%w: top-k must not be negative, got %d", ErrInvalidConfig, c.TopK)
	}
	return nil
}

// Engine runs Plackett-Luce outcome simulations. It holds no per-race state;
// all working memory is scoped to a single Run call.
type Engine struct {
	config Config
	logger *logrus.Logger
}

// NewEngine creates a simulation engine with validated configuration.
func NewEngine(cfg Config, logger *logrus.Logger) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Trials == 0 {
		cfg.Trials = DefaultConfig().Trials
	}
	if cfg.Workers == 0 {
		cfg.Workers = runtime.GOMAXPROCS(0)
	}
	if cfg.Transform == nil {
		cfg.Transform = ExpTransform
	}
	if logger == nil {
		logger = logrus.New()
	}
	return &Engine{config: cfg, logger: logger}, nil
}

// Config returns the engine configuration.
func (e *Engine) Config() Config {
	return e.config
}

// Run simulates the race and returns its probability report. Input is
// validated in full before any trial executes; on error no partial results
// are produced.
func (e *Engine) Run(ctx context.Context, entrants []Entrant) (*Report, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := validateEntrants(entrants); err != nil {
		return nil, err
	}

	scores := make([]float64, len(entrants))
	runnerNos := make([]int, len(entrants))
	for i, e := range entrants {
		scores[i] = e.Score
		runnerNos[i] = e.RunnerNo
	}
	weights := e.config.Transform(scores)
	if err := validateWeights(entrants, weights); err != nil {
		return nil, err
	}

	seed := e.config.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	workers := e.config.Workers
	if workers > e.config.Trials {
		workers = e.config.Trials
	}

	start := time.Now()
	tallies := make([]*tally, workers)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		// Contiguous, non-overlapping trial slices per worker.
		lo := w * e.config.Trials / workers
		hi := (w + 1) * e.config.Trials / workers

		wg.Add(1)
		tallies[w] = newTally()
		go func(t *tally, lo, hi int) {
			defer wg.Done()
			runTrials(t, runnerNos, weights, seed, lo, hi)
		}(tallies[w], lo, hi)
	}
	wg.Wait()

	merged := tallies[0]
	for _, t := range tallies[1:] {
		merged.merge(t)
	}

	report := buildReport(merged, entrants, seed, e.config.TopK)
	e.logger.WithFields(logrus.Fields{
		"entrants": len(entrants),
		"trials":   e.config.Trials,
		"workers":  workers,
		"seed":     seed,
		"duration": time.Since(start),
	}).Debug("Simulation run complete")

	return report, nil
}

// runTrials executes trials [lo, hi) against a worker-local sampler and tally.
// Every trial derives its own generator from the top-level seed and the trial
// index, so the merged report is bit-for-bit identical for any worker count.
func runTrials(t *tally, runnerNos []int, weights []float64, seed int64, lo, hi int) {
	s := newSampler(runnerNos, weights)
	order := make([]int, 0, placeDepth)
	for trial := lo; trial < hi; trial++ {
		rng := rand.New(rand.NewSource(trialSeed(seed, trial)))
		order = s.sample(rng, order[:0])
		t.record(order)
	}
}

// trialSeed mixes the run seed with a trial index using the splitmix64
// finalizer so neighboring trials get uncorrelated streams.
func trialSeed(seed int64, trial int) int64 {
	x := uint64(seed) + uint64(trial+1)*0x9e3779b97f4a7c15
	x ^= x >> 30
	x *= 0xbf58476d1ce4e5b9
	x ^= x >> 27
	x *= 0x94d049bb133111eb
	x ^= x >> 31
	return int64(x)
}
