package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/yourusername/keiba-ai/internal/config"
	"github.com/yourusername/keiba-ai/internal/database"
	"github.com/yourusername/keiba-ai/internal/logger"
	"github.com/yourusername/keiba-ai/internal/models"
	"github.com/yourusername/keiba-ai/internal/netkeiba"
	"github.com/yourusername/keiba-ai/internal/repository"
	"github.com/yourusername/keiba-ai/internal/scorer"
	"github.com/yourusername/keiba-ai/internal/service"
	"github.com/yourusername/keiba-ai/internal/simulation"
)

// Build information - set via ldflags
var (
	Version   = "dev"
	GitCommit = "unknown"
)

var (
	configFile string
	trials     int
	seed       int64
	topK       int
	asJSON     bool
	save       bool
)

var rootCmd = &cobra.Command{
	Use:   "predict <race-url-or-id>",
	Short: "Simulate one race and print its probability report",
	Long: `Fetches a race card, scores the field with the ranking model and runs a
Monte Carlo simulation of the finish order. Accepts a bare 12-digit netkeiba
race ID or any netkeiba URL containing one.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPredict(cmd.Context(), args[0])
	},
}

func init() {
	rootCmd.Flags().StringVarP(&configFile, "config", "c", "./config/config.yaml", "Path to configuration file")
	rootCmd.Flags().IntVar(&trials, "trials", 0, "Override the number of simulation trials")
	rootCmd.Flags().Int64Var(&seed, "seed", 0, "Random seed (0 picks one from the clock)")
	rootCmd.Flags().IntVar(&topK, "top-k", 0, "Override how many combinations to report per bet type")
	rootCmd.Flags().BoolVar(&asJSON, "json", false, "Print the full report as JSON")
	rootCmd.Flags().BoolVar(&save, "save", false, "Persist the race and prediction to the database")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runPredict(ctx context.Context, raceIDOrURL string) error {
	cfg, err := config.LoadWithDefaults(configFile)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	log := logger.NewLogger(cfg.App.LogLevel)
	if asJSON {
		// Keep stdout clean for the JSON report.
		log.SetOutput(os.Stderr)
	}

	svc, cleanup, err := buildService(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer cleanup()

	result, err := svc.PredictRace(ctx, raceIDOrURL)
	if err != nil {
		return err
	}

	if asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}

	printReport(result)
	return nil
}

func buildService(ctx context.Context, cfg *config.Config, log *logrus.Logger) (*service.PredictionService, func(), error) {
	httpCfg := netkeiba.DefaultHTTPClientConfig()
	httpCfg.RateLimit = cfg.Netkeiba.RateLimitPerSecond
	httpCfg.MaxRetries = cfg.Netkeiba.MaxRetries
	provider := netkeiba.NewClient(
		netkeiba.NewRateLimitedHTTPClient(httpCfg, nil),
		cfg.Netkeiba.BaseURL, cfg.Netkeiba.APIKey, nil,
	)

	scoreClient := scorer.NewCachedClient(&cfg.Scorer, log)

	simCfg := simulation.DefaultConfig()
	simCfg.Trials = cfg.Simulation.Trials
	simCfg.Seed = cfg.Simulation.Seed
	simCfg.Workers = cfg.Simulation.Workers
	simCfg.TopK = cfg.Simulation.TopK
	if trials > 0 {
		simCfg.Trials = trials
	}
	if seed != 0 {
		simCfg.Seed = seed
	}
	if topK > 0 {
		simCfg.TopK = topK
	}

	engine, err := simulation.NewEngine(simCfg, log)
	if err != nil {
		return nil, nil, err
	}

	analyzer := service.NewValueAnalyzer(cfg.Value.EVThreshold, log)

	cleanup := func() {}
	var repos *repository.Repositories
	if save {
		db, err := database.NewDB(ctx, &cfg.Database)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		cleanup = db.Close
		repos, err = repository.NewRepositories(db)
		if err != nil {
			db.Close()
			return nil, nil, err
		}
	}

	return service.NewPredictionService(provider, scoreClient, engine, repos, analyzer, nil, log), cleanup, nil
}

func printReport(result *service.RaceReport) {
	race := result.Race
	fmt.Printf("%s %dR (%s %dm) — %s\n", race.Track, race.RaceNumber, race.CourseType, race.Distance,
		race.ScheduledStart.Format("2006-01-02 15:04"))
	fmt.Printf("model %s, %d trials, seed %d\n\n", result.ModelVersion, result.Report.Trials, result.Report.Seed)

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "No\tHorse\tScore\tWin\tPlace")
	for _, er := range result.Report.Entrants {
		name, score := "", 0.0
		for _, e := range race.Entrants {
			if e.RunnerNo == er.RunnerNo {
				name, score = e.HorseName, e.GetScore()
				break
			}
		}
		fmt.Fprintf(w, "%d\t%s\t%.3f\t%.1f%%\t%.1f%%\n", er.RunnerNo, name, score, er.Win*100, er.Place*100)
	}
	w.Flush()

	printCombinations("Exacta", result.Report.Exacta)
	printCombinations("Quinella", result.Report.Quinella)
	printCombinations("Trifecta", result.Report.Trifecta)
	printCombinations("Trio", result.Report.Trio)

	if len(result.ValueBets) > 0 {
		fmt.Println("\nValue bets:")
		for _, bet := range result.ValueBets {
			fmt.Printf("  %-8s %-10s p=%.3f odds=%s EV=%s\n",
				bet.BetType, bet.Key, bet.Probability, bet.Odds.StringFixed(1), bet.ExpectedValue.StringFixed(2))
		}
	}
}

func printCombinations(label string, combos []simulation.Combination) {
	if len(combos) == 0 {
		return
	}
	fmt.Printf("\n%s:\n", label)
	for _, c := range combos {
		fmt.Printf("  %-10s %.2f%%\n", models.CombinationKey(c.RunnerNos), c.Probability*100)
	}
}
