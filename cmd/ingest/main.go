package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/yourusername/keiba-ai/internal/config"
	"github.com/yourusername/keiba-ai/internal/database"
	"github.com/yourusername/keiba-ai/internal/logger"
	"github.com/yourusername/keiba-ai/internal/netkeiba"
	"github.com/yourusername/keiba-ai/internal/repository"
	"github.com/yourusername/keiba-ai/internal/scheduler"
	"github.com/yourusername/keiba-ai/internal/service"
)

var (
	configFile string
	daemon     bool
)

var rootCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Fetch upcoming race cards into the store",
	Long: `Fetches every race card in the configured lookahead window and stores
it. With --daemon the fetch runs on the configured cron schedule instead of
once.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runIngest(cmd.Context())
	},
}

func init() {
	rootCmd.Flags().StringVarP(&configFile, "config", "c", "./config/config.yaml", "Path to configuration file")
	rootCmd.Flags().BoolVar(&daemon, "daemon", false, "Keep running on the configured schedule")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runIngest(parent context.Context) error {
	cfg, err := config.LoadWithDefaults(configFile)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	log := logger.NewLogger(cfg.App.LogLevel)

	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.NewDB(ctx, &cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	repos, err := repository.NewRepositories(db)
	if err != nil {
		return err
	}

	httpCfg := netkeiba.DefaultHTTPClientConfig()
	httpCfg.RateLimit = cfg.Netkeiba.RateLimitPerSecond
	httpCfg.MaxRetries = cfg.Netkeiba.MaxRetries
	httpCfg.Timeout = time.Duration(cfg.Netkeiba.TimeoutSeconds) * time.Second
	provider := netkeiba.NewClient(
		netkeiba.NewRateLimitedHTTPClient(httpCfg, nil),
		cfg.Netkeiba.BaseURL, cfg.Netkeiba.APIKey, nil,
	)

	ingestionSvc := service.NewIngestionService(provider, repos, cfg.Ingestion.LookaheadDays, log)

	if !daemon {
		stats, err := ingestionSvc.IngestUpcoming(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("Stored %d/%d races (%d entrants, %d errors) in %v\n",
			stats.RacesStored, stats.RacesFetched, stats.Entrants, stats.Errors, stats.Duration)
		return nil
	}

	sched := scheduler.NewScheduler(ingestionSvc, nil, log)
	if err := sched.ScheduleIngestion(cfg.Ingestion.Schedule); err != nil {
		return err
	}
	if err := sched.Start(); err != nil {
		return err
	}

	log.WithField("next_run", sched.NextRun()).Info("Ingestion daemon running")
	<-ctx.Done()
	return sched.Stop()
}
