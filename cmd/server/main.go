package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/yourusername/keiba-ai/internal/config"
	"github.com/yourusername/keiba-ai/internal/database"
	"github.com/yourusername/keiba-ai/internal/health"
	"github.com/yourusername/keiba-ai/internal/logger"
	"github.com/yourusername/keiba-ai/internal/metrics"
	"github.com/yourusername/keiba-ai/internal/netkeiba"
	"github.com/yourusername/keiba-ai/internal/repository"
	"github.com/yourusername/keiba-ai/internal/scheduler"
	"github.com/yourusername/keiba-ai/internal/scorer"
	"github.com/yourusername/keiba-ai/internal/server"
	"github.com/yourusername/keiba-ai/internal/service"
	"github.com/yourusername/keiba-ai/internal/simulation"
)

// Build information - set via ldflags
var (
	Version   = "dev"
	GitCommit = "unknown"
)

var (
	configFile  string
	awsSecrets  string
	awsRegion   string
	noScheduler bool
)

var rootCmd = &cobra.Command{
	Use:   "server",
	Short: "Run the prediction API server",
	Long: `Serves the prediction API over HTTP, pushes finished reports to
websocket subscribers and runs the scheduled ingestion and prediction jobs.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServer()
	},
}

func init() {
	rootCmd.Flags().StringVarP(&configFile, "config", "c", "./config/config.yaml", "Path to configuration file")
	rootCmd.Flags().StringVar(&awsSecrets, "aws-secrets", "", "AWS Secrets Manager secret name for credential overrides")
	rootCmd.Flags().StringVar(&awsRegion, "aws-region", "ap-northeast-1", "AWS region for Secrets Manager")
	rootCmd.Flags().BoolVar(&noScheduler, "no-scheduler", false, "Disable the cron jobs")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runServer() error {
	cfg, err := config.Load(configFile)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if awsSecrets != "" {
		if err := config.LoadSecretsFromAWS(cfg, awsRegion, awsSecrets); err != nil {
			return fmt.Errorf("failed to load secrets: %w", err)
		}
	}
	if err := config.Validate(cfg); err != nil {
		return err
	}

	log := logger.NewLogger(cfg.App.LogLevel)
	log.WithFields(logrus.Fields{
		"version": Version,
		"commit":  GitCommit,
		"env":     cfg.App.Environment,
	}).Info("Starting keiba-ai server")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
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

	scoreClient := scorer.NewCachedClient(&cfg.Scorer, log)

	simCfg := simulation.Config{
		Trials:  cfg.Simulation.Trials,
		Seed:    cfg.Simulation.Seed,
		Workers: cfg.Simulation.Workers,
		TopK:    cfg.Simulation.TopK,
	}
	engine, err := simulation.NewEngine(simCfg, log)
	if err != nil {
		return err
	}

	hub := server.NewHub(log)
	analyzer := service.NewValueAnalyzer(cfg.Value.EVThreshold, log)
	predictionSvc := service.NewPredictionService(provider, scoreClient, engine, repos, analyzer, hub, log)
	ingestionSvc := service.NewIngestionService(provider, repos, cfg.Ingestion.LookaheadDays, log)

	// Health endpoints on their own port so probes survive API restarts.
	healthSrv := health.NewServer(health.Config{
		ServiceName: cfg.App.Name,
		Version:     Version,
		Commit:      GitCommit,
		Port:        strconv.Itoa(cfg.Server.HealthPort),
		Logger:      log,
		DB:          db,
		Scorer:      scoreClient,
	})
	if err := healthSrv.Start(ctx); err != nil {
		return err
	}

	if cfg.Metrics.Enabled {
		metrics.InitRegistry()
		go func() {
			mux := http.NewServeMux()
			mux.Handle(cfg.Metrics.Path, metrics.Handler())
			addr := fmt.Sprintf(":%d", cfg.Metrics.Port)
			log.WithField("addr", addr).Info("Metrics server starting")
			if err := http.ListenAndServe(addr, mux); err != nil && err != http.ErrServerClosed {
				log.WithError(err).Error("Metrics server error")
			}
		}()
	}

	var sched *scheduler.Scheduler
	if !noScheduler {
		sched = scheduler.NewScheduler(ingestionSvc, predictionSvc, log)
		if err := sched.ScheduleIngestion(cfg.Ingestion.Schedule); err != nil {
			return err
		}
		if err := sched.Start(); err != nil {
			return err
		}
		defer sched.Stop()
	}

	apiSrv := server.NewServer(server.Config{
		Port:      cfg.Server.Port,
		Predictor: predictionSvc,
		Repos:     repos,
		Hub:       hub,
		Logger:    log,
	})

	healthSrv.SetReady(true)
	err = apiSrv.Start(ctx)

	log.Info("Server shut down")
	return err
}
