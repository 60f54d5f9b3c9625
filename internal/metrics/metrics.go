// Package metrics provides the centralized Prometheus registry for the
// prediction service.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Global registry instance
var (
	registry *prometheus.Registry
	once     sync.Once
)

// Counter metrics
var (
	SimulationsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "keiba_ai",
		Name:      "simulations_total",
		Help:      "Total number of race simulations executed",
	})
	SimulationTrialsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "keiba_ai",
		Name:      "simulation_trials_total",
		Help:      "Total number of Monte Carlo trials executed",
	})
	RaceCardsFetchedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "keiba_ai",
		Name:      "race_cards_fetched_total",
		Help:      "Total number of race cards fetched from the provider",
	})
	ValueBetsFoundTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "keiba_ai",
		Name:      "value_bets_found_total",
		Help:      "Total number of combinations clearing the EV threshold",
	})
	ScorerErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "keiba_ai",
		Name:      "scorer_errors_total",
		Help:      "Total number of ranking-model client errors",
	}, []string{"operation", "reason"})
)

// Gauge metrics
var (
	ScorerCacheHitRate = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "keiba_ai",
		Name:      "scorer_cache_hit_rate",
		Help:      "Hit rate of the ranking-model score cache",
	})
	WebsocketSubscribers = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "keiba_ai",
		Name:      "websocket_subscribers",
		Help:      "Number of connected report subscribers",
	})
)

// Histogram metrics
var (
	SimulationDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "keiba_ai",
		Name:      "simulation_duration_seconds",
		Help:      "Duration of one race simulation in seconds",
		Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10},
	})
	ScorerLatency = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "keiba_ai",
		Name:      "scorer_latency_seconds",
		Help:      "Latency of ranking-model score requests in seconds",
		Buckets:   prometheus.DefBuckets,
	}, []string{"source"})
)

// InitRegistry initializes the global Prometheus registry.
func InitRegistry() *prometheus.Registry {
	once.Do(func() {
		registry = prometheus.NewRegistry()

		registry.MustRegister(SimulationsTotal)
		registry.MustRegister(SimulationTrialsTotal)
		registry.MustRegister(RaceCardsFetchedTotal)
		registry.MustRegister(ValueBetsFoundTotal)
		registry.MustRegister(ScorerErrorsTotal)

		registry.MustRegister(ScorerCacheHitRate)
		registry.MustRegister(WebsocketSubscribers)

		registry.MustRegister(SimulationDuration)
		registry.MustRegister(ScorerLatency)
	})
	return registry
}

// GetRegistry returns the global Prometheus registry.
func GetRegistry() *prometheus.Registry {
	if registry == nil {
		return InitRegistry()
	}
	return registry
}

// Handler returns the Prometheus HTTP handler.
func Handler() http.Handler {
	return promhttp.HandlerFor(GetRegistry(), promhttp.HandlerOpts{})
}

// RecordSimulation records one completed simulation run.
func RecordSimulation(trials int, durationSeconds float64) {
	SimulationsTotal.Inc()
	SimulationTrialsTotal.Add(float64(trials))
	SimulationDuration.Observe(durationSeconds)
}

// RecordRaceCardFetched records a successful card fetch.
func RecordRaceCardFetched() {
	RaceCardsFetchedTotal.Inc()
}

// RecordValueBets records combinations that cleared the EV threshold.
func RecordValueBets(count int) {
	ValueBetsFoundTotal.Add(float64(count))
}
