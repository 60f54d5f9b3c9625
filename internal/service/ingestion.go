package service

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/keiba-ai/internal/metrics"
	"github.com/yourusername/keiba-ai/internal/netkeiba"
	"github.com/yourusername/keiba-ai/internal/repository"
)

// UpcomingFetcher lists race cards scheduled within a date range
type UpcomingFetcher interface {
	FetchUpcoming(ctx context.Context, from, to time.Time) ([]netkeiba.RaceCard, error)
}

// IngestionStats summarizes one ingestion run
type IngestionStats struct {
	RacesFetched int
	RacesStored  int
	Entrants     int
	Errors       int
	Duration     time.Duration
}

// IngestionService pulls upcoming race cards from the provider into the store
type IngestionService struct {
	fetcher       UpcomingFetcher
	repos         *repository.Repositories
	lookaheadDays int
	logger        *logrus.Logger
}

// NewIngestionService creates a new ingestion service
func NewIngestionService(fetcher UpcomingFetcher, repos *repository.Repositories, lookaheadDays int, logger *logrus.Logger) *IngestionService {
	if lookaheadDays <= 0 {
		lookaheadDays = 7
	}
	return &IngestionService{
		fetcher:       fetcher,
		repos:         repos,
		lookaheadDays: lookaheadDays,
		logger:        logger,
	}
}

// IngestUpcoming fetches and stores every race card in the lookahead window.
// Failures on individual races are counted and skipped so one bad card does
// not abort the run.
func (s *IngestionService) IngestUpcoming(ctx context.Context) (*IngestionStats, error) {
	start := time.Now()
	from := time.Now()
	to := from.AddDate(0, 0, s.lookaheadDays)

	s.logger.WithFields(logrus.Fields{
		"from": from.Format("2006-01-02"),
		"to":   to.Format("2006-01-02"),
	}).Info("Starting race card ingestion")

	cards, err := s.fetcher.FetchUpcoming(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch upcoming races: %w", err)
	}

	stats := &IngestionStats{RacesFetched: len(cards)}

	for i := range cards {
		if err := s.storeCard(ctx, &cards[i]); err != nil {
			stats.Errors++
			s.logger.WithError(err).WithField("netkeiba_id", cards[i].RaceID).Error("Failed to store race card")
			continue
		}
		stats.RacesStored++
		stats.Entrants += len(cards[i].Entries)
		metrics.RecordRaceCardFetched()
	}

	stats.Duration = time.Since(start)
	s.logger.WithFields(logrus.Fields{
		"fetched":  stats.RacesFetched,
		"stored":   stats.RacesStored,
		"entrants": stats.Entrants,
		"errors":   stats.Errors,
		"duration": stats.Duration,
	}).Info("Race card ingestion complete")

	return stats, nil
}

// storeCard upserts one race card and its entrants
func (s *IngestionService) storeCard(ctx context.Context, card *netkeiba.RaceCard) error {
	race := normalizeCard(card)

	if err := s.repos.Race.Upsert(ctx, race); err != nil {
		return err
	}

	stored, err := s.repos.Race.GetByNetkeibaID(ctx, race.NetkeibaID)
	if err != nil {
		return fmt.Errorf("failed to reload race: %w", err)
	}
	for _, e := range race.Entrants {
		e.RaceID = stored.ID
	}

	return s.repos.Entrant.ReplaceForRace(ctx, stored.ID, race.Entrants)
}
