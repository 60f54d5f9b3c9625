package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/keiba-ai/internal/metrics"
	"github.com/yourusername/keiba-ai/internal/models"
	"github.com/yourusername/keiba-ai/internal/netkeiba"
	"github.com/yourusername/keiba-ai/internal/repository"
	"github.com/yourusername/keiba-ai/internal/scorer"
	"github.com/yourusername/keiba-ai/internal/simulation"
)

// RaceDataProvider fetches race cards and odds from the data provider
type RaceDataProvider interface {
	FetchRaceCard(ctx context.Context, raceID string) (*netkeiba.RaceCard, error)
	FetchOdds(ctx context.Context, raceID string) (*netkeiba.OddsTables, error)
}

// ScoreClient produces per-entrant strength scores
type ScoreClient interface {
	ScoreRace(ctx context.Context, req scorer.ScoreRequest) (*scorer.ScoreResponse, error)
	ModelVersion() string
}

// ReportBroadcaster pushes finished reports to live subscribers
type ReportBroadcaster interface {
	BroadcastReport(report *RaceReport)
}

// RaceReport bundles everything one prediction run produced for a race
type RaceReport struct {
	Race         *models.Race       `json:"race"`
	ModelVersion string             `json:"model_version"`
	Report       *simulation.Report `json:"report"`
	ValueBets    []models.ValueBet  `json:"value_bets"`
	GeneratedAt  time.Time          `json:"generated_at"`
}

// PredictionService runs the full prediction workflow for a race
type PredictionService struct {
	provider    RaceDataProvider
	scorer      ScoreClient
	engine      *simulation.Engine
	repos       *repository.Repositories
	analyzer    *ValueAnalyzer
	broadcaster ReportBroadcaster
	logger      *logrus.Logger
}

// NewPredictionService creates a new prediction service. The repositories and
// broadcaster are optional; without them results are returned but not
// persisted or pushed.
func NewPredictionService(
	provider RaceDataProvider,
	scoreClient ScoreClient,
	engine *simulation.Engine,
	repos *repository.Repositories,
	analyzer *ValueAnalyzer,
	broadcaster ReportBroadcaster,
	logger *logrus.Logger,
) *PredictionService {
	return &PredictionService{
		provider:    provider,
		scorer:      scoreClient,
		engine:      engine,
		repos:       repos,
		analyzer:    analyzer,
		broadcaster: broadcaster,
		logger:      logger,
	}
}

// PredictRace fetches, scores and simulates one race. It accepts either a
// bare 12-digit race ID or a provider URL containing one.
func (s *PredictionService) PredictRace(ctx context.Context, raceIDOrURL string) (*RaceReport, error) {
	raceID, err := netkeiba.ExtractRaceID(raceIDOrURL)
	if err != nil {
		return nil, err
	}

	log := s.logger.WithField("netkeiba_id", raceID)
	start := time.Now()

	card, err := s.provider.FetchRaceCard(ctx, raceID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch race card: %w", err)
	}
	metrics.RecordRaceCardFetched()

	race := normalizeCard(card)

	scores, err := s.scoreCard(ctx, card)
	if err != nil {
		return nil, err
	}
	applyScores(race, scores)

	entrants := make([]simulation.Entrant, len(race.Entrants))
	for i, e := range race.Entrants {
		entrants[i] = simulation.Entrant{RunnerNo: e.RunnerNo, Score: e.GetScore()}
	}

	simStart := time.Now()
	report, err := s.engine.Run(ctx, entrants)
	if err != nil {
		return nil, fmt.Errorf("simulation failed: %w", err)
	}
	metrics.RecordSimulation(report.Trials, time.Since(simStart).Seconds())

	var valueBets []models.ValueBet
	if s.analyzer != nil {
		odds, err := s.provider.FetchOdds(ctx, raceID)
		if err != nil {
			// odds are best-effort; the probability report is still useful
			log.WithError(err).Warn("Failed to fetch odds, skipping value analysis")
		} else {
			valueBets = s.analyzer.BuildValueBets(report, odds)
		}
	}

	result := &RaceReport{
		Race:         race,
		ModelVersion: s.scorer.ModelVersion(),
		Report:       report,
		ValueBets:    valueBets,
		GeneratedAt:  time.Now().UTC(),
	}

	if s.repos != nil {
		if err := s.persist(ctx, result); err != nil {
			return nil, err
		}
	}

	if s.broadcaster != nil {
		s.broadcaster.BroadcastReport(result)
	}

	log.WithFields(logrus.Fields{
		"entrants":   len(race.Entrants),
		"trials":     report.Trials,
		"value_bets": len(valueBets),
		"duration":   time.Since(start),
	}).Info("Race prediction complete")

	return result, nil
}

// PredictUpcoming runs predictions for every scheduled race in the store
func (s *PredictionService) PredictUpcoming(ctx context.Context, limit int) ([]*RaceReport, error) {
	if s.repos == nil {
		return nil, fmt.Errorf("prediction service has no repositories configured")
	}

	races, err := s.repos.Race.GetUpcoming(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list upcoming races: %w", err)
	}

	reports := make([]*RaceReport, 0, len(races))
	for _, race := range races {
		report, err := s.PredictRace(ctx, race.NetkeibaID)
		if err != nil {
			s.logger.WithError(err).WithField("netkeiba_id", race.NetkeibaID).Error("Prediction failed")
			continue
		}
		reports = append(reports, report)
	}

	return reports, nil
}

// scoreCard requests strength scores for every entrant on the card
func (s *PredictionService) scoreCard(ctx context.Context, card *netkeiba.RaceCard) (map[int]float64, error) {
	req := scorer.ScoreRequest{
		RaceID:  card.RaceID,
		Entries: make([]scorer.ScoreFeature, len(card.Entries)),
	}
	for i, e := range card.Entries {
		req.Entries[i] = scorer.ScoreFeature{
			RunnerNo:  e.RunnerNo,
			HorseName: e.HorseName,
			Jockey:    e.Jockey,
			Trainer:   e.Trainer,
			WeightKg:  e.WeightKg,
		}
	}

	resp, err := s.scorer.ScoreRace(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to score race: %w", err)
	}

	scores := make(map[int]float64, len(resp.Scores))
	for _, sc := range resp.Scores {
		scores[sc.RunnerNo] = sc.Score
	}
	return scores, nil
}

// persist stores the race, its entrants and the per-entrant marginals
func (s *PredictionService) persist(ctx context.Context, result *RaceReport) error {
	race := result.Race

	if err := s.repos.Race.Upsert(ctx, race); err != nil {
		return err
	}

	// The upsert keeps the existing row's ID on conflict, so read it back.
	stored, err := s.repos.Race.GetByNetkeibaID(ctx, race.NetkeibaID)
	if err != nil {
		return fmt.Errorf("failed to reload race: %w", err)
	}
	race.ID = stored.ID
	for _, e := range race.Entrants {
		e.RaceID = race.ID
	}

	if err := s.repos.Entrant.ReplaceForRace(ctx, race.ID, race.Entrants); err != nil {
		return err
	}

	predictions := make([]*models.Prediction, 0, len(result.Report.Entrants))
	for _, er := range result.Report.Entrants {
		predictions = append(predictions, &models.Prediction{
			ID:           uuid.New(),
			RaceID:       race.ID,
			RunnerNo:     er.RunnerNo,
			ModelVersion: result.ModelVersion,
			WinProb:      er.Win,
			PlaceProb:    er.Place,
			Trials:       result.Report.Trials,
			Seed:         result.Report.Seed,
			PredictedAt:  result.GeneratedAt,
		})
	}
	if err := s.repos.Prediction.CreateBatch(ctx, predictions); err != nil {
		return err
	}

	if err := s.repos.Race.UpdateStatus(ctx, race.ID, models.RaceStatusPredicted); err != nil {
		return err
	}
	race.Status = models.RaceStatusPredicted

	return nil
}

// normalizeCard converts a provider race card into the internal race model
func normalizeCard(card *netkeiba.RaceCard) *models.Race {
	now := time.Now().UTC()
	race := &models.Race{
		ID:             uuid.New(),
		NetkeibaID:     card.RaceID,
		Track:          card.Track,
		RaceNumber:     card.RaceNumber,
		CourseType:     card.CourseType,
		Distance:       card.Distance,
		ScheduledStart: card.ScheduledStart,
		Status:         models.RaceStatusScheduled,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	race.Entrants = make([]*models.Entrant, len(card.Entries))
	for i, e := range card.Entries {
		race.Entrants[i] = &models.Entrant{
			ID:        uuid.New(),
			RaceID:    race.ID,
			RunnerNo:  e.RunnerNo,
			HorseName: e.HorseName,
			Jockey:    e.Jockey,
			Trainer:   e.Trainer,
			WeightKg:  e.WeightKg,
			WinOdds:   e.WinOdds,
			CreatedAt: now,
			UpdatedAt: now,
		}
	}

	return race
}

// applyScores attaches model scores to the race entrants
func applyScores(race *models.Race, scores map[int]float64) {
	for _, e := range race.Entrants {
		if score, ok := scores[e.RunnerNo]; ok {
			s := score
			e.Score = &s
		}
	}
}
