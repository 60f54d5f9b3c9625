package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/yourusername/keiba-ai/internal/database"
	"github.com/yourusername/keiba-ai/internal/models"
)

// PostgresPredictionRepository implements PredictionRepository for PostgreSQL
type PostgresPredictionRepository struct {
	db *database.DB
}

// NewPostgresPredictionRepository creates a new prediction repository
func NewPostgresPredictionRepository(db *database.DB) PredictionRepository {
	return &PostgresPredictionRepository{db: db}
}

// CreateBatch stores one prediction row per entrant for a simulation run
func (r *PostgresPredictionRepository) CreateBatch(ctx context.Context, predictions []*models.Prediction) error {
	query := `
		INSERT INTO predictions (id, race_id, runner_no, model_version, win_prob, place_prob, trials, seed, predicted_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	for _, p := range predictions {
		if _, err := r.db.GetPool().Exec(ctx, query,
			p.ID, p.RaceID, p.RunnerNo, p.ModelVersion, p.WinProb, p.PlaceProb,
			p.Trials, p.Seed, p.PredictedAt,
		); err != nil {
			return fmt.Errorf("failed to insert prediction for runner %d: %w", p.RunnerNo, err)
		}
	}

	return nil
}

// GetByRaceID retrieves stored predictions for a race ordered by win probability
func (r *PostgresPredictionRepository) GetByRaceID(ctx context.Context, raceID uuid.UUID) ([]*models.Prediction, error) {
	query := `
		SELECT id, race_id, runner_no, model_version, win_prob, place_prob, trials, seed, predicted_at
		FROM predictions WHERE race_id = $1 ORDER BY win_prob DESC, runner_no ASC
	`

	rows, err := r.db.GetPool().Query(ctx, query, raceID)
	if err != nil {
		return nil, fmt.Errorf("failed to query predictions: %w", err)
	}
	defer rows.Close()

	var predictions []*models.Prediction
	for rows.Next() {
		p := &models.Prediction{}
		if err := rows.Scan(
			&p.ID, &p.RaceID, &p.RunnerNo, &p.ModelVersion, &p.WinProb, &p.PlaceProb,
			&p.Trials, &p.Seed, &p.PredictedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan prediction: %w", err)
		}
		predictions = append(predictions, p)
	}

	return predictions, rows.Err()
}
