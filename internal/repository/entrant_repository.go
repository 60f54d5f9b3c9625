package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/yourusername/keiba-ai/internal/database"
	"github.com/yourusername/keiba-ai/internal/models"
)

// PostgresEntrantRepository implements EntrantRepository for PostgreSQL
type PostgresEntrantRepository struct {
	db *database.DB
}

// NewPostgresEntrantRepository creates a new entrant repository
func NewPostgresEntrantRepository(db *database.DB) EntrantRepository {
	return &PostgresEntrantRepository{db: db}
}

// ReplaceForRace swaps the stored card for a race with the freshly fetched
// one inside a single transaction, so a re-fetch never leaves a mixed card.
func (r *PostgresEntrantRepository) ReplaceForRace(ctx context.Context, raceID uuid.UUID, entrants []*models.Entrant) error {
	tx, err := r.db.GetPool().BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM entrants WHERE race_id = $1`, raceID); err != nil {
		return fmt.Errorf("failed to clear entrants: %w", err)
	}

	query := `
		INSERT INTO entrants (id, race_id, runner_no, horse_name, jockey, trainer, weight_kg, win_odds, score)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	for _, e := range entrants {
		if _, err := tx.Exec(ctx, query,
			e.ID, raceID, e.RunnerNo, e.HorseName, e.Jockey, e.Trainer,
			e.WeightKg, e.WinOdds, e.Score,
		); err != nil {
			return fmt.Errorf("failed to insert entrant %d: %w", e.RunnerNo, err)
		}
	}

	return tx.Commit(ctx)
}

// GetByRaceID retrieves all entrants for a race ordered by runner number
func (r *PostgresEntrantRepository) GetByRaceID(ctx context.Context, raceID uuid.UUID) ([]*models.Entrant, error) {
	query := `
		SELECT id, race_id, runner_no, horse_name, jockey, trainer, weight_kg, win_odds, score,
		       created_at, updated_at
		FROM entrants WHERE race_id = $1 ORDER BY runner_no ASC
	`

	rows, err := r.db.GetPool().Query(ctx, query, raceID)
	if err != nil {
		return nil, fmt.Errorf("failed to query entrants: %w", err)
	}
	defer rows.Close()

	var entrants []*models.Entrant
	for rows.Next() {
		e := &models.Entrant{}
		if err := rows.Scan(
			&e.ID, &e.RaceID, &e.RunnerNo, &e.HorseName, &e.Jockey, &e.Trainer,
			&e.WeightKg, &e.WinOdds, &e.Score, &e.CreatedAt, &e.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan entrant: %w", err)
		}
		entrants = append(entrants, e)
	}

	return entrants, rows.Err()
}
