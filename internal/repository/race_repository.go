package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/yourusername/keiba-ai/internal/database"
	"github.com/yourusername/keiba-ai/internal/models"
)

const raceColumns = `id, netkeiba_id, track, race_number, course_type, distance,
       scheduled_start, status, created_at, updated_at`

// PostgresRaceRepository implements RaceRepository for PostgreSQL
type PostgresRaceRepository struct {
	db *database.DB
}

// NewPostgresRaceRepository creates a new race repository
func NewPostgresRaceRepository(db *database.DB) RaceRepository {
	return &PostgresRaceRepository{db: db}
}

// Upsert inserts a race or refreshes it when the provider ID already exists
func (r *PostgresRaceRepository) Upsert(ctx context.Context, race *models.Race) error {
	query := `
		INSERT INTO races (id, netkeiba_id, track, race_number, course_type, distance, scheduled_start, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (netkeiba_id) DO UPDATE SET
			track = EXCLUDED.track,
			race_number = EXCLUDED.race_number,
			course_type = EXCLUDED.course_type,
			distance = EXCLUDED.distance,
			scheduled_start = EXCLUDED.scheduled_start,
			updated_at = NOW()
	`

	_, err := r.db.GetPool().Exec(ctx, query,
		race.ID, race.NetkeibaID, race.Track, race.RaceNumber, race.CourseType,
		race.Distance, race.ScheduledStart, race.Status,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert race: %w", err)
	}

	return nil
}

// GetByID retrieves a race by ID
func (r *PostgresRaceRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Race, error) {
	query := fmt.Sprintf(`SELECT %s FROM races WHERE id = $1`, raceColumns)

	race := &models.Race{}
	err := r.db.GetPool().QueryRow(ctx, query, id).Scan(
		&race.ID, &race.NetkeibaID, &race.Track, &race.RaceNumber, &race.CourseType,
		&race.Distance, &race.ScheduledStart, &race.Status, &race.CreatedAt, &race.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get race: %w", err)
	}

	return race, nil
}

// GetByNetkeibaID retrieves a race by the provider's 12-digit identifier
func (r *PostgresRaceRepository) GetByNetkeibaID(ctx context.Context, netkeibaID string) (*models.Race, error) {
	query := fmt.Sprintf(`SELECT %s FROM races WHERE netkeiba_id = $1`, raceColumns)

	race := &models.Race{}
	err := r.db.GetPool().QueryRow(ctx, query, netkeibaID).Scan(
		&race.ID, &race.NetkeibaID, &race.Track, &race.RaceNumber, &race.CourseType,
		&race.Distance, &race.ScheduledStart, &race.Status, &race.CreatedAt, &race.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get race: %w", err)
	}

	return race, nil
}

// GetUpcoming retrieves upcoming races ordered by scheduled start time
func (r *PostgresRaceRepository) GetUpcoming(ctx context.Context, limit int) ([]*models.Race, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM races
		WHERE status = 'scheduled' AND scheduled_start > NOW()
		ORDER BY scheduled_start ASC
		LIMIT $1
	`, raceColumns)

	rows, err := r.db.GetPool().Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query upcoming races: %w", err)
	}
	defer rows.Close()

	var races []*models.Race
	for rows.Next() {
		race := &models.Race{}
		if err := rows.Scan(
			&race.ID, &race.NetkeibaID, &race.Track, &race.RaceNumber, &race.CourseType,
			&race.Distance, &race.ScheduledStart, &race.Status, &race.CreatedAt, &race.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan race: %w", err)
		}
		races = append(races, race)
	}

	return races, rows.Err()
}

// UpdateStatus transitions a race's lifecycle status
func (r *PostgresRaceRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	tag, err := r.db.GetPool().Exec(ctx,
		`UPDATE races SET status = $2, updated_at = NOW() WHERE id = $1`, id, status)
	if err != nil {
		return fmt.Errorf("failed to update race status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}
