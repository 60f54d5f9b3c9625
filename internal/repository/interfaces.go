// Package repository provides PostgreSQL persistence for races, entrants and
// predictions.
package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/yourusername/keiba-ai/internal/models"
)

// RaceRepository defines data access for races
type RaceRepository interface {
	Upsert(ctx context.Context, race *models.Race) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Race, error)
	GetByNetkeibaID(ctx context.Context, netkeibaID string) (*models.Race, error)
	GetUpcoming(ctx context.Context, limit int) ([]*models.Race, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error
}

// EntrantRepository defines data access for race entrants
type EntrantRepository interface {
	ReplaceForRace(ctx context.Context, raceID uuid.UUID, entrants []*models.Entrant) error
	GetByRaceID(ctx context.Context, raceID uuid.UUID) ([]*models.Entrant, error)
}

// PredictionRepository defines data access for stored predictions
type PredictionRepository interface {
	CreateBatch(ctx context.Context, predictions []*models.Prediction) error
	GetByRaceID(ctx context.Context, raceID uuid.UUID) ([]*models.Prediction, error)
}
