package repository

import (
	"fmt"

	"github.com/yourusername/keiba-ai/internal/database"
)

// Repositories holds all repository implementations
type Repositories struct {
	Race       RaceRepository
	Entrant    EntrantRepository
	Prediction PredictionRepository
}

// NewRepositories creates and returns all repository implementations
func NewRepositories(db *database.DB) (*Repositories, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is required")
	}

	return &Repositories{
		Race:       NewPostgresRaceRepository(db),
		Entrant:    NewPostgresEntrantRepository(db),
		Prediction: NewPostgresPredictionRepository(db),
	}, nil
}
