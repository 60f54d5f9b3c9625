package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Entrant represents one horse on a race card.
type Entrant struct {
	ID         uuid.UUID        `db:"id" json:"id" validate:"required,uuid4"`
	RaceID     uuid.UUID        `db:"race_id" json:"race_id" validate:"required,uuid4"`
	RunnerNo   int              `db:"runner_no" json:"runner_no" validate:"required,gt=0,lte=18"`
	HorseName  string           `db:"horse_name" json:"horse_name" validate:"required"`
	Jockey     string           `db:"jockey" json:"jockey"`
	Trainer    string           `db:"trainer" json:"trainer"`
	WeightKg   *float64         `db:"weight_kg" json:"weight_kg"`
	WinOdds    *decimal.Decimal `db:"win_odds" json:"win_odds"`
	Score      *float64         `db:"score" json:"score"`
	CreatedAt  time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time        `db:"updated_at" json:"updated_at"`
}

// GetScore returns the ranker score or 0 if the entrant has not been scored.
func (e *Entrant) GetScore() float64 {
	if e.Score == nil {
		return 0
	}
	return *e.Score
}

// Scored reports whether the ranking model has produced a score for this
// entrant.
func (e *Entrant) Scored() bool {
	return e.Score != nil
}
