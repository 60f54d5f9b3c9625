package models

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Bet types for combination outcomes
const (
	BetTypeWin      = "win"
	BetTypePlace    = "place"
	BetTypeExacta   = "exacta"
	BetTypeTrifecta = "trifecta"
	BetTypeQuinella = "quinella"
	BetTypeTrio     = "trio"
)

// Prediction represents the simulated marginal probabilities for one entrant
// in one race, as stored for the history view.
type Prediction struct {
	ID           uuid.UUID `db:"id" json:"id" validate:"required,uuid4"`
	RaceID       uuid.UUID `db:"race_id" json:"race_id" validate:"required,uuid4"`
	RunnerNo     int       `db:"runner_no" json:"runner_no" validate:"required,gt=0"`
	ModelVersion string    `db:"model_version" json:"model_version"`
	WinProb      float64   `db:"win_prob" json:"win_prob" validate:"gte=0,lte=1"`
	PlaceProb    float64   `db:"place_prob" json:"place_prob" validate:"gte=0,lte=1"`
	Trials       int       `db:"trials" json:"trials" validate:"required,gt=0"`
	Seed         int64     `db:"seed" json:"seed"`
	PredictedAt  time.Time `db:"predicted_at" json:"predicted_at" validate:"required"`
}

// ValueBet is a combination whose expected value against the live odds clears
// the configured threshold.
type ValueBet struct {
	BetType       string          `json:"bet_type"`
	Key           string          `json:"key"`
	Probability   float64         `json:"probability"`
	Odds          decimal.Decimal `json:"odds"`
	ExpectedValue decimal.Decimal `json:"expected_value"`
}

// CombinationKey formats runner numbers into the provider's odds-table key,
// e.g. "3-7-12".
func CombinationKey(runnerNos []int) string {
	parts := make([]string, len(runnerNos))
	for i, no := range runnerNos {
		parts[i] = strconv.Itoa(no)
	}
	return strings.Join(parts, "-")
}

// ParseCombinationKey splits an odds-table key back into runner numbers.
func ParseCombinationKey(key string) ([]int, error) {
	parts := strings.Split(key, "-")
	runnerNos := make([]int, len(parts))
	for i, part := range parts {
		no, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("%w: combination key %q", ErrInvalidRaceCard, key)
		}
		runnerNos[i] = no
	}
	return runnerNos, nil
}
