// Package service orchestrates the prediction workflow: fetching race cards,
// scoring entrants, simulating outcomes and persisting the results.
package service

import (
	"sort"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/keiba-ai/internal/metrics"
	"github.com/yourusername/keiba-ai/internal/models"
	"github.com/yourusername/keiba-ai/internal/netkeiba"
	"github.com/yourusername/keiba-ai/internal/simulation"
)

// ValueAnalyzer finds combinations whose expected value against the live
// odds clears a configured threshold
type ValueAnalyzer struct {
	threshold decimal.Decimal
	logger    *logrus.Logger
}

// NewValueAnalyzer creates a new value analyzer. A threshold of 1.15 keeps
// only bets priced at least 15% above fair.
func NewValueAnalyzer(threshold float64, logger *logrus.Logger) *ValueAnalyzer {
	return &ValueAnalyzer{
		threshold: decimal.NewFromFloat(threshold),
		logger:    logger,
	}
}

// BuildValueBets crosses the simulated probabilities with the provider's
// odds tables. Combinations missing from the odds tables are skipped; the
// result is sorted by descending expected value.
func (a *ValueAnalyzer) BuildValueBets(report *simulation.Report, odds *netkeiba.OddsTables) []models.ValueBet {
	if report == nil || odds == nil {
		return nil
	}

	var bets []models.ValueBet

	for _, e := range report.Entrants {
		key := models.CombinationKey([]int{e.RunnerNo})
		bets = a.appendIfValue(bets, models.BetTypeWin, key, e.Win, odds.Win)
	}
	for _, c := range report.Quinella {
		key := models.CombinationKey(c.RunnerNos)
		bets = a.appendIfValue(bets, models.BetTypeQuinella, key, c.Probability, odds.Quinella)
	}
	for _, c := range report.Trio {
		key := models.CombinationKey(c.RunnerNos)
		bets = a.appendIfValue(bets, models.BetTypeTrio, key, c.Probability, odds.Trio)
	}

	sort.Slice(bets, func(i, j int) bool {
		return bets[i].ExpectedValue.GreaterThan(bets[j].ExpectedValue)
	})

	metrics.RecordValueBets(len(bets))
	return bets
}

// appendIfValue appends a bet when its EV clears the threshold
func (a *ValueAnalyzer) appendIfValue(bets []models.ValueBet, betType, key string, prob float64, table map[string]decimal.Decimal) []models.ValueBet {
	if prob <= 0 {
		return bets
	}
	price, ok := table[key]
	if !ok {
		return bets
	}

	ev := price.Mul(decimal.NewFromFloat(prob))
	if ev.LessThan(a.threshold) {
		return bets
	}

	a.logger.WithFields(logrus.Fields{
		"bet_type":       betType,
		"key":            key,
		"probability":    prob,
		"odds":           price.String(),
		"expected_value": ev.String(),
	}).Debug("Value bet found")

	return append(bets, models.ValueBet{
		BetType:       betType,
		Key:           key,
		Probability:   prob,
		Odds:          price,
		ExpectedValue: ev,
	})
}
