// Package scorer provides the client for the ranking-model service that
// produces per-entrant strength scores.
package scorer

import "errors"

var (
	// ErrScorerUnavailable indicates the scoring service is unreachable
	ErrScorerUnavailable = errors.New("scorer service unavailable")

	// ErrInvalidScoreResponse indicates the score response is malformed
	ErrInvalidScoreResponse = errors.New("invalid score response")

	// ErrNoEntries indicates a score request with no entrants
	ErrNoEntries = errors.New("score request has no entries")
)
