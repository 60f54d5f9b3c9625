// Package simulation estimates finishing-order probabilities for a race by
// repeatedly sampling a Plackett-Luce sequential-choice process over the
// entrants' model scores.
package simulation

import "errors"

// Custom errors
var (
	// ErrInvalidInput indicates the entrant list cannot be simulated
	ErrInvalidInput = errors.New("invalid simulation input")

	// ErrInvalidConfig indicates the simulation config is unusable
	ErrInvalidConfig = errors.New("invalid simulation config")
)
