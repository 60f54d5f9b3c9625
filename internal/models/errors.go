package models

import "errors"

// Custom errors
var (
	ErrNotFound        = errors.New("record not found")
	ErrDuplicateKey    = errors.New("duplicate key violation")
	ErrInvalidID       = errors.New("invalid ID format")
	ErrRaceIDRequired  = errors.New("race ID is required")
	ErrNoEntrants      = errors.New("race has no entrants")
	ErrInvalidRaceCard = errors.New("invalid race card data")
)
