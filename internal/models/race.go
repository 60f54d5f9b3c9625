package models

import (
	"regexp"
	"time"

	"github.com/google/uuid"
)

// Race statuses
const (
	RaceStatusScheduled = "scheduled"
	RaceStatusPredicted = "predicted"
	RaceStatusCompleted = "completed"
)

// netkeibaIDPattern matches the provider's 12-digit race identifier.
var netkeibaIDPattern = regexp.MustCompile(`^\d{12}$`)

// Race represents one race card fetched from the data provider.
type Race struct {
	ID             uuid.UUID `db:"id" json:"id" validate:"required,uuid4"`
	NetkeibaID     string    `db:"netkeiba_id" json:"netkeiba_id" validate:"required,len=12,numeric"`
	Track          string    `db:"track" json:"track" validate:"required"`
	RaceNumber     int       `db:"race_number" json:"race_number" validate:"required,gt=0,lte=12"`
	CourseType     string    `db:"course_type" json:"course_type" validate:"required,oneof=turf dirt jump"`
	Distance       int       `db:"distance" json:"distance" validate:"required,gt=0"`
	ScheduledStart time.Time `db:"scheduled_start" json:"scheduled_start" validate:"required"`
	Status         string    `db:"status" json:"status" validate:"required,oneof=scheduled predicted completed"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
	Entrants       []*Entrant `db:"-" json:"entrants,omitempty"`
}

// ValidNetkeibaID reports whether id is a well-formed provider race ID.
func ValidNetkeibaID(id string) bool {
	return netkeibaIDPattern.MatchString(id)
}

// FieldSize returns the number of entrants on the card.
func (r *Race) FieldSize() int {
	return len(r.Entrants)
}
