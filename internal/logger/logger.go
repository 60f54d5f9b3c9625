// Package logger provides a wrapper around logrus for structured logging.
package logger

import (
	"os"

	"github.com/sirupsen/logrus"
)

// NewLogger creates a new configured logger instance
func NewLogger(logLevel string) *logrus.Logger {
	logger := logrus.New()

	logger.SetOutput(os.Stdout)

	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		logger.Warnf("Invalid log level '%s', defaulting to info", logLevel)
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	// JSON in production so the collector can parse fields; colored text
	// everywhere else.
	if os.Getenv("ENVIRONMENT") == "production" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
			ForceColors:   true,
		})
	}

	return logger
}

// WithRace returns an entry carrying the race context fields every pipeline
// stage logs with.
func WithRace(logger *logrus.Logger, netkeibaID string, track string, raceNumber int) *logrus.Entry {
	return logger.WithFields(logrus.Fields{
		"netkeiba_id": netkeibaID,
		"track":       track,
		"race_number": raceNumber,
	})
}
