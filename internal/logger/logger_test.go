package logger

import (
	"testing"

	"github.com/sirupsen/logrus"
)

func TestNewLoggerLevels(t *testing.T) {
	cases := map[string]logrus.Level{
		"debug": logrus.DebugLevel,
		"info":  logrus.InfoLevel,
		"warn":  logrus.WarnLevel,
		"error": logrus.ErrorLevel,
	}
	for level, want := range cases {
		logger := NewLogger(level)
		if logger.GetLevel() != want {
			t.Fatalf("level %q: got %v, want %v", level, logger.GetLevel(), want)
		}
	}
}

func TestNewLoggerInvalidLevelDefaultsToInfo(t *testing.T) {
	logger := NewLogger("not-a-level")
	if logger.GetLevel() != logrus.InfoLevel {
		t.Fatalf("expected info fallback, got %v", logger.GetLevel())
	}
}

func TestWithRaceFields(t *testing.T) {
	entry := WithRace(NewLogger("info"), "202406030811", "Tokyo", 11)
	if entry.Data["netkeiba_id"] != "202406030811" {
		t.Fatalf("missing netkeiba_id field: %v", entry.Data)
	}
	if entry.Data["race_number"] != 11 {
		t.Fatalf("missing race_number field: %v", entry.Data)
	}
}
