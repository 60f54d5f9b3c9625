package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/keiba-ai/internal/models"
	"github.com/yourusername/keiba-ai/internal/service"
	"github.com/yourusername/keiba-ai/internal/simulation"
)

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return logger
}

type fakePredictor struct {
	report *service.RaceReport
	err    error
	calls  []string
}

func (f *fakePredictor) PredictRace(ctx context.Context, raceIDOrURL string) (*service.RaceReport, error) {
	f.calls = append(f.calls, raceIDOrURL)
	return f.report, f.err
}

func sampleReport() *service.RaceReport {
	return &service.RaceReport{
		Race: &models.Race{
			ID:         uuid.New(),
			NetkeibaID: "202405021211",
			Track:      "Tokyo",
			RaceNumber: 11,
			Status:     models.RaceStatusPredicted,
		},
		ModelVersion: "v3",
		Report: &simulation.Report{
			Trials: 1000,
			Entrants: []simulation.EntrantResult{
				{RunnerNo: 1, Win: 0.6, Place: 0.9},
			},
		},
		GeneratedAt: time.Now().UTC(),
	}
}

// TestHandlePredict tests the synchronous predict endpoint
func TestHandlePredict(t *testing.T) {
	predictor := &fakePredictor{report: sampleReport()}
	srv := NewServer(Config{Port: 0, Predictor: predictor, Logger: quietLogger()})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/races/202405021211/predict", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, []string{"202405021211"}, predictor.calls)

	var got service.RaceReport
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	assert.Equal(t, "202405021211", got.Race.NetkeibaID)
	assert.Equal(t, 1000, got.Report.Trials)
}

// TestHandlePredictWrongMethod tests method gating on the predict endpoint
func TestHandlePredictWrongMethod(t *testing.T) {
	srv := NewServer(Config{Port: 0, Predictor: &fakePredictor{}, Logger: quietLogger()})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/races/202405021211/predict", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

// TestHandleRacesBadID tests rejection of malformed race IDs
func TestHandleRacesBadID(t *testing.T) {
	srv := NewServer(Config{Port: 0, Predictor: &fakePredictor{}, Logger: quietLogger()})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/races/not-an-id/predict", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

// TestHandlePredictNotFound tests the not-found mapping from the predictor
func TestHandlePredictNotFound(t *testing.T) {
	predictor := &fakePredictor{err: models.ErrNotFound}
	srv := NewServer(Config{Port: 0, Predictor: predictor, Logger: quietLogger()})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/races/202405021211/predict", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

// TestHandleUpcomingNoStore tests the endpoint without a configured store
func TestHandleUpcomingNoStore(t *testing.T) {
	srv := NewServer(Config{Port: 0, Logger: quietLogger()})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/upcoming", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotImplemented, rec.Code)
}

// TestHandleUpcomingBadLimit tests limit validation
func TestHandleUpcomingBadLimit(t *testing.T) {
	srv := NewServer(Config{Port: 0, Logger: quietLogger()})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/upcoming?limit=-3", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
