package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/keiba-ai/internal/models"
	"github.com/yourusername/keiba-ai/internal/repository"
	"github.com/yourusername/keiba-ai/internal/service"
)

// Predictor runs the prediction workflow for one race
type Predictor interface {
	PredictRace(ctx context.Context, raceIDOrURL string) (*service.RaceReport, error)
}

// Server is the prediction API server
type Server struct {
	predictor Predictor
	repos     *repository.Repositories
	hub       *Hub
	server    *http.Server
	logger    *logrus.Logger
}

// Config holds the API server configuration
type Config struct {
	Port      int
	Predictor Predictor
	Repos     *repository.Repositories
	Hub       *Hub
	Logger    *logrus.Logger
}

// errorResponse is the JSON error envelope
type errorResponse struct {
	Error string `json:"error"`
}

// NewServer creates a new API server
func NewServer(cfg Config) *Server {
	s := &Server{
		predictor: cfg.Predictor,
		repos:     cfg.Repos,
		hub:       cfg.Hub,
		logger:    cfg.Logger,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/races/", s.handleRaces)
	mux.HandleFunc("/api/v1/upcoming", s.handleUpcoming)
	if s.hub != nil {
		mux.HandleFunc("/ws", s.hub.ServeWS)
	}

	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// Handler returns the server's HTTP handler, for tests
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// Start runs the API server until the context is cancelled
func (s *Server) Start(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if s.hub != nil {
			s.hub.Close()
		}
		s.server.Shutdown(shutdownCtx)
	}()

	s.logger.WithField("addr", s.server.Addr).Info("API server starting")
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// handleRaces routes /api/v1/races/{netkeibaID}/prediction and
// /api/v1/races/{netkeibaID}/predict
func (s *Server) handleRaces(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/v1/races/")
	parts := strings.Split(strings.Trim(rest, "/"), "/")
	if len(parts) != 2 || !models.ValidNetkeibaID(parts[0]) {
		s.writeError(w, http.StatusNotFound, "unknown route")
		return
	}
	netkeibaID, action := parts[0], parts[1]

	switch {
	case action == "prediction" && r.Method == http.MethodGet:
		s.handleGetPrediction(w, r, netkeibaID)
	case action == "predict" && r.Method == http.MethodPost:
		s.handlePredict(w, r, netkeibaID)
	default:
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// handleGetPrediction serves the stored prediction for a race
func (s *Server) handleGetPrediction(w http.ResponseWriter, r *http.Request, netkeibaID string) {
	if s.repos == nil {
		s.writeError(w, http.StatusNotImplemented, "no store configured")
		return
	}

	race, err := s.repos.Race.GetByNetkeibaID(r.Context(), netkeibaID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			s.writeError(w, http.StatusNotFound, "race not found")
			return
		}
		s.internalError(w, err)
		return
	}

	predictions, err := s.repos.Prediction.GetByRaceID(r.Context(), race.ID)
	if err != nil {
		s.internalError(w, err)
		return
	}
	if len(predictions) == 0 {
		s.writeError(w, http.StatusNotFound, "race has no prediction yet")
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"race":        race,
		"predictions": predictions,
	})
}

// handlePredict runs a fresh prediction for a race
func (s *Server) handlePredict(w http.ResponseWriter, r *http.Request, netkeibaID string) {
	if s.predictor == nil {
		s.writeError(w, http.StatusNotImplemented, "no predictor configured")
		return
	}

	report, err := s.predictor.PredictRace(r.Context(), netkeibaID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			s.writeError(w, http.StatusNotFound, "race not found")
			return
		}
		s.internalError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, report)
}

// handleUpcoming lists scheduled races
func (s *Server) handleUpcoming(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed <= 0 || parsed > 500 {
			s.writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = parsed
	}

	if s.repos == nil {
		s.writeError(w, http.StatusNotImplemented, "no store configured")
		return
	}

	races, err := s.repos.Race.GetUpcoming(r.Context(), limit)
	if err != nil {
		s.internalError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]interface{}{"races": races})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.WithError(err).Error("Failed to encode response")
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, errorResponse{Error: msg})
}

func (s *Server) internalError(w http.ResponseWriter, err error) {
	s.logger.WithError(err).Error("Request failed")
	s.writeError(w, http.StatusInternalServerError, "internal error")
}
