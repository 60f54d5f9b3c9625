package scorer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/keiba-ai/internal/config"
	"github.com/yourusername/keiba-ai/internal/metrics"
)

// ScoreRequest represents a batch scoring request for one race
type ScoreRequest struct {
	RaceID       string         `json:"race_id"`
	ModelVersion string         `json:"model_version"`
	Entries      []ScoreFeature `json:"entries"`
}

// ScoreFeature carries the features the model scores one entrant on
type ScoreFeature struct {
	RunnerNo  int      `json:"runner_no"`
	HorseName string   `json:"horse_name"`
	Jockey    string   `json:"jockey,omitempty"`
	Trainer   string   `json:"trainer,omitempty"`
	WeightKg  *float64 `json:"weight_kg,omitempty"`
}

// RunnerScore is one entrant's strength score
type RunnerScore struct {
	RunnerNo int     `json:"runner_no"`
	Score    float64 `json:"score"`
}

// ScoreResponse represents the scoring service response for one race
type ScoreResponse struct {
	RaceID       string        `json:"race_id"`
	ModelVersion string        `json:"model_version"`
	Scores       []RunnerScore `json:"scores"`
}

// Client is an HTTP client for the scoring service
type Client struct {
	client       *http.Client
	baseURL      string
	modelVersion string
	logger       *logrus.Logger
}

// NewClient creates a new scoring service client
func NewClient(cfg *config.ScorerConfig, logger *logrus.Logger) *Client {
	return &Client{
		client: &http.Client{
			Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second,
		},
		baseURL:      cfg.BaseURL,
		modelVersion: cfg.ModelVersion,
		logger:       logger,
	}
}

// ModelVersion returns the model version this client requests scores from
func (c *Client) ModelVersion() string {
	return c.modelVersion
}

// ScoreRace requests strength scores for every entrant of one race
func (c *Client) ScoreRace(ctx context.Context, req ScoreRequest) (*ScoreResponse, error) {
	if len(req.Entries) == 0 {
		return nil, ErrNoEntries
	}
	if req.ModelVersion == "" {
		req.ModelVersion = c.modelVersion
	}

	start := time.Now()

	jsonData, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/api/v1/scores", bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		metrics.ScorerErrorsTotal.WithLabelValues("score_race", "network").Inc()
		return nil, fmt.Errorf("%w: %v", ErrScorerUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		metrics.ScorerErrorsTotal.WithLabelValues("score_race", "http_error").Inc()
		return nil, fmt.Errorf("score request failed with status %d: %s", resp.StatusCode, string(body))
	}

	var scoreResp ScoreResponse
	if err := json.NewDecoder(resp.Body).Decode(&scoreResp); err != nil {
		metrics.ScorerErrorsTotal.WithLabelValues("score_race", "decode").Inc()
		return nil, fmt.Errorf("%w: %v", ErrInvalidScoreResponse, err)
	}

	if err := validateResponse(req, &scoreResp); err != nil {
		metrics.ScorerErrorsTotal.WithLabelValues("score_race", "validation").Inc()
		return nil, err
	}

	metrics.ScorerLatency.WithLabelValues("http").Observe(time.Since(start).Seconds())

	c.logger.WithFields(logrus.Fields{
		"race_id":       scoreResp.RaceID,
		"model_version": scoreResp.ModelVersion,
		"entries":       len(scoreResp.Scores),
		"duration":      time.Since(start),
	}).Debug("Scored race")

	return &scoreResp, nil
}

// HealthCheck checks scoring service health
func (c *Client) HealthCheck(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, "GET", c.baseURL+"/health", nil)
	if err != nil {
		return err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrScorerUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: status %d", ErrScorerUnavailable, resp.StatusCode)
	}

	return nil
}

// validateResponse checks that every requested entrant got a finite score
func validateResponse(req ScoreRequest, resp *ScoreResponse) error {
	if len(resp.Scores) != len(req.Entries) {
		return fmt.Errorf("%w: expected %d scores, got %d", ErrInvalidScoreResponse, len(req.Entries), len(resp.Scores))
	}

	scored := make(map[int]bool, len(resp.Scores))
	for _, s := range resp.Scores {
		if math.IsNaN(s.Score) || math.IsInf(s.Score, 0) {
			return fmt.Errorf("%w: non-finite score for runner %d", ErrInvalidScoreResponse, s.RunnerNo)
		}
		if scored[s.RunnerNo] {
			return fmt.Errorf("%w: duplicate score for runner %d", ErrInvalidScoreResponse, s.RunnerNo)
		}
		scored[s.RunnerNo] = true
	}
	for _, e := range req.Entries {
		if !scored[e.RunnerNo] {
			return fmt.Errorf("%w: missing score for runner %d", ErrInvalidScoreResponse, e.RunnerNo)
		}
	}
	return nil
}
