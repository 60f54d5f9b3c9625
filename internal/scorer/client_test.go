package scorer

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/keiba-ai/internal/config"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return logger
}

func scorerConfig(baseURL string) *config.ScorerConfig {
	return &config.ScorerConfig{
		BaseURL:         baseURL,
		ModelVersion:    "v3",
		TimeoutSeconds:  5,
		CacheTTLSeconds: 60,
		CacheMaxSize:    100,
	}
}

func sampleRequest() ScoreRequest {
	return ScoreRequest{
		RaceID: "202405021211",
		Entries: []ScoreFeature{
			{RunnerNo: 1, HorseName: "Alpha"},
			{RunnerNo: 2, HorseName: "Bravo"},
		},
	}
}

// TestScoreRace tests a successful scoring round trip
func TestScoreRace(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v1/scores", r.URL.Path)
		require.Equal(t, "POST", r.Method)

		var req ScoreRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "v3", req.ModelVersion)

		resp := ScoreResponse{
			RaceID:       req.RaceID,
			ModelVersion: req.ModelVersion,
			Scores: []RunnerScore{
				{RunnerNo: 1, Score: 1.8},
				{RunnerNo: 2, Score: -0.4},
			},
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer srv.Close()

	client := NewClient(scorerConfig(srv.URL), testLogger())

	resp, err := client.ScoreRace(context.Background(), sampleRequest())
	require.NoError(t, err)
	assert.Equal(t, "202405021211", resp.RaceID)
	require.Len(t, resp.Scores, 2)
	assert.Equal(t, 1.8, resp.Scores[0].Score)
}

// TestScoreRaceEmptyEntries tests rejection of empty requests
func TestScoreRaceEmptyEntries(t *testing.T) {
	client := NewClient(scorerConfig("http://localhost:1"), testLogger())

	_, err := client.ScoreRace(context.Background(), ScoreRequest{RaceID: "202405021211"})
	assert.ErrorIs(t, err, ErrNoEntries)
}

// TestScoreRaceMissingScore tests rejection when the service skips a runner
func TestScoreRaceMissingScore(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(ScoreResponse{
			RaceID: "202405021211",
			Scores: []RunnerScore{{RunnerNo: 1, Score: 1.8}},
		})
	}))
	defer srv.Close()

	client := NewClient(scorerConfig(srv.URL), testLogger())

	_, err := client.ScoreRace(context.Background(), sampleRequest())
	assert.ErrorIs(t, err, ErrInvalidScoreResponse)
}

// TestScoreRaceDuplicateRunner tests rejection of duplicate scores
func TestScoreRaceDuplicateRunner(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(ScoreResponse{
			RaceID: "202405021211",
			Scores: []RunnerScore{
				{RunnerNo: 1, Score: 1.8},
				{RunnerNo: 1, Score: 0.2},
			},
		})
	}))
	defer srv.Close()

	client := NewClient(scorerConfig(srv.URL), testLogger())

	_, err := client.ScoreRace(context.Background(), sampleRequest())
	assert.ErrorIs(t, err, ErrInvalidScoreResponse)
}

// TestScoreRaceServerError tests mapping of HTTP failures
func TestScoreRaceServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not loaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	client := NewClient(scorerConfig(srv.URL), testLogger())

	_, err := client.ScoreRace(context.Background(), sampleRequest())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")
}

// TestCachedClientSingleFetch tests that repeat requests hit the cache
func TestCachedClientSingleFetch(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		_ = json.NewEncoder(w).Encode(ScoreResponse{
			RaceID:       "202405021211",
			ModelVersion: "v3",
			Scores: []RunnerScore{
				{RunnerNo: 1, Score: 1.8},
				{RunnerNo: 2, Score: -0.4},
			},
		})
	}))
	defer srv.Close()

	client := NewCachedClient(scorerConfig(srv.URL), testLogger())
	ctx := context.Background()

	first, err := client.ScoreRace(ctx, sampleRequest())
	require.NoError(t, err)

	second, err := client.ScoreRace(ctx, sampleRequest())
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))

	hits, misses, _ := client.CacheStats()
	assert.Equal(t, uint64(1), hits)
	assert.Equal(t, uint64(1), misses)
}

// TestCachedClientInvalidate tests that invalidation forces a refetch
func TestCachedClientInvalidate(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		_ = json.NewEncoder(w).Encode(ScoreResponse{
			RaceID:       "202405021211",
			ModelVersion: "v3",
			Scores: []RunnerScore{
				{RunnerNo: 1, Score: 1.8},
				{RunnerNo: 2, Score: -0.4},
			},
		})
	}))
	defer srv.Close()

	client := NewCachedClient(scorerConfig(srv.URL), testLogger())
	ctx := context.Background()

	_, err := client.ScoreRace(ctx, sampleRequest())
	require.NoError(t, err)

	client.InvalidateRace("202405021211")

	_, err = client.ScoreRace(ctx, sampleRequest())
	require.NoError(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}
