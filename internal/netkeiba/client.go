package netkeiba

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"regexp"
	"time"

	"github.com/shopspring/decimal"
)

// RaceCard represents one race card as served by the provider API
type RaceCard struct {
	RaceID         string        `json:"race_id"`
	Track          string        `json:"track"`
	RaceNumber     int           `json:"race_number"`
	CourseType     string        `json:"course_type"`
	Distance       int           `json:"distance"`
	ScheduledStart time.Time     `json:"scheduled_start"`
	Entries        []EntrantData `json:"entries"`
}

// EntrantData represents one horse entry on a race card
type EntrantData struct {
	RunnerNo  int              `json:"runner_no"`
	HorseName string           `json:"horse_name"`
	Jockey    string           `json:"jockey"`
	Trainer   string           `json:"trainer"`
	WeightKg  *float64         `json:"weight_kg"`
	WinOdds   *decimal.Decimal `json:"win_odds"`
}

// OddsTables holds the provider's odds per bet type. Combination tables are
// keyed by hyphen-joined runner numbers, e.g. "3-7" or "3-7-12".
type OddsTables struct {
	Win      map[string]decimal.Decimal `json:"win"`
	Quinella map[string]decimal.Decimal `json:"quinella"`
	Trio     map[string]decimal.Decimal `json:"trio"`
}

// Client is the provider API client
type Client struct {
	httpClient *RateLimitedHTTPClient
	baseURL    string
	apiKey     string
	logger     *log.Logger
}

// NewClient creates a new provider API client
func NewClient(httpClient *RateLimitedHTTPClient, baseURL, apiKey string, logger *log.Logger) *Client {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Client{
		httpClient: httpClient,
		baseURL:    baseURL,
		apiKey:     apiKey,
		logger:     logger,
	}
}

// FetchRaceCard retrieves the card for one race by its 12-digit identifier
func (c *Client) FetchRaceCard(ctx context.Context, raceID string) (*RaceCard, error) {
	var card RaceCard
	url := fmt.Sprintf("%s/races/%s/card", c.baseURL, raceID)
	if err := c.getJSON(ctx, url, &card); err != nil {
		return nil, err
	}
	if card.RaceID == "" || len(card.Entries) == 0 {
		return nil, NewProviderError(ErrCodeInvalidData, fmt.Sprintf("empty race card for %s", raceID), nil)
	}
	return &card, nil
}

// FetchOdds retrieves the current win, quinella and trio odds for one race
func (c *Client) FetchOdds(ctx context.Context, raceID string) (*OddsTables, error) {
	var odds OddsTables
	url := fmt.Sprintf("%s/races/%s/odds", c.baseURL, raceID)
	if err := c.getJSON(ctx, url, &odds); err != nil {
		return nil, err
	}
	return &odds, nil
}

// FetchUpcoming retrieves race cards scheduled within the date range
func (c *Client) FetchUpcoming(ctx context.Context, from, to time.Time) ([]RaceCard, error) {
	var cards []RaceCard
	url := fmt.Sprintf("%s/races?from=%s&to=%s",
		c.baseURL, from.Format("2006-01-02"), to.Format("2006-01-02"))
	if err := c.getJSON(ctx, url, &cards); err != nil {
		return nil, err
	}
	return cards, nil
}

func (c *Client) getJSON(ctx context.Context, url string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return NewProviderError(ErrCodeNetworkError, "failed to create request", err)
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(ctx, req)
	if err != nil {
		return NewProviderError(ErrCodeNetworkError, "request failed", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return NewProviderError(ErrCodeAuthenticationFailed, "invalid API key", nil)
	case resp.StatusCode == http.StatusNotFound:
		return NewProviderError(ErrCodeNotFound, url, nil)
	case resp.StatusCode == http.StatusTooManyRequests:
		return NewProviderError(ErrCodeRateLimitExceeded, "rate limit exceeded", nil)
	case resp.StatusCode != http.StatusOK:
		body, _ := io.ReadAll(resp.Body)
		return NewProviderError(ErrCodeServerError, fmt.Sprintf("unexpected status %d: %s", resp.StatusCode, string(body)), nil)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return NewProviderError(ErrCodeInvalidData, "failed to parse response", err)
	}
	return nil
}

// raceIDPatterns cover the URL shapes users paste in: shutuba/result pages,
// db pages and bare 12-digit identifiers.
var raceIDPatterns = []*regexp.Regexp{
	regexp.MustCompile(`race_id=(\d{12})`),
	regexp.MustCompile(`/race/(\d{12})`),
	regexp.MustCompile(`^(\d{12})$`),
	regexp.MustCompile(`(\d{12})`),
}

// ExtractRaceID pulls the 12-digit race identifier out of a provider URL or
// returns the input when it already is one.
func ExtractRaceID(urlOrID string) (string, error) {
	for _, pattern := range raceIDPatterns {
		if match := pattern.FindStringSubmatch(urlOrID); match != nil {
			return match[1], nil
		}
	}
	return "", NewProviderError(ErrCodeInvalidData, fmt.Sprintf("no race ID found in %q", urlOrID), nil)
}
