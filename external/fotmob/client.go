package fotmob

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"

	"github.com/tomaldridge12/loanbot/internal/domain/match"
	"github.com/tomaldridge12/loanbot/internal/platform/logging"
	"github.com/tomaldridge12/loanbot/internal/platform/resilience"
	"github.com/tomaldridge12/loanbot/internal/usecase"
)

const (
	defaultBaseURL    = "https://www.fotmob.com/api"
	maxResponseBytes  = 6 << 20
	retryPauseInitial = 500 * time.Millisecond
)

var errFotmobTransient = crerr.New("fotmob transient failure")

type ClientConfig struct {
	HTTPClient     *http.Client
	BaseURL        string
	Timeout        time.Duration
	MaxRetries     int
	Logger         *logging.Logger
	CircuitBreaker resilience.CircuitBreakerConfig
}

// Client talks to the match-data provider. It retries transient failures
// and trips a circuit breaker when the provider keeps failing so the
// polling workers degrade to skipped cycles instead of hammering.
type Client struct {
	httpClient     *http.Client
	baseURL        string
	maxRetries     int
	logger         *logging.Logger
	breaker        *resilience.CircuitBreaker
	circuitEnabled bool
}

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	if httpClient.Timeout <= 0 {
		httpClient.Timeout = 20 * time.Second
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	threshold := cfg.CircuitBreaker.FailureThreshold
	if threshold <= 0 {
		threshold = 5
	}

	return &Client{
		httpClient:     httpClient,
		baseURL:        baseURL,
		maxRetries:     max(cfg.MaxRetries, 0),
		logger:         logger,
		breaker:        resilience.NewCircuitBreaker(threshold, cfg.CircuitBreaker.OpenTimeout),
		circuitEnabled: cfg.CircuitBreaker.Enabled,
	}
}

// NextMatchID returns the id of the team's next fixture.
func (c *Client) NextMatchID(ctx context.Context, teamID int64) (int64, error) {
	query := map[string]string{
		"id":  strconv.FormatInt(teamID, 10),
		"tab": "fixtures",
	}

	var doc teamFixturesDocument
	if err := c.doJSON(ctx, "/teams", query, &doc); err != nil {
		return 0, fmt.Errorf("fetch fixtures team_id=%d: %w", teamID, err)
	}

	if doc.Fixtures == nil || doc.Fixtures.AllFixtures == nil || doc.Fixtures.AllFixtures.NextMatch == nil {
		return 0, fmt.Errorf("%w: no upcoming fixture for team_id=%d", usecase.ErrParse, teamID)
	}
	return doc.Fixtures.AllFixtures.NextMatch.ID, nil
}

// MatchByID fetches the latest snapshot of a match and parses it.
func (c *Client) MatchByID(ctx context.Context, matchID int64) (*match.Match, error) {
	query := map[string]string{"matchId": strconv.FormatInt(matchID, 10)}

	raw, err := c.fetchRaw(ctx, "/matchDetails", query)
	if err != nil {
		return nil, fmt.Errorf("fetch match_id=%d: %w", matchID, err)
	}

	parsed, err := ParseMatch(raw)
	if err != nil {
		return nil, fmt.Errorf("parse match_id=%d: %w", matchID, err)
	}
	return parsed, nil
}

func (c *Client) doJSON(ctx context.Context, path string, query map[string]string, target any) error {
	raw, err := c.fetchRaw(ctx, path, query)
	if err != nil {
		return err
	}
	if err := sonic.Unmarshal(raw, target); err != nil {
		return fmt.Errorf("decode provider payload: %w", err)
	}
	return nil
}

func (c *Client) fetchRaw(ctx context.Context, path string, query map[string]string) ([]byte, error) {
	if c.circuitEnabled {
		if err := c.breaker.Allow(); err != nil {
			c.logger.Warn("fotmob circuit breaker rejected request", "state", c.breaker.State())
			return nil, fmt.Errorf("%w: match-data provider is temporarily unavailable", usecase.ErrDependencyUnavailable)
		}
	}

	values := url.Values{}
	for key, value := range query {
		values.Set(key, value)
	}

	fullURL := c.baseURL + path
	if encoded := values.Encode(); encoded != "" {
		fullURL += "?" + encoded
	}

	raw, err := c.executeRequest(ctx, fullURL)
	if c.circuitEnabled {
		if err != nil && crerr.Is(err, errFotmobTransient) {
			c.breaker.RecordFailure()
		} else {
			c.breaker.RecordSuccess()
		}
	}
	return raw, err
}

func (c *Client) executeRequest(ctx context.Context, fullURL string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(retryPauseInitial * time.Duration(attempt)):
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
		if err != nil {
			return nil, fmt.Errorf("build request: %w", err)
		}
		req.Header.Set("accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("%w: send request: %v", errFotmobTransient, err)
			continue
		}

		raw, readErr := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
		_ = resp.Body.Close()
		if readErr != nil {
			lastErr = fmt.Errorf("%w: read response body: %v", errFotmobTransient, readErr)
			continue
		}
		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			return raw, nil
		}

		if isRetryableStatus(resp.StatusCode) {
			lastErr = fmt.Errorf("%w: provider status=%d", errFotmobTransient, resp.StatusCode)
			continue
		}
		return nil, fmt.Errorf("provider status=%d", resp.StatusCode)
	}

	return nil, lastErr
}

func isRetryableStatus(status int) bool {
	switch status {
	case http.StatusTooManyRequests, http.StatusInternalServerError, http.StatusBadGateway,
		http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	default:
		return false
	}
}
