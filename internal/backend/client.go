// Package backend reads store settings and coupons from the managed backend's REST API.
package backend

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"

	"github.com/jafarshop/storefront/internal/config"
	"github.com/jafarshop/storefront/internal/metric"
)

type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker[[]byte]
	logger     *zap.Logger
}

// NewClient creates a new backend REST client
func NewClient(cfg config.BackendConfig, logger *zap.Logger) *Client {
	baseURL := strings.TrimSuffix(cfg.URL, "/")
	if !strings.HasPrefix(baseURL, "http://") && !strings.HasPrefix(baseURL, "https://") {
		baseURL = "https://" + baseURL
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	c := &Client{
		baseURL: baseURL,
		apiKey:  cfg.APIKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
	c.breaker = gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        "backend",
		MaxRequests: 1,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("Backend circuit breaker changed state",
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})
	return c
}

// StatusError is returned for non-2xx responses
type StatusError struct {
	Table      string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("backend API error: %s: status %d, body: %s", e.Table, e.StatusCode, e.Body)
}

// Select reads rows from a table. query uses the backend's filter syntax,
// e.g. code=ilike.SAVE10. The raw JSON array is returned.
func (c *Client) Select(ctx context.Context, table string, query url.Values) ([]byte, error) {
	return c.breaker.Execute(func() ([]byte, error) {
		return c.do(ctx, table, query)
	})
}

func (c *Client) do(ctx context.Context, table string, query url.Values) ([]byte, error) {
	endpoint := fmt.Sprintf("%s/rest/v1/%s", c.baseURL, table)
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		metric.BackendRequestDuration.WithLabelValues(table, "error").Observe(time.Since(start).Seconds())
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()
	metric.BackendRequestDuration.WithLabelValues(table, strconv.Itoa(resp.StatusCode)).Observe(time.Since(start).Seconds())

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{Table: table, StatusCode: resp.StatusCode, Body: string(body)}
	}

	c.logger.Debug("Backend request completed",
		zap.String("table", table),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", time.Since(start)),
	)
	return body, nil
}
