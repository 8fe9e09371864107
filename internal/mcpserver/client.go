package mcpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/mbd888/fraudlens/internal/circuitbreaker"
)

// Config holds the configuration for connecting to the FraudLens dashboard.
type Config struct {
	APIURL string // Base URL, e.g. "http://localhost:8080"
}

// FraudLensClient is a pure HTTP client for the FraudLens dashboard API.
//
// A per-endpoint circuit breaker fails calls fast once the dashboard has
// been unreachable a few times in a row, so an agent issuing tool calls in
// a loop is not stuck waiting on connect timeouts.
type FraudLensClient struct {
	cfg        Config
	httpClient *http.Client
	breaker    *circuitbreaker.Breaker
}

// NewFraudLensClient creates a new client for the dashboard API.
func NewFraudLensClient(cfg Config) *FraudLensClient {
	return &FraudLensClient{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		breaker: circuitbreaker.New(3, 15*time.Second),
	}
}

// apiError represents an error response from the dashboard.
type apiError struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// doRequest makes an HTTP request to the dashboard and returns the response body.
func (c *FraudLensClient) doRequest(ctx context.Context, method, path string, query url.Values, body any) (json.RawMessage, error) {
	if !c.breaker.Allow(path) {
		return nil, fmt.Errorf("API unavailable (circuit open for %s)", path)
	}

	u, err := url.Parse(c.cfg.APIURL + path)
	if err != nil {
		return nil, fmt.Errorf("invalid URL: %w", err)
	}
	if query != nil {
		u.RawQuery = query.Encode()
	}

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal request body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), reqBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.breaker.RecordFailure(path)
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		c.breaker.RecordFailure(path)
		return nil, fmt.Errorf("read response: %w", err)
	}

	// Any response below 500 proves the dashboard is up; 4xx is the caller's
	// problem, not a reason to trip the circuit.
	if resp.StatusCode >= 500 {
		c.breaker.RecordFailure(path)
	} else {
		c.breaker.RecordSuccess(path)
	}

	if resp.StatusCode >= 400 {
		var apiErr apiError
		if json.Unmarshal(respBody, &apiErr) == nil && apiErr.Message != "" {
			return nil, fmt.Errorf("API error (%d): %s", resp.StatusCode, apiErr.Message)
		}
		return nil, fmt.Errorf("API error (%d): %s", resp.StatusCode, string(respBody))
	}

	return json.RawMessage(respBody), nil
}

// Stats returns summary statistics for the loaded dataset.
func (c *FraudLensClient) Stats(ctx context.Context) (json.RawMessage, error) {
	return c.doRequest(ctx, http.MethodGet, "/api/stats", nil, nil)
}

// Analyze scores a single transaction. Empty type or location fall back to
// the dashboard's defaults.
func (c *FraudLensClient) Analyze(ctx context.Context, amount float64, txType, location string) (json.RawMessage, error) {
	body := map[string]any{
		"amount": amount,
	}
	if txType != "" {
		body["transaction_type"] = txType
	}
	if location != "" {
		body["location"] = location
	}
	return c.doRequest(ctx, http.MethodPost, "/api/analyze", nil, body)
}

// Search returns transactions matching the query.
func (c *FraudLensClient) Search(ctx context.Context, query string) (json.RawMessage, error) {
	q := url.Values{}
	q.Set("q", query)
	return c.doRequest(ctx, http.MethodGet, "/api/search", q, nil)
}

// Datasets lists the discoverable CSV files and the active selection.
func (c *FraudLensClient) Datasets(ctx context.Context) (json.RawMessage, error) {
	return c.doRequest(ctx, http.MethodGet, "/api/datasets", nil, nil)
}

// Refresh switches the dashboard to the next dataset in the cycle.
func (c *FraudLensClient) Refresh(ctx context.Context) (json.RawMessage, error) {
	return c.doRequest(ctx, http.MethodPost, "/api/refresh", nil, nil)
}
