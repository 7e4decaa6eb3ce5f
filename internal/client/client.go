package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sgendron/loadpulse/internal/types"
)

const defaultTimeout = 60 * time.Second

// Client talks to the load-testing backend over the synchronous HTTP
// path. Asynchronous load-test completions arrive on the push channel,
// not through this client.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a client for the backend at baseURL (scheme + host).
func New(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
	}
}

// BaseURL returns the backend address the client was built with.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// WebSocketURL derives the push-channel endpoint from the base URL.
func (c *Client) WebSocketURL() string {
	ws := c.baseURL
	if strings.HasPrefix(ws, "https://") {
		ws = "wss://" + strings.TrimPrefix(ws, "https://")
	} else {
		ws = "ws://" + strings.TrimPrefix(ws, "http://")
	}
	return ws + "/ws"
}

// RunQuickTest submits a single diagnostic probe and returns its
// result. The backend reports probe failures inside the body, so a
// returned record may still have Success == false.
func (c *Client) RunQuickTest(ctx context.Context, targetURL string) (*types.QuickTestResult, error) {
	if targetURL == "" {
		return nil, fmt.Errorf("url is required")
	}

	body := map[string]string{"url": targetURL}
	var result types.QuickTestResult
	if err := c.postJSON(ctx, "/api/test", body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// StartLoadTest submits a load-test run. The response acknowledges
// admission only; the result arrives later on the push channel.
func (c *Client) StartLoadTest(ctx context.Context, targetURL string, requests, concurrency int) (*types.LoadTestAck, error) {
	if targetURL == "" {
		return nil, fmt.Errorf("url is required")
	}

	body := map[string]interface{}{
		"url":         targetURL,
		"requests":    requests,
		"concurrency": concurrency,
	}
	var ack types.LoadTestAck
	if err := c.postJSON(ctx, "/api/load", body, &ack); err != nil {
		return nil, err
	}
	return &ack, nil
}

// ListLoadResults fetches up to limit load-test summaries, most recent
// first.
func (c *Client) ListLoadResults(ctx context.Context, limit int) ([]types.LoadTestResult, error) {
	if limit <= 0 {
		limit = 20
	}

	endpoint := fmt.Sprintf("%s/api/load-results?limit=%d", c.baseURL, limit)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch history: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, httpError(resp)
	}

	var results []types.LoadTestResult
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return nil, fmt.Errorf("failed to decode history: %w", err)
	}
	return results, nil
}

// GetLoadResult fetches a single load-test record by id.
func (c *Client) GetLoadResult(ctx context.Context, id string) (*types.LoadTestResult, error) {
	endpoint := c.baseURL + "/api/load-results/" + url.PathEscape(id)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch test %s: %w", id, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("test %s not found", id)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, httpError(resp)
	}

	var result types.LoadTestResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode test %s: %w", id, err)
	}
	return &result, nil
}

// postJSON issues a POST with a JSON body and decodes a JSON response.
func (c *Client) postJSON(ctx context.Context, path string, body interface{}, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to encode request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return httpError(resp)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// httpError builds an error from a non-2xx response, including the
// body text when the backend sent one.
func httpError(resp *http.Response) error {
	msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	text := strings.TrimSpace(string(msg))
	if text == "" {
		return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}
	return fmt.Errorf("unexpected status code %d: %s", resp.StatusCode, text)
}
