package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/sgendron/loadpulse/internal/types"
)

func TestRunQuickTest(t *testing.T) {
	var gotPath string
	var gotBody map[string]string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Fatalf("Failed to decode request body: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(types.QuickTestResult{
			URL:          "http://example.com",
			Status:       200,
			Duration:     123,
			Success:      true,
			ResponseSize: 2048,
			Timestamp:    "2025-06-01T12:00:00Z",
		})
	}))
	defer server.Close()

	c := New(server.URL)
	result, err := c.RunQuickTest(context.Background(), "http://example.com")
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if gotPath != "/api/test" {
		t.Errorf("Expected POST to /api/test, got: %s", gotPath)
	}
	if gotBody["url"] != "http://example.com" {
		t.Errorf("Expected url 'http://example.com' in body, got: %s", gotBody["url"])
	}
	if !result.Success {
		t.Error("Expected success result")
	}
	if result.Status != 200 {
		t.Errorf("Expected status 200, got: %d", result.Status)
	}
	if result.ResponseSize != 2048 {
		t.Errorf("Expected response size 2048, got: %d", result.ResponseSize)
	}
}

func TestRunQuickTest_LogicalFailureStillDecodes(t *testing.T) {
	// The backend reports probe failures inside a 2xx body.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(types.QuickTestResult{
			URL:     "http://down.example.com",
			Status:  0,
			Success: false,
			Error:   "connection refused",
		})
	}))
	defer server.Close()

	c := New(server.URL)
	result, err := c.RunQuickTest(context.Background(), "http://down.example.com")
	if err != nil {
		t.Fatalf("Expected no transport error, got: %v", err)
	}
	if result.Success {
		t.Error("Expected logical failure")
	}
	if result.Error != "connection refused" {
		t.Errorf("Expected probe error text, got: %s", result.Error)
	}
}

func TestRunQuickTest_EmptyURL(t *testing.T) {
	c := New("http://localhost:1")
	if _, err := c.RunQuickTest(context.Background(), ""); err == nil {
		t.Error("Expected error for empty URL, got none")
	}
}

func TestStartLoadTest_ExactBody(t *testing.T) {
	var gotBody map[string]interface{}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/load" {
			t.Errorf("Expected POST to /api/load, got: %s", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Fatalf("Failed to decode request body: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(types.LoadTestAck{Status: "started", ID: "run-42"})
	}))
	defer server.Close()

	c := New(server.URL)
	ack, err := c.StartLoadTest(context.Background(), "http://x", 100, 10)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if gotBody["url"] != "http://x" {
		t.Errorf("Expected url 'http://x', got: %v", gotBody["url"])
	}
	if gotBody["requests"] != float64(100) {
		t.Errorf("Expected requests 100, got: %v", gotBody["requests"])
	}
	if gotBody["concurrency"] != float64(10) {
		t.Errorf("Expected concurrency 10, got: %v", gotBody["concurrency"])
	}
	if ack.Status != "started" {
		t.Errorf("Expected ack status 'started', got: %s", ack.Status)
	}
	if ack.ID != "run-42" {
		t.Errorf("Expected ack id 'run-42', got: %s", ack.ID)
	}
}

func TestStartLoadTest_TransportFailure(t *testing.T) {
	c := New("http://localhost:1") // nothing listens here
	if _, err := c.StartLoadTest(context.Background(), "http://x", 10, 2); err == nil {
		t.Error("Expected transport error, got none")
	}
}

func TestListLoadResults(t *testing.T) {
	var gotLimit string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/load-results" {
			t.Errorf("Expected GET /api/load-results, got: %s", r.URL.Path)
		}
		gotLimit = r.URL.Query().Get("limit")
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode([]types.LoadTestResult{
			{ID: "a", URL: "http://one", TotalRequests: 10, SuccessCount: 10},
			{ID: "b", URL: "http://two", TotalRequests: 20, SuccessCount: 15, ErrorCount: 5},
		})
	}))
	defer server.Close()

	c := New(server.URL)
	results, err := c.ListLoadResults(context.Background(), 20)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if gotLimit != "20" {
		t.Errorf("Expected limit=20, got: %s", gotLimit)
	}
	if len(results) != 2 {
		t.Fatalf("Expected 2 results, got: %d", len(results))
	}
	if results[0].ID != "a" {
		t.Errorf("Expected first result 'a', got: %s", results[0].ID)
	}
}

func TestListLoadResults_DefaultLimit(t *testing.T) {
	var gotLimit string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotLimit = r.URL.Query().Get("limit")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte("[]"))
	}))
	defer server.Close()

	c := New(server.URL)
	results, err := c.ListLoadResults(context.Background(), 0)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if gotLimit != "20" {
		t.Errorf("Expected default limit=20, got: %s", gotLimit)
	}
	if len(results) != 0 {
		t.Errorf("Expected empty result set, got: %d", len(results))
	}
}

func TestGetLoadResult(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/load-results/abc123" {
			t.Errorf("Expected GET /api/load-results/abc123, got: %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(types.LoadTestResult{
			ID:            "abc123",
			URL:           "http://x",
			TotalRequests: 100,
			SuccessCount:  90,
			ErrorCount:    10,
			StatusCodes:   map[string]int{"200": 90, "500": 10},
		})
	}))
	defer server.Close()

	c := New(server.URL)
	result, err := c.GetLoadResult(context.Background(), "abc123")
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if result.ID != "abc123" {
		t.Errorf("Expected id 'abc123', got: %s", result.ID)
	}
	if result.SuccessCount+result.ErrorCount != result.TotalRequests {
		t.Error("Expected success + error counts to equal total requests")
	}
	sum := 0
	for _, n := range result.StatusCodes {
		sum += n
	}
	if sum != result.TotalRequests {
		t.Errorf("Expected status code counts to sum to %d, got: %d", result.TotalRequests, sum)
	}
}

func TestGetLoadResult_NotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "Test not found", http.StatusNotFound)
	}))
	defer server.Close()

	c := New(server.URL)
	_, err := c.GetLoadResult(context.Background(), "missing")
	if err == nil {
		t.Fatal("Expected not-found error, got none")
	}
	if !strings.Contains(err.Error(), "not found") {
		t.Errorf("Expected 'not found' in error, got: %v", err)
	}
}

func TestWebSocketURL(t *testing.T) {
	tests := []struct {
		base string
		want string
	}{
		{"http://localhost:8080", "ws://localhost:8080/ws"},
		{"https://pulse.example.com", "wss://pulse.example.com/ws"},
		{"http://localhost:8080/", "ws://localhost:8080/ws"},
	}

	for _, tt := range tests {
		c := New(tt.base)
		if got := c.WebSocketURL(); got != tt.want {
			t.Errorf("WebSocketURL(%s) = %q, want %q", tt.base, got, tt.want)
		}
	}
}
