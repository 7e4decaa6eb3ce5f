package types

// QuickTestResult is the outcome of a single diagnostic probe.
// Delivered synchronously in the body of POST /api/test.
type QuickTestResult struct {
	ID           string `json:"id"`
	URL          string `json:"url"`
	Method       string `json:"method,omitempty"`
	Status       int    `json:"status"`
	Duration     int64  `json:"duration"` // milliseconds
	Timestamp    string `json:"timestamp"`
	Success      bool   `json:"success"`
	Error        string `json:"error,omitempty"`
	ResponseSize int64  `json:"response_size"`
}

// LoadTestResult is the aggregate outcome of a multi-request run.
// Delivered over the push channel once the run completes, or fetched
// from history by id.
type LoadTestResult struct {
	ID              string         `json:"id"`
	URL             string         `json:"url"`
	TotalRequests   int            `json:"total_requests"`
	Concurrency     int            `json:"concurrency"`
	Duration        int64          `json:"duration"` // total wall time, milliseconds
	SuccessCount    int            `json:"success_count"`
	ErrorCount      int            `json:"error_count"`
	AvgResponseTime float64        `json:"avg_response_time"`
	MinResponseTime int64          `json:"min_response_time"`
	MaxResponseTime int64          `json:"max_response_time"`
	StatusCodes     map[string]int `json:"status_codes"`
	Timestamp       string         `json:"timestamp"`
}

// LoadTestAck is the acknowledgement returned by POST /api/load.
// The response never carries metrics; the authoritative result arrives
// later on the push channel. ID is optional and, when present, lets the
// client correlate the eventual push event with this submission.
type LoadTestAck struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	ID      string `json:"id,omitempty"`
}
