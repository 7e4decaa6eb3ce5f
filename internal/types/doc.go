/*
Package types defines the wire types shared between the loadpulse
client and the load-testing backend.

# Result Types

QuickTestResult:
  - One-shot diagnostic probe outcome
  - Returned synchronously by POST /api/test
  - Status 0 plus a non-empty Error means the probe never reached
    the target

LoadTestResult:
  - Aggregate outcome of a multi-request run
  - Pushed over the websocket once the run completes
  - Also returned by the history endpoints

LoadTestAck:
  - Acknowledgement body of POST /api/load
  - Carries no metrics; the result arrives out-of-band

# Invariants

For every LoadTestResult produced by the backend:
  - SuccessCount + ErrorCount == TotalRequests
  - The StatusCodes counts sum to TotalRequests
  - MinResponseTime <= AvgResponseTime <= MaxResponseTime
  - Duration >= MaxResponseTime

# Field Tags

JSON tags match the backend exactly (snake_case). Timestamps are
ISO-8601 text on the wire and are only parsed at render time.
*/
package types
