package push

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sgendron/loadpulse/internal/types"
)

// Message types the backend emits on the push channel. Anything else
// is skipped without error so future message kinds stay harmless.
const (
	TypeQuickResult = "test_result"
	TypeLoadResult  = "load_test_result"
	TypeState       = "_state" // synthesized locally, never on the wire
)

// DefaultReconnectDelay is the fixed wait between reconnection
// attempts. There is no backoff, cap, or jitter: the channel retries
// forever at this cadence.
const DefaultReconnectDelay = 3 * time.Second

const eventBuffer = 100

// State describes the connection lifecycle for the status bar.
type State string

const (
	StateConnected    State = "connected"
	StateReconnecting State = "reconnecting"
)

// Event is one dispatched push-channel occurrence: exactly one of
// Quick or Load is set for wire messages; state transitions carry only
// State.
type Event struct {
	Type  string
	Quick *types.QuickTestResult
	Load  *types.LoadTestResult
	State State
}

// Channel owns the single persistent connection to the backend's push
// endpoint. It is an explicitly constructed resource: callers create
// it, start Run in a goroutine, and consume Events until the context
// is cancelled. Only Run touches the underlying connection.
type Channel struct {
	url    string
	delay  time.Duration
	dialer *websocket.Dialer
	logger *log.Logger
	events chan Event
}

// New creates a push channel for the given websocket URL. The logger
// may be nil, in which case diagnostics are discarded (the TUI owns
// the screen).
func New(wsURL string, delay time.Duration, logger *log.Logger) *Channel {
	if delay <= 0 {
		delay = DefaultReconnectDelay
	}
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Channel{
		url:   wsURL,
		delay: delay,
		dialer: &websocket.Dialer{
			Proxy:            http.ProxyFromEnvironment,
			HandshakeTimeout: 45 * time.Second,
		},
		logger: logger,
		events: make(chan Event, eventBuffer),
	}
}

// Events returns the stream of dispatched events, strictly in arrival
// order.
func (c *Channel) Events() <-chan Event {
	return c.events
}

// Run connects and re-connects until ctx is cancelled. Every close,
// whether from a dial failure, a read error, or server-initiated
// termination, is followed by a fixed delay and another attempt; the
// loop itself never stops retrying.
func (c *Channel) Run(ctx context.Context) {
	for {
		if err := c.connectOnce(ctx); err != nil {
			c.logger.Printf("push channel closed: %v", err)
		}
		if ctx.Err() != nil {
			return
		}

		c.emit(ctx, Event{Type: TypeState, State: StateReconnecting})

		select {
		case <-ctx.Done():
			return
		case <-time.After(c.delay):
		}
	}
}

// connectOnce dials the endpoint and pumps messages until the
// connection dies. Malformed payloads are logged and skipped; they
// never terminate the connection.
func (c *Channel) connectOnce(ctx context.Context) error {
	conn, resp, err := c.dialer.DialContext(ctx, c.url, nil)
	if err != nil {
		if resp != nil {
			return fmt.Errorf("connection failed (HTTP %d): %w", resp.StatusCode, err)
		}
		return fmt.Errorf("connection failed: %w", err)
	}
	defer conn.Close()

	// Tear the read loop down when the context goes away; ReadMessage
	// has no context variant.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()

	c.emit(ctx, Event{Type: TypeState, State: StateConnected})

	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			return fmt.Errorf("read failed: %w", err)
		}

		event, err := decode(payload)
		if err != nil {
			c.logger.Printf("skipping malformed push payload: %v", err)
			continue
		}
		if event == nil {
			continue // unknown message type
		}

		c.emit(ctx, *event)
	}
}

func (c *Channel) emit(ctx context.Context, event Event) {
	select {
	case c.events <- event:
	case <-ctx.Done():
	}
}

// envelope is the wire framing of every push message.
type envelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// decode routes a raw payload to a typed event. Unknown types return
// (nil, nil): ignored, not an error.
func decode(payload []byte) (*Event, error) {
	var env envelope
	if err := json.Unmarshal(payload, &env); err != nil {
		return nil, fmt.Errorf("invalid envelope: %w", err)
	}

	switch env.Type {
	case TypeQuickResult:
		var result types.QuickTestResult
		if err := json.Unmarshal(env.Data, &result); err != nil {
			return nil, fmt.Errorf("invalid %s payload: %w", env.Type, err)
		}
		return &Event{Type: TypeQuickResult, Quick: &result}, nil

	case TypeLoadResult:
		var result types.LoadTestResult
		if err := json.Unmarshal(env.Data, &result); err != nil {
			return nil, fmt.Errorf("invalid %s payload: %w", env.Type, err)
		}
		return &Event{Type: TypeLoadResult, Load: &result}, nil

	default:
		return nil, nil
	}
}
