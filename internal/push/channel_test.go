package push

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

func TestDecode_QuickResult(t *testing.T) {
	payload := []byte(`{"type":"test_result","data":{"url":"http://x","status":200,"duration":42,"success":true}}`)

	event, err := decode(payload)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if event == nil {
		t.Fatal("Expected event, got nil")
	}
	if event.Type != TypeQuickResult {
		t.Errorf("Expected type %s, got: %s", TypeQuickResult, event.Type)
	}
	if event.Quick == nil {
		t.Fatal("Expected quick result payload, got nil")
	}
	if event.Load != nil {
		t.Error("Quick result must never populate the load payload")
	}
	if event.Quick.Status != 200 {
		t.Errorf("Expected status 200, got: %d", event.Quick.Status)
	}
}

func TestDecode_LoadResult(t *testing.T) {
	payload := []byte(`{"type":"load_test_result","data":{"id":"abc","url":"http://x","total_requests":100,"success_count":90,"error_count":10,"status_codes":{"200":90,"500":10}}}`)

	event, err := decode(payload)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if event == nil {
		t.Fatal("Expected event, got nil")
	}
	if event.Type != TypeLoadResult {
		t.Errorf("Expected type %s, got: %s", TypeLoadResult, event.Type)
	}
	if event.Load == nil {
		t.Fatal("Expected load result payload, got nil")
	}
	if event.Quick != nil {
		t.Error("Load result must never populate the quick payload")
	}
	if event.Load.TotalRequests != 100 {
		t.Errorf("Expected 100 total requests, got: %d", event.Load.TotalRequests)
	}
	if event.Load.StatusCodes["200"] != 90 {
		t.Errorf("Expected 90 occurrences of 200, got: %d", event.Load.StatusCodes["200"])
	}
}

func TestDecode_UnknownTypeIgnored(t *testing.T) {
	payload := []byte(`{"type":"unknown","data":{"whatever":true}}`)

	event, err := decode(payload)
	if err != nil {
		t.Fatalf("Expected no error for unknown type, got: %v", err)
	}
	if event != nil {
		t.Errorf("Expected unknown type to be ignored, got event: %+v", event)
	}
}

func TestDecode_MalformedPayload(t *testing.T) {
	tests := []struct {
		name    string
		payload string
	}{
		{"not json", "this is not json"},
		{"bad data shape", `{"type":"load_test_result","data":"not-an-object"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			event, err := decode([]byte(tt.payload))
			if err == nil {
				t.Error("Expected decode error, got none")
			}
			if event != nil {
				t.Errorf("Expected no event, got: %+v", event)
			}
		})
	}
}

func TestChannel_DeliversEventsInOrder(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"load_test_result","data":{"id":"first"}}`))
		conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"unknown","data":{}}`))
		conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"load_test_result","data":{"id":"second"}}`))

		// Hold the connection open until the client goes away
		_, _, _ = conn.ReadMessage()
	}))
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch := New(wsURL, 50*time.Millisecond, nil)
	go ch.Run(ctx)

	var ids []string
	timeout := time.After(2 * time.Second)
	for len(ids) < 2 {
		select {
		case event := <-ch.Events():
			if event.Type == TypeLoadResult {
				ids = append(ids, event.Load.ID)
			}
		case <-timeout:
			t.Fatalf("Timed out waiting for events, got: %v", ids)
		}
	}

	if ids[0] != "first" || ids[1] != "second" {
		t.Errorf("Expected events in arrival order [first second], got: %v", ids)
	}
}

func TestChannel_ReconnectsForever(t *testing.T) {
	var mu sync.Mutex
	connections := 0

	// Every connection is dropped immediately; the channel must keep
	// coming back.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		connections++
		mu.Unlock()

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		conn.Close()
	}))
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch := New(wsURL, 20*time.Millisecond, nil)
	go ch.Run(ctx)

	deadline := time.Now().Add(2 * time.Second)
	for {
		mu.Lock()
		n := connections
		mu.Unlock()
		if n >= 3 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("Expected at least 3 connection attempts, got: %d", n)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestChannel_SurvivesMalformedPayload(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		conn.WriteMessage(websocket.TextMessage, []byte(`garbage`))
		conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"load_test_result","data":{"id":"after-garbage"}}`))

		_, _, _ = conn.ReadMessage()
	}))
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch := New(wsURL, 50*time.Millisecond, nil)
	go ch.Run(ctx)

	timeout := time.After(2 * time.Second)
	for {
		select {
		case event := <-ch.Events():
			if event.Type == TypeLoadResult {
				if event.Load.ID != "after-garbage" {
					t.Errorf("Expected id 'after-garbage', got: %s", event.Load.ID)
				}
				return
			}
		case <-timeout:
			t.Fatal("Channel never delivered the event following a malformed payload")
		}
	}
}

func TestChannel_EmitsStateTransitions(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		conn.Close() // force a reconnect cycle
	}))
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch := New(wsURL, 20*time.Millisecond, nil)
	go ch.Run(ctx)

	sawConnected := false
	sawReconnecting := false
	timeout := time.After(2 * time.Second)
	for !(sawConnected && sawReconnecting) {
		select {
		case event := <-ch.Events():
			if event.Type != TypeState {
				continue
			}
			switch event.State {
			case StateConnected:
				sawConnected = true
			case StateReconnecting:
				sawReconnecting = true
			}
		case <-timeout:
			t.Fatalf("Missing state transitions (connected=%v reconnecting=%v)", sawConnected, sawReconnecting)
		}
	}
}

func TestChannel_StopsOnContextCancel(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		_, _, _ = conn.ReadMessage()
	}))
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http")

	ctx, cancel := context.WithCancel(context.Background())

	ch := New(wsURL, 20*time.Millisecond, nil)
	done := make(chan struct{})
	go func() {
		ch.Run(ctx)
		close(done)
	}()

	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after context cancellation")
	}
}
