package sse

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/mcoot/tilekeeper/internal/testutil"
)

func TestFormatSSEMessage(t *testing.T) {
	tests := []struct {
		name      string
		eventName string
		data      string
		expected  string
	}{
		{
			name:      "single line data",
			eventName: "test-event",
			data:      "hello world",
			expected:  "event: test-event\ndata: hello world\n\n",
		},
		{
			name:      "multi-line data",
			eventName: "game_updated",
			data:      "{\n  \"id\": \"G1\"\n}",
			expected:  "event: game_updated\ndata: {\ndata:   \"id\": \"G1\"\ndata: }\n\n",
		},
		{
			name:      "empty data",
			eventName: "ping",
			data:      "",
			expected:  "event: ping\ndata: \n\n",
		},
		{
			name:      "data with carriage returns",
			eventName: "test",
			data:      "line1\r\nline2",
			expected:  "event: test\ndata: line1\ndata: line2\n\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := formatSSEMessage(tt.eventName, tt.data)
			if string(result) != tt.expected {
				t.Errorf("formatSSEMessage(%q, %q)\ngot:  %q\nwant: %q",
					tt.eventName, tt.data, string(result), tt.expected)
			}
		})
	}
}

func TestSplitLines(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{
			name:     "single line",
			input:    "hello",
			expected: []string{"hello"},
		},
		{
			name:     "two lines",
			input:    "line1\nline2",
			expected: []string{"line1", "line2"},
		},
		{
			name:     "trailing newline",
			input:    "line1\n",
			expected: []string{"line1"},
		},
		{
			name:     "empty string",
			input:    "",
			expected: []string{""},
		},
		{
			name:     "crlf line endings",
			input:    "line1\r\nline2\r\n",
			expected: []string{"line1", "line2"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := splitLines(tt.input)
			if len(result) != len(tt.expected) {
				t.Errorf("splitLines(%q) returned %d lines, want %d",
					tt.input, len(result), len(tt.expected))
				return
			}
			for i, line := range result {
				if line != tt.expected[i] {
					t.Errorf("splitLines(%q)[%d] = %q, want %q",
						tt.input, i, line, tt.expected[i])
				}
			}
		})
	}
}

func newTestHub() *Hub {
	hub := NewHub("GAME1", testutil.NopLogger())
	go hub.Run()
	return hub
}

func TestHub_RegisterAndBroadcast(t *testing.T) {
	hub := newTestHub()
	defer hub.Close()

	client := NewClient(hub, "viewer1")
	hub.Register(client)

	// Give the hub time to process registration
	time.Sleep(10 * time.Millisecond)

	if hub.ClientCount() != 1 {
		t.Errorf("ClientCount() = %d, want 1", hub.ClientCount())
	}

	hub.BroadcastEvent("test-event", "test data")

	select {
	case msg := <-client.send:
		expected := "event: test-event\ndata: test data\n\n"
		if string(msg) != expected {
			t.Errorf("client received %q, want %q", string(msg), expected)
		}
	case <-time.After(100 * time.Millisecond):
		t.Error("client did not receive message")
	}
}

func TestHub_Unregister(t *testing.T) {
	hub := newTestHub()
	defer hub.Close()

	client := NewClient(hub, "viewer1")
	hub.Register(client)
	time.Sleep(10 * time.Millisecond)

	hub.Unregister(client)
	time.Sleep(10 * time.Millisecond)

	if hub.ClientCount() != 0 {
		t.Errorf("ClientCount() = %d after unregister, want 0", hub.ClientCount())
	}
	if _, ok := <-client.send; ok {
		t.Error("client channel should be closed after unregister")
	}
}

func TestHub_BroadcastToMultipleClients(t *testing.T) {
	hub := newTestHub()
	defer hub.Close()

	clients := []*Client{
		NewClient(hub, "viewer1"),
		NewClient(hub, "viewer2"),
		NewClient(hub, "viewer3"),
	}
	for _, c := range clients {
		hub.Register(c)
	}
	time.Sleep(10 * time.Millisecond)

	hub.BroadcastEvent("update", "data")

	for i, client := range clients {
		select {
		case msg := <-client.send:
			expected := "event: update\ndata: data\n\n"
			if string(msg) != expected {
				t.Errorf("client %d received %q, want %q", i+1, string(msg), expected)
			}
		case <-time.After(100 * time.Millisecond):
			t.Errorf("client %d did not receive message", i+1)
		}
	}
}

func TestHub_CloseDisconnectsClients(t *testing.T) {
	hub := newTestHub()

	client := NewClient(hub, "viewer1")
	hub.Register(client)
	time.Sleep(10 * time.Millisecond)

	hub.Close()
	hub.Close() // Closing twice is safe

	select {
	case _, ok := <-client.send:
		if ok {
			t.Error("expected closed channel")
		}
	case <-time.After(100 * time.Millisecond):
		t.Error("client channel was not closed")
	}

	if hub.Register(NewClient(hub, "late")) {
		t.Error("Register on a closed hub should fail")
	}
	hub.Unregister(client) // Must not block
}

func TestHubManager_Acquire(t *testing.T) {
	manager := NewHubManager(testutil.NopLogger())
	defer manager.CloseAll()

	hub1 := manager.Acquire("ABC123")
	if hub1 == nil {
		t.Fatal("Acquire returned nil")
	}

	hub2 := manager.Acquire("ABC123")
	if hub1 != hub2 {
		t.Error("Acquire returned different hub for same game")
	}

	hub3 := manager.Acquire("XYZ789")
	if hub3 == hub1 {
		t.Error("Acquire returned same hub for different game")
	}
	if manager.HubCount() != 2 {
		t.Errorf("HubCount = %d, want 2", manager.HubCount())
	}
}

func TestHubManager_GetHub(t *testing.T) {
	manager := NewHubManager(testutil.NopLogger())
	defer manager.CloseAll()

	if manager.GetHub("NOTEXIST") != nil {
		t.Error("GetHub returned non-nil for non-existent hub")
	}

	created := manager.Acquire("ABC123")
	if manager.GetHub("ABC123") != created {
		t.Error("GetHub returned different hub than Acquire")
	}
}

func TestHubManager_RemoveHub(t *testing.T) {
	manager := NewHubManager(testutil.NopLogger())

	hub := manager.Acquire("ABC123")
	manager.RemoveHub("ABC123")

	if manager.GetHub("ABC123") != nil {
		t.Error("Hub still exists after RemoveHub")
	}

	// Releasing a removed hub is a no-op
	manager.Release(hub)

	// Removing non-existent hub should not panic
	manager.RemoveHub("NOTEXIST")
}

func TestHubManager_ReleaseStopsHubAfterLastWatcher(t *testing.T) {
	manager := NewHubManager(testutil.NopLogger())
	defer manager.CloseAll()

	first := manager.Acquire("GAME1")
	second := manager.Acquire("GAME1")

	manager.Release(first)
	if manager.GetHub("GAME1") == nil {
		t.Fatal("hub removed while a watcher remains")
	}

	manager.Release(second)
	if manager.GetHub("GAME1") != nil {
		t.Error("hub still registered after the last watcher left")
	}
	if second.Register(NewClient(second, "late")) {
		t.Error("released hub should be closed")
	}

	// A new watcher gets a fresh hub
	if manager.Acquire("GAME1") == first {
		t.Error("Acquire reused a closed hub")
	}
}

func TestHubManager_ReleaseOfReplacedHub(t *testing.T) {
	manager := NewHubManager(testutil.NopLogger())
	defer manager.CloseAll()

	old := manager.Acquire("GAME1")
	manager.RemoveHub("GAME1")
	current := manager.Acquire("GAME1")

	manager.Release(old)
	if manager.GetHub("GAME1") != current {
		t.Error("releasing a removed hub dropped its replacement")
	}
}

func TestHubManager_ServeSSEReleasesHub(t *testing.T) {
	manager := NewHubManager(testutil.NopLogger())
	defer manager.CloseAll()

	ctx, cancel := context.WithCancel(context.Background())
	req := httptest.NewRequest(http.MethodGet, "/games/GAME1/events", nil).WithContext(ctx)
	rr := httptest.NewRecorder()

	done := make(chan struct{})
	go func() {
		manager.ServeSSE(rr, req, "GAME1")
		close(done)
	}()

	deadline := time.Now().Add(time.Second)
	for manager.GetHub("GAME1") == nil {
		if time.Now().After(deadline) {
			t.Fatal("hub was not created")
		}
		time.Sleep(5 * time.Millisecond)
	}

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("ServeSSE did not return")
	}

	if manager.GetHub("GAME1") != nil {
		t.Error("hub still registered after the last watcher left")
	}
	if manager.HubCount() != 0 {
		t.Errorf("HubCount = %d, want 0", manager.HubCount())
	}
}

func TestServeSSE_InitialEvents(t *testing.T) {
	hub := newTestHub()
	defer hub.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	req := httptest.NewRequest(http.MethodGet, "/games/GAME1/events", nil).WithContext(ctx)
	rr := httptest.NewRecorder()

	ServeSSE(rr, req, hub)

	if got := rr.Header().Get("Content-Type"); got != "text/event-stream" {
		t.Errorf("Content-Type = %q", got)
	}
	body := rr.Body.String()
	if !strings.Contains(body, "retry: 3000") {
		t.Errorf("missing retry header: %q", body)
	}
	if !strings.Contains(body, "event: connected\ndata: {\"status\":\"connected\"}") {
		t.Errorf("missing connected event: %q", body)
	}
}
