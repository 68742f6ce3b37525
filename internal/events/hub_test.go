package events_test

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"

	"gigfinder/internal/events"
)

func TestHub_PublishReachesSubscribers(t *testing.T) {
	h := events.NewHub()
	a := h.Subscribe()
	b := h.Subscribe()
	defer h.Unsubscribe(a)
	defer h.Unsubscribe(b)

	h.Publish("hello")

	if got := <-a; got != "hello" {
		t.Fatalf("a got %q", got)
	}
	if got := <-b; got != "hello" {
		t.Fatalf("b got %q", got)
	}
}

func TestHub_SlowSubscriberDoesNotBlock(t *testing.T) {
	h := events.NewHub()
	ch := h.Subscribe()
	defer h.Unsubscribe(ch)

	for i := 0; i < 100; i++ {
		h.Publish("x")
	}
	if len(ch) != cap(ch) {
		t.Fatalf("expected buffer full at %d, got %d", cap(ch), len(ch))
	}
}

func TestHub_UnsubscribeTwiceIsSafe(t *testing.T) {
	h := events.NewHub()
	ch := h.Subscribe()
	h.Unsubscribe(ch)
	h.Unsubscribe(ch)
	if h.Subscribers() != 0 {
		t.Fatalf("expected no subscribers, got %d", h.Subscribers())
	}
	h.Publish("after")
}

func TestMakeEvent_Envelope(t *testing.T) {
	raw := events.MakeEvent("req-1", events.TypeWorkerState, 1, map[string]string{"status": "Idle"})

	var e events.Event
	if err := json.Unmarshal([]byte(raw), &e); err != nil {
		t.Fatalf("invalid envelope: %v", err)
	}
	if _, err := uuid.Parse(e.ID); err != nil {
		t.Fatalf("expected uuid id, got %q", e.ID)
	}
	if e.Type != events.TypeWorkerState || e.Version != 1 || e.RequestID != "req-1" {
		t.Fatalf("unexpected envelope %+v", e)
	}
	if string(e.Data) != `{"status":"Idle"}` {
		t.Fatalf("unexpected data %s", e.Data)
	}
}
