package events

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestWebhookDispatcherDeliversToAllEndpoints(t *testing.T) {
	var mu sync.Mutex
	type hit struct {
		event string
		body  Message
	}
	hits := map[string][]hit{}

	handler := func(name string) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			raw, _ := io.ReadAll(r.Body)
			var m Message
			if err := json.Unmarshal(raw, &m); err != nil {
				t.Errorf("bad payload at %s: %v", name, err)
			}
			mu.Lock()
			hits[name] = append(hits[name], hit{event: r.Header.Get("X-Oakmart-Event"), body: m})
			mu.Unlock()
			w.WriteHeader(http.StatusNoContent)
		}
	}
	s1 := httptest.NewServer(handler("one"))
	defer s1.Close()
	s2 := httptest.NewServer(handler("two"))
	defer s2.Close()

	d := NewWebhookDispatcher(testLogger(t), []string{s1.URL, s2.URL})

	msg := Message{
		ID:         uuid.New(),
		Event:      EventSetUpdated,
		OccurredAt: time.Now(),
		Payload:    map[string]any{"slug": "apparel-shoes"},
	}
	d.Dispatch(context.Background(), msg)

	mu.Lock()
	defer mu.Unlock()
	for _, name := range []string{"one", "two"} {
		got := hits[name]
		if len(got) != 1 {
			t.Fatalf("endpoint %s: want 1 delivery, got %d", name, len(got))
		}
		if got[0].event != EventSetUpdated {
			t.Fatalf("endpoint %s: event header want=%q got=%q", name, EventSetUpdated, got[0].event)
		}
		if got[0].body.ID != msg.ID {
			t.Fatalf("endpoint %s: wrong message id", name)
		}
	}
}

func TestWebhookDispatcherToleratesFailingEndpoint(t *testing.T) {
	var mu sync.Mutex
	delivered := 0
	ok := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		delivered++
		mu.Unlock()
	}))
	defer ok.Close()
	failing := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer failing.Close()

	d := NewWebhookDispatcher(testLogger(t), []string{failing.URL, "http://127.0.0.1:1/unreachable", ok.URL})
	d.Dispatch(context.Background(), Message{ID: uuid.New(), Event: EventSetDeleted})

	mu.Lock()
	defer mu.Unlock()
	if delivered != 1 {
		t.Fatalf("healthy endpoint must still be hit, got %d", delivered)
	}
}

func TestWebhookDispatcherStartWiresBus(t *testing.T) {
	var mu sync.Mutex
	count := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		count++
		mu.Unlock()
	}))
	defer srv.Close()

	bus := NewMemoryBus(testLogger(t))
	defer bus.Close()

	d := NewWebhookDispatcher(testLogger(t), []string{srv.URL})
	if err := d.Start(context.Background(), bus); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := bus.Publish(context.Background(), Message{ID: uuid.New(), Event: EventSetCreated}); err != nil {
		t.Fatalf("publish: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if count != 1 {
		t.Fatalf("want 1 delivery via bus, got %d", count)
	}
}
