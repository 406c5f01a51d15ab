package events

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/oakmart/oakmart-backend/internal/pkg/logger"
)

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("test")
	if err != nil {
		t.Fatalf("init logger: %v", err)
	}
	return log
}

func TestMemoryBusFanOut(t *testing.T) {
	bus := NewMemoryBus(testLogger(t))
	defer bus.Close()

	ctx := context.Background()
	var got []Message
	if err := bus.StartForwarder(ctx, func(m Message) {
		got = append(got, m)
	}); err != nil {
		t.Fatalf("start forwarder: %v", err)
	}

	msg := Message{
		ID:         uuid.New(),
		Event:      EventSetCreated,
		OccurredAt: time.Now(),
		Payload:    map[string]any{"slug": "apparel"},
	}
	if err := bus.Publish(ctx, msg); err != nil {
		t.Fatalf("publish: %v", err)
	}

	if len(got) != 1 {
		t.Fatalf("delivered: want=1 got=%d", len(got))
	}
	if got[0].Event != EventSetCreated || got[0].ID != msg.ID {
		t.Fatalf("wrong message delivered: %+v", got[0])
	}
}

func TestMemoryBusClosedDropsConsumers(t *testing.T) {
	bus := NewMemoryBus(testLogger(t))

	delivered := 0
	if err := bus.StartForwarder(context.Background(), func(Message) { delivered++ }); err != nil {
		t.Fatalf("start forwarder: %v", err)
	}
	if err := bus.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := bus.Publish(context.Background(), Message{ID: uuid.New(), Event: EventSetDeleted}); err != nil {
		t.Fatalf("publish after close: %v", err)
	}
	if delivered != 0 {
		t.Fatalf("no delivery expected after close, got %d", delivered)
	}
}
