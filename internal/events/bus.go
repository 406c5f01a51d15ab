package events

import (
	"context"
	"time"

	"github.com/google/uuid"
)

const (
	EventSetCreated = "set.created"
	EventSetUpdated = "set.updated"
	EventSetDeleted = "set.deleted"
)

// Message is one catalog domain event. Payload carries the persisted node
// representation; consumers (search-index sync, webhooks) treat it as opaque.
type Message struct {
	ID         uuid.UUID      `json:"id"`
	Event      string         `json:"event"`
	OccurredAt time.Time      `json:"occurred_at"`
	Payload    map[string]any `json:"payload"`
}

// Bus is a fire-and-forget publish/subscribe channel for catalog events.
// Delivery is at-least-once from the consumer's point of view.
type Bus interface {
	Publish(ctx context.Context, msg Message) error
	// StartForwarder consumes published messages until ctx is done, invoking
	// onMsg for each. It returns after the subscription is established.
	StartForwarder(ctx context.Context, onMsg func(m Message)) error
	Close() error
}
