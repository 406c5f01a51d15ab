package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/oakmart/oakmart-backend/internal/events"
	"github.com/oakmart/oakmart-backend/internal/pkg/logger"
	"github.com/oakmart/oakmart-backend/internal/types"
)

// CatalogNotifier publishes set lifecycle events for downstream consumers
// (search-index sync, webhooks). Calls are fire-and-forget: publishing
// failures are logged and never surfaced to the mutation caller.
type CatalogNotifier interface {
	SetCreated(ctx context.Context, set *types.Set)
	SetUpdated(ctx context.Context, set *types.Set)
	SetDeleted(ctx context.Context, set *types.Set)
}

type catalogNotifier struct {
	log *logger.Logger
	bus events.Bus
}

func NewCatalogNotifier(baseLog *logger.Logger, bus events.Bus) CatalogNotifier {
	return &catalogNotifier{
		log: baseLog.With("service", "CatalogNotifier"),
		bus: bus,
	}
}

func (n *catalogNotifier) SetCreated(ctx context.Context, set *types.Set) {
	n.publish(ctx, events.EventSetCreated, set)
}

func (n *catalogNotifier) SetUpdated(ctx context.Context, set *types.Set) {
	n.publish(ctx, events.EventSetUpdated, set)
}

func (n *catalogNotifier) SetDeleted(ctx context.Context, set *types.Set) {
	n.publish(ctx, events.EventSetDeleted, set)
}

func (n *catalogNotifier) publish(ctx context.Context, event string, set *types.Set) {
	if n == nil || n.bus == nil || set == nil {
		return
	}
	msg := events.Message{
		ID:         uuid.New(),
		Event:      event,
		OccurredAt: time.Now().UTC(),
		Payload:    map[string]any{"set": set},
	}
	if err := n.bus.Publish(ctx, msg); err != nil {
		n.log.Warn("publish failed", "error", err, "event", event)
	}
}
