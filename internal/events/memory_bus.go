package events

import (
	"context"
	"sync"

	"github.com/oakmart/oakmart-backend/internal/pkg/logger"
)

// memoryBus is an in-process Bus for local development and tests; it fans
// every published message out to all registered forwarders.
type memoryBus struct {
	log *logger.Logger

	mu        sync.RWMutex
	consumers []func(m Message)
	closed    bool
}

func NewMemoryBus(log *logger.Logger) Bus {
	return &memoryBus{log: log.With("service", "MemoryEventBus")}
}

func (b *memoryBus) Publish(ctx context.Context, msg Message) error {
	b.mu.RLock()
	consumers := make([]func(m Message), len(b.consumers))
	copy(consumers, b.consumers)
	b.mu.RUnlock()

	for _, onMsg := range consumers {
		onMsg(msg)
	}
	return nil
}

func (b *memoryBus) StartForwarder(ctx context.Context, onMsg func(m Message)) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.closed {
		b.consumers = append(b.consumers, onMsg)
	}
	return nil
}

func (b *memoryBus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	b.consumers = nil
	return nil
}
