package events

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/oakmart/oakmart-backend/internal/pkg/logger"
)

// WebhookDispatcher forwards catalog events to configured HTTP endpoints.
// Delivery is best-effort: a failed endpoint is logged and does not block the
// others or the publisher.
type WebhookDispatcher struct {
	log       *logger.Logger
	client    *http.Client
	endpoints []string
}

func NewWebhookDispatcher(log *logger.Logger, endpoints []string) *WebhookDispatcher {
	return &WebhookDispatcher{
		log:       log.With("service", "WebhookDispatcher"),
		client:    &http.Client{Timeout: 10 * time.Second},
		endpoints: endpoints,
	}
}

// Start subscribes the dispatcher to the bus until ctx is done.
func (d *WebhookDispatcher) Start(ctx context.Context, bus Bus) error {
	if d == nil || bus == nil {
		return fmt.Errorf("webhook dispatcher not initialized")
	}
	if len(d.endpoints) == 0 {
		d.log.Info("no webhook endpoints configured, dispatcher idle")
		return nil
	}
	return bus.StartForwarder(ctx, func(m Message) {
		d.Dispatch(ctx, m)
	})
}

// Dispatch posts the message to every endpoint concurrently and waits for
// all deliveries to finish.
func (d *WebhookDispatcher) Dispatch(ctx context.Context, msg Message) {
	raw, err := json.Marshal(msg)
	if err != nil {
		d.log.Warn("webhook payload marshal failed", "error", err, "event", msg.Event)
		return
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, endpoint := range d.endpoints {
		endpoint := endpoint
		g.Go(func() error {
			req, err := http.NewRequestWithContext(gctx, http.MethodPost, endpoint, bytes.NewReader(raw))
			if err != nil {
				d.log.Warn("webhook request build failed", "error", err, "endpoint", endpoint)
				return nil
			}
			req.Header.Set("Content-Type", "application/json")
			req.Header.Set("X-Oakmart-Event", msg.Event)

			resp, err := d.client.Do(req)
			if err != nil {
				d.log.Warn("webhook delivery failed", "error", err, "endpoint", endpoint, "event", msg.Event)
				return nil
			}
			defer resp.Body.Close()
			if resp.StatusCode >= 300 {
				d.log.Warn("webhook delivery rejected", "status", resp.StatusCode, "endpoint", endpoint, "event", msg.Event)
			}
			return nil
		})
	}
	_ = g.Wait()
}
