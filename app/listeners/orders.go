// Package listeners fans domain events out to the admin websocket feed and
// the Kafka orders topic.
package listeners

import (
	"context"
	"strconv"

	"github.com/shashiranjanraj/storefront/app/events"
	"github.com/shashiranjanraj/storefront/pkg/event"
	"github.com/shashiranjanraj/storefront/pkg/kafka"
	"github.com/shashiranjanraj/storefront/pkg/logger"
)

// Broadcaster is satisfied by *ws.Hub.
type Broadcaster interface {
	BroadcastJSON(v any) error
}

// Publisher is satisfied by *kafka.Producer.
type Publisher interface {
	Publish(key string, env kafka.Envelope) error
}

// RegisterOrders subscribes to the order events. Either sink may be nil. The
// returned function removes the subscriptions.
func RegisterOrders(hub Broadcaster, pub Publisher) (unregister func()) {
	h := func(ctx context.Context, payload any) {
		e, ok := payload.(events.OrderEvent)
		if !ok {
			logger.WithCtx(ctx).Warn("listeners: unexpected order payload")
			return
		}
		if hub != nil {
			if err := hub.BroadcastJSON(e); err != nil {
				logger.WithCtx(ctx).Warn("listeners: websocket broadcast failed", "order_id", e.OrderID, "error", err)
			}
		}
		if pub != nil {
			publish(ctx, pub, e)
		}
	}

	removers := []func(){
		event.Listen(events.OrderCreated, h),
		event.Listen(events.OrderStatusChanged, h),
	}
	return func() {
		for _, rm := range removers {
			rm()
		}
	}
}

func publish(ctx context.Context, pub Publisher, e events.OrderEvent) {
	env, err := kafka.NewEnvelope(e.Type, e)
	if err != nil {
		logger.WithCtx(ctx).Error("listeners: kafka envelope", "order_id", e.OrderID, "error", err)
		return
	}
	if err := pub.Publish(strconv.FormatUint(uint64(e.OrderID), 10), env); err != nil {
		logger.WithCtx(ctx).Warn("listeners: kafka publish failed", "order_id", e.OrderID, "event", e.Type, "error", err)
	}
}
