package listeners_test

import (
	"context"
	"encoding/json"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/storefront/app/events"
	"github.com/shashiranjanraj/storefront/app/listeners"
	"github.com/shashiranjanraj/storefront/pkg/event"
	"github.com/shashiranjanraj/storefront/pkg/kafka"
)

type fakeHub struct {
	mu   sync.Mutex
	sent []any
}

func (h *fakeHub) BroadcastJSON(v any) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.sent = append(h.sent, v)
	return nil
}

type fakePublisher struct {
	keys []string
	envs []kafka.Envelope
}

func (p *fakePublisher) Publish(key string, env kafka.Envelope) error {
	p.keys = append(p.keys, key)
	p.envs = append(p.envs, env)
	return nil
}

func TestRegisterOrdersFansOut(t *testing.T) {
	hub := &fakeHub{}
	pub := &fakePublisher{}
	unregister := listeners.RegisterOrders(hub, pub)
	defer unregister()

	e := events.OrderEvent{Type: events.OrderCreated, OrderID: 42, Status: "processing", Total: decimal.NewFromInt(20)}
	event.Fire(context.Background(), events.OrderCreated, e)

	require.Len(t, hub.sent, 1)
	assert.Equal(t, e, hub.sent[0])

	require.Len(t, pub.envs, 1)
	assert.Equal(t, "42", pub.keys[0])
	assert.Equal(t, events.OrderCreated, pub.envs[0].EventType)

	var decoded events.OrderEvent
	require.NoError(t, json.Unmarshal(pub.envs[0].Payload, &decoded))
	assert.EqualValues(t, 42, decoded.OrderID)
}

func TestUnregisterStopsDelivery(t *testing.T) {
	hub := &fakeHub{}
	listeners.RegisterOrders(hub, nil)()

	event.Fire(context.Background(), events.OrderStatusChanged, events.OrderEvent{OrderID: 1})
	assert.Empty(t, hub.sent)
}
