// Package event is an in-process publish/subscribe dispatcher.
//
// Checkout and the payment webhook fire domain events after their
// transaction commits; listeners fan them out to the admin websocket and
// Kafka. A listener that panics is logged and does not affect the others.
package event

import (
	"context"
	"sync"

	"github.com/shashiranjanraj/storefront/pkg/logger"
)

type Handler func(ctx context.Context, payload any)

type listener struct {
	id int
	h  Handler
}

var (
	mu       sync.RWMutex
	nextID   int
	handlers = map[string][]listener{}
)

// Listen registers h for name and returns a function that removes it.
func Listen(name string, h Handler) (remove func()) {
	mu.Lock()
	defer mu.Unlock()
	nextID++
	id := nextID
	handlers[name] = append(handlers[name], listener{id: id, h: h})

	return func() {
		mu.Lock()
		defer mu.Unlock()
		ls := handlers[name]
		for i, l := range ls {
			if l.id == id {
				handlers[name] = append(ls[:i:i], ls[i+1:]...)
				return
			}
		}
	}
}

// Fire calls every listener for name synchronously, in registration order.
func Fire(ctx context.Context, name string, payload any) {
	for _, l := range snapshot(name) {
		call(ctx, name, l.h, payload)
	}
}

// FireAsync calls every listener on its own goroutine. The listeners get a
// context detached from ctx's cancellation.
func FireAsync(ctx context.Context, name string, payload any) {
	detached := context.WithoutCancel(ctx)
	for _, l := range snapshot(name) {
		go call(detached, name, l.h, payload)
	}
}

// Flush removes all listeners.
func Flush() {
	mu.Lock()
	defer mu.Unlock()
	handlers = map[string][]listener{}
}

func snapshot(name string) []listener {
	mu.RLock()
	defer mu.RUnlock()
	return append([]listener(nil), handlers[name]...)
}

func call(ctx context.Context, name string, h Handler, payload any) {
	defer func() {
		if r := recover(); r != nil {
			logger.WithCtx(ctx).Error("event: listener panicked", "event", name, "panic", r)
		}
	}()
	h(ctx, payload)
}
