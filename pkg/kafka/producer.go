// Package kafka publishes domain event envelopes to a Kafka topic.
//
// The producer owns one goroutine that drains a buffered inbox into a
// kafka-go Writer, so Publish never waits on the broker. A full inbox drops
// the message with a log line; Close flushes whatever is queued.
package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"

	"github.com/shashiranjanraj/storefront/pkg/logger"
)

var ErrClosed = errors.New("kafka: producer closed")

// Envelope wraps every event published by the store.
type Envelope struct {
	EventID    string          `json:"event_id"`
	EventType  string          `json:"event_type"`
	OccurredAt time.Time       `json:"occurred_at"`
	Payload    json.RawMessage `json:"payload"`
}

func NewEnvelope(eventType string, payload any) (Envelope, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Envelope{}, fmt.Errorf("kafka: marshal %s payload: %w", eventType, err)
	}
	return Envelope{
		EventID:    uuid.NewString(),
		EventType:  eventType,
		OccurredAt: time.Now().UTC(),
		Payload:    raw,
	}, nil
}

// Writer is the subset of *kafka.Writer the producer uses.
type Writer interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type Producer struct {
	w      Writer
	inbox  chan kafka.Message
	done   chan struct{}
	mu     sync.RWMutex
	closed bool
}

// NewProducer writes to topic on brokers, keyed by the Hash balancer so all
// events for one order land on one partition.
func NewProducer(brokers []string, topic string, buf int) *Producer {
	return NewProducerWithWriter(&kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		BatchTimeout: 50 * time.Millisecond,
	}, buf)
}

func NewProducerWithWriter(w Writer, buf int) *Producer {
	if buf <= 0 {
		buf = 256
	}
	p := &Producer{
		w:     w,
		inbox: make(chan kafka.Message, buf),
		done:  make(chan struct{}),
	}
	go p.loop()
	return p
}

func (p *Producer) loop() {
	defer close(p.done)
	for m := range p.inbox {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := p.w.WriteMessages(ctx, m); err != nil {
			logger.Error("kafka: write failed", "key", string(m.Key), "error", err)
		}
		cancel()
	}
	if err := p.w.Close(); err != nil {
		logger.Error("kafka: close writer", "error", err)
	}
}

// Publish queues env under key without blocking.
func (p *Producer) Publish(key string, env Envelope) error {
	value, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("kafka: marshal envelope: %w", err)
	}
	msg := kafka.Message{
		Key:   []byte(key),
		Value: value,
		Time:  env.OccurredAt,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(env.EventType)},
		},
	}

	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrClosed
	}
	select {
	case p.inbox <- msg:
		return nil
	default:
		logger.Warn("kafka: inbox full, dropping event", "event", env.EventType, "key", key)
		return fmt.Errorf("kafka: inbox full")
	}
}

// Close stops accepting events and waits until queued ones are written or
// ctx expires.
func (p *Producer) Close(ctx context.Context) error {
	p.mu.Lock()
	if !p.closed {
		p.closed = true
		close(p.inbox)
	}
	p.mu.Unlock()

	select {
	case <-p.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
