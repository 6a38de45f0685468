// Package events names the domain events fired through pkg/event and the
// payload they carry.
package events

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/shashiranjanraj/storefront/app/models"
)

const (
	OrderCreated       = "order.created"
	OrderStatusChanged = "order.status_changed"
)

// OrderEvent is the payload of both order events. It is what the admin
// websocket feed and the Kafka topic receive.
type OrderEvent struct {
	Type           string          `json:"type"`
	OrderID        uint            `json:"orderId"`
	UserID         uint            `json:"userId"`
	PaymentID      string          `json:"paymentId"`
	Status         string          `json:"status"`
	PreviousStatus string          `json:"previousStatus,omitempty"`
	Total          decimal.Decimal `json:"total"`
	Items          int             `json:"items"`
	OccurredAt     time.Time       `json:"occurredAt"`
}

// FromOrder builds an event snapshot of o.
func FromOrder(eventType string, o *models.Order, previous string) OrderEvent {
	return OrderEvent{
		Type:           eventType,
		OrderID:        o.ID,
		UserID:         o.UserID,
		PaymentID:      o.PaymentID,
		Status:         o.Status,
		PreviousStatus: previous,
		Total:          o.Total,
		Items:          len(o.Items),
		OccurredAt:     time.Now().UTC(),
	}
}
