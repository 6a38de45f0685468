package models

import (
	"slices"

	"github.com/shopspring/decimal"
)

const (
	StatusProcessing = "processing"
	StatusPaid       = "paid"
	StatusFailed     = "failed"
	StatusShipped    = "shipped"
	StatusDelivered  = "delivered"
	StatusCancelled  = "cancelled"
)

// Statuses lists every valid order status.
var Statuses = []string{
	StatusProcessing, StatusPaid, StatusFailed,
	StatusShipped, StatusDelivered, StatusCancelled,
}

func ValidStatus(s string) bool { return slices.Contains(Statuses, s) }

const (
	DeliveryTypeDelivery = "delivery"
	DeliveryTypePickup   = "pickup"
)

type DeliveryInfo struct {
	Name           string `gorm:"size:255" json:"name" validate:"required,max=255"`
	Phone          string `gorm:"size:50" json:"phone" validate:"required,max=50"`
	Address        string `gorm:"size:512" json:"address,omitempty" validate:"nullable,max=512"`
	City           string `gorm:"size:100" json:"city,omitempty" validate:"nullable,max=100"`
	State          string `gorm:"size:100" json:"state,omitempty" validate:"nullable,max=100"`
	PickupLocation string `gorm:"size:255" json:"pickupLocation,omitempty" validate:"nullable,max=255"`
}

// Order is the immutable record of a checkout. Only Status changes after
// creation.
type Order struct {
	Model
	UserID       uint            `gorm:"not null;index" json:"userId"`
	Items        []OrderItem     `gorm:"constraint:OnDelete:CASCADE" json:"items"`
	Total        decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"total"`
	Status       string          `gorm:"size:20;not null;index;default:processing" json:"status"`
	PaymentID    string          `gorm:"size:191;uniqueIndex;not null" json:"paymentId"`
	DeliveryType string          `gorm:"size:20;not null" json:"deliveryType"`
	DeliveryInfo DeliveryInfo    `gorm:"embedded;embeddedPrefix:delivery_" json:"deliveryInfo"`
}

// OrderItem is a denormalized copy of a cart line.
type OrderItem struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	OrderID   uint            `gorm:"index;not null" json:"-"`
	ProductID uint            `gorm:"index;not null" json:"productId"`
	Name      string          `gorm:"size:255;not null" json:"name"`
	Price     decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"price"`
	Image     string          `gorm:"size:512" json:"image"`
	Quantity  int             `gorm:"not null" json:"quantity"`
}

func (i OrderItem) Subtotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// All returns every persisted model, in dependency order.
func All() []any {
	return []any{&User{}, &Product{}, &Cart{}, &CartItem{}, &Order{}, &OrderItem{}}
}
