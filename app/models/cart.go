package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Cart is the single mutable basket of a user. It is created on the first
// add and hard-deleted once an order is placed from it.
type Cart struct {
	Model
	UserID uint       `gorm:"uniqueIndex;not null" json:"userId"`
	Items  []CartItem `gorm:"constraint:OnDelete:CASCADE" json:"items"`
}

// CartItem snapshots the product name, price and image at add time.
type CartItem struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	CartID    uint            `gorm:"uniqueIndex:idx_cart_product;not null" json:"-"`
	ProductID uint            `gorm:"uniqueIndex:idx_cart_product;not null" json:"productId"`
	Name      string          `gorm:"size:255;not null" json:"name"`
	Price     decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"price"`
	Image     string          `gorm:"size:512" json:"image"`
	Quantity  int             `gorm:"not null" json:"quantity"`
	CreatedAt time.Time       `json:"createdAt"`
}

func (i CartItem) Subtotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Total sums price × quantity over the snapshot prices.
func (c *Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, it := range c.Items {
		total = total.Add(it.Subtotal())
	}
	return total
}

// Item returns the line for productID, if any.
func (c *Cart) Item(productID uint) (*CartItem, bool) {
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			return &c.Items[i], true
		}
	}
	return nil, false
}
