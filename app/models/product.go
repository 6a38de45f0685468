package models

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Product is a catalogue entry. InStock mirrors Stock > 0 and must be kept in
// step through SetStock or the conditional decrement in checkout.
type Product struct {
	Model
	SKU         string          `gorm:"size:100;uniqueIndex;not null" json:"sku"`
	Name        string          `gorm:"size:255;not null;index" json:"name"`
	Description string          `gorm:"type:text" json:"description"`
	Category    string          `gorm:"size:100;index" json:"category"`
	Image       string          `gorm:"size:512" json:"image"`
	Price       decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"price"`
	Stock       int             `gorm:"not null;default:0" json:"stock"`
	InStock     bool            `gorm:"not null;default:false;index" json:"inStock"`
	DeletedAt   gorm.DeletedAt  `gorm:"index" json:"-"`
}

func (p *Product) SetStock(n int) {
	if n < 0 {
		n = 0
	}
	p.Stock = n
	p.InStock = n > 0
}
