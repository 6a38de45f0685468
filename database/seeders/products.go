package seeders

import (
	"context"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/shashiranjanraj/storefront/app/models"
)

func init() {
	Register("products", SeedProducts)
}

type sampleProduct struct {
	sku, name, category, price string
	stock                      int
}

var catalogue = []sampleProduct{
	{"SF-TEE-001", "Classic Cotton Tee", "apparel", "15.00", 40},
	{"SF-HOOD-002", "Pullover Hoodie", "apparel", "42.50", 25},
	{"SF-MUG-003", "Ceramic Mug", "home", "9.99", 60},
	{"SF-BAG-004", "Canvas Tote Bag", "accessories", "18.00", 30},
	{"SF-CAP-005", "Logo Cap", "accessories", "12.00", 0},
}

// SeedProducts inserts the sample catalogue. Existing SKUs are left alone.
func SeedProducts(_ context.Context, db *gorm.DB) error {
	products := make([]models.Product, 0, len(catalogue))
	for _, s := range catalogue {
		p := models.Product{
			SKU:      s.sku,
			Name:     s.name,
			Category: s.category,
			Price:    decimal.RequireFromString(s.price),
		}
		p.SetStock(s.stock)
		products = append(products, p)
	}
	return db.Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "sku"}}, DoNothing: true}).
		Create(&products).Error
}
