// Package migrations registers the storefront schema with pkg/migration.
// Blank-import it from the binary so the migrate commands can see it.
package migrations

import (
	"gorm.io/gorm"

	"github.com/shashiranjanraj/storefront/app/models"
	"github.com/shashiranjanraj/storefront/pkg/migration"
)

func init() {
	migration.Register("20260101000000_create_users_table", table(&models.User{}))
	migration.Register("20260101000001_create_products_table", table(&models.Product{}))
	migration.Register("20260101000002_create_carts_tables", table(&models.Cart{}, &models.CartItem{}))
	migration.Register("20260101000003_create_orders_tables", table(&models.Order{}, &models.OrderItem{}))
}

// table creates dst on the way up and drops it, children first, on the way
// down.
func table(dst ...any) migration.Migration {
	return migration.Func(
		func(db *gorm.DB) error { return db.AutoMigrate(dst...) },
		func(db *gorm.DB) error {
			for i := len(dst) - 1; i >= 0; i-- {
				if err := db.Migrator().DropTable(dst[i]); err != nil {
					return err
				}
			}
			return nil
		},
	)
}
