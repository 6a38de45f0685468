package services_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/shashiranjanraj/storefront/app/models"
	"github.com/shashiranjanraj/storefront/app/repositories"
	"github.com/shashiranjanraj/storefront/app/services"
	"github.com/shashiranjanraj/storefront/pkg/testkit"
)

type fixture struct {
	t        *testing.T
	ctx      context.Context
	db       *gorm.DB
	users    *repositories.UserRepository
	products *repositories.ProductRepository
	carts    *repositories.CartRepository
	orders   *repositories.OrderRepository
}

func newFixture(t *testing.T) *fixture {
	db := testkit.SQLite(t, models.All()...)
	return &fixture{
		t:        t,
		ctx:      context.Background(),
		db:       db,
		users:    repositories.NewUserRepository(db),
		products: repositories.NewProductRepository(db),
		carts:    repositories.NewCartRepository(db),
		orders:   repositories.NewOrderRepository(db),
	}
}

func (f *fixture) user(email string) *models.User {
	f.t.Helper()
	u, err := models.NewUser("Ada", email, "secret123", "")
	require.NoError(f.t, err)
	require.NoError(f.t, f.users.Create(f.ctx, u))
	return u
}

func (f *fixture) product(sku, price string, stock int) *models.Product {
	f.t.Helper()
	p := &models.Product{SKU: sku, Name: "Product " + sku, Price: decimal.RequireFromString(price)}
	p.SetStock(stock)
	require.NoError(f.t, f.products.Create(f.ctx, p))
	return p
}

// cartWith puts qty of p straight into userID's cart, bypassing stock checks.
func (f *fixture) cartWith(userID uint, p *models.Product, qty int) {
	f.t.Helper()
	cart, err := f.carts.FirstOrCreate(f.ctx, userID)
	require.NoError(f.t, err)
	require.NoError(f.t, f.carts.SaveItem(f.ctx, &models.CartItem{
		CartID: cart.ID, ProductID: p.ID, Name: p.Name, Price: p.Price, Quantity: qty,
	}))
}

func (f *fixture) reload(p *models.Product) *models.Product {
	f.t.Helper()
	got, err := f.products.Find(f.ctx, p.ID)
	require.NoError(f.t, err)
	return got
}

func (f *fixture) order(userID uint, paymentID, status string) *models.Order {
	f.t.Helper()
	o := &models.Order{
		UserID:       userID,
		Total:        decimal.RequireFromString("10.00"),
		Status:       status,
		PaymentID:    paymentID,
		DeliveryType: models.DeliveryTypePickup,
		DeliveryInfo: models.DeliveryInfo{Name: "Ada", Phone: "0800", PickupLocation: "Main"},
	}
	require.NoError(f.t, f.orders.Create(f.ctx, o))
	return o
}

func pickupInput(paymentID string) services.PlaceOrderInput {
	return services.PlaceOrderInput{
		PaymentID:    paymentID,
		DeliveryType: models.DeliveryTypePickup,
		DeliveryInfo: models.DeliveryInfo{Name: "Ada", Phone: "08000000000", PickupLocation: "Lekki store"},
	}
}
