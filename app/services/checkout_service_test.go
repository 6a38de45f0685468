package services_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/shashiranjanraj/storefront/app/events"
	"github.com/shashiranjanraj/storefront/app/models"
	"github.com/shashiranjanraj/storefront/app/services"
	"github.com/shashiranjanraj/storefront/pkg/event"
	"github.com/shashiranjanraj/storefront/pkg/metrics"
	"github.com/shashiranjanraj/storefront/pkg/orm"
	"github.com/shashiranjanraj/storefront/pkg/testkit"
)

func TestPlaceOrder(t *testing.T) {
	f := newFixture(t)
	mails := testkit.NewMailRecorder()
	defer mails.Install()()

	var fired []events.OrderEvent
	defer event.Listen(events.OrderCreated, func(_ context.Context, payload any) {
		fired = append(fired, payload.(events.OrderEvent))
	})()

	u := f.user("ada@example.com")
	p := f.product("TEE-1", "10.00", 5)
	f.cartWith(u.ID, p, 2)
	created := testutil.ToFloat64(metrics.OrdersCreated)

	order, err := services.NewCheckoutService(f.db, nil).PlaceOrder(f.ctx, u.ID, pickupInput("ref_1"))
	require.NoError(t, err)

	assert.NotZero(t, order.ID)
	assert.Equal(t, "20", order.Total.String())
	assert.Equal(t, models.StatusProcessing, order.Status)
	assert.Equal(t, "ref_1", order.PaymentID)
	require.Len(t, order.Items, 1)
	assert.Equal(t, p.Name, order.Items[0].Name)
	assert.Equal(t, 2, order.Items[0].Quantity)

	after := f.reload(p)
	assert.Equal(t, 3, after.Stock)
	assert.True(t, after.InStock)

	_, err = f.carts.ForUser(f.ctx, u.ID)
	assert.True(t, orm.IsNotFound(err), "cart is deleted")

	stored, err := f.orders.Find(f.ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, "Lekki store", stored.DeliveryInfo.PickupLocation)
	assert.Len(t, stored.Items, 1)

	assert.Equal(t, created+1, testutil.ToFloat64(metrics.OrdersCreated))
	require.Len(t, fired, 1)
	assert.Equal(t, order.ID, fired[0].OrderID)

	assert.Eventually(t, func() bool { return mails.Count("Order confirmation #") == 1 }, 2*time.Second, 10*time.Millisecond)
	env := mails.Sent()[0]
	assert.Equal(t, []string{"ada@example.com"}, env.To)
	assert.Contains(t, env.Body, "20.00")
}

func TestPlaceOrderLastUnitsClearsInStock(t *testing.T) {
	f := newFixture(t)
	defer testkit.NewMailRecorder().Install()()

	u := f.user("ada@example.com")
	p := f.product("TEE-1", "10.00", 2)
	f.cartWith(u.ID, p, 2)

	_, err := services.NewCheckoutService(f.db, nil).PlaceOrder(f.ctx, u.ID, pickupInput(""))
	require.NoError(t, err)

	after := f.reload(p)
	assert.Zero(t, after.Stock)
	assert.False(t, after.InStock)
}

func TestPlaceOrderGeneratesPaymentID(t *testing.T) {
	f := newFixture(t)
	defer testkit.NewMailRecorder().Install()()

	u := f.user("ada@example.com")
	f.cartWith(u.ID, f.product("TEE-1", "10.00", 5), 1)

	order, err := services.NewCheckoutService(f.db, nil).PlaceOrder(f.ctx, u.ID, pickupInput("  "))
	require.NoError(t, err)
	assert.Len(t, order.PaymentID, 36)
}

func TestPlaceOrderInsufficientStockChangesNothing(t *testing.T) {
	f := newFixture(t)
	u := f.user("ada@example.com")
	plenty := f.product("TEE-1", "10.00", 5)
	scarce := f.product("MUG-1", "4.50", 1)
	f.cartWith(u.ID, plenty, 2)
	f.cartWith(u.ID, scarce, 3)
	failures := testutil.ToFloat64(metrics.CheckoutFailures.WithLabelValues("insufficient_stock"))

	_, err := services.NewCheckoutService(f.db, nil).PlaceOrder(f.ctx, u.ID, pickupInput("ref_1"))

	var stockErr *services.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, "insufficient stock for Product MUG-1", err.Error())
	assert.Equal(t, 3, stockErr.Requested)
	assert.Equal(t, 1, stockErr.Available)

	assert.Equal(t, 5, f.reload(plenty).Stock, "earlier decrement rolled back")
	assert.Equal(t, 1, f.reload(scarce).Stock)

	cart, err := f.carts.ForUser(f.ctx, u.ID)
	require.NoError(t, err)
	assert.Len(t, cart.Items, 2)

	exists, err := f.orders.PaymentExists(f.ctx, "ref_1")
	require.NoError(t, err)
	assert.False(t, exists)
	assert.Equal(t, failures+1, testutil.ToFloat64(metrics.CheckoutFailures.WithLabelValues("insufficient_stock")))
}

func TestPlaceOrderDeletedProduct(t *testing.T) {
	f := newFixture(t)
	u := f.user("ada@example.com")
	p := f.product("TEE-1", "10.00", 5)
	f.cartWith(u.ID, p, 1)
	require.NoError(t, f.products.Delete(f.ctx, p.ID))

	_, err := services.NewCheckoutService(f.db, nil).PlaceOrder(f.ctx, u.ID, pickupInput(""))
	assert.True(t, services.IsInsufficientStock(err))
}

func TestPlaceOrderEmptyCart(t *testing.T) {
	f := newFixture(t)
	u := f.user("ada@example.com")
	svc := services.NewCheckoutService(f.db, nil)

	_, err := svc.PlaceOrder(f.ctx, u.ID, pickupInput(""))
	assert.ErrorIs(t, err, services.ErrEmptyCart, "no cart at all")

	_, err = f.carts.FirstOrCreate(f.ctx, u.ID)
	require.NoError(t, err)
	_, err = svc.PlaceOrder(f.ctx, u.ID, pickupInput(""))
	assert.ErrorIs(t, err, services.ErrEmptyCart, "cart without items")
}

func TestPlaceOrderDuplicatePayment(t *testing.T) {
	f := newFixture(t)
	u := f.user("ada@example.com")
	p := f.product("TEE-1", "10.00", 5)
	f.order(u.ID, "ref_1", models.StatusPaid)
	f.cartWith(u.ID, p, 1)

	_, err := services.NewCheckoutService(f.db, nil).PlaceOrder(f.ctx, u.ID, pickupInput("ref_1"))
	assert.ErrorIs(t, err, services.ErrDuplicatePayment)
	assert.Equal(t, 5, f.reload(p).Stock)

	cart, err := f.carts.ForUser(f.ctx, u.ID)
	require.NoError(t, err)
	assert.Len(t, cart.Items, 1)
}

func TestPlaceOrderConcurrentCheckoutsNeverOversell(t *testing.T) {
	f := newFixture(t)
	defer testkit.NewMailRecorder().Install()()

	p := f.product("TEE-1", "10.00", 5)
	const buyers = 4
	ids := make([]uint, buyers)
	for i := range ids {
		u := f.user(string(rune('a'+i)) + "@example.com")
		f.cartWith(u.ID, p, 3)
		ids[i] = u.ID
	}

	svc := services.NewCheckoutService(f.db, nil)
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		ok, oops int
	)
	for _, id := range ids {
		wg.Add(1)
		go func(userID uint) {
			defer wg.Done()
			_, err := svc.PlaceOrder(f.ctx, userID, pickupInput(""))
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				ok++
			case services.IsInsufficientStock(err):
				oops++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}(id)
	}
	wg.Wait()

	assert.Equal(t, 1, ok)
	assert.Equal(t, buyers-1, oops)
	after := f.reload(p)
	assert.Equal(t, 2, after.Stock)
	assert.True(t, after.InStock)
}

// interleave runs competing once, inside the checkout transaction, right
// after the first query that PlaceOrder issues against table. It stands in
// for another checkout committing between a read and the write that
// depends on it.
func interleave(t *testing.T, f *fixture, table string, competing func(tx *gorm.DB)) {
	t.Helper()
	var once sync.Once
	err := f.db.Callback().Query().After("gorm:query").Register("test:interleave:"+table, func(tx *gorm.DB) {
		if tx.Error != nil || tx.Statement.Table != table {
			return
		}
		once.Do(func() { competing(tx.Session(&gorm.Session{NewDB: true})) })
	})
	require.NoError(t, err)
}

func TestPlaceOrderStockTakenAfterRead(t *testing.T) {
	f := newFixture(t)
	u := f.user("ada@example.com")
	p := f.product("TEE-1", "10.00", 5)
	f.cartWith(u.ID, p, 3)
	failures := testutil.ToFloat64(metrics.CheckoutFailures.WithLabelValues("insufficient_stock"))

	interleave(t, f, "products", func(tx *gorm.DB) {
		require.NoError(t, tx.Model(&models.Product{}).Where("id = ?", p.ID).Update("stock", 1).Error)
	})

	_, err := services.NewCheckoutService(f.db, nil).PlaceOrder(f.ctx, u.ID, pickupInput("ref_1"))

	var stockErr *services.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, 3, stockErr.Requested)
	assert.Equal(t, 5, stockErr.Available, "the read saw enough stock; the guarded decrement refused")

	after := f.reload(p)
	assert.Equal(t, 5, after.Stock, "the whole transaction rolled back")
	assert.True(t, after.InStock)

	cart, err := f.carts.ForUser(f.ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, 3, cart.Items[0].Quantity)

	exists, err := f.orders.PaymentExists(f.ctx, "ref_1")
	require.NoError(t, err)
	assert.False(t, exists)
	assert.Equal(t, failures+1, testutil.ToFloat64(metrics.CheckoutFailures.WithLabelValues("insufficient_stock")))
}

func TestPlaceOrderPaymentClaimedAfterCheck(t *testing.T) {
	f := newFixture(t)
	u := f.user("ada@example.com")
	rival := f.user("bob@example.com")
	p := f.product("TEE-1", "10.00", 5)
	f.cartWith(u.ID, p, 2)
	failures := testutil.ToFloat64(metrics.CheckoutFailures.WithLabelValues("duplicate_payment"))

	interleave(t, f, "orders", func(tx *gorm.DB) {
		require.NoError(t, tx.Create(&models.Order{
			UserID:       rival.ID,
			Total:        decimal.RequireFromString("10.00"),
			Status:       models.StatusProcessing,
			PaymentID:    "ref_1",
			DeliveryType: models.DeliveryTypePickup,
		}).Error)
	})

	_, err := services.NewCheckoutService(f.db, nil).PlaceOrder(f.ctx, u.ID, pickupInput("ref_1"))
	require.ErrorIs(t, err, services.ErrDuplicatePayment)

	assert.Equal(t, 5, f.reload(p).Stock)
	cart, err := f.carts.ForUser(f.ctx, u.ID)
	require.NoError(t, err)
	assert.Len(t, cart.Items, 1)
	assert.Equal(t, failures+1, testutil.ToFloat64(metrics.CheckoutFailures.WithLabelValues("duplicate_payment")))
}

func TestPlaceOrderInputCheck(t *testing.T) {
	in := services.PlaceOrderInput{DeliveryType: models.DeliveryTypeDelivery}
	errs := in.Check()
	assert.Contains(t, errs, "deliveryInfo.address")
	assert.Contains(t, errs, "deliveryInfo.city")

	in = services.PlaceOrderInput{DeliveryType: models.DeliveryTypePickup}
	assert.Contains(t, in.Check(), "deliveryInfo.pickupLocation")

	assert.Empty(t, pickupInput("").Check())
}
