package repositories_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/storefront/app/models"
	"github.com/shashiranjanraj/storefront/app/repositories"
	"github.com/shashiranjanraj/storefront/pkg/orm"
	"github.com/shashiranjanraj/storefront/pkg/testkit"
)

func newOrder(userID uint, paymentID, status string) *models.Order {
	return &models.Order{
		UserID:       userID,
		Items:        []models.OrderItem{{ProductID: 1, Name: "Tee", Price: decimal.NewFromInt(10), Quantity: 1}},
		Total:        decimal.NewFromInt(10),
		Status:       status,
		PaymentID:    paymentID,
		DeliveryType: models.DeliveryTypePickup,
		DeliveryInfo: models.DeliveryInfo{Name: "Ada", Phone: "0800", PickupLocation: "Lekki store"},
	}
}

func TestOrderPaymentReferenceIsUnique(t *testing.T) {
	ctx := context.Background()
	repo := repositories.NewOrderRepository(testkit.SQLite(t, &models.Order{}, &models.OrderItem{}))

	require.NoError(t, repo.Create(ctx, newOrder(1, "ref_1", models.StatusProcessing)))

	err := repo.Create(ctx, newOrder(2, "ref_1", models.StatusProcessing))
	require.Error(t, err)
	assert.True(t, orm.IsDuplicate(err))

	taken, err := repo.PaymentExists(ctx, "ref_1")
	require.NoError(t, err)
	assert.True(t, taken)
}

func TestOrderSetStatusByPayment(t *testing.T) {
	ctx := context.Background()
	repo := repositories.NewOrderRepository(testkit.SQLite(t, &models.Order{}, &models.OrderItem{}))
	require.NoError(t, repo.Create(ctx, newOrder(1, "ref_1", models.StatusProcessing)))
	require.NoError(t, repo.Create(ctx, newOrder(1, "ref_2", models.StatusProcessing)))

	n, err := repo.SetStatusByPayment(ctx, "ref_1", models.StatusPaid)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	orders, err := repo.ForPayment(ctx, "ref_1")
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, models.StatusPaid, orders[0].Status)

	other, err := repo.ForPayment(ctx, "ref_2")
	require.NoError(t, err)
	assert.Equal(t, models.StatusProcessing, other[0].Status)
}
