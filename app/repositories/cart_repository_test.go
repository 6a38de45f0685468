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

func TestCartLifecycle(t *testing.T) {
	ctx := context.Background()
	db := testkit.SQLite(t, models.All()...)
	carts := repositories.NewCartRepository(db)

	_, err := carts.ForUser(ctx, 7)
	assert.True(t, orm.IsNotFound(err))

	cart, err := carts.FirstOrCreate(ctx, 7)
	require.NoError(t, err)
	again, err := carts.FirstOrCreate(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, cart.ID, again.ID)

	for _, pid := range []uint{2, 1} {
		require.NoError(t, carts.SaveItem(ctx, &models.CartItem{
			CartID: cart.ID, ProductID: pid, Name: "p", Price: decimal.NewFromInt(1), Quantity: 1,
		}))
	}
	loaded, err := carts.ForUser(ctx, 7)
	require.NoError(t, err)
	require.Len(t, loaded.Items, 2)
	assert.EqualValues(t, 2, loaded.Items[0].ProductID, "insertion order")

	removed, err := carts.DeleteItem(ctx, cart.ID, 2)
	require.NoError(t, err)
	assert.True(t, removed)
	removed, err = carts.DeleteItem(ctx, cart.ID, 2)
	require.NoError(t, err)
	assert.False(t, removed)

	require.NoError(t, carts.Delete(ctx, loaded))
	_, err = carts.ForUser(ctx, 7)
	assert.True(t, orm.IsNotFound(err))

	var items int64
	require.NoError(t, db.Model(&models.CartItem{}).Count(&items).Error)
	assert.Zero(t, items)
}
