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

func seedProduct(t *testing.T, repo *repositories.ProductRepository, sku, category string, stock int) *models.Product {
	t.Helper()
	p := &models.Product{SKU: sku, Name: sku, Category: category, Price: decimal.NewFromInt(5)}
	p.SetStock(stock)
	require.NoError(t, repo.Create(context.Background(), p))
	return p
}

func TestDecrementStock(t *testing.T) {
	ctx := context.Background()
	repo := repositories.NewProductRepository(testkit.SQLite(t, &models.Product{}))
	p := seedProduct(t, repo, "TEE-1", "", 3)

	ok, err := repo.DecrementStock(ctx, p.ID, 2)
	require.NoError(t, err)
	assert.True(t, ok)

	got, err := repo.Find(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Stock)
	assert.True(t, got.InStock)

	ok, err = repo.DecrementStock(ctx, p.ID, 2)
	require.NoError(t, err)
	assert.False(t, ok, "guard refuses to go negative")

	ok, err = repo.DecrementStock(ctx, p.ID, 1)
	require.NoError(t, err)
	assert.True(t, ok)

	got, err = repo.Find(ctx, p.ID)
	require.NoError(t, err)
	assert.Zero(t, got.Stock)
	assert.False(t, got.InStock, "in_stock follows the new stock")

	ok, err = repo.DecrementStock(ctx, 999, 1)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestProductFiltersAndSoftDelete(t *testing.T) {
	ctx := context.Background()
	repo := repositories.NewProductRepository(testkit.SQLite(t, &models.Product{}))
	tee := seedProduct(t, repo, "TEE-1", "apparel", 1)
	seedProduct(t, repo, "HOOD-1", "apparel", 0)
	seedProduct(t, repo, "MUG-1", "home", 4)

	apparel, page, err := repo.Paginate(ctx, repositories.ProductFilter{Category: "apparel"}, 1, 10)
	require.NoError(t, err)
	assert.Len(t, apparel, 2)
	assert.EqualValues(t, 2, page.Total)

	inStock := true
	slice, err := repo.Slice(ctx, repositories.ProductFilter{InStock: &inStock}, 1, 1)
	require.NoError(t, err)
	require.Len(t, slice, 1)
	assert.Equal(t, "MUG-1", slice[0].SKU)

	require.NoError(t, repo.Delete(ctx, tee.ID))
	_, err = repo.Find(ctx, tee.ID)
	assert.True(t, orm.IsNotFound(err))
	assert.ErrorIs(t, repo.Delete(ctx, tee.ID), orm.ErrNotFound)
}
