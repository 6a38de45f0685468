package graph_test

import (
	"context"
	"testing"

	"github.com/graphql-go/graphql"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/storefront/app/graph"
	"github.com/shashiranjanraj/storefront/app/models"
	"github.com/shashiranjanraj/storefront/app/repositories"
	"github.com/shashiranjanraj/storefront/app/services"
	"github.com/shashiranjanraj/storefront/pkg/testkit"
)

func catalogSchema(t *testing.T) graphql.Schema {
	t.Helper()
	db := testkit.SQLite(t, &models.Product{})
	for i, p := range []struct {
		sku, category string
		stock         int
	}{
		{"TEE-1", "apparel", 4},
		{"TEE-2", "apparel", 0},
		{"MUG-1", "kitchen", 9},
	} {
		product := models.Product{SKU: p.sku, Name: p.sku, Category: p.category, Price: decimal.NewFromInt(int64(i + 1))}
		product.SetStock(p.stock)
		require.NoError(t, db.Create(&product).Error)
	}

	schema, err := graph.CatalogSchema(services.NewProductService(repositories.NewProductRepository(db), nil))
	require.NoError(t, err)
	return schema
}

func run(t *testing.T, schema graphql.Schema, query string, vars map[string]any) map[string]any {
	t.Helper()
	res := graphql.Do(graphql.Params{
		Schema:         schema,
		RequestString:  query,
		VariableValues: vars,
		Context:        context.Background(),
	})
	require.Empty(t, res.Errors)
	data, ok := res.Data.(map[string]any)
	require.True(t, ok)
	return data
}

func TestProductsFilters(t *testing.T) {
	schema := catalogSchema(t)

	data := run(t, schema, `{ products(category: "apparel", inStock: true) { sku stock inStock } }`, nil)
	products := data["products"].([]any)
	require.Len(t, products, 1)
	assert.Equal(t, "TEE-1", products[0].(map[string]any)["sku"])

	data = run(t, schema, `{ products(limit: 2, offset: 1) { sku price } }`, nil)
	products = data["products"].([]any)
	require.Len(t, products, 2)
	assert.Equal(t, "TEE-2", products[0].(map[string]any)["sku"])
	assert.Equal(t, "2.00", products[0].(map[string]any)["price"])
}

func TestProductByID(t *testing.T) {
	schema := catalogSchema(t)

	data := run(t, schema, `query($id: Int!) { product(id: $id) { sku inStock } }`, map[string]any{"id": 3})
	assert.Equal(t, map[string]any{"sku": "MUG-1", "inStock": true}, data["product"])

	data = run(t, schema, `{ product(id: 404) { sku } }`, nil)
	assert.Nil(t, data["product"])
}
