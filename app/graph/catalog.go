// Package graph defines the read-only GraphQL catalogue.
package graph

import (
	"errors"

	"github.com/graphql-go/graphql"

	"github.com/shashiranjanraj/storefront/app/models"
	"github.com/shashiranjanraj/storefront/app/repositories"
	"github.com/shashiranjanraj/storefront/app/services"
	gql "github.com/shashiranjanraj/storefront/pkg/graphql"
)

var productType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Product",
	Fields: graphql.Fields{
		"id":          &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
		"sku":         &graphql.Field{Type: graphql.String},
		"name":        &graphql.Field{Type: graphql.String},
		"description": &graphql.Field{Type: graphql.String},
		"category":    &graphql.Field{Type: graphql.String},
		"image":       &graphql.Field{Type: graphql.String},
		"price":       &graphql.Field{Type: graphql.String, Description: "Decimal price with two places."},
		"stock":       &graphql.Field{Type: graphql.Int},
		"inStock":     &graphql.Field{Type: graphql.Boolean},
	},
})

func view(p *models.Product) map[string]any {
	return map[string]any{
		"id":          int(p.ID),
		"sku":         p.SKU,
		"name":        p.Name,
		"description": p.Description,
		"category":    p.Category,
		"image":       p.Image,
		"price":       p.Price.StringFixed(2),
		"stock":       p.Stock,
		"inStock":     p.InStock,
	}
}

// CatalogSchema exposes products(limit, offset, category, inStock) and
// product(id).
func CatalogSchema(catalog *services.ProductService) (graphql.Schema, error) {
	query := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"products": &graphql.Field{
				Type: graphql.NewList(productType),
				Args: graphql.FieldConfigArgument{
					"limit":    &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 20},
					"offset":   &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 0},
					"category": &graphql.ArgumentConfig{Type: graphql.String},
					"inStock":  &graphql.ArgumentConfig{Type: graphql.Boolean},
				},
				Resolve: func(p graphql.ResolveParams) (any, error) {
					var f repositories.ProductFilter
					if c, ok := p.Args["category"].(string); ok {
						f.Category = c
					}
					if in, ok := p.Args["inStock"].(bool); ok {
						f.InStock = &in
					}
					limit, _ := p.Args["limit"].(int)
					offset, _ := p.Args["offset"].(int)

					products, err := catalog.Slice(p.Context, f, limit, offset)
					if err != nil {
						return nil, err
					}
					out := make([]map[string]any, len(products))
					for i := range products {
						out[i] = view(&products[i])
					}
					return out, nil
				},
			},
			"product": &graphql.Field{
				Type: productType,
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Int)},
				},
				Resolve: func(p graphql.ResolveParams) (any, error) {
					id, _ := p.Args["id"].(int)
					if id <= 0 {
						return nil, nil
					}
					product, err := catalog.Find(p.Context, uint(id))
					if errors.Is(err, services.ErrProductNotFound) {
						return nil, nil
					}
					if err != nil {
						return nil, err
					}
					return view(product), nil
				},
			},
		},
	})
	return gql.NewSchema(query)
}
