package services

import (
	"context"
	"fmt"

	"github.com/shashiranjanraj/storefront/app/models"
	"github.com/shashiranjanraj/storefront/app/repositories"
	"github.com/shashiranjanraj/storefront/pkg/orm"
)

type AddToCartInput struct {
	ProductID uint `json:"productId" validate:"required"`
	Quantity  int  `json:"quantity" validate:"required,gte=1"`
}

type SetQuantityInput struct {
	Quantity int `json:"quantity" validate:"required,gte=1"`
}

type CartService struct {
	carts    *repositories.CartRepository
	products *repositories.ProductRepository
}

func NewCartService(carts *repositories.CartRepository, products *repositories.ProductRepository) *CartService {
	return &CartService{carts: carts, products: products}
}

// Get returns the user's cart. A user without one gets an empty, unsaved
// cart.
func (s *CartService) Get(ctx context.Context, userID uint) (*models.Cart, error) {
	cart, err := s.carts.ForUser(ctx, userID)
	if orm.IsNotFound(err) {
		return &models.Cart{UserID: userID, Items: []models.CartItem{}}, nil
	}
	return cart, err
}

// Add puts quantity units of a product in the cart, merging with an existing
// line. The line snapshots the product's current name, price and image.
func (s *CartService) Add(ctx context.Context, userID uint, in AddToCartInput) (*models.Cart, error) {
	product, err := s.product(ctx, in.ProductID)
	if err != nil {
		return nil, err
	}
	cart, err := s.carts.FirstOrCreate(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("add to cart: %w", err)
	}

	item, ok := cart.Item(product.ID)
	if !ok {
		item = &models.CartItem{CartID: cart.ID, ProductID: product.ID}
	}
	qty := item.Quantity + in.Quantity
	if qty > product.Stock {
		return nil, &InsufficientStockError{Item: product.Name, Requested: qty, Available: product.Stock}
	}
	item.Quantity = qty
	item.Name = product.Name
	item.Price = product.Price
	item.Image = product.Image

	if err := s.carts.SaveItem(ctx, item); err != nil {
		return nil, fmt.Errorf("add to cart: %w", err)
	}
	return s.carts.ForUser(ctx, userID)
}

// SetQuantity replaces the quantity of an existing line.
func (s *CartService) SetQuantity(ctx context.Context, userID, productID uint, quantity int) (*models.Cart, error) {
	cart, err := s.carts.ForUser(ctx, userID)
	if err != nil {
		if orm.IsNotFound(err) {
			return nil, ErrCartItemNotFound
		}
		return nil, err
	}
	item, ok := cart.Item(productID)
	if !ok {
		return nil, ErrCartItemNotFound
	}
	product, err := s.product(ctx, productID)
	if err != nil {
		return nil, err
	}
	if quantity > product.Stock {
		return nil, &InsufficientStockError{Item: product.Name, Requested: quantity, Available: product.Stock}
	}
	item.Quantity = quantity
	if err := s.carts.SaveItem(ctx, item); err != nil {
		return nil, fmt.Errorf("update cart: %w", err)
	}
	return s.carts.ForUser(ctx, userID)
}

func (s *CartService) Remove(ctx context.Context, userID, productID uint) (*models.Cart, error) {
	cart, err := s.carts.ForUser(ctx, userID)
	if err != nil {
		if orm.IsNotFound(err) {
			return nil, ErrCartItemNotFound
		}
		return nil, err
	}
	removed, err := s.carts.DeleteItem(ctx, cart.ID, productID)
	if err != nil {
		return nil, fmt.Errorf("remove from cart: %w", err)
	}
	if !removed {
		return nil, ErrCartItemNotFound
	}
	return s.carts.ForUser(ctx, userID)
}

// Clear empties the cart. Clearing a missing cart is not an error.
func (s *CartService) Clear(ctx context.Context, userID uint) error {
	cart, err := s.carts.ForUser(ctx, userID)
	if err != nil {
		if orm.IsNotFound(err) {
			return nil
		}
		return err
	}
	return s.carts.ClearItems(ctx, cart.ID)
}

func (s *CartService) product(ctx context.Context, id uint) (*models.Product, error) {
	p, err := s.products.Find(ctx, id)
	if err != nil {
		if orm.IsNotFound(err) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return p, nil
}
