package repositories

import (
	"context"

	"gorm.io/gorm"

	"github.com/shashiranjanraj/storefront/app/models"
	"github.com/shashiranjanraj/storefront/pkg/orm"
)

type CartRepository struct {
	db *gorm.DB
}

func NewCartRepository(db *gorm.DB) *CartRepository {
	return &CartRepository{db: db}
}

func (r *CartRepository) WithTx(tx *gorm.DB) *CartRepository {
	return &CartRepository{db: tx}
}

func (r *CartRepository) query(ctx context.Context) *orm.Query {
	return orm.Use(r.db).WithContext(ctx)
}

// ForUser loads the user's cart with its items in insertion order. It
// returns orm.ErrNotFound when the user has no cart yet.
func (r *CartRepository) ForUser(ctx context.Context, userID uint) (*models.Cart, error) {
	var cart models.Cart
	err := r.query(ctx).Model(&models.Cart{}).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id asc") }).
		Where("user_id = ?", userID).
		First(&cart)
	if err != nil {
		return nil, err
	}
	return &cart, nil
}

// FirstOrCreate returns the user's cart, creating an empty one if needed.
func (r *CartRepository) FirstOrCreate(ctx context.Context, userID uint) (*models.Cart, error) {
	cart, err := r.ForUser(ctx, userID)
	if err == nil {
		return cart, nil
	}
	if !orm.IsNotFound(err) {
		return nil, err
	}
	cart = &models.Cart{UserID: userID}
	if err := r.query(ctx).Create(cart); err != nil {
		return nil, err
	}
	return cart, nil
}

func (r *CartRepository) SaveItem(ctx context.Context, item *models.CartItem) error {
	return r.query(ctx).Save(item)
}

// DeleteItem removes the line for productID and reports whether one existed.
func (r *CartRepository) DeleteItem(ctx context.Context, cartID, productID uint) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("cart_id = ? AND product_id = ?", cartID, productID).
		Delete(&models.CartItem{})
	return res.RowsAffected > 0, res.Error
}

// ClearItems empties the cart but keeps the cart row.
func (r *CartRepository) ClearItems(ctx context.Context, cartID uint) error {
	return r.query(ctx).Where("cart_id = ?", cartID).Delete(&models.CartItem{})
}

// Delete removes the cart and every item in it.
func (r *CartRepository) Delete(ctx context.Context, cart *models.Cart) error {
	if err := r.ClearItems(ctx, cart.ID); err != nil {
		return err
	}
	return r.query(ctx).Delete(&models.Cart{}, cart.ID)
}
