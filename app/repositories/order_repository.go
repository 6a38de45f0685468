package repositories

import (
	"context"

	"gorm.io/gorm"

	"github.com/shashiranjanraj/storefront/app/models"
	"github.com/shashiranjanraj/storefront/pkg/orm"
)

type OrderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

func (r *OrderRepository) WithTx(tx *gorm.DB) *OrderRepository {
	return &OrderRepository{db: tx}
}

func (r *OrderRepository) query(ctx context.Context) *orm.Query {
	return orm.Use(r.db).WithContext(ctx)
}

func (r *OrderRepository) withItems(ctx context.Context) *orm.Query {
	return r.query(ctx).Model(&models.Order{}).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id asc") })
}

// Create inserts the order together with its items.
func (r *OrderRepository) Create(ctx context.Context, o *models.Order) error {
	return r.query(ctx).Create(o)
}

func (r *OrderRepository) Find(ctx context.Context, id uint) (*models.Order, error) {
	var o models.Order
	if err := r.withItems(ctx).Where("id = ?", id).First(&o); err != nil {
		return nil, err
	}
	return &o, nil
}

// FindForUser returns the order only if userID owns it.
func (r *OrderRepository) FindForUser(ctx context.Context, id, userID uint) (*models.Order, error) {
	var o models.Order
	if err := r.withItems(ctx).Where("id = ? AND user_id = ?", id, userID).First(&o); err != nil {
		return nil, err
	}
	return &o, nil
}

// ForUser lists the user's orders, newest first.
func (r *OrderRepository) ForUser(ctx context.Context, userID uint) ([]models.Order, error) {
	var orders []models.Order
	err := r.withItems(ctx).Where("user_id = ?", userID).Order("id desc").Get(&orders)
	return orders, err
}

// Paginate lists all orders, optionally narrowed to one status.
func (r *OrderRepository) Paginate(ctx context.Context, status string, page, perPage int) ([]models.Order, orm.Pagination, error) {
	q := r.withItems(ctx)
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var orders []models.Order
	p, err := q.Order("id desc").Paginate(&orders, page, perPage)
	return orders, p, err
}

func (r *OrderRepository) PaymentExists(ctx context.Context, paymentID string) (bool, error) {
	n, err := r.query(ctx).Model(&models.Order{}).Where("payment_id = ?", paymentID).Count()
	return n > 0, err
}

// ForPayment returns the orders carrying paymentID.
func (r *OrderRepository) ForPayment(ctx context.Context, paymentID string) ([]models.Order, error) {
	var orders []models.Order
	err := r.query(ctx).Model(&models.Order{}).Where("payment_id = ?", paymentID).Order("id asc").Get(&orders)
	return orders, err
}

// SetStatusByPayment updates every order with paymentID and returns the
// number of rows touched.
func (r *OrderRepository) SetStatusByPayment(ctx context.Context, paymentID, status string) (int64, error) {
	return r.query(ctx).Model(&models.Order{}).
		Where("payment_id = ?", paymentID).
		Updates(map[string]any{"status": status})
}

func (r *OrderRepository) SetStatus(ctx context.Context, id uint, status string) (int64, error) {
	return r.query(ctx).Model(&models.Order{}).
		Where("id = ?", id).
		Updates(map[string]any{"status": status})
}
