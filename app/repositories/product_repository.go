package repositories

import (
	"context"

	"gorm.io/gorm"

	"github.com/shashiranjanraj/storefront/app/models"
	"github.com/shashiranjanraj/storefront/pkg/orm"
)

// ProductFilter narrows catalogue listings. Zero values match everything.
type ProductFilter struct {
	Category string
	InStock  *bool
}

type ProductRepository struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

// WithTx returns a repository bound to tx.
func (r *ProductRepository) WithTx(tx *gorm.DB) *ProductRepository {
	return &ProductRepository{db: tx}
}

func (r *ProductRepository) query(ctx context.Context) *orm.Query {
	return orm.Use(r.db).WithContext(ctx)
}

func (r *ProductRepository) filtered(ctx context.Context, f ProductFilter) *orm.Query {
	q := r.query(ctx).Model(&models.Product{})
	if f.Category != "" {
		q = q.Where("category = ?", f.Category)
	}
	if f.InStock != nil {
		q = q.Where("in_stock = ?", *f.InStock)
	}
	return q
}

func (r *ProductRepository) Find(ctx context.Context, id uint) (*models.Product, error) {
	var p models.Product
	if err := r.query(ctx).Model(&models.Product{}).Where("id = ?", id).First(&p); err != nil {
		return nil, err
	}
	return &p, nil
}

// Paginate returns one page of products, newest first.
func (r *ProductRepository) Paginate(ctx context.Context, f ProductFilter, page, perPage int) ([]models.Product, orm.Pagination, error) {
	var products []models.Product
	p, err := r.filtered(ctx, f).Order("id desc").Paginate(&products, page, perPage)
	return products, p, err
}

// Slice returns up to limit products after offset, in id order.
func (r *ProductRepository) Slice(ctx context.Context, f ProductFilter, limit, offset int) ([]models.Product, error) {
	var products []models.Product
	err := r.filtered(ctx, f).Order("id asc").Limit(limit).Offset(offset).Get(&products)
	return products, err
}

// SKUTaken reports whether another product, soft-deleted ones included,
// already holds sku. Deleted rows still occupy the unique index.
func (r *ProductRepository) SKUTaken(ctx context.Context, sku string, exceptID uint) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Unscoped().Model(&models.Product{}).
		Where("sku = ? AND id <> ?", sku, exceptID).
		Count(&n).Error
	return n > 0, err
}

func (r *ProductRepository) Create(ctx context.Context, p *models.Product) error {
	return r.query(ctx).Create(p)
}

func (r *ProductRepository) Save(ctx context.Context, p *models.Product) error {
	return r.query(ctx).Save(p)
}

// Delete soft-deletes the product. It returns orm.ErrNotFound when nothing
// matched.
func (r *ProductRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&models.Product{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return orm.ErrNotFound
	}
	return nil
}

// DecrementStock removes qty units only when at least qty are available and
// recomputes in_stock in the same statement. It reports false when the guard
// matched no row, which means another checkout got there first or the
// product is gone.
func (r *ProductRepository) DecrementStock(ctx context.Context, id uint, qty int) (bool, error) {
	n, err := r.query(ctx).Model(&models.Product{}).
		Where("id = ? AND stock >= ?", id, qty).
		Updates(map[string]any{
			"stock":    gorm.Expr("stock - ?", qty),
			"in_stock": gorm.Expr("CASE WHEN stock - ? > 0 THEN ? ELSE ? END", qty, true, false),
		})
	if err != nil {
		return false, err
	}
	return n == 1, nil
}
