package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/shopspring/decimal"

	"github.com/shashiranjanraj/storefront/app/models"
	"github.com/shashiranjanraj/storefront/app/repositories"
	"github.com/shashiranjanraj/storefront/pkg/cache"
	"github.com/shashiranjanraj/storefront/pkg/logger"
	"github.com/shashiranjanraj/storefront/pkg/orm"
	"github.com/shashiranjanraj/storefront/pkg/storage"
)

const productCacheTTL = 10 * time.Minute

// ErrSKUTaken is returned when a product SKU collides with another product.
var ErrSKUTaken = errors.New("sku already in use")

func productCacheKey(id uint) string { return fmt.Sprintf("product:%d", id) }

// ProductInput is the admin payload for create and update. On update,
// nil fields are left unchanged.
type ProductInput struct {
	SKU         *string          `json:"sku" validate:"nullable,max=100"`
	Name        *string          `json:"name" validate:"nullable,max=255"`
	Description *string          `json:"description"`
	Category    *string          `json:"category" validate:"nullable,max=100"`
	Image       *string          `json:"image" validate:"nullable,max=512"`
	Price       *decimal.Decimal `json:"price" validate:"nullable,gte=0"`
	Stock       *int             `json:"stock" validate:"nullable,gte=0"`
}

// Missing lists the fields a create request must carry.
func (in ProductInput) Missing() map[string]string {
	errs := map[string]string{}
	if in.SKU == nil || *in.SKU == "" {
		errs["sku"] = "The sku field is required."
	}
	if in.Name == nil || *in.Name == "" {
		errs["name"] = "The name field is required."
	}
	if in.Price == nil {
		errs["price"] = "The price field is required."
	}
	return errs
}

func (in ProductInput) apply(p *models.Product) {
	if in.SKU != nil {
		p.SKU = *in.SKU
	}
	if in.Name != nil {
		p.Name = *in.Name
	}
	if in.Description != nil {
		p.Description = *in.Description
	}
	if in.Category != nil {
		p.Category = *in.Category
	}
	if in.Image != nil {
		p.Image = *in.Image
	}
	if in.Price != nil {
		p.Price = in.Price.Round(2)
	}
	if in.Stock != nil {
		p.SetStock(*in.Stock)
	}
}

type ProductService struct {
	products *repositories.ProductRepository
	disk     storage.Disk
}

// NewProductService wires the catalogue. disk may be nil, in which case
// image uploads are rejected.
func NewProductService(products *repositories.ProductRepository, disk storage.Disk) *ProductService {
	return &ProductService{products: products, disk: disk}
}

func (s *ProductService) List(ctx context.Context, f repositories.ProductFilter, page, perPage int) ([]models.Product, orm.Pagination, error) {
	return s.products.Paginate(ctx, f, page, perPage)
}

// Slice serves offset-based readers such as the GraphQL catalogue.
func (s *ProductService) Slice(ctx context.Context, f repositories.ProductFilter, limit, offset int) ([]models.Product, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.products.Slice(ctx, f, limit, offset)
}

// Find reads through the Redis cache.
func (s *ProductService) Find(ctx context.Context, id uint) (*models.Product, error) {
	var p models.Product
	if cache.Get(ctx, productCacheKey(id), &p) {
		return &p, nil
	}
	found, err := s.products.Find(ctx, id)
	if err != nil {
		if orm.IsNotFound(err) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	if err := cache.Set(ctx, productCacheKey(id), found, productCacheTTL); err != nil {
		logger.WithCtx(ctx).Debug("product cache set failed", "product_id", id, "error", err)
	}
	return found, nil
}

func (s *ProductService) Create(ctx context.Context, in ProductInput) (*models.Product, error) {
	p := &models.Product{}
	in.apply(p)
	if err := s.checkSKU(ctx, p.SKU, 0); err != nil {
		return nil, err
	}
	if err := s.products.Create(ctx, p); err != nil {
		if orm.IsDuplicate(err) {
			return nil, ErrSKUTaken
		}
		return nil, fmt.Errorf("create product: %w", err)
	}
	return p, nil
}

func (s *ProductService) Update(ctx context.Context, id uint, in ProductInput) (*models.Product, error) {
	p, err := s.products.Find(ctx, id)
	if err != nil {
		if orm.IsNotFound(err) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	if in.SKU != nil && *in.SKU != p.SKU {
		if err := s.checkSKU(ctx, *in.SKU, p.ID); err != nil {
			return nil, err
		}
	}
	in.apply(p)
	if err := s.products.Save(ctx, p); err != nil {
		if orm.IsDuplicate(err) {
			return nil, ErrSKUTaken
		}
		return nil, fmt.Errorf("update product: %w", err)
	}
	s.Forget(ctx, id)
	return p, nil
}

func (s *ProductService) checkSKU(ctx context.Context, sku string, exceptID uint) error {
	taken, err := s.products.SKUTaken(ctx, sku, exceptID)
	if err != nil {
		return fmt.Errorf("check sku: %w", err)
	}
	if taken {
		return ErrSKUTaken
	}
	return nil
}

func (s *ProductService) Delete(ctx context.Context, id uint) error {
	if err := s.products.Delete(ctx, id); err != nil {
		if orm.IsNotFound(err) {
			return ErrProductNotFound
		}
		return fmt.Errorf("delete product: %w", err)
	}
	s.Forget(ctx, id)
	return nil
}

// UploadImage stores the file on the configured disk and points the product
// at its public URL. The previous image object is left in place.
func (s *ProductService) UploadImage(ctx context.Context, id uint, filename, contentType string, r io.Reader) (*models.Product, error) {
	if s.disk == nil {
		return nil, storage.ErrNotConfigured
	}
	p, err := s.products.Find(ctx, id)
	if err != nil {
		if orm.IsNotFound(err) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}

	key := storage.ObjectKey("products", filename)
	if err := s.disk.Put(ctx, key, r, contentType); err != nil {
		return nil, fmt.Errorf("upload image: %w", err)
	}
	p.Image = s.disk.URL(key)
	if err := s.products.Save(ctx, p); err != nil {
		return nil, fmt.Errorf("upload image: %w", err)
	}
	s.Forget(ctx, id)
	return p, nil
}

// Forget drops cached copies of the given products.
func (s *ProductService) Forget(ctx context.Context, ids ...uint) {
	if len(ids) == 0 {
		return
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = productCacheKey(id)
	}
	if err := cache.Del(ctx, keys...); err != nil {
		logger.WithCtx(ctx).Debug("product cache invalidation failed", "error", err)
	}
}
