package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/shashiranjanraj/storefront/app/repositories"
	"github.com/shashiranjanraj/storefront/app/services"
	"github.com/shashiranjanraj/storefront/pkg/ctx"
	"github.com/shashiranjanraj/storefront/pkg/storage"
)

// maxImageBytes bounds a product image upload.
const maxImageBytes = 5 << 20

type ProductController struct {
	service *services.ProductService
}

func NewProductController(service *services.ProductService) *ProductController {
	return &ProductController{service: service}
}

// Index handles GET /api/products?page=&per_page=&category=&in_stock=.
func (pc *ProductController) Index(c *ctx.Context) {
	f := repositories.ProductFilter{Category: c.Query("category")}
	if v := c.Query("in_stock"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			c.ValidationError(map[string]string{"in_stock": "The in_stock filter must be true or false."})
			return
		}
		f.InStock = &b
	}

	products, page, err := pc.service.List(c.Context(), f, c.QueryInt("page", 1), c.QueryInt("per_page", 20))
	if err != nil {
		fail(c, err, "Failed to list products")
		return
	}
	c.Paginated(products, page)
}

// Show handles GET /api/products/{id}.
func (pc *ProductController) Show(c *ctx.Context) {
	id, ok := c.ParamUint("id")
	if !ok {
		c.NotFound(services.ErrProductNotFound.Error())
		return
	}
	p, err := pc.service.Find(c.Context(), id)
	if err != nil {
		fail(c, err, "Failed to load product")
		return
	}
	c.Success(p)
}

// Store handles POST /api/products.
func (pc *ProductController) Store(c *ctx.Context) {
	var in services.ProductInput
	if !bindChecked(c, &in, func() map[string]string { return in.Missing() }) {
		return
	}
	p, err := pc.service.Create(c.Context(), in)
	if err != nil {
		fail(c, err, "Failed to create product")
		return
	}
	c.Created(p)
}

// Update handles PUT /api/products/{id}.
func (pc *ProductController) Update(c *ctx.Context) {
	id, ok := c.ParamUint("id")
	if !ok {
		c.NotFound(services.ErrProductNotFound.Error())
		return
	}
	var in services.ProductInput
	if !c.BindJSON(&in) {
		return
	}
	p, err := pc.service.Update(c.Context(), id, in)
	if err != nil {
		fail(c, err, "Failed to update product")
		return
	}
	c.Success(p)
}

// Destroy handles DELETE /api/products/{id}.
func (pc *ProductController) Destroy(c *ctx.Context) {
	id, ok := c.ParamUint("id")
	if !ok {
		c.NotFound(services.ErrProductNotFound.Error())
		return
	}
	if err := pc.service.Delete(c.Context(), id); err != nil {
		fail(c, err, "Failed to delete product")
		return
	}
	c.Message("Product deleted")
}

// UploadImage handles POST /api/products/{id}/image (multipart, field "image").
func (pc *ProductController) UploadImage(c *ctx.Context) {
	id, ok := c.ParamUint("id")
	if !ok {
		c.NotFound(services.ErrProductNotFound.Error())
		return
	}
	file, header, err := c.FormFile("image", maxImageBytes)
	if err != nil {
		c.ValidationError(map[string]string{"image": "The image field is required."})
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		c.ValidationError(map[string]string{"image": "The image must be an image file."})
		return
	}
	if header.Size > maxImageBytes {
		c.ValidationError(map[string]string{"image": "The image may not be larger than 5 MB."})
		return
	}

	p, err := pc.service.UploadImage(c.Context(), id, header.Filename, contentType, file)
	if errors.Is(err, storage.ErrNotConfigured) {
		c.Error(http.StatusServiceUnavailable, "Image storage is not configured")
		return
	}
	if err != nil {
		fail(c, err, "Failed to upload image")
		return
	}
	c.Success(p)
}
