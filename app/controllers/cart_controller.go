package controllers

import (
	"github.com/shashiranjanraj/storefront/app/services"
	"github.com/shashiranjanraj/storefront/pkg/ctx"
)

type CartController struct {
	service *services.CartService
}

func NewCartController(service *services.CartService) *CartController {
	return &CartController{service: service}
}

// Show handles GET /api/cart.
func (cc *CartController) Show(c *ctx.Context) {
	cart, err := cc.service.Get(c.Context(), c.Session().UserID)
	if err != nil {
		fail(c, err, "Failed to load cart")
		return
	}
	c.Success(cart)
}

// Add handles POST /api/cart.
func (cc *CartController) Add(c *ctx.Context) {
	var in services.AddToCartInput
	if !c.BindJSON(&in) {
		return
	}
	cart, err := cc.service.Add(c.Context(), c.Session().UserID, in)
	if err != nil {
		fail(c, err, "Failed to add to cart")
		return
	}
	c.Success(cart)
}

// Update handles PUT /api/cart/items/{productId}.
func (cc *CartController) Update(c *ctx.Context) {
	productID, ok := c.ParamUint("productId")
	if !ok {
		c.NotFound(services.ErrCartItemNotFound.Error())
		return
	}
	var in services.SetQuantityInput
	if !c.BindJSON(&in) {
		return
	}
	cart, err := cc.service.SetQuantity(c.Context(), c.Session().UserID, productID, in.Quantity)
	if err != nil {
		fail(c, err, "Failed to update cart")
		return
	}
	c.Success(cart)
}

// Remove handles DELETE /api/cart/items/{productId}.
func (cc *CartController) Remove(c *ctx.Context) {
	productID, ok := c.ParamUint("productId")
	if !ok {
		c.NotFound(services.ErrCartItemNotFound.Error())
		return
	}
	cart, err := cc.service.Remove(c.Context(), c.Session().UserID, productID)
	if err != nil {
		fail(c, err, "Failed to update cart")
		return
	}
	c.Success(cart)
}

// Clear handles DELETE /api/cart.
func (cc *CartController) Clear(c *ctx.Context) {
	if err := cc.service.Clear(c.Context(), c.Session().UserID); err != nil {
		fail(c, err, "Failed to clear cart")
		return
	}
	c.Message("Cart cleared")
}
