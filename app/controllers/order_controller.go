package controllers

import (
	"strconv"

	"github.com/shashiranjanraj/storefront/app/services"
	"github.com/shashiranjanraj/storefront/pkg/ctx"
)

type OrderController struct {
	orders   *services.OrderService
	checkout *services.CheckoutService
}

func NewOrderController(orders *services.OrderService, checkout *services.CheckoutService) *OrderController {
	return &OrderController{orders: orders, checkout: checkout}
}

// Index handles GET /api/order. With ?id= it returns that order if the
// caller owns it.
func (oc *OrderController) Index(c *ctx.Context) {
	s := c.Session()
	if raw := c.Query("id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil || id == 0 {
			c.NotFound(services.ErrOrderNotFound.Error())
			return
		}
		order, err := oc.orders.FindForUser(c.Context(), uint(id), s.UserID)
		if err != nil {
			fail(c, err, "Failed to load order")
			return
		}
		c.Success(order)
		return
	}

	orders, err := oc.orders.ForUser(c.Context(), s.UserID)
	if err != nil {
		fail(c, err, "Failed to load orders")
		return
	}
	c.Success(orders)
}

// Store handles POST /api/order: checkout of the caller's cart.
func (oc *OrderController) Store(c *ctx.Context) {
	var in services.PlaceOrderInput
	if !bindChecked(c, &in, func() map[string]string { return in.Check() }) {
		return
	}

	order, err := oc.checkout.PlaceOrder(c.Context(), c.Session().UserID, in)
	if err != nil {
		fail(c, err, "Failed to create order")
		return
	}
	c.Created(order)
}
