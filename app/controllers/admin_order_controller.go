package controllers

import (
	"github.com/shashiranjanraj/storefront/app/services"
	"github.com/shashiranjanraj/storefront/pkg/ctx"
)

// AdminOrderController serves the dashboard's order views. Routes are
// guarded by rbac.Admin.
type AdminOrderController struct {
	orders *services.OrderService
}

func NewAdminOrderController(orders *services.OrderService) *AdminOrderController {
	return &AdminOrderController{orders: orders}
}

// Index handles GET /api/orders?status=&page=&per_page=.
func (ac *AdminOrderController) Index(c *ctx.Context) {
	orders, page, err := ac.orders.Paginate(c.Context(), c.Query("status"), c.QueryInt("page", 1), c.QueryInt("per_page", 20))
	if err != nil {
		fail(c, err, "Failed to load orders")
		return
	}
	c.Paginated(orders, page)
}

// UpdateStatus handles PUT /api/orders/{id}/status.
func (ac *AdminOrderController) UpdateStatus(c *ctx.Context) {
	id, ok := c.ParamUint("id")
	if !ok {
		c.NotFound(services.ErrOrderNotFound.Error())
		return
	}
	var in services.UpdateStatusInput
	if !c.BindJSON(&in) {
		return
	}
	order, err := ac.orders.UpdateStatus(c.Context(), id, in.Status)
	if err != nil {
		fail(c, err, "Failed to update order")
		return
	}
	c.Success(order)
}
