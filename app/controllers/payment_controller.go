package controllers

import (
	"errors"
	"net/http"

	"github.com/shashiranjanraj/storefront/app/services"
	"github.com/shashiranjanraj/storefront/pkg/ctx"
	"github.com/shashiranjanraj/storefront/pkg/logger"
	"github.com/shashiranjanraj/storefront/pkg/paystack"
)

type PaymentController struct {
	service   *services.PaymentService
	publicKey func() string
}

func NewPaymentController(service *services.PaymentService, publicKey func() string) *PaymentController {
	return &PaymentController{service: service, publicKey: publicKey}
}

// Config handles GET /api/payments/config. The public key is what the
// storefront's inline checkout widget is opened with.
func (pc *PaymentController) Config(c *ctx.Context) {
	key := pc.publicKey()
	if key == "" {
		c.Error(http.StatusServiceUnavailable, "Payments are not configured")
		return
	}
	c.Success(map[string]string{"publicKey": key})
}

// Initialize handles POST /api/payments/initialize.
func (pc *PaymentController) Initialize(c *ctx.Context) {
	tx, err := pc.service.Initialize(c.Context(), c.Session().UserID)
	switch {
	case err == nil:
		c.Success(tx)
	case errors.Is(err, paystack.ErrNotConfigured):
		c.Error(http.StatusServiceUnavailable, "Payments are not configured")
	case errors.Is(err, services.ErrEmptyCart):
		fail(c, err, "")
	default:
		logger.WithCtx(c.Context()).Error("payment initialize failed", "error", err)
		c.Error(http.StatusBadGateway, "Payment provider unavailable")
	}
}

// Verify handles GET /api/payments/verify/{reference}.
func (pc *PaymentController) Verify(c *ctx.Context) {
	v, err := pc.service.Verify(c.Context(), c.Session().UserID, c.Param("reference"))
	switch {
	case err == nil:
		c.Success(v)
	case errors.Is(err, paystack.ErrNotConfigured):
		c.Error(http.StatusServiceUnavailable, "Payments are not configured")
	default:
		logger.WithCtx(c.Context()).Error("payment verify failed", "error", err)
		c.Error(http.StatusBadGateway, "Payment provider unavailable")
	}
}
