package controllers

import (
	"errors"
	"net/http"

	"github.com/shashiranjanraj/storefront/app/services"
	"github.com/shashiranjanraj/storefront/pkg/bind"
	"github.com/shashiranjanraj/storefront/pkg/ctx"
	"github.com/shashiranjanraj/storefront/pkg/logger"
	"github.com/shashiranjanraj/storefront/pkg/paystack"
)

type WebhookController struct {
	service *services.WebhookService
}

func NewWebhookController(service *services.WebhookService) *WebhookController {
	return &WebhookController{service: service}
}

// Paystack handles POST /api/webhook/paystack. The body is only read once
// the signature header is present and is only parsed once it verifies.
func (wc *WebhookController) Paystack(c *ctx.Context) {
	signature := c.Header(paystack.SignatureHeader)
	if signature == "" {
		c.Unauthorized("Missing signature")
		return
	}

	body, err := c.Body(bind.MaxBodyBytes())
	if err != nil {
		c.Error(http.StatusBadRequest, "Unreadable body")
		return
	}
	if !wc.service.Verify(body, signature) {
		logger.WithCtx(c.Context()).Warn("webhook: signature mismatch", "ip", c.ClientIP())
		c.Unauthorized("Invalid signature")
		return
	}

	if _, err := wc.service.Handle(c.Context(), body); err != nil {
		if errors.Is(err, services.ErrMalformedPayload) {
			c.Error(http.StatusBadRequest, "Malformed payload")
			return
		}
		c.Error(http.StatusInternalServerError, "Webhook processing failed")
		return
	}
	c.Message("ok")
}
