package controllers

import (
	"errors"
	"net/http"

	"github.com/shashiranjanraj/storefront/app/models"
	"github.com/shashiranjanraj/storefront/app/services"
	"github.com/shashiranjanraj/storefront/pkg/bind"
	"github.com/shashiranjanraj/storefront/pkg/ctx"
	"github.com/shashiranjanraj/storefront/pkg/logger"
	"github.com/shashiranjanraj/storefront/pkg/validate"
)

// fail translates a service error into a response. Anything unrecognised is
// logged and answered with 500 and fallback.
func fail(c *ctx.Context, err error, fallback string) {
	var stock *services.InsufficientStockError
	switch {
	case errors.As(err, &stock):
		c.Error(http.StatusBadRequest, stock.Error())
	case errors.Is(err, services.ErrEmptyCart),
		errors.Is(err, services.ErrInvalidStatus),
		errors.Is(err, models.ErrWeakPassword):
		c.Error(http.StatusBadRequest, err.Error())
	case errors.Is(err, services.ErrInvalidCredentials):
		c.Unauthorized(err.Error())
	case errors.Is(err, services.ErrOrderNotFound),
		errors.Is(err, services.ErrProductNotFound),
		errors.Is(err, services.ErrUserNotFound),
		errors.Is(err, services.ErrCartItemNotFound):
		c.NotFound(err.Error())
	case errors.Is(err, services.ErrEmailTaken),
		errors.Is(err, services.ErrDuplicatePayment),
		errors.Is(err, services.ErrSKUTaken):
		c.Error(http.StatusConflict, err.Error())
	default:
		logger.WithCtx(c.Context()).Error(fallback, "error", err)
		c.Error(http.StatusInternalServerError, fallback)
	}
}

// bindChecked is ctx.BindJSON plus the cross-field rules from check, so a
// client sees every field problem in one 422.
func bindChecked(c *ctx.Context, dest any, check func() map[string]string) bool {
	errs, err := bind.JSON(c.R, dest)
	if err != nil {
		c.Error(http.StatusBadRequest, err.Error())
		return false
	}
	if errs = merge(errs, check()); validate.HasErrors(errs) {
		c.ValidationError(errs)
		return false
	}
	return true
}

// merge adds extra validation errors to errs.
func merge(errs, extra map[string]string) map[string]string {
	if errs == nil {
		errs = map[string]string{}
	}
	for k, v := range extra {
		if _, ok := errs[k]; !ok {
			errs[k] = v
		}
	}
	return errs
}
