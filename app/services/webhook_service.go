package services

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/shashiranjanraj/storefront/app/events"
	"github.com/shashiranjanraj/storefront/app/models"
	"github.com/shashiranjanraj/storefront/app/repositories"
	"github.com/shashiranjanraj/storefront/pkg/event"
	"github.com/shashiranjanraj/storefront/pkg/logger"
	"github.com/shashiranjanraj/storefront/pkg/metrics"
	"github.com/shashiranjanraj/storefront/pkg/paystack"
)

// Webhook outcomes, as counted in storefront_webhook_events_total.
const (
	OutcomeApplied  = "applied"
	OutcomeIgnored  = "ignored"
	OutcomeRejected = "rejected"
	OutcomeError    = "error"
)

// WebhookService reconciles order status from Paystack events.
type WebhookService struct {
	orders *repositories.OrderRepository
	secret func() string
}

// NewWebhookService verifies signatures with the key returned by secret,
// read on every delivery so a rotated key takes effect without a restart.
func NewWebhookService(orders *repositories.OrderRepository, secret func() string) *WebhookService {
	return &WebhookService{orders: orders, secret: secret}
}

// Verify checks the signature header against the raw body.
func (s *WebhookService) Verify(body []byte, signature string) bool {
	ok := paystack.VerifySignature(s.secret(), body, signature)
	if !ok {
		metrics.WebhookEvents.WithLabelValues("unknown", OutcomeRejected).Inc()
	}
	return ok
}

// Handle applies a verified event. Updates are keyed by payment reference,
// so a replayed event converges on the same state. Event order is not
// checked: a charge.failed that arrives after charge.success wins.
func (s *WebhookService) Handle(ctx context.Context, body []byte) (string, error) {
	var evt paystack.Event
	if err := json.Unmarshal(body, &evt); err != nil || evt.Event == "" {
		metrics.WebhookEvents.WithLabelValues("unknown", OutcomeRejected).Inc()
		return OutcomeRejected, ErrMalformedPayload
	}
	log := logger.WithCtx(ctx).With("event", evt.Event, "reference", evt.Data.Reference)

	var status string
	switch evt.Event {
	case paystack.EventChargeSuccess:
		status = models.StatusPaid
	case paystack.EventChargeFailed:
		status = models.StatusFailed
	case paystack.EventTransferSuccess:
		log.Info("webhook: transfer settled")
		metrics.WebhookEvents.WithLabelValues(evt.Event, OutcomeIgnored).Inc()
		return OutcomeIgnored, nil
	default:
		log.Info("webhook: event ignored")
		metrics.WebhookEvents.WithLabelValues("other", OutcomeIgnored).Inc()
		return OutcomeIgnored, nil
	}

	if evt.Data.Reference == "" {
		metrics.WebhookEvents.WithLabelValues(evt.Event, OutcomeRejected).Inc()
		return OutcomeRejected, ErrMalformedPayload
	}

	matched, changed, err := s.apply(ctx, evt.Data.Reference, status)
	if err != nil {
		log.Error("webhook: status update failed", "error", err)
		metrics.WebhookEvents.WithLabelValues(evt.Event, OutcomeError).Inc()
		return OutcomeError, err
	}
	if matched == 0 {
		log.Warn("webhook: no order for reference")
	} else {
		log.Info("webhook: orders updated", "status", status, "matched", matched, "changed", changed)
	}
	metrics.WebhookEvents.WithLabelValues(evt.Event, OutcomeApplied).Inc()
	return OutcomeApplied, nil
}

// apply sets status on every order with reference and fires a status change
// for those whose status actually moved.
func (s *WebhookService) apply(ctx context.Context, reference, status string) (matched, changed int, err error) {
	before, err := s.orders.ForPayment(ctx, reference)
	if err != nil {
		return 0, 0, fmt.Errorf("load orders: %w", err)
	}
	if len(before) == 0 {
		return 0, 0, nil
	}
	if _, err := s.orders.SetStatusByPayment(ctx, reference, status); err != nil {
		return 0, 0, fmt.Errorf("set status: %w", err)
	}

	for i := range before {
		o := before[i]
		if o.Status == status {
			continue
		}
		previous := o.Status
		o.Status = status
		changed++
		event.Fire(ctx, events.OrderStatusChanged, events.FromOrder(events.OrderStatusChanged, &o, previous))
	}
	return len(before), changed, nil
}
