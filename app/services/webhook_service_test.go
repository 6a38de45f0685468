package services_test

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/storefront/app/events"
	"github.com/shashiranjanraj/storefront/app/models"
	"github.com/shashiranjanraj/storefront/app/services"
	"github.com/shashiranjanraj/storefront/pkg/event"
	"github.com/shashiranjanraj/storefront/pkg/metrics"
	"github.com/shashiranjanraj/storefront/pkg/paystack"
)

const webhookSecret = "sk_test_webhook"

func newWebhook(f *fixture) *services.WebhookService {
	return services.NewWebhookService(f.orders, func() string { return webhookSecret })
}

func TestWebhookVerify(t *testing.T) {
	f := newFixture(t)
	svc := newWebhook(f)
	body := []byte(`{"event":"charge.success","data":{"reference":"ref_1"}}`)

	assert.True(t, svc.Verify(body, paystack.Sign(webhookSecret, body)))
	assert.False(t, svc.Verify(body, paystack.Sign("other", body)))
	assert.False(t, svc.Verify(body, ""))
	assert.False(t, svc.Verify(append(body, ' '), paystack.Sign(webhookSecret, body)))
}

func TestWebhookChargeSuccessMarksPaid(t *testing.T) {
	f := newFixture(t)
	u := f.user("ada@example.com")
	o := f.order(u.ID, "ref_1", models.StatusProcessing)
	other := f.order(u.ID, "ref_2", models.StatusProcessing)

	var changes []events.OrderEvent
	defer event.Listen(events.OrderStatusChanged, func(_ context.Context, p any) {
		changes = append(changes, p.(events.OrderEvent))
	})()
	applied := testutil.ToFloat64(metrics.WebhookEvents.WithLabelValues(paystack.EventChargeSuccess, services.OutcomeApplied))

	body := []byte(`{"event":"charge.success","data":{"reference":"ref_1","status":"success","amount":1000}}`)
	outcome, err := newWebhook(f).Handle(f.ctx, body)
	require.NoError(t, err)
	assert.Equal(t, services.OutcomeApplied, outcome)

	got, err := f.orders.Find(f.ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPaid, got.Status)

	untouched, err := f.orders.Find(f.ctx, other.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusProcessing, untouched.Status)

	require.Len(t, changes, 1)
	assert.Equal(t, models.StatusPaid, changes[0].Status)
	assert.Equal(t, models.StatusProcessing, changes[0].PreviousStatus)
	assert.Equal(t, applied+1, testutil.ToFloat64(metrics.WebhookEvents.WithLabelValues(paystack.EventChargeSuccess, services.OutcomeApplied)))
}

func TestWebhookReplayIsIdempotent(t *testing.T) {
	f := newFixture(t)
	u := f.user("ada@example.com")
	o := f.order(u.ID, "ref_1", models.StatusProcessing)
	svc := newWebhook(f)

	changes := 0
	defer event.Listen(events.OrderStatusChanged, func(context.Context, any) { changes++ })()

	body := []byte(`{"event":"charge.success","data":{"reference":"ref_1"}}`)
	for i := 0; i < 3; i++ {
		outcome, err := svc.Handle(f.ctx, body)
		require.NoError(t, err)
		assert.Equal(t, services.OutcomeApplied, outcome)
	}

	got, err := f.orders.Find(f.ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPaid, got.Status)
	assert.Equal(t, 1, changes, "only the first delivery changes anything")
}

func TestWebhookChargeFailed(t *testing.T) {
	f := newFixture(t)
	u := f.user("ada@example.com")
	o := f.order(u.ID, "ref_1", models.StatusProcessing)

	_, err := newWebhook(f).Handle(f.ctx, []byte(`{"event":"charge.failed","data":{"reference":"ref_1"}}`))
	require.NoError(t, err)

	got, err := f.orders.Find(f.ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusFailed, got.Status)
}

func TestWebhookUnknownReferenceIsApplied(t *testing.T) {
	f := newFixture(t)
	outcome, err := newWebhook(f).Handle(f.ctx, []byte(`{"event":"charge.success","data":{"reference":"nope"}}`))
	require.NoError(t, err)
	assert.Equal(t, services.OutcomeApplied, outcome)
}

func TestWebhookIgnoredEvents(t *testing.T) {
	f := newFixture(t)
	u := f.user("ada@example.com")
	o := f.order(u.ID, "ref_1", models.StatusProcessing)
	svc := newWebhook(f)

	for _, body := range []string{
		`{"event":"transfer.success","data":{"reference":"ref_1"}}`,
		`{"event":"subscription.create","data":{"reference":"ref_1"}}`,
	} {
		outcome, err := svc.Handle(f.ctx, []byte(body))
		require.NoError(t, err)
		assert.Equal(t, services.OutcomeIgnored, outcome, body)
	}

	got, err := f.orders.Find(f.ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusProcessing, got.Status)
}

func TestWebhookMalformed(t *testing.T) {
	f := newFixture(t)
	svc := newWebhook(f)

	for _, body := range []string{
		`not json`,
		`{"data":{"reference":"ref_1"}}`,
		`{"event":"charge.success","data":{}}`,
	} {
		outcome, err := svc.Handle(f.ctx, []byte(body))
		assert.ErrorIs(t, err, services.ErrMalformedPayload, body)
		assert.Equal(t, services.OutcomeRejected, outcome)
	}
}
