package services_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/storefront/app/services"
	"github.com/shashiranjanraj/storefront/pkg/paystack"
)

type gatewayMock struct{ mock.Mock }

func (g *gatewayMock) Initialize(ctx context.Context, email string, amountKobo int64, reference string) (*paystack.Transaction, error) {
	args := g.Called(ctx, email, amountKobo, reference)
	tx, _ := args.Get(0).(*paystack.Transaction)
	return tx, args.Error(1)
}

func (g *gatewayMock) Verify(ctx context.Context, reference string) (*paystack.Verification, error) {
	args := g.Called(ctx, reference)
	v, _ := args.Get(0).(*paystack.Verification)
	return v, args.Error(1)
}

func TestPaymentInitialize(t *testing.T) {
	f := newFixture(t)
	u := f.user("ada@example.com")
	f.cartWith(u.ID, f.product("TEE-1", "10.00", 5), 2)

	gw := &gatewayMock{}
	gw.On("Initialize", mock.Anything, "ada@example.com", int64(2000), mock.MatchedBy(func(ref string) bool {
		return strings.HasPrefix(ref, "sf_")
	})).Return(&paystack.Transaction{AuthorizationURL: "https://checkout.paystack.com/x", Reference: "sf_x"}, nil).Once()

	tx, err := services.NewPaymentService(gw, f.carts, f.users).Initialize(f.ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "sf_x", tx.Reference)
	gw.AssertExpectations(t)
}

func TestPaymentInitializeEmptyCart(t *testing.T) {
	f := newFixture(t)
	u := f.user("ada@example.com")
	gw := &gatewayMock{}

	_, err := services.NewPaymentService(gw, f.carts, f.users).Initialize(f.ctx, u.ID)
	assert.ErrorIs(t, err, services.ErrEmptyCart)
	gw.AssertNotCalled(t, "Initialize", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestPaymentInitializeGatewayError(t *testing.T) {
	f := newFixture(t)
	u := f.user("ada@example.com")
	f.cartWith(u.ID, f.product("TEE-1", "10.00", 5), 1)

	gw := &gatewayMock{}
	gw.On("Initialize", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil, paystack.ErrNotConfigured)

	_, err := services.NewPaymentService(gw, f.carts, f.users).Initialize(f.ctx, u.ID)
	assert.True(t, errors.Is(err, paystack.ErrNotConfigured))
}

func TestPaymentVerify(t *testing.T) {
	f := newFixture(t)
	u := f.user("ada@example.com")

	gw := &gatewayMock{}
	gw.On("Verify", mock.Anything, "sf_x").
		Return(&paystack.Verification{Status: "success", Reference: "sf_x", Amount: 2000, Currency: "NGN"}, nil).Once()

	v, err := services.NewPaymentService(gw, f.carts, f.users).Verify(f.ctx, u.ID, "sf_x")
	require.NoError(t, err)
	assert.Equal(t, "success", v.Status)
	assert.EqualValues(t, 2000, v.Amount)
	gw.AssertExpectations(t)
}

func TestPaymentVerifyGatewayError(t *testing.T) {
	f := newFixture(t)
	gw := &gatewayMock{}
	gw.On("Verify", mock.Anything, "sf_x").Return(nil, paystack.ErrNotConfigured)

	_, err := services.NewPaymentService(gw, f.carts, f.users).Verify(f.ctx, 1, "sf_x")
	assert.ErrorIs(t, err, paystack.ErrNotConfigured)
}
