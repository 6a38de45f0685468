package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/shashiranjanraj/storefront/app/repositories"
	"github.com/shashiranjanraj/storefront/pkg/logger"
	"github.com/shashiranjanraj/storefront/pkg/orm"
	"github.com/shashiranjanraj/storefront/pkg/paystack"
)

// PaymentGateway is the part of the Paystack client checkout depends on.
type PaymentGateway interface {
	Initialize(ctx context.Context, email string, amountKobo int64, reference string) (*paystack.Transaction, error)
	Verify(ctx context.Context, reference string) (*paystack.Verification, error)
}

type PaymentService struct {
	gateway PaymentGateway
	carts   *repositories.CartRepository
	users   *repositories.UserRepository
}

func NewPaymentService(gateway PaymentGateway, carts *repositories.CartRepository, users *repositories.UserRepository) *PaymentService {
	return &PaymentService{gateway: gateway, carts: carts, users: users}
}

// Initialize opens a Paystack transaction for the current cart total. The
// returned reference is what the client later submits as paymentId.
func (s *PaymentService) Initialize(ctx context.Context, userID uint) (*paystack.Transaction, error) {
	cart, err := s.carts.ForUser(ctx, userID)
	if err != nil {
		if orm.IsNotFound(err) {
			return nil, ErrEmptyCart
		}
		return nil, err
	}
	if len(cart.Items) == 0 {
		return nil, ErrEmptyCart
	}
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("initialize payment: %w", err)
	}

	reference := "sf_" + uuid.NewString()
	amount := paystack.ToKobo(cart.Total())
	tx, err := s.gateway.Initialize(ctx, user.Email, amount, reference)
	if err != nil {
		return nil, fmt.Errorf("initialize payment: %w", err)
	}
	logger.WithCtx(ctx).Info("payment initialized", "user_id", userID, "reference", tx.Reference, "amount_kobo", amount)
	return tx, nil
}

// Verify asks Paystack for the current state of reference, so a client can
// confirm a charge before submitting it as paymentId.
func (s *PaymentService) Verify(ctx context.Context, userID uint, reference string) (*paystack.Verification, error) {
	v, err := s.gateway.Verify(ctx, reference)
	if err != nil {
		return nil, fmt.Errorf("verify payment: %w", err)
	}
	logger.WithCtx(ctx).Info("payment verified", "user_id", userID, "reference", reference, "status", v.Status)
	return v, nil
}
