package services

import (
	"context"
	"fmt"

	"github.com/shashiranjanraj/storefront/app/events"
	"github.com/shashiranjanraj/storefront/app/models"
	"github.com/shashiranjanraj/storefront/app/repositories"
	"github.com/shashiranjanraj/storefront/pkg/event"
	"github.com/shashiranjanraj/storefront/pkg/logger"
	"github.com/shashiranjanraj/storefront/pkg/orm"
)

type UpdateStatusInput struct {
	Status string `json:"status" validate:"required,oneof=processing paid failed shipped delivered cancelled"`
}

type OrderService struct {
	orders *repositories.OrderRepository
}

func NewOrderService(orders *repositories.OrderRepository) *OrderService {
	return &OrderService{orders: orders}
}

// ForUser lists the caller's orders, newest first.
func (s *OrderService) ForUser(ctx context.Context, userID uint) ([]models.Order, error) {
	orders, err := s.orders.ForUser(ctx, userID)
	if orders == nil {
		orders = []models.Order{}
	}
	return orders, err
}

// FindForUser returns ErrOrderNotFound for orders the caller does not own.
func (s *OrderService) FindForUser(ctx context.Context, id, userID uint) (*models.Order, error) {
	o, err := s.orders.FindForUser(ctx, id, userID)
	if err != nil {
		if orm.IsNotFound(err) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return o, nil
}

func (s *OrderService) Paginate(ctx context.Context, status string, page, perPage int) ([]models.Order, orm.Pagination, error) {
	if status != "" && !models.ValidStatus(status) {
		return nil, orm.Pagination{}, ErrInvalidStatus
	}
	return s.orders.Paginate(ctx, status, page, perPage)
}

// UpdateStatus is the admin override of an order's status.
func (s *OrderService) UpdateStatus(ctx context.Context, id uint, status string) (*models.Order, error) {
	if !models.ValidStatus(status) {
		return nil, ErrInvalidStatus
	}
	o, err := s.orders.Find(ctx, id)
	if err != nil {
		if orm.IsNotFound(err) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	previous := o.Status
	if previous == status {
		return o, nil
	}
	if _, err := s.orders.SetStatus(ctx, id, status); err != nil {
		return nil, fmt.Errorf("update order status: %w", err)
	}
	o.Status = status

	logger.WithCtx(ctx).Info("order status changed", "order_id", id, "from", previous, "to", status, "source", "admin")
	event.Fire(ctx, events.OrderStatusChanged, events.FromOrder(events.OrderStatusChanged, o, previous))
	return o, nil
}
