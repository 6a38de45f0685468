package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/shashiranjanraj/storefront/app/events"
	"github.com/shashiranjanraj/storefront/app/models"
	"github.com/shashiranjanraj/storefront/app/notifications"
	"github.com/shashiranjanraj/storefront/app/repositories"
	"github.com/shashiranjanraj/storefront/pkg/event"
	"github.com/shashiranjanraj/storefront/pkg/logger"
	"github.com/shashiranjanraj/storefront/pkg/metrics"
	"github.com/shashiranjanraj/storefront/pkg/notification"
	"github.com/shashiranjanraj/storefront/pkg/orm"
)

// PlaceOrderInput is the checkout request. PaymentID is the Paystack
// reference returned by payment initialization; one is generated when empty.
type PlaceOrderInput struct {
	PaymentID    string              `json:"paymentId" validate:"nullable,max=191"`
	DeliveryType string              `json:"deliveryType" validate:"required,oneof=delivery pickup"`
	DeliveryInfo models.DeliveryInfo `json:"deliveryInfo"`
}

// Check applies the rules that depend on the delivery type.
func (in PlaceOrderInput) Check() map[string]string {
	errs := map[string]string{}
	d := in.DeliveryInfo
	switch in.DeliveryType {
	case models.DeliveryTypeDelivery:
		if strings.TrimSpace(d.Address) == "" {
			errs["deliveryInfo.address"] = "The deliveryInfo.address field is required for delivery."
		}
		if strings.TrimSpace(d.City) == "" {
			errs["deliveryInfo.city"] = "The deliveryInfo.city field is required for delivery."
		}
	case models.DeliveryTypePickup:
		if strings.TrimSpace(d.PickupLocation) == "" {
			errs["deliveryInfo.pickupLocation"] = "The deliveryInfo.pickupLocation field is required for pickup."
		}
	}
	return errs
}

type CheckoutService struct {
	db       *gorm.DB
	carts    *repositories.CartRepository
	products *repositories.ProductRepository
	orders   *repositories.OrderRepository
	users    *repositories.UserRepository
	catalog  *ProductService
}

func NewCheckoutService(db *gorm.DB, catalog *ProductService) *CheckoutService {
	return &CheckoutService{
		db:       db,
		carts:    repositories.NewCartRepository(db),
		products: repositories.NewProductRepository(db),
		orders:   repositories.NewOrderRepository(db),
		users:    repositories.NewUserRepository(db),
		catalog:  catalog,
	}
}

// PlaceOrder turns the user's cart into an order. Reading the cart, the
// stock decrements, deleting the cart and inserting the order share one
// transaction: either all of it happens or none of it does. The
// confirmation is sent after commit and its failure never affects the order.
func (s *CheckoutService) PlaceOrder(ctx context.Context, userID uint, in PlaceOrderInput) (*models.Order, error) {
	paymentID := strings.TrimSpace(in.PaymentID)
	if paymentID == "" {
		paymentID = uuid.NewString()
	}

	var order *models.Order
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		carts := s.carts.WithTx(tx)
		products := s.products.WithTx(tx)
		orders := s.orders.WithTx(tx)

		cart, err := carts.ForUser(ctx, userID)
		if err != nil {
			if orm.IsNotFound(err) {
				return ErrEmptyCart
			}
			return fmt.Errorf("load cart: %w", err)
		}
		if len(cart.Items) == 0 {
			return ErrEmptyCart
		}

		taken, err := orders.PaymentExists(ctx, paymentID)
		if err != nil {
			return fmt.Errorf("check payment reference: %w", err)
		}
		if taken {
			return ErrDuplicatePayment
		}

		for _, item := range cart.Items {
			if err := reserve(ctx, products, item); err != nil {
				return err
			}
		}

		order = newOrder(userID, paymentID, in, cart)
		if err := carts.Delete(ctx, cart); err != nil {
			return fmt.Errorf("delete cart: %w", err)
		}
		if err := orders.Create(ctx, order); err != nil {
			if orm.IsDuplicate(err) {
				return ErrDuplicatePayment
			}
			return fmt.Errorf("save order: %w", err)
		}
		return nil
	})
	if err != nil {
		metrics.CheckoutFailures.WithLabelValues(failureReason(err)).Inc()
		return nil, err
	}

	s.afterCommit(ctx, order)
	return order, nil
}

// reserve takes item.Quantity units of the product. The stock check gives a
// precise error; the conditional decrement is what guarantees stock never
// goes negative when checkouts race.
func reserve(ctx context.Context, products *repositories.ProductRepository, item models.CartItem) error {
	product, err := products.Find(ctx, item.ProductID)
	if err != nil {
		if orm.IsNotFound(err) {
			return &InsufficientStockError{Item: item.Name, Requested: item.Quantity}
		}
		return fmt.Errorf("load product %d: %w", item.ProductID, err)
	}
	if product.Stock < item.Quantity {
		return &InsufficientStockError{Item: item.Name, Requested: item.Quantity, Available: product.Stock}
	}

	ok, err := products.DecrementStock(ctx, product.ID, item.Quantity)
	if err != nil {
		return fmt.Errorf("decrement stock for %d: %w", product.ID, err)
	}
	if !ok {
		return &InsufficientStockError{Item: item.Name, Requested: item.Quantity, Available: product.Stock}
	}
	return nil
}

func newOrder(userID uint, paymentID string, in PlaceOrderInput, cart *models.Cart) *models.Order {
	items := make([]models.OrderItem, len(cart.Items))
	for i, it := range cart.Items {
		items[i] = models.OrderItem{
			ProductID: it.ProductID,
			Name:      it.Name,
			Price:     it.Price,
			Image:     it.Image,
			Quantity:  it.Quantity,
		}
	}
	return &models.Order{
		UserID:       userID,
		Items:        items,
		Total:        cart.Total(),
		Status:       models.StatusProcessing,
		PaymentID:    paymentID,
		DeliveryType: in.DeliveryType,
		DeliveryInfo: in.DeliveryInfo,
	}
}

func (s *CheckoutService) afterCommit(ctx context.Context, order *models.Order) {
	log := logger.WithCtx(ctx)

	ids := make([]uint, len(order.Items))
	for i, it := range order.Items {
		ids[i] = it.ProductID
	}
	if s.catalog != nil {
		s.catalog.Forget(ctx, ids...)
	}

	metrics.OrdersCreated.Inc()
	log.Info("order created", "order_id", order.ID, "user_id", order.UserID,
		"payment_id", order.PaymentID, "total", order.Total.StringFixed(2))

	event.Fire(ctx, events.OrderCreated, events.FromOrder(events.OrderCreated, order, ""))

	user, err := s.users.FindByID(ctx, order.UserID)
	if err != nil {
		log.Warn("order confirmation skipped: user lookup failed", "order_id", order.ID, "error", err)
		return
	}
	notification.SendAsync(ctx, user.Email, notifications.NewOrderPlaced(order, user))
}

func failureReason(err error) string {
	switch {
	case errors.Is(err, ErrEmptyCart):
		return "empty_cart"
	case IsInsufficientStock(err):
		return "insufficient_stock"
	case errors.Is(err, ErrDuplicatePayment):
		return "duplicate_payment"
	default:
		return "internal"
	}
}
