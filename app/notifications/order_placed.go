// Package notifications holds the storefront's outbound notifications.
package notifications

import (
	"embed"
	"fmt"

	"github.com/shashiranjanraj/storefront/app/models"
	"github.com/shashiranjanraj/storefront/config"
	"github.com/shashiranjanraj/storefront/pkg/mail"
	"github.com/shashiranjanraj/storefront/pkg/notification"
)

// OrderConfirmationTemplate is the mail template for OrderPlaced.
const OrderConfirmationTemplate = "order_confirmation.html"

//go:embed templates/*.html
var templates embed.FS

func init() {
	if err := mail.RegisterTemplates(templates, "templates/*.html"); err != nil {
		panic(err)
	}
}

// OrderPlaced confirms a new order to the customer and, when a Slack webhook
// is configured, pings the admin channel.
type OrderPlaced struct {
	Order *models.Order
	User  *models.User
}

func NewOrderPlaced(o *models.Order, u *models.User) OrderPlaced {
	return OrderPlaced{Order: o, User: u}
}

func (n OrderPlaced) Via() []string {
	if config.Get("SLACK_WEBHOOK_URL", "") != "" {
		return []string{notification.Mail, notification.Slack}
	}
	return []string{notification.Mail}
}

func (n OrderPlaced) Subject() string {
	return fmt.Sprintf("Order confirmation #%d", n.Order.ID)
}

type confirmationItem struct {
	Name     string
	Quantity int
	Price    string
	Subtotal string
}

type confirmationData struct {
	CustomerName string
	OrderID      uint
	Status       string
	Items        []confirmationItem
	Total        string
	DeliveryType string
	Delivery     models.DeliveryInfo
	PaymentID    string
}

func (n OrderPlaced) ToMail() notification.MailData {
	items := make([]confirmationItem, len(n.Order.Items))
	for i, it := range n.Order.Items {
		items[i] = confirmationItem{
			Name:     it.Name,
			Quantity: it.Quantity,
			Price:    it.Price.StringFixed(2),
			Subtotal: it.Subtotal().StringFixed(2),
		}
	}
	name := n.Order.DeliveryInfo.Name
	if n.User != nil && n.User.Name != "" {
		name = n.User.Name
	}
	return notification.MailData{
		Subject:  n.Subject(),
		Template: OrderConfirmationTemplate,
		Data: confirmationData{
			CustomerName: name,
			OrderID:      n.Order.ID,
			Status:       n.Order.Status,
			Items:        items,
			Total:        n.Order.Total.StringFixed(2),
			DeliveryType: n.Order.DeliveryType,
			Delivery:     n.Order.DeliveryInfo,
			PaymentID:    n.Order.PaymentID,
		},
	}
}

func (n OrderPlaced) ToSlack() notification.SlackData {
	return notification.SlackData{
		Text: fmt.Sprintf("New order #%d: %d item(s), total %s (%s)",
			n.Order.ID, len(n.Order.Items), n.Order.Total.StringFixed(2), n.Order.DeliveryType),
	}
}
