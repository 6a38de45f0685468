package validate_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/shashiranjanraj/storefront/pkg/validate"
)

type address struct {
	Phone string `json:"phone" validate:"required,min=7"`
	City  string `json:"city"`
}

type checkoutInput struct {
	PaymentID    string          `json:"paymentId"    validate:"nullable,min=6,max=100"`
	DeliveryType string          `json:"deliveryType" validate:"required,oneof=delivery pickup"`
	Quantity     int             `json:"quantity"     validate:"required,gte=1,lte=99"`
	Price        decimal.Decimal `json:"price"        validate:"gt=0"`
	Email        string          `json:"email"        validate:"required,email"`
	Site         string          `json:"site"         validate:"nullable,url"`
	Info         address         `json:"deliveryInfo"`
}

func valid() checkoutInput {
	return checkoutInput{
		DeliveryType: "pickup",
		Quantity:     2,
		Price:        decimal.RequireFromString("10.00"),
		Email:        "buyer@example.com",
		Info:         address{Phone: "08030000000"},
	}
}

func TestValidInput(t *testing.T) {
	assert.Empty(t, validate.Struct(valid()))
	assert.Empty(t, validate.Struct(&checkoutInput{
		DeliveryType: "delivery", Quantity: 1, Price: decimal.NewFromInt(1),
		Email: "a@b.io", Site: "https://shop.example.com", Info: address{Phone: "1234567"},
	}))
}

func TestRequiredAndNested(t *testing.T) {
	errs := validate.Struct(checkoutInput{})
	assert.Contains(t, errs, "deliveryType")
	assert.Contains(t, errs, "quantity")
	assert.Contains(t, errs, "email")
	assert.Contains(t, errs, "deliveryInfo.phone")
	assert.NotContains(t, errs, "paymentId", "nullable field left empty must pass")
}

func TestOneOf(t *testing.T) {
	in := valid()
	in.DeliveryType = "drone"
	errs := validate.Struct(in)
	assert.Equal(t, "The deliveryType must be one of: delivery, pickup.", errs["deliveryType"])
}

func TestNumericBounds(t *testing.T) {
	in := valid()
	in.Quantity = 100
	in.Price = decimal.Zero
	errs := validate.Struct(in)
	assert.Contains(t, errs, "quantity")
	assert.Contains(t, errs, "price")
}

func TestStringLength(t *testing.T) {
	in := valid()
	in.PaymentID = "abc"
	assert.Contains(t, validate.Struct(in), "paymentId")
}

func TestEmailAndURL(t *testing.T) {
	in := valid()
	in.Email = "not-an-email"
	in.Site = "ftp://example.com"
	errs := validate.Struct(in)
	assert.Contains(t, errs, "email")
	assert.Contains(t, errs, "site")
}
