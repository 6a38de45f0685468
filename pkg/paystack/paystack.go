// Package paystack is a small client for the Paystack transactions API and
// the webhook signature scheme.
package paystack

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/shashiranjanraj/storefront/config"
	"github.com/shashiranjanraj/storefront/pkg/crypt"
	"github.com/shashiranjanraj/storefront/pkg/http"
)

// SignatureHeader carries the hex HMAC-SHA512 of the raw webhook body.
const SignatureHeader = "x-paystack-signature"

// Webhook event names.
const (
	EventChargeSuccess   = "charge.success"
	EventChargeFailed    = "charge.failed"
	EventTransferSuccess = "transfer.success"
)

var ErrNotConfigured = errors.New("paystack: secret key not configured")

// Event is the webhook payload envelope.
type Event struct {
	Event string    `json:"event"`
	Data  EventData `json:"data"`
}

type EventData struct {
	Reference string `json:"reference"`
	Status    string `json:"status"`
	Amount    int64  `json:"amount"`
	Currency  string `json:"currency"`
}

// Transaction is the result of initializing a payment.
type Transaction struct {
	AuthorizationURL string `json:"authorization_url"`
	AccessCode       string `json:"access_code"`
	Reference        string `json:"reference"`
}

// Verification is the subset of /transaction/verify the store reads.
type Verification struct {
	Status    string `json:"status"`
	Reference string `json:"reference"`
	Amount    int64  `json:"amount"`
	Currency  string `json:"currency"`
}

type Client struct {
	baseURL     string
	secretKey   string
	callbackURL string
}

// New builds a client from the PAYSTACK_* settings.
func New() *Client {
	return &Client{
		baseURL:     strings.TrimRight(config.PaystackBaseURL(), "/"),
		secretKey:   config.PaystackSecretKey(),
		callbackURL: config.PaystackCallback(),
	}
}

// NewWithKey builds a client against an explicit base URL.
func NewWithKey(baseURL, secretKey string) *Client {
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), secretKey: secretKey}
}

type envelope[T any] struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
	Data    T      `json:"data"`
}

// ToKobo converts a naira amount to the integer minor unit Paystack expects.
func ToKobo(amount decimal.Decimal) int64 {
	return amount.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}

// Initialize starts a transaction for amount (in kobo) and returns the
// checkout URL. reference may be empty, in which case Paystack generates one.
func (c *Client) Initialize(ctx context.Context, email string, amountKobo int64, reference string) (*Transaction, error) {
	if c.secretKey == "" {
		return nil, ErrNotConfigured
	}
	payload := map[string]any{
		"email":  email,
		"amount": amountKobo,
	}
	if reference != "" {
		payload["reference"] = reference
	}
	if c.callbackURL != "" {
		payload["callback_url"] = c.callbackURL
	}

	resp, err := http.Post(c.baseURL+"/transaction/initialize").
		Bearer(c.secretKey).
		Body(payload).
		Timeout(10*time.Second).
		Retry(2, 300*time.Millisecond).
		Send(ctx)
	if err != nil {
		return nil, fmt.Errorf("paystack: initialize: %w", err)
	}

	var out envelope[Transaction]
	if err := decode(resp, &out); err != nil {
		return nil, fmt.Errorf("paystack: initialize: %w", err)
	}
	return &out.Data, nil
}

// Verify looks up a transaction by reference.
func (c *Client) Verify(ctx context.Context, reference string) (*Verification, error) {
	if c.secretKey == "" {
		return nil, ErrNotConfigured
	}
	resp, err := http.Get(c.baseURL + "/transaction/verify/" + url.PathEscape(reference)).
		Bearer(c.secretKey).
		Timeout(10 * time.Second).
		Send(ctx)
	if err != nil {
		return nil, fmt.Errorf("paystack: verify: %w", err)
	}

	var out envelope[Verification]
	if err := decode(resp, &out); err != nil {
		return nil, fmt.Errorf("paystack: verify: %w", err)
	}
	return &out.Data, nil
}

func decode[T any](resp *http.Response, out *envelope[T]) error {
	if err := resp.Throw(); err != nil {
		return err
	}
	if err := resp.JSON(out); err != nil {
		return err
	}
	if !out.Status {
		return fmt.Errorf("rejected: %s", out.Message)
	}
	return nil
}

// VerifySignature checks the x-paystack-signature header against body.
func VerifySignature(secret string, body []byte, signature string) bool {
	return crypt.VerifySHA512([]byte(secret), body, signature)
}

// Sign computes the signature Paystack would send for body.
func Sign(secret string, body []byte) string {
	return crypt.SignSHA512([]byte(secret), body)
}
