package paystack_test

import (
	"context"
	"encoding/json"
	gohttp "net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/storefront/pkg/paystack"
)

func TestInitialize(t *testing.T) {
	srv := httptest.NewServer(gohttp.HandlerFunc(func(w gohttp.ResponseWriter, r *gohttp.Request) {
		assert.Equal(t, "/transaction/initialize", r.URL.Path)
		assert.Equal(t, "Bearer sk_test", r.Header.Get("Authorization"))

		var in map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		assert.Equal(t, "ada@example.com", in["email"])
		assert.EqualValues(t, 2000, in["amount"])
		assert.Equal(t, "ref_1", in["reference"])

		w.Write([]byte(`{"status":true,"message":"ok","data":{"authorization_url":"https://checkout.paystack.com/x","access_code":"x","reference":"ref_1"}}`)) //nolint:errcheck
	}))
	defer srv.Close()

	tx, err := paystack.NewWithKey(srv.URL, "sk_test").Initialize(context.Background(), "ada@example.com", 2000, "ref_1")
	require.NoError(t, err)
	assert.Equal(t, "ref_1", tx.Reference)
	assert.Equal(t, "https://checkout.paystack.com/x", tx.AuthorizationURL)
}

func TestInitializeRejected(t *testing.T) {
	srv := httptest.NewServer(gohttp.HandlerFunc(func(w gohttp.ResponseWriter, _ *gohttp.Request) {
		w.Write([]byte(`{"status":false,"message":"Invalid key"}`)) //nolint:errcheck
	}))
	defer srv.Close()

	_, err := paystack.NewWithKey(srv.URL, "sk_bad").Initialize(context.Background(), "a@b.io", 100, "")
	assert.ErrorContains(t, err, "Invalid key")
}

func TestVerify(t *testing.T) {
	srv := httptest.NewServer(gohttp.HandlerFunc(func(w gohttp.ResponseWriter, r *gohttp.Request) {
		assert.Equal(t, gohttp.MethodGet, r.Method)
		assert.Equal(t, "/transaction/verify/ref_1", r.URL.Path)
		assert.Equal(t, "Bearer sk_test", r.Header.Get("Authorization"))
		w.Write([]byte(`{"status":true,"message":"Verification successful","data":{"status":"success","reference":"ref_1","amount":2000,"currency":"NGN"}}`)) //nolint:errcheck
	}))
	defer srv.Close()

	v, err := paystack.NewWithKey(srv.URL, "sk_test").Verify(context.Background(), "ref_1")
	require.NoError(t, err)
	assert.Equal(t, "success", v.Status)
	assert.Equal(t, "ref_1", v.Reference)
	assert.EqualValues(t, 2000, v.Amount)
	assert.Equal(t, "NGN", v.Currency)
}

func TestVerifyUnknownReference(t *testing.T) {
	srv := httptest.NewServer(gohttp.HandlerFunc(func(w gohttp.ResponseWriter, _ *gohttp.Request) {
		w.WriteHeader(gohttp.StatusBadRequest)
		w.Write([]byte(`{"status":false,"message":"Transaction reference not found"}`)) //nolint:errcheck
	}))
	defer srv.Close()

	_, err := paystack.NewWithKey(srv.URL, "sk_test").Verify(context.Background(), "nope")
	assert.ErrorContains(t, err, "paystack: verify")
}

func TestNotConfigured(t *testing.T) {
	_, err := paystack.NewWithKey("http://unused", "").Initialize(context.Background(), "a@b.io", 100, "")
	assert.ErrorIs(t, err, paystack.ErrNotConfigured)

	_, err = paystack.NewWithKey("http://unused", "").Verify(context.Background(), "ref_1")
	assert.ErrorIs(t, err, paystack.ErrNotConfigured)
}

func TestToKobo(t *testing.T) {
	assert.EqualValues(t, 2000, paystack.ToKobo(decimal.RequireFromString("20.00")))
	assert.EqualValues(t, 1999, paystack.ToKobo(decimal.RequireFromString("19.99")))
}

func TestSignature(t *testing.T) {
	body := []byte(`{"event":"charge.success"}`)
	sig := paystack.Sign("sk_test", body)
	assert.True(t, paystack.VerifySignature("sk_test", body, sig))
	assert.False(t, paystack.VerifySignature("sk_test", body, sig[:len(sig)-2]+"00"))
	assert.False(t, paystack.VerifySignature("sk_test", body, strings.ToUpper(sig)))
	assert.False(t, paystack.VerifySignature("sk_test", body, sig+" "))
}
