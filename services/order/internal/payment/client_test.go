package payment

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_CreateCheckoutSession(t *testing.T) {
	checkoutID := uuid.New()
	orderIDs := []uuid.UUID{uuid.New(), uuid.New()}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/checkout/sessions", r.URL.Path)
		assert.Equal(t, "Bearer sk_test", r.Header.Get("Authorization"))

		var req SessionRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, int64(3200), req.AmountCents)
		assert.Equal(t, "usd", req.Currency)
		assert.Len(t, req.LineItems, 2)
		assert.Equal(t, checkoutID.String(), req.Metadata[MetaCheckoutID])
		assert.Equal(t, orderIDs[0].String()+","+orderIDs[1].String(), req.Metadata[MetaOrderIDs])

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(Session{ID: "cs_123", URL: "https://pay.example/cs_123"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL+"/", "sk_test", time.Second)
	s, err := c.CreateCheckoutSession(context.Background(), SessionRequest{
		AmountCents: 3200,
		Currency:    NormalizeCurrency(" USD "),
		LineItems: []LineItem{
			{Name: "lamp", UnitPriceCents: 1000, Quantity: 2},
			{Name: "Shipping", UnitPriceCents: 1200, Quantity: 1},
		},
		Metadata: Metadata(checkoutID, orderIDs),
	})
	require.NoError(t, err)
	assert.Equal(t, "cs_123", s.ID)
	assert.Equal(t, "https://pay.example/cs_123", s.URL)
}

func TestClient_CreatePaymentIntent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/payment_intents", r.URL.Path)
		_ = json.NewEncoder(w).Encode(Intent{ID: "pi_1", ClientSecret: "pi_1_secret"})
	}))
	defer srv.Close()

	in, err := NewClient(srv.URL, "sk", time.Second).CreatePaymentIntent(context.Background(), IntentRequest{AmountCents: 100, Currency: "usd"})
	require.NoError(t, err)
	assert.Equal(t, "pi_1", in.ID)
	assert.Equal(t, "pi_1_secret", in.ClientSecret)
}

func TestClient_RejectionIsStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "card declined", http.StatusPaymentRequired)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, "sk", time.Second).CreatePaymentIntent(context.Background(), IntentRequest{AmountCents: 100})
	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusPaymentRequired, se.StatusCode)
}

func TestClient_IncompleteSession(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id":"cs_1"}`))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, "sk", time.Second).CreateCheckoutSession(context.Background(), SessionRequest{})
	assert.Error(t, err)
}

func TestClient_BreakerOpensOnServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	st := DefaultBreakerSettings()
	st.ReadyToTrip = func(counts gobreaker.Counts) bool { return counts.ConsecutiveFailures >= 2 }
	c := NewClient(srv.URL, "sk", time.Second, WithBreakerSettings(st))

	for i := 0; i < 2; i++ {
		_, err := c.CreatePaymentIntent(context.Background(), IntentRequest{AmountCents: 1})
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrUnavailable)
	}

	_, err := c.CreatePaymentIntent(context.Background(), IntentRequest{AmountCents: 1})
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.Equal(t, int32(2), calls.Load())
}

func TestClient_RejectionsDoNotOpenBreaker(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	st := DefaultBreakerSettings()
	st.ReadyToTrip = func(counts gobreaker.Counts) bool { return counts.ConsecutiveFailures >= 1 }
	c := NewClient(srv.URL, "sk", time.Second, WithBreakerSettings(st))

	for i := 0; i < 3; i++ {
		_, err := c.CreatePaymentIntent(context.Background(), IntentRequest{AmountCents: 1})
		var se *StatusError
		require.True(t, errors.As(err, &se))
	}
}

func TestVerifySignature(t *testing.T) {
	secret := []byte("whsec")
	body := []byte(`{"type":"payment.succeeded","reference":"cs_1"}`)

	require.NoError(t, Verify(secret, body, Sign(secret, body)))
	assert.ErrorIs(t, Verify(secret, body, Sign([]byte("other"), body)), ErrBadSignature)
	assert.ErrorIs(t, Verify(secret, []byte(`{}`), Sign(secret, body)), ErrBadSignature)
	assert.ErrorIs(t, Verify(secret, body, "zz"), ErrBadSignature)
	assert.ErrorIs(t, Verify(nil, body, Sign(nil, body)), ErrBadSignature)
}
