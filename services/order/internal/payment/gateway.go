// Package payment talks to the external payment collaborator: hosted
// checkout sessions, embedded payment intents and signed notifications.
package payment

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/Skotchmaster/marketplace/services/order/internal/models"
)

const (
	MetaCheckoutID = "checkout_id"
	MetaOrderIDs   = "order_ids"
)

type LineItem struct {
	Name           string `json:"name"`
	UnitPriceCents int64  `json:"unit_price_cents"`
	Quantity       int64  `json:"quantity"`
}

type SessionRequest struct {
	AmountCents int64             `json:"amount_cents"`
	Currency    string            `json:"currency"`
	LineItems   []LineItem        `json:"line_items"`
	SuccessURL  string            `json:"success_url"`
	CancelURL   string            `json:"cancel_url"`
	Metadata    map[string]string `json:"metadata"`
}

type Session struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

type IntentRequest struct {
	AmountCents int64             `json:"amount_cents"`
	Currency    string            `json:"currency"`
	Metadata    map[string]string `json:"metadata"`
}

type Intent struct {
	ID           string `json:"id"`
	ClientSecret string `json:"client_secret"`
}

type Gateway interface {
	CreateCheckoutSession(ctx context.Context, req SessionRequest) (*Session, error)
	CreatePaymentIntent(ctx context.Context, req IntentRequest) (*Intent, error)
}

// Metadata is attached to every session and intent so a notification can be
// traced back to the checkout and its orders.
func Metadata(checkoutID uuid.UUID, orderIDs []uuid.UUID) map[string]string {
	return map[string]string{
		MetaCheckoutID: checkoutID.String(),
		MetaOrderIDs:   models.JoinIDs(orderIDs),
	}
}

// NormalizeCurrency lower-cases an ISO code and defaults to usd.
func NormalizeCurrency(c string) string {
	c = strings.ToLower(strings.TrimSpace(c))
	if c == "" {
		return "usd"
	}
	return c
}
