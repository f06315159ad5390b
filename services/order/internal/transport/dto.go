package transport

import (
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/Skotchmaster/marketplace/services/order/internal/domain"
	"github.com/Skotchmaster/marketplace/services/order/internal/models"
	"github.com/Skotchmaster/marketplace/services/order/internal/service"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

type CheckoutItem struct {
	ItemID      uuid.UUID          `json:"item_id"`
	Quantity    int64              `json:"quantity"`
	Variant     string             `json:"variant,omitempty"`
	Fulfillment models.Fulfillment `json:"fulfillment,omitempty"`
}

type CheckoutRequest struct {
	Items           []CheckoutItem               `json:"items"`
	ShippingAddress *models.Address              `json:"shipping_address,omitempty"`
	LocalDelivery   *models.LocalDeliveryDetails `json:"local_delivery,omitempty"`
	ShippingCents   int64                        `json:"shipping_cents"`
	Flow            models.PaymentFlow           `json:"flow,omitempty"`
}

func (r CheckoutRequest) ToDomain() domain.CheckoutRequest {
	items := make([]domain.LineItemRequest, len(r.Items))
	for i, it := range r.Items {
		items[i] = domain.LineItemRequest{
			ItemID:      it.ItemID,
			Quantity:    it.Quantity,
			Variant:     strings.TrimSpace(it.Variant),
			Fulfillment: it.Fulfillment,
		}
	}
	return domain.CheckoutRequest{
		Items:           items,
		ShippingAddress: r.ShippingAddress,
		LocalDelivery:   r.LocalDelivery,
		ShippingCents:   r.ShippingCents,
		Flow:            models.PaymentFlow(strings.ToLower(strings.TrimSpace(string(r.Flow)))),
	}
}

type CheckoutResponse struct {
	CheckoutID   uuid.UUID          `json:"checkout_id"`
	Flow         models.PaymentFlow `json:"flow"`
	OrderIDs     []uuid.UUID        `json:"order_ids"`
	RedirectURL  string             `json:"redirect_url,omitempty"`
	ClientSecret string             `json:"client_secret,omitempty"`
	Summary      service.Summary    `json:"summary"`
}

func NewCheckoutResponse(res *service.CheckoutResult) CheckoutResponse {
	return CheckoutResponse{
		CheckoutID:   res.CheckoutID,
		Flow:         res.Flow,
		OrderIDs:     res.OrderIDs,
		RedirectURL:  res.RedirectURL,
		ClientSecret: res.ClientSecret,
		Summary:      res.Summary,
	}
}

type UpdateStatusRequest struct {
	Status models.OrderStatus `json:"status"`
}

type ErrorResponse struct {
	Code       string      `json:"code"`
	Message    string      `json:"message"`
	ItemID     *uuid.UUID  `json:"item_id,omitempty"`
	CheckoutID *uuid.UUID  `json:"checkout_id,omitempty"`
	OrderIDs   []uuid.UUID `json:"order_ids,omitempty"`
}

type OrdersResponse struct {
	Data []models.Order `json:"data"`
	Meta *PageMeta      `json:"meta,omitempty"`
}

type PageMeta struct {
	Page int `json:"page"`
	Size int `json:"size"`
}

func ParseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	if v, err := strconv.Atoi(s); err == nil {
		return v
	}
	return def
}

// Page turns a 1-based page and size into offset and limit.
func Page(page, size int) (offset, limit int) {
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = DefaultPageSize
	}
	if size > MaxPageSize {
		size = MaxPageSize
	}
	return (page - 1) * size, size
}

// ParseIDs reads a comma separated list of order ids.
func ParseIDs(s string) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := uuid.Parse(part)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}
