// Package events publishes order lifecycle changes to the order_events topic.
package events

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/Skotchmaster/marketplace/pkg/logging"
	"github.com/Skotchmaster/marketplace/services/order/internal/models"
)

const Topic = "order_events"

const (
	TypeOrderCreated  = "order_created"
	TypeOrderPaid     = "order_paid"
	TypeOrderCanceled = "order_canceled"
	TypeOrderStatus   = "order_status_changed"
	TypeOrderRelisted = "order_relisted"
)

// Publisher is satisfied by mykafka.Producer.
type Publisher interface {
	PublishEvent(ctx context.Context, topic, key string, event any) error
}

type OrderEvent struct {
	Type           string             `json:"type"`
	OrderID        uuid.UUID          `json:"orderID"`
	CheckoutID     uuid.UUID          `json:"checkoutID"`
	BuyerID        uuid.UUID          `json:"buyerID"`
	SellerID       uuid.UUID          `json:"sellerID"`
	Status         models.OrderStatus `json:"status"`
	TotalCents     int64              `json:"totalCents"`
	PaymentRef     string             `json:"paymentRef,omitempty"`
	RefundRequired bool               `json:"refundRequired,omitempty"`
	At             time.Time          `json:"at"`
}

func NewOrderEvent(typ string, o *models.Order) OrderEvent {
	ev := OrderEvent{
		Type:       typ,
		OrderID:    o.ID,
		CheckoutID: o.CheckoutID,
		BuyerID:    o.BuyerID,
		SellerID:   o.SellerID,
		Status:     o.Status,
		TotalCents: o.TotalCents,
		At:         time.Now().UTC(),
	}
	if o.PaymentRef != nil {
		ev.PaymentRef = *o.PaymentRef
	}
	return ev
}

// Emitter sends events best effort: a broker failure is logged and never
// fails the order operation that already committed.
type Emitter struct {
	Publisher Publisher
	Timeout   time.Duration
}

func (e *Emitter) Emit(ctx context.Context, ev OrderEvent) {
	if e == nil || e.Publisher == nil {
		return
	}
	timeout := e.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
	defer cancel()

	if err := e.Publisher.PublishEvent(ctx, Topic, ev.OrderID.String(), ev); err != nil {
		logging.FromContext(ctx).Error("order_event_publish_error", "type", ev.Type, "order_id", ev.OrderID, "error", err)
	}
}
