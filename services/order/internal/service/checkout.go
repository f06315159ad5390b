package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/Skotchmaster/marketplace/pkg/logging"
	"github.com/Skotchmaster/marketplace/services/order/internal/domain"
	"github.com/Skotchmaster/marketplace/services/order/internal/events"
	"github.com/Skotchmaster/marketplace/services/order/internal/models"
	"github.com/Skotchmaster/marketplace/services/order/internal/payment"
	"github.com/Skotchmaster/marketplace/services/order/internal/repo"
)

const (
	shippingLineName      = "Shipping"
	localDeliveryLineName = "Local Delivery"
)

type CheckoutService struct {
	Repo       *repo.GormRepo
	Gateway    payment.Gateway
	Events     *events.Emitter
	Currency   string
	SuccessURL string
	CancelURL  string
}

type SummaryLine struct {
	ItemID         uuid.UUID          `json:"item_id"`
	SellerID       uuid.UUID          `json:"seller_id"`
	Name           string             `json:"name"`
	Variant        string             `json:"variant,omitempty"`
	Fulfillment    models.Fulfillment `json:"fulfillment"`
	Quantity       int64              `json:"quantity"`
	UnitPriceCents int64              `json:"unit_price_cents"`
	AmountCents    int64              `json:"amount_cents"`
}

// Summary is the buyer-facing breakdown of a checkout.
type Summary struct {
	Lines              []SummaryLine `json:"lines"`
	SubtotalCents      int64         `json:"subtotal_cents"`
	ShippingCents      int64         `json:"shipping_cents"`
	LocalDeliveryCents int64         `json:"local_delivery_cents"`
	TotalCents         int64         `json:"total_cents"`
	Currency           string        `json:"currency"`
}

type CheckoutResult struct {
	CheckoutID   uuid.UUID
	Flow         models.PaymentFlow
	OrderIDs     []uuid.UUID
	Orders       []models.Order
	Summary      Summary
	RedirectURL  string
	ClientSecret string
	PaymentRef   string
}

// Checkout turns the buyer's cart into one pending order per seller and
// starts a single payment for the grand total. Validation failures happen
// before any write. A payment failure returns *domain.PaymentError and
// leaves the orders pending without a payment reference.
func (s *CheckoutService) Checkout(ctx context.Context, buyerID uuid.UUID, req domain.CheckoutRequest) (*CheckoutResult, error) {
	l := logging.FromContext(ctx).With("service", "checkout")

	if buyerID == uuid.Nil {
		return nil, domain.ErrUnauthenticated
	}
	if req.ShippingCents < 0 {
		return nil, fmt.Errorf("%w: shipping cost must not be negative", domain.ErrInvalidRequest)
	}
	switch req.Flow {
	case "":
		req.Flow = models.FlowHosted
	case models.FlowHosted, models.FlowEmbedded:
	default:
		return nil, fmt.Errorf("%w: unknown payment flow %q", domain.ErrInvalidRequest, req.Flow)
	}

	av, err := s.Repo.Snapshot(ctx, req.ItemIDs())
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	groups, err := domain.Partition(req, av)
	if err != nil {
		return nil, err
	}
	alloc := domain.Allocate(groups, req.ShippingCents)

	checkoutID := uuid.New()
	orders := s.materialize(checkoutID, buyerID, req, alloc)
	if err := s.Repo.CreateOrders(ctx, orders); err != nil {
		return nil, err
	}

	res := &CheckoutResult{
		CheckoutID: checkoutID,
		Flow:       req.Flow,
		OrderIDs:   make([]uuid.UUID, len(orders)),
		Orders:     orders,
		Summary:    s.summary(alloc),
	}
	for i := range orders {
		res.OrderIDs[i] = orders[i].ID
		s.Events.Emit(ctx, events.NewOrderEvent(events.TypeOrderCreated, &orders[i]))
	}
	l.Info("checkout_materialized", "checkout_id", checkoutID, "orders", len(orders), "total_cents", alloc.GrandTotalCents)

	if err := s.bind(ctx, buyerID, alloc, res); err != nil {
		l.Error("checkout_payment_error", "checkout_id", checkoutID, "order_ids", models.JoinIDs(res.OrderIDs), "error", err)
		return nil, &domain.PaymentError{CheckoutID: checkoutID, OrderIDs: res.OrderIDs, Err: err}
	}
	return res, nil
}

// materialize builds one pending order per seller group. Each order keeps
// only the address snapshot its own fulfillment types need.
func (s *CheckoutService) materialize(checkoutID, buyerID uuid.UUID, req domain.CheckoutRequest, alloc domain.Allocation) []models.Order {
	orders := make([]models.Order, 0, len(alloc.Groups))
	for _, g := range alloc.Groups {
		o := models.Order{
			ID:                 uuid.New(),
			CheckoutID:         checkoutID,
			BuyerID:            buyerID,
			SellerID:           g.SellerID,
			SubtotalCents:      g.SubtotalCents,
			ShippingCents:      g.ShippingCents,
			LocalDeliveryCents: g.LocalDeliveryCents,
			TotalCents:         g.TotalCents,
			Status:             models.OrderStatusPending,
			Items:              make([]models.OrderItem, 0, len(g.Lines)),
		}
		if g.HasShip && req.ShippingAddress != nil {
			addr := *req.ShippingAddress
			o.ShippingAddress = &addr
		}
		if g.HasLocalDelivery && req.LocalDelivery != nil {
			details := *req.LocalDelivery
			o.LocalDelivery = &details
		}

		for _, line := range g.Lines {
			item := models.OrderItem{
				ProductID:      line.Snapshot.ItemID,
				Name:           line.Snapshot.Name,
				Quantity:       line.Request.Quantity,
				UnitPriceCents: line.Snapshot.PriceCents,
				Variant:        line.Request.Variant,
				Fulfillment:    line.Request.Fulfillment,
			}
			if line.LocalDeliveryFeeCents() > 0 {
				item.LocalDeliveryFeeCents = *line.Snapshot.LocalDeliveryFeeCents
			}
			o.Items = append(o.Items, item)
		}
		orders = append(orders, o)
	}
	return orders
}

func (s *CheckoutService) summary(alloc domain.Allocation) Summary {
	sum := Summary{
		SubtotalCents:      alloc.SubtotalCents(),
		ShippingCents:      alloc.ShippingCents,
		LocalDeliveryCents: alloc.LocalDeliveryCents(),
		TotalCents:         alloc.GrandTotalCents,
		Currency:           payment.NormalizeCurrency(s.Currency),
	}
	for _, g := range alloc.Groups {
		for _, line := range g.Lines {
			sum.Lines = append(sum.Lines, SummaryLine{
				ItemID:         line.Snapshot.ItemID,
				SellerID:       g.SellerID,
				Name:           line.Snapshot.Name,
				Variant:        line.Request.Variant,
				Fulfillment:    line.Request.Fulfillment,
				Quantity:       line.Request.Quantity,
				UnitPriceCents: line.Snapshot.PriceCents,
				AmountCents:    line.AmountCents(),
			})
		}
	}
	return sum
}

func (s *CheckoutService) bind(ctx context.Context, buyerID uuid.UUID, alloc domain.Allocation, res *CheckoutResult) error {
	meta := payment.Metadata(res.CheckoutID, res.OrderIDs)
	currency := payment.NormalizeCurrency(s.Currency)

	binding := &models.PaymentBinding{
		CheckoutID:  res.CheckoutID,
		BuyerID:     buyerID,
		Flow:        res.Flow,
		OrderIDs:    models.JoinIDs(res.OrderIDs),
		AmountCents: alloc.GrandTotalCents,
		Status:      models.BindingPending,
	}

	switch res.Flow {
	case models.FlowEmbedded:
		intent, err := s.Gateway.CreatePaymentIntent(ctx, payment.IntentRequest{
			AmountCents: alloc.GrandTotalCents,
			Currency:    currency,
			Metadata:    meta,
		})
		if err != nil {
			return err
		}
		binding.Reference = intent.ID
		if err := s.Repo.CreateBinding(ctx, binding); err != nil {
			return fmt.Errorf("store payment binding: %w", err)
		}
		res.ClientSecret = intent.ClientSecret
		res.PaymentRef = intent.ID

	default:
		session, err := s.Gateway.CreateCheckoutSession(ctx, payment.SessionRequest{
			AmountCents: alloc.GrandTotalCents,
			Currency:    currency,
			LineItems:   hostedLineItems(alloc),
			SuccessURL:  s.SuccessURL,
			CancelURL:   s.CancelURL,
			Metadata:    meta,
		})
		if err != nil {
			return err
		}
		binding.Reference = session.ID
		if err := s.Repo.CreateBinding(ctx, binding); err != nil {
			return fmt.Errorf("store payment binding: %w", err)
		}
		res.RedirectURL = session.URL
		res.PaymentRef = session.ID
	}
	return nil
}

// hostedLineItems lists every cart line plus one synthetic line for each
// non-zero shared charge, so the lines add up to the grand total.
func hostedLineItems(alloc domain.Allocation) []payment.LineItem {
	var items []payment.LineItem
	for _, g := range alloc.Groups {
		for _, line := range g.Lines {
			items = append(items, payment.LineItem{
				Name:           line.Snapshot.Name,
				UnitPriceCents: line.Snapshot.PriceCents,
				Quantity:       line.Request.Quantity,
			})
		}
	}
	if alloc.ShippingCents > 0 {
		items = append(items, payment.LineItem{Name: shippingLineName, UnitPriceCents: alloc.ShippingCents, Quantity: 1})
	}
	if fee := alloc.LocalDeliveryCents(); fee > 0 {
		items = append(items, payment.LineItem{Name: localDeliveryLineName, UnitPriceCents: fee, Quantity: 1})
	}
	return items
}
