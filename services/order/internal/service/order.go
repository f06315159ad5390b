package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Skotchmaster/marketplace/pkg/logging"
	"github.com/Skotchmaster/marketplace/services/order/internal/domain"
	"github.com/Skotchmaster/marketplace/services/order/internal/events"
	"github.com/Skotchmaster/marketplace/services/order/internal/models"
	"github.com/Skotchmaster/marketplace/services/order/internal/repo"
)

type OrderService struct {
	Repo   *repo.GormRepo
	Events *events.Emitter
}

func (s *OrderService) load(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	order, err := s.Repo.GetOrder(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("order %s: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return order, nil
}

// GetOrder returns the order to its buyer or its seller.
func (s *OrderService) GetOrder(ctx context.Context, actorID, id uuid.UUID) (*models.Order, error) {
	order, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if actorID != order.BuyerID && actorID != order.SellerID {
		return nil, domain.ErrForbidden
	}
	return order, nil
}

func (s *OrderService) ListBuyerOrders(ctx context.Context, buyerID uuid.UUID, limit, offset int) ([]models.Order, error) {
	return s.Repo.ListBuyerOrders(ctx, buyerID, limit, offset)
}

func (s *OrderService) ListSellerOpenOrders(ctx context.Context, sellerID uuid.UUID, limit, offset int) ([]models.Order, error) {
	return s.Repo.ListSellerOpenOrders(ctx, sellerID, limit, offset)
}

func (s *OrderService) ListByIDs(ctx context.Context, buyerID uuid.UUID, ids []uuid.UUID) ([]models.Order, error) {
	return s.Repo.ListByIDs(ctx, buyerID, ids)
}

// ConfirmPayment marks the orders bound to reference as paid. The binding
// decides which orders are affected; claimed ids that disagree with it are
// ignored. Repeated confirmations change nothing.
func (s *OrderService) ConfirmPayment(ctx context.Context, reference string, claimed []uuid.UUID) ([]uuid.UUID, error) {
	l := logging.FromContext(ctx).With("service", "confirm_payment", "reference", reference)

	if reference == "" {
		return nil, fmt.Errorf("%w: payment reference required", domain.ErrInvalidRequest)
	}
	binding, err := s.Repo.FindBinding(ctx, reference)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("payment reference %s: %w", reference, domain.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}

	ids, err := models.SplitIDs(binding.OrderIDs)
	if err != nil {
		return nil, fmt.Errorf("payment binding %s: %w", binding.ID, err)
	}
	if len(claimed) > 0 && models.JoinIDs(claimed) != binding.OrderIDs {
		l.Warn("confirm_payment_ids_mismatch", "claimed", models.JoinIDs(claimed), "bound", binding.OrderIDs)
	}

	changed, err := s.Repo.MarkPaid(ctx, ids, reference, time.Now().UTC())
	if err != nil {
		return nil, err
	}
	completed, err := s.Repo.CompleteBinding(ctx, reference)
	if err != nil {
		return nil, err
	}

	paid := make(map[uuid.UUID]bool, len(changed))
	for _, id := range changed {
		paid[id] = true
		if order, err := s.Repo.GetOrder(ctx, id); err == nil {
			s.Events.Emit(ctx, events.NewOrderEvent(events.TypeOrderPaid, order))
		}
	}
	if completed {
		s.refundCanceled(ctx, reference, ids, paid)
	}
	l.Info("payment_confirmed", "orders_paid", len(changed), "orders_bound", len(ids))
	return changed, nil
}

// refundCanceled flags bound orders that were canceled before the payment
// went through. The buyer was charged for them, so each one needs a refund.
// It runs only for the notification that completed the binding.
func (s *OrderService) refundCanceled(ctx context.Context, reference string, ids []uuid.UUID, paid map[uuid.UUID]bool) {
	l := logging.FromContext(ctx).With("service", "confirm_payment", "reference", reference)
	for _, id := range ids {
		if paid[id] {
			continue
		}
		order, err := s.Repo.GetOrder(ctx, id)
		if err != nil {
			l.Error("confirm_payment_load_error", "order_id", id, "error", err)
			continue
		}
		if order.Status != models.OrderStatusCanceled {
			continue
		}
		l.Warn("payment_for_canceled_order", "order_id", id, "relisted", order.InventoryRestoredAt != nil)
		ev := events.NewOrderEvent(events.TypeOrderCanceled, order)
		ev.PaymentRef = reference
		ev.RefundRequired = true
		s.Events.Emit(ctx, ev)
	}
}

// Cancel moves a pending or paid order to canceled on behalf of its buyer or seller.
func (s *OrderService) Cancel(ctx context.Context, actorID, id uuid.UUID) (*models.Order, error) {
	order, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if actorID != order.BuyerID && actorID != order.SellerID {
		return nil, domain.ErrForbidden
	}
	if !order.Status.CanTransitionTo(models.OrderStatusCanceled) {
		return nil, fmt.Errorf("%w: order is %s", domain.ErrConflict, order.Status)
	}

	ok, err := s.Repo.UpdateStatus(ctx, id, order.Status, models.OrderStatusCanceled)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: order status changed concurrently", domain.ErrConflict)
	}

	wasPaid := order.Status == models.OrderStatusPaid
	if order, err = s.load(ctx, id); err != nil {
		return nil, err
	}
	ev := events.NewOrderEvent(events.TypeOrderCanceled, order)
	ev.RefundRequired = wasPaid && !order.IsCash()
	s.Events.Emit(ctx, ev)
	return order, nil
}

// UpdateStatus lets the seller mark an order shipped or delivered.
func (s *OrderService) UpdateStatus(ctx context.Context, sellerID, id uuid.UUID, to models.OrderStatus) (*models.Order, error) {
	if !to.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", domain.ErrInvalidRequest, to)
	}
	if to != models.OrderStatusShipped && to != models.OrderStatusDelivered {
		return nil, fmt.Errorf("%w: status must be shipped or delivered", domain.ErrInvalidRequest)
	}
	order, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if sellerID != order.SellerID {
		return nil, domain.ErrForbidden
	}
	if !order.Status.CanTransitionTo(to) {
		return nil, fmt.Errorf("%w: cannot move order from %s to %s", domain.ErrConflict, order.Status, to)
	}

	ok, err := s.Repo.UpdateStatus(ctx, id, order.Status, to)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: order status changed concurrently", domain.ErrConflict)
	}

	if order, err = s.load(ctx, id); err != nil {
		return nil, err
	}
	s.Events.Emit(ctx, events.NewOrderEvent(events.TypeOrderStatus, order))
	return order, nil
}

// Relist returns the stock of a canceled cash order to the catalog. Only
// the seller may do it, and only once per order.
func (s *OrderService) Relist(ctx context.Context, sellerID, id uuid.UUID) (*models.Order, error) {
	order, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if sellerID != order.SellerID {
		return nil, domain.ErrForbidden
	}
	if order.InventoryRestoredAt != nil {
		return nil, domain.ErrAlreadyRelisted
	}
	if order.Status != models.OrderStatusCanceled {
		return nil, fmt.Errorf("%w: only canceled orders can be relisted, order is %s", domain.ErrConflict, order.Status)
	}
	if !order.IsCash() {
		return nil, fmt.Errorf("%w: paid through the payment gateway, stock is restored by the refund", domain.ErrConflict)
	}

	restored, err := s.Repo.RestoreInventory(ctx, id, time.Now().UTC())
	if err != nil {
		return nil, err
	}
	if !restored {
		return nil, domain.ErrAlreadyRelisted
	}

	if order, err = s.load(ctx, id); err != nil {
		return nil, err
	}
	logging.FromContext(ctx).Info("order_relisted", "order_id", id, "items", len(order.Items))
	s.Events.Emit(ctx, events.NewOrderEvent(events.TypeOrderRelisted, order))
	return order, nil
}
