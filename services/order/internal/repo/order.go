package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Skotchmaster/marketplace/services/order/internal/domain"
	"github.com/Skotchmaster/marketplace/services/order/internal/models"
)

// CreateOrders reserves stock and writes every order with its items in one
// transaction. A line whose product can no longer cover the quantity aborts
// the whole call with ErrInventoryChanged, so no earlier order survives.
func (r *GormRepo) CreateOrders(ctx context.Context, orders []models.Order) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i := range orders {
			order := &orders[i]
			for _, it := range order.Items {
				res := tx.Model(&models.Product{}).
					Where("id = ? AND active = ? AND quantity >= ?", it.ProductID, true, it.Quantity).
					Update("quantity", gorm.Expr("quantity - ?", it.Quantity))
				if res.Error != nil {
					return res.Error
				}
				if res.RowsAffected == 0 {
					return &domain.ItemError{Err: domain.ErrInventoryChanged, ItemID: it.ProductID, Detail: "availability changed, retry checkout"}
				}
			}

			items := order.Items
			if err := tx.Omit("Items").Create(order).Error; err != nil {
				return err
			}
			for j := range items {
				items[j].OrderID = order.ID
				items[j].Position = j
			}
			if len(items) > 0 {
				if err := tx.Create(&items).Error; err != nil {
					return err
				}
			}
			order.Items = items
		}
		return nil
	})
}

func preloadItems(db *gorm.DB) *gorm.DB {
	return db.Preload("Items", func(db *gorm.DB) *gorm.DB {
		return db.Order("position ASC")
	})
}

func (r *GormRepo) GetOrder(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	if err := preloadItems(r.DB.WithContext(ctx)).First(&order, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *GormRepo) ListBuyerOrders(ctx context.Context, buyerID uuid.UUID, limit, offset int) ([]models.Order, error) {
	var orders []models.Order
	q := preloadItems(r.DB.WithContext(ctx)).Where("buyer_id = ?", buyerID)
	if err := q.Order("created_at DESC").Order("id").Limit(limit).Offset(offset).Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

// ListSellerOpenOrders returns every non-canceled order of the seller.
func (r *GormRepo) ListSellerOpenOrders(ctx context.Context, sellerID uuid.UUID, limit, offset int) ([]models.Order, error) {
	var orders []models.Order
	q := preloadItems(r.DB.WithContext(ctx)).
		Where("seller_id = ? AND status <> ?", sellerID, models.OrderStatusCanceled)
	if err := q.Order("created_at DESC").Order("id").Limit(limit).Offset(offset).Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

// ListByIDs returns the buyer's orders among ids, in no particular order.
func (r *GormRepo) ListByIDs(ctx context.Context, buyerID uuid.UUID, ids []uuid.UUID) ([]models.Order, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var orders []models.Order
	q := preloadItems(r.DB.WithContext(ctx)).Where("buyer_id = ? AND id IN ?", buyerID, ids)
	if err := q.Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

// UpdateStatus moves an order from one status to another. It reports false
// when the order was no longer in from.
func (r *GormRepo) UpdateStatus(ctx context.Context, id uuid.UUID, from, to models.OrderStatus) (bool, error) {
	updates := map[string]any{"status": to}
	if to == models.OrderStatusCanceled {
		updates["canceled_at"] = time.Now().UTC()
	}
	res := r.DB.WithContext(ctx).Model(&models.Order{}).
		Where("id = ? AND status = ?", id, from).
		Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// MarkPaid flips the pending orders among ids to paid and returns the ids it changed.
func (r *GormRepo) MarkPaid(ctx context.Context, ids []uuid.UUID, ref string, at time.Time) ([]uuid.UUID, error) {
	var changed []uuid.UUID
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Order{}).
			Where("id IN ? AND status = ?", ids, models.OrderStatusPending).
			Pluck("id", &changed).Error; err != nil {
			return err
		}
		if len(changed) == 0 {
			return nil
		}
		return tx.Model(&models.Order{}).
			Where("id IN ? AND status = ?", changed, models.OrderStatusPending).
			Updates(map[string]any{
				"status":      models.OrderStatusPaid,
				"payment_ref": ref,
				"paid_at":     at,
			}).Error
	})
	if err != nil {
		return nil, err
	}
	return changed, nil
}

// RestoreInventory credits every item of a canceled order that was never
// paid through the gateway back to its product. The inventory_restored_at guard is claimed first, so only one
// caller ever gets to credit; the others see false.
func (r *GormRepo) RestoreInventory(ctx context.Context, id uuid.UUID, at time.Time) (bool, error) {
	restored := false
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Order{}).
			Where("id = ? AND status = ? AND inventory_restored_at IS NULL", id, models.OrderStatusCanceled).
			Where("(payment_ref IS NULL OR payment_ref = '')").
			Update("inventory_restored_at", at)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}

		var items []models.OrderItem
		if err := tx.Where("order_id = ?", id).Find(&items).Error; err != nil {
			return err
		}
		for _, it := range items {
			if err := tx.Model(&models.Product{}).
				Where("id = ?", it.ProductID).
				Update("quantity", gorm.Expr("quantity + ?", it.Quantity)).Error; err != nil {
				return err
			}
		}
		restored = true
		return nil
	})
	return restored, err
}
