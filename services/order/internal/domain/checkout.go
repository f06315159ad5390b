package domain

import (
	"github.com/google/uuid"

	"github.com/Skotchmaster/marketplace/services/order/internal/models"
)

type LineItemRequest struct {
	ItemID      uuid.UUID
	Quantity    int64
	Variant     string
	Fulfillment models.Fulfillment
}

type CheckoutRequest struct {
	Items           []LineItemRequest
	ShippingAddress *models.Address
	LocalDelivery   *models.LocalDeliveryDetails
	ShippingCents   int64
	Flow            models.PaymentFlow
}

// ItemIDs returns the distinct item ids in cart order.
func (r CheckoutRequest) ItemIDs() []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(r.Items))
	ids := make([]uuid.UUID, 0, len(r.Items))
	for _, it := range r.Items {
		if _, ok := seen[it.ItemID]; ok {
			continue
		}
		seen[it.ItemID] = struct{}{}
		ids = append(ids, it.ItemID)
	}
	return ids
}
