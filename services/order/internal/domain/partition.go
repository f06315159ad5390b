package domain

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/Skotchmaster/marketplace/services/order/internal/models"
)

// Line is a validated cart line paired with the snapshot it was checked against.
type Line struct {
	Request  LineItemRequest
	Snapshot CatalogSnapshot
}

func (l Line) AmountCents() int64 {
	return l.Snapshot.PriceCents * l.Request.Quantity
}

// LocalDeliveryFeeCents is zero unless the line is local_delivery and its
// item carries a positive per-unit fee.
func (l Line) LocalDeliveryFeeCents() int64 {
	if l.Request.Fulfillment != models.FulfillmentLocalDelivery {
		return 0
	}
	fee := l.Snapshot.LocalDeliveryFeeCents
	if fee == nil || *fee <= 0 {
		return 0
	}
	return *fee * l.Request.Quantity
}

type SellerGroup struct {
	SellerID         uuid.UUID
	Lines            []Line
	HasShip          bool
	HasLocalDelivery bool
	HasPickup        bool

	SubtotalCents      int64
	ShippingCents      int64
	LocalDeliveryCents int64
	TotalCents         int64
}

// Partition validates the cart against the snapshots and splits it into one
// group per seller, ordered by the first appearance of the seller in the cart.
func Partition(req CheckoutRequest, av Availability) ([]SellerGroup, error) {
	if len(req.Items) == 0 {
		return nil, ErrEmptyCart
	}

	items := make([]LineItemRequest, len(req.Items))
	for i, it := range req.Items {
		if it.ItemID == uuid.Nil {
			return nil, fmt.Errorf("%w: line %d has no item id", ErrInvalidRequest, i+1)
		}
		f, ok := it.Fulfillment.Normalize()
		if !ok {
			return nil, &ItemError{Err: ErrInvalidRequest, ItemID: it.ItemID, Detail: fmt.Sprintf("unknown fulfillment type %q", it.Fulfillment)}
		}
		it.Fulfillment = f
		items[i] = it
	}

	for _, it := range items {
		if _, ok := av.Snapshots[it.ItemID]; !ok {
			reason, known := av.Unavailable[it.ItemID]
			if !known {
				reason = ReasonNotFound
			}
			return nil, &ItemError{Err: ErrItemUnavailable, ItemID: it.ItemID, Detail: string(reason)}
		}
	}

	requested := make(map[uuid.UUID]int64, len(items))
	for _, it := range items {
		if it.Quantity < 1 {
			return nil, &ItemError{Err: ErrQuantityInvalid, ItemID: it.ItemID, Detail: "quantity must be at least 1"}
		}
		requested[it.ItemID] += it.Quantity
		if available := av.Snapshots[it.ItemID].Available; requested[it.ItemID] > available {
			return nil, &ItemError{
				Err:    ErrQuantityInvalid,
				ItemID: it.ItemID,
				Detail: fmt.Sprintf("requested %d, available %d", requested[it.ItemID], available),
			}
		}
	}

	var needsAddress, needsDelivery bool
	for _, it := range items {
		switch it.Fulfillment {
		case models.FulfillmentShip:
			needsAddress = true
		case models.FulfillmentLocalDelivery:
			needsDelivery = true
		}
	}
	if needsAddress && !req.ShippingAddress.Complete() {
		return nil, ErrShippingAddressRequired
	}
	if needsDelivery && !req.LocalDelivery.Complete() {
		return nil, ErrLocalDeliveryDetailsRequired
	}

	index := make(map[uuid.UUID]int)
	var groups []SellerGroup
	for _, it := range items {
		snap := av.Snapshots[it.ItemID]
		gi, ok := index[snap.SellerID]
		if !ok {
			gi = len(groups)
			index[snap.SellerID] = gi
			groups = append(groups, SellerGroup{SellerID: snap.SellerID})
		}
		g := &groups[gi]
		g.Lines = append(g.Lines, Line{Request: it, Snapshot: snap})
		switch it.Fulfillment {
		case models.FulfillmentShip:
			g.HasShip = true
		case models.FulfillmentLocalDelivery:
			g.HasLocalDelivery = true
		case models.FulfillmentPickup:
			g.HasPickup = true
		}
	}
	return groups, nil
}
