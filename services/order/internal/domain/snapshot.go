package domain

import (
	"github.com/google/uuid"

	"github.com/Skotchmaster/marketplace/services/order/internal/models"
)

type UnavailableReason string

const (
	ReasonNotFound UnavailableReason = "not_found"
	ReasonInactive UnavailableReason = "inactive"
)

// CatalogSnapshot is a value copy of a catalog row taken at checkout time.
type CatalogSnapshot struct {
	ItemID                uuid.UUID
	SellerID              uuid.UUID
	Name                  string
	PriceCents            int64
	Available             int64
	LocalDeliveryFeeCents *int64
}

func SnapshotOf(p models.Product) CatalogSnapshot {
	s := CatalogSnapshot{
		ItemID:     p.ID,
		SellerID:   p.SellerID,
		Name:       p.Name,
		PriceCents: p.PriceCents,
		Available:  p.Quantity,
	}
	if p.LocalDeliveryFeeCents != nil {
		fee := *p.LocalDeliveryFeeCents
		s.LocalDeliveryFeeCents = &fee
	}
	return s
}

// Availability is the reader's answer: sellable snapshots, and every other
// requested id with the reason it cannot be sold.
type Availability struct {
	Snapshots   map[uuid.UUID]CatalogSnapshot
	Unavailable map[uuid.UUID]UnavailableReason
}

func NewAvailability() Availability {
	return Availability{
		Snapshots:   map[uuid.UUID]CatalogSnapshot{},
		Unavailable: map[uuid.UUID]UnavailableReason{},
	}
}
