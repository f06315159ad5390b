package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Product is the sellable catalog row checkout reads and reserves against.
type Product struct {
	ID                    uuid.UUID `gorm:"type:uuid;primaryKey"              json:"id"`
	SellerID              uuid.UUID `gorm:"type:uuid;index;not null"          json:"seller_id"`
	Name                  string    `gorm:"not null"                          json:"name"`
	PriceCents            int64     `gorm:"not null"                          json:"price_cents"`
	Quantity              int64     `gorm:"not null;check:quantity>=0"        json:"quantity"`
	LocalDeliveryFeeCents *int64    `                                         json:"local_delivery_fee_cents,omitempty"`
	Active                bool      `gorm:"not null;default:false"            json:"active"`
	CreatedAt             time.Time `gorm:"not null"                          json:"created_at"`
	UpdatedAt             time.Time `gorm:"not null"                          json:"updated_at"`
}

func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

func (Product) TableName() string {
	return "products"
}
