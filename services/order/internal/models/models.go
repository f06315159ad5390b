package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Order is one seller's settlement unit of a checkout.
type Order struct {
	ID                  uuid.UUID             `gorm:"type:uuid;primaryKey"                json:"id"`
	CheckoutID          uuid.UUID             `gorm:"type:uuid;index;not null"            json:"checkout_id"`
	BuyerID             uuid.UUID             `gorm:"type:uuid;index;not null"            json:"buyer_id"`
	SellerID            uuid.UUID             `gorm:"type:uuid;index;not null"            json:"seller_id"`
	SubtotalCents       int64                 `gorm:"not null"                            json:"subtotal_cents"`
	ShippingCents       int64                 `gorm:"not null;default:0"                  json:"shipping_cents"`
	LocalDeliveryCents  int64                 `gorm:"not null;default:0"                  json:"local_delivery_cents"`
	TotalCents          int64                 `gorm:"not null"                            json:"total_cents"`
	Status              OrderStatus           `gorm:"type:text;index;not null"            json:"status"`
	ShippingAddress     *Address              `gorm:"type:text;serializer:json"           json:"shipping_address,omitempty"`
	LocalDelivery       *LocalDeliveryDetails `gorm:"type:text;serializer:json"           json:"local_delivery,omitempty"`
	PaymentRef          *string               `gorm:"index"                               json:"payment_ref,omitempty"`
	PaidAt              *time.Time            `                                           json:"paid_at,omitempty"`
	CanceledAt          *time.Time            `                                           json:"canceled_at,omitempty"`
	InventoryRestoredAt *time.Time            `                                           json:"inventory_restored_at,omitempty"`
	CreatedAt           time.Time             `gorm:"not null"                            json:"created_at"`
	UpdatedAt           time.Time             `gorm:"not null"                            json:"updated_at"`
	Items               []OrderItem           `gorm:"foreignKey:OrderID"                  json:"items,omitempty"`
}

func (o *Order) BeforeCreate(tx *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}

func (Order) TableName() string {
	return "orders"
}

// IsCash reports whether the unit was never paid through the payment
// collaborator. The reference is written only when a payment is confirmed.
func (o *Order) IsCash() bool {
	return o.PaymentRef == nil || *o.PaymentRef == ""
}

// OrderItem freezes price and fee at purchase time; it is never recomputed.
type OrderItem struct {
	ID                    uuid.UUID   `gorm:"type:uuid;primaryKey"          json:"id"`
	OrderID               uuid.UUID   `gorm:"type:uuid;index;not null"      json:"order_id"`
	ProductID             uuid.UUID   `gorm:"type:uuid;index;not null"      json:"product_id"`
	Name                  string      `gorm:"not null"                      json:"name"`
	Quantity              int64       `gorm:"not null;check:quantity>0"     json:"quantity"`
	UnitPriceCents        int64       `gorm:"not null"                      json:"unit_price_cents"`
	LocalDeliveryFeeCents int64       `gorm:"not null;default:0"            json:"local_delivery_fee_cents"`
	Variant               string      `gorm:"not null;default:''"           json:"variant,omitempty"`
	Fulfillment           Fulfillment `gorm:"type:text;not null"            json:"fulfillment"`
	Position              int         `gorm:"not null;default:0"            json:"-"`
	CreatedAt             time.Time   `gorm:"not null"                      json:"created_at"`
}

func (i *OrderItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

func (OrderItem) TableName() string {
	return "order_items"
}
