package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PaymentFlow string

const (
	FlowHosted   PaymentFlow = "hosted"
	FlowEmbedded PaymentFlow = "embedded"
)

type BindingStatus string

const (
	BindingPending   BindingStatus = "pending"
	BindingCompleted BindingStatus = "completed"
)

// PaymentBinding links one checkout call to the payment collaborator's reference.
type PaymentBinding struct {
	ID          uuid.UUID     `gorm:"type:uuid;primaryKey"         json:"id"`
	CheckoutID  uuid.UUID     `gorm:"type:uuid;index;not null"     json:"checkout_id"`
	BuyerID     uuid.UUID     `gorm:"type:uuid;index;not null"     json:"buyer_id"`
	Flow        PaymentFlow   `gorm:"type:text;not null"           json:"flow"`
	Reference   string        `gorm:"uniqueIndex;not null"         json:"reference"`
	OrderIDs    string        `gorm:"not null"                     json:"order_ids"`
	AmountCents int64         `gorm:"not null"                     json:"amount_cents"`
	Status      BindingStatus `gorm:"type:text;not null"           json:"status"`
	CreatedAt   time.Time     `gorm:"not null"                     json:"created_at"`
	UpdatedAt   time.Time     `gorm:"not null"                     json:"updated_at"`
}

func (b *PaymentBinding) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

func (PaymentBinding) TableName() string {
	return "payment_bindings"
}

func JoinIDs(ids []uuid.UUID) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = id.String()
	}
	return strings.Join(parts, ",")
}

func SplitIDs(s string) ([]uuid.UUID, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	ids := make([]uuid.UUID, 0, len(parts))
	for _, p := range parts {
		id, err := uuid.Parse(strings.TrimSpace(p))
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}
