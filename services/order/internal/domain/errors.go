package domain

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var (
	ErrItemUnavailable              = errors.New("item unavailable")
	ErrQuantityInvalid              = errors.New("quantity invalid")
	ErrShippingAddressRequired      = errors.New("shipping address required")
	ErrLocalDeliveryDetailsRequired = errors.New("local delivery details required")
	ErrInventoryChanged             = errors.New("inventory changed")
	ErrPaymentCollaborator          = errors.New("payment collaborator failure")
	ErrAlreadyRelisted              = errors.New("already relisted")
	ErrForbidden                    = errors.New("forbidden")
	ErrUnauthenticated              = errors.New("unauthenticated")

	ErrInvalidRequest = errors.New("invalid request")
	ErrEmptyCart      = errors.New("cart is empty, nothing to checkout")
	ErrNotFound       = errors.New("not found")
	ErrConflict       = errors.New("conflict")
)

// ItemError names the catalog item a checkout failed on.
type ItemError struct {
	Err    error
	ItemID uuid.UUID
	Detail string
}

func (e *ItemError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("%v: item %s", e.Err, e.ItemID)
	}
	return fmt.Sprintf("%v: item %s: %s", e.Err, e.ItemID, e.Detail)
}

func (e *ItemError) Unwrap() error {
	return e.Err
}

// PaymentError is returned when units were materialized but the payment
// collaborator refused to start a payment; the units stay pending.
type PaymentError struct {
	CheckoutID uuid.UUID
	OrderIDs   []uuid.UUID
	Err        error
}

func (e *PaymentError) Error() string {
	return fmt.Sprintf("%v: checkout %s: %v", ErrPaymentCollaborator, e.CheckoutID, e.Err)
}

func (e *PaymentError) Unwrap() []error {
	return []error{ErrPaymentCollaborator, e.Err}
}
