package models

import "strings"

type Fulfillment string

const (
	FulfillmentShip          Fulfillment = "ship"
	FulfillmentLocalDelivery Fulfillment = "local_delivery"
	FulfillmentPickup        Fulfillment = "pickup"
)

// Normalize maps an empty value to ship; ok is false for unknown values.
func (f Fulfillment) Normalize() (Fulfillment, bool) {
	switch Fulfillment(strings.ToLower(strings.TrimSpace(string(f)))) {
	case "", FulfillmentShip:
		return FulfillmentShip, true
	case FulfillmentLocalDelivery:
		return FulfillmentLocalDelivery, true
	case FulfillmentPickup:
		return FulfillmentPickup, true
	}
	return f, false
}

type Address struct {
	Street     string `json:"street"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country,omitempty"`
}

func (a *Address) Complete() bool {
	return a != nil &&
		strings.TrimSpace(a.Street) != "" &&
		strings.TrimSpace(a.City) != "" &&
		strings.TrimSpace(a.State) != "" &&
		strings.TrimSpace(a.PostalCode) != ""
}

type LocalDeliveryDetails struct {
	FirstName    string  `json:"first_name"`
	LastName     string  `json:"last_name"`
	Phone        string  `json:"phone"`
	Address      Address `json:"address"`
	Instructions string  `json:"instructions,omitempty"`
}

func (d *LocalDeliveryDetails) Complete() bool {
	return d != nil &&
		strings.TrimSpace(d.FirstName) != "" &&
		strings.TrimSpace(d.LastName) != "" &&
		strings.TrimSpace(d.Phone) != "" &&
		d.Address.Complete()
}
