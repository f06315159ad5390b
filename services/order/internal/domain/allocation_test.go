package domain

import (
	"math/rand"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/marketplace/services/order/internal/models"
)

func TestAllocate_TwoSellersShippingOnce(t *testing.T) {
	sellerA, sellerB := uuid.New(), uuid.New()
	a1, a2 := snap(sellerA, 1000, 1), snap(sellerA, 1000, 1)
	b1 := snap(sellerB, 500, 1)

	groups, err := Partition(CheckoutRequest{
		Items: []LineItemRequest{
			{ItemID: a1.ItemID, Quantity: 1, Fulfillment: models.FulfillmentShip},
			{ItemID: a2.ItemID, Quantity: 1, Fulfillment: models.FulfillmentShip},
			{ItemID: b1.ItemID, Quantity: 1, Fulfillment: models.FulfillmentPickup},
		},
		ShippingAddress: testAddress,
	}, availabilityOf(a1, a2, b1))
	require.NoError(t, err)

	alloc := Allocate(groups, 700)
	require.Len(t, alloc.Groups, 2)
	assert.Equal(t, int64(2000), alloc.Groups[0].SubtotalCents)
	assert.Equal(t, int64(700), alloc.Groups[0].ShippingCents)
	assert.Equal(t, int64(2700), alloc.Groups[0].TotalCents)
	assert.Equal(t, int64(0), alloc.Groups[1].ShippingCents)
	assert.Equal(t, int64(500), alloc.Groups[1].TotalCents)
	assert.Equal(t, int64(3200), alloc.GrandTotalCents)
	assert.Equal(t, 0, alloc.ShippingGroup())
}

func TestAllocate_LocalDeliveryFee(t *testing.T) {
	s := snap(uuid.New(), 2000, 5)
	s.LocalDeliveryFeeCents = fee(300)

	groups, err := Partition(CheckoutRequest{
		Items:         []LineItemRequest{{ItemID: s.ItemID, Quantity: 2, Fulfillment: models.FulfillmentLocalDelivery}},
		LocalDelivery: testDelivery,
	}, availabilityOf(s))
	require.NoError(t, err)

	alloc := Allocate(groups, 0)
	require.Len(t, alloc.Groups, 1)
	g := alloc.Groups[0]
	assert.Equal(t, int64(4000), g.SubtotalCents)
	assert.Equal(t, int64(600), g.LocalDeliveryCents)
	assert.Equal(t, int64(0), g.ShippingCents)
	assert.Equal(t, int64(4600), g.TotalCents)
	assert.Equal(t, int64(4600), alloc.GrandTotalCents)
}

func TestAllocate_FeeOnlyForLocalDeliveryLines(t *testing.T) {
	s := snap(uuid.New(), 1000, 5)
	s.LocalDeliveryFeeCents = fee(250)
	zero := snap(s.SellerID, 100, 5)
	zero.LocalDeliveryFeeCents = fee(0)

	groups, err := Partition(CheckoutRequest{
		Items: []LineItemRequest{
			{ItemID: s.ItemID, Quantity: 1, Fulfillment: models.FulfillmentPickup},
			{ItemID: zero.ItemID, Quantity: 3, Fulfillment: models.FulfillmentLocalDelivery},
		},
		LocalDelivery: testDelivery,
	}, availabilityOf(s, zero))
	require.NoError(t, err)

	alloc := Allocate(groups, 0)
	assert.Equal(t, int64(0), alloc.Groups[0].LocalDeliveryCents)
	assert.Equal(t, alloc.Groups[0].SubtotalCents, alloc.Groups[0].TotalCents)
}

func TestAllocate_NoShipItemsNoShipping(t *testing.T) {
	s := snap(uuid.New(), 500, 1)
	groups, err := Partition(CheckoutRequest{
		Items: []LineItemRequest{{ItemID: s.ItemID, Quantity: 1, Fulfillment: models.FulfillmentPickup}},
	}, availabilityOf(s))
	require.NoError(t, err)

	alloc := Allocate(groups, 900)
	assert.Equal(t, int64(0), alloc.Groups[0].ShippingCents)
	assert.Equal(t, int64(0), alloc.ShippingCents)
	assert.Equal(t, int64(500), alloc.GrandTotalCents)
	assert.Equal(t, -1, alloc.ShippingGroup())
}

func TestAllocate_ShippingGoesToFirstShippingGroupNotFirstGroup(t *testing.T) {
	sellerA, sellerB, sellerC := uuid.New(), uuid.New(), uuid.New()
	a := snap(sellerA, 100, 1)
	b := snap(sellerB, 200, 1)
	c := snap(sellerC, 300, 1)

	groups, err := Partition(CheckoutRequest{
		Items: []LineItemRequest{
			{ItemID: a.ItemID, Quantity: 1, Fulfillment: models.FulfillmentPickup},
			{ItemID: b.ItemID, Quantity: 1, Fulfillment: models.FulfillmentShip},
			{ItemID: c.ItemID, Quantity: 1, Fulfillment: models.FulfillmentShip},
		},
		ShippingAddress: testAddress,
	}, availabilityOf(a, b, c))
	require.NoError(t, err)

	alloc := Allocate(groups, 450)
	assert.Equal(t, 1, alloc.ShippingGroup())
	assert.Equal(t, int64(0), alloc.Groups[0].ShippingCents)
	assert.Equal(t, int64(450), alloc.Groups[1].ShippingCents)
	assert.Equal(t, int64(0), alloc.Groups[2].ShippingCents)
}

// Randomized carts: the grand total always equals the subtotals plus one
// shipping charge (when anything ships) plus the delivery fees.
func TestAllocate_SumProperty(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	fulfillments := []models.Fulfillment{models.FulfillmentShip, models.FulfillmentLocalDelivery, models.FulfillmentPickup}

	for round := 0; round < 200; round++ {
		sellers := make([]uuid.UUID, 1+rng.Intn(4))
		for i := range sellers {
			sellers[i] = uuid.New()
		}

		var snaps []CatalogSnapshot
		var items []LineItemRequest
		var wantSubtotal, wantDelivery int64
		anyShip := false
		for i := 0; i < 1+rng.Intn(8); i++ {
			s := snap(sellers[rng.Intn(len(sellers))], int64(1+rng.Intn(5000)), 10)
			if rng.Intn(2) == 0 {
				s.LocalDeliveryFeeCents = fee(int64(rng.Intn(400)))
			}
			f := fulfillments[rng.Intn(len(fulfillments))]
			q := int64(1 + rng.Intn(10))
			snaps = append(snaps, s)
			items = append(items, LineItemRequest{ItemID: s.ItemID, Quantity: q, Fulfillment: f})

			wantSubtotal += s.PriceCents * q
			if f == models.FulfillmentLocalDelivery && s.LocalDeliveryFeeCents != nil {
				wantDelivery += *s.LocalDeliveryFeeCents * q
			}
			anyShip = anyShip || f == models.FulfillmentShip
		}
		shipping := int64(rng.Intn(1500))

		groups, err := Partition(CheckoutRequest{
			Items:           items,
			ShippingAddress: testAddress,
			LocalDelivery:   testDelivery,
		}, availabilityOf(snaps...))
		require.NoError(t, err)

		alloc := Allocate(groups, shipping)
		want := wantSubtotal + wantDelivery
		shippingUnits := 0
		for _, g := range alloc.Groups {
			if g.ShippingCents > 0 {
				shippingUnits++
				assert.True(t, g.HasShip)
			}
		}
		if anyShip && shipping > 0 {
			want += shipping
			assert.Equal(t, 1, shippingUnits)
		} else {
			assert.Equal(t, 0, shippingUnits)
		}

		var sum int64
		for _, g := range alloc.Groups {
			sum += g.TotalCents
		}
		assert.Equal(t, want, alloc.GrandTotalCents)
		assert.Equal(t, want, sum)
		assert.Equal(t, wantSubtotal, alloc.SubtotalCents())
		assert.Equal(t, wantDelivery, alloc.LocalDeliveryCents())
	}
}
