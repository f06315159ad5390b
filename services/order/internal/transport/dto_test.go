package transport

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/marketplace/services/order/internal/models"
)

func TestPage(t *testing.T) {
	offset, limit := Page(0, 0)
	assert.Equal(t, 0, offset)
	assert.Equal(t, DefaultPageSize, limit)

	offset, limit = Page(3, 10)
	assert.Equal(t, 20, offset)
	assert.Equal(t, 10, limit)

	_, limit = Page(1, 1000)
	assert.Equal(t, MaxPageSize, limit)
}

func TestParseIDs(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	ids, err := ParseIDs(a.String() + ", " + b.String() + ",")
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{a, b}, ids)

	_, err = ParseIDs("nope")
	assert.Error(t, err)
}

func TestCheckoutRequest_ToDomain(t *testing.T) {
	id := uuid.New()
	req := CheckoutRequest{
		Items: []CheckoutItem{{ItemID: id, Quantity: 2, Variant: " red ", Fulfillment: models.FulfillmentPickup}},
		Flow:  " Embedded ",
	}
	d := req.ToDomain()
	require.Len(t, d.Items, 1)
	assert.Equal(t, "red", d.Items[0].Variant)
	assert.Equal(t, models.FlowEmbedded, d.Flow)
	assert.Equal(t, []uuid.UUID{id}, d.ItemIDs())
}
