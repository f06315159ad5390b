package domain

type Allocation struct {
	Groups          []SellerGroup
	ShippingCents   int64
	GrandTotalCents int64
}

// ShippingGroup returns the index of the group carrying the shipping charge, or -1.
func (a Allocation) ShippingGroup() int {
	for i, g := range a.Groups {
		if g.ShippingCents > 0 {
			return i
		}
	}
	return -1
}

func (a Allocation) LocalDeliveryCents() int64 {
	var sum int64
	for _, g := range a.Groups {
		sum += g.LocalDeliveryCents
	}
	return sum
}

func (a Allocation) SubtotalCents() int64 {
	var sum int64
	for _, g := range a.Groups {
		sum += g.SubtotalCents
	}
	return sum
}

// Allocate prices every group. The checkout-level shipping charge is quoted
// once for the cart and lands on the first group, in cart order, that ships.
func Allocate(groups []SellerGroup, shippingCents int64) Allocation {
	out := Allocation{Groups: make([]SellerGroup, len(groups))}
	applied := false

	for i, g := range groups {
		g.SubtotalCents, g.LocalDeliveryCents, g.ShippingCents = 0, 0, 0
		for _, l := range g.Lines {
			g.SubtotalCents += l.AmountCents()
			g.LocalDeliveryCents += l.LocalDeliveryFeeCents()
		}
		if !applied && g.HasShip && shippingCents > 0 {
			g.ShippingCents = shippingCents
			applied = true
		}
		g.TotalCents = g.SubtotalCents + g.ShippingCents + g.LocalDeliveryCents

		out.Groups[i] = g
		out.GrandTotalCents += g.TotalCents
	}
	if applied {
		out.ShippingCents = shippingCents
	}
	return out
}
