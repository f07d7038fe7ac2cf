package orders

// computeDiscount applies an offer to the client-supplied subtotal. The total
// is floored at zero but the discount itself is never clamped, so a fixed
// offer larger than the subtotal yields discount > subtotal alongside total 0.
func computeDiscount(offer *Offer, subtotal float64) (discount, total float64) {
	if offer == nil {
		return 0, subtotal
	}

	switch offer.Type {
	case "percentage":
		discount = subtotal * (offer.Value / 100)
	default: // fixed
		discount = offer.Value
	}

	total = subtotal - discount
	if total < 0 {
		total = 0
	}
	return discount, total
}
