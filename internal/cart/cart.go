// Package cart computes order totals from cart contents. Totals are derived
// on every call so they can never go stale when the cart changes.
package cart

import (
	"math"

	"storefront/internal/domain"
)

// Pricing policy: orders over the free-shipping threshold ship free,
// everything else pays the flat fee; tax is a flat rate on the subtotal.
const (
	FreeShippingThreshold = 1000.0
	FlatShippingFee       = 9.99
	TaxRate               = 0.08
)

// Totals is the computed price breakdown for a cart.
type Totals struct {
	Subtotal float64 `json:"subtotal"`
	Shipping float64 `json:"shipping"`
	Tax      float64 `json:"tax"`
	Total    float64 `json:"total"`
}

// Compute derives the totals for the given items.
func Compute(items []domain.CartItem) Totals {
	var subtotal float64
	for _, item := range items {
		subtotal += item.Price * float64(item.Quantity)
	}

	shipping := FlatShippingFee
	if subtotal > FreeShippingThreshold {
		shipping = 0
	}
	tax := subtotal * TaxRate

	return Totals{
		Subtotal: subtotal,
		Shipping: shipping,
		Tax:      tax,
		Total:    subtotal + shipping + tax,
	}
}

// MinorUnits converts a major-unit price to integer minor units (cents),
// rounding to the nearest cent.
func MinorUnits(amount float64) int64 {
	return int64(math.Round(amount * 100))
}
