package cart

import (
	"math"
	"testing"

	"storefront/internal/domain"
)

func TestCompute_ReferenceCart(t *testing.T) {
	t.Parallel()

	items := []domain.CartItem{
		{Name: "apples", Price: 10, Quantity: 2},
		{Name: "pears", Price: 5, Quantity: 1},
	}

	totals := Compute(items)

	if totals.Subtotal != 25 {
		t.Errorf("subtotal = %v, want 25", totals.Subtotal)
	}
	if totals.Shipping != 9.99 {
		t.Errorf("shipping = %v, want 9.99", totals.Shipping)
	}
	if math.Abs(totals.Tax-2.00) > 1e-9 {
		t.Errorf("tax = %v, want 2.00", totals.Tax)
	}
	if math.Abs(totals.Total-36.99) > 1e-9 {
		t.Errorf("total = %v, want 36.99", totals.Total)
	}
}

func TestCompute_FreeShippingOverThreshold(t *testing.T) {
	t.Parallel()

	items := []domain.CartItem{{Name: "tv", Price: 1200, Quantity: 1}}

	totals := Compute(items)
	if totals.Shipping != 0 {
		t.Errorf("shipping = %v, want 0 above threshold", totals.Shipping)
	}
}

func TestCompute_ThresholdIsExclusive(t *testing.T) {
	t.Parallel()

	// Exactly 1000 still pays the flat fee.
	items := []domain.CartItem{{Name: "sofa", Price: 1000, Quantity: 1}}

	totals := Compute(items)
	if totals.Shipping != FlatShippingFee {
		t.Errorf("shipping = %v, want %v at exactly 1000", totals.Shipping, FlatShippingFee)
	}
}

func TestCompute_EmptyCart(t *testing.T) {
	t.Parallel()

	totals := Compute(nil)
	if totals.Subtotal != 0 {
		t.Errorf("subtotal = %v, want 0", totals.Subtotal)
	}
}

func TestCompute_ReflectsChangedContents(t *testing.T) {
	t.Parallel()

	items := []domain.CartItem{{Name: "mug", Price: 8, Quantity: 1}}
	first := Compute(items)

	items[0].Quantity = 3
	second := Compute(items)

	if second.Subtotal != 3*first.Subtotal {
		t.Errorf("totals not recomputed: %v then %v", first.Subtotal, second.Subtotal)
	}
}

func TestMinorUnits(t *testing.T) {
	t.Parallel()

	cases := []struct {
		amount float64
		want   int64
	}{
		{36.99, 3699},
		{0.1, 10},
		{19.999, 2000},
	}
	for _, tc := range cases {
		if got := MinorUnits(tc.amount); got != tc.want {
			t.Errorf("MinorUnits(%v) = %d, want %d", tc.amount, got, tc.want)
		}
	}
}
