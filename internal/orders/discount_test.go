package orders

import "testing"

func TestComputeDiscountNoOffer(t *testing.T) {
	discount, total := computeDiscount(nil, 100)
	if discount != 0 || total != 100 {
		t.Fatalf("expected discount=0 total=100, got discount=%v total=%v", discount, total)
	}
}

func TestComputeDiscountPercentage(t *testing.T) {
	offer := &Offer{Code: "SAVE10", Type: "percentage", Value: 10}
	discount, total := computeDiscount(offer, 100)
	if discount != 10 || total != 90 {
		t.Fatalf("expected discount=10 total=90, got discount=%v total=%v", discount, total)
	}
}

func TestComputeDiscountFixed(t *testing.T) {
	offer := &Offer{Code: "FLAT5", Type: "fixed", Value: 5}
	discount, total := computeDiscount(offer, 50)
	if discount != 5 || total != 45 {
		t.Fatalf("expected discount=5 total=45, got discount=%v total=%v", discount, total)
	}
}

func TestComputeDiscountFixedLargerThanSubtotal(t *testing.T) {
	// The discount field is deliberately left unclamped; only the total is
	// floored at zero.
	offer := &Offer{Code: "FLAT50", Type: "fixed", Value: 50}
	discount, total := computeDiscount(offer, 20)
	if discount != 50 {
		t.Fatalf("expected unclamped discount=50, got %v", discount)
	}
	if total != 0 {
		t.Fatalf("expected total floored at 0, got %v", total)
	}
}

func TestComputeDiscountFullPercentage(t *testing.T) {
	offer := &Offer{Code: "FREE", Type: "percentage", Value: 100}
	discount, total := computeDiscount(offer, 80)
	if discount != 80 || total != 0 {
		t.Fatalf("expected discount=80 total=0, got discount=%v total=%v", discount, total)
	}
}

func TestNormalizeCode(t *testing.T) {
	for input, want := range map[string]string{
		"save10":   "SAVE10",
		" SAVE10 ": "SAVE10",
		"Save10":   "SAVE10",
		"":         "",
		"   ":      "",
	} {
		if got := NormalizeCode(input); got != want {
			t.Fatalf("NormalizeCode(%q) = %q, want %q", input, got, want)
		}
	}
}
