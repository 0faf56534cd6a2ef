package pricing

import "testing"

func TestPriceLineFlatDiscount(t *testing.T) {
	line, warnings := PriceLine(LineInput{Qty: 3, UnitPrice: 10_000, Discount: 5_000, DiscountType: DiscountAmount})
	if line.Base != 30_000 {
		t.Fatalf("expected base 30000, got %d", line.Base)
	}
	if line.LineTotal != 25_000 {
		t.Fatalf("expected total 25000, got %d", line.LineTotal)
	}
	if len(warnings) != 0 {
		t.Fatalf("unexpected warnings %v", warnings)
	}
}

func TestPriceLinePercentDiscount(t *testing.T) {
	line, _ := PriceLine(LineInput{Qty: 2, UnitPrice: 50_000, Discount: 10, DiscountType: DiscountPercent})
	if line.DiscountAmount != 10_000 {
		t.Fatalf("expected discount amount 10000, got %d", line.DiscountAmount)
	}
	if line.LineTotal != 90_000 {
		t.Fatalf("expected total 90000, got %d", line.LineTotal)
	}
}

func TestPriceLinePercentClampedTo100(t *testing.T) {
	line, warnings := PriceLine(LineInput{Qty: 1, UnitPrice: 20_000, Discount: 150, DiscountType: DiscountPercent})
	if line.LineTotal != 0 {
		t.Fatalf("expected total 0, got %d", line.LineTotal)
	}
	if line.Discount != 100 {
		t.Fatalf("expected discount corrected to 100, got %d", line.Discount)
	}
	if len(warnings) != 1 || warnings[0].Code != WarnPercentClamped {
		t.Fatalf("expected percent clamp warning, got %v", warnings)
	}
}

func TestPriceLineAmountClampedToBase(t *testing.T) {
	line, warnings := PriceLine(LineInput{Qty: 1, UnitPrice: 20_000, Discount: 50_000, DiscountType: DiscountAmount})
	if line.LineTotal != 0 {
		t.Fatalf("expected total 0, got %d", line.LineTotal)
	}
	if len(warnings) != 1 || warnings[0].Code != WarnAmountClamped {
		t.Fatalf("expected amount clamp warning, got %v", warnings)
	}
}

func TestPriceLineNegativeInputsTreatedAsZero(t *testing.T) {
	line, _ := PriceLine(LineInput{Qty: -3, UnitPrice: 10_000, Discount: -500})
	if line.Base != 0 || line.LineTotal != 0 {
		t.Fatalf("expected zero line, got base %d total %d", line.Base, line.LineTotal)
	}
}

func TestAggregateLineDiscountWinsOverCartDiscount(t *testing.T) {
	lines := []PricedLine{
		{Base: 30_000, DiscountAmount: 5_000},
		{Base: 20_000},
	}
	summary := Aggregate(lines, 8_000)
	if summary.Subtotal != 50_000 {
		t.Fatalf("expected subtotal 50000, got %d", summary.Subtotal)
	}
	if summary.EffectiveDiscount != 5_000 {
		t.Fatalf("expected line discount to win, got %d", summary.EffectiveDiscount)
	}
	if summary.Total != 45_000 {
		t.Fatalf("expected total 45000, got %d", summary.Total)
	}
}

func TestAggregateCartDiscountAppliesWithoutLineDiscounts(t *testing.T) {
	lines := []PricedLine{{Base: 30_000}, {Base: 20_000}}
	summary := Aggregate(lines, 8_000)
	if summary.EffectiveDiscount != 8_000 {
		t.Fatalf("expected cart discount 8000, got %d", summary.EffectiveDiscount)
	}
	if summary.Total != 42_000 {
		t.Fatalf("expected total 42000, got %d", summary.Total)
	}
}

func TestAggregateDiscountCappedAtSubtotal(t *testing.T) {
	lines := []PricedLine{{Base: 10_000}}
	summary := Aggregate(lines, 25_000)
	if summary.EffectiveDiscount != 10_000 {
		t.Fatalf("expected discount capped at subtotal, got %d", summary.EffectiveDiscount)
	}
	if summary.Total != 0 {
		t.Fatalf("expected total 0, got %d", summary.Total)
	}
}

func TestParseAmountStripsFormatting(t *testing.T) {
	cases := map[string]Money{
		"12000":     12_000,
		"Rp 12.000": 12_000,
		"12,000":    12_000,
		"":          0,
		"abc":       0,
	}
	for raw, want := range cases {
		if got := ParseAmount(raw); got != want {
			t.Fatalf("ParseAmount(%q) = %d, want %d", raw, got, want)
		}
	}
}
