package pricing

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
)

func intPtr(v int) *int {
	return &v
}

func sampleTiers() []Tier {
	return []Tier{
		{MinQty: 1, MaxQty: intPtr(49), Price: decimal.NewFromInt(1200)},
		{MinQty: 50, MaxQty: intPtr(99), Price: decimal.NewFromInt(1100)},
		{MinQty: 100, MaxQty: intPtr(499), Price: decimal.NewFromInt(1000)},
		{MinQty: 500, Price: decimal.NewFromInt(900)},
	}
}

func TestResolvePrice(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		qty  int
		want int64
	}{
		{name: "first tier lower bound", qty: 1, want: 1200},
		{name: "first tier upper bound", qty: 49, want: 1200},
		{name: "second tier lower bound", qty: 50, want: 1100},
		{name: "third tier", qty: 250, want: 1000},
		{name: "unbounded tier", qty: 5000, want: 900},
		{name: "zero falls back to last tier", qty: 0, want: 900},
		{name: "negative falls back to last tier", qty: -3, want: 900},
	}

	tiers := sampleTiers()
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ResolvePrice(tiers, tc.qty)
			if !got.Equal(decimal.NewFromInt(tc.want)) {
				t.Fatalf("ResolvePrice(%d) = %s, want %d", tc.qty, got, tc.want)
			}
		})
	}
}

func TestResolvePriceContainedTierWins(t *testing.T) {
	t.Parallel()

	tiers := sampleTiers()
	for q := 1; q <= 600; q++ {
		got := ResolvePrice(tiers, q)
		tier, ok := Match(tiers, q)
		if !ok {
			t.Fatalf("quantity %d should be covered by a tier", q)
		}
		if !got.Equal(tier.Price) {
			t.Fatalf("quantity %d resolved %s, containing tier %s has %s", q, got, tier.Label(), tier.Price)
		}
	}
}

func TestResolvePriceFirstMatchOnOverlap(t *testing.T) {
	t.Parallel()

	tiers := []Tier{
		{MinQty: 1, MaxQty: intPtr(100), Price: decimal.NewFromInt(10)},
		{MinQty: 50, MaxQty: intPtr(200), Price: decimal.NewFromInt(8)},
	}
	if got := ResolvePrice(tiers, 75); !got.Equal(decimal.NewFromInt(10)) {
		t.Fatalf("expected first matching tier, got %s", got)
	}
}

func TestResolvePriceEmptyTiers(t *testing.T) {
	t.Parallel()

	if got := ResolvePrice(nil, 10); !got.IsZero() {
		t.Fatalf("expected zero for empty tiers, got %s", got)
	}
	if got := Subtotal(nil, 10); !got.IsZero() {
		t.Fatalf("expected zero subtotal for empty tiers, got %s", got)
	}
}

func TestSubtotal(t *testing.T) {
	t.Parallel()

	if got := Subtotal(sampleTiers(), 50); !got.Equal(decimal.NewFromInt(55000)) {
		t.Fatalf("expected 55000, got %s", got)
	}
}

func TestFormatPriceRange(t *testing.T) {
	t.Parallel()

	if got := FormatPriceRange(nil, "INR"); got != "Price on request" {
		t.Fatalf("unexpected empty range %q", got)
	}
	if got := FormatPriceRange(sampleTiers(), "INR"); got != "INR900.00 - INR1200.00" {
		t.Fatalf("unexpected range %q", got)
	}
}

func TestTierLabel(t *testing.T) {
	t.Parallel()

	tiers := sampleTiers()
	if got := tiers[0].Label(); got != "1-49" {
		t.Fatalf("unexpected label %q", got)
	}
	if got := tiers[3].Label(); got != "500+" {
		t.Fatalf("unexpected label %q", got)
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()

	if err := Validate(sampleTiers()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := Validate(nil); err == nil {
		t.Fatal("expected error for empty tiers")
	}
	if err := Validate([]Tier{{MinQty: 10, MaxQty: intPtr(5), Price: decimal.NewFromInt(1)}}); err == nil {
		t.Fatal("expected error for inverted bounds")
	}
	if err := Validate([]Tier{{MinQty: 1, Price: decimal.NewFromInt(-1)}}); err == nil {
		t.Fatal("expected error for negative price")
	}
}

func TestTierJSONUsesNumbers(t *testing.T) {
	t.Parallel()

	raw, err := json.Marshal(Tier{MinQty: 500, Price: decimal.NewFromInt(900)})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(raw) != `{"minQty":500,"price":900}` {
		t.Fatalf("unexpected encoding %s", raw)
	}
}
