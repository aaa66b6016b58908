package pricing

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Tier is one quantity band of a product's price list. A nil MaxQty is unbounded.
type Tier struct {
	MinQty int             `json:"minQty"`
	MaxQty *int            `json:"maxQty,omitempty"`
	Price  decimal.Decimal `json:"price"`
}

// Contains reports whether quantity falls inside the tier bounds (inclusive).
func (t Tier) Contains(quantity int) bool {
	if quantity < t.MinQty {
		return false
	}
	return t.MaxQty == nil || quantity <= *t.MaxQty
}

// Label renders the band as "1-49" or "500+".
func (t Tier) Label() string {
	if t.MaxQty == nil {
		return fmt.Sprintf("%d+", t.MinQty)
	}
	return fmt.Sprintf("%d-%d", t.MinQty, *t.MaxQty)
}

// ResolvePrice returns the unit price of the first tier containing quantity. When
// no tier matches, the last tier's price is used; no tiers at all price at zero.
func ResolvePrice(tiers []Tier, quantity int) decimal.Decimal {
	if len(tiers) == 0 {
		return decimal.Zero
	}
	if tier, ok := Match(tiers, quantity); ok {
		return tier.Price
	}
	return tiers[len(tiers)-1].Price
}

// Match returns the first tier containing quantity.
func Match(tiers []Tier, quantity int) (Tier, bool) {
	for _, tier := range tiers {
		if tier.Contains(quantity) {
			return tier, true
		}
	}
	return Tier{}, false
}

// Subtotal is the resolved unit price times quantity.
func Subtotal(tiers []Tier, quantity int) decimal.Decimal {
	return ResolvePrice(tiers, quantity).Mul(decimal.NewFromInt(int64(quantity)))
}

// PriceRange returns the lowest and highest tier price.
func PriceRange(tiers []Tier) (lo, hi decimal.Decimal, ok bool) {
	if len(tiers) == 0 {
		return decimal.Zero, decimal.Zero, false
	}
	lo, hi = tiers[0].Price, tiers[0].Price
	for _, tier := range tiers[1:] {
		lo = decimal.Min(lo, tier.Price)
		hi = decimal.Max(hi, tier.Price)
	}
	return lo, hi, true
}

// FormatPriceRange renders "INR900.00 - INR1200.00", or "Price on request" without tiers.
func FormatPriceRange(tiers []Tier, currency string) string {
	lo, hi, ok := PriceRange(tiers)
	if !ok {
		return "Price on request"
	}
	return fmt.Sprintf("%s - %s", FormatAmount(currency, lo), FormatAmount(currency, hi))
}

// FormatAmount renders a price with two decimals behind the currency code.
func FormatAmount(currency string, amount decimal.Decimal) string {
	return currency + amount.StringFixed(2)
}

// Validate checks the list is usable: non-empty, positive bounds, non-negative prices.
func Validate(tiers []Tier) error {
	if len(tiers) == 0 {
		return fmt.Errorf("at least one price tier is required")
	}
	for i, tier := range tiers {
		if tier.MinQty < 1 {
			return fmt.Errorf("tier %d: minQty must be >= 1", i)
		}
		if tier.MaxQty != nil && *tier.MaxQty < tier.MinQty {
			return fmt.Errorf("tier %d: maxQty must be >= minQty", i)
		}
		if tier.Price.IsNegative() {
			return fmt.Errorf("tier %d: price must be >= 0", i)
		}
	}
	return nil
}
