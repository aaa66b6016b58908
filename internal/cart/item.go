package cart

import (
	"encoding/json"
	"fmt"

	"github.com/indianleto/storefront-backend/internal/pricing"
	"github.com/shopspring/decimal"
)

// StorageKey is the versioned key the serialized cart lives under.
const StorageKey = "indianleto_cart_v1"

type Variant struct {
	Size  string `json:"size"`
	Color string `json:"color"`
}

// LineItem is one (product, size) entry. A cart holds at most one per pair.
type LineItem struct {
	ProductID    string          `json:"productId"`
	ProductTitle string          `json:"productTitle"`
	ProductImage string          `json:"productImage,omitempty"`
	Variant      Variant         `json:"variant"`
	Quantity     int             `json:"quantity"`
	UnitPrice    decimal.Decimal `json:"unitPrice"`
}

// Matches reports whether the line belongs to the (productID, size) pair.
func (l LineItem) Matches(productID, size string) bool {
	return l.ProductID == productID && l.Variant.Size == size
}

// LineTotal is unitPrice × quantity.
func (l LineItem) LineTotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// ItemCount sums the quantities, not the number of lines.
func ItemCount(items []LineItem) int {
	total := 0
	for _, item := range items {
		total += item.Quantity
	}
	return total
}

// Total sums unitPrice × quantity over every line.
func Total(items []LineItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.LineTotal())
	}
	return total
}

// Encode serializes the cart; a nil cart encodes as an empty array.
func Encode(items []LineItem) (string, error) {
	if items == nil {
		items = []LineItem{}
	}
	raw, err := json.Marshal(items)
	if err != nil {
		return "", fmt.Errorf("encoding cart: %w", err)
	}
	return string(raw), nil
}

func Decode(raw string) ([]LineItem, error) {
	var items []LineItem
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil, fmt.Errorf("decoding cart: %w", err)
	}
	if items == nil {
		items = []LineItem{}
	}
	return items, nil
}

func resolve(tiers []pricing.Tier, quantity int) decimal.Decimal {
	return pricing.ResolvePrice(tiers, quantity)
}
