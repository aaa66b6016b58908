package catalog

import (
	"encoding/json"

	"github.com/indianleto/storefront-backend/internal/pricing"
	"github.com/shopspring/decimal"
)

// MaxQuantity is the per-size selector ceiling.
const MaxQuantity = 9999

type Measurements struct {
	SkirtLength *float64 `json:"skirtLength,omitempty"`
	Bust        *float64 `json:"bust,omitempty"`
	Waist       *float64 `json:"waist,omitempty"`
	Hips        *float64 `json:"hips,omitempty"`
}

type Attributes struct {
	Color        string                  `json:"color"`
	Sizes        []string                `json:"sizes"`
	Measurements map[string]Measurements `json:"measurements,omitempty"`
}

type Product struct {
	ID            string         `json:"id"`
	Title         string         `json:"title"`
	Description   string         `json:"description"`
	Images        []string       `json:"images"`
	PriceTiers    []pricing.Tier `json:"priceTiers"`
	Attributes    Attributes     `json:"attributes"`
	MinOrder      int            `json:"minOrder"`
	SizeMinOrders map[string]int `json:"sizeMinOrders,omitempty"`
	SKU           string         `json:"sku"`
	HasPromo      bool           `json:"hasPromo"`
}

// UnmarshalJSON applies the catalog defaults (minOrder 1, hasPromo true).
func (p *Product) UnmarshalJSON(data []byte) error {
	type alias Product
	decoded := alias{MinOrder: 1, HasPromo: true}
	if err := json.Unmarshal(data, &decoded); err != nil {
		return err
	}
	*p = Product(decoded)
	return nil
}

// MinOrderForSize returns the size-specific minimum, else the product minimum, never below 1.
func (p Product) MinOrderForSize(size string) int {
	if v := p.SizeMinOrders[size]; v > 0 {
		return v
	}
	if p.MinOrder > 0 {
		return p.MinOrder
	}
	return 1
}

func (p Product) HasSize(size string) bool {
	for _, s := range p.Attributes.Sizes {
		if s == size {
			return true
		}
	}
	return false
}

// PrimaryImage is the first image or "".
func (p Product) PrimaryImage() string {
	if len(p.Images) == 0 {
		return ""
	}
	return p.Images[0]
}

func (p Product) PriceFor(quantity int) decimal.Decimal {
	return pricing.ResolvePrice(p.PriceTiers, quantity)
}

// ClampQuantity bounds a selector value to [0, MaxQuantity].
func ClampQuantity(q int) int {
	if q < 0 {
		return 0
	}
	if q > MaxQuantity {
		return MaxQuantity
	}
	return q
}
