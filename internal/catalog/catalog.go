package catalog

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/indianleto/storefront-backend/internal/pricing"
)

//go:embed data/products.json
var embeddedProducts []byte

// Catalog is the read-only product list loaded at startup.
type Catalog struct {
	products []Product
	byID     map[string]int
}

// Load decodes the catalog compiled into the binary.
func Load() (*Catalog, error) {
	return Parse(embeddedProducts)
}

// Parse decodes and validates a JSON product array.
func Parse(raw []byte) (*Catalog, error) {
	var products []Product
	if err := json.Unmarshal(raw, &products); err != nil {
		return nil, fmt.Errorf("decoding catalog: %w", err)
	}
	return New(products)
}

func New(products []Product) (*Catalog, error) {
	c := &Catalog{
		products: make([]Product, 0, len(products)),
		byID:     make(map[string]int, len(products)),
	}
	for _, p := range products {
		id := strings.TrimSpace(p.ID)
		if id == "" {
			return nil, fmt.Errorf("product %q: id is required", p.Title)
		}
		if _, dup := c.byID[id]; dup {
			return nil, fmt.Errorf("product %s: duplicate id", id)
		}
		if len(p.Attributes.Sizes) == 0 {
			return nil, fmt.Errorf("product %s: at least one size is required", id)
		}
		if err := pricing.Validate(p.PriceTiers); err != nil {
			return nil, fmt.Errorf("product %s: %w", id, err)
		}
		p.ID = id
		c.byID[id] = len(c.products)
		c.products = append(c.products, p)
	}
	return c, nil
}

// List returns a copy of the products in catalog order.
func (c *Catalog) List() []Product {
	out := make([]Product, len(c.products))
	copy(out, c.products)
	return out
}

func (c *Catalog) Get(id string) (Product, bool) {
	idx, ok := c.byID[strings.TrimSpace(id)]
	if !ok {
		return Product{}, false
	}
	return c.products[idx], true
}

// Lookup adapts Get for callers that only need the product.
func (c *Catalog) Lookup(id string) (*Product, bool) {
	p, ok := c.Get(id)
	if !ok {
		return nil, false
	}
	return &p, true
}
