package catalog

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestLoadEmbeddedCatalog(t *testing.T) {
	t.Parallel()

	c, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	products := c.List()
	if len(products) != 6 {
		t.Fatalf("expected 6 products, got %d", len(products))
	}

	p1, ok := c.Get("P1")
	if !ok {
		t.Fatal("expected P1 in catalog")
	}
	if got := p1.PriceFor(50); !got.Equal(decimal.NewFromInt(1100)) {
		t.Fatalf("unexpected P1 price for 50: %s", got)
	}
	if p1.PrimaryImage() != "P1/1.jpg" {
		t.Fatalf("unexpected primary image %q", p1.PrimaryImage())
	}
	if !p1.HasSize("M") || p1.HasSize("XXL") {
		t.Fatalf("unexpected sizes %v", p1.Attributes.Sizes)
	}

	if _, ok := c.Get("nope"); ok {
		t.Fatal("unknown id should not resolve")
	}
}

func TestListReturnsCopy(t *testing.T) {
	t.Parallel()

	c, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	list := c.List()
	list[0].Title = "changed"
	if p, _ := c.Get(list[0].ID); p.Title == "changed" {
		t.Fatal("catalog must not be mutated through List")
	}
}

func TestParseDefaultsAndValidation(t *testing.T) {
	t.Parallel()

	c, err := Parse([]byte(`[{"id":"X1","title":"T","attributes":{"color":"Red","sizes":["M"]},"priceTiers":[{"minQty":1,"maxQty":null,"price":10}]}]`))
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	p, _ := c.Get("X1")
	if p.MinOrder != 1 || !p.HasPromo {
		t.Fatalf("expected defaults minOrder=1 hasPromo=true, got %d %v", p.MinOrder, p.HasPromo)
	}

	invalid := []struct {
		name string
		raw  string
	}{
		{name: "malformed", raw: `{`},
		{name: "missing id", raw: `[{"title":"T","attributes":{"sizes":["M"]},"priceTiers":[{"minQty":1,"price":1}]}]`},
		{name: "duplicate id", raw: `[{"id":"A","attributes":{"sizes":["M"]},"priceTiers":[{"minQty":1,"price":1}]},{"id":"A","attributes":{"sizes":["M"]},"priceTiers":[{"minQty":1,"price":1}]}]`},
		{name: "no sizes", raw: `[{"id":"A","attributes":{"sizes":[]},"priceTiers":[{"minQty":1,"price":1}]}]`},
		{name: "no tiers", raw: `[{"id":"A","attributes":{"sizes":["M"]},"priceTiers":[]}]`},
	}
	for _, tc := range invalid {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := Parse([]byte(tc.raw)); err == nil {
				t.Fatalf("expected error for %s", tc.name)
			}
		})
	}
}

func TestMinOrderForSize(t *testing.T) {
	t.Parallel()

	p := Product{MinOrder: 10, SizeMinOrders: map[string]int{"XL": 20, "S": 0}}
	cases := map[string]int{"XL": 20, "S": 10, "M": 10}
	for size, want := range cases {
		if got := p.MinOrderForSize(size); got != want {
			t.Fatalf("MinOrderForSize(%s) = %d, want %d", size, got, want)
		}
	}
	if got := (Product{}).MinOrderForSize("M"); got != 1 {
		t.Fatalf("expected floor of 1, got %d", got)
	}
}

func TestClampQuantity(t *testing.T) {
	t.Parallel()

	cases := map[int]int{-5: 0, 0: 0, 42: 42, MaxQuantity: MaxQuantity, 12000: MaxQuantity}
	for in, want := range cases {
		if got := ClampQuantity(in); got != want {
			t.Fatalf("ClampQuantity(%d) = %d, want %d", in, got, want)
		}
	}
}
