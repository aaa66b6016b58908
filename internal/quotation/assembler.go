package quotation

import (
	"fmt"
	"strings"

	"github.com/indianleto/storefront-backend/internal/cart"
	"github.com/indianleto/storefront-backend/internal/catalog"
	"github.com/indianleto/storefront-backend/internal/pricing"
	"github.com/shopspring/decimal"
)

const (
	DefaultEmptyMessage = "No items in cart"
	DefaultCurrency     = "INR"
)

// ProductLookup resolves catalog products by id.
type ProductLookup interface {
	Lookup(id string) (*catalog.Product, bool)
}

// Assembler renders the read-only summary of a cart.
type Assembler struct {
	EmptyMessage string
	Currency     string
}

func NewAssembler(currency string) Assembler {
	if currency == "" {
		currency = DefaultCurrency
	}
	return Assembler{EmptyMessage: DefaultEmptyMessage, Currency: currency}
}

// Summarize renders one line per item in cart order, or the empty message.
func (a Assembler) Summarize(items []cart.LineItem) string {
	if len(items) == 0 {
		return a.emptyMessage()
	}
	lines := make([]string, 0, len(items))
	for _, item := range items {
		lines = append(lines, fmt.Sprintf("%s | Size: %s | Color: %s | Qty: %d | %s/pc",
			item.ProductTitle, item.Variant.Size, item.Variant.Color, item.Quantity,
			pricing.FormatAmount(a.currency(), item.UnitPrice)))
	}
	return strings.Join(lines, "\n")
}

// SheetSummary is the compact single-cell form used for spreadsheet rows.
func (a Assembler) SheetSummary(items []cart.LineItem) string {
	parts := make([]string, 0, len(items))
	for _, item := range items {
		parts = append(parts, fmt.Sprintf("%s (%s/%s) x%d @%s",
			item.ProductTitle, item.Variant.Size, item.Variant.Color, item.Quantity,
			pricing.FormatAmount(a.currency(), item.UnitPrice)))
	}
	return strings.Join(parts, "; ")
}

func (a Assembler) Total(items []cart.LineItem) decimal.Decimal {
	return cart.Total(items)
}

func (a Assembler) emptyMessage() string {
	if a.EmptyMessage == "" {
		return DefaultEmptyMessage
	}
	return a.EmptyMessage
}

func (a Assembler) currency() string {
	if a.Currency == "" {
		return DefaultCurrency
	}
	return a.Currency
}

// MeetsSizeMinimum reports whether the line reaches its size minimum order. Unknown
// products have a minimum of 1.
func MeetsSizeMinimum(item cart.LineItem, lookup ProductLookup) bool {
	minimum := 1
	if lookup != nil {
		if product, ok := lookup.Lookup(item.ProductID); ok {
			minimum = product.MinOrderForSize(item.Variant.Size)
		}
	}
	return item.Quantity >= minimum
}

// HasEligibleLine reports whether at least one line meets its size minimum.
func HasEligibleLine(items []cart.LineItem, lookup ProductLookup) bool {
	for _, item := range items {
		if MeetsSizeMinimum(item, lookup) {
			return true
		}
	}
	return false
}

func EligibleLines(items []cart.LineItem, lookup ProductLookup) []cart.LineItem {
	out := make([]cart.LineItem, 0, len(items))
	for _, item := range items {
		if MeetsSizeMinimum(item, lookup) {
			out = append(out, item)
		}
	}
	return out
}
