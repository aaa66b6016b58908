package quotation

import (
	"time"

	"github.com/indianleto/storefront-backend/internal/cart"
	"github.com/shopspring/decimal"
)

type Customer struct {
	Name  string `json:"name" validate:"required,notblank"`
	Phone string `json:"phone" validate:"required,phone"`
	Email string `json:"email" validate:"required,email"`
}

type VariantInput struct {
	Size  string `json:"size" validate:"required,notblank"`
	Color string `json:"color"`
}

// LineInput is a submitted cart line. UnitPrice may be omitted for catalog products.
type LineInput struct {
	ProductID    string           `json:"productId" validate:"required,notblank"`
	ProductTitle string           `json:"productTitle" validate:"required,notblank"`
	ProductImage string           `json:"productImage,omitempty"`
	Variant      VariantInput     `json:"variant"`
	Quantity     int              `json:"quantity" validate:"min=1"`
	UnitPrice    *decimal.Decimal `json:"unitPrice,omitempty"`
}

// Request is the quotation submission payload.
type Request struct {
	Customer Customer    `json:"customer"`
	Cart     []LineInput `json:"cart" validate:"dive"`
	Notes    string      `json:"notes,omitempty" validate:"max=2000"`
}

// Quotation is the stored, immutable record of an accepted submission.
type Quotation struct {
	QuoteID     string          `json:"quoteId"`
	Customer    Customer        `json:"customer"`
	Cart        []cart.LineItem `json:"cart"`
	Notes       string          `json:"notes"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
	CreatedAt   time.Time       `json:"createdAt"`
}

type SubmitResult struct {
	QuoteID string `json:"quoteId"`
}

// FromLineItems converts cart lines into submission lines.
func FromLineItems(items []cart.LineItem) []LineInput {
	out := make([]LineInput, 0, len(items))
	for _, item := range items {
		price := item.UnitPrice
		out = append(out, LineInput{
			ProductID:    item.ProductID,
			ProductTitle: item.ProductTitle,
			ProductImage: item.ProductImage,
			Variant:      VariantInput{Size: item.Variant.Size, Color: item.Variant.Color},
			Quantity:     item.Quantity,
			UnitPrice:    &price,
		})
	}
	return out
}
