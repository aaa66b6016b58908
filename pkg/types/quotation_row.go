package types

import (
	"time"

	"github.com/shopspring/decimal"
)

// QuotationHeaders is the header row written by tabular quotation sinks.
var QuotationHeaders = []string{
	"Quote ID",
	"Customer Name",
	"Phone",
	"Email",
	"Products",
	"Total Amount (INR)",
	"Notes",
	"Created At",
}

// QuotationRow is the flattened record handed to quotation sinks.
type QuotationRow struct {
	QuoteID       string          `json:"quoteId"`
	CustomerName  string          `json:"customerName"`
	CustomerPhone string          `json:"customerPhone"`
	CustomerEmail string          `json:"customerEmail"`
	Products      string          `json:"products"`
	TotalAmount   decimal.Decimal `json:"totalAmount"`
	Notes         string          `json:"notes"`
	CreatedAt     time.Time       `json:"createdAt"`
}

// Values returns the row cells in header order. The amount is a float so
// spreadsheets treat it as a number.
func (r QuotationRow) Values() []any {
	return []any{
		r.QuoteID,
		r.CustomerName,
		r.CustomerPhone,
		r.CustomerEmail,
		r.Products,
		r.TotalAmount.InexactFloat64(),
		r.Notes,
		r.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
}
