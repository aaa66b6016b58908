package types

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestQuotationRowValuesFollowHeaderOrder(t *testing.T) {
	created := time.Date(2026, 3, 1, 10, 30, 0, 0, time.UTC)
	row := QuotationRow{
		QuoteID:       "IL-ABC-123456",
		CustomerName:  "A",
		CustomerPhone: "9876543210",
		CustomerEmail: "a@b.co",
		Products:      "Dress (M/Red) x50 @INR1100.00",
		TotalAmount:   decimal.NewFromInt(55000),
		Notes:         "",
		CreatedAt:     created,
	}

	values := row.Values()
	if len(values) != len(QuotationHeaders) {
		t.Fatalf("expected %d cells, got %d", len(QuotationHeaders), len(values))
	}
	if values[0] != "IL-ABC-123456" {
		t.Fatalf("unexpected quote id cell %v", values[0])
	}
	if values[5] != float64(55000) {
		t.Fatalf("unexpected total cell %v", values[5])
	}
	if values[7] != "2026-03-01T10:30:00Z" {
		t.Fatalf("unexpected created at cell %v", values[7])
	}
}
