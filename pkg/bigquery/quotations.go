package bigquery

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"cloud.google.com/go/bigquery"
	"github.com/indianleto/storefront-backend/pkg/types"
)

// QuotationRecord is the streamed row shape of the quotations table.
type QuotationRecord struct {
	QuoteID       string    `bigquery:"quote_id"`
	CustomerName  string    `bigquery:"customer_name"`
	CustomerPhone string    `bigquery:"customer_phone"`
	CustomerEmail string    `bigquery:"customer_email"`
	Products      string    `bigquery:"products"`
	TotalAmount   *big.Rat  `bigquery:"total_amount"`
	Notes         string    `bigquery:"notes"`
	CreatedAt     time.Time `bigquery:"created_at"`
}

func newQuotationRecord(row types.QuotationRow) QuotationRecord {
	return QuotationRecord{
		QuoteID:       row.QuoteID,
		CustomerName:  row.CustomerName,
		CustomerPhone: row.CustomerPhone,
		CustomerEmail: row.CustomerEmail,
		Products:      row.Products,
		TotalAmount:   row.TotalAmount.Rat(),
		Notes:         row.Notes,
		CreatedAt:     row.CreatedAt.UTC(),
	}
}

var quotationSchema = func() bigquery.Schema {
	schema, err := bigquery.InferSchema(QuotationRecord{})
	if err != nil {
		panic(fmt.Sprintf("quotation schema: %v", err))
	}
	return schema
}()

// QuotationSink streams quotation rows into the configured table, using the
// quote id as insert id so a retried append is not counted twice.
type QuotationSink struct {
	client *Client
}

func NewQuotationSink(client *Client) *QuotationSink {
	return &QuotationSink{client: client}
}

func (s *QuotationSink) Name() string {
	return "bigquery"
}

// EnsureHeaders creates the quotations table when missing.
func (s *QuotationSink) EnsureHeaders(ctx context.Context) error {
	return s.client.EnsureTable(ctx, quotationSchema)
}

func (s *QuotationSink) AppendRow(ctx context.Context, row types.QuotationRow) error {
	saver := &bigquery.StructSaver{
		Schema:   quotationSchema,
		InsertID: row.QuoteID,
		Struct:   newQuotationRecord(row),
	}
	if err := s.client.Put(ctx, saver); err != nil {
		return fmt.Errorf("streaming quotation %s: %w", row.QuoteID, err)
	}
	return nil
}
