package pubsub

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	pubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"
	"github.com/indianleto/storefront-backend/pkg/types"
)

const EventQuotationCreated = "quotation.created"

// QuotationEvent is the JSON payload published for every stored quotation.
type QuotationEvent struct {
	EventID    string             `json:"eventId"`
	Type       string             `json:"type"`
	OccurredAt time.Time          `json:"occurredAt"`
	Quotation  types.QuotationRow `json:"quotation"`
}

// QuotationPublisher publishes quotation.created events.
type QuotationPublisher struct {
	client    *Client
	publisher *pubsub.Publisher
}

func NewQuotationPublisher(client *Client) *QuotationPublisher {
	return &QuotationPublisher{client: client, publisher: client.publisher()}
}

func (p *QuotationPublisher) Name() string {
	return "pubsub"
}

// EnsureHeaders checks the topic is reachable.
func (p *QuotationPublisher) EnsureHeaders(ctx context.Context) error {
	return p.client.Ping(ctx)
}

// AppendRow publishes the row and waits for the server ack.
func (p *QuotationPublisher) AppendRow(ctx context.Context, row types.QuotationRow) error {
	if p == nil || p.publisher == nil {
		return errNotInitialized
	}
	payload, err := json.Marshal(QuotationEvent{
		EventID:    uuid.NewString(),
		Type:       EventQuotationCreated,
		OccurredAt: time.Now().UTC(),
		Quotation:  row,
	})
	if err != nil {
		return fmt.Errorf("encoding quotation event: %w", err)
	}

	result := p.publisher.Publish(ctx, &pubsub.Message{
		Data: payload,
		Attributes: map[string]string{
			"event_type": EventQuotationCreated,
			"quote_id":   row.QuoteID,
		},
	})
	if _, err := result.Get(ctx); err != nil {
		return fmt.Errorf("publishing quotation %s: %w", row.QuoteID, err)
	}
	return nil
}

// Stop flushes pending messages.
func (p *QuotationPublisher) Stop() {
	if p == nil || p.publisher == nil {
		return
	}
	p.publisher.Stop()
}
