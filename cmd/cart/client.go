package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/indianleto/storefront-backend/internal/quotation"
	"github.com/indianleto/storefront-backend/pkg/types"
)

const responseBodyReadLimit = 1 << 20

type quoteClient struct {
	baseURL    string
	httpClient *http.Client
}

func newQuoteClient(baseURL string, timeout time.Duration) *quoteClient {
	return &quoteClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

type submitResponse struct {
	types.ErrorEnvelope
	QuoteID string `json:"quoteId"`
}

// Submit posts the quotation with a fresh Idempotency-Key and returns the assigned id.
func (c *quoteClient) Submit(ctx context.Context, req quotation.Request) (string, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("encoding quotation: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/quote", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("building request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Idempotency-Key", uuid.NewString())

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("submitting quotation: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, responseBodyReadLimit))
	if err != nil {
		return "", fmt.Errorf("reading response: %w", err)
	}

	var out submitResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return "", fmt.Errorf("unexpected response (status %d): %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	if resp.StatusCode != http.StatusOK || !out.Success {
		return "", fmt.Errorf("quotation rejected (status %d): %s", resp.StatusCode, describe(out.ErrorEnvelope))
	}
	return out.QuoteID, nil
}

func describe(env types.ErrorEnvelope) string {
	msg := env.Message
	raw, err := json.Marshal(env.Errors)
	if err != nil || env.Errors == nil {
		return msg
	}
	var fields []types.FieldError
	if err := json.Unmarshal(raw, &fields); err != nil {
		return msg
	}
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, f.Path+": "+f.Message)
	}
	if len(parts) == 0 {
		return msg
	}
	return msg + " (" + strings.Join(parts, "; ") + ")"
}
