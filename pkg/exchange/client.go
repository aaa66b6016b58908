package exchange

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	pkgerrors "github.com/indianleto/storefront-backend/pkg/errors"
	"github.com/shopspring/decimal"
)

const (
	// BasePlaceholder is replaced by the requested base currency in the URL template.
	BasePlaceholder = "{base}"

	defaultTimeout              = 5 * time.Second
	responseBodyReadLimit int64 = 1024
)

var errURLRequired = errors.New("exchange rate url is required")

// Client fetches a rate table from a JSON endpoint shaped like {"rates": {"USD": 0.012}}.
type Client struct {
	name       string
	urlFormat  string
	httpClient *http.Client
}

// Option configures optional client behavior.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithTimeout sets the per-request timeout of the default HTTP client.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient = &http.Client{Timeout: timeout}
		}
	}
}

// NewClient builds a rate source. urlFormat may contain {base}.
func NewClient(name, urlFormat string, opts ...Option) (*Client, error) {
	trimmed := strings.TrimSpace(urlFormat)
	if trimmed == "" {
		return nil, errURLRequired
	}
	if name == "" {
		if u, err := url.Parse(trimmed); err == nil && u.Host != "" {
			name = u.Host
		} else {
			name = "http"
		}
	}
	client := &Client{
		name:       name,
		urlFormat:  trimmed,
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}
	return client, nil
}

func (c *Client) Name() string {
	return c.name
}

// Fetch returns the rates relative to base.
func (c *Client) Fetch(ctx context.Context, base string) (map[string]decimal.Decimal, error) {
	if c == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "exchange rate client not configured")
	}
	base = strings.ToUpper(strings.TrimSpace(base))
	target := strings.ReplaceAll(c.urlFormat, BasePlaceholder, url.PathEscape(base))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "build exchange rate request")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "execute exchange rate request")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, responseBodyReadLimit))
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg))), "exchange rate request failed")
	}

	var apiResp struct {
		Result string                     `json:"result"`
		Rates  map[string]decimal.Decimal `json:"rates"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode exchange rate response")
	}
	if apiResp.Result != "" && apiResp.Result != "success" {
		return nil, pkgerrors.Newf(pkgerrors.CodeDependency, "exchange rate provider returned %q", apiResp.Result)
	}
	if len(apiResp.Rates) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "exchange rate response has no rates")
	}

	rates := make(map[string]decimal.Decimal, len(apiResp.Rates)+1)
	for code, rate := range apiResp.Rates {
		rates[strings.ToUpper(code)] = rate
	}
	rates[base] = decimal.NewFromInt(1)
	return rates, nil
}
