package sheets

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/indianleto/storefront-backend/pkg/config"
	"github.com/indianleto/storefront-backend/pkg/logger"
	"github.com/indianleto/storefront-backend/pkg/types"
	"google.golang.org/api/option"
	gsheets "google.golang.org/api/sheets/v4"
)

const (
	sinkName         = "sheets"
	valueInputOption = "USER_ENTERED"
	insertDataOption = "INSERT_ROWS"
)

var (
	errSpreadsheetRequired  = errors.New("google sheet id is required")
	errClientNotInitialized = errors.New("sheets client not initialized")
)

// Client appends quotation rows to a spreadsheet.
type Client struct {
	svc           *gsheets.Service
	spreadsheetID string
	sheetName     string
}

type serviceAccountKey struct {
	ClientEmail string `json:"client_email"`
	PrivateKey  string `json:"private_key"`
}

// NewClient builds a Sheets client from the service account key (or the shared GCP
// credentials when no key is set). Extra options are appended last.
func NewClient(ctx context.Context, gcp config.GCPConfig, cfg config.SheetsConfig, logg *logger.Logger, extra ...option.ClientOption) (*Client, error) {
	spreadsheetID := strings.TrimSpace(cfg.SpreadsheetID)
	if spreadsheetID == "" {
		return nil, errSpreadsheetRequired
	}

	opts, err := clientOptions(gcp, cfg)
	if err != nil {
		return nil, err
	}
	opts = append(opts, extra...)

	svc, err := gsheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating sheets service: %w", err)
	}

	sheetName := strings.TrimSpace(cfg.SheetName)
	if sheetName == "" {
		sheetName = "Sheet1"
	}

	if logg != nil {
		logg.Info(logg.WithField(ctx, "sheet", sheetName), "sheets client initialized")
	}

	return &Client{svc: svc, spreadsheetID: spreadsheetID, sheetName: sheetName}, nil
}

func clientOptions(gcp config.GCPConfig, cfg config.SheetsConfig) ([]option.ClientOption, error) {
	opts := []option.ClientOption{option.WithScopes(gsheets.SpreadsheetsScope)}

	if raw := strings.TrimSpace(cfg.ServiceAccountKey); raw != "" {
		var key serviceAccountKey
		if err := json.Unmarshal([]byte(raw), &key); err != nil {
			return nil, fmt.Errorf("parsing google service account key: %w", err)
		}
		if key.ClientEmail == "" || key.PrivateKey == "" {
			return nil, errors.New("service account key is missing client_email or private_key")
		}
		return append(opts, option.WithCredentialsJSON([]byte(raw))), nil
	}

	switch {
	case strings.TrimSpace(gcp.CredentialsJSON) != "":
		opts = append(opts, option.WithCredentialsJSON([]byte(gcp.CredentialsJSON)))
	case strings.TrimSpace(gcp.ApplicationCredentials) != "":
		opts = append(opts, option.WithCredentialsFile(gcp.ApplicationCredentials))
	}
	return opts, nil
}

func (c *Client) Name() string {
	return sinkName
}

// EnsureHeaders writes the header row when the first row is empty.
func (c *Client) EnsureHeaders(ctx context.Context) error {
	if c == nil || c.svc == nil {
		return errClientNotInitialized
	}

	headerRange := c.headerRange()
	existing, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, headerRange).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("reading sheet headers: %w", err)
	}
	if len(existing.Values) > 0 && len(existing.Values[0]) > 0 {
		return nil
	}

	headers := make([]any, 0, len(types.QuotationHeaders))
	for _, h := range types.QuotationHeaders {
		headers = append(headers, h)
	}

	_, err = c.svc.Spreadsheets.Values.Update(c.spreadsheetID, headerRange, &gsheets.ValueRange{
		Values: [][]any{headers},
	}).ValueInputOption(valueInputOption).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("writing sheet headers: %w", err)
	}
	return nil
}

// AppendRow inserts one quotation row below the existing data.
func (c *Client) AppendRow(ctx context.Context, row types.QuotationRow) error {
	if c == nil || c.svc == nil {
		return errClientNotInitialized
	}

	_, err := c.svc.Spreadsheets.Values.Append(c.spreadsheetID, c.dataRange(), &gsheets.ValueRange{
		Values: [][]any{row.Values()},
	}).ValueInputOption(valueInputOption).InsertDataOption(insertDataOption).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("appending quotation %s: %w", row.QuoteID, err)
	}
	return nil
}

func (c *Client) dataRange() string {
	return c.sheetName + "!A:H"
}

func (c *Client) headerRange() string {
	return c.sheetName + "!A1:H1"
}
