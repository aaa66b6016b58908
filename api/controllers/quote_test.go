package controllers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/indianleto/storefront-backend/internal/catalog"
	"github.com/indianleto/storefront-backend/internal/quotation"
	"github.com/indianleto/storefront-backend/pkg/logger"
)

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Level: logger.ParseLevel("debug"), Output: io.Discard})
}

func newQuoteService(t *testing.T) (quotation.Service, *quotation.MemoryRepository) {
	t.Helper()
	cat, err := catalog.Load()
	if err != nil {
		t.Fatalf("load catalog: %v", err)
	}
	repo := quotation.NewMemoryRepository()
	svc, err := quotation.NewService(quotation.ServiceParams{
		Repository: repo,
		Catalog:    cat,
		Now:        func() time.Time { return time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC) },
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc, repo
}

func withURLParam(req *http.Request, key, value string) *http.Request {
	routeCtx := chi.NewRouteContext()
	routeCtx.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx))
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode body %q: %v", rec.Body.String(), err)
	}
	return out
}

const validQuoteBody = `{
  "customer": {"name": "A", "phone": "9876543210", "email": "a@b.com"},
  "cart": [{"productId": "P1", "productTitle": "Floral Wrap Midi Dress", "variant": {"size": "M", "color": "Red"}, "quantity": 50, "unitPrice": 1100}],
  "notes": "",
  "totalAmount": 1
}`

func TestSubmitQuoteAndFetch(t *testing.T) {
	svc, _ := newQuoteService(t)
	logg := testLogger()

	rec := httptest.NewRecorder()
	SubmitQuote(svc, logg).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/quote", strings.NewReader(validQuoteBody)))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	body := decodeBody(t, rec)
	quoteID, _ := body["quoteId"].(string)
	if body["success"] != true || quoteID == "" || body["message"] != "Quotation submitted successfully" {
		t.Fatalf("unexpected submit body %v", body)
	}

	rec = httptest.NewRecorder()
	req := withURLParam(httptest.NewRequest(http.MethodGet, "/api/quote/"+quoteID, nil), "quoteId", quoteID)
	GetQuote(svc, logg).ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	q := decodeBody(t, rec)["quotation"].(map[string]any)
	if q["totalAmount"] != float64(55000) {
		t.Fatalf("expected server computed total 55000, got %v", q["totalAmount"])
	}
	if q["createdAt"] == "" || q["createdAt"] == nil {
		t.Fatal("expected createdAt")
	}
}

func TestSubmitQuoteValidationError(t *testing.T) {
	svc, repo := newQuoteService(t)
	body := strings.Replace(validQuoteBody, "9876543210", "123", 1)

	rec := httptest.NewRecorder()
	SubmitQuote(svc, testLogger()).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/quote", strings.NewReader(body)))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	out := decodeBody(t, rec)
	if out["success"] != false || out["message"] != "Validation error" {
		t.Fatalf("unexpected body %v", out)
	}
	errs, ok := out["errors"].([]any)
	if !ok || len(errs) != 1 || errs[0].(map[string]any)["path"] != "customer.phone" {
		t.Fatalf("unexpected errors %v", out["errors"])
	}
	if quotes, _ := repo.List(context.Background()); len(quotes) != 0 {
		t.Fatalf("nothing should be persisted, got %d", len(quotes))
	}
}

func TestSubmitQuoteMalformedAndEmptyBody(t *testing.T) {
	svc, _ := newQuoteService(t)

	rec := httptest.NewRecorder()
	SubmitQuote(svc, testLogger()).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/quote", strings.NewReader(`{"customer":`)))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	out := decodeBody(t, rec)
	if out["message"] != "Invalid JSON payload" || out["errors"] != nil {
		t.Fatalf("unexpected malformed body %v", out)
	}

	rec = httptest.NewRecorder()
	SubmitQuote(svc, testLogger()).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/quote", http.NoBody))
	if rec.Code != http.StatusBadRequest || decodeBody(t, rec)["message"] != "Validation error" {
		t.Fatalf("empty body should fail validation, got %d %s", rec.Code, rec.Body.String())
	}
}

func TestGetQuoteNotFound(t *testing.T) {
	svc, _ := newQuoteService(t)

	rec := httptest.NewRecorder()
	req := withURLParam(httptest.NewRequest(http.MethodGet, "/api/quote/IL-X", nil), "quoteId", "IL-X")
	GetQuote(svc, testLogger()).ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	if msg := decodeBody(t, rec)["message"]; msg != "Quotation not found" {
		t.Fatalf("unexpected message %v", msg)
	}
}

type failingQuoteService struct{ quotation.Service }

func (failingQuoteService) List(context.Context) ([]quotation.Quotation, error) {
	return nil, io.ErrUnexpectedEOF
}

func TestListQuotes(t *testing.T) {
	svc, _ := newQuoteService(t)

	rec := httptest.NewRecorder()
	ListQuotes(svc, testLogger()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/quotes", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if quotes, ok := decodeBody(t, rec)["quotations"].([]any); !ok || len(quotes) != 0 {
		t.Fatalf("expected empty list, got %s", rec.Body.String())
	}

	rec = httptest.NewRecorder()
	ListQuotes(failingQuoteService{}, testLogger()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/quotes", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	if msg := decodeBody(t, rec)["message"]; msg != "internal server error" {
		t.Fatalf("unexpected message %v", msg)
	}
}
