package controllers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/indianleto/storefront-backend/internal/quotation"
)

func TestCartSummary(t *testing.T) {
	handler := CartSummary(quotation.NewAssembler("INR"), loadCatalog(t), testLogger())
	body := `{"cart":[
	  {"productId":"P1","productTitle":"Floral Wrap Midi Dress","variant":{"size":"M","color":"Red"},"quantity":6,"unitPrice":100},
	  {"productId":"P1","productTitle":"Floral Wrap Midi Dress","variant":{"size":"L","color":"Red"},"quantity":30,"unitPrice":80}
	]}`

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/cart/summary", strings.NewReader(body)))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	out := decodeBody(t, rec)
	if out["itemCount"] != float64(36) || out["total"] != float64(3000) {
		t.Fatalf("unexpected totals %v", out)
	}
	if out["eligible"] != true || out["eligibleLines"] != float64(1) {
		t.Fatalf("unexpected eligibility %v", out)
	}
	if !strings.HasPrefix(out["summary"].(string), "Floral Wrap Midi Dress | Size: M | Color: Red | Qty: 6 | INR100.00/pc\n") {
		t.Fatalf("unexpected summary %q", out["summary"])
	}
}

func TestCartSummaryEmpty(t *testing.T) {
	handler := CartSummary(quotation.NewAssembler(""), nil, testLogger())

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/cart/summary", http.NoBody))
	out := decodeBody(t, rec)
	if out["summary"] != "No items in cart" || out["eligible"] != false || out["total"] != float64(0) {
		t.Fatalf("unexpected empty summary %v", out)
	}
}
