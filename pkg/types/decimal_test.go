package types

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
)

func TestDecimalsEncodeAsNumbers(t *testing.T) {
	raw, err := json.Marshal(map[string]decimal.Decimal{"total": decimal.RequireFromString("3000.50")})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(raw) != `{"total":3000.5}` {
		t.Fatalf("expected a numeric total, got %s", raw)
	}
}
