package rates

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// SourceStatic marks a table served from the built-in fallback rates.
const SourceStatic = "static"

// Table holds the value of one unit of Base in every listed currency.
type Table struct {
	Base      string                     `json:"base"`
	Rates     map[string]decimal.Decimal `json:"rates"`
	Source    string                     `json:"source"`
	FetchedAt time.Time                  `json:"fetchedAt"`
}

// Rate returns the rate for code, case-insensitively.
func (t Table) Rate(code string) (decimal.Decimal, bool) {
	code = normalize(code)
	if code == t.Base {
		return decimal.NewFromInt(1), true
	}
	r, ok := t.Rates[code]
	return r, ok
}

// staticINR approximates INR cross rates; only used when every source fails.
var staticINR = map[string]string{
	"INR": "1",
	"USD": "0.012",
	"EUR": "0.011",
	"GBP": "0.0094",
	"AED": "0.044",
	"AUD": "0.018",
	"CAD": "0.016",
	"CHF": "0.0105",
	"CNY": "0.086",
	"JPY": "1.78",
	"SGD": "0.016",
	"SAR": "0.045",
	"RUB": "1.08",
}

// staticTable rebases the built-in INR table onto base. The bool is false when
// base has no static rate.
func staticTable(base string, now time.Time) (Table, bool) {
	base = normalize(base)
	inrToBase, ok := staticINR[base]
	if !ok {
		return Table{}, false
	}
	divisor := decimal.RequireFromString(inrToBase)

	rates := make(map[string]decimal.Decimal, len(staticINR))
	for code, raw := range staticINR {
		rates[code] = decimal.RequireFromString(raw).DivRound(divisor, 8)
	}
	rates[base] = decimal.NewFromInt(1)
	return Table{Base: base, Rates: rates, Source: SourceStatic, FetchedAt: now}, true
}

func normalize(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
