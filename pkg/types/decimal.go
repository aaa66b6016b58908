package types

import "github.com/shopspring/decimal"

// Money crosses every wire boundary (API envelopes, the cart blob, sink
// payloads, cached rate tables) as a JSON number. The shopspring switch is
// process-wide, so it lives here: both binaries that encode decimals link this
// package for their response envelopes.
func init() {
	UseNumericDecimals()
}

// UseNumericDecimals makes decimal.Decimal marshal as a JSON number.
func UseNumericDecimals() {
	decimal.MarshalJSONWithoutQuotes = true
}
