package validators

import (
	"net/http"
	"strconv"
	"strings"

	pkgerrors "github.com/indianleto/storefront-backend/pkg/errors"
	"github.com/indianleto/storefront-backend/pkg/types"
	"github.com/shopspring/decimal"
)

func ParseQueryInt(r *http.Request, key string, defaultVal, min, max int) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return defaultVal, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, queryError(key, "must be numeric")
	}
	if value < min || value > max {
		return 0, queryError(key, "must be between "+strconv.Itoa(min)+" and "+strconv.Itoa(max))
	}
	return value, nil
}

// ParseQueryDecimal parses a non-negative decimal query parameter.
func ParseQueryDecimal(r *http.Request, key string) (decimal.Decimal, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return decimal.Zero, queryError(key, "is required")
	}
	value, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, queryError(key, "must be numeric")
	}
	if value.IsNegative() {
		return decimal.Zero, queryError(key, "must be 0 or more")
	}
	return value, nil
}

// ParseCurrency reads a three-letter currency code; empty returns "".
func ParseCurrency(r *http.Request, key string) (string, error) {
	raw := strings.ToUpper(SanitizeString(r.URL.Query().Get(key), 8))
	if raw == "" {
		return "", nil
	}
	if len(raw) != 3 {
		return "", queryError(key, "must be a 3-letter currency code")
	}
	for _, c := range raw {
		if c < 'A' || c > 'Z' {
			return "", queryError(key, "must be a 3-letter currency code")
		}
	}
	return raw, nil
}

func queryError(key, msg string) error {
	return pkgerrors.New(pkgerrors.CodeValidation, "Validation error").
		WithDetails([]types.FieldError{{Path: key, Message: key + " " + msg}})
}
