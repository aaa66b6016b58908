package controllers

import (
	"context"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/indianleto/storefront-backend/api/responses"
	"github.com/indianleto/storefront-backend/api/validators"
	"github.com/indianleto/storefront-backend/internal/rates"
	pkgerrors "github.com/indianleto/storefront-backend/pkg/errors"
	"github.com/indianleto/storefront-backend/pkg/logger"
	"github.com/indianleto/storefront-backend/pkg/types"
)

// RatesService serves exchange-rate tables and conversions.
type RatesService interface {
	Rates(ctx context.Context, base string) (rates.Table, error)
	Convert(ctx context.Context, amount decimal.Decimal, from, to string) (rates.Conversion, error)
}

type ratesResponse struct {
	types.SuccessEnvelope
	rates.Table
}

type conversionResponse struct {
	types.SuccessEnvelope
	Conversion rates.Conversion `json:"conversion"`
}

func ExchangeRates(svc RatesService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeDependency, "exchange rates unavailable"))
			return
		}
		base, err := validators.ParseCurrency(r, "base")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		table, err := svc.Rates(r.Context(), base)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, ratesResponse{SuccessEnvelope: types.OK(""), Table: table})
	}
}

func ConvertAmount(svc RatesService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeDependency, "exchange rates unavailable"))
			return
		}
		amount, err := validators.ParseQueryDecimal(r, "amount")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		from, err := validators.ParseCurrency(r, "from")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		to, err := validators.ParseCurrency(r, "to")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		conv, err := svc.Convert(r.Context(), amount, from, to)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, conversionResponse{SuccessEnvelope: types.OK(""), Conversion: conv})
	}
}
