package controllers

import (
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/indianleto/storefront-backend/api/responses"
	"github.com/indianleto/storefront-backend/api/validators"
	"github.com/indianleto/storefront-backend/internal/cart"
	"github.com/indianleto/storefront-backend/internal/quotation"
	"github.com/indianleto/storefront-backend/pkg/logger"
	"github.com/indianleto/storefront-backend/pkg/types"
)

type cartSummaryRequest struct {
	Cart []cart.LineItem `json:"cart"`
}

type cartSummaryResponse struct {
	types.SuccessEnvelope
	ItemCount     int             `json:"itemCount"`
	Total         decimal.Decimal `json:"total"`
	Summary       string          `json:"summary"`
	Eligible      bool            `json:"eligible"`
	EligibleLines int             `json:"eligibleLines"`
}

// CartSummary renders the read-only summary of a client-held cart.
func CartSummary(assembler quotation.Assembler, lookup quotation.ProductLookup, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req cartSummaryRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		eligible := quotation.EligibleLines(req.Cart, lookup)
		responses.WriteSuccess(w, cartSummaryResponse{
			SuccessEnvelope: types.OK(""),
			ItemCount:       cart.ItemCount(req.Cart),
			Total:           assembler.Total(req.Cart),
			Summary:         assembler.Summarize(req.Cart),
			Eligible:        len(eligible) > 0,
			EligibleLines:   len(eligible),
		})
	}
}
