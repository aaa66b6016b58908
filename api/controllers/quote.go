package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/indianleto/storefront-backend/api/responses"
	"github.com/indianleto/storefront-backend/api/validators"
	"github.com/indianleto/storefront-backend/internal/quotation"
	pkgerrors "github.com/indianleto/storefront-backend/pkg/errors"
	"github.com/indianleto/storefront-backend/pkg/logger"
	"github.com/indianleto/storefront-backend/pkg/types"
)

const quoteSubmittedMessage = "Quotation submitted successfully"

type submitQuoteResponse struct {
	types.SuccessEnvelope
	QuoteID string `json:"quoteId"`
}

type quoteResponse struct {
	types.SuccessEnvelope
	Quotation *quotation.Quotation `json:"quotation"`
}

type quoteListResponse struct {
	types.SuccessEnvelope
	Quotations []quotation.Quotation `json:"quotations"`
}

// SubmitQuote accepts a quotation request.
func SubmitQuote(svc quotation.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "quotation service unavailable"))
			return
		}

		var req quotation.Request
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		res, err := svc.Submit(r.Context(), req)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, submitQuoteResponse{
			SuccessEnvelope: types.OK(quoteSubmittedMessage),
			QuoteID:         res.QuoteID,
		})
	}
}

func GetQuote(svc quotation.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "quotation service unavailable"))
			return
		}

		q, err := svc.Get(r.Context(), chi.URLParam(r, "quoteId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, quoteResponse{SuccessEnvelope: types.OK(""), Quotation: q})
	}
}

func ListQuotes(svc quotation.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "quotation service unavailable"))
			return
		}

		quotes, err := svc.List(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if quotes == nil {
			quotes = []quotation.Quotation{}
		}
		responses.WriteSuccess(w, quoteListResponse{SuccessEnvelope: types.OK(""), Quotations: quotes})
	}
}
