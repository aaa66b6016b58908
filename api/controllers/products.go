package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/indianleto/storefront-backend/api/responses"
	"github.com/indianleto/storefront-backend/api/validators"
	"github.com/indianleto/storefront-backend/internal/catalog"
	"github.com/indianleto/storefront-backend/internal/pricing"
	pkgerrors "github.com/indianleto/storefront-backend/pkg/errors"
	"github.com/indianleto/storefront-backend/pkg/logger"
	"github.com/indianleto/storefront-backend/pkg/types"
)

// ProductCatalog is the read surface of the product catalog.
type ProductCatalog interface {
	List() []catalog.Product
	Get(id string) (catalog.Product, bool)
}

type productView struct {
	catalog.Product
	PriceRange string `json:"priceRange"`
}

type productListResponse struct {
	types.SuccessEnvelope
	Products []productView `json:"products"`
}

type productResponse struct {
	types.SuccessEnvelope
	Product productView `json:"product"`
}

type priceResponse struct {
	types.SuccessEnvelope
	ProductID    string          `json:"productId"`
	Quantity     int             `json:"quantity"`
	UnitPrice    decimal.Decimal `json:"unitPrice"`
	Subtotal     decimal.Decimal `json:"subtotal"`
	Tier         string          `json:"tier,omitempty"`
	Size         string          `json:"size,omitempty"`
	MinOrder     int             `json:"minOrder"`
	MeetsMinimum bool            `json:"meetsMinimum"`
}

func ListProducts(cat ProductCatalog, currency string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		products := cat.List()
		views := make([]productView, 0, len(products))
		for _, p := range products {
			views = append(views, newProductView(p, currency))
		}
		responses.WriteSuccess(w, productListResponse{SuccessEnvelope: types.OK(""), Products: views})
	}
}

func GetProduct(cat ProductCatalog, currency string, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		product, ok := cat.Get(chi.URLParam(r, "productId"))
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "Product not found"))
			return
		}
		responses.WriteSuccess(w, productResponse{SuccessEnvelope: types.OK(""), Product: newProductView(product, currency)})
	}
}

// ProductPrice resolves the tier price for ?quantity=N and, when ?size= is given,
// the size minimum order.
func ProductPrice(cat ProductCatalog, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		product, ok := cat.Get(chi.URLParam(r, "productId"))
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "Product not found"))
			return
		}

		quantity, err := validators.ParseQueryInt(r, "quantity", 1, 1, catalog.MaxQuantity)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		size := validators.SanitizeSize(r.URL.Query().Get("size"))
		if size != "" && !product.HasSize(size) {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "Validation error").
				WithDetails([]types.FieldError{{Path: "size", Message: "Size " + size + " is not available"}}))
			return
		}

		resp := priceResponse{
			SuccessEnvelope: types.OK(""),
			ProductID:       product.ID,
			Quantity:        quantity,
			UnitPrice:       product.PriceFor(quantity),
			Subtotal:        pricing.Subtotal(product.PriceTiers, quantity),
			Size:            size,
			MinOrder:        product.MinOrderForSize(size),
		}
		if tier, ok := pricing.Match(product.PriceTiers, quantity); ok {
			resp.Tier = tier.Label()
		}
		resp.MeetsMinimum = quantity >= resp.MinOrder
		responses.WriteSuccess(w, resp)
	}
}

func newProductView(p catalog.Product, currency string) productView {
	return productView{Product: p, PriceRange: pricing.FormatPriceRange(p.PriceTiers, strings.ToUpper(currency))}
}
