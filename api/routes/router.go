package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/indianleto/storefront-backend/api/controllers"
	"github.com/indianleto/storefront-backend/api/middleware"
	"github.com/indianleto/storefront-backend/internal/quotation"
	"github.com/indianleto/storefront-backend/pkg/config"
	"github.com/indianleto/storefront-backend/pkg/logger"
	pkgredis "github.com/indianleto/storefront-backend/pkg/redis"
)

// RedisStore backs quote rate limiting and idempotent replays.
type RedisStore interface {
	pkgredis.IdempotencyStore
	middleware.FixedWindowLimiter
}

// Dependencies are the collaborators the HTTP surface is built from. Redis and
// Metrics are optional; a nil Redis disables rate limiting and idempotency.
type Dependencies struct {
	Quotes  quotation.Service
	Catalog Catalog
	Rates   controllers.RatesService
	Redis   RedisStore
	Checks  map[string]controllers.Pinger
	Metrics http.Handler
}

// Catalog serves product reads and lookups for cart summaries.
type Catalog interface {
	controllers.ProductCatalog
	quotation.ProductLookup
}

func NewRouter(cfg *config.Config, logg *logger.Logger, deps Dependencies) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.CORS.AllowedOrigins),
	)

	quotePolicy := middleware.NewRateLimitPolicy(
		"quote",
		cfg.RateLimit.QuoteWindow,
		cfg.RateLimit.QuoteIPLimit,
		cfg.RateLimit.QuoteEmailLimit,
	)

	var (
		limiter     middleware.FixedWindowLimiter
		idempotency pkgredis.IdempotencyStore
	)
	if deps.Redis != nil {
		limiter = deps.Redis
		idempotency = deps.Redis
	}

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, deps.Checks, logg))
	})

	if deps.Metrics != nil {
		r.Handle("/metrics", deps.Metrics)
	}

	assembler := quotation.NewAssembler(cfg.Quote.Currency)

	r.Route("/api", func(r chi.Router) {
		r.With(
			middleware.QuoteRateLimit(quotePolicy, limiter, logg),
			middleware.Idempotency(idempotency, cfg.Quote.IdempotencyTTL, logg),
		).Post("/quote", controllers.SubmitQuote(deps.Quotes, logg))
		r.Get("/quote/{quoteId}", controllers.GetQuote(deps.Quotes, logg))
		r.Get("/quotes", controllers.ListQuotes(deps.Quotes, logg))

		if deps.Catalog != nil {
			r.Get("/products", controllers.ListProducts(deps.Catalog, cfg.Quote.Currency))
			r.Get("/products/{productId}", controllers.GetProduct(deps.Catalog, cfg.Quote.Currency, logg))
			r.Get("/products/{productId}/price", controllers.ProductPrice(deps.Catalog, logg))
			r.Post("/cart/summary", controllers.CartSummary(assembler, deps.Catalog, logg))
		}

		r.Get("/rates", controllers.ExchangeRates(deps.Rates, logg))
		r.Get("/rates/convert", controllers.ConvertAmount(deps.Rates, logg))
	})

	return r
}
