package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/indianleto/storefront-backend/api/controllers"
	"github.com/indianleto/storefront-backend/api/routes"
	"github.com/indianleto/storefront-backend/internal/catalog"
	"github.com/indianleto/storefront-backend/internal/quotation"
	"github.com/indianleto/storefront-backend/internal/rates"
	"github.com/indianleto/storefront-backend/pkg/bigquery"
	"github.com/indianleto/storefront-backend/pkg/config"
	"github.com/indianleto/storefront-backend/pkg/db"
	"github.com/indianleto/storefront-backend/pkg/exchange"
	"github.com/indianleto/storefront-backend/pkg/instance"
	"github.com/indianleto/storefront-backend/pkg/logger"
	"github.com/indianleto/storefront-backend/pkg/metrics"
	"github.com/indianleto/storefront-backend/pkg/migrate"
	"github.com/indianleto/storefront-backend/pkg/pubsub"
	"github.com/indianleto/storefront-backend/pkg/redis"
	"github.com/indianleto/storefront-backend/pkg/sheets"
	"github.com/indianleto/storefront-backend/pkg/xlsxsink"
)

const shutdownTimeout = 15 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
		Fields:      map[string]string{"env": cfg.App.Env, "instance": instance.GetID()},
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	registry := metrics.NewRegistry()
	checks := map[string]controllers.Pinger{}

	repo := quotation.Repository(quotation.NewMemoryRepository())
	if cfg.DB.Enabled() {
		dbClient, err := db.New(ctx, cfg.DB, logg)
		if err != nil {
			logg.Error(ctx, "failed to bootstrap database", err)
			os.Exit(1)
		}
		defer func() {
			if err := dbClient.Close(); err != nil {
				logg.Error(context.Background(), "error closing database", err)
			}
		}()
		if err := migrate.AutoApply(ctx, cfg, logg, dbClient); err != nil {
			logg.Error(ctx, "failed to apply migrations", err)
			os.Exit(1)
		}
		gormRepo, err := quotation.NewGormRepository(dbClient.DB())
		if err != nil {
			logg.Error(ctx, "failed to create quotation repository", err)
			os.Exit(1)
		}
		repo = gormRepo
		checks["database"] = dbClient
	} else {
		logg.Warn(ctx, "no database configured, quotations are kept in memory")
	}

	var redisClient *redis.Client
	if cfg.Redis.Enabled() {
		redisClient, err = redis.New(ctx, cfg.Redis, logg)
		if err != nil {
			logg.Error(ctx, "failed to bootstrap redis", err)
			os.Exit(1)
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				logg.Error(context.Background(), "error closing redis", err)
			}
		}()
		checks["redis"] = redisClient
	}

	cat, err := catalog.Load()
	if err != nil {
		logg.Error(ctx, "failed to load product catalog", err)
		os.Exit(1)
	}

	sinks, closeSinks := buildSinks(ctx, cfg, logg, checks)
	defer closeSinks()

	quotes, err := quotation.NewService(quotation.ServiceParams{
		Repository: repo,
		Catalog:    cat,
		Sinks:      sinks,
		Policy: quotation.Policy{
			IDPrefix:            cfg.Quote.IDPrefix,
			AllowEmptyCart:      cfg.Quote.AllowEmptyCart,
			RequireSizeMinimums: cfg.Quote.RequireSizeMinimums,
			SinkTimeout:         cfg.Quote.SinkTimeout,
			Currency:            cfg.Quote.Currency,
		},
		Logger:  logg,
		Metrics: metrics.NewQuoteMetrics(registry),
	})
	if err != nil {
		logg.Error(ctx, "failed to create quotation service", err)
		os.Exit(1)
	}

	var rateCache rates.Cache = rates.NewMemoryCache()
	if redisClient != nil {
		redisCache, err := rates.NewRedisCache(redisClient)
		if err != nil {
			logg.Error(ctx, "failed to create rates cache", err)
			os.Exit(1)
		}
		rateCache = redisCache
	}
	rateSvc, err := rates.NewService(rates.Params{
		Sources:      rateSources(ctx, cfg.Rates, logg),
		Cache:        rateCache,
		DefaultBase:  cfg.Rates.BaseCurrency,
		TTL:          cfg.Rates.CacheTTL,
		FetchTimeout: cfg.Rates.FetchTimeout,
		Logger:       logg,
		Metrics:      metrics.NewRatesMetrics(registry),
	})
	if err != nil {
		logg.Error(ctx, "failed to create rates service", err)
		os.Exit(1)
	}

	deps := routes.Dependencies{
		Quotes:  quotes,
		Catalog: cat,
		Rates:   rateSvc,
		Checks:  checks,
		Metrics: metrics.Handler(registry),
	}
	if redisClient != nil {
		deps.Redis = redisClient
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx = logg.WithFields(ctx, map[string]any{
		"addr":  addr,
		"sinks": len(sinks),
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr:              addr,
		Handler:           routes.NewRouter(cfg, logg, deps),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-ctx.Done():
		logg.Info(ctx, "shutting down api server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(shutdownCtx, "graceful shutdown failed", err)
		}
	}
}

// rateSources builds the live exchange-rate sources in priority order. A source
// with an empty URL is skipped.
func rateSources(ctx context.Context, cfg config.RatesConfig, logg *logger.Logger) []rates.Source {
	var sources []rates.Source
	for _, s := range []struct{ name, url string }{
		{"primary", cfg.PrimaryURL},
		{"backup", cfg.BackupURL},
	} {
		client, err := exchange.NewClient(s.name, s.url, exchange.WithTimeout(cfg.FetchTimeout))
		if err != nil {
			logg.Warn(logg.WithField(ctx, "source", s.name), "exchange rate source disabled")
			continue
		}
		sources = append(sources, client)
	}
	return sources
}

// buildSinks wires every configured quotation sink. A sink that fails to
// bootstrap is logged and skipped; with none configured quotations are only logged.
func buildSinks(ctx context.Context, cfg *config.Config, logg *logger.Logger, checks map[string]controllers.Pinger) ([]quotation.Sink, func()) {
	var (
		sinks   []quotation.Sink
		closers []func()
	)

	if cfg.Sheets.Enabled() {
		client, err := sheets.NewClient(ctx, cfg.GCP, cfg.Sheets, logg)
		if err != nil {
			logg.Error(ctx, "google sheets sink disabled", err)
		} else {
			sinks = append(sinks, client)
		}
	}

	if cfg.BigQuery.Enabled() {
		client, err := bigquery.NewClient(ctx, cfg.GCP, cfg.BigQuery, logg)
		if err != nil {
			logg.Error(ctx, "bigquery sink disabled", err)
		} else {
			sinks = append(sinks, bigquery.NewQuotationSink(client))
			checks["bigquery"] = client
			closers = append(closers, func() { _ = client.Close() })
		}
	}

	if cfg.PubSub.Enabled() {
		client, err := pubsub.NewClient(ctx, cfg.GCP, cfg.PubSub, logg)
		if err != nil {
			logg.Error(ctx, "pubsub sink disabled", err)
		} else {
			publisher := pubsub.NewQuotationPublisher(client)
			sinks = append(sinks, publisher)
			checks["pubsub"] = client
			closers = append(closers, func() {
				publisher.Stop()
				_ = client.Close()
			})
		}
	}

	if cfg.XLSX.Enabled() {
		sink, err := xlsxsink.New(cfg.XLSX)
		if err != nil {
			logg.Error(ctx, "xlsx sink disabled", err)
		} else {
			sinks = append(sinks, sink)
		}
	}

	if len(sinks) == 0 {
		sinks = append(sinks, quotation.NewLogSink(logg))
	}

	return sinks, func() {
		for _, closeFn := range closers {
			closeFn()
		}
	}
}
