package rates

import (
	"context"
	"fmt"
	"time"

	pkgerrors "github.com/indianleto/storefront-backend/pkg/errors"
	"github.com/indianleto/storefront-backend/pkg/logger"
	"github.com/indianleto/storefront-backend/pkg/metrics"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/singleflight"
)

const (
	DefaultBase         = "INR"
	DefaultTTL          = 10 * time.Minute
	DefaultFetchTimeout = 5 * time.Second
)

// Source fetches live rates relative to a base currency.
type Source interface {
	Name() string
	Fetch(ctx context.Context, base string) (map[string]decimal.Decimal, error)
}

// Params groups the collaborators of NewService. Cache is required.
type Params struct {
	Sources      []Source
	Cache        Cache
	DefaultBase  string
	TTL          time.Duration
	FetchTimeout time.Duration
	Logger       *logger.Logger
	Metrics      *metrics.RatesMetrics
	Now          func() time.Time
}

// Service serves exchange-rate tables from the cache, live sources or the static fallback.
type Service struct {
	sources      []Source
	cache        Cache
	base         string
	ttl          time.Duration
	fetchTimeout time.Duration
	logg         *logger.Logger
	metrics      *metrics.RatesMetrics
	now          func() time.Time
	group        singleflight.Group
}

// Conversion is the result of converting an amount between currencies.
type Conversion struct {
	Amount decimal.Decimal `json:"amount"`
	From   string          `json:"from"`
	To     string          `json:"to"`
	Rate   decimal.Decimal `json:"rate"`
	Result decimal.Decimal `json:"result"`
	Source string          `json:"source"`
}

func NewService(p Params) (*Service, error) {
	if p.Cache == nil {
		return nil, fmt.Errorf("rates cache required")
	}
	s := &Service{
		cache:        p.Cache,
		base:         normalize(p.DefaultBase),
		ttl:          p.TTL,
		fetchTimeout: p.FetchTimeout,
		logg:         p.Logger,
		metrics:      p.Metrics,
		now:          p.Now,
	}
	for _, src := range p.Sources {
		if src != nil {
			s.sources = append(s.sources, src)
		}
	}
	if s.base == "" {
		s.base = DefaultBase
	}
	if s.ttl <= 0 {
		s.ttl = DefaultTTL
	}
	if s.fetchTimeout <= 0 {
		s.fetchTimeout = DefaultFetchTimeout
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s, nil
}

// Rates returns the rate table for base. Concurrent misses for the same base
// share a single upstream fetch.
func (s *Service) Rates(ctx context.Context, base string) (Table, error) {
	base = normalize(base)
	if base == "" {
		base = s.base
	}

	if table, ok := s.cache.Get(ctx, base); ok {
		s.metrics.IncFetch("cache", "hit")
		return table, nil
	}

	ch := s.group.DoChan(base, func() (any, error) {
		return s.load(context.WithoutCancel(ctx), base)
	})
	select {
	case <-ctx.Done():
		return Table{}, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return Table{}, res.Err
		}
		return res.Val.(Table), nil
	}
}

func (s *Service) load(ctx context.Context, base string) (Table, error) {
	ctx = s.logg.WithField(ctx, "base", base)

	for _, src := range s.sources {
		rates, err := s.fetch(ctx, src, base)
		if err != nil {
			s.metrics.IncFetch(src.Name(), "error")
			s.logg.Warn(s.logg.WithFields(ctx, map[string]any{
				"source":     src.Name(),
				"error":      err.Error(),
				"error_code": pkgerrors.CodeOf(err),
			}), "rates.source_failed")
			continue
		}
		s.metrics.IncFetch(src.Name(), "ok")

		table := Table{Base: base, Rates: rates, Source: src.Name(), FetchedAt: s.now().UTC()}
		if err := s.cache.Set(ctx, table, s.ttl); err != nil {
			s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "rates.cache_write_failed")
		}
		return table, nil
	}

	table, ok := staticTable(base, s.now().UTC())
	if !ok {
		s.metrics.IncFetch(SourceStatic, "error")
		return Table{}, pkgerrors.Newf(pkgerrors.CodeValidation, "Unsupported currency: %s", base)
	}
	s.metrics.IncFetch(SourceStatic, "ok")
	s.logg.Warn(ctx, "rates.static_fallback")
	return table, nil
}

func (s *Service) fetch(ctx context.Context, src Source, base string) (map[string]decimal.Decimal, error) {
	ctx, cancel := context.WithTimeout(ctx, s.fetchTimeout)
	defer cancel()
	return src.Fetch(ctx, base)
}

// Convert converts amount from one currency to another. An empty from uses the
// default base.
func (s *Service) Convert(ctx context.Context, amount decimal.Decimal, from, to string) (Conversion, error) {
	from = normalize(from)
	if from == "" {
		from = s.base
	}
	to = normalize(to)
	if to == "" {
		return Conversion{}, pkgerrors.New(pkgerrors.CodeValidation, "Target currency is required")
	}

	table, err := s.Rates(ctx, from)
	if err != nil {
		return Conversion{}, err
	}
	rate, ok := table.Rate(to)
	if !ok {
		return Conversion{}, pkgerrors.Newf(pkgerrors.CodeValidation, "Unsupported currency: %s", to)
	}
	return Conversion{
		Amount: amount,
		From:   from,
		To:     to,
		Rate:   rate,
		Result: amount.Mul(rate).Round(2),
		Source: table.Source,
	}, nil
}
