package routes

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/indianleto/storefront-backend/api/controllers"
	"github.com/indianleto/storefront-backend/internal/catalog"
	"github.com/indianleto/storefront-backend/internal/quotation"
	"github.com/indianleto/storefront-backend/internal/rates"
	"github.com/indianleto/storefront-backend/pkg/config"
	"github.com/indianleto/storefront-backend/pkg/logger"
	"github.com/indianleto/storefront-backend/pkg/metrics"
)

type stubPinger struct{ err error }

func (s stubPinger) Ping(context.Context) error {
	return s.err
}

type stubRedis struct {
	mu     sync.Mutex
	values map[string]string
	hits   map[string]int64
}

func newStubRedis() *stubRedis {
	return &stubRedis{values: map[string]string{}, hits: map[string]int64{}}
}

func (s *stubRedis) Get(_ context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.values[key]
	if !ok {
		return "", redis.Nil
	}
	return v, nil
}

func (s *stubRedis) SetNX(_ context.Context, key string, value any, _ time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.values[key]; ok {
		return false, nil
	}
	switch v := value.(type) {
	case string:
		s.values[key] = v
	case []byte:
		s.values[key] = string(v)
	}
	return true, nil
}

func (s *stubRedis) IdempotencyKey(scope, id string) string {
	return "idempotency:" + scope + ":" + id
}

func (s *stubRedis) FixedWindowAllow(_ context.Context, scope string, limit int64, _ time.Duration) (bool, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hits[scope]++
	return s.hits[scope] <= limit, s.hits[scope], nil
}

func testConfig() *config.Config {
	return &config.Config{
		App:       config.AppConfig{Env: "test"},
		Quote:     config.QuoteConfig{IDPrefix: "IL", Currency: "INR", IdempotencyTTL: time.Hour},
		RateLimit: config.RateLimitConfig{QuoteWindow: time.Minute, QuoteIPLimit: 2, QuoteEmailLimit: 10},
		CORS:      config.CORSConfig{AllowedOrigins: []string{"https://indianleto.com"}},
	}
}

func newTestRouter(t *testing.T, redisStore *stubRedis) http.Handler {
	t.Helper()
	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})

	cat, err := catalog.Load()
	require.NoError(t, err)

	quotes, err := quotation.NewService(quotation.ServiceParams{
		Repository: quotation.NewMemoryRepository(),
		Catalog:    cat,
		Logger:     logg,
	})
	require.NoError(t, err)

	rateSvc, err := rates.NewService(rates.Params{Cache: rates.NewMemoryCache(), Logger: logg})
	require.NoError(t, err)

	deps := Dependencies{
		Quotes:  quotes,
		Catalog: cat,
		Rates:   rateSvc,
		Checks:  map[string]controllers.Pinger{"db": stubPinger{}},
		Metrics: metrics.Handler(metrics.NewRegistry()),
	}
	if redisStore != nil {
		deps.Redis = redisStore
	}
	return NewRouter(testConfig(), logg, deps)
}

const quoteBody = `{
  "customer": {"name": "A", "phone": "9876543210", "email": "a@b.com"},
  "cart": [{"productId": "P1", "productTitle": "Floral Wrap Midi Dress", "variant": {"size": "M", "color": "Red"}, "quantity": 50, "unitPrice": 1100}]
}`

func postQuote(h http.Handler, key string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/quote", strings.NewReader(quoteBody))
	req.Header.Set("Content-Type", "application/json")
	if key != "" {
		req.Header.Set("Idempotency-Key", key)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHealthRoutes(t *testing.T) {
	h := newTestRouter(t, nil)

	for _, path := range []string{"/health/live", "/health/ready"} {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		require.Equal(t, http.StatusOK, rec.Code, path)
		require.Equal(t, "test", rec.Header().Get("X-Storefront-Env"))
		require.NotEmpty(t, rec.Header().Get("X-Request-Id"))
	}
}

func TestQuoteRoundTripWithoutRedis(t *testing.T) {
	h := newTestRouter(t, nil)

	rec := postQuote(h, "retry-1")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var submitted struct {
		Success bool   `json:"success"`
		QuoteID string `json:"quoteId"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &submitted))
	require.True(t, submitted.Success)
	require.True(t, strings.HasPrefix(submitted.QuoteID, "IL-"))

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/quote/"+submitted.QuoteID, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"totalAmount":55000`)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/quotes", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), submitted.QuoteID)
}

func TestQuoteRejectsTrailingData(t *testing.T) {
	h := newTestRouter(t, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/quote", strings.NewReader(quoteBody+" garbage{"))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())

	var failed struct {
		Code string `json:"code"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &failed))
	require.Equal(t, "MALFORMED_REQUEST", failed.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/quotes", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var listed struct {
		Quotations []json.RawMessage `json:"quotations"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listed))
	require.Empty(t, listed.Quotations)
}

func TestQuoteIdempotentReplay(t *testing.T) {
	h := newTestRouter(t, newStubRedis())

	first := postQuote(h, "abc")
	require.Equal(t, http.StatusOK, first.Code, first.Body.String())

	second := postQuote(h, "abc")
	require.Equal(t, http.StatusOK, second.Code)
	require.Equal(t, "true", second.Header().Get("Idempotent-Replayed"))
	require.JSONEq(t, first.Body.String(), second.Body.String())
}

func TestQuoteRateLimitedPerIP(t *testing.T) {
	h := newTestRouter(t, newStubRedis())

	require.Equal(t, http.StatusOK, postQuote(h, "").Code)
	require.Equal(t, http.StatusOK, postQuote(h, "").Code)

	rec := postQuote(h, "")
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	require.Equal(t, "60", rec.Header().Get("Retry-After"))
}

func TestCatalogAndRatesRoutes(t *testing.T) {
	h := newTestRouter(t, nil)

	cases := []struct {
		path string
		want string
	}{
		{"/api/products", `"success":true`},
		{"/api/products/P1", `"id":"P1"`},
		{"/api/products/P1/price?quantity=120", `"unitPrice":1000`},
		{"/api/rates?base=INR", `"base":"INR"`},
	}
	for _, tc := range cases {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tc.path, nil))
		require.Equal(t, http.StatusOK, rec.Code, tc.path+": "+rec.Body.String())
		require.Contains(t, rec.Body.String(), tc.want, tc.path)
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/products/missing", nil))
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCartSummaryRoute(t *testing.T) {
	h := newTestRouter(t, nil)

	body := `{"cart": [{"productId": "P1", "productTitle": "Floral Wrap Midi Dress", "variant": {"size": "M", "color": "Red"}, "quantity": 2, "unitPrice": 1500}]}`
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/cart/summary", strings.NewReader(body)))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.Contains(t, rec.Body.String(), `"total":3000`)
}

func TestMetricsRoute(t *testing.T) {
	h := newTestRouter(t, nil)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "go_goroutines")
}
