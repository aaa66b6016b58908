package quotation

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/indianleto/storefront-backend/internal/catalog"
	pkgerrors "github.com/indianleto/storefront-backend/pkg/errors"
	"github.com/indianleto/storefront-backend/pkg/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

type stubSink struct {
	mu          sync.Mutex
	name        string
	headerErrs  []error
	headerCalls int
	appendErr   error
	rows        []types.QuotationRow
}

func (s *stubSink) Name() string { return s.name }

func (s *stubSink) EnsureHeaders(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.headerCalls++
	if len(s.headerErrs) > 0 {
		err := s.headerErrs[0]
		s.headerErrs = s.headerErrs[1:]
		return err
	}
	return nil
}

func (s *stubSink) AppendRow(_ context.Context, row types.QuotationRow) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.appendErr != nil {
		return s.appendErr
	}
	s.rows = append(s.rows, row)
	return nil
}

type dupRepository struct {
	*MemoryRepository
	remaining int
	attempts  int
}

func (d *dupRepository) Create(ctx context.Context, q Quotation) error {
	d.attempts++
	if d.remaining > 0 {
		d.remaining--
		return ErrDuplicateQuoteID
	}
	return d.MemoryRepository.Create(ctx, q)
}

type failingRepository struct{ MemoryRepository }

func (f *failingRepository) Create(context.Context, Quotation) error {
	return errors.New("disk full")
}

func price(v int64) *decimal.Decimal {
	d := decimal.NewFromInt(v)
	return &d
}

func validRequest() Request {
	return Request{
		Customer: Customer{Name: "A", Phone: "9876543210", Email: "a@b.com"},
		Cart: []LineInput{{
			ProductID:    "P1",
			ProductTitle: "Floral Wrap Midi Dress",
			Variant:      VariantInput{Size: "M", Color: "Red"},
			Quantity:     50,
			UnitPrice:    price(1100),
		}},
	}
}

func newTestService(t *testing.T, repo Repository, policy Policy, sinks ...Sink) Service {
	t.Helper()
	cat, err := catalog.Load()
	require.NoError(t, err)
	svc, err := NewService(ServiceParams{
		Repository: repo,
		Catalog:    cat,
		Sinks:      sinks,
		Policy:     policy,
		Now:        func() time.Time { return time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC) },
	})
	require.NoError(t, err)
	return svc
}

func fieldErrors(t *testing.T, err error) []types.FieldError {
	t.Helper()
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	require.Equal(t, pkgerrors.CodeValidation, typed.Code())
	details, ok := typed.Details().([]types.FieldError)
	require.True(t, ok)
	return details
}

func hasPath(errs []types.FieldError, path string) bool {
	for _, fe := range errs {
		if fe.Path == path {
			return true
		}
	}
	return false
}

func TestNewServiceRequiresRepository(t *testing.T) {
	t.Parallel()
	if _, err := NewService(ServiceParams{}); err == nil {
		t.Fatal("expected error without repository")
	}
}

func TestSubmitPersistsQuotation(t *testing.T) {
	t.Parallel()
	repo := NewMemoryRepository()
	sink := &stubSink{name: "sheets"}
	svc := newTestService(t, repo, Policy{}, sink)

	res, err := svc.Submit(context.Background(), validRequest())
	require.NoError(t, err)
	require.NotEmpty(t, res.QuoteID)
	require.Regexp(t, `^IL-[0-9A-Z]+-[0-9A-F]{6}$`, res.QuoteID)

	q, err := svc.Get(context.Background(), res.QuoteID)
	require.NoError(t, err)
	require.True(t, q.TotalAmount.Equal(decimal.NewFromInt(55000)), "total %s", q.TotalAmount)
	require.False(t, q.CreatedAt.IsZero())
	require.Equal(t, time.UTC, q.CreatedAt.Location())

	require.Len(t, sink.rows, 1)
	require.Equal(t, res.QuoteID, sink.rows[0].QuoteID)
	require.Equal(t, "Floral Wrap Midi Dress (M/Red) x50 @INR1100.00", sink.rows[0].Products)
}

func TestSubmitRejectsShortPhone(t *testing.T) {
	t.Parallel()
	repo := NewMemoryRepository()
	svc := newTestService(t, repo, Policy{})

	req := validRequest()
	req.Customer.Phone = "123"
	_, err := svc.Submit(context.Background(), req)
	require.Error(t, err)
	require.True(t, hasPath(fieldErrors(t, err), "customer.phone"))

	quotes, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Empty(t, quotes)
}

func TestSubmitValidationPaths(t *testing.T) {
	t.Parallel()
	svc := newTestService(t, NewMemoryRepository(), Policy{})

	req := validRequest()
	req.Customer.Name = "   "
	req.Customer.Email = "not-an-email"
	req.Cart[0].Quantity = 0
	req.Cart[0].UnitPrice = price(-1)

	_, err := svc.Submit(context.Background(), req)
	errs := fieldErrors(t, err)
	for _, path := range []string{"customer.name", "customer.email", "cart.0.quantity", "cart.0.unitPrice"} {
		require.True(t, hasPath(errs, path), "missing %s in %+v", path, errs)
	}
}

func TestSubmitEmptyCartPolicy(t *testing.T) {
	t.Parallel()
	req := validRequest()
	req.Cart = nil

	strict := newTestService(t, NewMemoryRepository(), Policy{})
	_, err := strict.Submit(context.Background(), req)
	require.True(t, hasPath(fieldErrors(t, err), "cart"))

	lenient := newTestService(t, NewMemoryRepository(), Policy{AllowEmptyCart: true})
	res, err := lenient.Submit(context.Background(), req)
	require.NoError(t, err)
	q, err := lenient.Get(context.Background(), res.QuoteID)
	require.NoError(t, err)
	require.True(t, q.TotalAmount.IsZero())
}

func TestSubmitSizeMinimumPolicy(t *testing.T) {
	t.Parallel()
	req := validRequest()
	req.Cart[0].Quantity = 5

	loose := newTestService(t, NewMemoryRepository(), Policy{})
	_, err := loose.Submit(context.Background(), req)
	require.NoError(t, err)

	strict := newTestService(t, NewMemoryRepository(), Policy{RequireSizeMinimums: true})
	_, err = strict.Submit(context.Background(), req)
	require.True(t, hasPath(fieldErrors(t, err), "cart"))

	req.Cart[0].Quantity = 10
	_, err = strict.Submit(context.Background(), req)
	require.NoError(t, err)
}

func TestSubmitResolvesMissingUnitPrice(t *testing.T) {
	t.Parallel()
	svc := newTestService(t, NewMemoryRepository(), Policy{})

	req := validRequest()
	req.Cart[0].UnitPrice = nil
	req.Cart[0].Quantity = 120
	res, err := svc.Submit(context.Background(), req)
	require.NoError(t, err)

	q, err := svc.Get(context.Background(), res.QuoteID)
	require.NoError(t, err)
	require.True(t, q.Cart[0].UnitPrice.Equal(decimal.NewFromInt(1000)))
	require.True(t, q.TotalAmount.Equal(decimal.NewFromInt(120000)))

	req.Cart[0].ProductID = "unknown"
	_, err = svc.Submit(context.Background(), req)
	require.True(t, hasPath(fieldErrors(t, err), "cart.0.unitPrice"))
}

func TestSubmitSwallowsSinkFailures(t *testing.T) {
	t.Parallel()
	repo := NewMemoryRepository()
	broken := &stubSink{name: "sheets", appendErr: errors.New("quota exceeded")}
	healthy := &stubSink{name: "xlsx"}
	svc := newTestService(t, repo, Policy{}, broken, healthy)

	res, err := svc.Submit(context.Background(), validRequest())
	require.NoError(t, err)
	_, err = repo.Get(context.Background(), res.QuoteID)
	require.NoError(t, err)
	require.Len(t, healthy.rows, 1)
}

func TestSinkHeadersRetriedUntilSuccess(t *testing.T) {
	t.Parallel()
	sink := &stubSink{name: "sheets", headerErrs: []error{errors.New("unavailable")}}
	svc := newTestService(t, NewMemoryRepository(), Policy{}, sink)

	for i := 0; i < 3; i++ {
		_, err := svc.Submit(context.Background(), validRequest())
		require.NoError(t, err)
	}
	require.Equal(t, 2, sink.headerCalls)
	require.Len(t, sink.rows, 3)
}

func TestSubmitRetriesDuplicateIDs(t *testing.T) {
	t.Parallel()
	repo := &dupRepository{MemoryRepository: NewMemoryRepository(), remaining: 2}
	svc := newTestService(t, repo, Policy{})

	_, err := svc.Submit(context.Background(), validRequest())
	require.NoError(t, err)
	require.Equal(t, 3, repo.attempts)

	repo.remaining = maxIDAttempts
	_, err = svc.Submit(context.Background(), validRequest())
	require.Error(t, err)
	require.Equal(t, pkgerrors.CodeInternal, pkgerrors.As(err).Code())
}

func TestSubmitRepositoryFailureIsInternal(t *testing.T) {
	t.Parallel()
	svc := newTestService(t, &failingRepository{}, Policy{})

	_, err := svc.Submit(context.Background(), validRequest())
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	require.Equal(t, pkgerrors.CodeInternal, typed.Code())
	require.Equal(t, "Failed to process quotation", typed.Message())
	require.True(t, typed.IsPublic())
}

func TestGetUnknownQuotation(t *testing.T) {
	t.Parallel()
	svc := newTestService(t, NewMemoryRepository(), Policy{})

	_, err := svc.Get(context.Background(), "IL-NOPE-000000")
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	require.Equal(t, pkgerrors.CodeNotFound, typed.Code())
	require.Equal(t, "Quotation not found", typed.Message())
}

func TestListNewestFirst(t *testing.T) {
	t.Parallel()
	repo := NewMemoryRepository()
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	for i, id := range []string{"IL-A", "IL-B", "IL-C"} {
		require.NoError(t, repo.Create(context.Background(), Quotation{QuoteID: id, CreatedAt: base.Add(time.Duration(i) * time.Minute)}))
	}
	svc := newTestService(t, repo, Policy{})

	quotes, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Equal(t, []string{"IL-C", "IL-B", "IL-A"}, []string{quotes[0].QuoteID, quotes[1].QuoteID, quotes[2].QuoteID})
}
