package quotation

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/indianleto/storefront-backend/internal/cart"
	"github.com/indianleto/storefront-backend/internal/catalog"
	pkgerrors "github.com/indianleto/storefront-backend/pkg/errors"
	"github.com/indianleto/storefront-backend/pkg/logger"
	"github.com/indianleto/storefront-backend/pkg/metrics"
	"github.com/indianleto/storefront-backend/pkg/types"
	"github.com/indianleto/storefront-backend/pkg/validation"
)

// DefaultSinkTimeout bounds each sink append when the policy sets none.
const DefaultSinkTimeout = 5 * time.Second

const (
	maxIDAttempts = 3

	msgValidation   = "Validation error"
	msgNotFound     = "Quotation not found"
	msgSubmitFailed = "Failed to process quotation"
	msgFetchFailed  = "Failed to fetch quotation"
)

// Service accepts quotation requests and serves stored quotations.
type Service interface {
	Submit(ctx context.Context, req Request) (SubmitResult, error)
	Get(ctx context.Context, quoteID string) (*Quotation, error)
	List(ctx context.Context) ([]Quotation, error)
}

// Policy holds the submission rules that vary per deployment.
type Policy struct {
	IDPrefix            string
	AllowEmptyCart      bool
	RequireSizeMinimums bool
	SinkTimeout         time.Duration
	Currency            string
}

// ServiceParams groups the collaborators of NewService. Repository is required.
type ServiceParams struct {
	Repository Repository
	Catalog    ProductLookup
	Sinks      []Sink
	Policy     Policy
	Logger     *logger.Logger
	Metrics    *metrics.QuoteMetrics
	Now        func() time.Time
}

type service struct {
	repo      Repository
	catalog   ProductLookup
	fanout    *fanout
	policy    Policy
	assembler Assembler
	logg      *logger.Logger
	metrics   *metrics.QuoteMetrics
	now       func() time.Time
}

func NewService(params ServiceParams) (Service, error) {
	if params.Repository == nil {
		return nil, fmt.Errorf("quotation repository required")
	}
	policy := params.Policy
	if policy.IDPrefix == "" {
		policy.IDPrefix = DefaultIDPrefix
	}
	if policy.SinkTimeout <= 0 {
		policy.SinkTimeout = DefaultSinkTimeout
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &service{
		repo:      params.Repository,
		catalog:   params.Catalog,
		fanout:    newFanout(params.Sinks, policy.SinkTimeout, params.Logger, params.Metrics),
		policy:    policy,
		assembler: NewAssembler(policy.Currency),
		logg:      params.Logger,
		metrics:   params.Metrics,
		now:       now,
	}, nil
}

func (s *service) Submit(ctx context.Context, req Request) (SubmitResult, error) {
	items, fieldErrs := s.validate(req)
	if len(fieldErrs) > 0 {
		s.metrics.IncSubmission(metrics.OutcomeRejected)
		return SubmitResult{}, pkgerrors.New(pkgerrors.CodeValidation, msgValidation).WithDetails(fieldErrs)
	}

	q := Quotation{
		Customer: Customer{
			Name:  strings.TrimSpace(req.Customer.Name),
			Phone: strings.TrimSpace(req.Customer.Phone),
			Email: strings.TrimSpace(req.Customer.Email),
		},
		Cart:        items,
		Notes:       req.Notes,
		TotalAmount: cart.Total(items),
	}

	if err := s.persist(ctx, &q); err != nil {
		s.metrics.IncSubmission(metrics.OutcomeFailed)
		s.logg.Error(s.logg.WithQuoteID(ctx, q.QuoteID), "quotation.persist_failed", err)
		return SubmitResult{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, msgSubmitFailed).Public()
	}

	ctx = s.logg.WithQuoteID(ctx, q.QuoteID)
	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"customer_email": q.Customer.Email,
		"total_amount":   q.TotalAmount.StringFixed(2),
		"line_count":     len(q.Cart),
	}), "quotation.accepted")

	if err := s.fanout.deliver(ctx, s.row(q)); err != nil {
		s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "quotation.sinks_degraded")
	}

	s.metrics.IncSubmission(metrics.OutcomeAccepted)
	return SubmitResult{QuoteID: q.QuoteID}, nil
}

// persist assigns an id and stores the quotation, regenerating the id on collision.
func (s *service) persist(ctx context.Context, q *Quotation) error {
	var err error
	for attempt := 0; attempt < maxIDAttempts; attempt++ {
		now := s.now().UTC()
		q.QuoteID = NewQuoteID(s.policy.IDPrefix, now)
		q.CreatedAt = now
		err = s.repo.Create(ctx, *q)
		if !errors.Is(err, ErrDuplicateQuoteID) {
			return err
		}
	}
	return err
}

func (s *service) Get(ctx context.Context, quoteID string) (*Quotation, error) {
	quoteID = strings.TrimSpace(quoteID)
	if quoteID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, msgNotFound)
	}
	q, err := s.repo.Get(ctx, quoteID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, msgNotFound)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, msgFetchFailed).Public()
	}
	return q, nil
}

func (s *service) List(ctx context.Context) ([]Quotation, error) {
	quotes, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, msgFetchFailed).Public()
	}
	return quotes, nil
}

// validate checks the request and resolves it into cart lines.
func (s *service) validate(req Request) ([]cart.LineItem, []types.FieldError) {
	errs := validation.Struct(req)

	if len(req.Cart) == 0 && !s.policy.AllowEmptyCart {
		errs = append(errs, types.FieldError{Path: "cart", Message: "Cart must contain at least one item"})
	}

	items := make([]cart.LineItem, 0, len(req.Cart))
	for i, line := range req.Cart {
		path := "cart." + strconv.Itoa(i) + ".unitPrice"
		item := cart.LineItem{
			ProductID:    strings.TrimSpace(line.ProductID),
			ProductTitle: strings.TrimSpace(line.ProductTitle),
			ProductImage: line.ProductImage,
			Variant:      cart.Variant{Size: strings.TrimSpace(line.Variant.Size), Color: line.Variant.Color},
			Quantity:     line.Quantity,
		}
		switch {
		case line.UnitPrice != nil:
			if line.UnitPrice.IsNegative() {
				errs = append(errs, types.FieldError{Path: path, Message: "Unit price must be 0 or more"})
			}
			item.UnitPrice = *line.UnitPrice
		default:
			product, ok := s.lookup(item.ProductID)
			if !ok {
				errs = append(errs, types.FieldError{Path: path, Message: "Unit price is required"})
				break
			}
			item.UnitPrice = product.PriceFor(item.Quantity)
			if item.ProductImage == "" {
				item.ProductImage = product.PrimaryImage()
			}
		}
		items = append(items, item)
	}

	if len(errs) == 0 && len(items) > 0 && s.policy.RequireSizeMinimums && !HasEligibleLine(items, s.catalog) {
		errs = append(errs, types.FieldError{Path: "cart", Message: "At least one item must meet its size minimum order"})
	}

	if len(errs) > 0 {
		return nil, errs
	}
	return items, nil
}

func (s *service) lookup(id string) (*catalog.Product, bool) {
	if s.catalog == nil || id == "" {
		return nil, false
	}
	p, ok := s.catalog.Lookup(id)
	if !ok || p == nil {
		return nil, false
	}
	return p, true
}

func (s *service) row(q Quotation) types.QuotationRow {
	return types.QuotationRow{
		QuoteID:       q.QuoteID,
		CustomerName:  q.Customer.Name,
		CustomerPhone: q.Customer.Phone,
		CustomerEmail: q.Customer.Email,
		Products:      s.assembler.SheetSummary(q.Cart),
		TotalAmount:   q.TotalAmount,
		Notes:         q.Notes,
		CreatedAt:     q.CreatedAt,
	}
}
