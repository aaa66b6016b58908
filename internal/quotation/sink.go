package quotation

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/indianleto/storefront-backend/pkg/logger"
	"github.com/indianleto/storefront-backend/pkg/metrics"
	"github.com/indianleto/storefront-backend/pkg/types"
	"go.uber.org/multierr"
)

// Sink is a best-effort row store that receives every accepted quotation.
type Sink interface {
	Name() string
	EnsureHeaders(ctx context.Context) error
	AppendRow(ctx context.Context, row types.QuotationRow) error
}

// headerGuard runs EnsureHeaders until it succeeds once.
type headerGuard struct {
	mu    sync.Mutex
	ready bool
}

func (g *headerGuard) ensure(ctx context.Context, sink Sink) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.ready {
		return nil
	}
	if err := sink.EnsureHeaders(ctx); err != nil {
		return err
	}
	g.ready = true
	return nil
}

type boundSink struct {
	sink    Sink
	headers *headerGuard
}

// fanout delivers a row to every sink concurrently, each bounded by timeout.
type fanout struct {
	sinks   []boundSink
	timeout time.Duration
	logg    *logger.Logger
	metrics *metrics.QuoteMetrics
}

func newFanout(sinks []Sink, timeout time.Duration, logg *logger.Logger, m *metrics.QuoteMetrics) *fanout {
	bound := make([]boundSink, 0, len(sinks))
	for _, s := range sinks {
		if s == nil {
			continue
		}
		bound = append(bound, boundSink{sink: s, headers: &headerGuard{}})
	}
	return &fanout{sinks: bound, timeout: timeout, logg: logg, metrics: m}
}

// deliver returns the combined sink errors; callers only log them. Sinks keep
// running when the request context is cancelled.
func (f *fanout) deliver(ctx context.Context, row types.QuotationRow) error {
	if len(f.sinks) == 0 {
		return nil
	}
	base := context.WithoutCancel(ctx)

	var (
		wg  sync.WaitGroup
		mu  sync.Mutex
		err error
	)
	for _, b := range f.sinks {
		wg.Add(1)
		go func(b boundSink) {
			defer wg.Done()
			sinkErr := f.deliverOne(base, b, row)
			if sinkErr != nil {
				mu.Lock()
				err = multierr.Append(err, fmt.Errorf("%s: %w", b.sink.Name(), sinkErr))
				mu.Unlock()
			}
		}(b)
	}
	wg.Wait()
	return err
}

func (f *fanout) deliverOne(ctx context.Context, b boundSink, row types.QuotationRow) (err error) {
	start := time.Now()
	ctx = f.logg.WithSink(ctx, b.sink.Name())

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("sink panic: %v", r)
		}
		f.metrics.ObserveSink(b.sink.Name(), time.Since(start), err)
		if err != nil {
			f.logg.Error(ctx, "quotation.sink_failed", err)
			return
		}
		f.logg.Info(ctx, "quotation.sink_delivered")
	}()

	if f.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}

	if err = b.headers.ensure(ctx, b.sink); err != nil {
		// headers are retried on the next quotation; the row is still attempted
		f.logg.Warn(f.logg.WithField(ctx, "error", err.Error()), "quotation.sink_headers_failed")
	}
	return b.sink.AppendRow(ctx, row)
}

// LogSink records quotations in the log when no external store is configured.
type LogSink struct {
	logg *logger.Logger
}

func NewLogSink(logg *logger.Logger) *LogSink {
	return &LogSink{logg: logg}
}

func (l *LogSink) Name() string {
	return "log"
}

func (l *LogSink) EnsureHeaders(context.Context) error {
	return nil
}

func (l *LogSink) AppendRow(ctx context.Context, row types.QuotationRow) error {
	ctx = l.logg.WithFields(ctx, map[string]any{
		"customer_email": row.CustomerEmail,
		"total_amount":   row.TotalAmount.StringFixed(2),
	})
	l.logg.Info(ctx, "quotation saved to memory (no external sheet configured)")
	return nil
}
