package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Submission outcomes.
const (
	OutcomeAccepted = "accepted"
	OutcomeRejected = "rejected"
	OutcomeFailed   = "failed"
)

// QuoteMetrics records quotation submissions and sink deliveries.
type QuoteMetrics struct {
	submissions  *prometheus.CounterVec
	sinkDuration *prometheus.HistogramVec
	sinkSuccess  *prometheus.CounterVec
	sinkFailure  *prometheus.CounterVec
}

// NewQuoteMetrics registers the quotation metrics on the provided registerer.
func NewQuoteMetrics(reg prometheus.Registerer) *QuoteMetrics {
	if reg == nil {
		return &QuoteMetrics{}
	}
	submissions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "quote_submissions_total",
		Help: "Quotation submissions by outcome.",
	}, []string{"outcome"})
	sinkDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "quote_sink_duration_seconds",
		Help:    "Duration of quotation sink appends in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"sink"})
	sinkSuccess := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "quote_sink_success",
		Help: "Successful quotation sink appends.",
	}, []string{"sink"})
	sinkFailure := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "quote_sink_failure",
		Help: "Failed quotation sink appends.",
	}, []string{"sink"})
	reg.MustRegister(submissions, sinkDuration, sinkSuccess, sinkFailure)
	return &QuoteMetrics{
		submissions:  submissions,
		sinkDuration: sinkDuration,
		sinkSuccess:  sinkSuccess,
		sinkFailure:  sinkFailure,
	}
}

// IncSubmission counts a submission under the given outcome.
func (q *QuoteMetrics) IncSubmission(outcome string) {
	if q == nil || q.submissions == nil {
		return
	}
	q.submissions.WithLabelValues(normalizeLabel(outcome)).Inc()
}

// ObserveSink records one sink append attempt.
func (q *QuoteMetrics) ObserveSink(sink string, duration time.Duration, err error) {
	if q == nil || q.sinkDuration == nil {
		return
	}
	label := normalizeLabel(sink)
	q.sinkDuration.WithLabelValues(label).Observe(duration.Seconds())
	if err != nil {
		q.sinkFailure.WithLabelValues(label).Inc()
		return
	}
	q.sinkSuccess.WithLabelValues(label).Inc()
}

func normalizeLabel(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
