package metrics

import "github.com/prometheus/client_golang/prometheus"

// RatesMetrics counts exchange-rate lookups per source.
type RatesMetrics struct {
	fetches *prometheus.CounterVec
}

func NewRatesMetrics(reg prometheus.Registerer) *RatesMetrics {
	if reg == nil {
		return &RatesMetrics{}
	}
	fetches := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "exchange_rate_fetch_total",
		Help: "Exchange-rate lookups by source and result.",
	}, []string{"source", "result"})
	reg.MustRegister(fetches)
	return &RatesMetrics{fetches: fetches}
}

// IncFetch counts a lookup; result is "ok", "error" or "cache".
func (r *RatesMetrics) IncFetch(source, result string) {
	if r == nil || r.fetches == nil {
		return
	}
	r.fetches.WithLabelValues(normalizeLabel(source), normalizeLabel(result)).Inc()
}
