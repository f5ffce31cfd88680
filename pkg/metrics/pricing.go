package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// PricingMetrics counts fee resolutions by the tier that won.
type PricingMetrics struct {
	resolutions *prometheus.CounterVec
	failures    prometheus.Counter
}

// NewPricingMetrics registers the pricing metrics on the provided registerer.
func NewPricingMetrics(reg prometheus.Registerer) *PricingMetrics {
	if reg == nil {
		return &PricingMetrics{}
	}
	resolutions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "pricing_resolutions_total",
		Help: "Fee resolutions by winning tier.",
	}, []string{"tier"})
	failures := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "pricing_resolution_failures_total",
		Help: "Fee resolutions that returned an error.",
	})
	reg.MustRegister(resolutions, failures)
	return &PricingMetrics{
		resolutions: resolutions,
		failures:    failures,
	}
}

// IncResolved increments the resolution counter for the winning tier.
func (p *PricingMetrics) IncResolved(tier string) {
	if p == nil || p.resolutions == nil {
		return
	}
	if tier == "" {
		tier = "unknown"
	}
	p.resolutions.WithLabelValues(tier).Inc()
}

// IncFailure increments the failed-resolution counter.
func (p *PricingMetrics) IncFailure() {
	if p == nil || p.failures == nil {
		return
	}
	p.failures.Inc()
}
