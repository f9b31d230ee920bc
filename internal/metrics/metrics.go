package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Checkout records checkout outcomes. result is "ok" or an error code.
type Checkout struct {
	total    *prometheus.CounterVec
	duration prometheus.Histogram
}

func NewCheckout(reg prometheus.Registerer) *Checkout {
	c := &Checkout{
		total: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "storefront",
			Name:      "checkouts_total",
			Help:      "Checkout attempts by result.",
		}, []string{"result"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "storefront",
			Name:      "checkout_duration_seconds",
			Help:      "Checkout latency including validation and the order transaction.",
			Buckets:   prometheus.DefBuckets,
		}),
	}
	reg.MustRegister(c.total, c.duration)
	return c
}

func (c *Checkout) Observe(result string, elapsed time.Duration) {
	if c == nil {
		return
	}
	c.total.WithLabelValues(result).Inc()
	c.duration.Observe(elapsed.Seconds())
}
