package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics bundles the prometheus instruments the storefront emits. It is
// assembled once in main and injected; nothing instantiates instruments
// inside request paths.
type Metrics struct {
	HTTPRequests    *prometheus.CounterVec
	HTTPDuration    *prometheus.HistogramVec
	Checkouts       *prometheus.CounterVec
	Verifications   *prometheus.CounterVec
	OrdersPaid      prometheus.Counter
	GatewayRequests *prometheus.CounterVec
	GatewayDuration *prometheus.HistogramVec
	FulfillmentJobs prometheus.Counter
}

func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		}, []string{"method", "route", "status"}),
		HTTPDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		Checkouts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "checkout_requests_total",
			Help: "Checkout order creations by outcome.",
		}, []string{"outcome"}),
		Verifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "payment_verifications_total",
			Help: "Payment verification attempts by outcome.",
		}, []string{"outcome"}),
		OrdersPaid: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "orders_paid_total",
			Help: "Orders that reached the paid state.",
		}),
		GatewayRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gateway_requests_total",
			Help: "Payment gateway order creations by outcome.",
		}, []string{"outcome"}),
		GatewayDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "gateway_request_duration_seconds",
			Help:    "Payment gateway call latency in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"outcome"}),
		FulfillmentJobs: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "fulfillment_jobs_total",
			Help: "Paid orders handed to the fulfillment worker.",
		}),
	}

	if reg != nil {
		reg.MustRegister(
			m.HTTPRequests,
			m.HTTPDuration,
			m.Checkouts,
			m.Verifications,
			m.OrdersPaid,
			m.GatewayRequests,
			m.GatewayDuration,
			m.FulfillmentJobs,
		)
	}
	return m
}

// NewNop returns an unregistered bundle, handy in tests.
func NewNop() *Metrics {
	return New(nil)
}
