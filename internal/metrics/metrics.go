// internal/metrics/metrics.go

// Package metrics exposes Prometheus collectors for the passport workflows.
// A nil *Metrics, or one built from a nil registerer, records nothing.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

type Metrics struct {
	transfers     *prometheus.CounterVec
	verifications *prometheus.CounterVec
	activations   prometheus.Counter
	requests      *prometheus.CounterVec
	latency       *prometheus.HistogramVec
}

// New registers the collectors on reg.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		return &Metrics{}
	}
	transfers := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "dpp",
		Name:      "transfer_operations_total",
		Help:      "Transfer workflow operations by operation and outcome.",
	}, []string{"operation", "outcome"})
	verifications := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "dpp",
		Name:      "certificate_verifications_total",
		Help:      "Certificate verifications by result.",
	}, []string{"result"})
	activations := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "dpp",
		Name:      "ownership_activations_total",
		Help:      "Successful ownership activations.",
	})
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "dpp",
		Name:      "http_requests_total",
		Help:      "HTTP requests by route, method and status.",
	}, []string{"route", "method", "status"})
	latency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "dpp",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency in seconds.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"route", "method"})
	reg.MustRegister(transfers, verifications, activations, requests, latency)
	return &Metrics{
		transfers:     transfers,
		verifications: verifications,
		activations:   activations,
		requests:      requests,
		latency:       latency,
	}
}

// TransferOutcome counts one transfer operation; outcome is "ok" or an error kind.
func (m *Metrics) TransferOutcome(operation, outcome string) {
	if m == nil || m.transfers == nil {
		return
	}
	m.transfers.WithLabelValues(normalizeLabel(operation), normalizeLabel(outcome)).Inc()
}

func (m *Metrics) Verification(valid bool) {
	if m == nil || m.verifications == nil {
		return
	}
	result := "invalid"
	if valid {
		result = "valid"
	}
	m.verifications.WithLabelValues(result).Inc()
}

func (m *Metrics) Activation() {
	if m == nil || m.activations == nil {
		return
	}
	m.activations.Inc()
}

// ObserveRequest records one served HTTP request.
func (m *Metrics) ObserveRequest(route, method string, status int, duration time.Duration) {
	if m == nil || m.requests == nil {
		return
	}
	route = normalizeLabel(route)
	m.requests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	m.latency.WithLabelValues(route, method).Observe(duration.Seconds())
}

func normalizeLabel(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
