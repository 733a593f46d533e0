package observability

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/hrygo/helpgpt/plugin/meeting"
)

// Chat routes recorded by ChatRequestsTotal.
const (
	RouteMeeting  = "meeting"
	RouteUtility  = "utility"
	RouteRelay    = "relay"
	RouteRejected = "rejected"
)

// Provider call outcomes recorded by ProviderCallsTotal.
const (
	StatusOK            = "ok"
	StatusNotFound      = "not_found"
	StatusAuthError     = "auth_error"
	StatusUpstreamError = "upstream_error"
	StatusStoreError    = "store_error"
	StatusPartial       = "partial"
	StatusError         = "error"
)

// Metrics holds the Prometheus metrics of the chat server.
type Metrics struct {
	ProviderCallsTotal  *prometheus.CounterVec
	ProviderCallSeconds *prometheus.HistogramVec
	ChatRequestsTotal   *prometheus.CounterVec
}

// NewMetrics creates the metric set and registers it with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		ProviderCallsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "helpgpt_provider_calls_total",
				Help: "Meeting provider calls by outcome",
			},
			[]string{"provider", "op", "status"},
		),
		ProviderCallSeconds: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "helpgpt_provider_call_seconds",
				Help:    "Meeting provider call latency",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 20},
			},
			[]string{"provider", "op"},
		),
		ChatRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "helpgpt_chat_requests_total",
				Help: "Chat turns by the route that answered them",
			},
			[]string{"route"},
		),
	}
}

// RecordProviderCall records one provider call.
func (m *Metrics) RecordProviderCall(provider, op string, err error, d time.Duration) {
	m.ProviderCallsTotal.WithLabelValues(provider, op, CallStatus(err)).Inc()
	m.ProviderCallSeconds.WithLabelValues(provider, op).Observe(d.Seconds())
}

// RecordChat records one chat turn.
func (m *Metrics) RecordChat(route string) {
	m.ChatRequestsTotal.WithLabelValues(route).Inc()
}

// CallStatus classifies a provider error into a metric label.
func CallStatus(err error) string {
	var (
		notFound *meeting.NotFoundError
		auth     *meeting.AuthError
		partial  *meeting.PartialSuccessError
		upstream *meeting.UpstreamError
		storeErr *meeting.StoreError
	)
	switch {
	case err == nil:
		return StatusOK
	case errors.As(err, &notFound):
		return StatusNotFound
	case errors.As(err, &auth):
		return StatusAuthError
	case errors.As(err, &partial):
		return StatusPartial
	case errors.As(err, &upstream):
		return StatusUpstreamError
	case errors.As(err, &storeErr):
		return StatusStoreError
	}
	return StatusError
}
