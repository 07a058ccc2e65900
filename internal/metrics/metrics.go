// Package metrics defines the Prometheus collectors exported by the server.
package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "splitcheck"

// Metrics holds every collector. A nil *Metrics records nothing.
type Metrics struct {
	registry *prometheus.Registry

	HTTPRequests        *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	SessionsCreated     prometheus.Counter
	SessionsDeleted     prometheus.Counter
	FriendsJoined       *prometheus.CounterVec
	PaymentUpdates      *prometheus.CounterVec
}

// New creates the collectors on a fresh registry, with Go runtime and
// process collectors included.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route template and status code.",
		}, []string{"method", "route", "code"}),
		HTTPRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by method and route template.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		SessionsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_created_total",
			Help:      "Bill sessions created.",
		}),
		SessionsDeleted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_deleted_total",
			Help:      "Bill sessions deleted.",
		}),
		FriendsJoined: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "friends_joined_total",
			Help:      "Friends that joined a session, by payment method.",
		}, []string{"payment_method"}),
		PaymentUpdates: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "payment_updates_total",
			Help:      "Payment status updates, by target state.",
		}, []string{"has_paid"}),
	}

	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.HTTPRequests,
		m.HTTPRequestDuration,
		m.SessionsCreated,
		m.SessionsDeleted,
		m.FriendsJoined,
		m.PaymentUpdates,
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) SessionCreated() {
	if m == nil {
		return
	}
	m.SessionsCreated.Inc()
}

func (m *Metrics) SessionDeleted() {
	if m == nil {
		return
	}
	m.SessionsDeleted.Inc()
}

func (m *Metrics) FriendJoined(paymentMethod string) {
	if m == nil {
		return
	}
	m.FriendsJoined.WithLabelValues(paymentMethod).Inc()
}

func (m *Metrics) PaymentUpdated(hasPaid bool) {
	if m == nil {
		return
	}
	m.PaymentUpdates.WithLabelValues(strconv.FormatBool(hasPaid)).Inc()
}

// ObserveRequest records one finished HTTP request.
func (m *Metrics) ObserveRequest(method, route string, code int, seconds float64) {
	if m == nil {
		return
	}
	m.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(code)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, route).Observe(seconds)
}
