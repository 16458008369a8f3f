package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics — счётчики домена и HTTP. Методы безопасны на nil-получателе,
// чтобы тесты и CLI-команды могли работать без регистра.
type Metrics struct {
	assignments     *prometheus.CounterVec
	sessions        *prometheus.CounterVec
	rejected        *prometheus.CounterVec
	payouts         prometheus.Counter
	requestDuration *prometheus.HistogramVec
}

func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		assignments: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "spa",
			Name:      "assignments_created_total",
			Help:      "Assignments created, by kind (treatment|promotion).",
		}, []string{"kind"}),
		sessions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "spa",
			Name:      "sessions_recorded_total",
			Help:      "Sessions written, by operation (create|update).",
		}, []string{"op"}),
		rejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "spa",
			Name:      "operations_rejected_total",
			Help:      "Writes rejected by business rules, by reason.",
		}, []string{"reason"}),
		payouts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "spa",
			Name:      "commission_payouts_total",
			Help:      "Commission payouts registered.",
		}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "spa",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
	}
	reg.MustRegister(m.assignments, m.sessions, m.rejected, m.payouts, m.requestDuration)
	return m
}

func (m *Metrics) AssignmentCreated(promotion bool) {
	if m == nil {
		return
	}
	kind := "treatment"
	if promotion {
		kind = "promotion"
	}
	m.assignments.WithLabelValues(kind).Inc()
}

func (m *Metrics) SessionRecorded(op string) {
	if m == nil {
		return
	}
	m.sessions.WithLabelValues(op).Inc()
}

func (m *Metrics) Rejected(reason string) {
	if m == nil {
		return
	}
	m.rejected.WithLabelValues(reason).Inc()
}

func (m *Metrics) Payout() {
	if m == nil {
		return
	}
	m.payouts.Inc()
}

func (m *Metrics) ObserveRequest(method, route string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.requestDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(d.Seconds())
}
