package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics provides observability for registration.
// Tracks accepted registrants, rejected fields and storage insert latency.
type Metrics struct {
	RegistrationsCompleted prometheus.Counter
	ValidationFailures     *prometheus.CounterVec
	DuplicateEmails        prometheus.Counter
	SessionsStarted        prometheus.Counter
	InsertDuration         prometheus.Histogram
	RosterSize             prometheus.Gauge

	gatherer prometheus.Gatherer
}

// New creates a Metrics instance with every metric registered on reg
func New(reg *prometheus.Registry) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		RegistrationsCompleted: factory.NewCounter(prometheus.CounterOpts{
			Name: "registrar_registrations_total",
			Help: "Total number of registrants accepted",
		}),
		ValidationFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "registrar_validation_failures_total",
			Help: "Total number of rejected field values, by field",
		}, []string{"field"}),
		DuplicateEmails: factory.NewCounter(prometheus.CounterOpts{
			Name: "registrar_duplicate_emails_total",
			Help: "Total number of registrations rejected for an existing email",
		}),
		SessionsStarted: factory.NewCounter(prometheus.CounterOpts{
			Name: "registrar_sessions_started_total",
			Help: "Total number of registration sessions started",
		}),
		InsertDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "registrar_insert_duration_seconds",
			Help:    "Duration of registrant inserts into storage",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
		RosterSize: factory.NewGauge(prometheus.GaugeOpts{
			Name: "registrar_roster_size",
			Help: "Number of registrants currently stored",
		}),
		gatherer: reg,
	}
}

// NewNop returns Metrics registered on a throwaway registry
func NewNop() *Metrics {
	return New(prometheus.NewRegistry())
}

// IncrementRegistrations records an accepted registrant and the new roster size
func (m *Metrics) IncrementRegistrations(rosterSize int) {
	m.RegistrationsCompleted.Inc()
	m.RosterSize.Set(float64(rosterSize))
}

// IncrementValidationFailures records one rejection per field in fields
func (m *Metrics) IncrementValidationFailures(fields []string) {
	for _, f := range fields {
		m.ValidationFailures.WithLabelValues(f).Inc()
	}
}

func (m *Metrics) IncrementDuplicateEmails() {
	m.DuplicateEmails.Inc()
}

func (m *Metrics) IncrementSessionsStarted() {
	m.SessionsStarted.Inc()
}

// ObserveInsert records the duration of a storage insert.
// Call with time.Now() at the start of the operation.
func (m *Metrics) ObserveInsert(start time.Time) {
	m.InsertDuration.Observe(time.Since(start).Seconds())
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
