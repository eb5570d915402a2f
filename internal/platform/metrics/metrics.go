package metrics

import (
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Submission outcomes.
const (
	OutcomeCompleted = "completed"
	OutcomeRejected  = "rejected"
	OutcomeMalformed = "malformed"
	OutcomeFailed    = "failed"
)

// Metrics holds all Prometheus metrics for the application
type Metrics struct {
	Submissions      *prometheus.CounterVec
	ValidationErrors *prometheus.CounterVec
	EngineDuration   *prometheus.HistogramVec
	HTTPDuration     *prometheus.HistogramVec
}

// New creates the metrics and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Submissions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "kyc_submissions_total",
			Help: "KYC submissions by outcome",
		}, []string{"outcome"}),
		ValidationErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "kyc_validation_errors_total",
			Help: "Validation failures by form field",
		}, []string{"field"}),
		EngineDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "kyc_engine_request_duration_seconds",
			Help:    "Duration of external task completion calls to the workflow engine",
			Buckets: prometheus.DefBuckets,
		}, []string{"outcome"}),
		HTTPDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "kyc_http_request_duration_seconds",
			Help:    "HTTP request latency by route",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "method", "status"}),
	}
}

func (m *Metrics) IncrementSubmission(outcome string) {
	m.Submissions.WithLabelValues(outcome).Inc()
}

// IncrementValidationError counts a failure of field. List indexes are
// folded into "*" so beneficialOwnership.owners.0.name and .owners.3.name
// share one series.
func (m *Metrics) IncrementValidationError(field string) {
	m.ValidationErrors.WithLabelValues(FieldLabel(field)).Inc()
}

// FieldLabel replaces the numeric segments of a dotted field path with "*".
func FieldLabel(field string) string {
	parts := strings.Split(field, ".")
	for i, p := range parts {
		if _, err := strconv.Atoi(p); err == nil {
			parts[i] = "*"
		}
	}
	return strings.Join(parts, ".")
}

func (m *Metrics) ObserveEngineCall(outcome string, d time.Duration) {
	m.EngineDuration.WithLabelValues(outcome).Observe(d.Seconds())
}

func (m *Metrics) ObserveHTTP(route, method string, status int, d time.Duration) {
	m.HTTPDuration.WithLabelValues(route, method, strconv.Itoa(status)).Observe(d.Seconds())
}
