package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	UsersRegistered prometheus.Counter

	SubmissionsAccepted prometheus.Counter
	SubmissionsRejected *prometheus.CounterVec

	VerificationsCompleted prometheus.Counter

	TokensIssued   prometheus.Counter
	TokensConsumed prometheus.Counter
	TokensExpired  prometheus.Counter

	EmailsSent   prometheus.Counter
	EmailsFailed prometheus.Counter

	RequestDuration *prometheus.HistogramVec
}

// New creates and registers all Prometheus metrics on the default registry.
func New() *Metrics {
	return NewWith(prometheus.DefaultRegisterer)
}

// NewWith registers all metrics on the given registerer. Tests pass a fresh
// registry so packages do not collide on metric names.
func NewWith(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		UsersRegistered: factory.NewCounter(prometheus.CounterOpts{
			Name: "tradegate_users_registered_total",
			Help: "Total number of accounts registered.",
		}),
		SubmissionsAccepted: factory.NewCounter(prometheus.CounterOpts{
			Name: "tradegate_document_submissions_accepted_total",
			Help: "Document submissions that passed requirement validation.",
		}),
		SubmissionsRejected: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "tradegate_document_submissions_rejected_total",
			Help: "Document submissions rejected, by rejection reason.",
		}, []string{"reason"}),
		VerificationsCompleted: factory.NewCounter(prometheus.CounterOpts{
			Name: "tradegate_verifications_completed_total",
			Help: "Accounts whose cumulative documents satisfied their role requirement.",
		}),
		TokensIssued: factory.NewCounter(prometheus.CounterOpts{
			Name: "tradegate_email_tokens_issued_total",
			Help: "Email verification tokens issued.",
		}),
		TokensConsumed: factory.NewCounter(prometheus.CounterOpts{
			Name: "tradegate_email_tokens_consumed_total",
			Help: "Email verification tokens consumed successfully.",
		}),
		TokensExpired: factory.NewCounter(prometheus.CounterOpts{
			Name: "tradegate_email_tokens_expired_total",
			Help: "Email verification attempts rejected because the token expired.",
		}),
		EmailsSent: factory.NewCounter(prometheus.CounterOpts{
			Name: "tradegate_verification_emails_sent_total",
			Help: "Verification emails handed to the mailer successfully.",
		}),
		EmailsFailed: factory.NewCounter(prometheus.CounterOpts{
			Name: "tradegate_verification_emails_failed_total",
			Help: "Verification emails the mailer failed to deliver.",
		}),
		RequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "tradegate_http_request_duration_seconds",
			Help:    "HTTP request latency by route and method.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "method", "status"}),
	}
}

// ObserveRequest records one HTTP request latency sample.
func (m *Metrics) ObserveRequest(route, method, status string, d time.Duration) {
	m.RequestDuration.WithLabelValues(route, method, status).Observe(d.Seconds())
}

// IncSubmissionRejected records a rejection under its reason code.
func (m *Metrics) IncSubmissionRejected(reason string) {
	m.SubmissionsRejected.WithLabelValues(reason).Inc()
}
