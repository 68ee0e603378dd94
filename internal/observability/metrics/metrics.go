package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	GuestRegistrationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "guests_registrations_total",
			Help: "Total number of guest registration attempts.",
		},
		[]string{"result"},
	)

	GuestLoginsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "guests_logins_total",
			Help: "Total number of guest login attempts.",
		},
		[]string{"result"},
	)

	GuestDeletionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "guests_deletions_total",
			Help: "Total number of guest deletion attempts.",
		},
		[]string{"result"},
	)

	AdminLoginsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "guests_admin_logins_total",
			Help: "Total number of admin login attempts.",
		},
		[]string{"result"},
	)

	TokensIssuedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "guests_admin_tokens_issued_total",
			Help: "Total number of admin tokens issued.",
		},
		[]string{"result"},
	)

	AuthenticationAttemptsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "guests_auth_attempts_total",
			Help: "Bearer token checks on admin routes.",
		},
		[]string{"result"},
	)
)

// MustRegister adds every collector to the default registry under a constant
// service label. Call it once from main.
func MustRegister(serviceName string) {
	reg := prometheus.WrapRegistererWith(prometheus.Labels{"service": serviceName}, prometheus.DefaultRegisterer)
	reg.MustRegister(
		HTTPRequestsTotal,
		HTTPRequestDurationSeconds,
		GuestRegistrationsTotal,
		GuestLoginsTotal,
		GuestDeletionsTotal,
		AdminLoginsTotal,
		TokensIssuedTotal,
		AuthenticationAttemptsTotal,
	)
}
