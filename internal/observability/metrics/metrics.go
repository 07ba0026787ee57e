package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tgooauth_http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "tgooauth_http_request_duration_seconds",
		Help:    "Duration of HTTP requests",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	loginAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tgooauth_login_attempts_total",
		Help: "Count of login attempts by result",
	}, []string{"result"})

	signupAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tgooauth_signup_attempts_total",
		Help: "Count of signup attempts by result",
	}, []string{"result"})

	tokensIssued = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tgooauth_tokens_issued_total",
		Help: "Count of JWT tokens issued",
	})

	platformUsers = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "tgooauth_platform_users",
		Help: "Number of registered users per platform",
	}, []string{"platform"})
)

// ObserveHTTPRequest records an HTTP request metric
func ObserveHTTPRequest(method, path, status string, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, path, status).Inc()
	httpRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

// ObserveLogin increments the login counter for the given result.
func ObserveLogin(result string) {
	loginAttempts.WithLabelValues(result).Inc()
}

// ObserveSignup increments the signup counter for the given result.
func ObserveSignup(result string) {
	signupAttempts.WithLabelValues(result).Inc()
}

// IncTokensIssued increments the issued-token counter.
func IncTokensIssued() {
	tokensIssued.Inc()
}

// SetPlatformUsers records the current user count for a platform.
func SetPlatformUsers(platformCode string, count int) {
	platformUsers.WithLabelValues(platformCode).Set(float64(count))
}
