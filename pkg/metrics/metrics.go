package metrics

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	HTTPRequestSize     *prometheus.HistogramVec
	HTTPResponseSize    *prometheus.HistogramVec

	// Business metrics
	LeadsCreated     prometheus.Counter
	LeadUpdates      *prometheus.CounterVec
	LeadsConverted   *prometheus.CounterVec
	LeadsAssigned    prometheus.Counter
	CallsInitiated   *prometheus.CounterVec
	RemindersDue     prometheus.Gauge
	LoginAttempts    *prometheus.CounterVec
	ReferralsCredited prometheus.Counter

	// Database metrics
	DBQueryDuration *prometheus.HistogramVec
	DBConnections   prometheus.Gauge

	// Cache metrics
	CacheHits   *prometheus.CounterVec
	CacheMisses *prometheus.CounterVec
}

// New creates a new Metrics instance with all metrics registered
func New() *Metrics {
	m := &Metrics{
		// HTTP metrics
		HTTPRequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestSize: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_size_bytes",
				Help:    "HTTP request size in bytes",
				Buckets: []float64{100, 1000, 5000, 10000, 50000, 100000, 500000, 1000000},
			},
			[]string{"method", "path"},
		),
		HTTPResponseSize: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_response_size_bytes",
				Help:    "HTTP response size in bytes",
				Buckets: []float64{100, 1000, 5000, 10000, 50000, 100000, 500000, 1000000},
			},
			[]string{"method", "path"},
		),

		// Business metrics
		LeadsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "leads_created_total",
			Help: "Total number of leads created",
		}),
		LeadUpdates: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "lead_updates_total",
				Help: "Total number of lead updates applied",
			},
			[]string{"status"}, // resulting lead status kind
		),
		LeadsConverted: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "leads_converted_total",
				Help: "Total number of leads marked converted",
			},
			[]string{"channel"}, // Marked to EC, Online Order, Store Visit
		),
		LeadsAssigned: promauto.NewCounter(prometheus.CounterOpts{
			Name: "leads_assigned_total",
			Help: "Total number of lead assignments to callers",
		}),
		CallsInitiated: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "calls_initiated_total",
				Help: "Total number of click-to-call requests",
			},
			[]string{"status"}, // success, failed
		),
		RemindersDue: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "lead_reminders_due",
			Help: "Number of leads currently due for a reminder call",
		}),
		LoginAttempts: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "login_attempts_total",
				Help: "Total number of login attempts",
			},
			[]string{"status"}, // success, failed
		),
		ReferralsCredited: promauto.NewCounter(prometheus.CounterOpts{
			Name: "referrals_credited_total",
			Help: "Total number of referral commissions credited",
		}),

		// Database metrics
		DBQueryDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "db_query_duration_seconds",
				Help:    "Database query duration in seconds",
				Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2, 5},
			},
			[]string{"operation"}, // select, insert, update, delete
		),
		DBConnections: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "db_connections_active",
			Help: "Number of active database connections",
		}),

		// Cache metrics
		CacheHits: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cache_hits_total",
				Help: "Total number of cache hits",
			},
			[]string{"cache_type"},
		),
		CacheMisses: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cache_misses_total",
				Help: "Total number of cache misses",
			},
			[]string{"cache_type"},
		),
	}

	return m
}

// Middleware creates an Echo middleware for Prometheus metrics
func (m *Metrics) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			req := c.Request()
			path := c.Path() // route pattern, not actual path (e.g., /api/v1/leads/:id)

			if req.ContentLength > 0 {
				m.HTTPRequestSize.WithLabelValues(req.Method, path).Observe(float64(req.ContentLength))
			}

			err := next(c)

			status := c.Response().Status
			duration := time.Since(start).Seconds()

			m.HTTPRequestsTotal.WithLabelValues(req.Method, path, strconv.Itoa(status)).Inc()
			m.HTTPRequestDuration.WithLabelValues(req.Method, path, strconv.Itoa(status)).Observe(duration)
			m.HTTPResponseSize.WithLabelValues(req.Method, path).Observe(float64(c.Response().Size))

			return err
		}
	}
}

// RecordLeadCreated increments the leads created counter
func (m *Metrics) RecordLeadCreated() {
	m.LeadsCreated.Inc()
}

// RecordLeadUpdate records an applied lead update by resulting status kind
func (m *Metrics) RecordLeadUpdate(statusKind string) {
	m.LeadUpdates.WithLabelValues(statusKind).Inc()
}

// RecordLeadConverted records a conversion by channel
func (m *Metrics) RecordLeadConverted(channel string) {
	m.LeadsConverted.WithLabelValues(channel).Inc()
}

// RecordLeadAssigned increments the assignment counter
func (m *Metrics) RecordLeadAssigned() {
	m.LeadsAssigned.Inc()
}

// RecordCallInitiated records a click-to-call attempt
func (m *Metrics) RecordCallInitiated(success bool) {
	status := "failed"
	if success {
		status = "success"
	}
	m.CallsInitiated.WithLabelValues(status).Inc()
}

// SetRemindersDue updates the reminders-due gauge
func (m *Metrics) SetRemindersDue(count float64) {
	m.RemindersDue.Set(count)
}

// RecordLoginAttempt increments login attempts counter
func (m *Metrics) RecordLoginAttempt(success bool) {
	status := "failed"
	if success {
		status = "success"
	}
	m.LoginAttempts.WithLabelValues(status).Inc()
}

// RecordReferralCredited increments the referral commission counter
func (m *Metrics) RecordReferralCredited() {
	m.ReferralsCredited.Inc()
}

// RecordDBQuery records database query duration
func (m *Metrics) RecordDBQuery(operation string, duration time.Duration) {
	m.DBQueryDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// UpdateDBConnections updates active database connections gauge
func (m *Metrics) UpdateDBConnections(count float64) {
	m.DBConnections.Set(count)
}

// RecordCacheHit increments cache hits counter
func (m *Metrics) RecordCacheHit(cacheType string) {
	m.CacheHits.WithLabelValues(cacheType).Inc()
}

// RecordCacheMiss increments cache misses counter
func (m *Metrics) RecordCacheMiss(cacheType string) {
	m.CacheMisses.WithLabelValues(cacheType).Inc()
}
