package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application
type Metrics struct {
	// Backtest metrics
	BacktestRequestsTotal *prometheus.CounterVec
	BacktestDuration      *prometheus.HistogramVec
	BacktestErrorsTotal   *prometheus.CounterVec
	BacktestWeeks         *prometheus.HistogramVec

	// Pipeline metrics
	HeadlinesFetchedTotal *prometheus.CounterVec
	HeadlinesScoredTotal  *prometheus.CounterVec
	ScoringErrorsTotal    *prometheus.CounterVec

	// External API metrics
	ExternalAPIRequestsTotal *prometheus.CounterVec
	ExternalAPIErrorsTotal   *prometheus.CounterVec
	ExternalAPIDuration      *prometheus.HistogramVec

	// Database metrics
	DBQueryDuration *prometheus.HistogramVec
	DBQueryTotal    *prometheus.CounterVec
	DBErrorsTotal   *prometheus.CounterVec

	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Circuit breaker metrics
	CircuitBreakerState *prometheus.GaugeVec
	CircuitBreakerTrips *prometheus.CounterVec
}

// defaultBuckets are the default histogram buckets for duration metrics (in seconds)
var defaultBuckets = []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30}

// weekBuckets are histogram buckets for backtest length in weeks
var weekBuckets = []float64{4, 13, 26, 52, 104, 156, 260, 520}

// globalMetrics is the global metrics instance
var globalMetrics *Metrics

// NewMetrics creates and registers all Prometheus metrics
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	factory := promauto.With(reg)

	m := &Metrics{
		BacktestRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "sentiment_edge",
				Subsystem: "backtest",
				Name:      "requests_total",
				Help:      "Total number of backtest requests",
			},
			[]string{"ticker"},
		),
		BacktestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "sentiment_edge",
				Subsystem: "backtest",
				Name:      "duration_seconds",
				Help:      "Duration of backtest runs in seconds",
				Buckets:   defaultBuckets,
			},
			[]string{"ticker", "status"},
		),
		BacktestErrorsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "sentiment_edge",
				Subsystem: "backtest",
				Name:      "errors_total",
				Help:      "Total number of backtest errors",
			},
			[]string{"ticker", "error_type"},
		),
		BacktestWeeks: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "sentiment_edge",
				Subsystem: "backtest",
				Name:      "weeks",
				Help:      "Distribution of backtest lengths in weeks",
				Buckets:   weekBuckets,
			},
			[]string{"ticker"},
		),
		HeadlinesFetchedTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "sentiment_edge",
				Subsystem: "pipeline",
				Name:      "headlines_fetched_total",
				Help:      "Total number of raw headlines fetched",
			},
			[]string{"source"},
		),
		HeadlinesScoredTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "sentiment_edge",
				Subsystem: "pipeline",
				Name:      "headlines_scored_total",
				Help:      "Total number of headlines scored successfully",
			},
			[]string{"classifier"},
		),
		ScoringErrorsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "sentiment_edge",
				Subsystem: "pipeline",
				Name:      "scoring_errors_total",
				Help:      "Total number of headlines excluded due to scoring errors",
			},
			[]string{"classifier"},
		),
		ExternalAPIRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "sentiment_edge",
				Subsystem: "external_api",
				Name:      "requests_total",
				Help:      "Total number of external API requests",
			},
			[]string{"service", "operation"},
		),
		ExternalAPIErrorsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "sentiment_edge",
				Subsystem: "external_api",
				Name:      "errors_total",
				Help:      "Total number of external API errors",
			},
			[]string{"service", "operation", "error_type"},
		),
		ExternalAPIDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "sentiment_edge",
				Subsystem: "external_api",
				Name:      "duration_seconds",
				Help:      "Duration of external API calls in seconds",
				Buckets:   defaultBuckets,
			},
			[]string{"service", "operation"},
		),
		DBQueryDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "sentiment_edge",
				Subsystem: "database",
				Name:      "query_duration_seconds",
				Help:      "Duration of database queries in seconds",
				Buckets:   defaultBuckets,
			},
			[]string{"operation", "table"},
		),
		DBQueryTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "sentiment_edge",
				Subsystem: "database",
				Name:      "queries_total",
				Help:      "Total number of database queries",
			},
			[]string{"operation", "table"},
		),
		DBErrorsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "sentiment_edge",
				Subsystem: "database",
				Name:      "errors_total",
				Help:      "Total number of database errors",
			},
			[]string{"operation", "table"},
		),
		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "sentiment_edge",
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "path", "status_code"},
		),
		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "sentiment_edge",
				Subsystem: "http",
				Name:      "request_duration_seconds",
				Help:      "Duration of HTTP requests in seconds",
				Buckets:   defaultBuckets,
			},
			[]string{"method", "path"},
		),
		CircuitBreakerState: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "sentiment_edge",
				Subsystem: "circuit_breaker",
				Name:      "state",
				Help:      "Current state of circuit breakers (0=closed, 1=half-open, 2=open)",
			},
			[]string{"service"},
		),
		CircuitBreakerTrips: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "sentiment_edge",
				Subsystem: "circuit_breaker",
				Name:      "trips_total",
				Help:      "Total number of circuit breaker trips",
			},
			[]string{"service"},
		),
	}

	return m
}

// InitMetrics initializes the global metrics instance
func InitMetrics() *Metrics {
	globalMetrics = NewMetrics(nil)
	return globalMetrics
}

// GetMetrics returns the global metrics instance
func GetMetrics() *Metrics {
	if globalMetrics == nil {
		return InitMetrics()
	}
	return globalMetrics
}

// RecordBacktestRequest records a backtest request
func (m *Metrics) RecordBacktestRequest(ticker string) {
	m.BacktestRequestsTotal.WithLabelValues(ticker).Inc()
}

// RecordBacktestDuration records the duration of a backtest run
func (m *Metrics) RecordBacktestDuration(ticker, status string, duration time.Duration) {
	m.BacktestDuration.WithLabelValues(ticker, status).Observe(duration.Seconds())
}

// RecordBacktestError records a backtest error
func (m *Metrics) RecordBacktestError(ticker, errorType string) {
	m.BacktestErrorsTotal.WithLabelValues(ticker, errorType).Inc()
}

// RecordBacktestWeeks records the length of a completed backtest
func (m *Metrics) RecordBacktestWeeks(ticker string, weeks int) {
	m.BacktestWeeks.WithLabelValues(ticker).Observe(float64(weeks))
}

// RecordHeadlinesFetched records raw headlines fetched from a source
func (m *Metrics) RecordHeadlinesFetched(source string, count int) {
	m.HeadlinesFetchedTotal.WithLabelValues(source).Add(float64(count))
}

// RecordHeadlineScored records a successfully scored headline
func (m *Metrics) RecordHeadlineScored(classifier string) {
	m.HeadlinesScoredTotal.WithLabelValues(classifier).Inc()
}

// RecordScoringError records a headline excluded due to a scoring error
func (m *Metrics) RecordScoringError(classifier string) {
	m.ScoringErrorsTotal.WithLabelValues(classifier).Inc()
}

// RecordExternalAPIRequest records an external API request
func (m *Metrics) RecordExternalAPIRequest(service, operation string) {
	m.ExternalAPIRequestsTotal.WithLabelValues(service, operation).Inc()
}

// RecordExternalAPIError records an external API error
func (m *Metrics) RecordExternalAPIError(service, operation, errorType string) {
	m.ExternalAPIErrorsTotal.WithLabelValues(service, operation, errorType).Inc()
}

// RecordExternalAPIDuration records the duration of an external API call
func (m *Metrics) RecordExternalAPIDuration(service, operation string, duration time.Duration) {
	m.ExternalAPIDuration.WithLabelValues(service, operation).Observe(duration.Seconds())
}

// RecordDBQuery records a database query
func (m *Metrics) RecordDBQuery(operation, table string, duration time.Duration) {
	m.DBQueryTotal.WithLabelValues(operation, table).Inc()
	m.DBQueryDuration.WithLabelValues(operation, table).Observe(duration.Seconds())
}

// RecordDBError records a database error
func (m *Metrics) RecordDBError(operation, table string) {
	m.DBErrorsTotal.WithLabelValues(operation, table).Inc()
}

// RecordHTTPRequest records an HTTP request
func (m *Metrics) RecordHTTPRequest(method, path, statusCode string, duration time.Duration) {
	m.HTTPRequestsTotal.WithLabelValues(method, path, statusCode).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// SetCircuitBreakerState sets the current state of a circuit breaker
func (m *Metrics) SetCircuitBreakerState(service string, state int) {
	m.CircuitBreakerState.WithLabelValues(service).Set(float64(state))
}

// RecordCircuitBreakerTrip records a circuit breaker trip
func (m *Metrics) RecordCircuitBreakerTrip(service string) {
	m.CircuitBreakerTrips.WithLabelValues(service).Inc()
}

// Timer is a helper for timing operations
type Timer struct {
	start   time.Time
	metrics *Metrics
}

// NewTimer creates a new timer
func (m *Metrics) NewTimer() *Timer {
	return &Timer{
		start:   time.Now(),
		metrics: m,
	}
}

// ObserveBacktest records the backtest duration and status
func (t *Timer) ObserveBacktest(ticker, status string) {
	t.metrics.RecordBacktestDuration(ticker, status, time.Since(t.start))
}

// ObserveExternalAPI records the external API duration
func (t *Timer) ObserveExternalAPI(service, operation string) {
	t.metrics.RecordExternalAPIDuration(service, operation, time.Since(t.start))
}

// ObserveDB records the database query duration
func (t *Timer) ObserveDB(operation, table string) {
	t.metrics.RecordDBQuery(operation, table, time.Since(t.start))
}

// Duration returns the elapsed time
func (t *Timer) Duration() time.Duration {
	return time.Since(t.start)
}
