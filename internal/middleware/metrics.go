package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ledger_http_requests_total",
		Help: "Total HTTP requests processed, labeled by status code",
	}, []string{"method", "endpoint", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "ledger_http_request_duration_seconds",
		Help:    "Latency distribution of HTTP requests",
		Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
	}, []string{"method", "endpoint"})

	// EntriesPostedTotal counts journal entries successfully posted.
	EntriesPostedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ledger_entries_posted_total",
		Help: "Journal entries transitioned to POSTED",
	})

	// EntriesVoidedTotal counts posted entries voided by an offsetting entry.
	EntriesVoidedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ledger_entries_voided_total",
		Help: "Journal entries transitioned to VOID",
	})

	// AccrualDaysTotal counts per-loan accrual days processed across batches.
	AccrualDaysTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ledger_accrual_days_total",
		Help: "Loan-days of interest accrual processed",
	})

	// AnomaliesFlaggedTotal counts anomalies raised by detector scans.
	AnomaliesFlaggedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ledger_anomalies_flagged_total",
		Help: "Anomalies flagged by scans, labeled by type",
	}, []string{"type"})

	// SchedulerRunsTotal counts background job executions by outcome.
	SchedulerRunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ledger_scheduler_runs_total",
		Help: "Scheduled job executions, labeled by job and outcome",
	}, []string{"job", "outcome"})
)

// MetricsMiddleware records a counter and latency observation per request.
// The route template (c.FullPath) is used as the endpoint label so that
// /entries/:id does not explode cardinality.
func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		endpoint := c.FullPath()
		if endpoint == "" {
			endpoint = "unmatched"
		}
		status := strconv.Itoa(c.Writer.Status())
		httpRequestsTotal.WithLabelValues(c.Request.Method, endpoint, status).Inc()
		httpRequestDuration.WithLabelValues(c.Request.Method, endpoint).Observe(time.Since(start).Seconds())
	}
}
