// Package telemetry holds the service's Prometheus metrics and logger setup.
//
// Metrics are registered against the default registry and exposed by the
// server on GET /metrics when metrics.enabled is set.
//
// HTTP metrics use c.FullPath() (the route template, e.g. /log/:category) for
// the path label so user-supplied segments cannot inflate cardinality.
package telemetry

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Record sources.
const (
	SourceAPI   = "api"
	SourceQueue = "queue"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests processed, by method, route template, and status code.",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Histogram of HTTP request latencies, by method and route template.",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"method", "path"},
	)
)

// Ingestion metrics.
//
// RecordsAccepted counts records handed to the dispatcher. RecordsWritten and
// RecordWriteFailures count the outcome of the asynchronous write, labelled
// by where the record came from (api or queue). A growing failure rate with a
// flat accepted rate usually means the database is rejecting rows.
var (
	RecordsAccepted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "audit_records_accepted_total",
			Help: "Total number of audit records accepted for asynchronous writing, by category.",
		},
		[]string{"category"},
	)

	RecordsWritten = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "audit_records_written_total",
			Help: "Total number of audit records persisted, by category and source.",
		},
		[]string{"category", "source"},
	)

	RecordWriteFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "audit_record_write_failures_total",
			Help: "Total number of audit records that failed to persist, by category and source.",
		},
		[]string{"category", "source"},
	)

	IngestionRejected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "audit_ingestion_rejected_total",
			Help: "Total number of audit records rejected or dropped before writing, by category and reason.",
		},
		[]string{"category", "reason"},
	)

	IngestionQueueDepth = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "audit_ingestion_queue_depth",
			Help: "Current number of records waiting in the ingestion dispatcher.",
		},
	)
)

var (
	QueriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "audit_queries_total",
			Help: "Total number of audit log queries, by category and mode (list, count, groupby).",
		},
		[]string{"category", "mode"},
	)

	PartitionsCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "audit_partitions_created_total",
			Help: "Total number of monthly partitions created, by category.",
		},
		[]string{"category"},
	)

	QueueMessagesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "audit_queue_messages_total",
			Help: "Total number of queue messages handled, by outcome (processed, failed).",
		},
		[]string{"outcome"},
	)
)

// DBOpenConnections tracks open connections held by the sql.DB pool. It is
// sampled by StartDBStatsCollector rather than per request.
var DBOpenConnections = promauto.NewGauge(
	prometheus.GaugeOpts{
		Name: "db_open_connections",
		Help: "Current number of open database connections in the pool.",
	},
)

// StartDBStatsCollector samples pool statistics every interval until ctx is done.
func StartDBStatsCollector(ctx context.Context, db *sql.DB, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				DBOpenConnections.Set(float64(db.Stats().OpenConnections))
			}
		}
	}()
	slog.Debug("db stats collector started", "interval", interval)
}
