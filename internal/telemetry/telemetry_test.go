package telemetry

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_AllRegistered(t *testing.T) {
	collectors := map[string]prometheus.Collector{
		"http_requests_total":               HTTPRequestsTotal,
		"http_request_duration_seconds":     HTTPRequestDuration,
		"audit_records_accepted_total":      RecordsAccepted,
		"audit_records_written_total":       RecordsWritten,
		"audit_record_write_failures_total": RecordWriteFailures,
		"audit_ingestion_rejected_total":    IngestionRejected,
		"audit_ingestion_queue_depth":       IngestionQueueDepth,
		"audit_queries_total":               QueriesTotal,
		"audit_partitions_created_total":    PartitionsCreated,
		"audit_queue_messages_total":        QueueMessagesTotal,
		"db_open_connections":               DBOpenConnections,
	}

	for name, c := range collectors {
		t.Run(name, func(t *testing.T) {
			ch := make(chan *prometheus.Desc, 1)
			c.Describe(ch)
			desc := <-ch
			assert.Contains(t, desc.String(), `"`+name+`"`)
		})
	}
}

func TestMetrics_CounterIncrements(t *testing.T) {
	before := testutil.ToFloat64(PartitionsCreated.WithLabelValues("login"))
	PartitionsCreated.WithLabelValues("login").Inc()
	assert.Equal(t, before+1, testutil.ToFloat64(PartitionsCreated.WithLabelValues("login")))
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"DEBUG":   slog.LevelDebug,
		"info":    slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"bogus":   slog.LevelInfo,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseLevel(in), in)
	}
}

func TestNewLogger_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, "json", "info")

	logger.Debug("hidden")
	logger.Info("[Dispatcher] Record written", "ingest_id", "abc")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "[Dispatcher] Record written", entry["msg"])
	assert.Equal(t, "abc", entry["ingest_id"])
}
