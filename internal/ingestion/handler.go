package ingestion

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	v1 "github.com/audit-lab/audit-service/internal/api/v1"
	httperr "github.com/audit-lab/audit-service/internal/core/errors"
	"github.com/audit-lab/audit-service/internal/telemetry"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// IngestIDHeader carries the id assigned to an accepted record.
const IngestIDHeader = "X-Ingest-ID"

const (
	msgReadBodyFailed = "Failed to read request body"
	msgInvalidJSON    = "Invalid JSON body"
	msgMissingField   = "Missing or invalid required field"
	msgQueueFull      = "Ingestion queue is full, retry later"
	msgUnavailable    = "Ingestion is shutting down"
)

// ingestionError carries the structured HTTP error shape from a helper back to the orchestrator.
// Helpers return this instead of writing to gin.Context directly, keeping them decoupled from HTTP.
type ingestionError struct {
	statusCode int
	errorType  string
	message    string
	details    interface{}
}

func (e *ingestionError) Error() string {
	return e.message
}

// IngestHandler validates one record of category c synchronously and hands
// it to the dispatcher. The response does not wait for the write.
func (s *Service) IngestHandler(c v1.Category) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		body, ierr := s.readBody(ctx)
		if ierr != nil {
			writeError(ctx, ierr)
			return
		}

		rec, err := DecodeRecord(c, body, s.now())
		if err != nil {
			ierr := classifyDecodeError(err)
			telemetry.IngestionRejected.WithLabelValues(string(c), ierr.errorType).Inc()
			slog.Warn("Rejected audit record",
				"category", c,
				"error", err,
				"payload_size", len(body))
			writeError(ctx, ierr)
			return
		}

		ingestID := uuid.New().String()
		job := Job{IngestID: ingestID, Record: rec, Source: telemetry.SourceAPI}
		if err := s.dispatcher.Submit(ctx.Request.Context(), job); err != nil {
			writeError(ctx, submitError(c, ingestID, err))
			return
		}

		slog.Info("Accepted audit record",
			"category", c,
			"ingest_id", ingestID,
			"timestamp", rec.Base().Timestamp)

		ctx.Header(IngestIDHeader, ingestID)
		ctx.JSON(http.StatusCreated, gin.H{})
	}
}

// readBody reads the request body, enforcing the configured size limit.
func (s *Service) readBody(c *gin.Context) ([]byte, *ingestionError) {
	maxBytes := int64(s.maxBodySizeBytes)
	limitedBody := io.LimitReader(c.Request.Body, maxBytes+1) // +1 to detect oversized requests

	body, err := io.ReadAll(limitedBody)
	if err != nil {
		slog.Error("Failed to read request body", "error", err)
		return nil, &ingestionError{
			statusCode: http.StatusInternalServerError,
			errorType:  httperr.HttpInternalError,
			message:    msgReadBodyFailed,
		}
	}

	if int64(len(body)) > maxBytes {
		slog.Warn("Request body exceeds maximum size", "size", len(body), "max", maxBytes)
		return nil, &ingestionError{
			statusCode: http.StatusRequestEntityTooLarge,
			errorType:  httperr.HttpInvalidJsonError,
			message:    "Request body exceeds maximum allowed size",
			details: map[string]interface{}{
				"max_size_mb": maxBytes / (1024 * 1024),
			},
		}
	}
	return body, nil
}

func classifyDecodeError(err error) *ingestionError {
	switch {
	case errors.Is(err, v1.ErrInvalidField):
		ierr := &ingestionError{
			statusCode: http.StatusUnprocessableEntity,
			errorType:  httperr.HttpValidationError,
			message:    msgMissingField,
		}
		if fields := fieldErrors(err); fields != nil {
			ierr.details = fields
		}
		return ierr
	case errors.Is(err, v1.ErrInvalidAction):
		return &ingestionError{
			statusCode: http.StatusBadRequest,
			errorType:  httperr.HttpInvalidActionError,
			message:    err.Error(),
			details:    map[string]interface{}{"allowed": v1.AllowedActions},
		}
	case errors.Is(err, v1.ErrInvalidTimestamp):
		return &ingestionError{
			statusCode: http.StatusBadRequest,
			errorType:  httperr.HttpInvalidTimestampError,
			message:    err.Error(),
		}
	case errors.Is(err, v1.ErrInvalidAdditionalData):
		return &ingestionError{
			statusCode: http.StatusBadRequest,
			errorType:  httperr.HttpInvalidFieldValueError,
			message:    err.Error(),
			details:    map[string]interface{}{"field": "additional_data"},
		}
	default:
		return &ingestionError{
			statusCode: http.StatusBadRequest,
			errorType:  httperr.HttpInvalidJsonError,
			message:    msgInvalidJSON,
		}
	}
}

func submitError(c v1.Category, ingestID string, err error) *ingestionError {
	if errors.Is(err, ErrQueueFull) {
		slog.Warn("Ingestion queue full", "category", c, "ingest_id", ingestID)
		return &ingestionError{
			statusCode: http.StatusServiceUnavailable,
			errorType:  httperr.HttpQueueFullError,
			message:    msgQueueFull,
		}
	}
	slog.Warn("Failed to enqueue audit record", "category", c, "ingest_id", ingestID, "error", err)
	return &ingestionError{
		statusCode: http.StatusServiceUnavailable,
		errorType:  httperr.HttpUnavailableError,
		message:    msgUnavailable,
	}
}

// writeError serializes an ingestionError as the JSON HTTP response.
func writeError(c *gin.Context, err *ingestionError) {
	c.JSON(err.statusCode, httperr.ErrorResponse{
		ErrorType: err.errorType,
		Message:   err.message,
		Details:   err.details,
	})
}
