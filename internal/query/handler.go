package query

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	v1 "github.com/audit-lab/audit-service/internal/api/v1"
	"github.com/audit-lab/audit-service/internal/authz"
	httperr "github.com/audit-lab/audit-service/internal/core/errors"
	"github.com/audit-lab/audit-service/internal/schema"
	"github.com/gin-gonic/gin"
)

const (
	paramGroupBy = "groupby"
	paramStart   = "start"
	paramStop    = "stop"
	paramCount   = "count"
)

// queryError carries the structured HTTP error shape back to HandleQuery.
type queryError struct {
	statusCode int
	errorType  string
	message    string
	details    interface{}
}

// RegisterRoutes registers GET /log/:category behind the read check.
// A nil authorizer leaves the route open.
func (s *Service) RegisterRoutes(r gin.IRouter, authorizer authz.Authorizer) {
	r.GET("/log/:category", authz.RequireRead(authorizer), s.HandleQuery)
}

// HandleQuery handles GET /log/:category
// Query parameters: any field of the category (repeatable), groupby
// (repeatable), start, stop, count
func (s *Service) HandleQuery(c *gin.Context) {
	req, qerr := parseRequest(c)
	if qerr != nil {
		writeError(c, qerr)
		return
	}

	resp, err := s.Query(c.Request.Context(), req)
	if err != nil {
		qerr := classifyQueryError(err)
		if qerr.statusCode >= http.StatusInternalServerError {
			slog.Error("Query failed", "category", req.Category, "error", err)
		}
		writeError(c, qerr)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func parseRequest(c *gin.Context) (Request, *queryError) {
	req := Request{
		Category: c.Param("category"),
		Filters:  make(map[string][]string),
	}

	for key, values := range c.Request.URL.Query() {
		switch key {
		case paramStart, paramStop:
			n, err := strconv.ParseInt(values[0], 10, 64)
			if err != nil {
				return Request{}, &queryError{
					statusCode: http.StatusBadRequest,
					errorType:  httperr.HttpInvalidTimestampError,
					message:    "'" + key + "' must be a unix timestamp",
					details:    map[string]interface{}{"field": key, "value": values[0]},
				}
			}
			if key == paramStart {
				req.Start = n
			} else {
				req.Stop = n
			}
		case paramCount:
			req.Count = true
			if values[0] != "" {
				b, err := strconv.ParseBool(values[0])
				if err != nil {
					return Request{}, &queryError{
						statusCode: http.StatusBadRequest,
						errorType:  httperr.HttpInvalidFieldValueError,
						message:    "'count' must be a boolean",
						details:    map[string]interface{}{"field": key, "value": values[0]},
					}
				}
				req.Count = b
			}
		case paramGroupBy:
			req.GroupBy = append(req.GroupBy, values...)
		default:
			req.Filters[key] = values
		}
	}
	return req, nil
}

func classifyQueryError(err error) *queryError {
	qerr := &queryError{
		statusCode: http.StatusBadRequest,
		message:    err.Error(),
	}

	switch {
	case errors.Is(err, v1.ErrUnknownCategory):
		qerr.errorType = httperr.HttpUnknownCategoryError
		qerr.details = map[string]interface{}{"allowed": v1.Categories()}
	case errors.Is(err, schema.ErrUnknownField), errors.Is(err, ErrUsernameQueryDisabled):
		qerr.errorType = httperr.HttpUnknownFieldError
	case errors.Is(err, schema.ErrInvalidFieldValue):
		qerr.errorType = httperr.HttpInvalidFieldValueError
	case errors.Is(err, v1.ErrInvalidTimestamp):
		qerr.errorType = httperr.HttpInvalidTimestampError
	case errors.Is(err, ErrInvalidTimeRange):
		qerr.errorType = httperr.HttpInvalidTimeRangeError
	default:
		return &queryError{
			statusCode: http.StatusInternalServerError,
			errorType:  httperr.HttpInternalError,
			message:    "Failed to query audit logs",
		}
	}

	var detailer schema.ValidationDetailer
	if errors.As(err, &detailer) {
		qerr.details = detailer.Details()
	}
	return qerr
}

func writeError(c *gin.Context, err *queryError) {
	c.JSON(err.statusCode, httperr.ErrorResponse{
		ErrorType: err.errorType,
		Message:   err.message,
		Details:   err.details,
	})
}
