package errors

const (
	HttpInternalError          = "internal_error"
	HttpInvalidJsonError       = "invalid_json"
	HttpValidationError        = "validation_failed"
	HttpInvalidActionError     = "invalid_action"
	HttpInvalidTimestampError  = "invalid_timestamp"
	HttpInvalidTimeRangeError  = "invalid_time_range"
	HttpUnknownCategoryError   = "unknown_category"
	HttpUnknownFieldError      = "unknown_field"
	HttpInvalidFieldValueError = "invalid_field_value"
	HttpUnauthorizedError      = "unauthorized"
	HttpForbiddenError         = "forbidden"
	HttpPolicyUnavailableError = "policy_unavailable"
	HttpQueueFullError         = "queue_full"
	HttpUnavailableError       = "unavailable"
)

// ErrorResponse is the error response body shared by every endpoint.
type ErrorResponse struct {
	ErrorType string      `json:"error_type"`
	Message   string      `json:"message"`
	Details   interface{} `json:"details,omitempty"`
}
