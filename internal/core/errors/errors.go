package errors

const (
	HttpInternalError      = "internal_error"
	HttpInvalidQueryError  = "invalid_query"
	HttpRunInProgressError = "run_in_progress"
	HttpStoreUnavailable   = "store_unavailable"
)

// ErrorResponse is the error response body for every API endpoint.
type ErrorResponse struct {
	ErrorType string      `json:"error_type"`
	Message   string      `json:"message"`
	Details   interface{} `json:"details,omitempty"`
}
