package ingestion

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	httperr "github.com/luboil-lab/sales-ledger/internal/core/errors"
)

const (
	msgRunInProgress    = "An ingestion run is already in progress"
	msgStoreUnavailable = "Store unavailable, run aborted"
	msgRunFailed        = "Ingestion run failed"
)

// runError carries the structured HTTP error shape from a helper back to the handler.
type runError struct {
	statusCode int
	errorType  string
	message    string
	details    interface{}
}

func (e *runError) Error() string {
	return e.message
}

// RunHandler handles POST /v1/runs: one synchronous run of the input directory.
func (s *Service) RunHandler(c *gin.Context) {
	summary, err := s.syncer.TryRun(c.Request.Context(), s.inputDir)
	if err != nil {
		writeError(c, classifyRunError(err, summary))
		return
	}

	c.JSON(http.StatusOK, summary)
}

// StatusHandler handles GET /v1/runs/status.
func (s *Service) StatusHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"running":   s.syncer.Running(),
		"input_dir": s.inputDir,
	})
}

// classifyRunError maps run errors to HTTP responses.
// Partial summaries are returned as details so callers see what was committed.
func classifyRunError(err error, summary *RunSummary) *runError {
	switch {
	case errors.Is(err, ErrRunInProgress):
		slog.Info("Run request rejected, run already in flight")
		return &runError{
			statusCode: http.StatusConflict,
			errorType:  httperr.HttpRunInProgressError,
			message:    msgRunInProgress,
		}
	case errors.Is(err, ErrStoreUnavailable):
		slog.Error("Run aborted, store unavailable", "error", err)
		return withSummary(&runError{
			statusCode: http.StatusServiceUnavailable,
			errorType:  httperr.HttpStoreUnavailable,
			message:    msgStoreUnavailable,
		}, summary)
	default:
		slog.Error("Run failed", "error", err)
		return withSummary(&runError{
			statusCode: http.StatusInternalServerError,
			errorType:  httperr.HttpInternalError,
			message:    msgRunFailed,
		}, summary)
	}
}

func withSummary(re *runError, summary *RunSummary) *runError {
	if summary != nil {
		re.details = summary
	}
	return re
}

// writeError serializes a runError as the JSON HTTP response.
func writeError(c *gin.Context, err *runError) {
	c.JSON(err.statusCode, httperr.ErrorResponse{
		ErrorType: err.errorType,
		Message:   err.message,
		Details:   err.details,
	})
}
