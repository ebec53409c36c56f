package projection

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	httperr "github.com/luboil-lab/sales-ledger/internal/core/errors"
	"github.com/luboil-lab/sales-ledger/internal/core/timestamp"
)

// RegisterRoutes registers all projection API routes on the given router.
func (s *Service) RegisterRoutes(r gin.IRouter) {
	r.GET("/v1/records", s.HandleQueryRecords)
	r.GET("/v1/products/:product/watermark", s.HandleWatermark)
	r.GET("/v1/products/:product/rollup", s.HandleRollup)
}

// HandleQueryRecords handles GET /v1/records
// Query parameters: productName, from, to, limit
func (s *Service) HandleQueryRecords(c *gin.Context) {
	var query struct {
		ProductName string `form:"productName" binding:"required"`
		From        string `form:"from"`
		To          string `form:"to"`
		Limit       int    `form:"limit"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		writeBadRequest(c, "Invalid query parameters", err)
		return
	}

	from, to, err := parseRange(query.From, query.To)
	if err != nil {
		writeBadRequest(c, "Invalid query parameters", err)
		return
	}

	resp, err := s.QueryRecords(c.Request.Context(), RecordsQueryRequest{
		ProductName: query.ProductName,
		From:        from,
		To:          to,
		Limit:       query.Limit,
	})
	if err != nil {
		writeQueryError(c, "Failed to query records", err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// HandleWatermark handles GET /v1/products/:product/watermark
func (s *Service) HandleWatermark(c *gin.Context) {
	resp, err := s.Watermark(c.Request.Context(), c.Param("product"))
	if err != nil {
		writeQueryError(c, "Failed to query watermark", err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// HandleRollup handles GET /v1/products/:product/rollup
// Query parameters: from, to, granularity
func (s *Service) HandleRollup(c *gin.Context) {
	var query struct {
		From        string `form:"from" binding:"required"`
		To          string `form:"to" binding:"required"`
		Granularity string `form:"granularity"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		writeBadRequest(c, "Invalid query parameters", err)
		return
	}

	from, to, err := parseRange(query.From, query.To)
	if err != nil {
		writeBadRequest(c, "Invalid query parameters", err)
		return
	}

	resp, err := s.Rollup(c.Request.Context(), RollupRequest{
		ProductName: c.Param("product"),
		From:        from,
		To:          to,
		Granularity: query.Granularity,
	})
	if err != nil {
		writeQueryError(c, "Failed to query rollup", err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// parseRange accepts the same date forms as the ingest path. Empty values stay zero.
func parseRange(rawFrom, rawTo string) (from, to time.Time, err error) {
	if rawFrom != "" {
		if from, err = timestamp.Normalize(rawFrom); err != nil {
			return from, to, err
		}
	}
	if rawTo != "" {
		if to, err = timestamp.Normalize(rawTo); err != nil {
			return from, to, err
		}
	}
	return from, to, nil
}

func writeBadRequest(c *gin.Context, message string, err error) {
	c.JSON(http.StatusBadRequest, httperr.ErrorResponse{
		ErrorType: httperr.HttpInvalidQueryError,
		Message:   message,
		Details:   err.Error(),
	})
}

func writeQueryError(c *gin.Context, message string, err error) {
	if errors.Is(err, ErrInvalidQuery) {
		writeBadRequest(c, "Invalid ledger query", err)
		return
	}

	c.JSON(http.StatusInternalServerError, httperr.ErrorResponse{
		ErrorType: httperr.HttpInternalError,
		Message:   message,
		Details:   err.Error(),
	})
}
