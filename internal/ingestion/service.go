package ingestion

import "github.com/gin-gonic/gin"

// Service exposes on-demand ingestion runs over HTTP.
type Service struct {
	syncer   *Synchronizer
	inputDir string
}

// NewService creates the run trigger for one input directory.
func NewService(syncer *Synchronizer, inputDir string) *Service {
	if syncer == nil {
		panic("ingestion: synchronizer must not be nil")
	}
	return &Service{syncer: syncer, inputDir: inputDir}
}

// RegisterRoutes registers the ingestion service routes.
func (s *Service) RegisterRoutes(r gin.IRouter) {
	r.POST("/v1/runs", s.RunHandler)
	r.GET("/v1/runs/status", s.StatusHandler)
}
