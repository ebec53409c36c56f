// Package server hosts the ledger HTTP API.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

const (
	healthTimeout   = 2 * time.Second
	shutdownTimeout = 5 * time.Second
)

// HealthChecker reports whether the ledger store answers.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// RunState reports whether an ingestion run is in flight.
type RunState interface {
	Running() bool
}

// Options configures a Server. Store and Runs are optional.
type Options struct {
	Addr      string
	Mode      string // debug | release
	Store     HealthChecker
	StoreType string
	Runs      RunState
}

type Server struct {
	Engine *gin.Engine
	Addr   string
	opts   Options
}

func New(opts Options) *Server {
	if opts.Mode == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &Server{
		Engine: gin.Default(),
		Addr:   opts.Addr,
		opts:   opts,
	}
	s.Engine.GET("/health", s.healthHandler)
	return s
}

// healthHandler answers 503 when the store does not respond to a ping.
func (s *Server) healthHandler(c *gin.Context) {
	body := gin.H{"store_type": s.opts.StoreType}
	if s.opts.Runs != nil {
		body["ingest_running"] = s.opts.Runs.Running()
	}

	if s.opts.Store != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), healthTimeout)
		defer cancel()

		if err := s.opts.Store.Ping(ctx); err != nil {
			slog.Error("[Server] Health check failed: store unreachable", "store_type", s.opts.StoreType, "error", err)
			body["status"] = "unhealthy"
			body["store"] = "unreachable"
			c.JSON(http.StatusServiceUnavailable, body)
			return
		}
	}

	body["status"] = "healthy"
	body["store"] = "connected"
	c.JSON(http.StatusOK, body)
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:    s.Addr,
		Handler: s.Engine,
	}

	slog.Info("[Server] Listening", "address", s.Addr, "store_type", s.opts.StoreType)

	go func() {
		<-ctx.Done()
		slog.Info("[Server] Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("[Server] Forced shutdown", "error", err)
		}
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
