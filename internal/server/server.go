package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	httperr "github.com/audit-lab/audit-service/internal/core/errors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	defaultShutdownTimeout = 5 * time.Second
	healthCheckTimeout     = 2 * time.Second
)

// HealthChecker is an interface for components that can report their health status.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

type Options struct {
	Mode            string // debug | release
	Version         string
	MetricsEnabled  bool
	ShutdownTimeout time.Duration
}

type Server struct {
	Engine *gin.Engine
	Addr   string

	health          HealthChecker
	version         string
	shutdownTimeout time.Duration
}

// New builds the engine with the common middleware and the system routes.
// Feature routes are registered on Engine by their services.
func New(addr string, health HealthChecker, opts Options) *Server {
	if health == nil {
		panic("server: health checker must not be nil")
	}

	// Set Gin mode based on configuration
	if opts.Mode == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery(), RequestID(), Metrics(), AccessLog())

	if opts.ShutdownTimeout <= 0 {
		opts.ShutdownTimeout = defaultShutdownTimeout
	}

	s := &Server{
		Engine:          r,
		Addr:            addr,
		health:          health,
		version:         opts.Version,
		shutdownTimeout: opts.ShutdownTimeout,
	}

	r.GET("/", s.statusHandler)
	r.GET("/_status", s.statusHandler)
	r.GET("/_version", s.versionHandler)
	if opts.MetricsEnabled {
		r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}

	return s
}

func (s *Server) statusHandler(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), healthCheckTimeout)
	defer cancel()

	if err := s.health.Ping(ctx); err != nil {
		slog.Error("Health check failed: database unreachable", "error", err)
		c.JSON(http.StatusServiceUnavailable, httperr.ErrorResponse{
			ErrorType: httperr.HttpUnavailableError,
			Message:   "database unreachable",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "OK"})
}

func (s *Server) versionHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"version": s.version})
}

// Run serves until ctx is cancelled, then shuts down gracefully. It returns
// once in-flight requests have finished or the shutdown timeout expired.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.Addr,
		Handler:           s.Engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	slog.Info("Starting HTTP Server...", "address", s.Addr)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	slog.Info("Stopping HTTP Server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP Server forced to shutdown", "error", err)
		return err
	}
	return nil
}
