package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"glmdesign/app"
	"glmdesign/internal/report"
)

// Pinger reports whether a backing store is reachable
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Server exposes the design service over HTTP
type Server struct {
	router   *gin.Engine
	designs  *DesignHandler
	pinger   Pinger
	logger   *slog.Logger
	shutdown time.Duration
}

// NewServer creates a server. mode is a gin mode (debug, release, test);
// pinger may be nil.
func NewServer(service *app.DesignService, renderer *report.Renderer, pinger Pinger, mode string, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if mode != "" {
		gin.SetMode(mode)
	}

	s := &Server{
		router:   gin.New(),
		designs:  NewDesignHandler(service, renderer),
		pinger:   pinger,
		logger:   logger,
		shutdown: 10 * time.Second,
	}
	s.router.Use(gin.Recovery(), s.requestLogger())
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router.GET("/healthz", s.handleHealth)

	api := s.router.Group("/api/v1/designs")
	api.POST("", s.designs.Create)
	api.GET("", s.designs.List)
	api.GET("/:id", s.designs.Get)
	api.DELETE("/:id", s.designs.Delete)
	api.GET("/:id/report", s.designs.Report)
}

// Handler returns the HTTP handler serving every route
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("http server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdown)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func (s *Server) handleHealth(c *gin.Context) {
	if s.pinger != nil {
		if err := s.pinger.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": err.Error()})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// requestLogger logs one structured line per request
func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Info("http request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"elapsed", time.Since(start),
		)
	}
}
