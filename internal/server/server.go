// Package server exposes the team builder steps as a JSON API.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/spigell/team-builder/internal/builder"
	"github.com/spigell/team-builder/internal/logger"
	"github.com/spigell/team-builder/internal/session"
)

const (
	DefaultListen     = ":8080"
	DefaultSessionTTL = time.Hour

	shutdownTimeout  = 10 * time.Second
	minSweepInterval = time.Minute
)

type Config struct {
	Listen     string        `mapstructure:"listen"`
	SessionTTL time.Duration `mapstructure:"session-ttl"`
	Debug      bool          `mapstructure:"-"`
}

type Server struct {
	cfg     Config
	builder *builder.Builder
	store   *session.Store
	engine  *gin.Engine
	logger  *zap.Logger
}

func New(cfg Config, b *builder.Builder, log *zap.Logger) *Server {
	if cfg.Listen == "" {
		cfg.Listen = DefaultListen
	}
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = DefaultSessionTTL
	}

	if cfg.Debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &Server{
		cfg:     cfg,
		builder: b,
		store:   session.NewStore(cfg.SessionTTL),
		logger:  logger.OrNop(log),
	}
	s.engine = s.routes()

	return s
}

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(s.logger))

	api := r.Group("/api/v1")
	{
		api.GET("/health", s.health)

		api.POST("/sessions", s.createSession)
		api.GET("/sessions/:id", s.getSession)
		api.DELETE("/sessions/:id", s.deleteSession)

		api.POST("/sessions/:id/analyze", s.analyze)
		api.POST("/sessions/:id/additional-info", s.additionalInfo)
		api.PUT("/sessions/:id/roles", s.updateRoles)
		api.POST("/sessions/:id/salaries", s.estimateSalaries)
		api.PUT("/sessions/:id/employees", s.updateEmployees)
		api.POST("/sessions/:id/cost", s.calculateCost)
		api.GET("/sessions/:id/report.csv", s.report)
	}

	return r
}

// Handler returns the HTTP handler serving the API.
func (s *Server) Handler() http.Handler { return s.engine }

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Listen,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go s.sweep(ctx)

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", zap.String("listen", s.cfg.Listen))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	s.logger.Info("server shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	return nil
}

func (s *Server) sweep(ctx context.Context) {
	interval := max(s.cfg.SessionTTL/2, minSweepInterval)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if removed := s.store.Sweep(now); removed > 0 {
				s.logger.Info("expired sessions removed",
					zap.Int("removed", removed),
					zap.Int("active", s.store.Len()),
				)
			}
		}
	}
}
