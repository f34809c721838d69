// Package server wires the HTTP surface over the workspace manager.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	apihttp "github.com/agentfs/agentfs/internal/api/http"
	"github.com/agentfs/agentfs/internal/api/middleware"
	"github.com/agentfs/agentfs/internal/config"
	"github.com/agentfs/agentfs/internal/logging"
	"github.com/agentfs/agentfs/internal/monitoring"
	"github.com/agentfs/agentfs/internal/vfs"
	"github.com/agentfs/agentfs/internal/workspace"
)

// Server bundles the router with its long-lived dependencies.
type Server struct {
	router  *gin.Engine
	manager *workspace.Manager
	config  *config.Config
	log     *logging.Logger
	metrics *monitoring.Metrics

	httpServer *http.Server
}

// New assembles the server from configuration.
func New(cfg *config.Config) (*Server, error) {
	log, err := logging.New(logging.Config{
		Level:       cfg.Logging.Level,
		Development: cfg.Logging.Development,
	})
	if err != nil {
		return nil, fmt.Errorf("logger init: %w", err)
	}

	metrics := monitoring.New()
	supervisor := vfs.NewSupervisor(cfg.Mounts.ReadyAttempts, cfg.Mounts.ReadyDelay, log.Named("mounts")).
		WithObserver(func(prefix, outcome string) {
			metrics.MountReadyAttempts.WithLabelValues(prefix, outcome).Inc()
		})
	manager := workspace.NewManager(cfg, supervisor, log.Named("workspace"))

	if !cfg.Logging.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(monitoring.Middleware(metrics))
	router.Use(middleware.CORS(middleware.DefaultCORSConfig()))
	if cfg.RateLimit.Enabled {
		router.Use(middleware.RateLimit(middleware.RateLimitConfig{
			RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
			Burst:             cfg.RateLimit.Burst,
		}))
	}

	s := &Server{
		router:  router,
		manager: manager,
		config:  cfg,
		log:     log,
		metrics: metrics,
	}
	s.registerRoutes()
	return s, nil
}

func (s *Server) registerRoutes() {
	h := apihttp.NewHandlers(s.manager, s.metrics, s.log.Named("http"))

	s.router.GET("/health", h.Health)
	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	s.router.POST("/workspaces", h.CreateWorkspace)

	ws := s.router.Group("/workspaces/:thread")
	{
		ws.GET("/files", h.ListFiles)
		ws.GET("/file", h.ReadFile)
		ws.PUT("/file", h.WriteFile)
		ws.PATCH("/file", h.EditFile)
		ws.GET("/search", h.SearchFiles)
		ws.GET("/glob", h.GlobFiles)
		ws.GET("/archive", h.ArchiveWorkspace)
		ws.POST("/exec", h.Exec)
		ws.GET("/skills", h.ListSkills)
		ws.POST("/skills/load", h.LoadSkill)
		ws.POST("/turn/end", h.EndTurn)
	}
}

// Run starts the HTTP listener and blocks until it stops.
func (s *Server) Run() error {
	addr := fmt.Sprintf("%s:%s", s.config.Server.Host, s.config.Server.Port)
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.log.Info("server starting", zap.String("addr", addr))
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests and stops the listener.
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info("server shutting down")
	if s.httpServer == nil {
		return nil
	}
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return err
	}
	return s.log.Sync()
}

// Router exposes the gin engine for tests.
func (s *Server) Router() *gin.Engine {
	return s.router
}
