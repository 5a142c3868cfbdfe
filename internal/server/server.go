package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"gorm.io/gorm"

	"github.com/equipstore/backend/internal/api/middleware"
	"github.com/equipstore/backend/internal/api/routes"
	"github.com/equipstore/backend/internal/config"
	"github.com/equipstore/backend/internal/logger"
	"github.com/equipstore/backend/internal/services"
)

// Server wraps the HTTP engine, the activity monitor and shared dependencies.
type Server struct {
	Engine  *gin.Engine
	cfg     *config.Config
	monitor *services.ActivityMonitor
}

// NewRouter returns a gin engine with the store middleware chain and, when
// frontendDir holds a build, the single-page frontend.
func NewRouter(frontendDir string) *gin.Engine {
	router := gin.New()
	router.Use(
		middleware.RequestID(),
		middleware.RequestLogger(),
		middleware.Recovery(gin.IsDebugging()),
		middleware.SecurityHeaders(middleware.SecurityHeadersConfig{IsDevelopment: gin.Mode() != gin.ReleaseMode}),
	)
	attachFrontend(router, frontendDir)
	return router
}

// New wires up the HTTP router, registers routes and prepares the monitor.
func New(db *gorm.DB, cfg *config.Config) (*Server, error) {
	gin.SetMode(gin.ReleaseMode)
	if !cfg.IsProduction() && cfg.Logging.Debug {
		gin.SetMode(gin.DebugMode)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	router := NewRouter(cfg.Server.FrontendDir)
	monitor, err := routes.Register(router, db, cfg, reg)
	if err != nil {
		return nil, fmt.Errorf("register routes: %w", err)
	}

	return &Server{Engine: router, cfg: cfg, monitor: monitor}, nil
}

// Monitor returns the activity monitor owned by the server.
func (s *Server) Monitor() *services.ActivityMonitor {
	return s.monitor
}

func attachFrontend(router *gin.Engine, frontendDir string) {
	if frontendDir == "" {
		return
	}

	info, err := os.Stat(frontendDir)
	if err != nil || !info.IsDir() {
		return
	}

	assetsDir := filepath.Join(frontendDir, "_next")
	if _, err := os.Stat(assetsDir); err == nil {
		router.StaticFS("/_next", gin.Dir(assetsDir, false))
	}

	router.NoRoute(func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/api/") {
			c.JSON(http.StatusNotFound, gin.H{"error": "route not found"})
			return
		}
		c.File(filepath.Join(frontendDir, "index.html"))
	})
}

// Run serves HTTP and runs the activity monitor until ctx is cancelled, then
// shuts both down within the configured timeout.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", s.cfg.Server.Port),
		Handler:           s.Engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	if s.cfg.Monitoring.Enabled {
		s.monitor.Start()
	} else {
		logger.Log().Info("activity monitoring disabled")
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Log().WithField("addr", srv.Addr).Info("HTTP server listening")
		errCh <- srv.ListenAndServe()
	}()

	var runErr error
	select {
	case <-ctx.Done():
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			runErr = err
		}
	}

	timeout := s.cfg.Server.ShutdownTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil && runErr == nil {
		runErr = fmt.Errorf("graceful shutdown: %w", err)
	}
	if err := s.monitor.Stop(shutdownCtx); err != nil && runErr == nil {
		runErr = fmt.Errorf("stop monitor: %w", err)
	}
	return runErr
}
