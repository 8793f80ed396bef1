// Package server is the HTTP gateway that fronts the dashboard: it
// guards page navigations, brokers login, logout, token refresh and
// CSRF tokens against the backend, and serves the dashboard settings.
package server

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httputil"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/dashgate-dev/dashgate/internal/backend"
	"github.com/dashgate-dev/dashgate/internal/config"
	"github.com/dashgate-dev/dashgate/internal/guard"
	"github.com/dashgate-dev/dashgate/internal/session"
	"github.com/dashgate-dev/dashgate/internal/settings"
)

// Server represents the HTTP gateway
type Server struct {
	router          *gin.Engine
	db              *gorm.DB
	config          *config.Config
	logger          zerolog.Logger
	validator       *validator.Validate
	sessions        *session.Store
	backend         *backend.Client
	guard           *guard.Guard
	routes          *guard.RouteTable
	settingsService *settings.Service
	proxy           *httputil.ReverseProxy
	version         string
}

// New creates a new gateway instance
func New(cfg *config.Config, zlog zerolog.Logger, version string) (*Server, error) {
	db, err := initDatabase(cfg, zlog)
	if err != nil {
		return nil, err
	}

	if err := settings.AutoMigrate(db); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	routes, err := loadRouteTable(cfg, zlog)
	if err != nil {
		return nil, err
	}

	backendURL, err := url.Parse(cfg.Backend.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid backend URL: %w", err)
	}

	sessions := session.NewStore(session.Config{
		CookieName:   cfg.Auth.CookieName,
		HeaderName:   cfg.Auth.HeaderName,
		WriteDomains: cfg.Auth.WriteDomains,
		Secure:       cfg.Auth.HTTPSMode,
	})

	backendClient := backend.New(cfg.Backend.URL)
	backendClient.SetCSRFHeader(cfg.Auth.CSRFHeaderName)

	validate := validator.New()

	server := &Server{
		db:              db,
		config:          cfg,
		logger:          zlog,
		validator:       validate,
		sessions:        sessions,
		backend:         backendClient,
		guard:           guard.New(cfg.Auth.LoginPageEnabled, zlog),
		routes:          routes,
		settingsService: settings.NewService(db, zlog),
		proxy:           httputil.NewSingleHostReverseProxy(backendURL),
		version:         version,
	}

	server.setupRouter()

	return server, nil
}

// initDatabase initializes the settings database connection
func initDatabase(cfg *config.Config, zlog zerolog.Logger) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(cfg.Database.URL), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Error),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	// The settings store is tiny; WAL still helps concurrent readers.
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA foreign_keys=1",
	}
	for _, pragma := range pragmas {
		if err := db.Exec(pragma).Error; err != nil {
			zlog.Warn().Str("pragma", pragma).Err(err).Msg("Failed to apply pragma")
		}
	}

	return db, nil
}

func loadRouteTable(cfg *config.Config, zlog zerolog.Logger) (*guard.RouteTable, error) {
	if cfg.Routes.File == "" {
		zlog.Debug().Msg("No route table configured, using the built-in table")
		return guard.DefaultTable(), nil
	}

	routes, err := guard.LoadRoutes(cfg.Routes.File)
	if err != nil {
		return nil, fmt.Errorf("failed to load route table: %w", err)
	}

	zlog.Info().Str("file", cfg.Routes.File).Msg("Loaded route table")
	return routes, nil
}

// setupRouter configures the Gin router with routes and middleware
func (s *Server) setupRouter() {
	gin.SetMode(gin.ReleaseMode)

	s.router = gin.New()
	s.router.Use(gin.Recovery())
	s.router.Use(s.loggingMiddleware())

	s.router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:5173"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", s.config.Auth.HeaderName, s.config.Auth.CSRFHeaderName},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Health check endpoint (no auth required)
	s.router.GET("/health", s.healthCheck)

	api := s.router.Group("/api/v1")
	{
		// Auth endpoints (open: the policy itself decides)
		api.POST("/login", s.login)
		api.POST("/logout", s.logout)
		api.GET("/login/status", s.loginStatus)
		api.POST("/token/refresh", s.refreshToken)
		api.GET("/csrftoken/:action", s.csrfToken)

		// Settings & title
		api.GET("/settings", s.getSettings)
		api.GET("/title", s.getTitle)
		api.PUT("/settings", s.requireAuthenticated(), s.updateSettings)
	}

	// Every remaining path is a page navigation and goes through the
	// redirect policy before being proxied to the dashboard.
	s.router.NoRoute(s.navigate)
}

// @Router /health [get]
// @Success 200 {object} map[string]interface{}
func (s *Server) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "online",
		"timestamp": time.Now().UTC(),
		"service":   "dashgate",
		"version":   s.version,
	})
}

// GetDB returns the database connection
func (s *Server) GetDB() *gorm.DB {
	return s.db
}

// Handler returns the configured router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start starts the HTTP server and blocks until shutdown
func (s *Server) Start() error {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	srv := &http.Server{
		Addr:              s.config.Server.ListenAddr,
		Handler:           s.router,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      60 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       300 * time.Second,
	}

	go func() {
		s.logger.Info().Str("addr", s.config.Server.ListenAddr).Msg("Starting HTTP server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Error().Err(err).Msg("HTTP server error")
		}
	}()

	<-sigChan
	s.logger.Info().Msg("Received shutdown signal, shutting down gracefully...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		s.logger.Error().Err(err).Msg("Error shutting down HTTP server")
		return err
	}

	if sqlDB, err := s.db.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			s.logger.Error().Err(err).Msg("Error closing database")
		}
	}

	s.logger.Info().Msg("Server shutdown complete")
	return nil
}

// loggingMiddleware creates a custom logging middleware using zerolog
func (s *Server) loggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		s.logger.Info().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("duration", time.Since(start)).
			Str("client_ip", c.ClientIP()).
			Msg("HTTP request")
	}
}
