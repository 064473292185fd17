package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	apihttp "github.com/GriffinCanCode/unchive/internal/api/http"
	"github.com/GriffinCanCode/unchive/internal/api/middleware"
	"github.com/GriffinCanCode/unchive/internal/bootstrap"
	"github.com/GriffinCanCode/unchive/internal/domain/registry"
	"github.com/GriffinCanCode/unchive/internal/infrastructure/config"
	"github.com/GriffinCanCode/unchive/internal/infrastructure/logging"
	"github.com/GriffinCanCode/unchive/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/unchive/internal/infrastructure/tracing"
)

// Server wraps the HTTP server and dependencies
type Server struct {
	router *gin.Engine
	http   *http.Server
	app    *bootstrap.App
	logger *logging.Logger
	config *config.Config
}

// NewServer creates a new server instance
func NewServer(cfg *config.Config) (*Server, error) {
	logger := logging.NewFromLevel(cfg.Logging.Level, cfg.Logging.Development)

	logger.Info("Initializing unchive server",
		zap.String("port", cfg.Server.Port),
		zap.String("catalog", firstNonEmpty(cfg.Catalog.URL, cfg.Catalog.Path)),
		zap.Int("workers", cfg.Ingest.Workers),
	)

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	app, err := bootstrap.New(cfg, bootstrap.Options{Logger: logger, Registry: reg, Service: "unchive-server"})
	if err != nil {
		return nil, err
	}

	if cfg.Ingest.SeedDir != "" {
		logger.Info("Seeding projects", zap.String("dir", cfg.Ingest.SeedDir))
		seeder := registry.NewSeeder(app.Projects, app.Ingestor, logger.Logger)
		if _, err := seeder.Seed(context.Background(), cfg.Ingest.SeedDir); err != nil {
			logger.Warn("Failed to seed projects", zap.Error(err))
		}
	}

	if !cfg.Logging.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(tracing.HTTPMiddleware(app.Tracer))
	router.Use(monitoring.Middleware(app.Metrics))
	router.Use(middleware.CORS(middleware.DefaultCORSConfig()))
	if cfg.RateLimit.Enabled {
		logger.Info("Rate limiting enabled",
			zap.Int("rps", cfg.RateLimit.RequestsPerSecond),
			zap.Int("burst", cfg.RateLimit.Burst),
		)
		router.Use(middleware.RateLimit(middleware.RateLimitConfig{
			RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
			Burst:             cfg.RateLimit.Burst,
		}))
	}

	handlers := apihttp.NewHandlers(apihttp.Deps{
		Ingestor: app.Ingestor,
		Fetcher:  app.HTTP,
		Projects: app.Projects,
		Assets:   app.Assets,
		Metrics:  app.Metrics,
		Breaker:  app.HTTP.Breaker(),
		MaxBytes: cfg.Ingest.MaxArchiveBytes,
		Logger:   logger.Logger,
	})
	handlers.Register(router)
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	logger.Info("Server initialized successfully")

	return &Server{
		router: router,
		http: &http.Server{
			Addr:              net.JoinHostPort(cfg.Server.Host, cfg.Server.Port),
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		},
		app:    app,
		logger: logger,
		config: cfg,
	}, nil
}

// Handler returns the root HTTP handler
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run starts the HTTP server and blocks until it stops. A graceful
// Shutdown is not reported as an error.
func (s *Server) Run() error {
	s.logger.Info("Starting HTTP server", zap.String("addr", s.http.Addr))
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

// Shutdown drains in-flight requests, then releases the ingestion stack
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down server...")

	err := s.http.Shutdown(ctx)
	if err != nil {
		s.logger.Error("HTTP shutdown incomplete", zap.Error(err))
	}
	if cerr := s.app.Projects.Clear(ctx); cerr != nil {
		s.logger.Warn("Project store not cleared", zap.Error(cerr))
	}
	_ = s.app.Close()
	return err
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
