package bootstrap

import (
	"fmt"

	"github.com/GriffinCanCode/unchive/internal/domain/archive"
	"github.com/GriffinCanCode/unchive/internal/domain/assets"
	"github.com/GriffinCanCode/unchive/internal/domain/catalog"
	"github.com/GriffinCanCode/unchive/internal/domain/ingest"
	"github.com/GriffinCanCode/unchive/internal/domain/property"
	"github.com/GriffinCanCode/unchive/internal/domain/registry"
	"github.com/GriffinCanCode/unchive/internal/domain/tree"
	"github.com/GriffinCanCode/unchive/internal/infrastructure/config"
	"github.com/GriffinCanCode/unchive/internal/infrastructure/httpclient"
	"github.com/GriffinCanCode/unchive/internal/infrastructure/logging"
	"github.com/GriffinCanCode/unchive/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/unchive/internal/infrastructure/tracing"
	"github.com/GriffinCanCode/unchive/internal/infrastructure/workers"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// Options overrides parts of the wiring
type Options struct {
	// Logger replaces the logger built from config
	Logger *logging.Logger
	// Registry receives the metrics; nil creates a fresh registry
	Registry *prometheus.Registry
	// Service names the tracer
	Service string
}

// App holds the wired ingestion stack shared by the server and the CLI.
type App struct {
	Config   *config.Config
	Logger   *logging.Logger
	Registry *prometheus.Registry
	Metrics  *monitoring.Metrics
	Tracer   *tracing.Tracer
	HTTP     *httpclient.Client
	Catalog  *catalog.Catalog
	Pool     *workers.Pool
	Ingestor *ingest.Ingestor
	Assets   *assets.Store
	Projects *registry.Manager
}

// New builds the stack from cfg
func New(cfg *config.Config, opts Options) (*App, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	logger := opts.Logger
	if logger == nil {
		logger = logging.NewFromLevel(cfg.Logging.Level, cfg.Logging.Development)
	}
	reg := opts.Registry
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	service := opts.Service
	if service == "" {
		service = "unchive"
	}

	metrics := monitoring.NewMetrics(reg)
	tracer := tracing.New(service, logger.Logger)

	client := httpclient.NewClient(httpclient.Config{
		Timeout:   cfg.Fetch.Timeout,
		Retries:   cfg.Fetch.Retries,
		RPS:       cfg.Fetch.RPS,
		UserAgent: cfg.Fetch.UserAgent,
		MaxBytes:  cfg.Ingest.MaxArchiveBytes,
	})

	cat := catalog.New(catalogFetcher(cfg.Catalog, client), cfg.Catalog.Namespace,
		catalog.WithLogger(logger.Logger),
		catalog.WithRecorder(metrics))

	pool := workers.NewPool(cfg.Ingest.Workers, logger.Logger)
	resolver := property.NewResolver(pool, logger.Logger)
	framing := tree.Framing{Header: cfg.Ingest.SchemeHeader, Footer: cfg.Ingest.SchemeFooter}
	builder := tree.NewBuilder(cat, resolver, framing, logger.Logger)

	store := assets.NewStore(logger.Logger, metrics.SetAssetsPublished)
	projects := registry.NewManager(cfg.Ingest.MaxProjects, logger.Logger, metrics.SetProjectsStored)

	ingestor := ingest.New(
		archive.NewOpener(client, cfg.Ingest.MaxArchiveBytes, logger.Logger),
		cat,
		builder,
		ingest.WithPublisher(store),
		ingest.WithRecorder(metrics),
		ingest.WithTracer(tracer),
		ingest.WithLogger(logger.Logger),
	)

	logger.Debug("Ingestion stack ready",
		zap.String("catalog", cat.Namespace()),
		zap.Int("workers", pool.Size()),
		zap.Int("max_projects", cfg.Ingest.MaxProjects))

	return &App{
		Config:   cfg,
		Logger:   logger,
		Registry: reg,
		Metrics:  metrics,
		Tracer:   tracer,
		HTTP:     client,
		Catalog:  cat,
		Pool:     pool,
		Ingestor: ingestor,
		Assets:   store,
		Projects: projects,
	}, nil
}

// Close stops the worker pool and flushes spans and logs
func (a *App) Close() error {
	a.Pool.Close()
	a.Tracer.Close()
	_ = a.Logger.Sync()
	return nil
}

// catalogFetcher prefers the URL when one is configured
func catalogFetcher(cfg config.CatalogConfig, client *httpclient.Client) catalog.Fetcher {
	if cfg.URL != "" {
		return catalog.HTTPFetcher{Client: client, URL: cfg.URL}
	}
	return catalog.FileFetcher(cfg.Path)
}
