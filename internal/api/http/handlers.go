package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/GriffinCanCode/unchive/internal/domain/archive"
	"github.com/GriffinCanCode/unchive/internal/domain/assets"
	"github.com/GriffinCanCode/unchive/internal/domain/extension"
	"github.com/GriffinCanCode/unchive/internal/domain/registry"
	"github.com/GriffinCanCode/unchive/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/unchive/internal/infrastructure/resilience"
	"github.com/GriffinCanCode/unchive/internal/shared/errs"
	"github.com/GriffinCanCode/unchive/internal/shared/types"
	"github.com/GriffinCanCode/unchive/internal/shared/utils"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Version is reported by the root endpoint
const Version = "1.0.0"

// Ingestor builds project models and extension registries
type Ingestor interface {
	Ingest(ctx context.Context, src archive.Source, name string) (*types.Project, error)
	ReadExtensions(ctx context.Context, src archive.Source) (*extension.Registry, error)
}

// Deps are the services behind the handlers
type Deps struct {
	Ingestor Ingestor
	// Fetcher downloads archives submitted by URL; nil disables URL ingestion
	Fetcher  archive.Fetcher
	Projects *registry.Manager
	Assets   *assets.Store
	Metrics  *monitoring.Metrics
	// Breaker guards remote fetches and is reported by the health endpoints
	Breaker  *resilience.Breaker
	MaxBytes int64
	Logger   *zap.Logger
}

// Handlers contains all HTTP handlers
type Handlers struct {
	ingestor Ingestor
	fetcher  archive.Fetcher
	projects *registry.Manager
	assets   *assets.Store
	metrics  *monitoring.Metrics
	breaker  *resilience.Breaker
	hasher   *utils.Hasher
	maxBytes int64
	logger   *zap.Logger
	started  time.Time
}

// NewHandlers creates a new handler set
func NewHandlers(d Deps) *Handlers {
	logger := d.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handlers{
		ingestor: d.Ingestor,
		fetcher:  d.Fetcher,
		projects: d.Projects,
		assets:   d.Assets,
		metrics:  d.Metrics,
		breaker:  d.Breaker,
		hasher:   utils.DefaultHasher(),
		maxBytes: d.MaxBytes,
		logger:   logger,
		started:  time.Now(),
	}
}

// Register mounts the API routes on r
func (h *Handlers) Register(r gin.IRouter) {
	r.GET("/", h.Root)
	r.GET("/health", h.Health)

	r.POST("/projects", h.CreateProject)
	r.GET("/projects", h.ListProjects)
	r.GET("/projects/:id", h.GetProject)
	r.GET("/projects/:id/summary", h.GetSummary)
	r.DELETE("/projects/:id", h.DeleteProject)

	r.POST("/extensions", h.DescribeExtensions)

	r.GET("/assets/:ref", h.GetAsset)
	r.DELETE("/assets/:ref", h.RevokeAsset)

	r.GET("/metrics/json", h.MetricsSnapshot)
}

// Root handles the service banner
func (h *Handlers) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "online",
		"service": "unchive",
		"version": Version,
	})
}

// Health handles detailed health check
func (h *Handlers) Health(c *gin.Context) {
	body := gin.H{
		"status":   "healthy",
		"uptime":   time.Since(h.started).Round(time.Second).String(),
		"projects": h.projects.Stats(),
		"assets":   h.assets.Len(),
	}
	if h.breaker != nil {
		body["fetch"] = breakerStatus(h.breaker)
	}
	c.JSON(http.StatusOK, body)
}

func breakerStatus(b *resilience.Breaker) gin.H {
	snap := b.Snapshot()
	return gin.H{
		"name":                 b.Name(),
		"state":                snap.State.String(),
		"consecutive_failures": snap.ConsecutiveFailures,
		"rejected":             snap.Rejected,
	}
}

// fail writes err with the status its kind maps to
func (h *Handlers) fail(c *gin.Context, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("Request failed", zap.String("path", c.FullPath()), zap.Error(err))
	} else {
		h.logger.Debug("Request rejected", zap.String("path", c.FullPath()), zap.Int("status", status), zap.Error(err))
	}
	c.AbortWithStatusJSON(status, gin.H{
		"error": err.Error(),
		"kind":  kindName(err),
	})
}

func badRequest(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": msg})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, registry.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, errs.ErrValidation), errors.Is(err, errs.ErrFormat):
		return http.StatusUnprocessableEntity
	case errors.Is(err, resilience.ErrCircuitOpen):
		return http.StatusServiceUnavailable
	case errors.Is(err, errs.ErrIO):
		return http.StatusBadRequest
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, context.Canceled):
		return http.StatusRequestTimeout
	default:
		return http.StatusInternalServerError
	}
}

func kindName(err error) string {
	switch errs.KindOf(err) {
	case errs.ErrIO:
		return "io"
	case errs.ErrFormat:
		return "format"
	case errs.ErrValidation:
		return "validation"
	case errs.ErrComponentResolution:
		return "resolution"
	}
	if errors.Is(err, registry.ErrNotFound) {
		return "not_found"
	}
	return "internal"
}
