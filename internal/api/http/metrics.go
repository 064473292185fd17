package http

import (
	"net/http"
	"time"

	"github.com/GriffinCanCode/unchive/internal/domain/registry"
	"github.com/GriffinCanCode/unchive/internal/infrastructure/monitoring"
	"github.com/gin-gonic/gin"
)

// MetricsSnapshot represents a JSON view of service metrics
type MetricsSnapshot struct {
	Timestamp time.Time           `json:"timestamp"`
	Ingest    monitoring.Snapshot `json:"ingest"`
	Projects  registry.Stats      `json:"projects"`
	Assets    int                 `json:"assets"`
	Fetch     gin.H               `json:"fetch,omitempty"`
}

// MetricsSnapshot returns current metric values as JSON
func (h *Handlers) MetricsSnapshot(c *gin.Context) {
	snap := MetricsSnapshot{
		Timestamp: time.Now(),
		Projects:  h.projects.Stats(),
		Assets:    h.assets.Len(),
	}
	if h.metrics != nil {
		snap.Ingest = h.metrics.Snapshot()
	}
	if h.breaker != nil {
		snap.Fetch = breakerStatus(h.breaker)
	}
	c.JSON(http.StatusOK, snap)
}
