package server

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/GriffinCanCode/unchive/internal/infrastructure/config"
	"github.com/GriffinCanCode/unchive/internal/infrastructure/tracing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newServer(t *testing.T, mutate func(*config.Config)) *Server {
	t.Helper()
	path := filepath.Join(t.TempDir(), "simple_components.json")
	require.NoError(t, os.WriteFile(path, []byte(`[]`), 0o644))

	cfg := config.Default()
	cfg.Catalog.Path = path
	cfg.Logging.Level = "error"
	cfg.Ingest.Workers = 1
	if mutate != nil {
		mutate(cfg)
	}

	s, err := NewServer(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Shutdown(context.Background()) })
	return s
}

func TestRoutes(t *testing.T) {
	s := newServer(t, nil)

	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get(tracing.HeaderTraceID))

	w = httptest.NewRecorder()
	s.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	body, err := io.ReadAll(w.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "unchive_http_requests_total")
	assert.Contains(t, string(body), "go_goroutines")
}

func TestRateLimit(t *testing.T) {
	s := newServer(t, func(cfg *config.Config) {
		cfg.RateLimit.RequestsPerSecond = 1
		cfg.RateLimit.Burst = 1
	})

	codes := make([]int, 0, 3)
	for range 3 {
		w := httptest.NewRecorder()
		s.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
		codes = append(codes, w.Code)
	}
	assert.Equal(t, http.StatusOK, codes[0])
	assert.Contains(t, codes[1:], http.StatusTooManyRequests)
}

func TestSeedOnStartup(t *testing.T) {
	s := newServer(t, func(cfg *config.Config) {
		cfg.Ingest.SeedDir = filepath.Join(t.TempDir(), "missing")
	})
	assert.Zero(t, s.app.Projects.Len())
}
