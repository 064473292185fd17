package bootstrap

import (
	"testing"

	"github.com/GriffinCanCode/unchive/internal/domain/catalog"
	"github.com/GriffinCanCode/unchive/internal/infrastructure/config"
	"github.com/GriffinCanCode/unchive/internal/infrastructure/httpclient"
	"github.com/GriffinCanCode/unchive/internal/infrastructure/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNew(t *testing.T) {
	cfg := config.Default()
	cfg.Ingest.Workers = 3

	app, err := New(cfg, Options{Logger: &logging.Logger{Logger: zap.NewNop()}})
	require.NoError(t, err)
	defer app.Close()

	assert.Equal(t, 3, app.Pool.Size())
	assert.Equal(t, catalog.DefaultNamespace, app.Catalog.Namespace())
	assert.NotNil(t, app.Ingestor)
	assert.Zero(t, app.Projects.Len())

	families, err := app.Registry.Gather()
	require.NoError(t, err)
	assert.NotNil(t, families)
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Ingest.Workers = 0

	_, err := New(cfg, Options{})
	assert.Error(t, err)
}

func TestCatalogFetcher(t *testing.T) {
	client := httpclient.NewClient(httpclient.Config{})

	f := catalogFetcher(config.CatalogConfig{Path: "catalog.json"}, client)
	assert.Equal(t, catalog.FileFetcher("catalog.json"), f)

	f = catalogFetcher(config.CatalogConfig{Path: "catalog.json", URL: "https://example.com/c.json"}, client)
	assert.Equal(t, "https://example.com/c.json", f.String())
}
