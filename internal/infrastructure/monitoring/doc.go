/*
Package monitoring provides Prometheus metrics for the HTTP API and the
ingestion pipeline.

# Metrics

  - unchive_http_requests_total, unchive_http_request_duration_seconds
  - unchive_ingest_archives_total{status}, unchive_ingest_duration_seconds
  - unchive_ingest_screens_total
  - unchive_ingest_components_total{origin}, unchive_ingest_components_faulty_total
  - unchive_catalog_fetches_total{status}
  - unchive_projects_stored, unchive_assets_published

# Usage

	metrics := monitoring.NewMetrics(prometheus.DefaultRegisterer)
	router.Use(monitoring.Middleware(metrics))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

Metrics satisfies the ingest and catalog recorder interfaces.
*/
package monitoring
