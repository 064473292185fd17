// Package config provides 12-factor configuration for the ingestion service and CLI.
//
// Configuration is loaded from environment variables with sensible defaults.
// CLI flags can override environment variables.
//
// Configuration Sections:
//   - Server: HTTP server settings (port, host)
//   - Logging: Log level and output format
//   - RateLimit: Per-IP rate limiting for the HTTP API
//   - Catalog: Built-in descriptor catalog location and namespace
//   - Ingest: Worker pool size, archive size limit, scheme framing
//   - Fetch: Remote fetch timeout, retries and rate
//
// Example Usage:
//
//	cfg := config.LoadOrDefault()
//	fmt.Printf("Catalog namespace: %s\n", cfg.Catalog.Namespace)
//
// Environment Variables:
//   - PORT, HOST, LOG_LEVEL, LOG_DEV
//   - RATE_LIMIT_RPS, RATE_LIMIT_BURST, RATE_LIMIT_ENABLED
//   - CATALOG_PATH, CATALOG_URL, CATALOG_NAMESPACE
//   - INGEST_WORKERS, INGEST_MAX_ARCHIVE_BYTES, INGEST_SCHEME_HEADER, INGEST_SCHEME_FOOTER, INGEST_MAX_PROJECTS, INGEST_SEED_DIR
//   - FETCH_TIMEOUT, FETCH_RETRIES, FETCH_RPS, FETCH_USER_AGENT
package config
