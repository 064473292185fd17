// Package server assembles the gin HTTP server: middleware in the order
// recovery, tracing, metrics, CORS, rate limit; the API routes; and the
// Prometheus /metrics endpoint.
package server
