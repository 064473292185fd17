// Package middleware provides the HTTP middleware of the ingestion API:
// CORS and per-IP rate limiting. Recovery, tracing and metrics middleware
// live with their infrastructure packages.
package middleware
