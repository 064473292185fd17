// Package main runs the unchive HTTP service.
//
// The service ingests App Inventor project archives (.aia) uploaded or
// referenced by URL, keeps the resulting project models in memory and
// serves them as JSON, along with summaries, extension descriptions and
// published asset bytes.
//
// Configuration:
//   - Environment variables (12-factor, see internal/infrastructure/config)
//   - CLI flags (override env vars)
//
// Usage:
//
//	./server -port 8000 -catalog ./simple_components.json
//
//	# Development mode (console logs, debug level), preload a directory
//	./server -dev -seed ./projects
//
// Signals:
//   - SIGINT, SIGTERM: Graceful shutdown
package main
