// Package logging provides structured logging using uber/zap.
//
// Two modes:
//   - Production: JSON output for machine parsing
//   - Development: Colored console output for human readability
//
// Logs go to stderr by default so the CLI can write models to stdout.
// Domain services take a plain *zap.Logger; pass logger.Logger or use
// OrNop for optional loggers.
//
// Example Usage:
//
//	logger := logging.NewDefault()
//	logger.Info("Ingestion finished", zap.Int("screens", 3))
//	logger.Warn("Extension entry skipped", zap.String("entry", name), zap.Error(err))
package logging
