// Package ingest runs the project ingestion pipeline.
//
//	open -> classify -> {extensions, catalog prefetch} -> screens -> assets
//
// Screens are built concurrently and returned in archive order. Each
// stage opens a tracing span; outcomes go to an optional Recorder.
package ingest
