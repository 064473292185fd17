// Package registry stores ingested projects for the HTTP API.
//
// Components:
//   - Manager: in-memory project store with digest dedupe and eviction
//   - Seeder: ingests every .aia below a directory on startup
//
// Features:
//   - Projects keyed by prefixed ULID ("prj_...")
//   - BLAKE2b content digests so re-uploading an archive returns the stored project
//   - Oldest-first eviction once the configured limit is reached
//   - Asset references revoked when a project leaves the store
//
// Example Usage:
//
//	manager := registry.NewManager(cfg.Ingest.MaxProjects, logger, metrics.SetProjectsStored)
//	entry, existed := manager.Save(project, "upload.aia", digest)
//	entry, err := manager.Load(entry.ID)
//	projects := manager.List()
package registry
