// Package http exposes the ingestion pipeline over a gin REST API.
//
// Routes:
//
//	POST   /projects              ingest a multipart "file" or {"url": ...}
//	GET    /projects              list stored projects
//	GET    /projects/:id          project model
//	GET    /projects/:id/summary  summary (?format=json|yaml|toml)
//	DELETE /projects/:id          drop a project and revoke its assets
//	POST   /extensions            describe an uploaded .aix
//	GET    /assets/:ref           serve a published asset
//	DELETE /assets/:ref           revoke an asset reference
//	GET    /health, /metrics/json
//
// Validation and format errors map to 422, IO errors to 400 and unknown
// projects to 404.
package http
