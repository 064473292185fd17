// Package bootstrap wires configuration into the ingestion stack used by
// both cmd/server and cmd/unchive.
package bootstrap
