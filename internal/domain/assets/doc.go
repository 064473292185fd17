// Package assets publishes project asset payloads under opaque references
// so they can be served by the HTTP API until explicitly revoked.
package assets
