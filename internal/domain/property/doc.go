// Package property resolves component property lists against descriptor schemas.
//
// Resolve is a pure function. Resolver fans tasks out over a
// workers.Pool, one task per component, and gathers results by index.
package property
