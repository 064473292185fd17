// Package utils holds small shared helpers: content digests for archive
// dedupe and input validation for API parameters.
package utils
