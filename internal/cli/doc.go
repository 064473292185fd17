// Package cli implements the unchive command line.
//
// Commands:
//   - inspect <file|url>: project model as JSON
//   - summary <file|url> --format json|yaml|toml|line: project statistics
//   - extension <aix|aia>: info of every packaged extension
//   - scan <dir>: one summary line per archive found below dir
//
// Every command builds the same ingestion stack as the server through
// internal/bootstrap. Models go to stdout, logs and warnings to stderr.
package cli
