// Package errs defines the ingestion error taxonomy.
//
// Every error surfaced by the pipeline carries one of four kinds:
//   - ErrIO: container unreadable, empty, or unreachable
//   - ErrFormat: payload is not the expected JSON shape
//   - ErrValidation: structurally valid input that breaks a project rule
//   - ErrComponentResolution: a single component could not be resolved (non-fatal)
//
// Kinds are sentinels and are matched with errors.Is:
//
//	if errors.Is(err, errs.ErrValidation) {
//	    // reject input
//	}
package errs

import (
	"errors"
	"fmt"
)

var (
	ErrIO                  = errors.New("io error")
	ErrFormat              = errors.New("format error")
	ErrValidation          = errors.New("validation error")
	ErrComponentResolution = errors.New("component resolution failure")
)

// Error is a classified pipeline error
type Error struct {
	Kind error
	Op   string
	Path string
	Err  error
}

// Error formats as "op path: kind: cause"
func (e *Error) Error() string {
	msg := e.Op
	if e.Path != "" {
		msg += " " + e.Path
	}
	msg += ": " + e.Kind.Error()
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap exposes both the kind and the cause to errors.Is/As
func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func newError(kind error, op, path string, err error) error {
	return &Error{Kind: kind, Op: op, Path: path, Err: err}
}

// IO creates an ErrIO error
func IO(op, path string, err error) error {
	return newError(ErrIO, op, path, err)
}

// Format creates an ErrFormat error
func Format(op, path string, err error) error {
	return newError(ErrFormat, op, path, err)
}

// Validation creates an ErrValidation error with a formatted message
func Validation(op, path, format string, args ...interface{}) error {
	return newError(ErrValidation, op, path, fmt.Errorf(format, args...))
}

// Resolution creates an ErrComponentResolution error
func Resolution(op, component string, err error) error {
	return newError(ErrComponentResolution, op, component, err)
}

// KindOf returns the kind of a classified error, or nil
func KindOf(err error) error {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return nil
}
