// Package httpclient fetches remote archives and catalogs.
//
// Requests go through a rate limiter, a consecutive-failure circuit
// breaker and a retryable transport. Every failure is an errs.ErrIO.
package httpclient
