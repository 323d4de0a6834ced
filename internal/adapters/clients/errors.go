// Package clients provides the instrumented HTTP transport shared by the
// content API and asset storage adapters.
package clients

import "errors"

// Transport-level failures. Adapters translate these into domain errors.
var (
	// ErrCircuitOpen means the breaker for the downstream is open and the
	// request was not sent.
	ErrCircuitOpen = errors.New("circuit breaker open")

	// ErrMaxRetriesExceeded wraps the last failure once every attempt failed.
	ErrMaxRetriesExceeded = errors.New("max retries exceeded")
)
