// Package errs contains sentinel errors used across layers for stable error mapping.
package errs

import "errors"

// Common sentinels across client/repo/service layers.
var (
	// ErrNotFound indicates the requested medicine does not exist.
	ErrNotFound = errors.New("not found")

	// ErrValidation marks input rejected before it reaches storage or the wire.
	// Wrapped errors read as "validation: <reason>".
	ErrValidation = errors.New("validation")

	// ErrFetchFailed indicates a request to the inventory API failed
	// (transport error or non-2xx response).
	ErrFetchFailed = errors.New("fetch failed")
)
