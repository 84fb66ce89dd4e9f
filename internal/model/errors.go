package model

import (
	"errors"
	"fmt"
)

// Sentinel errors shared across components. Each component returns its own
// kind; only the outer gateways turn kinds into user-facing text.
var (
	// ErrInvalidRequest marks malformed or missing required fields. Nothing
	// was attempted.
	ErrInvalidRequest = errors.New("invalid request")

	// ErrInvalidVideoMetadata is returned by the composer for an empty title
	// or URL. It refuses to emit a degraded notification.
	ErrInvalidVideoMetadata = errors.New("invalid video metadata")

	// ErrStorageIO marks a failed configuration write. Retryable, never
	// swallowed.
	ErrStorageIO = errors.New("storage write failed")

	// ErrTransport marks a delivery attempt with no interpretable response:
	// network failure, timeout or malformed body.
	ErrTransport = errors.New("delivery transport failed")
)

// RejectionError is an explicit failure acknowledgment from the destination
// endpoint, e.g. a bad channel id or missing permissions. Reason carries the
// endpoint's message verbatim.
type RejectionError struct {
	Reason string
}

func (e *RejectionError) Error() string {
	return fmt.Sprintf("destination rejected message: %s", e.Reason)
}

// AsRejection unwraps err into a RejectionError if it is one.
func AsRejection(err error) (*RejectionError, bool) {
	var rej *RejectionError
	if errors.As(err, &rej) {
		return rej, true
	}
	return nil, false
}
