package port

import (
	"errors"
	"fmt"
)

// Sentinel errors used across ports.
var (
	// ErrIndexUnavailable means a query arrived before any index has ever
	// been built. Surfaced to the caller as "not ready", never retried here.
	ErrIndexUnavailable = errors.New("embedding index not ready")

	// ErrGenerationTimeout means the model did not answer within the deadline.
	// Callers may wait and re-issue the same request.
	ErrGenerationTimeout = errors.New("generation timed out")

	// ErrGenerationTransport means the model endpoint could not be reached or
	// dropped the connection. Callers should fail fast.
	ErrGenerationTransport = errors.New("generation transport failure")
)

// DataFormatError reports a malformed dataset: a missing required field, a
// non-integer usage metric, or source data that is not a record array at all.
// Fatal at startup, recoverable at refresh (the previous snapshot stays
// active).
type DataFormatError struct {
	Record int    // zero-based position in the source data; -1 for dataset-level failures
	Field  string
	Reason string
}

func (e *DataFormatError) Error() string {
	if e.Record < 0 {
		return "malformed dataset: " + e.Reason
	}
	return fmt.Sprintf("record %d: field %q: %s", e.Record, e.Field, e.Reason)
}
