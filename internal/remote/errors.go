package remote

import (
	"errors"
	"fmt"
)

// ErrEntitlementRequired is returned when the backend rejects an operation
// because the account tier does not allow it. It is terminal for the current
// run: the orchestrator stops dispatching and surfaces a single upgrade
// prompt instead of per-record errors.
//
// The sentinel is set only at this boundary; downstream code must match it
// with errors.Is and never re-derive the condition from message text.
var ErrEntitlementRequired = errors.New("entitlement required")

// NetworkError reports a transport-level failure: no HTTP response was
// obtained at all. Potentially retryable by the caller.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error: %v", e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// APIError reports a backend rejection that is not entitlement-related.
// During batch processing it is recorded per record and the run continues.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error: status %d: %s", e.Status, e.Message)
}
