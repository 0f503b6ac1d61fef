package snapshot

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingParameter means the caller did not supply a state.
	ErrMissingParameter = errors.New("missing state")

	// ErrConfiguration means a provider credential is not set. Nothing was sent upstream.
	ErrConfiguration = errors.New("provider credential not configured")

	// ErrNotFound is returned by stores for unknown snapshot ids.
	ErrNotFound = errors.New("snapshot not found")
)

// UpstreamError is a non-success response from a provider.
type UpstreamError struct {
	Provider string
	Status   int
	Err      error
}

func (e *UpstreamError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s returned status %d: %v", e.Provider, e.Status, e.Err)
	}
	return fmt.Sprintf("%s returned status %d", e.Provider, e.Status)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// NetworkError is a transport failure reaching a provider: DNS, timeout, reset,
// or a provider whose circuit breaker is open.
type NetworkError struct {
	Provider string
	Err      error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s request failed: %v", e.Provider, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// AggregationError is a failure in the merge or persist step.
type AggregationError struct {
	Err error
}

func (e *AggregationError) Error() string {
	return fmt.Sprintf("snapshot aggregation failed: %v", e.Err)
}

func (e *AggregationError) Unwrap() error { return e.Err }
