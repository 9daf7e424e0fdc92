package errs

import (
	"errors"
	"fmt"
)

// ErrUpstreamUnavailable is the sentinel error for transient collaborator failures.
var ErrUpstreamUnavailable = errors.New("upstream unavailable")

// UpstreamUnavailableError reports a transient failure of an external
// collaborator such as the geo index or the persistent store.
type UpstreamUnavailableError struct {
	Upstream string
	Cause    error
}

// NewUpstreamUnavailableError creates an UpstreamUnavailableError without an underlying cause.
func NewUpstreamUnavailableError(upstream string) *UpstreamUnavailableError {
	return &UpstreamUnavailableError{Upstream: upstream}
}

// NewUpstreamUnavailableErrorWithCause creates an UpstreamUnavailableError wrapping an underlying cause.
func NewUpstreamUnavailableErrorWithCause(upstream string, cause error) *UpstreamUnavailableError {
	return &UpstreamUnavailableError{Upstream: upstream, Cause: cause}
}

func (e *UpstreamUnavailableError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %s)", ErrUpstreamUnavailable, e.Upstream, e.Cause)
	}
	return fmt.Sprintf("%s: %s", ErrUpstreamUnavailable, e.Upstream)
}

func (e *UpstreamUnavailableError) Unwrap() error {
	return ErrUpstreamUnavailable
}
