// Package errs provides standardized error types for the dispatch core.
// It implements a consistent pattern for error creation, formatting, and unwrapping
// that is used throughout the application.
//
// The package includes error types for the core's error taxonomy:
//   - ObjectNotFoundError: unknown order, agent, or wallet
//   - ValueIsRequiredError / ValueIsInvalidError / ValueIsOutOfRangeError: validation failures
//   - InvalidTransitionError: an order status precondition failed
//   - ConflictError: a compare-and-set write lost the race
//   - ForbiddenError: the acting party lacks the required role or assignment
//   - UpstreamUnavailableError: a collaborator (geo index, store) transiently failed
//
// Each error type follows a consistent pattern:
//   - A sentinel error variable (e.g., ErrConflict)
//   - A struct type with fields for error details
//   - Constructor functions with and without cause
//   - Error() method for formatting the error message
//   - Unwrap() method for error wrapping/unwrapping support
//
// Conflicts deserve a note: in the dispatch race they are expected and frequent.
// Callers are meant to branch on errors.Is(err, ErrConflict) and treat the result
// as "order no longer available", not as a failure to alert on.
package errs
