// Package errs provides the error types shared across the marketplace service.
//
// Every type follows the same pattern:
//   - a sentinel error variable (e.g. ErrValueIsRequired)
//   - a struct type carrying the details and an optional cause
//   - constructors with and without cause
//   - Error() for formatting and Unwrap() returning the sentinel
//
// The sentinels group into the categories the transport layer maps to status codes:
//   - validation: ErrValueIsRequired, ErrValueIsInvalid, ErrValueIsOutOfRange, ErrInsufficientStock
//   - authorization: ErrAccessDenied
//   - state conflict: ErrStateConflict, ErrConcurrentModification
//   - not found: ErrObjectNotFound
//
// Anything else is treated as an internal failure.
package errs
