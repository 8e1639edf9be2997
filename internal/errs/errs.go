// Package errs defines the application's error types.
//
// Two layers live here:
//   - Error + Kind: what went wrong, as seen by the service layer
//     (validation, list not found, item not found, store failure).
//   - HTTPError: the single JSON error shape returned to API clients.
//
// ToHTTPError is the one place where kinds are turned into status codes.
package errs
