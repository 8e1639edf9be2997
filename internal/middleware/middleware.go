// Package middleware holds the Echo middleware of the service and the
// global error handler.
//
// Cross-cutting concerns live here: request ids, request-scoped loggers,
// access logging, New Relic transactions, rate limiting, CORS and panic
// recovery.
package middleware
