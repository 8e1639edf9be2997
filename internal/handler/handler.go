// Package handler is the HTTP layer of the service.
//
// Handlers receive requests bound and validated by the generic Handle
// pipeline, call the service layer and choose the response status.
package handler
