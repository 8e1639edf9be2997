// Package validation contains the logic for validating
// request data.
//
// It uses the `validator` library to enforce rules (like
// required fields or minimum lengths) defined in struct tags,
// merges them with hand-written checks that tags cannot express,
// and extracts validation errors into a format the client can
// understand.
package validation
