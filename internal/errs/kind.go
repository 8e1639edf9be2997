package errs

import (
	"fmt"

	"github.com/pkg/errors"
)

// Kind classifies a failure so callers can switch on it directly instead
// of testing error identities one by one.
type Kind uint8

const (
	KindUnknown Kind = iota
	KindValidation
	KindListNotFound
	KindItemNotFound
	KindStore
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindListNotFound:
		return "list_not_found"
	case KindItemNotFound:
		return "item_not_found"
	case KindStore:
		return "store"
	default:
		return "unknown"
	}
}

// Error is a classified application error.
//
// Message is safe to show to clients for every kind except KindStore,
// whose message only goes to the logs together with Err.
type Error struct {
	Kind    Kind
	Message string
	Fields  []FieldError
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the kind of the first *Error in err's chain, or KindUnknown.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindUnknown
}

// Validation reports a malformed request. fields names every offending field.
func Validation(message string, fields []FieldError) *Error {
	return &Error{Kind: KindValidation, Message: message, Fields: fields}
}

// ListNotFound reports that listID does not resolve to a stored list.
func ListNotFound(listID string) *Error {
	return &Error{Kind: KindListNotFound, Message: fmt.Sprintf("List not found, ID: %s", listID)}
}

// ItemNotFound reports that itemID is not part of the resolved list.
func ItemNotFound(itemID string) *Error {
	return &Error{Kind: KindItemNotFound, Message: fmt.Sprintf("List item not found, ID: %s", itemID)}
}

// Store wraps a persistence failure. The stack is captured here so the
// global error handler can log where the store call was made from.
func Store(message string, err error) *Error {
	return &Error{Kind: KindStore, Message: message, Err: errors.WithStack(err)}
}

var (
	codeListNotFound = "LIST_NOT_FOUND"
	codeItemNotFound = "ITEM_NOT_FOUND"
)

// ToHTTPError renders any error as the client-facing HTTPError.
//
//	KindValidation    -> 400 BAD_REQUEST with field errors
//	KindListNotFound  -> 400 LIST_NOT_FOUND
//	KindItemNotFound  -> 400 ITEM_NOT_FOUND
//	KindStore/unknown -> 500 with a generic message
func ToHTTPError(err error) *HTTPError {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr
	}

	var appErr *Error
	if !errors.As(err, &appErr) {
		return NewInternalServerError()
	}

	switch appErr.Kind {
	case KindValidation:
		return NewBadRequestError(appErr.Message, true, nil, appErr.Fields, nil)
	case KindListNotFound:
		return NewBadRequestError(appErr.Message, true, &codeListNotFound, nil, nil)
	case KindItemNotFound:
		return NewBadRequestError(appErr.Message, true, &codeItemNotFound, nil, nil)
	default:
		return NewInternalServerError()
	}
}
