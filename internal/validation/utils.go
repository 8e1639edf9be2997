package validation

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/deppfellow/shopping-list/internal/errs"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// Validatable is implemented by request payload types that know how to validate themselves.
//
// Typical pattern:
//   - Define a request struct with validator tags (`validate:"required,min=1"`)
//   - Implement Validate() error that calls Merge(Struct(req), customChecks...)
type Validatable interface {
	Validate() error
}

// CustomValidationError represents a single validation issue for a specific field.
// This is used for validation errors that cannot be expressed via validator tags.
type CustomValidationError struct {
	Field   string
	Message string
}

// CustomValidationErrors is a slice of custom validation errors that satisfies error.
type CustomValidationErrors []CustomValidationError

func (c CustomValidationErrors) Error() string {
	return "Validation failed"
}

// Add appends a field error.
func (c *CustomValidationErrors) Add(field, message string) {
	*c = append(*c, CustomValidationError{Field: field, Message: message})
}

var validate = newValidator()

// newValidator reports field names the way clients send them: the `param`
// tag for path parameters, the `json` tag otherwise.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		if name := field.Tag.Get("param"); name != "" {
			return name
		}
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return field.Name
		}
		return name
	})
	return v
}

// Struct runs tag-based validation on v.
func Struct(v any) error {
	return validate.Struct(v)
}

// Merge flattens tag errors and custom errors into one CustomValidationErrors,
// so a request with several problems reports all of them at once.
// It returns nil when there is nothing to report.
func Merge(errList ...error) error {
	var merged CustomValidationErrors

	for _, err := range errList {
		if err == nil {
			continue
		}
		for _, fieldErr := range fieldErrors(err) {
			merged.Add(fieldErr.Field, fieldErr.Error)
		}
	}

	if len(merged) == 0 {
		return nil
	}
	return merged
}

// BindAndValidate binds request data into payload and validates it.
//
// Flow:
//  1. c.Bind(payload) populates the request struct from path params and body.
//  2. payload.Validate() applies validation rules.
//  3. Any failure becomes an *errs.Error of KindValidation; the store is
//     never reached.
//
// NOTE: c.Bind expects a pointer to a struct.
func BindAndValidate(c echo.Context, payload Validatable) error {
	if err := c.Bind(payload); err != nil {
		return errs.Validation(bindErrorMessage(err), nil)
	}

	if err := payload.Validate(); err != nil {
		return errs.Validation(validationMessage(err), fieldErrors(err))
	}

	return nil
}

func bindErrorMessage(err error) string {
	var echoErr *echo.HTTPError
	if errors.As(err, &echoErr) {
		if msg, ok := echoErr.Message.(string); ok {
			return "Malformed request: " + msg
		}
	}
	return "Malformed request."
}

// validationMessage names each offending field in one line, e.g.
// "Validation failed: items is required; date is not allowed".
func validationMessage(err error) string {
	fields := fieldErrors(err)
	if len(fields) == 0 {
		return "Validation failed: " + err.Error()
	}

	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, f.Field+" "+f.Error)
	}
	return "Validation failed: " + strings.Join(parts, "; ")
}

func fieldErrors(err error) []errs.FieldError {
	var fieldErrs []errs.FieldError

	var custom CustomValidationErrors
	if errors.As(err, &custom) {
		for _, e := range custom {
			fieldErrs = append(fieldErrs, errs.FieldError{
				Field: e.Field,
				Error: e.Message,
			})
		}
		return fieldErrs
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return nil
	}

	for _, err := range validationErrors {
		var msg string

		switch err.Tag() {
		case "required":
			msg = "is required"

		case "min":
			switch err.Kind() {
			case reflect.String:
				msg = fmt.Sprintf("must be at least %s characters", err.Param())
			case reflect.Slice, reflect.Array, reflect.Map:
				msg = fmt.Sprintf("must contain at least %s entries", err.Param())
			default:
				msg = fmt.Sprintf("must be at least %s", err.Param())
			}

		case "max":
			switch err.Kind() {
			case reflect.String:
				msg = fmt.Sprintf("must not exceed %s characters", err.Param())
			case reflect.Slice, reflect.Array, reflect.Map:
				msg = fmt.Sprintf("must not contain more than %s entries", err.Param())
			default:
				msg = fmt.Sprintf("must not exceed %s", err.Param())
			}

		case "oneof":
			msg = fmt.Sprintf("must be one of: %s", err.Param())

		default:
			if err.Param() != "" {
				msg = fmt.Sprintf("%s: %s:%s", err.Field(), err.Tag(), err.Param())
			} else {
				msg = fmt.Sprintf("%s: %s", err.Field(), err.Tag())
			}
		}

		fieldErrs = append(fieldErrs, errs.FieldError{
			Field: err.Field(),
			Error: msg,
		})
	}

	return fieldErrs
}
