package errs

import (
	"errors"
	"strings"
)

// FieldError represents a field-level validation error.
//
//	{ "field": "title", "error": "must not exceed 255 characters" }
type FieldError struct {
	Field string `json:"field"`
	Error string `json:"error"`
}

// HTTPError is a client-visible failure with a status, a machine-friendly
// code and a human-friendly message.
//
// Override marks messages that are safe to show to end users verbatim.
type HTTPError struct {
	Code     string `json:"code"`
	Message  string `json:"message"`
	Status   int    `json:"status"`
	Override bool   `json:"override"`

	// Errors holds field-level validation errors.
	Errors []FieldError `json:"errors"`
}

func (e *HTTPError) Error() string {
	return e.Message
}

// Is reports whether target is also an *HTTPError, regardless of its fields.
func (e *HTTPError) Is(target error) bool {
	_, ok := target.(*HTTPError)
	return ok
}

// WithMessage returns a copy of the error with Message replaced.
func (e *HTTPError) WithMessage(message string) *HTTPError {
	return &HTTPError{
		Code:     e.Code,
		Message:  message,
		Status:   e.Status,
		Override: e.Override,
		Errors:   e.Errors,
	}
}

// StatusError is a failure whose response carries only a status code.
//
// Cause is written to the server log and never to the client.
type StatusError struct {
	Status int
	Cause  error
}

func (e *StatusError) Error() string {
	if e.Cause == nil {
		return strings.ToLower(statusText(e.Status))
	}
	return statusText(e.Status) + ": " + e.Cause.Error()
}

func (e *StatusError) Unwrap() error {
	return e.Cause
}

// MissingHeaderError reports a required request header that was not sent.
type MissingHeaderError struct {
	Header string
}

func (e *MissingHeaderError) Error() string {
	return "Required request header '" + e.Header + "' for method parameter type String is not present"
}

// IsMissingHeader reports whether err is, or wraps, a *MissingHeaderError.
func IsMissingHeader(err error) bool {
	var target *MissingHeaderError
	return errors.As(err, &target)
}

// MakeUpperCaseWithUnderscores converts a string into UPPER_CASE_WITH_UNDERSCORES.
//
//	"Bad Request" -> "BAD_REQUEST"
func MakeUpperCaseWithUnderscores(str string) string {
	return strings.ToUpper(strings.ReplaceAll(str, " ", "_"))
}
