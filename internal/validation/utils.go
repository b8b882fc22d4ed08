package validation

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/deppfellow/tutorial-service/internal/errs"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

// Validatable is implemented by request payloads. Validate typically calls
// Struct and may return CustomValidationErrors for rules tags cannot express.
type Validatable interface {
	Validate() error
}

// CustomValidationError is a single field failure not expressible through
// validator tags.
type CustomValidationError struct {
	Field   string
	Message string
}

type CustomValidationErrors []CustomValidationError

func (c CustomValidationErrors) Error() string {
	return "Validation failed"
}

// BodyRequired is implemented by payloads that cannot be bound from an
// empty request body.
type BodyRequired interface {
	RequiresBody() bool
}

// BindAndValidate binds path params, query params and body into payload,
// which must be a pointer, then validates it. Failures are 400 HTTPErrors.
//
// Query params are bound only for GET, DELETE and HEAD, and the body is bound
// last so it can never override a path param that is not exposed in JSON.
func BindAndValidate(c echo.Context, payload Validatable) error {
	binder := &echo.DefaultBinder{}

	if err := binder.BindPathParams(c, payload); err != nil {
		return paramError(err, c.ParamNames(), c.ParamValues())
	}

	switch c.Request().Method {
	case http.MethodGet, http.MethodDelete, http.MethodHead:
		if err := binder.BindQueryParams(c, payload); err != nil {
			names, values := queryParams(c)
			return paramError(err, names, values)
		}
	}

	if required, ok := payload.(BodyRequired); ok && required.RequiresBody() && c.Request().ContentLength == 0 {
		return errs.NewBadRequestError("Required request body is missing", false, nil, nil)
	}

	if err := binder.BindBody(c, payload); err != nil {
		return bodyError(err)
	}

	if msg, fieldErrors := validateStruct(payload); fieldErrors != nil {
		return errs.NewBadRequestError(msg, true, nil, fieldErrors)
	}

	return nil
}

// paramError names the path or query param that failed to convert. The
// binder reports the offending value quoted inside the conversion error, so
// the param is found by matching its value against the message.
func paramError(err error, names, values []string) *errs.HTTPError {
	field := ""

	var bindingErr *echo.BindingError
	if errors.As(err, &bindingErr) {
		field = bindingErr.Field
	} else {
		for i, name := range names {
			if i < len(values) && strings.Contains(err.Error(), strconv.Quote(values[i])) {
				field = name
				break
			}
		}
		if field == "" && len(names) == 1 {
			field = names[0]
		}
	}

	if field == "" {
		return errs.NewBadRequestError("Malformed request", false, nil, nil)
	}

	return errs.NewBadRequestError(
		fmt.Sprintf("Invalid value for '%s'", field),
		true,
		nil,
		[]errs.FieldError{{Field: field, Error: "has an invalid value"}},
	)
}

func queryParams(c echo.Context) (names, values []string) {
	for name, vs := range c.QueryParams() {
		for _, v := range vs {
			names = append(names, name)
			values = append(values, v)
		}
	}
	return names, values
}

// bodyError turns a body decoding failure into a 400 without leaking decoder
// internals.
func bodyError(err error) *errs.HTTPError {
	var echoErr *echo.HTTPError
	if errors.As(err, &echoErr) && echoErr.Code == http.StatusUnsupportedMediaType {
		return errs.NewBadRequestError("Unsupported content type", false, nil, nil)
	}
	return errs.NewBadRequestError("Malformed request body", false, nil, nil)
}

func validateStruct(v Validatable) (string, []errs.FieldError) {
	if err := v.Validate(); err != nil {
		return extractValidationError(err)
	}
	return "", nil
}

func extractValidationError(err error) (string, []errs.FieldError) {
	var fieldErrors []errs.FieldError

	var customValidationErrors CustomValidationErrors
	if errors.As(err, &customValidationErrors) {
		for _, err := range customValidationErrors {
			fieldErrors = append(fieldErrors, errs.FieldError{
				Field: err.Field,
				Error: err.Message,
			})
		}
		return "Validation failed", fieldErrors
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return "Validation failed", []errs.FieldError{{Field: "", Error: err.Error()}}
	}

	for _, err := range validationErrors {
		field := strings.ToLower(err.Field())
		var msg string

		switch err.Tag() {
		case "required":
			msg = "is required"

		case "min":
			if err.Type().Kind() == reflect.String {
				msg = fmt.Sprintf("must be at least %s characters", err.Param())
			} else {
				msg = fmt.Sprintf("must be at least %s", err.Param())
			}

		case "max":
			if err.Type().Kind() == reflect.String {
				msg = fmt.Sprintf("must not exceed %s characters", err.Param())
			} else {
				msg = fmt.Sprintf("must not exceed %s", err.Param())
			}

		case "oneof":
			msg = fmt.Sprintf("must be one of: %s", err.Param())

		default:
			if err.Param() != "" {
				msg = fmt.Sprintf("%s: %s:%s", field, err.Tag(), err.Param())
			} else {
				msg = fmt.Sprintf("%s: %s", field, err.Tag())
			}
		}

		fieldErrors = append(fieldErrors, errs.FieldError{
			Field: field,
			Error: msg,
		})
	}

	return "Validation failed", fieldErrors
}
