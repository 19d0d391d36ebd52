package handler

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// echoValidator wraps go-playground/validator so Echo can call c.Validate(req).
type echoValidator struct {
	v *validator.Validate
}

// NewValidator returns an echoValidator ready to be assigned to echo.Echo.Validator.
func NewValidator() *echoValidator {
	return &echoValidator{v: validator.New()}
}

// Validate satisfies the echo.Validator interface. The returned error keeps
// the validator.ValidationErrors type so form handlers can rebuild per-field
// messages with fieldErrors.
func (ev *echoValidator) Validate(i any) error {
	return ev.v.Struct(i)
}

// fieldErrors converts a validation error into a field → message map for
// re-rendering the originating form. Non-validation errors collapse into a
// single "form" entry.
func fieldErrors(err error) map[string]string {
	msgs := make(map[string]string)
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		msgs["form"] = "invalid form payload"
		return msgs
	}
	for _, fe := range ve {
		msgs[strings.ToLower(fe.Field())] = fieldError(fe)
	}
	return msgs
}

// fieldError converts a single ValidationError into a human-readable message.
func fieldError(fe validator.FieldError) string {
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "email":
		return field + " must be a valid email"
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, fe.Param())
	case "lte":
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	default:
		return fmt.Sprintf("%s failed validation (%s)", field, fe.Tag())
	}
}
