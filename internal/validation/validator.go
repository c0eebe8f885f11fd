// Package validation wires go-playground/validator into Echo and renders
// failures in the shape the mobile client expects: a 422 body carrying a
// headline message plus a field -> messages map.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Validator implements echo.Validator on top of go-playground/validator.
type Validator struct {
	validate *validator.Validate
}

// New builds the request validator. Field names in error output come from
// the struct's json tags so they match what the client actually sent.
func New() *Validator {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &Validator{validate: v}
}

// Validate validates a bound request struct.
func (v *Validator) Validate(i interface{}) error {
	return v.validate.Struct(i)
}

// ErrorResponse is the 422 payload for validation failures. Message carries
// the first error; Errors lists every failing field.
type ErrorResponse struct {
	Message string              `json:"message"`
	Errors  map[string][]string `json:"errors"`
}

// NewErrorResponse converts a validator error into an ErrorResponse. A
// non-validator error collapses to a generic invalid-input message.
func NewErrorResponse(err error) ErrorResponse {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return ErrorResponse{Message: "The given data was invalid.", Errors: map[string][]string{}}
	}
	out := ErrorResponse{Errors: make(map[string][]string, len(verrs))}
	for _, fe := range verrs {
		msg := fieldMessage(fe)
		if out.Message == "" {
			out.Message = msg
		}
		out.Errors[fe.Field()] = append(out.Errors[fe.Field()], msg)
	}
	return out
}

// FieldError builds an ErrorResponse for a single hand-rolled check, such as
// a referential failure or an unparseable date.
func FieldError(field, msg string) ErrorResponse {
	return ErrorResponse{Message: msg, Errors: map[string][]string{field: {msg}}}
}

func fieldMessage(fe validator.FieldError) string {
	field := strings.ReplaceAll(fe.Field(), "_", " ")
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("The %s field is required.", field)
	case "email":
		return fmt.Sprintf("The %s field must be a valid email address.", field)
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("The %s field must be at least %s characters.", field, fe.Param())
		}
		return fmt.Sprintf("The %s field must be at least %s.", field, fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("The %s field must not exceed %s characters.", field, fe.Param())
		}
		return fmt.Sprintf("The %s field must not exceed %s.", field, fe.Param())
	case "gte":
		return fmt.Sprintf("The %s field must be at least %s.", field, fe.Param())
	default:
		return fmt.Sprintf("The %s field is invalid.", field)
	}
}
