package serrors

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ValidationErrors maps a JSON field name to a human readable message.
type ValidationErrors map[string]string

// First returns the message of the alphabetically first field, for single-message APIs.
func (v ValidationErrors) First() string {
	best := ""
	for field := range v {
		if best == "" || field < best {
			best = field
		}
	}
	if best == "" {
		return "validation failed"
	}
	return v[best]
}

// ProcessValidatorErrors turns validator errors into ValidationErrors keyed
// by the field's json name.
func ProcessValidatorErrors(err error) ValidationErrors {
	out := ValidationErrors{}
	if err == nil {
		return out
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		out["_"] = err.Error()
		return out
	}
	for _, fe := range verrs {
		field := fe.Field()
		out[field] = message(field, fe)
	}
	return out
}

func message(field string, fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, strings.ReplaceAll(fe.Param(), " ", ", "))
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "email":
		return fmt.Sprintf("%s must be a valid email", field)
	case "gte":
		return fmt.Sprintf("%s must be greater than or equal to %s", field, fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}
