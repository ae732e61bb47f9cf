package handlers

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ValidationError represents a single validation error
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ParseValidationErrors converts validator errors to user-friendly format
func ParseValidationErrors(err error) []ValidationError {
	var out []ValidationError

	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		for _, fieldError := range validationErrors {
			out = append(out, ValidationError{
				Field:   fieldName(fieldError),
				Message: getErrorMessage(fieldError),
			})
		}
	}

	return out
}

// fieldName lower-cases the first letter so names match the JSON payload
func fieldName(fe validator.FieldError) string {
	name := fe.Field()
	if name == "" {
		return name
	}
	return strings.ToLower(name[:1]) + name[1:]
}

func getErrorMessage(fe validator.FieldError) string {
	field := fieldName(fe)

	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "min":
		if isNumber(fe) {
			return field + " must be at least " + fe.Param()
		}
		return field + " must have at least " + fe.Param() + " items"
	case "max":
		if isNumber(fe) {
			return field + " must not exceed " + fe.Param()
		}
		return field + " must not exceed " + fe.Param() + " characters or items"
	case "len":
		return field + " must have exactly " + fe.Param() + " items"
	default:
		return field + " is invalid"
	}
}

func isNumber(fe validator.FieldError) bool {
	switch fe.Kind().String() {
	case "int", "int8", "int16", "int32", "int64", "uint", "uint8", "uint16", "uint32", "uint64", "float32", "float64":
		return true
	}
	return false
}
