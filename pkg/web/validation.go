package web

import (
	"errors"

	"github.com/go-playground/validator/v10"
)

// GetErrorMsg returns the human readable reason of a failed validation, to be prefixed by the field name.
func GetErrorMsg(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return " is required"
	case "min":
		return " must be at least " + fe.Param()
	case "money":
		return " must be a positive number with at most 29 integer and 8 fraction digits"
	case "balance":
		return " must be a non-negative number with at most 29 integer and 8 fraction digits"
	}

	return " is invalid"
}

// BindingError turns an error returned by gin binding into a response message.
func BindingError(err error) string {
	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		field := ve[0]
		return field.Field() + GetErrorMsg(field)
	}

	return err.Error()
}
