// Package service holds what the resource services share: input validation
// that reports the offending request field.
package service

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/gocinema/gocinema/internal/apperr"
)

// Messages maps "field.tag" or "tag" to the message returned to the caller.
type Messages map[string]string

// Validator validates request structs with go-playground/validator.
// Field names in errors are the json names of the struct fields.
type Validator struct {
	validate *validator.Validate
	messages Messages
}

// NewValidator creates a Validator with the given messages.
func NewValidator(messages Messages) *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}

		return name
	})

	return &Validator{validate: v, messages: messages}
}

// Validate returns an apperr validation error for the first invalid field, nil if data is valid.
func (v *Validator) Validate(data any) error {
	err := v.validate.Struct(data)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) || len(validationErrors) == 0 {
		return err //nolint:wrapcheck
	}

	fe := validationErrors[0]

	return apperr.Validation(v.message(fe), fe.Field())
}

func (v *Validator) message(fe validator.FieldError) string {
	if msg, ok := v.messages[fe.Field()+"."+fe.Tag()]; ok {
		return msg
	}

	if msg, ok := v.messages[fe.Tag()]; ok {
		return msg
	}

	switch fe.Tag() {
	case "required":
		return fe.Field() + " cannot be blank."
	case "min", "max":
		return fe.Field() + " must be between the allowed length limits."
	case "oneof":
		return fe.Field() + " must be one of: " + fe.Param() + "."
	default:
		return fe.Field() + " is invalid."
	}
}
