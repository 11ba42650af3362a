package service_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gocinema/gocinema/internal/apperr"
	"github.com/gocinema/gocinema/internal/service"
)

type input struct {
	Name  string `json:"name"  validate:"required,max=5"`
	Email string `json:"email" validate:"required,email"`
	State string `json:"state" validate:"omitempty,oneof=Done InProduction"`
}

func TestValidate(t *testing.T) {
	v := service.NewValidator(service.Messages{
		"email.email": "Please, enter valid email address.",
	})

	tests := []struct {
		name    string
		in      input
		message string
		source  string
	}{
		{
			name: "valid",
			in:   input{Name: "abc", Email: "a@b.c"},
		},
		{
			name:    "missing name",
			in:      input{Email: "a@b.c"},
			message: "name cannot be blank.",
			source:  "Field 'name' in the request body.",
		},
		{
			name:    "custom message",
			in:      input{Name: "abc", Email: "invalid"},
			message: "Please, enter valid email address.",
			source:  "Field 'email' in the request body.",
		},
		{
			name:    "oneof",
			in:      input{Name: "abc", Email: "a@b.c", State: "Lost"},
			message: "state must be one of: Done InProduction.",
			source:  "Field 'state' in the request body.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(tt.in)
			if tt.message == "" {
				require.NoError(t, err)

				return
			}

			require.ErrorIs(t, err, apperr.ErrValidation)

			var appErr *apperr.Error
			require.ErrorAs(t, err, &appErr)
			assert.Equal(t, tt.message, appErr.Message)
			assert.Equal(t, tt.source, appErr.Source)
		})
	}
}
