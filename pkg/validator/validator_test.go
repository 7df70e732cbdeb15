package validator

import (
	"errors"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
)

type registerInput struct {
	Name     string `validate:"required"`
	Email    string `validate:"required,email"`
	Password string `validate:"min=6"`
	Role     string `validate:"oneof=STUDENT COMPANY"`
}

func TestFormatValidationError(t *testing.T) {
	v := validator.New()
	err := v.Struct(registerInput{Email: "nope", Password: "123", Role: "ADMIN"})

	msg := FormatValidationError(err)
	assert.Contains(t, msg, "Name is required")
	assert.Contains(t, msg, "Email must be a valid email")
	assert.Contains(t, msg, "Password must be at least 6 characters")
	assert.Contains(t, msg, "Role must be one of: STUDENT COMPANY")
}

func TestFormatPlainError(t *testing.T) {
	assert.Equal(t, "EOF", FormatValidationError(errors.New("EOF")))
}
