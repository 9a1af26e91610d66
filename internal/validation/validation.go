// Package validation checks user input before it reaches the store and turns
// validator failures into models.AppError values.
package validation

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/warbler-app/warbler/internal/models"
)

const (
	MaxUsernameLength = 30
	MinPasswordLength = 6
	// MaxPasswordBytes is the most bcrypt will hash.
	MaxPasswordBytes = 72
)

var validate = validator.New()

type signupFields struct {
	Username string `validate:"required,max=30"`
	Email    string `validate:"required,email"`
	Password string `validate:"required,min=6"`
}

type profileFields struct {
	Username string `validate:"required,max=30"`
	Email    string `validate:"required,email"`
}

type messageFields struct {
	Text string `validate:"required,max=140"`
}

func Signup(username, email, password string) error {
	if err := check(&signupFields{Username: username, Email: email, Password: password}); err != nil {
		return err
	}
	if len(password) > MaxPasswordBytes {
		return models.NewValidationError(fmt.Sprintf("password must be at most %d bytes", MaxPasswordBytes))
	}
	return nil
}

func Profile(username, email string) error {
	return check(&profileFields{Username: username, Email: email})
}

// MessageText trims text and checks it is non-empty and within
// models.MaxMessageLength characters.
func MessageText(text string) (string, error) {
	text = strings.TrimSpace(text)
	if err := check(&messageFields{Text: text}); err != nil {
		return "", err
	}
	return text, nil
}

func check(s interface{}) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return models.NewValidationError(err.Error())
	}
	return models.NewValidationError(describe(fieldErrs[0]))
}

func describe(fe validator.FieldError) string {
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "email":
		return fmt.Sprintf("%s must be a valid email address", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}
