package auth

import (
	"fmt"
	"private-chat/errors"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// LoginRequest is a password authentication attempt.
type LoginRequest struct {
	Login    string `validate:"required,alphanum,max=64"`
	Password string `validate:"required,max=72"`
}

// ValidateLogin rejects malformed requests before any hashing happens.
func ValidateLogin(req LoginRequest) error {
	if err := validate.Struct(req); err != nil {
		return fmt.Errorf("%w: %v", errors.ErrInvalidLogin, err)
	}
	return nil
}

// ValidateUsername applies the login rules to a single username.
func ValidateUsername(username string) error {
	if err := validate.Var(username, "required,alphanum,max=64"); err != nil {
		return fmt.Errorf("%w: %v", errors.ErrInvalidLogin, err)
	}
	return nil
}
