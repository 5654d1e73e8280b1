package auth

import (
	"unicode"

	"github.com/go-playground/validator/v10"

	"replydesk/errors"
)

var validate = validator.New()

// Credentials is what an operator presents at login or registration.
// Names are plain identifiers, no email involved.
type Credentials struct {
	Name     string `validate:"required,min=3,max=32,alphanum"`
	Password string `validate:"required,min=12,max=72"`
}

func ValidateCredentials(creds Credentials) error {
	if err := validate.Struct(creds); err != nil {
		return err
	}

	if !isPasswordComplex(creds.Password) {
		return errors.ErrInvalidPassword
	}
	return nil
}

func isPasswordComplex(s string) bool {
	var (
		hasUpper   = false
		hasLower   = false
		hasNumber  = false
		hasSpecial = false
	)
	for _, char := range s {
		switch {
		case unicode.IsUpper(char):
			hasUpper = true
		case unicode.IsLower(char):
			hasLower = true
		case unicode.IsNumber(char):
			hasNumber = true
		case unicode.IsPunct(char) || unicode.IsSymbol(char):
			hasSpecial = true
		}
	}
	return hasUpper && hasLower && hasNumber && hasSpecial
}
