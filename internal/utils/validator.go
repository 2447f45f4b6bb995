package utils

import "github.com/go-playground/validator/v10"

var validate = validator.New()

// IsValidEmail reports whether the address is a syntactically valid email.
func IsValidEmail(email string) bool {
	return validate.Var(email, "required,email") == nil
}
