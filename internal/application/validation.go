package application

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
)

// ErrInvalidInput wraps every validation failure.
var ErrInvalidInput = errors.New("invalid input")

// minPasswordLength is the shortest password the backend accepts.
const minPasswordLength = 8

// Validator holds the input predicates used before any request is sent.
type Validator struct {
	v *validator.Validate
}

// NewValidator creates a Validator with the "password" rule registered.
func NewValidator() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Registration only fails for an empty tag or nil func.
	_ = v.RegisterValidation("password", func(fl validator.FieldLevel) bool {
		return IsValidPassword(fl.Field().String())
	})
	return &Validator{v: v}
}

// IsValidPassword reports whether password has at least eight characters,
// including an upper-case letter, a lower-case letter and a digit.
func IsValidPassword(password string) bool {
	if len([]rune(password)) < minPasswordLength {
		return false
	}

	var upper, lower, digit bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	return upper && lower && digit
}

// Email validates an email address.
func (v *Validator) Email(email string) error {
	return v.field("email", email, "required,email")
}

// Password validates a new password against the password rule.
func (v *Validator) Password(password string) error {
	return v.field("password", password, "required,password")
}

// Struct validates a struct's validate tags.
func (v *Validator) Struct(s any) error {
	if err := v.v.Struct(s); err != nil {
		return wrapValidation(err)
	}
	return nil
}

func (v *Validator) field(name string, value any, tag string) error {
	if err := v.v.Var(value, tag); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return fmt.Errorf("%w: %s fails %q", ErrInvalidInput, name, verrs[0].Tag())
		}
		return fmt.Errorf("%w: %s: %v", ErrInvalidInput, name, err)
	}
	return nil
}

func wrapValidation(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		parts = append(parts, fmt.Sprintf("%s fails %q", strings.ToLower(fe.Field()), fe.Tag()))
	}
	return fmt.Errorf("%w: %s", ErrInvalidInput, strings.Join(parts, ", "))
}
