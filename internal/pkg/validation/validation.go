// Package validation holds the input rules shared by every registration and
// password flow, plus their go-playground/validator bindings.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
)

var (
	emailRegex = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phoneRegex = regexp.MustCompile(`^(\+62|62|0)[0-9]{9,12}$`)
)

// IsValidEmail reports whether email has a local@domain.tld shape
func IsValidEmail(email string) bool {
	return emailRegex.MatchString(email)
}

// IsValidPhone reports whether phone is an Indonesian number. Empty is allowed.
func IsValidPhone(phone string) bool {
	return phone == "" || phoneRegex.MatchString(phone)
}

// PasswordsMatch reports whether the confirmation equals the password
func PasswordsMatch(password, confirm string) bool {
	return password == confirm
}

// PasswordPolicy is the single password rule applied by every flow
type PasswordPolicy struct {
	MinLength    int
	RequireMixed bool // upper, lower and digit
}

// DefaultPasswordPolicy requires 8 characters
var DefaultPasswordPolicy = PasswordPolicy{MinLength: 8}

// Check returns a user-facing error when password violates the policy
func (p PasswordPolicy) Check(password string) error {
	min := p.MinLength
	if min <= 0 {
		min = DefaultPasswordPolicy.MinLength
	}
	if len([]rune(password)) < min {
		return fmt.Errorf("Password must be at least %d characters", min)
	}
	if !p.RequireMixed {
		return nil
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
	if !upper || !lower || !digit {
		return errors.New("Password must contain uppercase, lowercase and a number")
	}
	return nil
}

// NormalizeEmail lower-cases and trims email so lookups are case-insensitive
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Validator wraps go-playground/validator with the custom tags
// `replate_email` and `id_phone`.
type Validator struct {
	v *validator.Validate
}

// New creates a validator with the custom rules registered
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("replate_email", func(fl validator.FieldLevel) bool {
		return IsValidEmail(fl.Field().String())
	})
	_ = v.RegisterValidation("id_phone", func(fl validator.FieldLevel) bool {
		return IsValidPhone(fl.Field().String())
	})
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return field.Name
		}
		return name
	})
	return &Validator{v: v}
}

// Struct validates s and returns the first failure as a readable message
func (v *Validator) Struct(s interface{}) error {
	err := v.v.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}
	return errors.New(message(verrs[0]))
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "replate_email":
		return "Invalid email format"
	case "id_phone":
		return "Invalid phone number format"
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", fe.Field(), fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be greater than or equal to %s", fe.Field(), fe.Param())
	case "lte":
		return fmt.Sprintf("%s must be less than or equal to %s", fe.Field(), fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", fe.Field())
	}
}
