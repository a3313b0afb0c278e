// Package validation holds the form predicates shared by the signup, login,
// contact, and enrollment flows. Every predicate is pure.
package validation

import (
	"reflect"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"

	"github.com/noah-isme/coursehub-client/internal/models"
)

const (
	MinPasswordLength = 6
	MaxPasswordLength = 8
)

// notSpaceOrAt excludes everything a browser regex treats as whitespace, which is
// wider than RE2's ASCII-only \s.
const notSpaceOrAt = `[^\s\v\p{Zs}\x{2028}\x{2029}\x{FEFF}@]`

var emailPattern = regexp.MustCompile(`^` + notSpaceOrAt + `+@` + notSpaceOrAt + `+\.` + notSpaceOrAt + `+$`)

// IsRequired reports whether value has content once surrounding whitespace is removed.
func IsRequired(value string) bool {
	return strings.TrimSpace(value) != ""
}

// IsValidEmail accepts local@domain.tld where no part contains whitespace or '@'.
func IsValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}

// IsValidPassword accepts passwords of 6 to 8 characters inclusive.
func IsValidPassword(password string) bool {
	n := utf8.RuneCountInString(password)
	return n >= MinPasswordLength && n <= MaxPasswordLength
}

// PasswordsMatch is strict equality.
func PasswordsMatch(password, confirm string) bool {
	return password == confirm
}

// Register installs the predicates as validator tags so request structs can use
// `validate:"required_trim,site_email"` and friends. Backend ids validate as their
// string value.
func Register(v *validator.Validate) error {
	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if id, ok := field.Interface().(models.ID); ok {
			return id.String()
		}
		return nil
	}, models.ID{})
	if err := v.RegisterValidation("required_trim", func(fl validator.FieldLevel) bool {
		return IsRequired(fl.Field().String())
	}); err != nil {
		return err
	}
	if err := v.RegisterValidation("site_email", func(fl validator.FieldLevel) bool {
		return IsValidEmail(fl.Field().String())
	}); err != nil {
		return err
	}
	return v.RegisterValidation("site_password", func(fl validator.FieldLevel) bool {
		return IsValidPassword(fl.Field().String())
	})
}

// New returns a validator with the site tags registered.
func New() *validator.Validate {
	v := validator.New()
	if err := Register(v); err != nil {
		// Tags are static; a registration failure is a programming error.
		panic(err)
	}
	return v
}
