package validation

import (
	"strings"

	appErrors "github.com/noah-isme/coursehub-client/pkg/errors"
)

// SignupForm carries the raw signup fields.
type SignupForm struct {
	Name            string
	Email           string
	Password        string
	ConfirmPassword string
}

// Trimmed returns a copy with every field trimmed, the way the form reads its inputs.
func (f SignupForm) Trimmed() SignupForm {
	return SignupForm{
		Name:            strings.TrimSpace(f.Name),
		Email:           strings.TrimSpace(f.Email),
		Password:        strings.TrimSpace(f.Password),
		ConfirmPassword: strings.TrimSpace(f.ConfirmPassword),
	}
}

// LoginForm carries the raw login fields.
type LoginForm struct {
	Email    string
	Password string
}

// Trimmed returns a copy with every field trimmed.
func (f LoginForm) Trimmed() LoginForm {
	return LoginForm{Email: strings.TrimSpace(f.Email), Password: strings.TrimSpace(f.Password)}
}

type rule struct {
	ok      bool
	message string
}

// firstViolation returns the message of the first failing rule, or nil.
func firstViolation(rules []rule) error {
	for _, r := range rules {
		if !r.ok {
			return appErrors.Clone(appErrors.ErrValidation, r.message)
		}
	}
	return nil
}

// CheckSignup applies the signup rules in order and reports only the first failure.
// Email uniqueness is checked afterwards against the backend.
func CheckSignup(form SignupForm) error {
	f := form.Trimmed()
	return firstViolation([]rule{
		{IsRequired(f.Name), "Name is required."},
		{IsRequired(f.Email), "Email is required."},
		{IsRequired(f.Password), "Password is required."},
		{IsRequired(f.ConfirmPassword), "Confirm Password is required."},
		{IsValidEmail(f.Email), "Please enter a valid email address."},
		{IsValidPassword(f.Password), "Password must be 6-8 characters long."},
		{PasswordsMatch(f.Password, f.ConfirmPassword), "Passwords do not match."},
	})
}

// CheckLogin applies the login rules in order.
func CheckLogin(form LoginForm) error {
	f := form.Trimmed()
	return firstViolation([]rule{
		{IsRequired(f.Email), "Email is required."},
		{IsRequired(f.Password), "Password is required."},
		{IsValidEmail(f.Email), "Please enter a valid email address."},
	})
}
