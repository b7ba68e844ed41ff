package domain

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	MinNameLen     = 2
	MaxNameLen     = 50
	MinPasswordLen = 6
)

var emailRegexp = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// NormalizeEmail trims and lower-cases an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidateRegistration checks a sign-up request and reports every problem.
func ValidateRegistration(name, email, password string) error {
	errs := validateName(nil, name)
	if !emailRegexp.MatchString(NormalizeEmail(email)) {
		errs = append(errs, FieldError{Field: "email", Message: "Please provide a valid email address"})
	}
	if utf8.RuneCountInString(password) < MinPasswordLen {
		errs = append(errs, FieldError{Field: "password", Message: "Password must be at least 6 characters long"})
	}
	if len(errs) > 0 {
		return &ValidationError{Errors: errs}
	}
	return nil
}

// ValidateLogin checks the shape of a login request.
func ValidateLogin(email, password string) error {
	var errs []FieldError
	if !emailRegexp.MatchString(NormalizeEmail(email)) {
		errs = append(errs, FieldError{Field: "email", Message: "Please provide a valid email address"})
	}
	if password == "" {
		errs = append(errs, FieldError{Field: "password", Message: "Password is required"})
	}
	if len(errs) > 0 {
		return &ValidationError{Errors: errs}
	}
	return nil
}

func validateName(errs []FieldError, name string) []FieldError {
	switch n := utf8.RuneCountInString(strings.TrimSpace(name)); {
	case n < MinNameLen:
		return append(errs, FieldError{Field: "name", Message: "Name must be at least 2 characters long"})
	case n > MaxNameLen:
		return append(errs, FieldError{Field: "name", Message: "Name cannot exceed 50 characters"})
	}
	return errs
}

func validateNewPassword(errs []FieldError, password string) []FieldError {
	if utf8.RuneCountInString(password) < MinPasswordLen {
		return append(errs, FieldError{Field: "newPassword", Message: "New password must be at least 6 characters long"})
	}
	return errs
}

// ValidateProfileUpdate checks the fields present in a self-service profile edit.
func ValidateProfileUpdate(in ProfileUpdate) error {
	return ValidateUserUpdate(UserUpdate{Name: in.Name, Email: in.Email})
}

// ValidateUserUpdate checks the fields present in an account edit.
func ValidateUserUpdate(in UserUpdate) error {
	var errs []FieldError
	if in.Name != nil {
		errs = validateName(errs, *in.Name)
	}
	if in.Email != nil && !emailRegexp.MatchString(NormalizeEmail(*in.Email)) {
		errs = append(errs, FieldError{Field: "email", Message: "Please provide a valid email address"})
	}
	if in.Role != nil && !in.Role.Valid() {
		errs = append(errs, FieldError{Field: "role", Message: "Role must be either user or admin"})
	}
	if len(errs) > 0 {
		return &ValidationError{Errors: errs}
	}
	return nil
}

// ValidatePasswordChange checks a change-password request.
func ValidatePasswordChange(current, next string) error {
	var errs []FieldError
	if current == "" {
		errs = append(errs, FieldError{Field: "currentPassword", Message: "Current password is required"})
	}
	errs = validateNewPassword(errs, next)
	if current != "" && current == next {
		errs = append(errs, FieldError{Field: "newPassword", Message: "New password must be different from current password"})
	}
	if len(errs) > 0 {
		return &ValidationError{Errors: errs}
	}
	return nil
}

// ValidateForgotPassword checks the address a reset link is requested for.
func ValidateForgotPassword(email string) error {
	if !emailRegexp.MatchString(NormalizeEmail(email)) {
		return NewValidationError("email", "Please provide a valid email address")
	}
	return nil
}

// ValidatePasswordReset checks a reset request before the token is looked up.
func ValidatePasswordReset(token, next string) error {
	var errs []FieldError
	if strings.TrimSpace(token) == "" {
		errs = append(errs, FieldError{Field: "token", Message: "Reset token is required"})
	}
	errs = validateNewPassword(errs, next)
	if len(errs) > 0 {
		return &ValidationError{Errors: errs}
	}
	return nil
}
