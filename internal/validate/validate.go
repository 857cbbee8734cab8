// Package validate holds client-side input checks run before any remote call.
package validate

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"taskpad/internal/service"
)

const (
	// MinNameLength is the minimum trimmed name length, in runes.
	MinNameLength = 2

	// MinPasswordLength is the minimum password length, in runes.
	MinPasswordLength = 6
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Error is a validation failure with a human-readable message.
type Error struct {
	Field   string
	Message string
}

func (e *Error) Error() string { return e.Message }

// Email reports whether s looks like an email address.
func Email(s string) bool {
	return emailPattern.MatchString(s)
}

// RegisterRequest checks a registration payload. Fields are checked in
// order name, email, password; the first failure is returned.
func RegisterRequest(req service.RegisterRequest) error {
	if utf8.RuneCountInString(strings.TrimSpace(req.Name)) < MinNameLength {
		return &Error{Field: "name", Message: "Name must be at least 2 characters long"}
	}
	if req.Email == "" || !Email(req.Email) {
		return &Error{Field: "email", Message: "Please enter a valid email address"}
	}
	if utf8.RuneCountInString(req.Password) < MinPasswordLength {
		return &Error{Field: "password", Message: "Password must be at least 6 characters long"}
	}
	return nil
}

// LoginRequest checks that both credentials were supplied.
func LoginRequest(req service.LoginRequest) error {
	if strings.TrimSpace(req.Email) == "" {
		return &Error{Field: "email", Message: "Email is required"}
	}
	if req.Password == "" {
		return &Error{Field: "password", Message: "Password is required"}
	}
	return nil
}
