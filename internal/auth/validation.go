package auth

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	maxEmailLength       = 254
	minPasswordLength    = 8
	maxPasswordByteCount = 56
	passwordSymbols      = "`~!@#$%^&*()_+-=.,/<>?;:'\"[]{}\\|"
)

var emailPattern = regexp.MustCompile(`^[A-Za-z0-9_+\-]+(\.[A-Za-z0-9_+\-]+)*@[A-Za-z0-9\-]+(\.[A-Za-z0-9\-]+)*\.[A-Za-z]{2,}$`)

// IsValidEmail checks email syntax and length.
func IsValidEmail(email string) bool {
	if email == "" || len(email) > maxEmailLength {
		return false
	}
	return emailPattern.MatchString(email)
}

// IsValidPassword reports whether password satisfies the strength policy:
// at least 8 characters, at most 56 bytes, no whitespace, and at least one
// uppercase letter, digit and symbol.
func IsValidPassword(password string) bool {
	if utf8.RuneCountInString(password) < minPasswordLength || len(password) > maxPasswordByteCount {
		return false
	}

	var hasUpper, hasDigit, hasSymbol bool
	for _, r := range password {
		switch {
		case unicode.IsSpace(r):
			return false
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsDigit(r):
			hasDigit = true
		case strings.ContainsRune(passwordSymbols, r):
			hasSymbol = true
		}
	}
	return hasUpper && hasDigit && hasSymbol
}
