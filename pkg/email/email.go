// Package email contains small helpers for working with addresses.
package email

import (
	"strings"
	"unicode"
)

// DeriveNameFromEmail guesses a first/last name from the local part of an
// address. Used for greeting lines when a registration carries no name.
func DeriveNameFromEmail(email string) (string, string) {
	localPart := email
	if at := strings.IndexByte(email, '@'); at > 0 {
		localPart = email[:at]
	}

	parts := strings.FieldsFunc(localPart, func(r rune) bool {
		return r == '.' || r == '_' || r == '-' || r == '+'
	})

	if len(parts) == 0 {
		return "User", "User"
	}

	first := capitalize(parts[0])
	last := "User"
	if len(parts) > 1 {
		last = capitalize(parts[len(parts)-1])
	}

	return first, last
}

// Normalize lowercases the domain part only; local parts are case-sensitive
// per RFC even though most providers ignore it. Uniqueness checks additionally
// fold the whole address, matching how the registration flow compares emails.
func Normalize(email string) string {
	at := strings.LastIndexByte(email, '@')
	if at < 0 {
		return email
	}
	return email[:at] + strings.ToLower(email[at:])
}

// Fold returns the address form used for uniqueness comparisons.
func Fold(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func capitalize(s string) string {
	if s == "" {
		return s
	}

	runes := []rune(s)
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
