// Package email normalizes and validates contact addresses.
package email

import (
	"net/mail"
	"strings"

	dErrors "onboarding/pkg/domain-errors"
)

const maxLength = 254

// Normalize trims and lowercases an address and checks it is a bare
// addr-spec ("a@b.c"), rejecting display-name forms.
func Normalize(raw string) (string, error) {
	addr := strings.ToLower(strings.TrimSpace(raw))
	if addr == "" {
		return "", dErrors.New(dErrors.CodeValidation, "email is required")
	}
	if len(addr) > maxLength {
		return "", dErrors.New(dErrors.CodeValidation, "email is too long")
	}
	parsed, err := mail.ParseAddress(addr)
	if err != nil || parsed.Address != addr || parsed.Name != "" {
		return "", dErrors.New(dErrors.CodeValidation, "email is invalid")
	}
	at := strings.LastIndexByte(addr, '@')
	if !strings.Contains(addr[at+1:], ".") {
		return "", dErrors.New(dErrors.CodeValidation, "email domain is invalid")
	}
	return addr, nil
}
