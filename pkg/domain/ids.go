// Package domain holds identifier types shared across onboarding packages.
package domain

import (
	"strings"

	dErrors "onboarding/pkg/domain-errors"
)

const maxUserIDLength = 128

// UserID is the opaque external identity (issued by the identity provider)
// that keys one onboarding aggregate.
//
// Invariant: non-empty, at most 128 bytes, only [A-Za-z0-9._:-].
// Construct via ParseUserID at trust boundaries.
type UserID string

// ParseUserID validates an identity string taken from a URL or token.
func ParseUserID(s string) (UserID, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "user id cannot be empty")
	}
	if len(s) > maxUserIDLength {
		return "", dErrors.New(dErrors.CodeInvalidInput, "user id too long")
	}
	for _, r := range s {
		if !isIDRune(r) {
			return "", dErrors.New(dErrors.CodeInvalidInput, "user id contains invalid characters")
		}
	}
	return UserID(s), nil
}

func isIDRune(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return true
	case r == '-' || r == '_' || r == '.' || r == ':':
		return true
	}
	return false
}

func (id UserID) String() string {
	return string(id)
}

func (id UserID) IsNil() bool {
	return id == ""
}
