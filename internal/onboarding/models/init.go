package models

import (
	"strings"

	"onboarding/pkg/email"
)

const DefaultLocale = "en"

// InitRequest is the init payload.
type InitRequest struct {
	Email  string `json:"email"`
	Locale string `json:"locale,omitempty"`
}

// Normalize lowercases the email and applies the default locale.
func (r *InitRequest) Normalize() {
	r.Locale = strings.ToLower(strings.TrimSpace(r.Locale))
	if r.Locale == "" {
		r.Locale = DefaultLocale
	}
}

// Validate checks the email and returns its canonical form.
func (r *InitRequest) Validate() error {
	addr, err := email.Normalize(r.Email)
	if err != nil {
		return err
	}
	r.Email = addr
	return nil
}
