package models

import (
	"strings"
	"time"

	dErrors "onboarding/pkg/domain-errors"
)

type TwoFAMethod string

const (
	TwoFAMethodTOTP     TwoFAMethod = "totp"
	TwoFAMethodWebAuthn TwoFAMethod = "webauthn"
)

func (m TwoFAMethod) IsValid() bool {
	return m == TwoFAMethodTOTP || m == TwoFAMethodWebAuthn
}

type TwoFA struct {
	Method    TwoFAMethod `json:"method,omitempty"`
	Enabled   bool        `json:"enabled"`
	EnabledAt *time.Time  `json:"enabled_at,omitempty"`
	SkippedAt *time.Time  `json:"skipped_at,omitempty"`
}

// Security is the two-factor sub-record. Backup codes are never stored here.
type Security struct {
	TwoFA TwoFA `json:"two_fa"`
}

func (s *Security) Clone() *Security {
	if s == nil {
		return nil
	}
	v := *s
	v.TwoFA.EnabledAt = cloneTime(s.TwoFA.EnabledAt)
	v.TwoFA.SkippedAt = cloneTime(s.TwoFA.SkippedAt)
	return &v
}

// TwoFAEnrollment is what the 2FA provisioner returns. BackupCodes are shown
// to the user once and dropped.
type TwoFAEnrollment struct {
	Method      TwoFAMethod
	Secret      string
	BackupCodes []string
}

// SecurityRequest is the security step payload.
type SecurityRequest struct {
	Method string `json:"method"`
}

func (r *SecurityRequest) Normalize() {
	if r != nil {
		r.Method = strings.ToLower(strings.TrimSpace(r.Method))
	}
}

func (r *SecurityRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeValidation, "request is required")
	}
	if !TwoFAMethod(r.Method).IsValid() {
		return dErrors.New(dErrors.CodeValidation, "method must be one of totp, webauthn")
	}
	return nil
}
