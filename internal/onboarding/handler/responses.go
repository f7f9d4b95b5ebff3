package handler

import (
	"strings"
	"time"

	"onboarding/internal/onboarding/models"
	dErrors "onboarding/pkg/domain-errors"
)

// StateResponse is the full onboarding state returned by every endpoint.
// Preferences are always present, defaulted until the user saves them.
type StateResponse struct {
	UID          string             `json:"uid"`
	Email        string             `json:"email"`
	Locale       string             `json:"locale"`
	Jurisdiction string             `json:"jurisdiction,omitempty"`
	Onboarding   models.Progress    `json:"onboarding"`
	Consents     *models.Consents   `json:"consents,omitempty"`
	Profile      *models.Profile    `json:"profile,omitempty"`
	KYC          *models.KYC        `json:"kyc,omitempty"`
	Wallet       *models.Wallet     `json:"wallet,omitempty"`
	Broker       *models.Broker     `json:"broker,omitempty"`
	Security     *models.Security   `json:"security,omitempty"`
	Preferences  models.Preferences `json:"preferences"`
	CreatedAt    time.Time          `json:"created_at"`
}

func toStateResponse(u *models.UserAggregate) StateResponse {
	return StateResponse{
		UID:          u.UID.String(),
		Email:        u.Email,
		Locale:       u.Locale,
		Jurisdiction: string(u.Jurisdiction),
		Onboarding:   u.Onboarding,
		Consents:     u.Consents,
		Profile:      u.Profile,
		KYC:          u.KYC,
		Wallet:       u.Wallet,
		Broker:       u.Broker,
		Security:     u.Security,
		Preferences:  u.PreferencesOrDefault(),
		CreatedAt:    u.CreatedAt,
	}
}

// EnrollmentResponse is shown once; the secret and backup codes are not
// retrievable later.
type EnrollmentResponse struct {
	Method      string   `json:"method"`
	Secret      string   `json:"secret"`
	BackupCodes []string `json:"backup_codes"`
}

// TwoFactorResponse omits the enrollment when replayed from an
// Idempotency-Key.
type TwoFactorResponse struct {
	State     StateResponse       `json:"state"`
	TwoFactor *EnrollmentResponse `json:"two_factor,omitempty"`
}

func toEnrollmentResponse(e *models.TwoFAEnrollment) *EnrollmentResponse {
	return &EnrollmentResponse{
		Method:      string(e.Method),
		Secret:      e.Secret,
		BackupCodes: e.BackupCodes,
	}
}

// ResetRequest is the admin reset payload.
type ResetRequest struct {
	Actor  string `json:"actor"`
	Reason string `json:"reason"`
}

func (r *ResetRequest) Normalize() {
	r.Actor = strings.TrimSpace(r.Actor)
	r.Reason = strings.TrimSpace(r.Reason)
}

func (r *ResetRequest) Validate() error {
	if r.Actor == "" {
		return dErrors.New(dErrors.CodeValidation, "actor is required")
	}
	if len(r.Reason) > 512 {
		return dErrors.New(dErrors.CodeValidation, "reason must be 512 characters or less")
	}
	return nil
}
