package models

import (
	"time"

	dErrors "onboarding/pkg/domain-errors"
)

// DocumentAcceptance records which version of a legal document was accepted.
type DocumentAcceptance struct {
	Version    string    `json:"version"`
	AcceptedAt time.Time `json:"accepted_at"`
}

// Consents holds the three mandatory legal acceptances. Once written they can
// only be refreshed to a newer version, never withdrawn through onboarding.
type Consents struct {
	TOS     DocumentAcceptance `json:"tos"`
	Privacy DocumentAcceptance `json:"privacy"`
	Risk    DocumentAcceptance `json:"risk"`
}

// LegalVersions are the current document versions stamped on acceptance.
type LegalVersions struct {
	TOS     string
	Privacy string
	Risk    string
}

// NewConsents stamps all three documents at now.
func NewConsents(v LegalVersions, now time.Time) *Consents {
	return &Consents{
		TOS:     DocumentAcceptance{Version: v.TOS, AcceptedAt: now},
		Privacy: DocumentAcceptance{Version: v.Privacy, AcceptedAt: now},
		Risk:    DocumentAcceptance{Version: v.Risk, AcceptedAt: now},
	}
}

func (c *Consents) Clone() *Consents {
	if c == nil {
		return nil
	}
	v := *c
	return &v
}

// ConsentsRequest is the consents step payload. Every field is required.
type ConsentsRequest struct {
	TOS     *bool `json:"tos"`
	Privacy *bool `json:"privacy"`
	Risk    *bool `json:"risk"`
}

// Validate enforces all-or-nothing acceptance.
func (r *ConsentsRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeValidation, "request is required")
	}
	if r.TOS == nil || r.Privacy == nil || r.Risk == nil {
		return dErrors.New(dErrors.CodeValidation, "tos, privacy and risk acceptance are required")
	}
	if !*r.TOS || !*r.Privacy || !*r.Risk {
		return dErrors.New(dErrors.CodeValidation, "all legal documents must be accepted")
	}
	return nil
}
