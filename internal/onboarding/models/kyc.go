package models

import (
	"maps"
	"time"
)

// KYCStatus is the verification outcome reported by the KYC provider.
type KYCStatus string

const (
	KYCStatusPending      KYCStatus = "pending"
	KYCStatusApproved     KYCStatus = "approved"
	KYCStatusRejected     KYCStatus = "rejected"
	KYCStatusRequiresMore KYCStatus = "requires_more"
)

func (s KYCStatus) IsValid() bool {
	switch s {
	case KYCStatusPending, KYCStatusApproved, KYCStatusRejected, KYCStatusRequiresMore:
		return true
	}
	return false
}

// CheckStatus is the outcome of one KYC sub-check.
type CheckStatus string

const (
	CheckPassed  CheckStatus = "passed"
	CheckFailed  CheckStatus = "failed"
	CheckPending CheckStatus = "pending"
)

// Sub-check names the KYC provider always reports.
const (
	CheckIdentity  = "identity"
	CheckAddress   = "address"
	CheckSanctions = "sanctions"
)

type KYCCheck struct {
	Status    CheckStatus `json:"status"`
	Score     float64     `json:"score"`
	CheckedAt time.Time   `json:"checked_at"`
	Provider  string      `json:"provider"`
}

// KYC is the identity verification sub-record.
type KYC struct {
	Provider        string              `json:"provider"`
	Reference       string              `json:"reference"`
	Status          KYCStatus           `json:"status"`
	Level           string              `json:"level"`
	RiskLevel       string              `json:"risk_level"`
	SubmittedAt     time.Time           `json:"submitted_at"`
	LastCheckedAt   time.Time           `json:"last_checked_at"`
	ApprovedAt      *time.Time          `json:"approved_at,omitempty"`
	RejectedAt      *time.Time          `json:"rejected_at,omitempty"`
	RejectionReason string              `json:"rejection_reason,omitempty"`
	Checks          map[string]KYCCheck `json:"checks"`
}

func (k *KYC) IsApproved() bool {
	return k != nil && k.Status == KYCStatusApproved
}

// KYCResult is what the KYC provider reports for a submission or poll.
type KYCResult struct {
	Provider        string
	Reference       string
	Status          KYCStatus
	Level           string
	RiskLevel       string
	RejectionReason string
	Checks          map[string]KYCCheck
}

// NewKYC records the first submission result.
func NewKYC(res KYCResult, now time.Time) *KYC {
	k := &KYC{SubmittedAt: now}
	k.ApplyResult(res, now)
	return k
}

// ApplyResult merges a provider result. Approval and rejection timestamps are
// stamped on transition only.
func (k *KYC) ApplyResult(res KYCResult, now time.Time) {
	prev := k.Status
	if res.Provider != "" {
		k.Provider = res.Provider
	}
	if res.Reference != "" {
		k.Reference = res.Reference
	}
	if res.Level != "" {
		k.Level = res.Level
	}
	if res.RiskLevel != "" {
		k.RiskLevel = res.RiskLevel
	}
	k.Status = res.Status
	k.LastCheckedAt = now
	if len(res.Checks) > 0 {
		k.Checks = maps.Clone(res.Checks)
	}

	switch res.Status {
	case KYCStatusApproved:
		if prev != KYCStatusApproved || k.ApprovedAt == nil {
			t := now
			k.ApprovedAt = &t
		}
		k.RejectionReason = ""
	case KYCStatusRejected:
		if prev != KYCStatusRejected || k.RejectedAt == nil {
			t := now
			k.RejectedAt = &t
		}
		k.RejectionReason = res.RejectionReason
		if k.RejectionReason == "" {
			k.RejectionReason = "rejected by provider"
		}
	}
}

func (k *KYC) Clone() *KYC {
	if k == nil {
		return nil
	}
	v := *k
	v.ApprovedAt = cloneTime(k.ApprovedAt)
	v.RejectedAt = cloneTime(k.RejectedAt)
	v.Checks = maps.Clone(k.Checks)
	return &v
}
