package models

import (
	"time"

	dErrors "onboarding/pkg/domain-errors"
)

// BrokerStatus is the state of the brokerage sub-account.
type BrokerStatus string

const (
	BrokerStatusActive        BrokerStatus = "active"
	BrokerStatusPendingReview BrokerStatus = "pending_review"
	BrokerStatusRejected      BrokerStatus = "rejected"
)

// Completes reports whether the status lets the broker step complete.
// Pending review completes because review is asynchronous.
func (s BrokerStatus) Completes() bool {
	return s == BrokerStatusActive || s == BrokerStatusPendingReview
}

type Broker struct {
	Provider     string       `json:"provider"`
	SubAccountID string       `json:"sub_account_id"`
	Status       BrokerStatus `json:"status"`
	CreatedAt    time.Time    `json:"created_at"`
	LastSyncAt   time.Time    `json:"last_sync_at"`
}

func (b *Broker) Clone() *Broker {
	if b == nil {
		return nil
	}
	v := *b
	return &v
}

// BrokerResult is what the brokerage provider reports.
type BrokerResult struct {
	Provider     string
	SubAccountID string
	Status       BrokerStatus
	Reason       string
}

// BrokerApplication is what the brokerage provider receives to open a
// sub-account.
type BrokerApplication struct {
	Profile            Profile
	Jurisdiction       string
	KYCReference       string
	ConsentDataSharing bool
	ConsentOmnibus     bool
}

// BrokerRequest is the broker step payload.
type BrokerRequest struct {
	ConsentDataSharing *bool `json:"consent_data_sharing"`
	ConsentOmnibus     *bool `json:"consent_omnibus"`
}

func (r *BrokerRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeValidation, "request is required")
	}
	if r.ConsentDataSharing == nil || r.ConsentOmnibus == nil {
		return dErrors.New(dErrors.CodeValidation, "consent_data_sharing and consent_omnibus are required")
	}
	if !*r.ConsentDataSharing || !*r.ConsentOmnibus {
		return dErrors.New(dErrors.CodeValidation, "both brokerage consents must be accepted")
	}
	return nil
}
