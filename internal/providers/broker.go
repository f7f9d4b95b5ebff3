package providers

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"onboarding/internal/onboarding/models"
	id "onboarding/pkg/domain"
)

const brokerProviderID = "mock-broker"

// BrokerProvider opens sub-accounts with a configured status. Accounts are
// keyed by user, so a replayed application returns the same sub-account.
type BrokerProvider struct {
	outcome models.BrokerStatus
	latency time.Duration

	mu       sync.Mutex
	accounts map[id.UserID]models.BrokerResult
}

func NewBroker(outcome models.BrokerStatus, latency time.Duration) (*BrokerProvider, error) {
	switch outcome {
	case models.BrokerStatusActive, models.BrokerStatusPendingReview, models.BrokerStatusRejected:
	default:
		return nil, fmt.Errorf("invalid broker outcome %q", outcome)
	}
	return &BrokerProvider{
		outcome:  outcome,
		latency:  latency,
		accounts: make(map[id.UserID]models.BrokerResult),
	}, nil
}

func (p *BrokerProvider) CreateSubAccount(ctx context.Context, uid id.UserID, app models.BrokerApplication) (models.BrokerResult, error) {
	if err := simulateLatency(ctx, brokerProviderID, p.latency); err != nil {
		return models.BrokerResult{}, err
	}
	if app.KYCReference == "" {
		return models.BrokerResult{}, newProviderError(ErrorBadData, brokerProviderID, "kyc reference is required", nil)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if existing, ok := p.accounts[uid]; ok {
		return existing, nil
	}

	res := models.BrokerResult{Provider: brokerProviderID, Status: p.outcome}
	switch {
	case !app.ConsentDataSharing || !app.ConsentOmnibus:
		res.Status = models.BrokerStatusRejected
		res.Reason = "omnibus and data sharing consent required"
	case p.outcome == models.BrokerStatusRejected:
		res.Reason = "application declined by broker"
	default:
		res.SubAccountID = "sa_" + uuid.NewString()
	}
	if res.Status != models.BrokerStatusRejected {
		p.accounts[uid] = res
	}
	return res, nil
}
