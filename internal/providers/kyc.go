package providers

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"onboarding/internal/onboarding/models"
	id "onboarding/pkg/domain"
)

const kycProviderID = "mock-kyc"

type kycCase struct {
	uid    id.UserID
	result models.KYCResult
}

// KYCProvider scores three independent sub-checks in parallel and reports a
// configured outcome when none of them fails. Cases submitted as pending move
// to the configured poll outcome on the next Status call.
type KYCProvider struct {
	outcome     models.KYCStatus
	pollOutcome models.KYCStatus
	latency     time.Duration
	sanctioned  map[string]bool
	clock       func() time.Time

	mu    sync.Mutex
	cases map[string]kycCase
}

type KYCOption func(*KYCProvider)

// WithKYCOutcome sets the Submit outcome for profiles that pass every check.
func WithKYCOutcome(status models.KYCStatus) KYCOption {
	return func(p *KYCProvider) { p.outcome = status }
}

// WithPollOutcome sets what a pending case resolves to when polled.
func WithPollOutcome(status models.KYCStatus) KYCOption {
	return func(p *KYCProvider) { p.pollOutcome = status }
}

func WithKYCLatency(d time.Duration) KYCOption {
	return func(p *KYCProvider) { p.latency = d }
}

// WithSanctionedNames lists full names ("first last") the sanctions check flags.
func WithSanctionedNames(names ...string) KYCOption {
	return func(p *KYCProvider) {
		for _, n := range names {
			p.sanctioned[normalizeName(n)] = true
		}
	}
}

func WithKYCClock(clock func() time.Time) KYCOption {
	return func(p *KYCProvider) {
		if clock != nil {
			p.clock = clock
		}
	}
}

func NewKYC(opts ...KYCOption) (*KYCProvider, error) {
	p := &KYCProvider{
		outcome:     models.KYCStatusApproved,
		pollOutcome: models.KYCStatusApproved,
		sanctioned:  make(map[string]bool),
		clock:       time.Now,
		cases:       make(map[string]kycCase),
	}
	for _, opt := range opts {
		opt(p)
	}
	if !p.outcome.IsValid() {
		return nil, fmt.Errorf("invalid kyc outcome %q", p.outcome)
	}
	if !p.pollOutcome.IsValid() || p.pollOutcome == models.KYCStatusPending {
		return nil, fmt.Errorf("invalid kyc poll outcome %q", p.pollOutcome)
	}
	return p, nil
}

func (p *KYCProvider) Submit(ctx context.Context, uid id.UserID, profile models.Profile) (models.KYCResult, error) {
	if err := simulateLatency(ctx, kycProviderID, p.latency); err != nil {
		return models.KYCResult{}, err
	}

	now := p.clock().UTC()
	var identity, address, sanctions models.KYCCheck
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		identity = p.checkIdentity(gctx, profile, now)
		return gctx.Err()
	})
	g.Go(func() error {
		address = p.checkAddress(gctx, profile, now)
		return gctx.Err()
	})
	g.Go(func() error {
		sanctions = p.checkSanctions(gctx, profile, now)
		return gctx.Err()
	})
	if err := g.Wait(); err != nil {
		return models.KYCResult{}, newProviderError(ErrorTimeout, kycProviderID, "checks interrupted", err)
	}

	res := models.KYCResult{
		Provider:  kycProviderID,
		Reference: "kyc_" + uuid.NewString(),
		Level:     "basic",
		Checks: map[string]models.KYCCheck{
			models.CheckIdentity:  identity,
			models.CheckAddress:   address,
			models.CheckSanctions: sanctions,
		},
	}
	switch {
	case sanctions.Status == models.CheckFailed:
		res.Status = models.KYCStatusRejected
		res.RiskLevel = "high"
		res.RejectionReason = "sanctions screening match"
	case identity.Status == models.CheckFailed:
		res.Status = models.KYCStatusRejected
		res.RiskLevel = "medium"
		res.RejectionReason = "identity could not be verified"
	case address.Status == models.CheckFailed:
		res.Status = models.KYCStatusRequiresMore
		res.RiskLevel = "medium"
		res.RejectionReason = "proof of address required"
	default:
		res.Status = p.outcome
		res.RiskLevel = "low"
		res.RejectionReason = p.reasonFor(p.outcome)
		if p.outcome == models.KYCStatusPending {
			res.Checks[models.CheckIdentity] = pendingCheck(identity)
		}
	}

	p.mu.Lock()
	p.cases[res.Reference] = kycCase{uid: uid, result: res}
	p.mu.Unlock()
	return res, nil
}

func (p *KYCProvider) Status(ctx context.Context, uid id.UserID, reference string) (models.KYCResult, error) {
	if err := simulateLatency(ctx, kycProviderID, p.latency); err != nil {
		return models.KYCResult{}, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	c, ok := p.cases[reference]
	if !ok || c.uid != uid {
		return models.KYCResult{}, newProviderError(ErrorNotFound, kycProviderID, "unknown kyc reference", nil)
	}
	if c.result.Status == models.KYCStatusPending {
		now := p.clock().UTC()
		c.result.Status = p.pollOutcome
		c.result.RejectionReason = p.reasonFor(p.pollOutcome)
		checks := make(map[string]models.KYCCheck, len(c.result.Checks))
		for name, check := range c.result.Checks {
			if check.Status == models.CheckPending {
				check.Status = models.CheckPassed
				if p.pollOutcome == models.KYCStatusRejected {
					check.Status = models.CheckFailed
				}
				check.CheckedAt = now
			}
			checks[name] = check
		}
		c.result.Checks = checks
		p.cases[reference] = c
	}
	return c.result, nil
}

func (p *KYCProvider) reasonFor(status models.KYCStatus) string {
	switch status {
	case models.KYCStatusRejected:
		return "document review failed"
	case models.KYCStatusRequiresMore:
		return "additional documents required"
	}
	return ""
}

func (p *KYCProvider) checkIdentity(_ context.Context, profile models.Profile, now time.Time) models.KYCCheck {
	check := models.KYCCheck{Status: models.CheckPassed, Score: 0.95, CheckedAt: now, Provider: kycProviderID}
	if profile.FirstName == "" || profile.LastName == "" {
		check.Status, check.Score = models.CheckFailed, 0
		return check
	}
	if _, err := time.Parse(models.DateLayout, profile.DateOfBirth); err != nil {
		check.Status, check.Score = models.CheckFailed, 0.1
	}
	return check
}

func (p *KYCProvider) checkAddress(_ context.Context, profile models.Profile, now time.Time) models.KYCCheck {
	check := models.KYCCheck{Status: models.CheckPassed, Score: 0.9, CheckedAt: now, Provider: kycProviderID}
	a := profile.Address
	if a.Line1 == "" || a.City == "" || a.PostalCode == "" {
		check.Status, check.Score = models.CheckFailed, 0.2
	}
	return check
}

func (p *KYCProvider) checkSanctions(_ context.Context, profile models.Profile, now time.Time) models.KYCCheck {
	check := models.KYCCheck{Status: models.CheckPassed, Score: 0.99, CheckedAt: now, Provider: kycProviderID}
	if p.sanctioned[normalizeName(profile.FirstName+" "+profile.LastName)] {
		check.Status, check.Score = models.CheckFailed, 1
	}
	return check
}

func pendingCheck(c models.KYCCheck) models.KYCCheck {
	c.Status = models.CheckPending
	c.Score = 0
	return c
}

func normalizeName(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}
