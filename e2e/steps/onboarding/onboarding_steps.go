package onboarding

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/cucumber/godog"
)

// TestContext interface defines the methods needed from the main test context
type TestContext interface {
	POST(path string, body any) error
	Send(method, path string, body any, headers map[string]string) error
	GetUserID() string
	GetAccessToken() string
	GetAdminToken() string
	GetResponseField(field string) (any, error)
}

var gatedSteps = []string{"consents", "profile", "kyc", "wallet", "broker", "security", "preferences"}

// RegisterSteps registers onboarding step definitions
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &onboardingSteps{tc: tc}

	ctx.Step(`^I initialize onboarding with email "([^"]*)" and locale "([^"]*)"$`, steps.initialize)
	ctx.Step(`^I initialize onboarding with a unique email$`, steps.initializeUnique)
	ctx.Step(`^I accept all consents$`, steps.acceptAllConsents)
	ctx.Step(`^I accept consents with risk disclosure "(true|false)"$`, steps.acceptConsentsWithRisk)
	ctx.Step(`^I submit a profile for a (\d+) year old resident of "([^"]*)"$`, steps.submitProfile)
	ctx.Step(`^I start KYC$`, steps.startKYC)
	ctx.Step(`^I poll the KYC status$`, steps.pollKYC)
	ctx.Step(`^I link a generated "([^"]*)" wallet$`, steps.linkGeneratedWallet)
	ctx.Step(`^I open a broker account with both consents$`, steps.openBrokerAccount)
	ctx.Step(`^I enable "([^"]*)" two factor authentication$`, steps.enableTwoFactor)
	ctx.Step(`^I skip two factor authentication$`, steps.skipTwoFactor)
	ctx.Step(`^I save preferences with theme "([^"]*)" and quote "([^"]*)"$`, steps.savePreferences)
	ctx.Step(`^I complete onboarding up to "([^"]*)"$`, steps.completeUpTo)
	ctx.Step(`^an operator resets my onboarding with reason "([^"]*)"$`, steps.adminReset)
	ctx.Step(`^I start KYC with idempotency key "([^"]*)"$`, steps.startKYCWithKey)

	ctx.Step(`^the current step should be "([^"]*)"$`, steps.currentStepShouldBe)
	ctx.Step(`^onboarding should be completed$`, steps.onboardingShouldBeCompleted)
	ctx.Step(`^all gated steps should be completed$`, steps.allGatedStepsCompleted)
	ctx.Step(`^I should receive (\d+) backup codes$`, steps.shouldReceiveBackupCodes)
}

type onboardingSteps struct {
	tc TestContext
}

func (s *onboardingSteps) path(suffix string) string {
	return "/v1/onboarding/" + s.tc.GetUserID() + suffix
}

func (s *onboardingSteps) initialize(ctx context.Context, email, locale string) error {
	return s.tc.POST(s.path("/init"), map[string]string{"email": email, "locale": locale})
}

func (s *onboardingSteps) initializeUnique(ctx context.Context) error {
	return s.initialize(ctx, s.tc.GetUserID()+"@e2e.example.com", "de")
}

func (s *onboardingSteps) acceptAllConsents(ctx context.Context) error {
	return s.acceptConsentsWithRisk(ctx, "true")
}

func (s *onboardingSteps) acceptConsentsWithRisk(ctx context.Context, risk string) error {
	return s.tc.POST(s.path("/consents"), map[string]bool{
		"tos":     true,
		"privacy": true,
		"risk":    risk == "true",
	})
}

func (s *onboardingSteps) submitProfile(ctx context.Context, age int, country string) error {
	dob := time.Now().AddDate(-age, 0, -1).Format("2006-01-02")
	return s.tc.POST(s.path("/profile"), map[string]any{
		"first_name":    "Erika",
		"last_name":     "Mustermann",
		"dob":           dob,
		"country":       country,
		"tax_residency": country,
		"address": map[string]string{
			"line1":       "Heidestrasse 17",
			"city":        "Koeln",
			"postal_code": "51147",
		},
		"phone":      "+4922112345678",
		"experience": "intermediate",
	})
}

func (s *onboardingSteps) startKYC(ctx context.Context) error {
	return s.tc.POST(s.path("/kyc"), nil)
}

func (s *onboardingSteps) startKYCWithKey(ctx context.Context, key string) error {
	return s.tc.Send("POST", s.path("/kyc"), nil, map[string]string{
		"Authorization":   "Bearer " + s.token(),
		"Idempotency-Key": key,
	})
}

func (s *onboardingSteps) pollKYC(ctx context.Context) error {
	return s.tc.Send("GET", s.path("/kyc/status"), nil, map[string]string{
		"Authorization": "Bearer " + s.token(),
	})
}

func (s *onboardingSteps) linkGeneratedWallet(ctx context.Context, chain string) error {
	return s.tc.POST(s.path("/wallet"), map[string]any{"chain": chain, "is_generated": true})
}

func (s *onboardingSteps) openBrokerAccount(ctx context.Context) error {
	return s.tc.POST(s.path("/broker"), map[string]bool{
		"consent_data_sharing": true,
		"consent_omnibus":      true,
	})
}

func (s *onboardingSteps) enableTwoFactor(ctx context.Context, method string) error {
	return s.tc.POST(s.path("/security"), map[string]string{"method": method})
}

func (s *onboardingSteps) skipTwoFactor(ctx context.Context) error {
	return s.tc.POST(s.path("/security/skip"), nil)
}

func (s *onboardingSteps) savePreferences(ctx context.Context, theme, quote string) error {
	return s.tc.POST(s.path("/preferences"), map[string]any{
		"email_notifications": true,
		"push_notifications":  false,
		"price_alerts":        true,
		"marketing_emails":    false,
		"show_hints":          true,
		"theme":               theme,
		"default_quote":       quote,
	})
}

// completeUpTo runs every step before target with valid input.
func (s *onboardingSteps) completeUpTo(ctx context.Context, target string) error {
	runners := map[string]func() error{
		"consents":    func() error { return s.acceptAllConsents(ctx) },
		"profile":     func() error { return s.submitProfile(ctx, 30, "DE") },
		"kyc":         func() error { return s.startKYC(ctx) },
		"wallet":      func() error { return s.linkGeneratedWallet(ctx, "solana") },
		"broker":      func() error { return s.openBrokerAccount(ctx) },
		"security":    func() error { return s.skipTwoFactor(ctx) },
		"preferences": func() error { return s.savePreferences(ctx, "dark", "USDC") },
	}
	idx := slices.Index(gatedSteps, target)
	if idx < 0 {
		return fmt.Errorf("unknown step %q", target)
	}
	for _, step := range gatedSteps[:idx] {
		if err := runners[step](); err != nil {
			return fmt.Errorf("step %s: %w", step, err)
		}
	}
	return nil
}

func (s *onboardingSteps) adminReset(ctx context.Context, reason string) error {
	if s.tc.GetAdminToken() == "" {
		return godog.ErrPending
	}
	return s.tc.Send("POST", "/admin/onboarding/"+s.tc.GetUserID()+"/reset",
		map[string]string{"actor": "e2e-operator", "reason": reason},
		map[string]string{"X-Admin-Token": s.tc.GetAdminToken()},
	)
}

func (s *onboardingSteps) currentStepShouldBe(ctx context.Context, step string) error {
	v, err := s.stateField("onboarding.current_step")
	if err != nil {
		return err
	}
	if v != step {
		return fmt.Errorf("expected current step %q, got %v", step, v)
	}
	return nil
}

func (s *onboardingSteps) onboardingShouldBeCompleted(ctx context.Context) error {
	v, err := s.stateField("onboarding.completed")
	if err != nil {
		return err
	}
	if done, _ := v.(bool); !done {
		return fmt.Errorf("expected onboarding to be completed")
	}
	return nil
}

func (s *onboardingSteps) allGatedStepsCompleted(ctx context.Context) error {
	v, err := s.stateField("onboarding.completed_steps")
	if err != nil {
		return err
	}
	list, ok := v.([]any)
	if !ok {
		return fmt.Errorf("completed_steps is not a list: %v", v)
	}
	got := make([]string, 0, len(list))
	for _, item := range list {
		got = append(got, fmt.Sprint(item))
	}
	for _, step := range gatedSteps {
		if !slices.Contains(got, step) {
			return fmt.Errorf("step %s missing from completed_steps %v", step, got)
		}
	}
	return nil
}

func (s *onboardingSteps) shouldReceiveBackupCodes(ctx context.Context, n int) error {
	v, err := s.tc.GetResponseField("two_factor.backup_codes")
	if err != nil {
		return err
	}
	codes, ok := v.([]any)
	if !ok || len(codes) != n {
		return fmt.Errorf("expected %d backup codes, got %v", n, v)
	}
	return nil
}

// stateField reads from a plain state response or the state nested in a
// security enable response.
func (s *onboardingSteps) stateField(field string) (any, error) {
	if v, err := s.tc.GetResponseField(field); err == nil {
		return v, nil
	}
	return s.tc.GetResponseField("state." + field)
}

func (s *onboardingSteps) token() string {
	return s.tc.GetAccessToken()
}
