package e2e

import (
	"github.com/cucumber/godog"

	"onboarding/e2e/steps/common"
	"onboarding/e2e/steps/onboarding"
)

// RegisterSteps registers all step definitions from modular packages
func RegisterSteps(ctx *godog.ScenarioContext, tc *TestContext) {
	// Register common steps (service checks, generic requests, assertions)
	common.RegisterSteps(ctx, tc)

	// Register onboarding flow steps
	onboarding.RegisterSteps(ctx, tc)
}
