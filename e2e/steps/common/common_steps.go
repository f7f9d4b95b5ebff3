package common

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/cucumber/godog"
)

// TestContext interface defines the methods needed from the main test context
type TestContext interface {
	GET(path string, headers map[string]string) error
	Send(method, path string, body any, headers map[string]string) error
	AuthenticateAs(uid string) error
	GetAccessToken() string
	GetUserID() string
	GetAdminToken() string
	GetLastStatus() int
	GetLastBody() []byte
	GetResponseField(field string) (any, error)
	ResponseContains(field string) bool
}

// RegisterSteps registers service checks, generic requests and assertions.
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &commonSteps{tc: tc}

	ctx.Step(`^the onboarding service is running$`, steps.serviceIsRunning)
	ctx.Step(`^I am authenticated as a new user$`, steps.authenticateAsNewUser)
	ctx.Step(`^I am authenticated as "([^"]*)"$`, steps.authenticateAs)

	ctx.Step(`^I GET my onboarding state$`, steps.getMyState)
	ctx.Step(`^I GET the onboarding state of "([^"]*)"$`, steps.getStateOf)
	ctx.Step(`^I GET my onboarding state without authentication$`, steps.getMyStateWithoutAuth)

	ctx.Step(`^the response status should be (\d+)$`, steps.responseStatusShouldBe)
	ctx.Step(`^the response field "([^"]*)" should be "([^"]*)"$`, steps.responseFieldShouldBe)
	ctx.Step(`^the response should contain "([^"]*)"$`, steps.responseShouldContain)
	ctx.Step(`^the response should not contain "([^"]*)"$`, steps.responseShouldNotContain)
}

type commonSteps struct {
	tc TestContext
}

func (s *commonSteps) serviceIsRunning(ctx context.Context) error {
	if err := s.tc.GET("/health", nil); err != nil {
		return err
	}
	if s.tc.GetLastStatus() != 200 {
		return fmt.Errorf("service unhealthy: %d %s", s.tc.GetLastStatus(), s.tc.GetLastBody())
	}
	return nil
}

func (s *commonSteps) authenticateAsNewUser(ctx context.Context) error {
	return s.tc.AuthenticateAs("e2e-" + strconv.FormatInt(time.Now().UnixNano(), 36))
}

func (s *commonSteps) authenticateAs(ctx context.Context, uid string) error {
	return s.tc.AuthenticateAs(uid)
}

func (s *commonSteps) getMyState(ctx context.Context) error {
	return s.getStateOf(ctx, s.tc.GetUserID())
}

func (s *commonSteps) getStateOf(ctx context.Context, uid string) error {
	return s.tc.GET("/v1/onboarding/"+uid, map[string]string{
		"Authorization": "Bearer " + s.tc.GetAccessToken(),
	})
}

func (s *commonSteps) getMyStateWithoutAuth(ctx context.Context) error {
	return s.tc.GET("/v1/onboarding/"+s.tc.GetUserID(), nil)
}

func (s *commonSteps) responseStatusShouldBe(ctx context.Context, status int) error {
	if got := s.tc.GetLastStatus(); got != status {
		return fmt.Errorf("expected status %d, got %d: %s", status, got, s.tc.GetLastBody())
	}
	return nil
}

func (s *commonSteps) responseFieldShouldBe(ctx context.Context, field, expected string) error {
	v, err := s.tc.GetResponseField(field)
	if err != nil {
		return err
	}
	if got := fmt.Sprint(v); got != expected {
		return fmt.Errorf("expected %s to be %q, got %q", field, expected, got)
	}
	return nil
}

func (s *commonSteps) responseShouldContain(ctx context.Context, field string) error {
	if !s.tc.ResponseContains(field) {
		return fmt.Errorf("expected response to contain %q: %s", field, s.tc.GetLastBody())
	}
	return nil
}

func (s *commonSteps) responseShouldNotContain(ctx context.Context, field string) error {
	if s.tc.ResponseContains(field) {
		return fmt.Errorf("expected response not to contain %q", field)
	}
	return nil
}
