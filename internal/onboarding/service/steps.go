package service

import (
	"context"

	"onboarding/internal/onboarding/models"
	id "onboarding/pkg/domain"
	dErrors "onboarding/pkg/domain-errors"
	audit "onboarding/pkg/platform/audit"
	"onboarding/pkg/requestcontext"
)

// SubmitConsents records acceptance of all three legal documents at the
// configured versions. A replay at unchanged versions writes nothing.
func (s *Service) SubmitConsents(ctx context.Context, uid id.UserID, req *models.ConsentsRequest) (_ *models.UserAggregate, err error) {
	ctx, span := s.startSpan(ctx, "SubmitConsents", uid)
	defer func() { endSpan(span, err) }()

	if err := req.Validate(); err != nil {
		return nil, err
	}
	attempt := models.Attempt{Step: models.StepConsents}
	if _, err := s.load(ctx, uid, attempt); err != nil {
		return nil, err
	}

	now := requestcontext.Now(ctx)
	return s.applyStep(ctx, uid, models.StepUpdate{
		Attempt: attempt,
		Mutate: func(u *models.UserAggregate) error {
			if consentsCurrent(u, s.legal) {
				return models.ErrNoChange
			}
			u.Consents = models.NewConsents(s.legal, now)
			u.MarkStepCompleted(models.StepConsents, now)
			u.Touch(now)
			return nil
		},
	}, audit.Event{
		Action:   string(audit.EventConsentsAccepted),
		Decision: "accepted",
		Reason:   "tos=" + s.legal.TOS + " privacy=" + s.legal.Privacy + " risk=" + s.legal.Risk,
	})
}

// SubmitProfile stores the identity profile and derives the jurisdiction.
// Resubmission overwrites the previous profile.
func (s *Service) SubmitProfile(ctx context.Context, uid id.UserID, req *models.ProfileRequest) (_ *models.UserAggregate, err error) {
	ctx, span := s.startSpan(ctx, "SubmitProfile", uid)
	defer func() { endSpan(span, err) }()

	if req == nil {
		return nil, dErrors.New(dErrors.CodeValidation, "request is required")
	}
	now := requestcontext.Now(ctx)
	req.Normalize()
	if err := req.Validate(now); err != nil {
		return nil, err
	}
	attempt := models.Attempt{Step: models.StepProfile}
	if _, err := s.load(ctx, uid, attempt); err != nil {
		return nil, err
	}

	profile := req.ToProfile(now)
	juris := req.ResolveJurisdiction()
	return s.applyStep(ctx, uid, models.StepUpdate{
		Attempt: attempt,
		Mutate: func(u *models.UserAggregate) error {
			u.Profile = profile
			u.Jurisdiction = juris
			u.MarkStepCompleted(models.StepProfile, now)
			u.Touch(now)
			return nil
		},
	}, audit.Event{
		Action:   string(audit.EventProfileSubmitted),
		Decision: string(juris),
	})
}

// EnableTwoFactor enrolls a second factor. The returned enrollment carries
// the setup secret and backup codes; neither is stored on the aggregate.
func (s *Service) EnableTwoFactor(ctx context.Context, uid id.UserID, req *models.SecurityRequest) (_ *models.UserAggregate, _ *models.TwoFAEnrollment, err error) {
	ctx, span := s.startSpan(ctx, "EnableTwoFactor", uid)
	defer func() { endSpan(span, err) }()

	if req == nil {
		return nil, nil, dErrors.New(dErrors.CodeValidation, "request is required")
	}
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, nil, err
	}
	attempt := models.Attempt{Step: models.StepSecurity}
	if _, err := s.load(ctx, uid, attempt); err != nil {
		return nil, nil, err
	}

	method := models.TwoFAMethod(req.Method)
	enrollment, err := callCollaborator(ctx, s, CollaboratorTwoFactor, func(ctx context.Context) (models.TwoFAEnrollment, error) {
		return s.collab.TwoFactor.Enable(ctx, uid, method)
	})
	if err != nil {
		return nil, nil, err
	}
	if len(enrollment.BackupCodes) == 0 {
		return nil, nil, dErrors.New(dErrors.CodeCollaboratorFailure, "two-factor provisioner returned no backup codes")
	}

	now := requestcontext.Now(ctx)
	u, err := s.applyStep(ctx, uid, models.StepUpdate{
		Attempt: attempt,
		Mutate: func(u *models.UserAggregate) error {
			enabledAt := now
			u.Security = &models.Security{TwoFA: models.TwoFA{
				Method:    method,
				Enabled:   true,
				EnabledAt: &enabledAt,
			}}
			u.MarkStepCompleted(models.StepSecurity, now)
			u.Touch(now)
			return nil
		},
	}, audit.Event{
		Action:   string(audit.EventTwoFactorEnabled),
		Decision: string(method),
	})
	if err != nil {
		return nil, nil, err
	}
	if enrollment.Method == "" {
		enrollment.Method = method
	}
	return u, &enrollment, nil
}

// SkipTwoFactor completes the security step without a second factor. An
// already enabled factor is left in place.
func (s *Service) SkipTwoFactor(ctx context.Context, uid id.UserID) (_ *models.UserAggregate, err error) {
	ctx, span := s.startSpan(ctx, "SkipTwoFactor", uid)
	defer func() { endSpan(span, err) }()

	attempt := models.Attempt{Step: models.StepSecurity, Op: models.OpSkip}
	if _, err := s.load(ctx, uid, attempt); err != nil {
		return nil, err
	}

	now := requestcontext.Now(ctx)
	var skipped bool
	return s.applyStep(ctx, uid, models.StepUpdate{
		Attempt: attempt,
		Mutate: func(u *models.UserAggregate) error {
			if twoFactorEnabled(u) {
				return completeOnly(models.StepSecurity, now)(u)
			}
			if u.IsStepCompleted(models.StepSecurity) && u.Security != nil && u.Security.TwoFA.SkippedAt != nil {
				return models.ErrNoChange
			}
			skippedAt := now
			u.Security = &models.Security{TwoFA: models.TwoFA{SkippedAt: &skippedAt}}
			u.MarkStepCompleted(models.StepSecurity, now)
			u.Touch(now)
			skipped = true
			return nil
		},
		AfterWrite: func(ctx context.Context, u *models.UserAggregate) error {
			if !skipped {
				return nil
			}
			return s.emit(ctx, uid, audit.Event{
				Action:   string(audit.EventTwoFactorSkipped),
				Step:     string(models.StepSecurity),
				Decision: "risk_accepted",
			})
		},
	}, audit.Event{})
}

// SubmitPreferences stores preferences. It is the terminal step: the first
// successful call completes onboarding, later calls only update preferences.
func (s *Service) SubmitPreferences(ctx context.Context, uid id.UserID, req *models.PreferencesRequest) (_ *models.UserAggregate, err error) {
	ctx, span := s.startSpan(ctx, "SubmitPreferences", uid)
	defer func() { endSpan(span, err) }()

	if req == nil {
		return nil, dErrors.New(dErrors.CodeValidation, "request is required")
	}
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}
	attempt := models.Attempt{Step: models.StepPreferences}
	if _, err := s.load(ctx, uid, attempt); err != nil {
		return nil, err
	}

	now := requestcontext.Now(ctx)
	prefs := req.ToPreferences(now)
	return s.applyStep(ctx, uid, models.StepUpdate{
		Attempt: attempt,
		Mutate: func(u *models.UserAggregate) error {
			u.Preferences = prefs
			u.MarkStepCompleted(models.StepPreferences, now)
			u.Touch(now)
			return nil
		},
	}, audit.Event{
		Action:   string(audit.EventPreferencesSaved),
		Decision: string(prefs.Theme) + "/" + string(prefs.DefaultQuote),
	})
}
