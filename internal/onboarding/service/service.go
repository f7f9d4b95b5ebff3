// Package service implements the onboarding state machine.
//
// Every step follows the same shape: validate the payload, load the aggregate
// and evaluate the step precondition, call the step's collaborator (outside
// any lock, bounded by a timeout and a circuit breaker), then hand a single
// models.StepUpdate to the store. The store re-evaluates the precondition
// under the per-user lock, so a request that raced another one can never
// write out of order. Audit events are emitted from the update's AfterWrite
// hook and therefore commit or roll back with the step.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"onboarding/internal/onboarding/metrics"
	"onboarding/internal/onboarding/models"
	id "onboarding/pkg/domain"
	dErrors "onboarding/pkg/domain-errors"
	audit "onboarding/pkg/platform/audit"
	"onboarding/pkg/platform/circuit"
	"onboarding/pkg/platform/sentinel"
	"onboarding/pkg/requestcontext"
)

const (
	defaultCollaboratorTimeout = 5 * time.Second
	tracerName                 = "onboarding/service"
)

// Collaborators bundles the external systems the steps delegate to.
type Collaborators struct {
	KYC        KYCProvider
	Broker     BrokerProvider
	TwoFactor  TwoFactorProvisioner
	Signatures SignatureVerifier
	Wallets    WalletGenerator
}

// Service orchestrates the onboarding steps for one user at a time.
type Service struct {
	store               Store
	collab              Collaborators
	logger              *slog.Logger
	metrics             *metrics.Metrics
	tracer              trace.Tracer
	auditPublisher      AuditPublisher
	legal               models.LegalVersions
	collaboratorTimeout time.Duration
	breakers            map[string]*circuit.Breaker
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithTracer(t trace.Tracer) Option {
	return func(s *Service) {
		if t != nil {
			s.tracer = t
		}
	}
}

func WithAuditPublisher(p AuditPublisher) Option {
	return func(s *Service) {
		s.auditPublisher = p
	}
}

// WithLegalVersions sets the document versions stamped on consent.
func WithLegalVersions(v models.LegalVersions) Option {
	return func(s *Service) {
		s.legal = v
	}
}

// WithCollaboratorTimeout bounds every collaborator call.
func WithCollaboratorTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.collaboratorTimeout = d
		}
	}
}

// WithBreakers replaces the per-collaborator circuit breakers.
func WithBreakers(failureThreshold int, cooldown time.Duration, opts ...circuit.Option) Option {
	return func(s *Service) {
		base := []circuit.Option{circuit.WithFailureThreshold(failureThreshold), circuit.WithCooldown(cooldown)}
		s.breakers = newBreakers(append(base, opts...)...)
	}
}

// New constructs a Service. Every collaborator is required.
func New(store Store, collab Collaborators, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, errors.New("onboarding store is required")
	}
	if collab.KYC == nil || collab.Broker == nil || collab.TwoFactor == nil ||
		collab.Signatures == nil || collab.Wallets == nil {
		return nil, errors.New("all onboarding collaborators are required")
	}
	s := &Service{
		store:               store,
		collab:              collab,
		logger:              slog.Default(),
		tracer:              otel.Tracer(tracerName),
		collaboratorTimeout: defaultCollaboratorTimeout,
		breakers:            newBreakers(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Init creates the aggregate for uid, or returns the existing one untouched.
func (s *Service) Init(ctx context.Context, uid id.UserID, req *models.InitRequest) (_ *models.UserAggregate, err error) {
	ctx, span := s.startSpan(ctx, "Init", uid)
	defer func() { endSpan(span, err) }()

	if req == nil {
		return nil, dErrors.New(dErrors.CodeValidation, "request is required")
	}
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	now := requestcontext.Now(ctx)
	candidate := models.NewUserAggregate(uid, req.Email, req.Locale, now)
	u, created, err := s.store.Create(ctx, candidate, func(ctx context.Context, u *models.UserAggregate) error {
		return s.emit(ctx, u.UID, audit.Event{Action: string(audit.EventOnboardingInitialized), Step: string(models.StepWelcome)})
	})
	if err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.New(dErrors.CodeConflict, "email is already registered to another user")
		}
		return nil, s.translate(err, "failed to create onboarding record")
	}
	if created {
		s.metrics.IncUsersInitialized()
		s.logger.InfoContext(ctx, "onboarding initialized",
			"user_id", uid,
			"request_id", requestcontext.RequestID(ctx),
		)
	}
	return u, nil
}

// GetState returns the aggregate for uid.
func (s *Service) GetState(ctx context.Context, uid id.UserID) (*models.UserAggregate, error) {
	u, err := s.store.FindByID(ctx, uid)
	if err != nil {
		return nil, s.translate(err, "failed to load onboarding record")
	}
	return u, nil
}

// ResetOnboarding clears progress back to welcome. Captured step data is kept.
func (s *Service) ResetOnboarding(ctx context.Context, uid id.UserID, actor, reason string) (_ *models.UserAggregate, err error) {
	ctx, span := s.startSpan(ctx, "ResetOnboarding", uid)
	defer func() { endSpan(span, err) }()

	now := requestcontext.Now(ctx)
	u, err := s.applyStep(ctx, uid, models.StepUpdate{
		Reset: true,
		Mutate: func(u *models.UserAggregate) error {
			u.Reset(now)
			return nil
		},
	}, audit.Event{
		Action:  string(audit.EventOnboardingReset),
		ActorID: actor,
		Reason:  reason,
	})
	if err != nil {
		return nil, err
	}
	s.logger.WarnContext(ctx, "onboarding reset",
		"user_id", uid,
		"actor", actor,
		"request_id", requestcontext.RequestID(ctx),
	)
	return u, nil
}

// load fetches the aggregate and evaluates attempt against it so the caller
// fails fast before contacting a collaborator.
func (s *Service) load(ctx context.Context, uid id.UserID, attempt models.Attempt) (*models.UserAggregate, error) {
	u, err := s.GetState(ctx, uid)
	if err != nil {
		return nil, err
	}
	if err := models.Evaluate(u, attempt).Err(); err != nil {
		return nil, err
	}
	return u, nil
}

// applyStep runs update through the store. ev, when it has an Action, is
// emitted inside the step transaction; reaching the terminal step also emits
// onboarding_completed.
func (s *Service) applyStep(ctx context.Context, uid id.UserID, update models.StepUpdate, ev audit.Event) (*models.UserAggregate, error) {
	var finished bool
	mutate := update.Mutate
	update.Mutate = func(u *models.UserAggregate) error {
		wasCompleted := u.Onboarding.Completed
		if mutate != nil {
			if err := mutate(u); err != nil {
				return err
			}
		}
		finished = !wasCompleted && u.Onboarding.Completed
		return nil
	}

	afterWrite := update.AfterWrite
	update.AfterWrite = func(ctx context.Context, u *models.UserAggregate) error {
		if afterWrite != nil {
			if err := afterWrite(ctx, u); err != nil {
				return err
			}
		}
		if ev.Action != "" {
			if ev.Step == "" && !update.Reset {
				ev.Step = string(update.Attempt.Step)
			}
			if err := s.emit(ctx, uid, ev); err != nil {
				return err
			}
		}
		if finished {
			return s.emit(ctx, uid, audit.Event{Action: string(audit.EventOnboardingCompleted), Step: string(models.StepCompleted)})
		}
		return nil
	}

	step := string(update.Attempt.Step)
	if update.Reset {
		step = "reset"
	}
	u, err := s.store.ApplyStepUpdate(ctx, uid, update)
	if err != nil {
		err = s.translate(err, "failed to save step")
		s.metrics.IncStepFailure(step, string(dErrors.CodeOf(err)))
		return nil, err
	}
	s.metrics.IncStepCompleted(step)
	if finished {
		s.metrics.IncOnboardingCompleted()
		s.logger.InfoContext(ctx, "onboarding completed",
			"user_id", uid,
			"request_id", requestcontext.RequestID(ctx),
		)
	}
	return u, nil
}

func (s *Service) emit(ctx context.Context, uid id.UserID, ev audit.Event) error {
	if s.auditPublisher == nil {
		return nil
	}
	ev.UserID = uid
	if err := s.auditPublisher.Emit(ctx, ev); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to record audit event")
	}
	return nil
}

// translate maps store sentinels to domain errors. Coded errors (precondition
// failures raised under the lock, hook failures) pass through.
func (s *Service) translate(err error, msg string) error {
	var de *dErrors.Error
	switch {
	case errors.As(err, &de):
		return err
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.New(dErrors.CodeNotFound, "user not found")
	case errors.Is(err, sentinel.ErrConflict):
		// the wallet key is the only unique column a step update can hit
		return errWalletTaken
	case errors.Is(err, context.DeadlineExceeded):
		return dErrors.Wrap(err, dErrors.CodeTimeout, msg)
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, msg)
	}
}

func (s *Service) startSpan(ctx context.Context, op string, uid id.UserID) (context.Context, trace.Span) {
	return s.tracer.Start(ctx, fmt.Sprintf("onboarding.%s", op),
		trace.WithAttributes(attribute.String("onboarding.user_id", uid.String())))
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, string(dErrors.CodeOf(err)))
	}
	span.End()
}
