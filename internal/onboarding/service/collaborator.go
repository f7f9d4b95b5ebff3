package service

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	dErrors "onboarding/pkg/domain-errors"
	"onboarding/pkg/platform/circuit"
	"onboarding/pkg/requestcontext"
)

// Collaborator names, used for breakers, metrics and spans.
const (
	CollaboratorKYC        = "kyc"
	CollaboratorBroker     = "broker"
	CollaboratorTwoFactor  = "two_factor"
	CollaboratorSignatures = "signature_verifier"
	CollaboratorWallets    = "wallet_generator"
)

var collaboratorNames = []string{
	CollaboratorKYC,
	CollaboratorBroker,
	CollaboratorTwoFactor,
	CollaboratorSignatures,
	CollaboratorWallets,
}

func newBreakers(opts ...circuit.Option) map[string]*circuit.Breaker {
	out := make(map[string]*circuit.Breaker, len(collaboratorNames))
	for _, name := range collaboratorNames {
		out[name] = circuit.New(name, opts...)
	}
	return out
}

// callCollaborator invokes fn under the collaborator timeout and breaker.
// Errors, timeouts and open breakers all surface as CollaboratorFailure so
// the caller can retry the same request; nothing has been written yet.
func callCollaborator[T any](ctx context.Context, s *Service, name string, fn func(ctx context.Context) (T, error)) (T, error) {
	var zero T

	breaker := s.breakers[name]
	if breaker != nil && !breaker.Allow() {
		s.metrics.ObserveCollaborator(name, "short_circuit", 0)
		return zero, dErrors.New(dErrors.CodeCollaboratorFailure, name+" is temporarily unavailable")
	}

	ctx, span := s.tracer.Start(ctx, "collaborator."+name,
		trace.WithAttributes(attribute.String("onboarding.collaborator", name)))
	defer span.End()

	callCtx, cancel := context.WithTimeout(ctx, s.collaboratorTimeout)
	defer cancel()

	start := time.Now()
	res, err := fn(callCtx)
	elapsed := time.Since(start)
	if err == nil && callCtx.Err() != nil {
		err = callCtx.Err()
	}

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "collaborator failed")
		s.metrics.ObserveCollaborator(name, "error", elapsed)
		if breaker != nil && !errors.Is(ctx.Err(), context.Canceled) {
			if _, change := breaker.RecordFailure(); change.Opened {
				s.metrics.SetBreakerOpen(name, true)
				s.logger.WarnContext(ctx, "collaborator circuit opened",
					"collaborator", name,
					"request_id", requestcontext.RequestID(ctx),
				)
			}
		}
		s.logger.ErrorContext(ctx, "collaborator call failed",
			"collaborator", name,
			"duration_ms", elapsed.Milliseconds(),
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		msg := name + " call failed"
		if errors.Is(err, context.DeadlineExceeded) {
			msg = name + " call timed out"
		}
		return zero, dErrors.Wrap(err, dErrors.CodeCollaboratorFailure, msg)
	}

	s.metrics.ObserveCollaborator(name, "ok", elapsed)
	if breaker != nil {
		if _, change := breaker.RecordSuccess(); change.Closed {
			s.metrics.SetBreakerOpen(name, false)
			s.logger.InfoContext(ctx, "collaborator circuit closed",
				"collaborator", name,
				"request_id", requestcontext.RequestID(ctx),
			)
		}
	}
	return res, nil
}
