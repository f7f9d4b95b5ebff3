// Package handler exposes the onboarding state machine over HTTP.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"onboarding/internal/idempotency"
	"onboarding/internal/onboarding/models"
	"onboarding/internal/ratelimit"
	id "onboarding/pkg/domain"
	dErrors "onboarding/pkg/domain-errors"
	"onboarding/pkg/platform/httputil"
	"onboarding/pkg/platform/middleware/admin"
	"onboarding/pkg/platform/middleware/auth"
	"onboarding/pkg/platform/middleware/request"
)

const maxBodyBytes = 1 << 20

// Service is the onboarding state machine as seen by the transport.
type Service interface {
	Init(ctx context.Context, uid id.UserID, req *models.InitRequest) (*models.UserAggregate, error)
	GetState(ctx context.Context, uid id.UserID) (*models.UserAggregate, error)
	SubmitConsents(ctx context.Context, uid id.UserID, req *models.ConsentsRequest) (*models.UserAggregate, error)
	SubmitProfile(ctx context.Context, uid id.UserID, req *models.ProfileRequest) (*models.UserAggregate, error)
	StartKYC(ctx context.Context, uid id.UserID) (*models.UserAggregate, error)
	PollKYC(ctx context.Context, uid id.UserID) (*models.UserAggregate, error)
	LinkWallet(ctx context.Context, uid id.UserID, req *models.WalletRequest) (*models.UserAggregate, error)
	CreateBrokerAccount(ctx context.Context, uid id.UserID, req *models.BrokerRequest) (*models.UserAggregate, error)
	EnableTwoFactor(ctx context.Context, uid id.UserID, req *models.SecurityRequest) (*models.UserAggregate, *models.TwoFAEnrollment, error)
	SkipTwoFactor(ctx context.Context, uid id.UserID) (*models.UserAggregate, error)
	SubmitPreferences(ctx context.Context, uid id.UserID, req *models.PreferencesRequest) (*models.UserAggregate, error)
	ResetOnboarding(ctx context.Context, uid id.UserID, actor, reason string) (*models.UserAggregate, error)
}

// Handler serves the /v1/onboarding and /admin/onboarding routes.
type Handler struct {
	service      Service
	logger       *slog.Logger
	jwtValidator auth.JWTValidator
	idempotency  *idempotency.Middleware
	rateLimit    *ratelimit.Middleware
	adminToken   string
}

type Option func(*Handler)

// WithIdempotency enables Idempotency-Key replay on the user routes.
func WithIdempotency(m *idempotency.Middleware) Option {
	return func(h *Handler) {
		h.idempotency = m
	}
}

// WithRateLimit enables per-user throttling on the user routes.
func WithRateLimit(m *ratelimit.Middleware) Option {
	return func(h *Handler) {
		h.rateLimit = m
	}
}

// WithAdminToken sets the operator token. Without it admin routes reject
// every request.
func WithAdminToken(token string) Option {
	return func(h *Handler) {
		h.adminToken = token
	}
}

func New(service Service, logger *slog.Logger, jwtValidator auth.JWTValidator, opts ...Option) *Handler {
	h := &Handler{
		service:      service,
		logger:       logger,
		jwtValidator: jwtValidator,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Register mounts the onboarding routes on r.
func (h *Handler) Register(r chi.Router) {
	r.Route("/v1/onboarding/{uid}", func(r chi.Router) {
		r.Use(auth.RequireAuth(h.jwtValidator, h.logger))
		r.Use(auth.RequireSubject("uid", h.logger))
		if h.idempotency != nil {
			r.Use(h.idempotency.Handler)
		}
		read := r.With(h.limit(ratelimit.ClassRead))
		write := r.With(h.limit(ratelimit.ClassWrite))
		collaborator := r.With(h.limit(ratelimit.ClassCollaborator))

		read.Get("/", h.handleGetState)
		read.Get("/kyc/status", h.handlePollKYC)
		write.Post("/init", h.handleInit)
		write.Post("/consents", h.handleConsents)
		write.Post("/profile", h.handleProfile)
		write.Post("/security/skip", h.handleSkipTwoFactor)
		write.Post("/preferences", h.handlePreferences)
		collaborator.Post("/kyc", h.handleStartKYC)
		collaborator.Post("/wallet", h.handleWallet)
		collaborator.Post("/broker", h.handleBroker)
		collaborator.Post("/security", h.handleEnableTwoFactor)
	})

	r.Route("/admin/onboarding/{uid}", func(r chi.Router) {
		r.Use(admin.RequireAdminToken(h.adminToken, h.logger))
		r.Post("/reset", h.handleReset)
	})
}

func (h *Handler) limit(class ratelimit.Class) func(http.Handler) http.Handler {
	if h.rateLimit == nil {
		return func(next http.Handler) http.Handler { return next }
	}
	return h.rateLimit.Limit(class)
}

func (h *Handler) handleGetState(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, "get_state", func(ctx context.Context, uid id.UserID) (*models.UserAggregate, error) {
		return h.service.GetState(ctx, uid)
	})
}

func (h *Handler) handleInit(w http.ResponseWriter, r *http.Request) {
	var req models.InitRequest
	if !h.decode(w, r, &req) {
		return
	}
	h.respond(w, r, "init", func(ctx context.Context, uid id.UserID) (*models.UserAggregate, error) {
		return h.service.Init(ctx, uid, &req)
	})
}

func (h *Handler) handleConsents(w http.ResponseWriter, r *http.Request) {
	var req models.ConsentsRequest
	if !h.decode(w, r, &req) {
		return
	}
	h.respond(w, r, "consents", func(ctx context.Context, uid id.UserID) (*models.UserAggregate, error) {
		return h.service.SubmitConsents(ctx, uid, &req)
	})
}

func (h *Handler) handleProfile(w http.ResponseWriter, r *http.Request) {
	var req models.ProfileRequest
	if !h.decode(w, r, &req) {
		return
	}
	h.respond(w, r, "profile", func(ctx context.Context, uid id.UserID) (*models.UserAggregate, error) {
		return h.service.SubmitProfile(ctx, uid, &req)
	})
}

func (h *Handler) handleStartKYC(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, "kyc", func(ctx context.Context, uid id.UserID) (*models.UserAggregate, error) {
		return h.service.StartKYC(ctx, uid)
	})
}

func (h *Handler) handlePollKYC(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, "kyc_status", func(ctx context.Context, uid id.UserID) (*models.UserAggregate, error) {
		return h.service.PollKYC(ctx, uid)
	})
}

func (h *Handler) handleWallet(w http.ResponseWriter, r *http.Request) {
	var req models.WalletRequest
	if !h.decode(w, r, &req) {
		return
	}
	h.respond(w, r, "wallet", func(ctx context.Context, uid id.UserID) (*models.UserAggregate, error) {
		return h.service.LinkWallet(ctx, uid, &req)
	})
}

func (h *Handler) handleBroker(w http.ResponseWriter, r *http.Request) {
	var req models.BrokerRequest
	if !h.decode(w, r, &req) {
		return
	}
	h.respond(w, r, "broker", func(ctx context.Context, uid id.UserID) (*models.UserAggregate, error) {
		return h.service.CreateBrokerAccount(ctx, uid, &req)
	})
}

func (h *Handler) handleEnableTwoFactor(w http.ResponseWriter, r *http.Request) {
	var req models.SecurityRequest
	if !h.decode(w, r, &req) {
		return
	}
	uid, ok := h.userID(w, r)
	if !ok {
		return
	}
	u, enrollment, err := h.service.EnableTwoFactor(r.Context(), uid, &req)
	if err != nil {
		h.writeError(w, r, "security", uid, err)
		return
	}
	state := toStateResponse(u)
	if redacted, err := json.Marshal(TwoFactorResponse{State: state}); err == nil {
		idempotency.ReplayWith(r.Context(), redacted)
	} else {
		h.logger.ErrorContext(r.Context(), "failed to encode redacted 2fa response", "error", err)
	}
	httputil.WriteJSON(w, http.StatusOK, TwoFactorResponse{
		State:     state,
		TwoFactor: toEnrollmentResponse(enrollment),
	})
}

func (h *Handler) handleSkipTwoFactor(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, "security_skip", func(ctx context.Context, uid id.UserID) (*models.UserAggregate, error) {
		return h.service.SkipTwoFactor(ctx, uid)
	})
}

func (h *Handler) handlePreferences(w http.ResponseWriter, r *http.Request) {
	var req models.PreferencesRequest
	if !h.decode(w, r, &req) {
		return
	}
	h.respond(w, r, "preferences", func(ctx context.Context, uid id.UserID) (*models.UserAggregate, error) {
		return h.service.SubmitPreferences(ctx, uid, &req)
	})
}

func (h *Handler) handleReset(w http.ResponseWriter, r *http.Request) {
	var req ResetRequest
	if !h.decode(w, r, &req) {
		return
	}
	req.Normalize()
	if err := req.Validate(); err != nil {
		h.writeError(w, r, "reset", "", err)
		return
	}
	h.respond(w, r, "reset", func(ctx context.Context, uid id.UserID) (*models.UserAggregate, error) {
		return h.service.ResetOnboarding(ctx, uid, req.Actor, req.Reason)
	})
}

// respond resolves the path uid, runs op and renders the aggregate.
func (h *Handler) respond(w http.ResponseWriter, r *http.Request, op string, fn func(context.Context, id.UserID) (*models.UserAggregate, error)) {
	uid, ok := h.userID(w, r)
	if !ok {
		return
	}
	u, err := fn(r.Context(), uid)
	if err != nil {
		h.writeError(w, r, op, uid, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toStateResponse(u))
}

func (h *Handler) userID(w http.ResponseWriter, r *http.Request) (id.UserID, bool) {
	uid, err := id.ParseUserID(chi.URLParam(r, "uid"))
	if err != nil {
		httputil.WriteError(w, err)
		return "", false
	}
	return uid, true
}

// decode reads a JSON body into dst. An empty body decodes to the zero value
// so validation can report the missing fields.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(dst)
	if err == nil || errors.Is(err, io.EOF) {
		return true
	}
	ctx := r.Context()
	h.logger.WarnContext(ctx, "invalid request body",
		"path", r.URL.Path,
		"error", err,
		"request_id", request.GetRequestID(ctx),
	)
	httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
	return false
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, op string, uid id.UserID, err error) {
	ctx := r.Context()
	status := httputil.StatusFor(dErrors.CodeOf(err))
	level := slog.LevelWarn
	if status >= http.StatusInternalServerError {
		level = slog.LevelError
	}
	h.logger.Log(ctx, level, "onboarding request failed",
		"operation", op,
		"user_id", uid,
		"status", status,
		"error", err,
		"request_id", request.GetRequestID(ctx),
	)
	httputil.WriteError(w, err)
}
