package ratelimit

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"onboarding/pkg/platform/circuit"
	"onboarding/pkg/platform/httputil"
	"onboarding/pkg/platform/middleware/request"
	"onboarding/pkg/requestcontext"
)

// DefaultLimits apply when no override is configured.
var DefaultLimits = map[Class]Limit{
	ClassRead:         {Requests: 120, Window: time.Minute},
	ClassWrite:        {Requests: 30, Window: time.Minute},
	ClassCollaborator: {Requests: 10, Window: time.Minute},
}

// Middleware enforces per-user limits. It must run after authentication.
type Middleware struct {
	primary  BucketStore
	fallback BucketStore
	breaker  *circuit.Breaker
	limits   map[Class]Limit
	logger   *slog.Logger
	disabled bool
}

type Option func(*Middleware)

func WithLogger(logger *slog.Logger) Option {
	return func(m *Middleware) {
		m.logger = logger
	}
}

// WithLimit overrides the limit of one class.
func WithLimit(class Class, limit Limit) Option {
	return func(m *Middleware) {
		if limit.Requests > 0 && limit.Window > 0 {
			m.limits[class] = limit
		}
	}
}

// WithDisabled turns every check into a pass-through.
func WithDisabled(disabled bool) Option {
	return func(m *Middleware) {
		m.disabled = disabled
	}
}

// New builds the middleware over primary. When primary keeps failing the
// breaker opens and checks run against an in-memory window instead.
func New(primary BucketStore, opts ...Option) *Middleware {
	m := &Middleware{
		primary:  primary,
		fallback: NewInMemoryBucketStore(),
		breaker:  circuit.New("ratelimit", circuit.WithFailureThreshold(5), circuit.WithSuccessThreshold(3), circuit.WithCooldown(10*time.Second)),
		limits:   make(map[Class]Limit, len(DefaultLimits)),
		logger:   slog.Default(),
	}
	for class, limit := range DefaultLimits {
		m.limits[class] = limit
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Limit returns middleware enforcing the limit of class for the authenticated user.
func (m *Middleware) Limit(class Class) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			uid := requestcontext.UserID(ctx)
			if m.disabled || uid.IsNil() {
				next.ServeHTTP(w, r)
				return
			}

			result, degraded := m.check(ctx, userKey(class, uid.String()), m.limits[class])
			if result == nil {
				next.ServeHTTP(w, r)
				return
			}

			addRateLimitHeaders(w, result)
			if degraded {
				w.Header().Set("X-RateLimit-Status", "degraded")
			}
			if !result.Allowed {
				m.logger.WarnContext(ctx, "rate limit exceeded",
					"user_id", uid.String(),
					"class", string(class),
					"request_id", request.GetRequestID(ctx),
				)
				writeRateLimitExceeded(w, result)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// check consults the primary store unless the breaker is open. A nil result
// means neither store could answer and the request is let through.
func (m *Middleware) check(ctx context.Context, key string, limit Limit) (*Result, bool) {
	if m.breaker.Allow() {
		result, err := m.primary.Allow(ctx, key, limit.Requests, limit.Window)
		if err == nil {
			if _, change := m.breaker.RecordSuccess(); change.Closed {
				m.logger.InfoContext(ctx, "rate limit store recovered")
			}
			return result, false
		}
		_, change := m.breaker.RecordFailure()
		if change.Opened {
			m.logger.ErrorContext(ctx, "rate limit store failing, using in-memory fallback", "error", err)
		} else {
			m.logger.WarnContext(ctx, "rate limit check failed", "error", err)
		}
	}

	result, err := m.fallback.Allow(ctx, key, limit.Requests, limit.Window)
	if err != nil {
		return nil, true
	}
	return result, true
}

type rateLimitExceededResponse struct {
	Error      string    `json:"error"`
	Message    string    `json:"error_description"`
	Limit      int       `json:"limit"`
	ResetAt    time.Time `json:"reset_at"`
	RetryAfter int       `json:"retry_after"`
}

func addRateLimitHeaders(w http.ResponseWriter, result *Result) {
	w.Header().Set("X-RateLimit-Limit", strconv.Itoa(result.Limit))
	w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
	w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(result.ResetAt.Unix(), 10))
}

func writeRateLimitExceeded(w http.ResponseWriter, result *Result) {
	w.Header().Set("Retry-After", strconv.Itoa(result.RetryAfter))
	httputil.WriteJSON(w, http.StatusTooManyRequests, rateLimitExceededResponse{
		Error:      "rate_limit_exceeded",
		Message:    "Too many requests for this operation. Please try again later.",
		Limit:      result.Limit,
		ResetAt:    result.ResetAt,
		RetryAfter: result.RetryAfter,
	})
}
