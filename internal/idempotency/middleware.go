package idempotency

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	dErrors "onboarding/pkg/domain-errors"
	"onboarding/pkg/platform/httputil"
	"onboarding/pkg/platform/sentinel"
	"onboarding/pkg/requestcontext"
)

const (
	HeaderKey      = "Idempotency-Key"
	HeaderReplayed = "Idempotent-Replayed"

	defaultTTL   = 24 * time.Hour
	maxKeyLength = 255
	maxBodyBytes = 1 << 20
)

// Middleware replays stored responses for POST requests carrying an
// Idempotency-Key. Keys are scoped to the authenticated user. Only 2xx
// responses are stored; any other outcome releases the key so the client can
// retry with it.
type Middleware struct {
	store  Store
	ttl    time.Duration
	logger *slog.Logger
}

type Option func(*Middleware)

func WithTTL(ttl time.Duration) Option {
	return func(m *Middleware) {
		if ttl > 0 {
			m.ttl = ttl
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(m *Middleware) {
		m.logger = logger
	}
}

func New(store Store, opts ...Option) *Middleware {
	m := &Middleware{store: store, ttl: defaultTTL, logger: slog.Default()}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

type replayBodyKey struct{}

type replayBody struct {
	body []byte
	set  bool
}

// ReplayWith replaces the body stored for replaying the current request.
// Handlers whose live response carries one-time secrets store a redacted
// body instead. It reports false outside an idempotent request.
func ReplayWith(ctx context.Context, body []byte) bool {
	rb, ok := ctx.Value(replayBodyKey{}).(*replayBody)
	if !ok {
		return false
	}
	rb.body = append([]byte(nil), body...)
	rb.set = true
	return true
}

func (m *Middleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := strings.TrimSpace(r.Header.Get(HeaderKey))
		if r.Method != http.MethodPost || key == "" {
			next.ServeHTTP(w, r)
			return
		}
		if len(key) > maxKeyLength {
			httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "idempotency key is too long"))
			return
		}

		body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes+1))
		if err != nil {
			httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "failed to read request body"))
			return
		}
		if len(body) > maxBodyBytes {
			httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "request body is too large"))
			return
		}
		r.Body = io.NopCloser(bytes.NewReader(body))

		ctx := r.Context()
		scoped := requestcontext.UserID(ctx).String() + ":" + key
		hash := fingerprint(r.Method, r.URL.Path, body)

		existing, err := m.store.Get(ctx, scoped)
		if err != nil {
			m.logger.WarnContext(ctx, "idempotency lookup failed, serving without replay",
				"error", err,
				"request_id", requestcontext.RequestID(ctx),
			)
			next.ServeHTTP(w, r)
			return
		}
		if existing != nil {
			m.replay(w, existing, hash)
			return
		}

		if err := m.store.Reserve(ctx, scoped, hash, m.ttl); err != nil {
			if errors.Is(err, sentinel.ErrConflict) {
				httputil.WriteError(w, dErrors.New(dErrors.CodeConflict, "a request with this idempotency key is in progress"))
				return
			}
			m.logger.WarnContext(ctx, "idempotency reserve failed, serving without replay",
				"error", err,
				"request_id", requestcontext.RequestID(ctx),
			)
			next.ServeHTTP(w, r)
			return
		}

		override := &replayBody{}
		capture := &responseCapture{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(capture, r.WithContext(context.WithValue(ctx, replayBodyKey{}, override)))

		stored := capture.body.Bytes()
		if override.set {
			stored = override.body
		}

		// recorded even if the client disconnected
		storeCtx := context.WithoutCancel(ctx)
		if capture.status >= 200 && capture.status < 300 {
			err = m.store.Complete(storeCtx, scoped, Record{
				RequestHash: hash,
				StatusCode:  capture.status,
				ContentType: capture.Header().Get("Content-Type"),
				Body:        stored,
			}, m.ttl)
		} else {
			err = m.store.Release(storeCtx, scoped)
		}
		if err != nil {
			m.logger.ErrorContext(ctx, "failed to finalize idempotency key",
				"error", err,
				"status", capture.status,
				"request_id", requestcontext.RequestID(ctx),
			)
		}
	})
}

func (m *Middleware) replay(w http.ResponseWriter, rec *Record, hash string) {
	switch {
	case rec.RequestHash != hash:
		httputil.WriteError(w, dErrors.New(dErrors.CodeConflict, "idempotency key was used with a different request"))
	case rec.Status != StatusCompleted:
		httputil.WriteError(w, dErrors.New(dErrors.CodeConflict, "a request with this idempotency key is in progress"))
	default:
		if rec.ContentType != "" {
			w.Header().Set("Content-Type", rec.ContentType)
		}
		w.Header().Set(HeaderReplayed, "true")
		w.WriteHeader(rec.StatusCode)
		_, _ = w.Write(rec.Body)
	}
}

func fingerprint(method, path string, body []byte) string {
	h := sha256.New()
	h.Write([]byte(method))
	h.Write([]byte{'\n'})
	h.Write([]byte(path))
	h.Write([]byte{'\n'})
	h.Write(body)
	return hex.EncodeToString(h.Sum(nil))
}

type responseCapture struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
	body        bytes.Buffer
}

func (c *responseCapture) WriteHeader(code int) {
	if !c.wroteHeader {
		c.status = code
		c.wroteHeader = true
	}
	c.ResponseWriter.WriteHeader(code)
}

func (c *responseCapture) Write(b []byte) (int, error) {
	c.wroteHeader = true
	c.body.Write(b)
	return c.ResponseWriter.Write(b)
}
