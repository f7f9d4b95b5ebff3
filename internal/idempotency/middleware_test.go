package idempotency

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	id "onboarding/pkg/domain"
	"onboarding/pkg/requestcontext"
)

type MiddlewareSuite struct {
	suite.Suite
	store   *InMemoryStore
	calls   atomic.Int32
	status  int
	handler http.Handler
}

func TestMiddlewareSuite(t *testing.T) {
	suite.Run(t, new(MiddlewareSuite))
}

func (s *MiddlewareSuite) SetupTest() {
	s.store = NewInMemoryStore()
	s.calls.Store(0)
	s.status = http.StatusOK
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := s.calls.Add(1)
		body, _ := io.ReadAll(r.Body)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(s.status)
		_, _ = fmt.Fprintf(w, `{"call":%d,"echo":%q}`, n, body)
	})
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s.handler = New(s.store, WithTTL(time.Hour), WithLogger(logger)).Handler(next)
}

func (s *MiddlewareSuite) do(uid id.UserID, method, key, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, "/v1/onboarding/"+uid.String()+"/consents", strings.NewReader(body))
	req = req.WithContext(requestcontext.WithUserID(req.Context(), uid))
	if key != "" {
		req.Header.Set(HeaderKey, key)
	}
	rr := httptest.NewRecorder()
	s.handler.ServeHTTP(rr, req)
	return rr
}

func (s *MiddlewareSuite) TestReplay() {
	first := s.do("u1", http.MethodPost, "key-1", `{"tos":true}`)
	s.Equal(http.StatusOK, first.Code)
	s.Empty(first.Header().Get(HeaderReplayed))

	second := s.do("u1", http.MethodPost, "key-1", `{"tos":true}`)
	s.Equal(http.StatusOK, second.Code)
	s.Equal("true", second.Header().Get(HeaderReplayed))
	s.Equal("application/json", second.Header().Get("Content-Type"))
	s.Equal(first.Body.String(), second.Body.String())
	s.Equal(int32(1), s.calls.Load())
}

func (s *MiddlewareSuite) TestDifferentRequestSameKeyConflicts() {
	s.do("u1", http.MethodPost, "key-1", `{"tos":true}`)
	rr := s.do("u1", http.MethodPost, "key-1", `{"tos":false}`)
	s.Equal(http.StatusConflict, rr.Code)
	s.Contains(rr.Body.String(), "different request")
	s.Equal(int32(1), s.calls.Load())
}

func (s *MiddlewareSuite) TestKeysAreScopedPerUser() {
	s.do("u1", http.MethodPost, "shared", `{}`)
	rr := s.do("u2", http.MethodPost, "shared", `{}`)
	s.Equal(http.StatusOK, rr.Code)
	s.Empty(rr.Header().Get(HeaderReplayed))
	s.Equal(int32(2), s.calls.Load())
}

func (s *MiddlewareSuite) TestFailuresAreNotStored() {
	s.status = http.StatusBadGateway
	rr := s.do("u1", http.MethodPost, "key-1", `{}`)
	s.Equal(http.StatusBadGateway, rr.Code)

	s.status = http.StatusOK
	rr = s.do("u1", http.MethodPost, "key-1", `{}`)
	s.Equal(http.StatusOK, rr.Code)
	s.Empty(rr.Header().Get(HeaderReplayed))
	s.Equal(int32(2), s.calls.Load())
}

func (s *MiddlewareSuite) TestPassThrough() {
	s.Run("no key", func() {
		s.do("u1", http.MethodPost, "", `{}`)
		s.do("u1", http.MethodPost, "", `{}`)
		s.Equal(int32(2), s.calls.Load())
	})

	s.Run("non-POST", func() {
		s.calls.Store(0)
		s.do("u1", http.MethodGet, "key-get", "")
		s.do("u1", http.MethodGet, "key-get", "")
		s.Equal(int32(2), s.calls.Load())
	})
}

func (s *MiddlewareSuite) TestInFlightKeyConflicts() {
	s.Require().NoError(s.store.Reserve(context.Background(), "u1:busy", fingerprint(http.MethodPost, "/v1/onboarding/u1/consents", []byte(`{}`)), time.Hour))
	rr := s.do("u1", http.MethodPost, "busy", `{}`)
	s.Equal(http.StatusConflict, rr.Code)
	s.Contains(rr.Body.String(), "in progress")
	s.Zero(s.calls.Load())
}

func (s *MiddlewareSuite) TestOverlongKeyRejected() {
	rr := s.do("u1", http.MethodPost, strings.Repeat("k", maxKeyLength+1), `{}`)
	s.Equal(http.StatusBadRequest, rr.Code)
}

type failingStore struct{ InMemoryStore }

func (*failingStore) Get(context.Context, string) (*Record, error) {
	return nil, errors.New("redis unavailable")
}

func (s *MiddlewareSuite) TestStoreOutageFailsOpen() {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.calls.Add(1)
		w.WriteHeader(http.StatusOK)
	})
	h := New(&failingStore{}, WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))).Handler(next)

	for range 2 {
		req := httptest.NewRequest(http.MethodPost, "/x", strings.NewReader(`{}`))
		req.Header.Set(HeaderKey, "k")
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		s.Equal(http.StatusOK, rr.Code)
	}
	s.Equal(int32(2), s.calls.Load())
}

func (s *MiddlewareSuite) TestReplayWithStoresRedactedBody() {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.True(ReplayWith(r.Context(), []byte(`{"state":"ok"}`)))
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"state":"ok","secret":"S3CR3T"}`))
	})
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s.handler = New(s.store, WithLogger(logger)).Handler(next)

	first := s.do("u1", http.MethodPost, "key-2fa", `{"method":"totp"}`)
	s.Contains(first.Body.String(), "S3CR3T")

	rec, err := s.store.Get(context.Background(), "u1:key-2fa")
	s.Require().NoError(err)
	s.Require().NotNil(rec)
	s.JSONEq(`{"state":"ok"}`, string(rec.Body))

	second := s.do("u1", http.MethodPost, "key-2fa", `{"method":"totp"}`)
	s.Equal("true", second.Header().Get(HeaderReplayed))
	s.JSONEq(`{"state":"ok"}`, second.Body.String())
}

func (s *MiddlewareSuite) TestReplayWithOutsideIdempotentRequest() {
	s.False(ReplayWith(context.Background(), []byte(`{}`)))
}
