package admin

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"onboarding/pkg/platform/httputil"
)

func TestRequireAdminToken(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ok := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusNoContent) })

	cases := []struct {
		name      string
		expected  string
		header    string
		want      int
		wantError string
	}{
		{"valid token", "s3cret", "s3cret", http.StatusNoContent, ""},
		{"wrong token", "s3cret", "nope", http.StatusUnauthorized, "unauthorized"},
		{"missing header", "s3cret", "", http.StatusUnauthorized, "unauthorized"},
		{"prefix of token", "s3cret", "s3c", http.StatusUnauthorized, "unauthorized"},
		{"admin disabled", "", "anything", http.StatusNotFound, "not_found"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/admin/onboarding/u1/reset", nil)
			if tc.header != "" {
				req.Header.Set(HeaderToken, tc.header)
			}
			rr := httptest.NewRecorder()
			RequireAdminToken(tc.expected, logger)(ok).ServeHTTP(rr, req)
			assert.Equal(t, tc.want, rr.Code)
			if tc.wantError == "" {
				return
			}
			var body httputil.ErrorResponse
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
			assert.Equal(t, tc.wantError, body.Error)
		})
	}
}
