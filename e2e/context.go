package e2e

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TestContext carries the HTTP client and the last response across the
// steps of one scenario.
type TestContext struct {
	BaseURL    string
	AdminToken string
	signingKey []byte
	issuer     string
	client     *http.Client

	UserID      string
	accessToken string

	LastStatus int
	LastBody   []byte
	lastJSON   map[string]any
}

// NewTestContext reads the target service from the environment.
func NewTestContext() *TestContext {
	return &TestContext{
		BaseURL:    getenv("E2E_BASE_URL", "http://localhost:8080"),
		AdminToken: os.Getenv("E2E_ADMIN_TOKEN"),
		signingKey: []byte(getenv("E2E_JWT_SIGNING_KEY", "dev-secret-key-change-in-production")),
		issuer:     os.Getenv("E2E_JWT_ISSUER"),
		client:     &http.Client{Timeout: 10 * time.Second},
	}
}

// Reset clears per-scenario state.
func (tc *TestContext) Reset() {
	tc.UserID = ""
	tc.accessToken = ""
	tc.LastStatus = 0
	tc.LastBody = nil
	tc.lastJSON = nil
}

// AuthenticateAs mints a bearer token for uid with the shared signing key.
func (tc *TestContext) AuthenticateAs(uid string) error {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   uid,
		Issuer:    tc.issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(15 * time.Minute)),
	})
	signed, err := token.SignedString(tc.signingKey)
	if err != nil {
		return fmt.Errorf("sign token: %w", err)
	}
	tc.UserID = uid
	tc.accessToken = signed
	return nil
}

func (tc *TestContext) GetAccessToken() string {
	return tc.accessToken
}

func (tc *TestContext) GetUserID() string {
	return tc.UserID
}

func (tc *TestContext) GetAdminToken() string {
	return tc.AdminToken
}

// POST sends body as JSON with the current bearer token.
func (tc *TestContext) POST(path string, body any) error {
	return tc.do(http.MethodPost, path, body, tc.bearer())
}

// GET sends a request with the given headers only.
func (tc *TestContext) GET(path string, headers map[string]string) error {
	return tc.do(http.MethodGet, path, nil, headers)
}

// Send issues a request with explicit headers.
func (tc *TestContext) Send(method, path string, body any, headers map[string]string) error {
	return tc.do(method, path, body, headers)
}

func (tc *TestContext) bearer() map[string]string {
	if tc.accessToken == "" {
		return nil
	}
	return map[string]string{"Authorization": "Bearer " + tc.accessToken}
}

func (tc *TestContext) do(method, path string, body any, headers map[string]string) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode body: %w", err)
		}
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, strings.TrimRight(tc.BaseURL, "/")+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := tc.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	tc.LastStatus = resp.StatusCode
	tc.LastBody, err = io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	tc.lastJSON = nil
	var parsed map[string]any
	if json.Unmarshal(tc.LastBody, &parsed) == nil {
		tc.lastJSON = parsed
	}
	return nil
}

func (tc *TestContext) GetLastStatus() int {
	return tc.LastStatus
}

func (tc *TestContext) GetLastBody() []byte {
	return tc.LastBody
}

// GetResponseField resolves a dotted path such as "onboarding.current_step".
func (tc *TestContext) GetResponseField(field string) (any, error) {
	if tc.lastJSON == nil {
		return nil, fmt.Errorf("response is not a JSON object: %s", tc.LastBody)
	}
	var cur any = tc.lastJSON
	for _, part := range strings.Split(field, ".") {
		obj, ok := cur.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("field %q: %q is not an object", field, part)
		}
		cur, ok = obj[part]
		if !ok {
			return nil, fmt.Errorf("field %q not found in response", field)
		}
	}
	return cur, nil
}

func (tc *TestContext) ResponseContains(field string) bool {
	_, err := tc.GetResponseField(field)
	return err == nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
