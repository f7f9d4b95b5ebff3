package httptransport

import (
	"context"
	"net/http"
	"sort"
	"time"

	"onboarding/pkg/platform/httputil"
)

const healthCheckTimeout = 2 * time.Second

// Checker reports whether a backing dependency is reachable.
type Checker func(ctx context.Context) error

// Health serves /health. The service is healthy only when every registered
// dependency answers.
type Health struct {
	checks map[string]Checker
}

func NewHealth() *Health {
	return &Health{checks: make(map[string]Checker)}
}

// Add registers a named check. Dependencies that are not configured are
// simply not added.
func (h *Health) Add(name string, check Checker) *Health {
	h.checks[name] = check
	return h
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

func (h *Health) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
	defer cancel()

	names := make([]string, 0, len(h.checks))
	for name := range h.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	resp := healthResponse{Status: "ok", Checks: make(map[string]string, len(names))}
	status := http.StatusOK
	for _, name := range names {
		if err := h.checks[name](ctx); err != nil {
			resp.Checks[name] = "unreachable"
			resp.Status = "degraded"
			status = http.StatusServiceUnavailable
			continue
		}
		resp.Checks[name] = "ok"
	}
	httputil.WriteJSON(w, status, resp)
}
