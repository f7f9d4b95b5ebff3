// Package ratelimit throttles onboarding requests per user with a sliding
// window. Counters live in Redis when configured and in process memory
// otherwise; a failing Redis degrades to the in-memory window.
package ratelimit

import (
	"context"
	"strings"
	"time"
)

// Class groups routes that share a limit.
type Class string

const (
	// ClassRead covers state reads and KYC polling.
	ClassRead Class = "read"
	// ClassWrite covers local step submissions.
	ClassWrite Class = "write"
	// ClassCollaborator covers steps that call an external provider.
	ClassCollaborator Class = "collaborator"
)

// Limit is the number of requests allowed per window.
type Limit struct {
	Requests int
	Window   time.Duration
}

// Result is the outcome of one check.
type Result struct {
	Allowed    bool
	Limit      int
	Remaining  int
	ResetAt    time.Time
	RetryAfter int // seconds, only set when not allowed
}

// BucketStore counts requests in a sliding window.
type BucketStore interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (*Result, error)
}

// sanitizeKeySegment keeps user ids from spilling into adjacent key segments.
func sanitizeKeySegment(s string) string {
	return strings.ReplaceAll(s, ":", "_")
}

func userKey(class Class, userID string) string {
	return "user:" + string(class) + ":" + sanitizeKeySegment(userID)
}

func denied(limit int, resetAt, now time.Time) *Result {
	retry := int(resetAt.Sub(now).Round(time.Second) / time.Second)
	if retry < 1 {
		retry = 1
	}
	return &Result{
		Allowed:    false,
		Limit:      limit,
		Remaining:  0,
		ResetAt:    resetAt,
		RetryAfter: retry,
	}
}
