// Package idempotency replays responses for requests that carry an
// Idempotency-Key header. A key is reserved before the handler runs and
// completed with the captured response afterwards; a replay with the same key
// and the same request fingerprint gets the stored response back.
package idempotency

import (
	"context"
	"time"
)

// Status of a stored key.
type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
)

// Record is what a store keeps per key.
type Record struct {
	RequestHash string `json:"request_hash"`
	Status      Status `json:"status"`
	StatusCode  int    `json:"status_code,omitempty"`
	ContentType string `json:"content_type,omitempty"`
	Body        []byte `json:"body,omitempty"`
}

// Store persists idempotency records.
type Store interface {
	// Get returns the record for key, or nil when none exists.
	Get(ctx context.Context, key string) (*Record, error)
	// Reserve stores a pending record for key. It returns sentinel.ErrConflict
	// if the key is already held.
	Reserve(ctx context.Context, key, requestHash string, ttl time.Duration) error
	// Complete replaces the pending record with the final response.
	Complete(ctx context.Context, key string, rec Record, ttl time.Duration) error
	// Release drops a reservation so the request can run again.
	Release(ctx context.Context, key string) error
}
