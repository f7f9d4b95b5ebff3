// Package sentinel holds infrastructure errors that stores return and the
// onboarding service translates into domain errors.
package sentinel

import "errors"

var (
	// ErrNotFound means no aggregate exists for the uid.
	ErrNotFound = errors.New("not found")
	// ErrConflict means a uniqueness constraint (email, wallet public key,
	// idempotency key) was hit.
	ErrConflict = errors.New("conflict")
)
