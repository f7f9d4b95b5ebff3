package postgres

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
)

func TestUniqueViolation(t *testing.T) {
	t.Run("lib/pq error", func(t *testing.T) {
		err := fmt.Errorf("insert: %w", &pq.Error{Code: "23505", Constraint: "onboarding_users_email_key"})
		constraint, ok := UniqueViolation(err)
		assert.True(t, ok)
		assert.Equal(t, "onboarding_users_email_key", constraint)
	})

	t.Run("pgx error", func(t *testing.T) {
		err := fmt.Errorf("update: %w", &pgconn.PgError{Code: "23505", ConstraintName: "onboarding_users_wallet_key"})
		constraint, ok := UniqueViolation(err)
		assert.True(t, ok)
		assert.Equal(t, "onboarding_users_wallet_key", constraint)
	})

	t.Run("other errors", func(t *testing.T) {
		_, ok := UniqueViolation(&pq.Error{Code: "23503"})
		assert.False(t, ok)
		_, ok = UniqueViolation(errors.New("boom"))
		assert.False(t, ok)
	})
}
