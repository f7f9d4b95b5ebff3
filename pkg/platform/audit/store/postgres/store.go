package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	audit "onboarding/pkg/platform/audit"
	txcontext "onboarding/pkg/platform/tx"
)

const aggregateType = "onboarding_user"

// Store implements audit.Store using the transactional outbox pattern.
// Events are written to the outbox table inside the caller's transaction and
// relayed to Kafka by the outbox worker.
type Store struct {
	db *sql.DB
}

// New creates a new PostgreSQL audit store that writes to the outbox.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}


// outboxPayload is the JSON document published to Kafka.
type outboxPayload struct {
	ID string `json:"id"`
	audit.Event
}

// Append writes an audit event to the outbox table.
func (s *Store) Append(ctx context.Context, event audit.Event) error {
	eventID := uuid.New()
	event.Category = audit.AuditEvent(event.Action).Category()

	payload, err := json.Marshal(outboxPayload{ID: eventID.String(), Event: event})
	if err != nil {
		return fmt.Errorf("marshal audit payload: %w", err)
	}

	query := `
		INSERT INTO outbox (id, aggregate_type, aggregate_id, event_type, payload, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err = txcontext.ExecutorFor(ctx, s.db).ExecContext(ctx, query,
		eventID,
		aggregateType,
		event.UserID.String(),
		event.Action,
		string(payload), // lib/pq sends []byte as bytea
		time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("insert outbox entry: %w", err)
	}
	return nil
}

// OutboxRecord is one claimed, not yet published outbox row.
type OutboxRecord struct {
	ID          uuid.UUID
	AggregateID string
	EventType   string
	Payload     []byte
	RetryCount  int
	CreatedAt   time.Time
}

// ClaimUnpublished leases up to limit unpublished rows to claimToken until
// claimUntil. Rows locked by another relay are skipped.
func (s *Store) ClaimUnpublished(ctx context.Context, limit int, claimToken string, claimUntil time.Time) ([]OutboxRecord, error) {
	if limit <= 0 {
		return nil, nil
	}
	if claimToken == "" {
		return nil, errors.New("claim token is required")
	}

	query := `
		UPDATE outbox SET claim_token = $1, claim_until = $2
		WHERE id IN (
			SELECT id FROM outbox
			WHERE published_at IS NULL
			  AND dead_lettered_at IS NULL
			  AND (claim_until IS NULL OR claim_until < $3)
			ORDER BY created_at ASC
			LIMIT $4
			FOR UPDATE SKIP LOCKED
		)
		RETURNING id, aggregate_id, event_type, payload, retry_count, created_at
	`
	rows, err := s.db.QueryContext(ctx, query, claimToken, claimUntil, time.Now().UTC(), limit)
	if err != nil {
		return nil, fmt.Errorf("claim outbox rows: %w", err)
	}
	defer rows.Close()

	var records []OutboxRecord
	for rows.Next() {
		var rec OutboxRecord
		if err := rows.Scan(&rec.ID, &rec.AggregateID, &rec.EventType, &rec.Payload, &rec.RetryCount, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan outbox row: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate outbox rows: %w", err)
	}
	return records, nil
}

// MarkPublished records successful delivery and releases the lease.
func (s *Store) MarkPublished(ctx context.Context, outboxID uuid.UUID, claimToken string, at time.Time) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE outbox SET published_at = $3, claim_token = NULL, claim_until = NULL
		WHERE id = $1 AND claim_token = $2
	`, outboxID, claimToken, at)
	if err != nil {
		return fmt.Errorf("mark outbox published: %w", err)
	}
	return nil
}

// MarkFailed bumps the retry counter and releases the lease. When deadLetter
// is set the row is parked and never claimed again.
func (s *Store) MarkFailed(ctx context.Context, outboxID uuid.UUID, claimToken, errMsg string, at time.Time, deadLetter bool) error {
	var deadLetteredAt *time.Time
	if deadLetter {
		deadLetteredAt = &at
	}
	_, err := s.db.ExecContext(ctx, `
		UPDATE outbox
		SET retry_count = retry_count + 1,
		    last_error = $3,
		    last_error_at = $4,
		    dead_lettered_at = $5,
		    claim_token = NULL,
		    claim_until = NULL
		WHERE id = $1 AND claim_token = $2
	`, outboxID, claimToken, errMsg, at, deadLetteredAt)
	if err != nil {
		return fmt.Errorf("mark outbox failed: %w", err)
	}
	return nil
}
