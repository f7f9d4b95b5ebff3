// Package worker relays committed audit outbox rows to the message broker.
package worker

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"onboarding/pkg/platform/audit/store/postgres"
)

// OutboxStore is the lease-based view of the outbox table the relay needs.
type OutboxStore interface {
	ClaimUnpublished(ctx context.Context, limit int, claimToken string, claimUntil time.Time) ([]postgres.OutboxRecord, error)
	MarkPublished(ctx context.Context, outboxID uuid.UUID, claimToken string, at time.Time) error
	MarkFailed(ctx context.Context, outboxID uuid.UUID, claimToken, errMsg string, at time.Time, deadLetter bool) error
}

// Producer delivers one message keyed by aggregate id.
type Producer interface {
	Publish(ctx context.Context, key string, eventType string, payload []byte) error
}

// Worker pulls unpublished outbox rows and publishes them. It never touches
// onboarding aggregates.
type Worker struct {
	outbox     OutboxStore
	producer   Producer
	logger     *slog.Logger
	interval   time.Duration
	batchSize  int
	claimTTL   time.Duration
	maxRetries int
	now        func() time.Time
}

type Option func(*Worker)

func WithLogger(logger *slog.Logger) Option {
	return func(w *Worker) { w.logger = logger }
}

func WithInterval(d time.Duration) Option {
	return func(w *Worker) {
		if d > 0 {
			w.interval = d
		}
	}
}

func WithBatchSize(n int) Option {
	return func(w *Worker) {
		if n > 0 {
			w.batchSize = n
		}
	}
}

func WithMaxRetries(n int) Option {
	return func(w *Worker) {
		if n > 0 {
			w.maxRetries = n
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(w *Worker) { w.now = now }
}

func New(outbox OutboxStore, producer Producer, opts ...Option) *Worker {
	w := &Worker{
		outbox:     outbox,
		producer:   producer,
		logger:     slog.Default(),
		interval:   2 * time.Second,
		batchSize:  100,
		claimTTL:   30 * time.Second,
		maxRetries: 5,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Run polls until the context is cancelled.
func (w *Worker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		if _, err := w.ProcessOnce(ctx); err != nil {
			w.logger.ErrorContext(ctx, "outbox iteration failed", "error", err)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// ProcessOnce relays a single batch and reports how many rows were published.
func (w *Worker) ProcessOnce(ctx context.Context) (int, error) {
	claimToken := uuid.NewString()
	records, err := w.outbox.ClaimUnpublished(ctx, w.batchSize, claimToken, w.now().UTC().Add(w.claimTTL))
	if err != nil {
		return 0, err
	}

	published, failed := 0, 0
	for _, rec := range records {
		now := w.now().UTC()
		if err := w.producer.Publish(ctx, rec.AggregateID, rec.EventType, rec.Payload); err != nil {
			failed++
			deadLetter := rec.RetryCount+1 >= w.maxRetries
			w.logger.WarnContext(ctx, "outbox publish failed",
				"outbox_id", rec.ID,
				"event_type", rec.EventType,
				"retry_count", rec.RetryCount+1,
				"dead_lettered", deadLetter,
				"error", err,
			)
			if markErr := w.outbox.MarkFailed(ctx, rec.ID, claimToken, err.Error(), now, deadLetter); markErr != nil {
				w.logger.ErrorContext(ctx, "outbox mark failed", "outbox_id", rec.ID, "error", markErr)
			}
			continue
		}
		if err := w.outbox.MarkPublished(ctx, rec.ID, claimToken, now); err != nil {
			// The lease expires and the row is re-sent; consumers dedupe on the payload id.
			w.logger.ErrorContext(ctx, "outbox mark published failed", "outbox_id", rec.ID, "error", err)
			continue
		}
		published++
	}

	if len(records) > 0 {
		w.logger.InfoContext(ctx, "outbox batch processed",
			"batch_size", len(records),
			"published_count", published,
			"failed_count", failed,
		)
	}
	return published, nil
}
