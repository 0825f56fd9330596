package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/servana/eventrelay/internal/domain/entity"
	"github.com/servana/eventrelay/internal/domain/event"
)

// OutboxRepository is the durable side of the outbox. Append and AppendBatch
// participate in the caller's transaction when one is carried in the context;
// atomicity with the business write is the caller's responsibility.
type OutboxRepository interface {
	Append(ctx context.Context, ev event.Event) (uuid.UUID, error)
	AppendBatch(ctx context.Context, evs []event.Event) error

	// ClaimBatch atomically flips up to limit due PENDING rows to PROCESSING
	// for workerID, oldest next_attempt_at first. Two concurrent callers
	// never receive overlapping rows.
	ClaimBatch(ctx context.Context, now time.Time, limit int, workerID string) ([]entity.OutboxRecord, error)

	// RecoverStale re-pends PROCESSING rows whose lock is older than timeout,
	// returning how many were reset.
	RecoverStale(ctx context.Context, now time.Time, timeout time.Duration) (int64, error)

	MarkProcessed(ctx context.Context, id uuid.UUID) error

	// MarkFailed records the error and either re-pends the row for
	// nextAttemptAt, or dead-letters it when nextAttemptAt is nil.
	MarkFailed(ctx context.Context, id uuid.UUID, errMsg string, retryCount int, nextAttemptAt *time.Time) error

	// ReleaseClaims returns claimed-but-undispatched rows to PENDING. Only
	// rows still locked by workerID are touched.
	ReleaseClaims(ctx context.Context, ids []uuid.UUID, workerID string) error

	Stats(ctx context.Context) (map[entity.OutboxStatus]int64, error)
	ListDead(ctx context.Context, limit int) ([]entity.OutboxRecord, error)
	RequeueDead(ctx context.Context, ids []uuid.UUID) (int64, error)
}
