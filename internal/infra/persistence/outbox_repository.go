package persistence

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/servana/eventrelay/internal/domain/entity"
	"github.com/servana/eventrelay/internal/domain/event"
	"github.com/servana/eventrelay/internal/domain/repository"
	"gorm.io/datatypes"
)

type OutboxRepository struct {
	db         *DB
	maxRetries int
}

var _ repository.OutboxRepository = (*OutboxRepository)(nil)

func NewOutboxRepository(db *DB, maxRetries int) *OutboxRepository {
	if maxRetries <= 0 {
		maxRetries = 5
	}
	return &OutboxRepository{db: db, maxRetries: maxRetries}
}

func (r *OutboxRepository) Append(ctx context.Context, ev event.Event) (uuid.UUID, error) {
	rec, err := r.newRecord(ev)
	if err != nil {
		return uuid.Nil, err
	}
	if err := r.db.Write(ctx).Create(&rec).Error; err != nil {
		return uuid.Nil, err
	}
	return rec.ID, nil
}

func (r *OutboxRepository) AppendBatch(ctx context.Context, evs []event.Event) error {
	if len(evs) == 0 {
		return nil
	}
	records := make([]entity.OutboxRecord, 0, len(evs))
	for _, ev := range evs {
		rec, err := r.newRecord(ev)
		if err != nil {
			return err
		}
		records = append(records, rec)
	}
	return r.db.Write(ctx).Create(&records).Error
}

func (r *OutboxRepository) newRecord(ev event.Event) (entity.OutboxRecord, error) {
	envelope, err := event.Marshal(ev)
	if err != nil {
		return entity.OutboxRecord{}, err
	}
	now := time.Now().UTC()
	return entity.OutboxRecord{
		EventType:     ev.EventType,
		AggregateType: ev.AggregateType,
		AggregateID:   ev.AggregateID,
		Payload:       datatypes.JSON(envelope),
		Status:        entity.OutboxPending,
		MaxRetries:    r.maxRetries,
		CreatedAt:     now,
		NextAttemptAt: &now,
	}, nil
}

// ClaimBatch selects due PENDING rows with SKIP LOCKED and flips them to
// PROCESSING in the same statement. The conditional update is the only
// synchronization between competing worker instances.
func (r *OutboxRepository) ClaimBatch(ctx context.Context, now time.Time, limit int, workerID string) ([]entity.OutboxRecord, error) {
	if limit <= 0 {
		limit = 100
	}

	query := `
WITH cte AS (
    SELECT id
    FROM outbox_events
    WHERE status = 'PENDING'
      AND next_attempt_at <= ?
    ORDER BY next_attempt_at
    LIMIT ?
    FOR UPDATE SKIP LOCKED
)
UPDATE outbox_events o
SET status = 'PROCESSING', locked_at = ?, locked_by = ?
FROM cte
WHERE o.id = cte.id AND o.status = 'PENDING'
RETURNING o.id, o.event_type, o.aggregate_type, o.aggregate_id, o.payload,
          o.status, o.retry_count, o.max_retries, o.last_error, o.created_at,
          o.next_attempt_at, o.processed_at, o.locked_at, o.locked_by;
`

	var records []entity.OutboxRecord
	if err := r.db.Write(ctx).Raw(query, now, limit, now, workerID).Scan(&records).Error; err != nil {
		return nil, err
	}
	// The CTE's ORDER BY governs which ids are picked, not the order the
	// UPDATE ... RETURNING rows come back in, so the batch is reordered here.
	sortByNextAttempt(records)
	return records, nil
}

func sortByNextAttempt(records []entity.OutboxRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		a, b := records[i].NextAttemptAt, records[j].NextAttemptAt
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		default:
			return a.Before(*b)
		}
	})
}

func (r *OutboxRepository) RecoverStale(ctx context.Context, now time.Time, timeout time.Duration) (int64, error) {
	if timeout <= 0 {
		timeout = time.Minute
	}
	cutoff := now.Add(-timeout)
	res := r.db.Write(ctx).Exec(
		`UPDATE outbox_events
		 SET status = 'PENDING', locked_at = NULL, locked_by = NULL
		 WHERE status = 'PROCESSING' AND locked_at < ?`, cutoff)
	return res.RowsAffected, res.Error
}

func (r *OutboxRepository) MarkProcessed(ctx context.Context, id uuid.UUID) error {
	return r.db.Write(ctx).Exec(
		`UPDATE outbox_events
		 SET status = 'PROCESSED', processed_at = NOW(), next_attempt_at = NULL,
		     locked_at = NULL, locked_by = NULL
		 WHERE id = ?`, id).Error
}

func (r *OutboxRepository) MarkFailed(ctx context.Context, id uuid.UUID, errMsg string, retryCount int, nextAttemptAt *time.Time) error {
	if nextAttemptAt == nil {
		return r.db.Write(ctx).Exec(
			`UPDATE outbox_events
			 SET status = 'DEAD', retry_count = ?, last_error = ?, next_attempt_at = NULL,
			     locked_at = NULL, locked_by = NULL
			 WHERE id = ?`, retryCount, errMsg, id).Error
	}
	return r.db.Write(ctx).Exec(
		`UPDATE outbox_events
		 SET status = 'PENDING', retry_count = ?, last_error = ?, next_attempt_at = ?,
		     locked_at = NULL, locked_by = NULL
		 WHERE id = ?`, retryCount, errMsg, *nextAttemptAt, id).Error
}

func (r *OutboxRepository) ReleaseClaims(ctx context.Context, ids []uuid.UUID, workerID string) error {
	if len(ids) == 0 {
		return nil
	}
	return r.db.Write(ctx).Exec(
		`UPDATE outbox_events
		 SET status = 'PENDING', locked_at = NULL, locked_by = NULL
		 WHERE id IN ? AND status = 'PROCESSING' AND locked_by = ?`, ids, workerID).Error
}

func (r *OutboxRepository) Stats(ctx context.Context) (map[entity.OutboxStatus]int64, error) {
	var rows []struct {
		Status entity.OutboxStatus
		Count  int64
	}
	if err := r.db.Read(ctx).
		Model(&entity.OutboxRecord{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	stats := make(map[entity.OutboxStatus]int64, len(rows))
	for _, row := range rows {
		stats[row.Status] = row.Count
	}
	return stats, nil
}

func (r *OutboxRepository) ListDead(ctx context.Context, limit int) ([]entity.OutboxRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	var records []entity.OutboxRecord
	if err := r.db.Read(ctx).
		Where("status = ?", entity.OutboxDead).
		Order("created_at").
		Limit(limit).
		Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

func (r *OutboxRepository) RequeueDead(ctx context.Context, ids []uuid.UUID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res := r.db.Write(ctx).Exec(
		`UPDATE outbox_events
		 SET status = 'PENDING', retry_count = 0, next_attempt_at = NOW(), last_error = NULL
		 WHERE id IN ? AND status = 'DEAD'`, ids)
	return res.RowsAffected, res.Error
}
