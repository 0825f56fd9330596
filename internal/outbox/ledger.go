package outbox

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/servana/eventrelay/internal/domain/repository"
)

// Ledger converts at-least-once delivery into at-most-once side effects by
// tracking (event, handler) pairs that already ran.
type Ledger struct {
	repo repository.LedgerRepository
}

func NewLedger(repo repository.LedgerRepository) *Ledger {
	return &Ledger{repo: repo}
}

func (l *Ledger) IsProcessed(ctx context.Context, eventID uuid.UUID, handlerName string) (bool, error) {
	return l.repo.IsProcessed(ctx, eventID, handlerName)
}

// MarkProcessed records the pair. A duplicate insert means another delivery
// got there first, which is a benign race; any other error propagates.
func (l *Ledger) MarkProcessed(ctx context.Context, eventID uuid.UUID, handlerName string, metadata []byte) error {
	err := l.repo.Insert(ctx, eventID, handlerName, metadata)
	if errors.Is(err, repository.ErrDuplicateEntry) {
		return nil
	}
	return err
}

// ProcessOnce runs fn unless the pair already completed. The mark is written
// only after fn succeeds, so a failed attempt leaves the ledger untouched and
// a later retry can run fn again. The returned bool reports whether fn ran.
func (l *Ledger) ProcessOnce(ctx context.Context, eventID uuid.UUID, handlerName string, fn func(ctx context.Context) error) (bool, error) {
	done, err := l.repo.IsProcessed(ctx, eventID, handlerName)
	if err != nil {
		return false, err
	}
	if done {
		return false, nil
	}
	if err := fn(ctx); err != nil {
		return true, err
	}
	return true, l.MarkProcessed(ctx, eventID, handlerName, nil)
}
