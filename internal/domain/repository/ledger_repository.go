package repository

import (
	"context"

	"github.com/google/uuid"
)

// LedgerRepository persists once-only execution marks per (event, handler).
type LedgerRepository interface {
	IsProcessed(ctx context.Context, eventID uuid.UUID, handlerName string) (bool, error)

	// Insert records the pair. A row that already exists surfaces as
	// ErrDuplicateEntry so callers can treat the race as benign.
	Insert(ctx context.Context, eventID uuid.UUID, handlerName string, metadata []byte) error
}
