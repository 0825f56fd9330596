package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/servana/eventrelay/internal/domain/entity"
	"github.com/servana/eventrelay/internal/domain/repository"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type LedgerRepository struct {
	db *DB
}

var _ repository.LedgerRepository = (*LedgerRepository)(nil)

func NewLedgerRepository(db *DB) *LedgerRepository {
	return &LedgerRepository{db: db}
}

func (r *LedgerRepository) IsProcessed(ctx context.Context, eventID uuid.UUID, handlerName string) (bool, error) {
	var count int64
	err := r.db.Read(ctx).
		Model(&entity.ProcessedEvent{}).
		Where("event_id = ? AND handler_name = ?", eventID, handlerName).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *LedgerRepository) Insert(ctx context.Context, eventID uuid.UUID, handlerName string, metadata []byte) error {
	row := entity.ProcessedEvent{
		EventID:     eventID,
		HandlerName: handlerName,
		ProcessedAt: time.Now().UTC(),
	}
	if len(metadata) > 0 {
		row.Metadata = datatypes.JSON(metadata)
	}
	if err := r.db.Write(ctx).Create(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return repository.ErrDuplicateEntry
		}
		return err
	}
	return nil
}
