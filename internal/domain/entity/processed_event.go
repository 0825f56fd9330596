package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// ProcessedEvent records that a handler finished an event, keyed unique on
// (event_id, handler_name). Rows are inserted once and never updated.
type ProcessedEvent struct {
	EventID     uuid.UUID      `gorm:"type:uuid;primaryKey"`
	HandlerName string         `gorm:"primaryKey"`
	ProcessedAt time.Time      `gorm:"not null"`
	Metadata    datatypes.JSON `gorm:"type:jsonb"`
}

func (ProcessedEvent) TableName() string {
	return "processed_events"
}
