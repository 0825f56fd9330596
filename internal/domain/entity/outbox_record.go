package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type OutboxStatus string

const (
	OutboxPending    OutboxStatus = "PENDING"
	OutboxProcessing OutboxStatus = "PROCESSING"
	OutboxProcessed  OutboxStatus = "PROCESSED"
	OutboxFailed     OutboxStatus = "FAILED"
	OutboxDead       OutboxStatus = "DEAD"
)

// OutboxRecord is a durable outbox row. Status moves
// PENDING -> PROCESSING -> {PROCESSED | PENDING (retry) | DEAD};
// locked_at/locked_by are set iff status is PROCESSING.
type OutboxRecord struct {
	ID            uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	EventType     string         `gorm:"not null"`
	AggregateType string         `gorm:"not null"`
	AggregateID   uuid.UUID      `gorm:"type:uuid;not null"`
	Payload       datatypes.JSON `gorm:"type:jsonb;not null"`
	Status        OutboxStatus   `gorm:"not null;default:PENDING"`
	RetryCount    int            `gorm:"not null;default:0"`
	MaxRetries    int            `gorm:"not null;default:5"`
	LastError     *string        `gorm:""`
	CreatedAt     time.Time      `gorm:"not null"`
	NextAttemptAt *time.Time     `gorm:""`
	ProcessedAt   *time.Time     `gorm:""`
	LockedAt      *time.Time     `gorm:""`
	LockedBy      *string        `gorm:""`
}

func (OutboxRecord) TableName() string {
	return "outbox_events"
}
