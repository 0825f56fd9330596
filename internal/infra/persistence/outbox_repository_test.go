package persistence

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/servana/eventrelay/internal/domain/entity"
	"github.com/stretchr/testify/assert"
)

func TestSortByNextAttemptOrdersOldestFirst(t *testing.T) {
	base := time.Date(2026, 8, 23, 12, 0, 0, 0, time.UTC)
	at := func(offset time.Duration) *time.Time {
		ts := base.Add(offset)
		return &ts
	}

	// Rows arrive in whatever order the UPDATE emitted them.
	records := []entity.OutboxRecord{
		{ID: uuid.New(), NextAttemptAt: at(3 * time.Second)},
		{ID: uuid.New(), NextAttemptAt: nil},
		{ID: uuid.New(), NextAttemptAt: at(1 * time.Second)},
		{ID: uuid.New(), NextAttemptAt: at(2 * time.Second)},
	}

	sortByNextAttempt(records)

	assert.Equal(t, at(1*time.Second), records[0].NextAttemptAt)
	assert.Equal(t, at(2*time.Second), records[1].NextAttemptAt)
	assert.Equal(t, at(3*time.Second), records[2].NextAttemptAt)
	assert.Nil(t, records[3].NextAttemptAt)
}

func TestSortByNextAttemptIsStableForEqualTimes(t *testing.T) {
	ts := time.Date(2026, 8, 23, 12, 0, 0, 0, time.UTC)
	first := uuid.New()
	second := uuid.New()
	records := []entity.OutboxRecord{
		{ID: first, NextAttemptAt: &ts},
		{ID: second, NextAttemptAt: &ts},
	}

	sortByNextAttempt(records)

	assert.Equal(t, first, records[0].ID)
	assert.Equal(t, second, records[1].ID)
}
