package pagination

import (
	"encoding/base64"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCursorRoundTrip(t *testing.T) {
	createdAt := time.Date(2026, 8, 23, 10, 30, 0, 123456789, time.UTC)
	id := uuid.New()

	gotTime, gotID, err := Decode(Encode(createdAt, id))
	require.NoError(t, err)
	assert.True(t, gotTime.Equal(createdAt))
	assert.Equal(t, id, gotID)
}

func TestDecodeRejectsMalformedCursors(t *testing.T) {
	tests := []struct {
		name   string
		cursor string
	}{
		{name: "not base64", cursor: "!!!"},
		{name: "missing separator", cursor: "MTIzNDU2"},
		{name: "bad timestamp", cursor: Encode(time.Now(), uuid.New())[:4]},
		{name: "bad uuid", cursor: "MTcwMDAwMDAwMHxub3QtYS11dWlk"},
		{name: "negative timestamp", cursor: base64.RawURLEncoding.EncodeToString([]byte("-1|" + uuid.NewString()))},
		{name: "zero timestamp", cursor: base64.RawURLEncoding.EncodeToString([]byte("0|" + uuid.NewString()))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := Decode(tt.cursor)
			assert.ErrorIs(t, err, ErrInvalidCursor)
		})
	}
}
