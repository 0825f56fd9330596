package outbox

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRetryDelayDoublesPerRetry(t *testing.T) {
	base := time.Second

	tests := []struct {
		name       string
		retryCount int
		want       time.Duration
	}{
		{name: "first retry", retryCount: 1, want: 2 * time.Second},
		{name: "second retry", retryCount: 2, want: 4 * time.Second},
		{name: "fifth retry", retryCount: 5, want: 32 * time.Second},
		{name: "negative clamps to base", retryCount: -3, want: time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, retryDelay(base, 0, tt.retryCount))
		})
	}
}

func TestRetryDelayJitterBounds(t *testing.T) {
	base := time.Second
	jitter := 500 * time.Millisecond

	for range 100 {
		d := retryDelay(base, jitter, 3)
		assert.GreaterOrEqual(t, d, 8*time.Second)
		assert.Less(t, d, 8*time.Second+jitter)
	}
}

func TestRetryDelayCapsInsteadOfOverflowing(t *testing.T) {
	// 5s << 31 wraps past the int64 nanosecond range; the cap must hold
	// instead of producing a negative delay and an immediate retry.
	assert.Equal(t, maxRetryDelay, retryDelay(5*time.Second, 0, 31))
	assert.Equal(t, maxRetryDelay, retryDelay(time.Second, 0, 500))
	assert.Greater(t, retryDelay(5*time.Second, 0, 31), time.Duration(0))
}

func TestRetryDelayCapKeepsJitterAdditive(t *testing.T) {
	jitter := 500 * time.Millisecond
	d := retryDelay(time.Second, jitter, 40)
	assert.GreaterOrEqual(t, d, maxRetryDelay)
	assert.Less(t, d, maxRetryDelay+jitter)
}

func TestRetryDelayZeroBaseFallsBackToOneSecond(t *testing.T) {
	assert.Equal(t, 2*time.Second, retryDelay(0, 0, 1))
}
