package lock

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLocker struct {
	held       map[int64]bool
	acquireErr error
	releaseErr error
	releases   int
}

func newFakeLocker() *fakeLocker {
	return &fakeLocker{held: make(map[int64]bool)}
}

func (f *fakeLocker) TryAcquire(_ context.Context, lockID int64) (bool, error) {
	if f.acquireErr != nil {
		return false, f.acquireErr
	}
	if f.held[lockID] {
		return false, nil
	}
	f.held[lockID] = true
	return true, nil
}

func (f *fakeLocker) Release(_ context.Context, lockID int64) error {
	f.releases++
	if f.releaseErr != nil {
		return f.releaseErr
	}
	delete(f.held, lockID)
	return nil
}

func TestWithLockRunsWhenAcquired(t *testing.T) {
	locker := newFakeLocker()
	ran := false

	acquired, err := WithLock(context.Background(), locker, SeedLockID, func(context.Context) error {
		ran = true
		return nil
	})
	require.NoError(t, err)
	assert.True(t, acquired)
	assert.True(t, ran)
	assert.Equal(t, 1, locker.releases)
	assert.False(t, locker.held[SeedLockID])
}

func TestWithLockSkipsWhenHeldElsewhere(t *testing.T) {
	locker := newFakeLocker()
	locker.held[SeedLockID] = true

	acquired, err := WithLock(context.Background(), locker, SeedLockID, func(context.Context) error {
		t.Fatal("fn must not run without the lock")
		return nil
	})
	require.NoError(t, err)
	assert.False(t, acquired)
	assert.Zero(t, locker.releases, "a lock that was never acquired must not be released")
}

func TestWithLockReleasesOnFnError(t *testing.T) {
	locker := newFakeLocker()
	errBoom := errors.New("boom")

	acquired, err := WithLock(context.Background(), locker, StatsReporterLockID, func(context.Context) error {
		return errBoom
	})
	assert.True(t, acquired)
	assert.ErrorIs(t, err, errBoom)
	assert.Equal(t, 1, locker.releases)
}

func TestWithLockPropagatesAcquireError(t *testing.T) {
	locker := newFakeLocker()
	locker.acquireErr = errors.New("connection reset")

	acquired, err := WithLock(context.Background(), locker, SeedLockID, func(context.Context) error {
		t.Fatal("fn must not run")
		return nil
	})
	assert.False(t, acquired)
	assert.ErrorIs(t, err, locker.acquireErr)
	assert.Zero(t, locker.releases)
}

func TestWithLockSurfacesReleaseError(t *testing.T) {
	locker := newFakeLocker()
	locker.releaseErr = errors.New("unlock failed")

	acquired, err := WithLock(context.Background(), locker, SeedLockID, func(context.Context) error {
		return nil
	})
	assert.True(t, acquired)
	assert.ErrorIs(t, err, locker.releaseErr)
}
