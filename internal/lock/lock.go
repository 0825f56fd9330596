// Package lock runs single-flight jobs under a session-scoped advisory lock.
// It is a coarser alternative to the outbox's per-record claims, meant for
// periodic jobs that need one-writer-at-a-time semantics.
package lock

import (
	"context"

	"github.com/servana/eventrelay/internal/domain/repository"
)

// Well-known lock ids. Each single-flight job gets its own.
const (
	SeedLockID          int64 = 720001
	StatsReporterLockID int64 = 720002
)

// WithLock runs fn only if the lock was acquired and releases it on every
// exit path, including a panic inside fn. The returned bool reports whether
// the lock was acquired (and fn ran).
func WithLock(ctx context.Context, locker repository.Locker, lockID int64, fn func(ctx context.Context) error) (acquired bool, err error) {
	acquired, err = locker.TryAcquire(ctx, lockID)
	if err != nil || !acquired {
		return false, err
	}
	defer func() {
		if rerr := locker.Release(ctx, lockID); rerr != nil && err == nil {
			err = rerr
		}
	}()
	return true, fn(ctx)
}
