package repository

import "context"

// Locker is a session-scoped advisory mutex keyed by a well-known integer.
// A crashed holder's lock is freed when its session ends.
type Locker interface {
	// TryAcquire is non-blocking; false means another session holds the lock.
	TryAcquire(ctx context.Context, lockID int64) (bool, error)
	Release(ctx context.Context, lockID int64) error
}
