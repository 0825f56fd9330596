package persistence

import (
	"context"
	"database/sql"
	"errors"
	"sync"

	"github.com/servana/eventrelay/internal/domain/repository"
)

// AdvisoryLocker wraps Postgres session-level advisory locks. Each held lock
// pins one connection out of the pool: pg_advisory_unlock only works on the
// session that acquired the lock, and a crashed holder is freed by the server
// when that session dies.
type AdvisoryLocker struct {
	db *DB

	mu   sync.Mutex
	held map[int64]*sql.Conn
}

var _ repository.Locker = (*AdvisoryLocker)(nil)

var ErrLockNotHeld = errors.New("advisory lock not held")

func NewAdvisoryLocker(db *DB) *AdvisoryLocker {
	return &AdvisoryLocker{db: db, held: make(map[int64]*sql.Conn)}
}

func (l *AdvisoryLocker) TryAcquire(ctx context.Context, lockID int64) (bool, error) {
	l.mu.Lock()
	if _, ok := l.held[lockID]; ok {
		l.mu.Unlock()
		return false, nil
	}
	l.mu.Unlock()

	sqlDB, err := l.db.Conn.DB()
	if err != nil {
		return false, err
	}
	conn, err := sqlDB.Conn(ctx)
	if err != nil {
		return false, err
	}

	var acquired bool
	if err := conn.QueryRowContext(ctx, "SELECT pg_try_advisory_lock($1)", lockID).Scan(&acquired); err != nil {
		_ = conn.Close()
		return false, err
	}
	if !acquired {
		_ = conn.Close()
		return false, nil
	}

	l.mu.Lock()
	l.held[lockID] = conn
	l.mu.Unlock()
	return true, nil
}

func (l *AdvisoryLocker) Release(ctx context.Context, lockID int64) error {
	l.mu.Lock()
	conn, ok := l.held[lockID]
	delete(l.held, lockID)
	l.mu.Unlock()
	if !ok {
		return ErrLockNotHeld
	}

	var released bool
	err := conn.QueryRowContext(ctx, "SELECT pg_advisory_unlock($1)", lockID).Scan(&released)
	closeErr := conn.Close()
	if err != nil {
		return err
	}
	if !released {
		return ErrLockNotHeld
	}
	return closeErr
}
