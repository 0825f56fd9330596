package outbox

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/servana/eventrelay/internal/domain/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memLedgerRepo struct {
	mu        sync.Mutex
	entries   map[string]struct{}
	insertErr error
	checkErr  error
}

func newMemLedgerRepo() *memLedgerRepo {
	return &memLedgerRepo{entries: make(map[string]struct{})}
}

func ledgerKey(eventID uuid.UUID, handlerName string) string {
	return eventID.String() + "/" + handlerName
}

func (r *memLedgerRepo) IsProcessed(_ context.Context, eventID uuid.UUID, handlerName string) (bool, error) {
	if r.checkErr != nil {
		return false, r.checkErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.entries[ledgerKey(eventID, handlerName)]
	return ok, nil
}

func (r *memLedgerRepo) Insert(_ context.Context, eventID uuid.UUID, handlerName string, _ []byte) error {
	if r.insertErr != nil {
		return r.insertErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	key := ledgerKey(eventID, handlerName)
	if _, ok := r.entries[key]; ok {
		return repository.ErrDuplicateEntry
	}
	r.entries[key] = struct{}{}
	return nil
}

func TestProcessOnceRunsExactlyOnce(t *testing.T) {
	ledger := NewLedger(newMemLedgerRepo())
	eventID := uuid.New()

	runs := 0
	fn := func(context.Context) error {
		runs++
		return nil
	}

	executed, err := ledger.ProcessOnce(context.Background(), eventID, "mailer", fn)
	require.NoError(t, err)
	assert.True(t, executed)

	executed, err = ledger.ProcessOnce(context.Background(), eventID, "mailer", fn)
	require.NoError(t, err)
	assert.False(t, executed)
	assert.Equal(t, 1, runs)
}

func TestProcessOnceIsScopedPerHandler(t *testing.T) {
	ledger := NewLedger(newMemLedgerRepo())
	eventID := uuid.New()

	run := func(handler string) bool {
		executed, err := ledger.ProcessOnce(context.Background(), eventID, handler, func(context.Context) error { return nil })
		require.NoError(t, err)
		return executed
	}

	assert.True(t, run("mailer"))
	assert.True(t, run("billing"))
	assert.False(t, run("mailer"))
}

func TestProcessOnceRetriesAfterFailure(t *testing.T) {
	ledger := NewLedger(newMemLedgerRepo())
	eventID := uuid.New()
	errBoom := errors.New("boom")

	executed, err := ledger.ProcessOnce(context.Background(), eventID, "mailer", func(context.Context) error {
		return errBoom
	})
	assert.True(t, executed)
	assert.ErrorIs(t, err, errBoom)

	// The failed attempt left no mark, so the retry runs fn again.
	executed, err = ledger.ProcessOnce(context.Background(), eventID, "mailer", func(context.Context) error { return nil })
	require.NoError(t, err)
	assert.True(t, executed)
}

func TestMarkProcessedSwallowsDuplicate(t *testing.T) {
	repo := newMemLedgerRepo()
	ledger := NewLedger(repo)
	eventID := uuid.New()

	require.NoError(t, ledger.MarkProcessed(context.Background(), eventID, "mailer", nil))
	// Two deliveries racing to mark the same pair is benign.
	assert.NoError(t, ledger.MarkProcessed(context.Background(), eventID, "mailer", nil))

	done, err := ledger.IsProcessed(context.Background(), eventID, "mailer")
	require.NoError(t, err)
	assert.True(t, done)
}

func TestMarkProcessedPropagatesStorageErrors(t *testing.T) {
	repo := newMemLedgerRepo()
	repo.insertErr = errors.New("connection reset")
	ledger := NewLedger(repo)

	err := ledger.MarkProcessed(context.Background(), uuid.New(), "mailer", nil)
	assert.ErrorIs(t, err, repo.insertErr)
}

func TestProcessOncePropagatesCheckErrors(t *testing.T) {
	repo := newMemLedgerRepo()
	repo.checkErr = errors.New("connection reset")
	ledger := NewLedger(repo)

	executed, err := ledger.ProcessOnce(context.Background(), uuid.New(), "mailer", func(context.Context) error {
		t.Fatal("fn must not run when the lookup fails")
		return nil
	})
	assert.False(t, executed)
	assert.ErrorIs(t, err, repo.checkErr)
}
