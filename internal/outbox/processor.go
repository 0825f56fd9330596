package outbox

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"os"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/servana/eventrelay/internal/domain/entity"
	"github.com/servana/eventrelay/internal/domain/event"
	"github.com/servana/eventrelay/internal/domain/repository"
	"github.com/sirupsen/logrus"
)

// ErrTickActive is returned when a manual pass is requested while a tick is
// already running.
var ErrTickActive = errors.New("outbox: tick already active")

type Config struct {
	BatchSize    int
	PollInterval time.Duration
	LockTimeout  time.Duration
	BaseBackoff  time.Duration
	Jitter       time.Duration
}

func (c *Config) applyDefaults() {
	if c.BatchSize <= 0 {
		c.BatchSize = 100
	}
	if c.PollInterval <= 0 {
		c.PollInterval = 5 * time.Second
	}
	if c.LockTimeout <= 0 {
		c.LockTimeout = time.Minute
	}
	if c.BaseBackoff <= 0 {
		c.BaseBackoff = time.Second
	}
	if c.Jitter < 0 {
		c.Jitter = 0
	}
}

// Processor drives the outbox: each tick recovers stale claims, claims a
// batch of due records, and dispatches them sequentially through the bus.
// Any number of instances may run against one store; ClaimBatch's conditional
// update is the only synchronization between them.
type Processor struct {
	store    repository.OutboxRepository
	bus      *Bus
	log      *logrus.Logger
	cfg      Config
	workerID string
	active   atomic.Bool
}

func NewProcessor(store repository.OutboxRepository, bus *Bus, log *logrus.Logger, cfg Config) *Processor {
	cfg.applyDefaults()
	host, err := os.Hostname()
	if err != nil || host == "" {
		host = "worker"
	}
	return &Processor{
		store:    store,
		bus:      bus,
		log:      log,
		cfg:      cfg,
		workerID: fmt.Sprintf("%s-%s", host, uuid.NewString()[:8]),
	}
}

func (p *Processor) WorkerID() string {
	return p.workerID
}

// Run ticks at the configured interval until ctx is canceled. Ticks never
// overlap within one process; a tick that outlasts the interval simply delays
// the next one.
func (p *Processor) Run(ctx context.Context) {
	p.log.WithFields(logrus.Fields{
		"worker":   p.workerID,
		"batch":    p.cfg.BatchSize,
		"interval": p.cfg.PollInterval.String(),
	}).Info("outbox: processor started")

	ticker := time.NewTicker(p.cfg.PollInterval)
	defer ticker.Stop()

	for {
		if err := p.tick(ctx); err != nil && !errors.Is(err, ErrTickActive) {
			p.log.WithError(err).Warn("outbox: tick failed")
		}
		select {
		case <-ctx.Done():
			p.log.WithField("worker", p.workerID).Info("outbox: processor stopped")
			return
		case <-ticker.C:
		}
	}
}

// ProcessNow runs a single manual pass, rejecting with ErrTickActive when a
// scheduled tick is in flight.
func (p *Processor) ProcessNow(ctx context.Context) error {
	return p.tick(ctx)
}

func (p *Processor) tick(ctx context.Context) error {
	if !p.active.CompareAndSwap(false, true) {
		return ErrTickActive
	}
	defer p.active.Store(false)

	if ctx.Err() != nil {
		return nil
	}
	return p.pass(ctx)
}

func (p *Processor) pass(ctx context.Context) error {
	now := time.Now().UTC()

	recovered, err := p.store.RecoverStale(ctx, now, p.cfg.LockTimeout)
	if err != nil {
		return err
	}
	if recovered > 0 {
		p.log.WithField("count", recovered).Warn("outbox: recovered stale claims")
	}

	records, err := p.store.ClaimBatch(ctx, now, p.cfg.BatchSize, p.workerID)
	if err != nil {
		return err
	}

	// Started handlers are awaited to completion, so dispatch runs on a
	// detached context; shutdown is honored between records.
	dispatchCtx := context.WithoutCancel(ctx)
	for i, rec := range records {
		if ctx.Err() != nil {
			p.release(dispatchCtx, records[i:])
			break
		}
		p.dispatch(dispatchCtx, rec)
	}
	return nil
}

// dispatch handles one record. Per-record failures are absorbed here so a
// poison record cannot abort its siblings.
func (p *Processor) dispatch(ctx context.Context, rec entity.OutboxRecord) {
	ev, err := event.Unmarshal(rec.Payload)
	if err == nil {
		ev.ID = rec.ID
		err = p.bus.Publish(ctx, ev)
	}

	if err == nil {
		if err := p.store.MarkProcessed(ctx, rec.ID); err != nil {
			p.log.WithError(err).WithField("id", rec.ID).Warn("outbox: mark processed failed")
		}
		return
	}
	p.fail(ctx, rec, err)
}

func (p *Processor) fail(ctx context.Context, rec entity.OutboxRecord, cause error) {
	retryCount := rec.RetryCount + 1

	if retryCount >= rec.MaxRetries {
		if err := p.store.MarkFailed(ctx, rec.ID, cause.Error(), retryCount, nil); err != nil {
			p.log.WithError(err).WithField("id", rec.ID).Warn("outbox: mark dead failed")
			return
		}
		p.log.WithFields(logrus.Fields{
			"id":          rec.ID,
			"event_type":  rec.EventType,
			"retry_count": retryCount,
			"error":       cause.Error(),
		}).Error("outbox: event dead-lettered")
		return
	}

	next := time.Now().UTC().Add(retryDelay(p.cfg.BaseBackoff, p.cfg.Jitter, retryCount))
	if err := p.store.MarkFailed(ctx, rec.ID, cause.Error(), retryCount, &next); err != nil {
		p.log.WithError(err).WithField("id", rec.ID).Warn("outbox: mark failed failed")
		return
	}
	p.log.WithFields(logrus.Fields{
		"id":           rec.ID,
		"event_type":   rec.EventType,
		"retry_count":  retryCount,
		"next_attempt": next,
		"error":        cause.Error(),
	}).Warn("outbox: dispatch failed, retry scheduled")
}

func (p *Processor) release(ctx context.Context, records []entity.OutboxRecord) {
	if len(records) == 0 {
		return
	}
	ids := make([]uuid.UUID, 0, len(records))
	for _, rec := range records {
		ids = append(ids, rec.ID)
	}
	if err := p.store.ReleaseClaims(ctx, ids, p.workerID); err != nil {
		p.log.WithError(err).Warn("outbox: release claims failed")
		return
	}
	p.log.WithField("count", len(ids)).Info("outbox: released undispatched claims on shutdown")
}

func (p *Processor) Stats(ctx context.Context) (map[entity.OutboxStatus]int64, error) {
	return p.store.Stats(ctx)
}

func (p *Processor) DeadEvents(ctx context.Context, limit int) ([]entity.OutboxRecord, error) {
	return p.store.ListDead(ctx, limit)
}

func (p *Processor) RetryDeadEvents(ctx context.Context, ids []uuid.UUID) (int64, error) {
	return p.store.RequeueDead(ctx, ids)
}

// maxRetryDelay caps the exponential curve; beyond it the shift would
// overflow time.Duration long before the delay is operationally useful.
const maxRetryDelay = time.Hour

// retryDelay computes base * 2^retryCount plus uniform jitter in [0, jitter),
// capped at maxRetryDelay. retryCount is the post-increment value, so the
// first retry waits ~2x base.
func retryDelay(base, jitter time.Duration, retryCount int) time.Duration {
	if base <= 0 {
		base = time.Second
	}
	if retryCount < 0 {
		retryCount = 0
	}
	delay := maxRetryDelay
	if retryCount < 63 && base <= maxRetryDelay>>uint(retryCount) {
		delay = base << uint(retryCount)
	}
	if jitter > 0 {
		delay += rand.N(jitter)
	}
	return delay
}
