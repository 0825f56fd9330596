package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-faker/faker/v4"
	"github.com/servana/eventrelay/internal/config"
	"github.com/servana/eventrelay/internal/domain/entity"
	"github.com/servana/eventrelay/internal/domain/event"
	"github.com/servana/eventrelay/internal/infra/persistence"
	"github.com/servana/eventrelay/internal/lock"
)

// Seed inserts sample contracts with their contract.created events in the
// same transaction. The advisory lock makes concurrent seed runs single-flight.
func Seed(ctx context.Context, cfg config.Config, count, batchSize int) error {
	if count <= 0 {
		count = 10
	}
	if batchSize <= 0 {
		batchSize = 100
	}

	log, err := buildLogger(cfg)
	if err != nil {
		return err
	}

	conn, err := persistence.New(ctx, persistence.Config{
		WriteDSN:          cfg.Database.WriteDSN,
		ReadDSN:           cfg.Database.ReadDSN,
		MaxConns:          cfg.Database.MaxConns,
		MinConns:          cfg.Database.MinConns,
		MaxConnLifetime:   cfg.Database.MaxConnLifetime,
		MaxConnIdleTime:   cfg.Database.MaxConnIdleTime,
		HealthCheckPeriod: cfg.Database.HealthCheckPeriod,
	})
	if err != nil {
		return err
	}
	defer conn.Close()

	pingCtx := ctx
	if cfg.Database.ConnectTimeout > 0 {
		var cancel context.CancelFunc
		pingCtx, cancel = context.WithTimeout(ctx, cfg.Database.ConnectTimeout)
		defer cancel()
	}
	if err := conn.Ping(pingCtx); err != nil {
		return err
	}

	outboxRepo := persistence.NewOutboxRepository(conn, cfg.Outbox.MaxRetries)
	locker := persistence.NewAdvisoryLocker(conn)

	acquired, err := lock.WithLock(ctx, locker, lock.SeedLockID, func(ctx context.Context) error {
		return seedContracts(ctx, conn, outboxRepo, count, batchSize)
	})
	if err != nil {
		return err
	}
	if !acquired {
		return errors.New("seed: another seeder holds the lock")
	}

	log.Infof("bootstrap: seeded %d contracts", count)
	return nil
}

func seedContracts(ctx context.Context, conn *persistence.DB, outboxRepo *persistence.OutboxRepository, count, batchSize int) error {
	baseTime := time.Now().UTC()
	contracts := make([]entity.Contract, 0, batchSize)

	flush := func() error {
		if len(contracts) == 0 {
			return nil
		}
		batch := contracts
		contracts = contracts[:0]
		return conn.WithTx(ctx, func(txCtx context.Context) error {
			if err := conn.Write(txCtx).CreateInBatches(&batch, batchSize).Error; err != nil {
				return err
			}
			events := make([]event.Event, 0, len(batch))
			for _, contract := range batch {
				ev, err := event.NewContractCreated(contract.ID, event.ContractPayload{
					ID:          contract.ID.String(),
					CompanyName: contract.CompanyName,
					Service:     contract.Service,
					Status:      contract.Status,
					UpdatedAt:   contract.UpdatedAt,
				})
				if err != nil {
					return err
				}
				events = append(events, ev)
			}
			return outboxRepo.AppendBatch(txCtx, events)
		})
	}

	for i := 0; i < count; i++ {
		seedTime := baseTime.Add(time.Duration(i) * time.Microsecond)
		contracts = append(contracts, entity.Contract{
			CompanyName: fmt.Sprintf("%s %s", faker.FirstName(), faker.LastName()),
			Service:     faker.Sentence(),
			Status:      "active",
			CreatedAt:   seedTime,
			UpdatedAt:   seedTime,
		})
		if len(contracts) == batchSize {
			if err := flush(); err != nil {
				return err
			}
		}
	}
	return flush()
}
