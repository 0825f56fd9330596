package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/servana/eventrelay/internal/domain/entity"
	"github.com/servana/eventrelay/internal/domain/event"
	"github.com/servana/eventrelay/internal/domain/repository"
	"github.com/servana/eventrelay/internal/infra/pagination"
	"gorm.io/gorm"
)

// ContractRepository is the sample producer: every mutation appends the
// matching event through the outbox inside the same transaction.
type ContractRepository struct {
	db     *DB
	outbox repository.OutboxRepository
}

var _ repository.ContractRepository = (*ContractRepository)(nil)

func NewContractRepository(db *DB, outbox repository.OutboxRepository) *ContractRepository {
	return &ContractRepository{db: db, outbox: outbox}
}

func (r *ContractRepository) Create(ctx context.Context, companyName, service string) (entity.Contract, error) {
	var contract entity.Contract
	err := r.db.WithTx(ctx, func(txCtx context.Context) error {
		created, err := r.createWithOutbox(txCtx, companyName, service)
		if err != nil {
			return err
		}
		contract = created
		return nil
	})
	if err != nil {
		return entity.Contract{}, err
	}
	return contract, nil
}

func (r *ContractRepository) CreateIdempotent(ctx context.Context, companyName, service, key, requestHash string) (entity.Contract, bool, error) {
	var (
		contract     entity.Contract
		alreadyExist bool
	)
	err := r.db.WithTx(ctx, func(txCtx context.Context) error {
		var existing entity.IdempotencyKey
		if err := r.db.Write(txCtx).First(&existing, "key = ?", key).Error; err == nil {
			if existing.RequestHash != requestHash {
				return repository.ErrIdempotencyKeyConflict
			}
			fetched, err := r.GetByID(txCtx, existing.ContractID)
			if err != nil {
				return err
			}
			contract = fetched
			alreadyExist = true
			return nil
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		created, err := r.createWithOutbox(txCtx, companyName, service)
		if err != nil {
			return err
		}
		contract = created

		keyRow := entity.IdempotencyKey{
			Key:         key,
			RequestHash: requestHash,
			ContractID:  contract.ID,
		}
		if err := r.db.Write(txCtx).Create(&keyRow).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				var existing entity.IdempotencyKey
				if err := r.db.Write(txCtx).First(&existing, "key = ?", key).Error; err != nil {
					return err
				}
				if existing.RequestHash != requestHash {
					return repository.ErrIdempotencyKeyConflict
				}
				fetched, err := r.GetByID(txCtx, existing.ContractID)
				if err != nil {
					return err
				}
				contract = fetched
				alreadyExist = true
				return nil
			}
			return err
		}
		return nil
	})
	if err != nil {
		return entity.Contract{}, false, err
	}
	return contract, alreadyExist, nil
}

func (r *ContractRepository) createWithOutbox(ctx context.Context, companyName, service string) (entity.Contract, error) {
	contract := entity.Contract{CompanyName: companyName, Service: service, Status: "active"}
	if err := r.db.Write(ctx).Create(&contract).Error; err != nil {
		return entity.Contract{}, err
	}

	ev, err := event.NewContractCreated(contract.ID, contractPayload(contract))
	if err != nil {
		return entity.Contract{}, err
	}
	if _, err := r.outbox.Append(ctx, ev); err != nil {
		return entity.Contract{}, err
	}
	return contract, nil
}

func (r *ContractRepository) GetByID(ctx context.Context, id uuid.UUID) (entity.Contract, error) {
	var contract entity.Contract
	if err := r.db.Read(ctx).First(&contract, "id = ?", id).Error; err != nil {
		return entity.Contract{}, err
	}
	return contract, nil
}

func (r *ContractRepository) Update(ctx context.Context, id uuid.UUID, companyName, service, status string) (entity.Contract, error) {
	var contract entity.Contract
	err := r.db.WithTx(ctx, func(txCtx context.Context) error {
		if err := r.db.Write(txCtx).
			Model(&entity.Contract{}).
			Where("id = ?", id).
			Updates(map[string]any{"company_name": companyName, "service": service, "status": status}).Error; err != nil {
			return err
		}
		fetched, err := r.GetByID(txCtx, id)
		if err != nil {
			return err
		}
		contract = fetched

		ev, err := event.NewContractUpdated(contract.ID, contractPayload(contract))
		if err != nil {
			return err
		}
		_, err = r.outbox.Append(txCtx, ev)
		return err
	})
	if err != nil {
		return entity.Contract{}, err
	}
	return contract, nil
}

func (r *ContractRepository) DeleteByID(ctx context.Context, id uuid.UUID) error {
	return r.db.WithTx(ctx, func(txCtx context.Context) error {
		if err := r.db.Write(txCtx).Delete(&entity.Contract{}, "id = ?", id).Error; err != nil {
			return err
		}
		ev, err := event.NewContractDeleted(id)
		if err != nil {
			return err
		}
		_, err = r.outbox.Append(txCtx, ev)
		return err
	})
}

func (r *ContractRepository) ListCursor(ctx context.Context, limit int, cursor string) ([]entity.Contract, error) {
	var contracts []entity.Contract
	if limit <= 0 {
		limit = 50
	}

	query := r.db.Read(ctx).
		Limit(limit).
		Order("created_at DESC").
		Order("id DESC")

	if cursor != "" {
		cursorTime, cursorID, err := pagination.Decode(cursor)
		if err != nil {
			if errors.Is(err, pagination.ErrInvalidCursor) {
				return nil, repository.ErrInvalidCursor
			}
			return nil, err
		}
		query = query.Where("(created_at < ?) OR (created_at = ? AND id < ?)", cursorTime, cursorTime, cursorID)
	}

	if err := query.Find(&contracts).Error; err != nil {
		return nil, err
	}
	return contracts, nil
}

func contractPayload(c entity.Contract) event.ContractPayload {
	return event.ContractPayload{
		ID:          c.ID.String(),
		CompanyName: c.CompanyName,
		Service:     c.Service,
		Status:      c.Status,
		UpdatedAt:   c.UpdatedAt,
	}
}
