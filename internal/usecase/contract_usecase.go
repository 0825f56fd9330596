package usecase

import (
	"context"

	"github.com/google/uuid"
	"github.com/servana/eventrelay/internal/domain/entity"
	"github.com/servana/eventrelay/internal/domain/repository"
	"github.com/servana/eventrelay/internal/domain/service"
	"github.com/servana/eventrelay/internal/infra/pagination"
	"github.com/sirupsen/logrus"
)

type Contract struct {
	repo repository.ContractRepository
	log  *logrus.Logger
}

var _ service.ContractService = (*Contract)(nil)

func NewContract(repo repository.ContractRepository, log *logrus.Logger) *Contract {
	return &Contract{repo: repo, log: log}
}

func (u *Contract) Create(ctx context.Context, companyName, svc, idempotencyKey, requestHash string) (entity.Contract, bool, error) {
	if idempotencyKey == "" {
		contract, err := u.repo.Create(ctx, companyName, svc)
		if err != nil {
			u.log.WithError(err).Error("create contract failed")
			return entity.Contract{}, false, err
		}
		return contract, false, nil
	}

	contract, alreadyExist, err := u.repo.CreateIdempotent(ctx, companyName, svc, idempotencyKey, requestHash)
	if err != nil {
		u.log.WithError(err).Error("create contract failed")
		return entity.Contract{}, false, err
	}
	return contract, alreadyExist, nil
}

func (u *Contract) GetByID(ctx context.Context, id uuid.UUID) (entity.Contract, error) {
	contract, err := u.repo.GetByID(ctx, id)
	if err != nil {
		u.log.WithError(err).Error("get contract failed")
		return entity.Contract{}, err
	}
	return contract, nil
}

func (u *Contract) Update(ctx context.Context, id uuid.UUID, companyName, svc, status string) (entity.Contract, error) {
	contract, err := u.repo.Update(ctx, id, companyName, svc, status)
	if err != nil {
		u.log.WithError(err).Error("update contract failed")
		return entity.Contract{}, err
	}
	return contract, nil
}

func (u *Contract) DeleteByID(ctx context.Context, id uuid.UUID) error {
	if err := u.repo.DeleteByID(ctx, id); err != nil {
		u.log.WithError(err).Error("delete contract failed")
		return err
	}
	return nil
}

func (u *Contract) List(ctx context.Context, limit int, cursor string) ([]entity.Contract, string, error) {
	contracts, err := u.repo.ListCursor(ctx, limit, cursor)
	if err != nil {
		u.log.WithError(err).Error("list contracts failed")
		return nil, "", err
	}
	nextCursor := ""
	if len(contracts) > 0 && (limit <= 0 || len(contracts) == limit) {
		last := contracts[len(contracts)-1]
		nextCursor = pagination.Encode(last.CreatedAt, last.ID)
	}
	return contracts, nextCursor, nil
}
