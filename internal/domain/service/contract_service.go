package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/servana/eventrelay/internal/domain/entity"
)

type ContractService interface {
	Create(ctx context.Context, companyName, service, idempotencyKey, requestHash string) (entity.Contract, bool, error)
	GetByID(ctx context.Context, id uuid.UUID) (entity.Contract, error)
	Update(ctx context.Context, id uuid.UUID, companyName, service, status string) (entity.Contract, error)
	DeleteByID(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, limit int, cursor string) ([]entity.Contract, string, error)
}
