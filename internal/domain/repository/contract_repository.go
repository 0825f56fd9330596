package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/servana/eventrelay/internal/domain/entity"
)

type ContractRepository interface {
	Create(ctx context.Context, companyName, service string) (entity.Contract, error)
	CreateIdempotent(ctx context.Context, companyName, service, key, requestHash string) (entity.Contract, bool, error)
	GetByID(ctx context.Context, id uuid.UUID) (entity.Contract, error)
	Update(ctx context.Context, id uuid.UUID, companyName, service, status string) (entity.Contract, error)
	DeleteByID(ctx context.Context, id uuid.UUID) error
	ListCursor(ctx context.Context, limit int, cursor string) ([]entity.Contract, error)
}
