package event

import (
	"time"

	"github.com/google/uuid"
)

// ContractPayload is the per-type payload schema for contract.* events.
type ContractPayload struct {
	ID          string    `json:"id"`
	CompanyName string    `json:"company_name"`
	Service     string    `json:"service"`
	Status      string    `json:"status"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func NewContractCreated(id uuid.UUID, p ContractPayload) (Event, error) {
	return New(TypeContractCreated, "contract", id, p)
}

func NewContractUpdated(id uuid.UUID, p ContractPayload) (Event, error) {
	return New(TypeContractUpdated, "contract", id, p)
}

func NewContractDeleted(id uuid.UUID) (Event, error) {
	return New(TypeContractDeleted, "contract", id, ContractPayload{ID: id.String()})
}
