package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Contract struct {
	ID          uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	CompanyName string    `gorm:"not null"`
	Service     string    `gorm:"not null"`
	Status      string    `gorm:"not null;default:active"`
	CreatedAt   time.Time `gorm:"not null"`
	UpdatedAt   time.Time `gorm:"not null"`
	DeletedAt   gorm.DeletedAt
}

func (Contract) TableName() string {
	return "contracts"
}
