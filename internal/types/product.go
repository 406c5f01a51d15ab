package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Product carries only what the catalog engine needs; pricing, variants and
// media live in their own subsystems.
type Product struct {
	ID     uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	SKU    string         `gorm:"column:sku;not null;uniqueIndex" json:"sku"`
	Name   datatypes.JSON `gorm:"column:name;type:jsonb" json:"name"`
	Status string         `gorm:"column:status;not null;default:'draft'" json:"status"`

	CreatedAt time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Product) TableName() string { return "product" }
