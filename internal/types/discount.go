package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Discount targets one or more sets. Only codeless, currently-active
// discounts count toward a set's effective discounts; full discount semantics
// (amounts, stacking) belong to the discounts subsystem.
type Discount struct {
	ID   uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Name datatypes.JSON `gorm:"column:name;type:jsonb" json:"name"`
	Code string         `gorm:"column:code" json:"code,omitempty"`

	StartsAt *time.Time `gorm:"column:starts_at" json:"starts_at,omitempty"`
	EndsAt   *time.Time `gorm:"column:ends_at" json:"ends_at,omitempty"`

	CreatedAt time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Discount) TableName() string { return "discount" }

// ActiveAt reports whether the discount window covers the given instant.
// Open-ended bounds are treated as always satisfied.
func (d *Discount) ActiveAt(now time.Time) bool {
	if d.StartsAt != nil && now.Before(*d.StartsAt) {
		return false
	}
	if d.EndsAt != nil && now.After(*d.EndsAt) {
		return false
	}
	return true
}

type DiscountSet struct {
	ID uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`

	DiscountID uuid.UUID `gorm:"type:uuid;not null;index:idx_discount_set,unique,priority:1;index" json:"discount_id"`
	Discount   *Discount `gorm:"constraint:OnDelete:CASCADE;foreignKey:DiscountID;references:ID" json:"discount,omitempty"`

	SetID uuid.UUID `gorm:"type:uuid;not null;index:idx_discount_set,unique,priority:2;index" json:"set_id"`
	Set   *Set      `gorm:"constraint:OnDelete:CASCADE;foreignKey:SetID;references:ID" json:"set,omitempty"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
}

func (DiscountSet) TableName() string { return "discount_set" }
