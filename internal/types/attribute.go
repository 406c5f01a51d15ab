package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Attribute is a filterable tag sets can be associated with (e.g. "brand",
// "season"). The engine only syncs associations; attribute semantics live in
// their own subsystem.
type Attribute struct {
	ID     uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Handle string         `gorm:"column:handle;not null;uniqueIndex" json:"handle"`
	Name   datatypes.JSON `gorm:"column:name;type:jsonb" json:"name"`

	CreatedAt time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Attribute) TableName() string { return "attribute" }

// SetAttribute joins a set to an attribute; Position preserves the caller's
// submission order.
type SetAttribute struct {
	ID uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`

	SetID uuid.UUID `gorm:"type:uuid;not null;index:idx_catalog_set_attribute,unique,priority:1;index" json:"set_id"`
	Set   *Set      `gorm:"constraint:OnDelete:CASCADE;foreignKey:SetID;references:ID" json:"set,omitempty"`

	AttributeID uuid.UUID  `gorm:"type:uuid;not null;index:idx_catalog_set_attribute,unique,priority:2;index" json:"attribute_id"`
	Attribute   *Attribute `gorm:"constraint:OnDelete:CASCADE;foreignKey:AttributeID;references:ID" json:"attribute,omitempty"`

	Position int `gorm:"column:position;not null;default:0" json:"position"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (SetAttribute) TableName() string { return "catalog_set_attribute" }
