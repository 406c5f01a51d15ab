package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// SeoMeta is the SEO record owned by a single set; it is deleted together
// with its set. The payload is opaque to the catalog engine.
type SeoMeta struct {
	ID uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`

	SetID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex" json:"set_id"`
	Set   *Set      `gorm:"constraint:OnDelete:CASCADE;foreignKey:SetID;references:ID" json:"set,omitempty"`

	Title       datatypes.JSON `gorm:"column:title;type:jsonb" json:"title"`
	Description datatypes.JSON `gorm:"column:description;type:jsonb" json:"description"`

	CreatedAt time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (SeoMeta) TableName() string { return "seo_meta" }
