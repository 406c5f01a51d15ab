package types

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Set is a node in the product-categorization tree. Slug is either derived
// from the parent's slug ("<parent>-<suffix>") or explicitly chosen by the
// caller (overridden). PublicParent is denormalized: true only when every
// ancestor is itself public, so the storefront visibility check is a single
// column comparison instead of an ancestor walk.
type Set struct {
	ID       uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	ParentID *uuid.UUID `gorm:"type:uuid;index" json:"parent_id,omitempty"`
	Parent   *Set       `gorm:"constraint:OnDelete:SET NULL;foreignKey:ParentID;references:ID" json:"parent,omitempty"`
	Children []*Set     `gorm:"foreignKey:ParentID;references:ID" json:"children,omitempty"`

	Slug        string         `gorm:"column:slug;not null;uniqueIndex" json:"slug"`
	Name        datatypes.JSON `gorm:"column:name;type:jsonb" json:"name"`
	Description datatypes.JSON `gorm:"column:description;type:jsonb" json:"description"`

	Public       bool `gorm:"column:public;not null;default:true" json:"public"`
	PublicParent bool `gorm:"column:public_parent;not null;default:true" json:"public_parent"`
	HideOnIndex  bool `gorm:"column:hide_on_index;not null;default:false" json:"hide_on_index"`

	// Order positions the set among siblings sharing the same parent.
	// Independent from the membership order carried on SetProduct rows.
	Order int `gorm:"column:sort_order;not null;default:0" json:"order"`

	CreatedAt time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Set) TableName() string { return "catalog_set" }

// IsSlugOverridden reports whether the slug was explicitly chosen rather than
// derived from the parent's slug. The parent must be the loaded parent row of
// this set (nil for roots).
func (s *Set) IsSlugOverridden(parent *Set) bool {
	if parent == nil {
		return false
	}
	return !strings.HasPrefix(s.Slug, parent.Slug+"-")
}

// SlugSuffix returns this set's own trailing slug portion. For overridden
// slugs the full slug is the suffix.
func (s *Set) SlugSuffix(parent *Set) string {
	if s.IsSlugOverridden(parent) || parent == nil {
		return s.Slug
	}
	return strings.TrimPrefix(s.Slug, parent.Slug+"-")
}

// Visible reports the effective visibility for unprivileged callers.
func (s *Set) Visible() bool {
	return s.Public && s.PublicParent
}
