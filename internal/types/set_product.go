package types

import (
	"time"

	"github.com/google/uuid"
)

// SetProduct attaches a product to a set. Order is the product's position
// within the set's attached-product list; it starts out null on attach and is
// gap-filled by the membership ordering pass. Detaching removes the row, the
// product itself is untouched.
type SetProduct struct {
	ID uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`

	SetID uuid.UUID `gorm:"type:uuid;not null;index:idx_catalog_set_product,unique,priority:1;index" json:"set_id"`
	Set   *Set      `gorm:"constraint:OnDelete:CASCADE;foreignKey:SetID;references:ID" json:"set,omitempty"`

	ProductID uuid.UUID `gorm:"type:uuid;not null;index:idx_catalog_set_product,unique,priority:2;index" json:"product_id"`
	Product   *Product  `gorm:"constraint:OnDelete:CASCADE;foreignKey:ProductID;references:ID" json:"product,omitempty"`

	Order *int `gorm:"column:sort_order" json:"order,omitempty"`

	// Seq is a monotonic attachment sequence. It pins the iteration order
	// used by the re-sequencing and gap-fill repairs even for rows inserted
	// in the same instant, where created_at alone cannot break the tie.
	Seq int64 `gorm:"autoIncrement;not null" json:"-"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (SetProduct) TableName() string { return "catalog_set_product" }
