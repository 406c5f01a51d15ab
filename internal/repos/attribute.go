package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/oakmart/oakmart-backend/internal/pkg/logger"
	"github.com/oakmart/oakmart-backend/internal/types"
)

type AttributeRepo interface {
	Create(ctx context.Context, tx *gorm.DB, attributes []*types.Attribute) ([]*types.Attribute, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, attributeIDs []uuid.UUID) ([]*types.Attribute, error)
	GetBySetID(ctx context.Context, tx *gorm.DB, setID uuid.UUID) ([]*types.SetAttribute, error)
	SyncForSet(ctx context.Context, tx *gorm.DB, setID uuid.UUID, attributeIDs []uuid.UUID) error
}

type attributeRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAttributeRepo(db *gorm.DB, baseLog *logger.Logger) AttributeRepo {
	repoLog := baseLog.With("repo", "AttributeRepo")
	return &attributeRepo{db: db, log: repoLog}
}

func (r *attributeRepo) Create(ctx context.Context, tx *gorm.DB, attributes []*types.Attribute) ([]*types.Attribute, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(attributes) == 0 {
		return []*types.Attribute{}, nil
	}

	if err := transaction.WithContext(ctx).Create(&attributes).Error; err != nil {
		return nil, err
	}
	return attributes, nil
}

func (r *attributeRepo) GetByIDs(ctx context.Context, tx *gorm.DB, attributeIDs []uuid.UUID) ([]*types.Attribute, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.Attribute
	if len(attributeIDs) == 0 {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("id IN ?", attributeIDs).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *attributeRepo) GetBySetID(ctx context.Context, tx *gorm.DB, setID uuid.UUID) ([]*types.SetAttribute, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.SetAttribute
	if err := transaction.WithContext(ctx).
		Where("set_id = ?", setID).
		Order("position ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// SyncForSet makes the set's attribute associations exactly attributeIDs,
// with position equal to the index in the given slice.
func (r *attributeRepo) SyncForSet(ctx context.Context, tx *gorm.DB, setID uuid.UUID, attributeIDs []uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	existing := []*types.SetAttribute{}
	if err := transaction.WithContext(ctx).
		Where("set_id = ?", setID).
		Find(&existing).Error; err != nil {
		return err
	}

	keep := make(map[uuid.UUID]*types.SetAttribute, len(existing))
	for _, row := range existing {
		keep[row.AttributeID] = row
	}

	wanted := make(map[uuid.UUID]struct{}, len(attributeIDs))
	for i, attrID := range attributeIDs {
		wanted[attrID] = struct{}{}
		if row, ok := keep[attrID]; ok {
			if row.Position != i {
				if err := transaction.WithContext(ctx).
					Model(&types.SetAttribute{}).
					Where("id = ?", row.ID).
					Update("position", i).Error; err != nil {
					return err
				}
			}
			continue
		}
		row := &types.SetAttribute{
			ID:          uuid.New(),
			SetID:       setID,
			AttributeID: attrID,
			Position:    i,
		}
		if err := transaction.WithContext(ctx).Create(row).Error; err != nil {
			return err
		}
	}

	stale := []uuid.UUID{}
	for _, row := range existing {
		if _, ok := wanted[row.AttributeID]; !ok {
			stale = append(stale, row.ID)
		}
	}
	if len(stale) == 0 {
		return nil
	}
	return transaction.WithContext(ctx).
		Where("id IN ?", stale).
		Delete(&types.SetAttribute{}).Error
}
