package repos

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/oakmart/oakmart-backend/internal/pkg/logger"
	"github.com/oakmart/oakmart-backend/internal/types"
)

// SetFilter narrows List results. Zero values mean "no constraint".
type SetFilter struct {
	Name       string
	Slug       string
	Search     string
	PublicOnly bool
	RootOnly   bool
}

type SetRepo interface {
	Create(ctx context.Context, tx *gorm.DB, sets []*types.Set) ([]*types.Set, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, setIDs []uuid.UUID) ([]*types.Set, error)
	GetByIDsUnscoped(ctx context.Context, tx *gorm.DB, setIDs []uuid.UUID) ([]*types.Set, error)
	GetByParentIDs(ctx context.Context, tx *gorm.DB, parentIDs []uuid.UUID) ([]*types.Set, error)
	GetRoots(ctx context.Context, tx *gorm.DB) ([]*types.Set, error)
	List(ctx context.Context, tx *gorm.DB, filter SetFilter) ([]*types.Set, error)
	MaxSiblingOrder(ctx context.Context, tx *gorm.DB, parentID *uuid.UUID) (int, bool, error)
	SlugExists(ctx context.Context, tx *gorm.DB, slug string, excludeID *uuid.UUID) (bool, error)
	Save(ctx context.Context, tx *gorm.DB, set *types.Set) error
	UpdateFields(ctx context.Context, tx *gorm.DB, setID uuid.UUID, fields map[string]any) error
	SoftDeleteByIDs(ctx context.Context, tx *gorm.DB, setIDs []uuid.UUID) error
	FullDeleteByIDs(ctx context.Context, tx *gorm.DB, setIDs []uuid.UUID) error
}

type setRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSetRepo(db *gorm.DB, baseLog *logger.Logger) SetRepo {
	repoLog := baseLog.With("repo", "SetRepo")
	return &setRepo{db: db, log: repoLog}
}

func (r *setRepo) Create(ctx context.Context, tx *gorm.DB, sets []*types.Set) ([]*types.Set, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(sets) == 0 {
		return []*types.Set{}, nil
	}

	if err := transaction.WithContext(ctx).Create(&sets).Error; err != nil {
		return nil, err
	}
	return sets, nil
}

func (r *setRepo) GetByIDs(ctx context.Context, tx *gorm.DB, setIDs []uuid.UUID) ([]*types.Set, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.Set
	if len(setIDs) == 0 {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("id IN ?", setIDs).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// GetByIDsUnscoped includes soft-deleted rows; the delete path uses it so a
// second delete of a trashed set can hard-delete it.
func (r *setRepo) GetByIDsUnscoped(ctx context.Context, tx *gorm.DB, setIDs []uuid.UUID) ([]*types.Set, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.Set
	if len(setIDs) == 0 {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Unscoped().
		Where("id IN ?", setIDs).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *setRepo) GetByParentIDs(ctx context.Context, tx *gorm.DB, parentIDs []uuid.UUID) ([]*types.Set, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.Set
	if len(parentIDs) == 0 {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("parent_id IN ?", parentIDs).
		Order("sort_order ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *setRepo) GetRoots(ctx context.Context, tx *gorm.DB) ([]*types.Set, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.Set
	if err := transaction.WithContext(ctx).
		Where("parent_id IS NULL").
		Order("sort_order ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *setRepo) List(ctx context.Context, tx *gorm.DB, filter SetFilter) ([]*types.Set, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	q := transaction.WithContext(ctx).Model(&types.Set{})
	if filter.Name != "" {
		q = q.Where("LOWER(CAST(name AS TEXT)) LIKE ?", "%"+strings.ToLower(filter.Name)+"%")
	}
	if filter.Slug != "" {
		q = q.Where("slug = ?", filter.Slug)
	}
	if filter.Search != "" {
		needle := "%" + strings.ToLower(filter.Search) + "%"
		q = q.Where("LOWER(slug) LIKE ? OR LOWER(CAST(name AS TEXT)) LIKE ?", needle, needle)
	}
	if filter.PublicOnly {
		q = q.Where("public = ? AND public_parent = ?", true, true)
	}
	if filter.RootOnly {
		q = q.Where("parent_id IS NULL")
	}

	var results []*types.Set
	if err := q.Order("sort_order ASC").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// MaxSiblingOrder returns the highest sort order among the children of
// parentID (roots when nil). The bool is false when there are no siblings.
func (r *setRepo) MaxSiblingOrder(ctx context.Context, tx *gorm.DB, parentID *uuid.UUID) (int, bool, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	q := transaction.WithContext(ctx).Model(&types.Set{})
	if parentID == nil {
		q = q.Where("parent_id IS NULL")
	} else {
		q = q.Where("parent_id = ?", *parentID)
	}

	var max *int
	if err := q.Select("MAX(sort_order)").Scan(&max).Error; err != nil {
		return 0, false, err
	}
	if max == nil {
		return 0, false, nil
	}
	return *max, true, nil
}

func (r *setRepo) SlugExists(ctx context.Context, tx *gorm.DB, slug string, excludeID *uuid.UUID) (bool, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	q := transaction.WithContext(ctx).Model(&types.Set{}).Where("slug = ?", slug)
	if excludeID != nil {
		q = q.Where("id <> ?", *excludeID)
	}

	var count int64
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *setRepo) Save(ctx context.Context, tx *gorm.DB, set *types.Set) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if set == nil {
		return nil
	}

	return transaction.WithContext(ctx).Save(set).Error
}

func (r *setRepo) UpdateFields(ctx context.Context, tx *gorm.DB, setID uuid.UUID, fields map[string]any) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(fields) == 0 {
		return nil
	}

	return transaction.WithContext(ctx).
		Model(&types.Set{}).
		Where("id = ?", setID).
		Updates(fields).Error
}

func (r *setRepo) SoftDeleteByIDs(ctx context.Context, tx *gorm.DB, setIDs []uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(setIDs) == 0 {
		return nil
	}

	return transaction.WithContext(ctx).
		Where("id IN ?", setIDs).
		Delete(&types.Set{}).Error
}

func (r *setRepo) FullDeleteByIDs(ctx context.Context, tx *gorm.DB, setIDs []uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(setIDs) == 0 {
		return nil
	}

	return transaction.WithContext(ctx).
		Unscoped().
		Where("id IN ?", setIDs).
		Delete(&types.Set{}).Error
}
