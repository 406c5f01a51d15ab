package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/oakmart/oakmart-backend/internal/pkg/logger"
	"github.com/oakmart/oakmart-backend/internal/types"
)

type SeoRepo interface {
	Upsert(ctx context.Context, tx *gorm.DB, meta *types.SeoMeta) error
	GetBySetIDs(ctx context.Context, tx *gorm.DB, setIDs []uuid.UUID) ([]*types.SeoMeta, error)
	SoftDeleteBySetIDs(ctx context.Context, tx *gorm.DB, setIDs []uuid.UUID) error
	FullDeleteBySetIDs(ctx context.Context, tx *gorm.DB, setIDs []uuid.UUID) error
}

type seoRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSeoRepo(db *gorm.DB, baseLog *logger.Logger) SeoRepo {
	repoLog := baseLog.With("repo", "SeoRepo")
	return &seoRepo{db: db, log: repoLog}
}

func (r *seoRepo) Upsert(ctx context.Context, tx *gorm.DB, meta *types.SeoMeta) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if meta == nil {
		return nil
	}

	existing := []*types.SeoMeta{}
	if err := transaction.WithContext(ctx).
		Where("set_id = ?", meta.SetID).
		Limit(1).
		Find(&existing).Error; err != nil {
		return err
	}
	if len(existing) > 0 {
		meta.ID = existing[0].ID
		return transaction.WithContext(ctx).Save(meta).Error
	}
	if meta.ID == uuid.Nil {
		meta.ID = uuid.New()
	}
	return transaction.WithContext(ctx).Create(meta).Error
}

func (r *seoRepo) GetBySetIDs(ctx context.Context, tx *gorm.DB, setIDs []uuid.UUID) ([]*types.SeoMeta, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.SeoMeta
	if len(setIDs) == 0 {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("set_id IN ?", setIDs).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *seoRepo) SoftDeleteBySetIDs(ctx context.Context, tx *gorm.DB, setIDs []uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(setIDs) == 0 {
		return nil
	}

	return transaction.WithContext(ctx).
		Where("set_id IN ?", setIDs).
		Delete(&types.SeoMeta{}).Error
}

func (r *seoRepo) FullDeleteBySetIDs(ctx context.Context, tx *gorm.DB, setIDs []uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(setIDs) == 0 {
		return nil
	}

	return transaction.WithContext(ctx).
		Unscoped().
		Where("set_id IN ?", setIDs).
		Delete(&types.SeoMeta{}).Error
}
