package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/oakmart/oakmart-backend/internal/pkg/logger"
	"github.com/oakmart/oakmart-backend/internal/types"
)

type DiscountRepo interface {
	Create(ctx context.Context, tx *gorm.DB, discounts []*types.Discount) ([]*types.Discount, error)
	AttachToSet(ctx context.Context, tx *gorm.DB, discountID, setID uuid.UUID) error
	GetBySetIDs(ctx context.Context, tx *gorm.DB, setIDs []uuid.UUID) ([]*types.Discount, error)
}

type discountRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewDiscountRepo(db *gorm.DB, baseLog *logger.Logger) DiscountRepo {
	repoLog := baseLog.With("repo", "DiscountRepo")
	return &discountRepo{db: db, log: repoLog}
}

func (r *discountRepo) Create(ctx context.Context, tx *gorm.DB, discounts []*types.Discount) ([]*types.Discount, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(discounts) == 0 {
		return []*types.Discount{}, nil
	}

	if err := transaction.WithContext(ctx).Create(&discounts).Error; err != nil {
		return nil, err
	}
	return discounts, nil
}

func (r *discountRepo) AttachToSet(ctx context.Context, tx *gorm.DB, discountID, setID uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	row := &types.DiscountSet{
		ID:         uuid.New(),
		DiscountID: discountID,
		SetID:      setID,
	}
	return transaction.WithContext(ctx).Create(row).Error
}

func (r *discountRepo) GetBySetIDs(ctx context.Context, tx *gorm.DB, setIDs []uuid.UUID) ([]*types.Discount, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.Discount
	if len(setIDs) == 0 {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Joins("JOIN discount_set ON discount_set.discount_id = discount.id").
		Where("discount_set.set_id IN ?", setIDs).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
