package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/oakmart/oakmart-backend/internal/pkg/logger"
	"github.com/oakmart/oakmart-backend/internal/types"
)

type SetProductRepo interface {
	Create(ctx context.Context, tx *gorm.DB, rows []*types.SetProduct) ([]*types.SetProduct, error)
	GetBySetID(ctx context.Context, tx *gorm.DB, setID uuid.UUID) ([]*types.SetProduct, error)
	GetBySetAndProductID(ctx context.Context, tx *gorm.DB, setID, productID uuid.UUID) (*types.SetProduct, error)
	UpdateOrder(ctx context.Context, tx *gorm.DB, rowID uuid.UUID, order *int) error
	ShiftOrderDown(ctx context.Context, tx *gorm.DB, setID uuid.UUID, fromExclusive, toInclusive int, excludeProductID uuid.UUID) error
	ShiftOrderUp(ctx context.Context, tx *gorm.DB, setID uuid.UUID, fromInclusive, toExclusive int, excludeProductID uuid.UUID) error
	DeleteBySetAndProductIDs(ctx context.Context, tx *gorm.DB, setID uuid.UUID, productIDs []uuid.UUID) error
	DeleteBySetIDs(ctx context.Context, tx *gorm.DB, setIDs []uuid.UUID) error
}

type setProductRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSetProductRepo(db *gorm.DB, baseLog *logger.Logger) SetProductRepo {
	repoLog := baseLog.With("repo", "SetProductRepo")
	return &setProductRepo{db: db, log: repoLog}
}

func (r *setProductRepo) Create(ctx context.Context, tx *gorm.DB, rows []*types.SetProduct) ([]*types.SetProduct, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(rows) == 0 {
		return []*types.SetProduct{}, nil
	}

	if err := transaction.WithContext(ctx).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// GetBySetID returns membership rows in attachment order, which is the
// canonical iteration order for the re-sequencing and gap-fill repairs. The
// seq column makes the order stable for rows attached in the same instant.
func (r *setProductRepo) GetBySetID(ctx context.Context, tx *gorm.DB, setID uuid.UUID) ([]*types.SetProduct, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.SetProduct
	if err := transaction.WithContext(ctx).
		Where("set_id = ?", setID).
		Order("seq ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *setProductRepo) GetBySetAndProductID(ctx context.Context, tx *gorm.DB, setID, productID uuid.UUID) (*types.SetProduct, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.SetProduct
	if err := transaction.WithContext(ctx).
		Where("set_id = ? AND product_id = ?", setID, productID).
		Limit(1).
		Find(&results).Error; err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, nil
	}
	return results[0], nil
}

func (r *setProductRepo) UpdateOrder(ctx context.Context, tx *gorm.DB, rowID uuid.UUID, order *int) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	return transaction.WithContext(ctx).
		Model(&types.SetProduct{}).
		Where("id = ?", rowID).
		Update("sort_order", order).Error
}

// ShiftOrderDown decrements by one the order of every row (other than the
// moved product) whose order lies in (fromExclusive, toInclusive].
func (r *setProductRepo) ShiftOrderDown(ctx context.Context, tx *gorm.DB, setID uuid.UUID, fromExclusive, toInclusive int, excludeProductID uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	return transaction.WithContext(ctx).
		Model(&types.SetProduct{}).
		Where("set_id = ? AND product_id <> ? AND sort_order > ? AND sort_order <= ?", setID, excludeProductID, fromExclusive, toInclusive).
		Update("sort_order", gorm.Expr("sort_order - 1")).Error
}

// ShiftOrderUp increments by one the order of every row (other than the moved
// product) whose order lies in [fromInclusive, toExclusive).
func (r *setProductRepo) ShiftOrderUp(ctx context.Context, tx *gorm.DB, setID uuid.UUID, fromInclusive, toExclusive int, excludeProductID uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	return transaction.WithContext(ctx).
		Model(&types.SetProduct{}).
		Where("set_id = ? AND product_id <> ? AND sort_order >= ? AND sort_order < ?", setID, excludeProductID, fromInclusive, toExclusive).
		Update("sort_order", gorm.Expr("sort_order + 1")).Error
}

func (r *setProductRepo) DeleteBySetAndProductIDs(ctx context.Context, tx *gorm.DB, setID uuid.UUID, productIDs []uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(productIDs) == 0 {
		return nil
	}

	return transaction.WithContext(ctx).
		Where("set_id = ? AND product_id IN ?", setID, productIDs).
		Delete(&types.SetProduct{}).Error
}

func (r *setProductRepo) DeleteBySetIDs(ctx context.Context, tx *gorm.DB, setIDs []uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(setIDs) == 0 {
		return nil
	}

	return transaction.WithContext(ctx).
		Where("set_id IN ?", setIDs).
		Delete(&types.SetProduct{}).Error
}
