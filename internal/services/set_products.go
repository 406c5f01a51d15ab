package services

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"gorm.io/gorm"

	pkgerrors "github.com/oakmart/oakmart-backend/internal/pkg/errors"
	"github.com/oakmart/oakmart-backend/internal/pkg/logger"
	"github.com/oakmart/oakmart-backend/internal/repos"
	"github.com/oakmart/oakmart-backend/internal/types"
)

// ProductMove is one requested reposition within a set's product list.
type ProductMove struct {
	ProductID uuid.UUID `json:"id"`
	Order     int       `json:"order"`
}

type SetProductService interface {
	// SyncProducts makes the set's attached products exactly productIDs:
	// missing ones are attached, stale ones detached, and the membership
	// order densified to 0..N-1.
	SyncProducts(ctx context.Context, tx *gorm.DB, setID uuid.UUID, productIDs []uuid.UUID) error
	ListProducts(ctx context.Context, tx *gorm.DB, setID uuid.UUID) ([]*types.SetProduct, error)
	ReorderProducts(ctx context.Context, tx *gorm.DB, setID uuid.UUID, moves []ProductMove) error
	// FixOrderForSets places the product's membership row last within each
	// given set; used after bulk product changes.
	FixOrderForSets(ctx context.Context, tx *gorm.DB, setIDs []uuid.UUID, productID uuid.UUID) error
}

type setProductService struct {
	db             *gorm.DB
	log            *logger.Logger
	setRepo        repos.SetRepo
	setProductRepo repos.SetProductRepo
	productRepo    repos.ProductRepo
}

func NewSetProductService(
	db *gorm.DB,
	baseLog *logger.Logger,
	setRepo repos.SetRepo,
	setProductRepo repos.SetProductRepo,
	productRepo repos.ProductRepo,
) SetProductService {
	return &setProductService{
		db:             db,
		log:            baseLog.With("service", "SetProductService"),
		setRepo:        setRepo,
		setProductRepo: setProductRepo,
		productRepo:    productRepo,
	}
}

func (s *setProductService) SyncProducts(ctx context.Context, tx *gorm.DB, setID uuid.UUID, productIDs []uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = s.db
	}

	return transaction.Transaction(func(txx *gorm.DB) error {
		if err := s.requireSet(ctx, txx, setID); err != nil {
			return err
		}

		desired := map[uuid.UUID]struct{}{}
		for _, id := range productIDs {
			desired[id] = struct{}{}
		}
		products, err := s.productRepo.GetByIDs(ctx, txx, productIDs)
		if err != nil {
			return fmt.Errorf("load products: %w", err)
		}
		if len(products) != len(desired) {
			return fmt.Errorf("some products missing: %w", pkgerrors.ErrNotFound)
		}

		rows, err := s.setProductRepo.GetBySetID(ctx, txx, setID)
		if err != nil {
			return fmt.Errorf("load memberships: %w", err)
		}
		current := map[uuid.UUID]struct{}{}
		for _, row := range rows {
			current[row.ProductID] = struct{}{}
		}

		toDetach := []uuid.UUID{}
		for _, row := range rows {
			if _, ok := desired[row.ProductID]; !ok {
				toDetach = append(toDetach, row.ProductID)
			}
		}
		if err := s.setProductRepo.DeleteBySetAndProductIDs(ctx, txx, setID, toDetach); err != nil {
			return fmt.Errorf("detach products: %w", err)
		}

		// Full renumbering of the remaining rows by iteration order; prior
		// order values are deliberately ignored.
		remaining := []*types.SetProduct{}
		for _, row := range rows {
			if _, ok := desired[row.ProductID]; ok {
				remaining = append(remaining, row)
			}
		}
		for i, row := range remaining {
			order := i
			if row.Order == nil || *row.Order != order {
				if err := s.setProductRepo.UpdateOrder(ctx, txx, row.ID, &order); err != nil {
					return fmt.Errorf("renumber membership: %w", err)
				}
			}
			row.Order = &order
		}

		toAttach := []*types.SetProduct{}
		for _, id := range productIDs {
			if _, ok := current[id]; ok {
				continue
			}
			toAttach = append(toAttach, &types.SetProduct{
				ID:        uuid.New(),
				SetID:     setID,
				ProductID: id,
			})
		}
		if _, err := s.setProductRepo.Create(ctx, txx, toAttach); err != nil {
			return fmt.Errorf("attach products: %w", err)
		}

		all := append(remaining, toAttach...)
		return s.gapFill(ctx, txx, all)
	})
}

func (s *setProductService) ListProducts(ctx context.Context, tx *gorm.DB, setID uuid.UUID) ([]*types.SetProduct, error) {
	transaction := tx
	if transaction == nil {
		transaction = s.db
	}

	if err := s.requireSet(ctx, transaction, setID); err != nil {
		return nil, err
	}

	rows, err := s.setProductRepo.GetBySetID(ctx, transaction, setID)
	if err != nil {
		return nil, fmt.Errorf("load memberships: %w", err)
	}
	sort.SliceStable(rows, func(i, j int) bool {
		oi, oj := rows[i].Order, rows[j].Order
		if oi == nil {
			return false
		}
		if oj == nil {
			return true
		}
		return *oi < *oj
	})
	return rows, nil
}

func (s *setProductService) ReorderProducts(ctx context.Context, tx *gorm.DB, setID uuid.UUID, moves []ProductMove) error {
	transaction := tx
	if transaction == nil {
		transaction = s.db
	}

	return transaction.Transaction(func(txx *gorm.DB) error {
		if err := s.requireSet(ctx, txx, setID); err != nil {
			return err
		}

		rows, err := s.setProductRepo.GetBySetID(ctx, txx, setID)
		if err != nil {
			return fmt.Errorf("load memberships: %w", err)
		}

		// Self-healing before any move: null orders are gap-filled, then
		// duplicate orders collapse into a dense renumbering.
		hasNull := false
		for _, row := range rows {
			if row.Order == nil {
				hasNull = true
				break
			}
		}
		if hasNull {
			if err := s.gapFill(ctx, txx, rows); err != nil {
				return err
			}
		}
		if hasDuplicateOrders(rows) {
			if err := s.resequence(ctx, txx, rows); err != nil {
				return err
			}
		}

		byProduct := make(map[uuid.UUID]*types.SetProduct, len(rows))
		for _, row := range rows {
			byProduct[row.ProductID] = row
		}
		count := len(rows)

		for _, move := range moves {
			row, ok := byProduct[move.ProductID]
			if !ok {
				return fmt.Errorf("product %s not attached to set %s: %w", move.ProductID, setID, pkgerrors.ErrNotFound)
			}

			target := move.Order
			if target < 0 {
				target = 0
			}
			if target > count-1 {
				target = count - 1
			}
			old := *row.Order
			if target == old {
				continue
			}

			newOrder := target
			if err := s.setProductRepo.UpdateOrder(ctx, txx, row.ID, &newOrder); err != nil {
				return fmt.Errorf("move product %s: %w", move.ProductID, err)
			}
			row.Order = &newOrder

			// Shift the gap: every other row strictly between the old and
			// new position (destination inclusive) moves one step toward
			// the vacated slot. The in-memory mirror keeps sequential moves
			// composing against current state.
			if target > old {
				if err := s.setProductRepo.ShiftOrderDown(ctx, txx, setID, old, target, move.ProductID); err != nil {
					return fmt.Errorf("shift down: %w", err)
				}
				for _, other := range rows {
					if other.ProductID == move.ProductID || other.Order == nil {
						continue
					}
					if *other.Order > old && *other.Order <= target {
						v := *other.Order - 1
						other.Order = &v
					}
				}
			} else {
				if err := s.setProductRepo.ShiftOrderUp(ctx, txx, setID, target, old, move.ProductID); err != nil {
					return fmt.Errorf("shift up: %w", err)
				}
				for _, other := range rows {
					if other.ProductID == move.ProductID || other.Order == nil {
						continue
					}
					if *other.Order >= target && *other.Order < old {
						v := *other.Order + 1
						other.Order = &v
					}
				}
			}
		}
		return nil
	})
}

func (s *setProductService) FixOrderForSets(ctx context.Context, tx *gorm.DB, setIDs []uuid.UUID, productID uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = s.db
	}

	return transaction.Transaction(func(txx *gorm.DB) error {
		for _, setID := range setIDs {
			rows, err := s.setProductRepo.GetBySetID(ctx, txx, setID)
			if err != nil {
				return fmt.Errorf("load memberships of %s: %w", setID, err)
			}
			var target *types.SetProduct
			for _, row := range rows {
				if row.ProductID == productID {
					target = row
					break
				}
			}
			if target == nil {
				continue
			}
			last := len(rows) - 1
			if err := s.setProductRepo.UpdateOrder(ctx, txx, target.ID, &last); err != nil {
				return fmt.Errorf("fix order in set %s: %w", setID, err)
			}
		}
		return nil
	})
}

func (s *setProductService) requireSet(ctx context.Context, tx *gorm.DB, setID uuid.UUID) error {
	sets, err := s.setRepo.GetByIDs(ctx, tx, []uuid.UUID{setID})
	if err != nil {
		return fmt.Errorf("load set: %w", err)
	}
	if len(sets) == 0 {
		return fmt.Errorf("set %s: %w", setID, pkgerrors.ErrNotFound)
	}
	return nil
}

// gapFill assigns to each row lacking an order the smallest position in
// 0..count-1 not already taken, in iteration order. Rows are mutated to
// reflect the persisted state.
func (s *setProductService) gapFill(ctx context.Context, tx *gorm.DB, rows []*types.SetProduct) error {
	taken := map[int]struct{}{}
	for _, row := range rows {
		if row.Order != nil {
			taken[*row.Order] = struct{}{}
		}
	}
	missing := []int{}
	for i := 0; i < len(rows); i++ {
		if _, ok := taken[i]; !ok {
			missing = append(missing, i)
		}
	}
	sort.Ints(missing)

	next := 0
	for _, row := range rows {
		if row.Order != nil {
			continue
		}
		if next >= len(missing) {
			break
		}
		order := missing[next]
		next++
		if err := s.setProductRepo.UpdateOrder(ctx, tx, row.ID, &order); err != nil {
			return fmt.Errorf("gap-fill membership: %w", err)
		}
		row.Order = &order
	}
	return nil
}

// resequence renumbers every row densely by iteration order, collapsing
// duplicate order values.
func (s *setProductService) resequence(ctx context.Context, tx *gorm.DB, rows []*types.SetProduct) error {
	for i, row := range rows {
		order := i
		if row.Order == nil || *row.Order != order {
			if err := s.setProductRepo.UpdateOrder(ctx, tx, row.ID, &order); err != nil {
				return fmt.Errorf("resequence membership: %w", err)
			}
		}
		row.Order = &order
	}
	return nil
}

func hasDuplicateOrders(rows []*types.SetProduct) bool {
	seen := map[int]struct{}{}
	for _, row := range rows {
		if row.Order == nil {
			continue
		}
		if _, ok := seen[*row.Order]; ok {
			return true
		}
		seen[*row.Order] = struct{}{}
	}
	return false
}
