package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/oakmart/oakmart-backend/internal/types"
)

// FlattenDescendants collects every node in the subtrees rooted at the given
// nodes into one flat, duplicate-free list. Each node's descendants are
// collected before the input nodes are appended, so the inputs trail their
// own subtrees in the result.
func (s *setService) FlattenDescendants(ctx context.Context, tx *gorm.DB, nodes []*types.Set) ([]*types.Set, error) {
	transaction := tx
	if transaction == nil {
		transaction = s.db
	}

	flat, err := s.flattenDescendants(ctx, transaction, nodes)
	if err != nil {
		return nil, err
	}
	return dedupeSets(flat), nil
}

func (s *setService) flattenDescendants(ctx context.Context, tx *gorm.DB, nodes []*types.Set) ([]*types.Set, error) {
	if len(nodes) == 0 {
		return nil, nil
	}

	out := []*types.Set{}
	for _, node := range nodes {
		children, err := s.setRepo.GetByParentIDs(ctx, tx, []uuid.UUID{node.ID})
		if err != nil {
			return nil, fmt.Errorf("load children of %s: %w", node.ID, err)
		}
		sub, err := s.flattenDescendants(ctx, tx, children)
		if err != nil {
			return nil, err
		}
		out = append(out, sub...)
	}
	return append(out, nodes...), nil
}

// FlattenAncestors unions each node's direct parent generation by generation
// until a generation yields no parents.
func (s *setService) FlattenAncestors(ctx context.Context, tx *gorm.DB, nodes []*types.Set) ([]*types.Set, error) {
	transaction := tx
	if transaction == nil {
		transaction = s.db
	}

	out := []*types.Set{}
	generation := nodes
	for len(generation) > 0 {
		parentIDs := []uuid.UUID{}
		seen := map[uuid.UUID]struct{}{}
		for _, node := range generation {
			if node.ParentID == nil {
				continue
			}
			if _, ok := seen[*node.ParentID]; ok {
				continue
			}
			seen[*node.ParentID] = struct{}{}
			parentIDs = append(parentIDs, *node.ParentID)
		}
		parents, err := s.setRepo.GetByIDs(ctx, transaction, parentIDs)
		if err != nil {
			return nil, fmt.Errorf("load parents: %w", err)
		}
		out = append(out, parents...)
		generation = parents
	}
	return dedupeSets(out), nil
}

// AllProductIDs returns the union of the set's directly attached product ids
// with those of every descendant, deduplicated.
func (s *setService) AllProductIDs(ctx context.Context, tx *gorm.DB, setID uuid.UUID) ([]uuid.UUID, error) {
	transaction := tx
	if transaction == nil {
		transaction = s.db
	}

	out := []uuid.UUID{}
	seen := map[uuid.UUID]struct{}{}

	var walk func(id uuid.UUID) error
	walk = func(id uuid.UUID) error {
		rows, err := s.setProductRepo.GetBySetID(ctx, transaction, id)
		if err != nil {
			return fmt.Errorf("load memberships of %s: %w", id, err)
		}
		for _, row := range rows {
			if _, ok := seen[row.ProductID]; ok {
				continue
			}
			seen[row.ProductID] = struct{}{}
			out = append(out, row.ProductID)
		}
		children, err := s.setRepo.GetByParentIDs(ctx, transaction, []uuid.UUID{id})
		if err != nil {
			return fmt.Errorf("load children of %s: %w", id, err)
		}
		for _, child := range children {
			if err := walk(child.ID); err != nil {
				return err
			}
		}
		return nil
	}
	if err := walk(setID); err != nil {
		return nil, err
	}
	return out, nil
}

// ActiveDiscounts returns codeless, currently-active discounts targeting the
// set or any of its ancestors, deduplicated by discount id.
func (s *setService) ActiveDiscounts(ctx context.Context, tx *gorm.DB, setID uuid.UUID) ([]*types.Discount, error) {
	transaction := tx
	if transaction == nil {
		transaction = s.db
	}

	now := time.Now()
	out := []*types.Discount{}
	seen := map[uuid.UUID]struct{}{}

	currentID := &setID
	for currentID != nil {
		sets, err := s.setRepo.GetByIDs(ctx, transaction, []uuid.UUID{*currentID})
		if err != nil {
			return nil, fmt.Errorf("load set: %w", err)
		}
		if len(sets) == 0 {
			break
		}
		set := sets[0]

		discounts, err := s.discountRepo.GetBySetIDs(ctx, transaction, []uuid.UUID{set.ID})
		if err != nil {
			return nil, fmt.Errorf("load discounts of %s: %w", set.ID, err)
		}
		for _, d := range discounts {
			if d.Code != "" || !d.ActiveAt(now) {
				continue
			}
			if _, ok := seen[d.ID]; ok {
				continue
			}
			seen[d.ID] = struct{}{}
			out = append(out, d)
		}
		currentID = set.ParentID
	}
	return out, nil
}

func dedupeSets(sets []*types.Set) []*types.Set {
	out := make([]*types.Set, 0, len(sets))
	seen := make(map[uuid.UUID]struct{}, len(sets))
	for _, set := range sets {
		if _, ok := seen[set.ID]; ok {
			continue
		}
		seen[set.ID] = struct{}{}
		out = append(out, set)
	}
	return out
}
