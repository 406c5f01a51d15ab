package services

import (
	"context"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	pkgerrors "github.com/oakmart/oakmart-backend/internal/pkg/errors"
	"github.com/oakmart/oakmart-backend/internal/platform/apierr"
	"github.com/oakmart/oakmart-backend/internal/pkg/logger"
	"github.com/oakmart/oakmart-backend/internal/repos"
	"github.com/oakmart/oakmart-backend/internal/types"
)

// CreateSetInput describes a new catalog set. Slug is the node's own suffix
// unless SlugOverride is true, in which case it is taken verbatim.
type CreateSetInput struct {
	Name         datatypes.JSON
	Description  datatypes.JSON
	Slug         string
	SlugOverride bool
	Public       bool
	HideOnIndex  bool
	ParentID     *uuid.UUID
	ChildrenIDs  []uuid.UUID
	AttributeIDs []uuid.UUID
	Seo          *SeoInput
}

// UpdateSetInput carries partial updates; nil fields retain current values.
// ParentSupplied distinguishes "move to root" (supplied, nil ParentID) from
// "leave the parent alone" (not supplied).
type UpdateSetInput struct {
	Name           datatypes.JSON
	Description    datatypes.JSON
	Slug           *string
	SlugOverride   *bool
	Public         *bool
	HideOnIndex    *bool
	ParentID       *uuid.UUID
	ParentSupplied bool
	ChildrenIDs    *[]uuid.UUID
	AttributeIDs   *[]uuid.UUID
	Seo            *SeoInput
}

type SeoInput struct {
	Title       datatypes.JSON
	Description datatypes.JSON
}

// SetWithRelations is the full node representation returned by create, update
// and show: the node plus a parent summary and its ordered children.
type SetWithRelations struct {
	Set      *types.Set   `json:"set"`
	Parent   *types.Set   `json:"parent,omitempty"`
	Children []*types.Set `json:"children"`
}

type SetService interface {
	Create(ctx context.Context, tx *gorm.DB, in CreateSetInput) (*types.Set, error)
	Update(ctx context.Context, tx *gorm.DB, setID uuid.UUID, in UpdateSetInput) (*types.Set, error)
	Delete(ctx context.Context, tx *gorm.DB, setID uuid.UUID) error
	ReorderSiblings(ctx context.Context, tx *gorm.DB, orderedIDs []uuid.UUID, parentID *uuid.UUID) error
	Get(ctx context.Context, tx *gorm.DB, setID uuid.UUID) (*SetWithRelations, error)
	List(ctx context.Context, tx *gorm.DB, filter repos.SetFilter) ([]*types.Set, error)

	FlattenDescendants(ctx context.Context, tx *gorm.DB, nodes []*types.Set) ([]*types.Set, error)
	FlattenAncestors(ctx context.Context, tx *gorm.DB, nodes []*types.Set) ([]*types.Set, error)
	AllProductIDs(ctx context.Context, tx *gorm.DB, setID uuid.UUID) ([]uuid.UUID, error)
	ActiveDiscounts(ctx context.Context, tx *gorm.DB, setID uuid.UUID) ([]*types.Discount, error)
}

type setService struct {
	db             *gorm.DB
	log            *logger.Logger
	setRepo        repos.SetRepo
	setProductRepo repos.SetProductRepo
	attributeRepo  repos.AttributeRepo
	discountRepo   repos.DiscountRepo
	seoRepo        repos.SeoRepo
	notifier       CatalogNotifier
}

func NewSetService(
	db *gorm.DB,
	baseLog *logger.Logger,
	setRepo repos.SetRepo,
	setProductRepo repos.SetProductRepo,
	attributeRepo repos.AttributeRepo,
	discountRepo repos.DiscountRepo,
	seoRepo repos.SeoRepo,
	notifier CatalogNotifier,
) SetService {
	return &setService{
		db:             db,
		log:            baseLog.With("service", "SetService"),
		setRepo:        setRepo,
		setProductRepo: setProductRepo,
		attributeRepo:  attributeRepo,
		discountRepo:   discountRepo,
		seoRepo:        seoRepo,
		notifier:       notifier,
	}
}

func (s *setService) Create(ctx context.Context, tx *gorm.DB, in CreateSetInput) (*types.Set, error) {
	transaction := tx
	if transaction == nil {
		transaction = s.db
	}

	var created *types.Set
	err := transaction.Transaction(func(txx *gorm.DB) error {
		var parent *types.Set
		if in.ParentID != nil {
			parents, err := s.setRepo.GetByIDs(ctx, txx, []uuid.UUID{*in.ParentID})
			if err != nil {
				return fmt.Errorf("load parent: %w", err)
			}
			if len(parents) == 0 {
				return fmt.Errorf("parent set %s: %w", *in.ParentID, pkgerrors.ErrNotFound)
			}
			parent = parents[0]
		}

		order := 0
		if max, ok, err := s.setRepo.MaxSiblingOrder(ctx, txx, in.ParentID); err != nil {
			return fmt.Errorf("sibling order: %w", err)
		} else if ok {
			order = max + 1
		}

		publicParent := true
		if parent != nil {
			publicParent = parent.Public && parent.PublicParent
		}

		slug := in.Slug
		if parent != nil && !in.SlugOverride {
			slug = parent.Slug + "-" + in.Slug
		}

		taken, err := s.setRepo.SlugExists(ctx, txx, slug, nil)
		if err != nil {
			return fmt.Errorf("slug check: %w", err)
		}
		if taken {
			return apierr.New(http.StatusUnprocessableEntity, "slug_taken", fmt.Errorf("slug %q: %w", slug, pkgerrors.ErrSlugTaken))
		}

		set := &types.Set{
			ID:           uuid.New(),
			ParentID:     in.ParentID,
			Slug:         slug,
			Name:         in.Name,
			Description:  in.Description,
			Public:       in.Public,
			PublicParent: publicParent,
			HideOnIndex:  in.HideOnIndex,
			Order:        order,
		}
		if _, err := s.setRepo.Create(ctx, txx, []*types.Set{set}); err != nil {
			return fmt.Errorf("create set: %w", err)
		}

		if in.Seo != nil {
			meta := &types.SeoMeta{
				SetID:       set.ID,
				Title:       in.Seo.Title,
				Description: in.Seo.Description,
			}
			if err := s.seoRepo.Upsert(ctx, txx, meta); err != nil {
				return fmt.Errorf("seo meta: %w", err)
			}
		}

		if len(in.AttributeIDs) > 0 {
			if err := s.attributeRepo.SyncForSet(ctx, txx, set.ID, in.AttributeIDs); err != nil {
				return fmt.Errorf("sync attributes: %w", err)
			}
		}

		if len(in.ChildrenIDs) > 0 {
			children, err := s.loadSetsInOrder(ctx, txx, in.ChildrenIDs)
			if err != nil {
				return err
			}
			if err := s.ensureAdoptable(ctx, txx, children, set.ID, in.ParentID); err != nil {
				return err
			}
			cascade := set.PublicParent && set.Public
			if err := s.reparentChildren(ctx, txx, children, &set.ID, set.Slug, cascade, 0); err != nil {
				return err
			}
		}

		created = set
		return nil
	})
	if err != nil {
		s.log.Warn("Create failed", "error", err)
		return nil, err
	}

	s.notifier.SetCreated(ctx, created)
	return created, nil
}

func (s *setService) Update(ctx context.Context, tx *gorm.DB, setID uuid.UUID, in UpdateSetInput) (*types.Set, error) {
	transaction := tx
	if transaction == nil {
		transaction = s.db
	}

	var updated *types.Set
	err := transaction.Transaction(func(txx *gorm.DB) error {
		sets, err := s.setRepo.GetByIDs(ctx, txx, []uuid.UUID{setID})
		if err != nil {
			return fmt.Errorf("load set: %w", err)
		}
		if len(sets) == 0 {
			return fmt.Errorf("set %s: %w", setID, pkgerrors.ErrNotFound)
		}
		set := sets[0]

		var currentParent *types.Set
		if set.ParentID != nil {
			parents, err := s.setRepo.GetByIDs(ctx, txx, []uuid.UUID{*set.ParentID})
			if err != nil {
				return fmt.Errorf("load current parent: %w", err)
			}
			if len(parents) > 0 {
				currentParent = parents[0]
			}
		}

		newPublic := set.Public
		if in.Public != nil {
			newPublic = *in.Public
		}

		override := set.IsSlugOverridden(currentParent)
		if in.SlugOverride != nil {
			override = *in.SlugOverride
		}
		suffix := set.SlugSuffix(currentParent)
		if in.Slug != nil {
			suffix = *in.Slug
		}

		newParentID := set.ParentID
		if in.ParentSupplied {
			newParentID = in.ParentID
		}

		newOrder := set.Order
		newPublicParent := true
		newSlug := suffix

		if newParentID != nil {
			var newParent *types.Set
			if currentParent != nil && *newParentID == currentParent.ID {
				newParent = currentParent
			} else {
				parents, err := s.setRepo.GetByIDs(ctx, txx, []uuid.UUID{*newParentID})
				if err != nil {
					return fmt.Errorf("load new parent: %w", err)
				}
				if len(parents) == 0 {
					return fmt.Errorf("parent set %s: %w", *newParentID, pkgerrors.ErrNotFound)
				}
				newParent = parents[0]
			}

			parentChanged := set.ParentID == nil || *set.ParentID != newParent.ID
			if parentChanged {
				if err := s.ensureNotInSubtree(ctx, txx, newParent, set.ID); err != nil {
					return err
				}
				newOrder = 0
				if max, ok, err := s.setRepo.MaxSiblingOrder(ctx, txx, newParentID); err != nil {
					return fmt.Errorf("sibling order: %w", err)
				} else if ok {
					newOrder = max + 1
				}
			}

			newPublicParent = newParent.Public && newParent.PublicParent
			if !override {
				newSlug = newParent.Slug + "-" + suffix
			}
		} else if set.ParentID != nil {
			// Newly becoming a root: re-seed order after existing roots.
			newOrder = 0
			if max, ok, err := s.setRepo.MaxSiblingOrder(ctx, txx, nil); err != nil {
				return fmt.Errorf("root order: %w", err)
			} else if ok {
				newOrder = max + 1
			}
		}

		taken, err := s.setRepo.SlugExists(ctx, txx, newSlug, &set.ID)
		if err != nil {
			return fmt.Errorf("slug check: %w", err)
		}
		if taken {
			return apierr.New(http.StatusUnprocessableEntity, "slug_taken", fmt.Errorf("slug %q: %w", newSlug, pkgerrors.ErrSlugTaken))
		}

		if in.ChildrenIDs != nil {
			// Authoritative replacement of the child list: given children are
			// adopted in caller order, all others are detached to root after
			// the existing roots, keeping their relative order.
			keep, err := s.loadSetsInOrder(ctx, txx, *in.ChildrenIDs)
			if err != nil {
				return err
			}
			if err := s.ensureAdoptable(ctx, txx, keep, set.ID, newParentID); err != nil {
				return err
			}
			cascade := newPublicParent && newPublic
			if err := s.reparentChildren(ctx, txx, keep, &set.ID, newSlug, cascade, 0); err != nil {
				return err
			}

			kept := make(map[uuid.UUID]struct{}, len(keep))
			for _, c := range keep {
				kept[c.ID] = struct{}{}
			}
			existing, err := s.setRepo.GetByParentIDs(ctx, txx, []uuid.UUID{set.ID})
			if err != nil {
				return fmt.Errorf("load children: %w", err)
			}
			removed := []*types.Set{}
			for _, c := range existing {
				if _, ok := kept[c.ID]; !ok {
					removed = append(removed, c)
				}
			}
			if len(removed) > 0 {
				base := 0
				if max, ok, err := s.setRepo.MaxSiblingOrder(ctx, txx, nil); err != nil {
					return fmt.Errorf("root order: %w", err)
				} else if ok {
					base = max + 1
				}
				if err := s.reparentChildren(ctx, txx, removed, nil, "", true, base); err != nil {
					return err
				}
			}
		} else if set.Slug != newSlug || set.Public != newPublic || set.PublicParent != newPublicParent {
			// Derived slugs and public_parent must hold transitively, so a
			// slug or visibility change walks the existing subtree even when
			// no child list was supplied.
			children, err := s.setRepo.GetByParentIDs(ctx, txx, []uuid.UUID{set.ID})
			if err != nil {
				return fmt.Errorf("load children: %w", err)
			}
			cascade := newPublicParent && newPublic
			if err := s.reparentChildren(ctx, txx, children, &set.ID, newSlug, cascade, 0); err != nil {
				return err
			}
		}

		set.ParentID = newParentID
		set.Slug = newSlug
		set.Public = newPublic
		set.PublicParent = newPublicParent
		set.Order = newOrder
		if in.Name != nil {
			set.Name = in.Name
		}
		if in.Description != nil {
			set.Description = in.Description
		}
		if in.HideOnIndex != nil {
			set.HideOnIndex = *in.HideOnIndex
		}
		if err := s.setRepo.Save(ctx, txx, set); err != nil {
			return fmt.Errorf("save set: %w", err)
		}

		if in.Seo != nil {
			meta := &types.SeoMeta{
				SetID:       set.ID,
				Title:       in.Seo.Title,
				Description: in.Seo.Description,
			}
			if err := s.seoRepo.Upsert(ctx, txx, meta); err != nil {
				return fmt.Errorf("seo meta: %w", err)
			}
		}

		if in.AttributeIDs != nil {
			if err := s.attributeRepo.SyncForSet(ctx, txx, set.ID, *in.AttributeIDs); err != nil {
				return fmt.Errorf("sync attributes: %w", err)
			}
		}

		updated = set
		return nil
	})
	if err != nil {
		s.log.Warn("Update failed", "error", err, "set_id", setID)
		return nil, err
	}

	s.notifier.SetUpdated(ctx, updated)
	return updated, nil
}

func (s *setService) Delete(ctx context.Context, tx *gorm.DB, setID uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = s.db
	}

	var deleted *types.Set
	err := transaction.Transaction(func(txx *gorm.DB) error {
		sets, err := s.setRepo.GetByIDsUnscoped(ctx, txx, []uuid.UUID{setID})
		if err != nil {
			return fmt.Errorf("load set: %w", err)
		}
		if len(sets) == 0 {
			return fmt.Errorf("set %s: %w", setID, pkgerrors.ErrNotFound)
		}
		deleted = sets[0]
		return s.deleteRecursive(ctx, txx, deleted)
	})
	if err != nil {
		s.log.Warn("Delete failed", "error", err, "set_id", setID)
		return err
	}

	s.notifier.SetDeleted(ctx, deleted)
	return nil
}

// deleteRecursive removes the subtree depth-first so descendants' dependent
// records are cleaned before their ancestors. A set that was already trashed
// is hard-deleted together with its membership rows.
func (s *setService) deleteRecursive(ctx context.Context, tx *gorm.DB, set *types.Set) error {
	children, err := s.setRepo.GetByParentIDs(ctx, tx, []uuid.UUID{set.ID})
	if err != nil {
		return fmt.Errorf("load children of %s: %w", set.ID, err)
	}
	for _, child := range children {
		if err := s.deleteRecursive(ctx, tx, child); err != nil {
			return err
		}
	}

	if set.DeletedAt.Valid {
		if err := s.setProductRepo.DeleteBySetIDs(ctx, tx, []uuid.UUID{set.ID}); err != nil {
			return fmt.Errorf("delete memberships of %s: %w", set.ID, err)
		}
		if err := s.setRepo.FullDeleteByIDs(ctx, tx, []uuid.UUID{set.ID}); err != nil {
			return fmt.Errorf("delete set %s: %w", set.ID, err)
		}
		return s.seoRepo.FullDeleteBySetIDs(ctx, tx, []uuid.UUID{set.ID})
	}

	if err := s.setRepo.SoftDeleteByIDs(ctx, tx, []uuid.UUID{set.ID}); err != nil {
		return fmt.Errorf("delete set %s: %w", set.ID, err)
	}
	return s.seoRepo.SoftDeleteBySetIDs(ctx, tx, []uuid.UUID{set.ID})
}

// ReorderSiblings assigns order = index for each id in orderedIDs, but only
// to sets that actually belong to the given parent scope. Ids outside the
// scope are skipped without error; their order values stay untouched.
func (s *setService) ReorderSiblings(ctx context.Context, tx *gorm.DB, orderedIDs []uuid.UUID, parentID *uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = s.db
	}

	return transaction.Transaction(func(txx *gorm.DB) error {
		sets, err := s.setRepo.GetByIDs(ctx, txx, orderedIDs)
		if err != nil {
			return fmt.Errorf("load sets: %w", err)
		}
		byID := make(map[uuid.UUID]*types.Set, len(sets))
		for _, set := range sets {
			byID[set.ID] = set
		}

		for i, id := range orderedIDs {
			set, ok := byID[id]
			if !ok {
				continue
			}
			inScope := (parentID == nil && set.ParentID == nil) ||
				(parentID != nil && set.ParentID != nil && *set.ParentID == *parentID)
			if !inScope {
				s.log.Debug("ReorderSiblings: id outside parent scope, skipping", "set_id", id)
				continue
			}
			if err := s.setRepo.UpdateFields(ctx, txx, id, map[string]any{"sort_order": i}); err != nil {
				return fmt.Errorf("reorder set %s: %w", id, err)
			}
		}
		return nil
	})
}

func (s *setService) Get(ctx context.Context, tx *gorm.DB, setID uuid.UUID) (*SetWithRelations, error) {
	transaction := tx
	if transaction == nil {
		transaction = s.db
	}

	sets, err := s.setRepo.GetByIDs(ctx, transaction, []uuid.UUID{setID})
	if err != nil {
		return nil, fmt.Errorf("load set: %w", err)
	}
	if len(sets) == 0 {
		return nil, fmt.Errorf("set %s: %w", setID, pkgerrors.ErrNotFound)
	}
	set := sets[0]

	out := &SetWithRelations{Set: set}
	if set.ParentID != nil {
		parents, err := s.setRepo.GetByIDs(ctx, transaction, []uuid.UUID{*set.ParentID})
		if err != nil {
			return nil, fmt.Errorf("load parent: %w", err)
		}
		if len(parents) > 0 {
			out.Parent = parents[0]
		}
	}
	children, err := s.setRepo.GetByParentIDs(ctx, transaction, []uuid.UUID{set.ID})
	if err != nil {
		return nil, fmt.Errorf("load children: %w", err)
	}
	out.Children = children
	return out, nil
}

func (s *setService) List(ctx context.Context, tx *gorm.DB, filter repos.SetFilter) ([]*types.Set, error) {
	return s.setRepo.List(ctx, tx, filter)
}

// loadSetsInOrder loads the given sets and returns them in the order of ids;
// a missing id is a NotFound for the whole call.
func (s *setService) loadSetsInOrder(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.Set, error) {
	sets, err := s.setRepo.GetByIDs(ctx, tx, ids)
	if err != nil {
		return nil, fmt.Errorf("load sets: %w", err)
	}
	byID := make(map[uuid.UUID]*types.Set, len(sets))
	for _, set := range sets {
		byID[set.ID] = set
	}
	out := make([]*types.Set, 0, len(ids))
	for _, id := range ids {
		set, ok := byID[id]
		if !ok {
			return nil, fmt.Errorf("child set %s: %w", id, pkgerrors.ErrNotFound)
		}
		out = append(out, set)
	}
	return out, nil
}

// ensureNotInSubtree rejects a re-parent onto the set itself or onto one of
// its own descendants, which would close a parent cycle in the tree. The
// candidate's ancestor chain is walked to the root; it is acyclic as long as
// every mutation passes this check.
func (s *setService) ensureNotInSubtree(ctx context.Context, tx *gorm.DB, candidate *types.Set, setID uuid.UUID) error {
	node := candidate
	for {
		if node.ID == setID {
			return fmt.Errorf("set %s cannot be moved under its own subtree: %w", setID, pkgerrors.ErrInvalidArgument)
		}
		if node.ParentID == nil {
			return nil
		}
		parents, err := s.setRepo.GetByIDs(ctx, tx, []uuid.UUID{*node.ParentID})
		if err != nil {
			return fmt.Errorf("load ancestor %s: %w", *node.ParentID, err)
		}
		if len(parents) == 0 {
			return nil
		}
		node = parents[0]
	}
}

// ensureAdoptable rejects adopting the set itself or any set on its (new)
// ancestor chain as a child; either would close a parent cycle.
func (s *setService) ensureAdoptable(ctx context.Context, tx *gorm.DB, children []*types.Set, setID uuid.UUID, parentID *uuid.UUID) error {
	chain := map[uuid.UUID]struct{}{setID: {}}
	next := parentID
	for next != nil {
		if _, seen := chain[*next]; seen {
			break
		}
		chain[*next] = struct{}{}
		parents, err := s.setRepo.GetByIDs(ctx, tx, []uuid.UUID{*next})
		if err != nil {
			return fmt.Errorf("load ancestor %s: %w", *next, err)
		}
		if len(parents) == 0 {
			break
		}
		next = parents[0].ParentID
	}
	for _, child := range children {
		if _, ok := chain[child.ID]; ok {
			return fmt.Errorf("set %s cannot adopt %s: %w", setID, child.ID, pkgerrors.ErrInvalidArgument)
		}
	}
	return nil
}

// reparentChildren relocates children (in the given order) under newParentID,
// assigning order = baseOrder + index. Derived slugs are recomputed from
// newParentSlug; overridden slugs are kept. cascadePublic seeds public_parent
// and is ANDed with each child's own public flag on the way down. Grandchild
// subtrees are walked before the child's own row is written.
func (s *setService) reparentChildren(ctx context.Context, tx *gorm.DB, children []*types.Set, newParentID *uuid.UUID, newParentSlug string, cascadePublic bool, baseOrder int) error {
	if len(children) == 0 {
		return nil
	}

	parentIDs := []uuid.UUID{}
	seen := map[uuid.UUID]struct{}{}
	for _, child := range children {
		if child.ParentID == nil {
			continue
		}
		if _, ok := seen[*child.ParentID]; ok {
			continue
		}
		seen[*child.ParentID] = struct{}{}
		parentIDs = append(parentIDs, *child.ParentID)
	}
	oldParents, err := s.setRepo.GetByIDs(ctx, tx, parentIDs)
	if err != nil {
		return fmt.Errorf("load old parents: %w", err)
	}
	oldParentByID := make(map[uuid.UUID]*types.Set, len(oldParents))
	for _, p := range oldParents {
		oldParentByID[p.ID] = p
	}

	for i, child := range children {
		var oldParent *types.Set
		if child.ParentID != nil {
			oldParent = oldParentByID[*child.ParentID]
		}

		childSlug := child.Slug
		if !child.IsSlugOverridden(oldParent) {
			suffix := child.SlugSuffix(oldParent)
			if newParentSlug != "" {
				childSlug = newParentSlug + "-" + suffix
			} else {
				childSlug = suffix
			}
		}

		grandchildren, err := s.setRepo.GetByParentIDs(ctx, tx, []uuid.UUID{child.ID})
		if err != nil {
			return fmt.Errorf("load children of %s: %w", child.ID, err)
		}
		if err := s.reparentChildren(ctx, tx, grandchildren, &child.ID, childSlug, cascadePublic && child.Public, 0); err != nil {
			return err
		}

		fields := map[string]any{
			"parent_id":     newParentID,
			"sort_order":    baseOrder + i,
			"slug":          childSlug,
			"public_parent": cascadePublic,
		}
		if err := s.setRepo.UpdateFields(ctx, tx, child.ID, fields); err != nil {
			return fmt.Errorf("reparent set %s: %w", child.ID, err)
		}
	}
	return nil
}
