package repos

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/oakmart/oakmart-backend/internal/repos/testutil"
)

func TestSetRepoMaxSiblingOrder(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	repo := NewSetRepo(db, testutil.Logger(t))
	ctx := context.Background()

	parent := testutil.SeedSet(t, ctx, tx, "max-order-parent", nil, true, 0)

	_, ok, err := repo.MaxSiblingOrder(ctx, tx, &parent.ID)
	if err != nil {
		t.Fatalf("max order: %v", err)
	}
	if ok {
		t.Fatalf("empty scope: want ok=false")
	}

	testutil.SeedSet(t, ctx, tx, "mo-a", parent, true, 3)
	testutil.SeedSet(t, ctx, tx, "mo-b", parent, true, 7)

	max, ok, err := repo.MaxSiblingOrder(ctx, tx, &parent.ID)
	if err != nil {
		t.Fatalf("max order: %v", err)
	}
	if !ok || max != 7 {
		t.Fatalf("max order: want=7 ok=true, got=%d ok=%v", max, ok)
	}
}

func TestSetRepoSlugExists(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	repo := NewSetRepo(db, testutil.Logger(t))
	ctx := context.Background()

	set := testutil.SeedSet(t, ctx, tx, "exists-check", nil, true, 0)

	taken, err := repo.SlugExists(ctx, tx, "exists-check", nil)
	if err != nil {
		t.Fatalf("slug exists: %v", err)
	}
	if !taken {
		t.Fatalf("want taken=true")
	}

	taken, err = repo.SlugExists(ctx, tx, "exists-check", &set.ID)
	if err != nil {
		t.Fatalf("slug exists excluding self: %v", err)
	}
	if taken {
		t.Fatalf("self-exclusion: want taken=false")
	}

	taken, err = repo.SlugExists(ctx, tx, "no-such-slug", nil)
	if err != nil {
		t.Fatalf("slug exists: %v", err)
	}
	if taken {
		t.Fatalf("unknown slug: want taken=false")
	}
}

func TestSetRepoGetByParentIDsOrdering(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	repo := NewSetRepo(db, testutil.Logger(t))
	ctx := context.Background()

	parent := testutil.SeedSet(t, ctx, tx, "ordering-parent", nil, true, 0)
	c2 := testutil.SeedSet(t, ctx, tx, "ord-2", parent, true, 2)
	c0 := testutil.SeedSet(t, ctx, tx, "ord-0", parent, true, 0)
	c1 := testutil.SeedSet(t, ctx, tx, "ord-1", parent, true, 1)

	children, err := repo.GetByParentIDs(ctx, tx, []uuid.UUID{parent.ID})
	if err != nil {
		t.Fatalf("get children: %v", err)
	}
	if len(children) != 3 {
		t.Fatalf("children: want=3 got=%d", len(children))
	}
	want := []uuid.UUID{c0.ID, c1.ID, c2.ID}
	for i, id := range want {
		if children[i].ID != id {
			t.Fatalf("child %d out of order", i)
		}
	}
}

func TestSetRepoListFilters(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	repo := NewSetRepo(db, testutil.Logger(t))
	ctx := context.Background()

	root := testutil.SeedSet(t, ctx, tx, "filter-root", nil, true, 0)
	hidden := testutil.SeedSet(t, ctx, tx, "filter-hidden", nil, false, 1)
	child := testutil.SeedSet(t, ctx, tx, "filter-root-kid", root, true, 0)
	child.Name = datatypes.JSON(`{"en":"Findable Child"}`)
	if err := tx.Save(child).Error; err != nil {
		t.Fatalf("save child name: %v", err)
	}

	bySlug, err := repo.List(ctx, tx, SetFilter{Slug: "filter-hidden"})
	if err != nil {
		t.Fatalf("list by slug: %v", err)
	}
	if len(bySlug) != 1 || bySlug[0].ID != hidden.ID {
		t.Fatalf("slug filter: want exactly the hidden set")
	}

	public, err := repo.List(ctx, tx, SetFilter{PublicOnly: true, Search: "filter-"})
	if err != nil {
		t.Fatalf("list public: %v", err)
	}
	for _, s := range public {
		if s.ID == hidden.ID {
			t.Fatalf("public filter leaked a hidden set")
		}
	}

	roots, err := repo.List(ctx, tx, SetFilter{RootOnly: true, Search: "filter-"})
	if err != nil {
		t.Fatalf("list roots: %v", err)
	}
	for _, s := range roots {
		if s.ID == child.ID {
			t.Fatalf("root filter leaked a child")
		}
	}

	search, err := repo.List(ctx, tx, SetFilter{Search: "Findable"})
	if err != nil {
		t.Fatalf("list search: %v", err)
	}
	if len(search) != 1 || search[0].ID != child.ID {
		t.Fatalf("search filter: want exactly the named child, got %d", len(search))
	}

	// Name matches display names only, never slugs.
	byName, err := repo.List(ctx, tx, SetFilter{Name: "findable ch"})
	if err != nil {
		t.Fatalf("list by name: %v", err)
	}
	if len(byName) != 1 || byName[0].ID != child.ID {
		t.Fatalf("name filter: want exactly the named child, got %d", len(byName))
	}
	byName, err = repo.List(ctx, tx, SetFilter{Name: "filter-root-kid"})
	if err != nil {
		t.Fatalf("list by name: %v", err)
	}
	for _, s := range byName {
		if s.ID == child.ID {
			t.Fatalf("name filter must not match on slug")
		}
	}
}

func TestSetRepoSoftAndFullDelete(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	repo := NewSetRepo(db, testutil.Logger(t))
	ctx := context.Background()

	set := testutil.SeedSet(t, ctx, tx, "delete-me", nil, true, 0)

	if err := repo.SoftDeleteByIDs(ctx, tx, []uuid.UUID{set.ID}); err != nil {
		t.Fatalf("soft delete: %v", err)
	}
	live, err := repo.GetByIDs(ctx, tx, []uuid.UUID{set.ID})
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(live) != 0 {
		t.Fatalf("soft-deleted set still visible")
	}
	trashed, err := repo.GetByIDsUnscoped(ctx, tx, []uuid.UUID{set.ID})
	if err != nil {
		t.Fatalf("get unscoped: %v", err)
	}
	if len(trashed) != 1 {
		t.Fatalf("soft-deleted set missing from unscoped load")
	}

	if err := repo.FullDeleteByIDs(ctx, tx, []uuid.UUID{set.ID}); err != nil {
		t.Fatalf("full delete: %v", err)
	}
	trashed, err = repo.GetByIDsUnscoped(ctx, tx, []uuid.UUID{set.ID})
	if err != nil {
		t.Fatalf("get unscoped: %v", err)
	}
	if len(trashed) != 0 {
		t.Fatalf("hard-deleted set still present")
	}
}
