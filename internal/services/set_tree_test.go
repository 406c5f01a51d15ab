package services

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/oakmart/oakmart-backend/internal/repos/testutil"
	"github.com/oakmart/oakmart-backend/internal/types"
)

func (f *catalogFixture) mustCreate(t *testing.T, slug string, parent *types.Set, public bool) *types.Set {
	t.Helper()
	in := CreateSetInput{Slug: slug, Public: public}
	if parent != nil {
		in.ParentID = &parent.ID
	}
	set, err := f.sets.Create(f.ctx, f.tx, in)
	if err != nil {
		t.Fatalf("create %q: %v", slug, err)
	}
	return set
}

func TestFlattenDescendants(t *testing.T) {
	f := newCatalogFixture(t)

	root := f.mustCreate(t, "flatten-root", nil, true)
	c1 := f.mustCreate(t, "one", root, true)
	c2 := f.mustCreate(t, "two", root, true)
	g1 := f.mustCreate(t, "deep", c1, true)

	flat, err := f.sets.FlattenDescendants(f.ctx, f.tx, []*types.Set{root})
	if err != nil {
		t.Fatalf("flatten: %v", err)
	}
	if len(flat) != 4 {
		t.Fatalf("flattened count: want=4 got=%d", len(flat))
	}
	// Descendants are collected before the input node itself.
	if flat[len(flat)-1].ID != root.ID {
		t.Fatalf("input node must trail its descendants")
	}
	pos := map[uuid.UUID]int{}
	for i, s := range flat {
		pos[s.ID] = i
	}
	if pos[g1.ID] > pos[c1.ID] {
		t.Fatalf("grandchild must come before its parent")
	}
	if _, ok := pos[c2.ID]; !ok {
		t.Fatalf("sibling subtree missing")
	}

	// Overlapping inputs do not duplicate nodes.
	flat, err = f.sets.FlattenDescendants(f.ctx, f.tx, []*types.Set{root, c1})
	if err != nil {
		t.Fatalf("flatten overlapping: %v", err)
	}
	if len(flat) != 4 {
		t.Fatalf("deduped count: want=4 got=%d", len(flat))
	}
}

func TestFlattenAncestors(t *testing.T) {
	f := newCatalogFixture(t)

	root := f.mustCreate(t, "anc-root", nil, true)
	mid := f.mustCreate(t, "mid", root, true)
	leaf := f.mustCreate(t, "leaf", mid, true)
	other := f.mustCreate(t, "anc-other", nil, true)
	otherLeaf := f.mustCreate(t, "lone", other, true)

	anc, err := f.sets.FlattenAncestors(f.ctx, f.tx, []*types.Set{leaf, otherLeaf})
	if err != nil {
		t.Fatalf("ancestors: %v", err)
	}
	got := map[uuid.UUID]bool{}
	for _, s := range anc {
		got[s.ID] = true
	}
	if len(anc) != 3 || !got[mid.ID] || !got[root.ID] || !got[other.ID] {
		t.Fatalf("ancestors: want {mid, root, other}, got %d nodes", len(anc))
	}

	anc, err = f.sets.FlattenAncestors(f.ctx, f.tx, []*types.Set{root})
	if err != nil {
		t.Fatalf("root ancestors: %v", err)
	}
	if len(anc) != 0 {
		t.Fatalf("root has no ancestors, got %d", len(anc))
	}
}

func TestAllProductIDs(t *testing.T) {
	f := newCatalogFixture(t)

	root := f.mustCreate(t, "prod-root", nil, true)
	child := f.mustCreate(t, "branch", root, true)
	ps := seedProducts(t, f, 3, "sku-tree-")

	if err := f.products.SyncProducts(f.ctx, f.tx, root.ID, []uuid.UUID{ps[0].ID, ps[1].ID}); err != nil {
		t.Fatalf("sync root: %v", err)
	}
	// ps[1] attached in both sets; the union must not duplicate it.
	if err := f.products.SyncProducts(f.ctx, f.tx, child.ID, []uuid.UUID{ps[1].ID, ps[2].ID}); err != nil {
		t.Fatalf("sync child: %v", err)
	}

	ids, err := f.sets.AllProductIDs(f.ctx, f.tx, root.ID)
	if err != nil {
		t.Fatalf("all product ids: %v", err)
	}
	if len(ids) != 3 {
		t.Fatalf("union size: want=3 got=%d", len(ids))
	}
	seen := map[uuid.UUID]bool{}
	for _, id := range ids {
		seen[id] = true
	}
	for _, p := range ps {
		if !seen[p.ID] {
			t.Fatalf("product %s missing from union", p.ID)
		}
	}
}

func TestActiveDiscounts(t *testing.T) {
	f := newCatalogFixture(t)

	root := f.mustCreate(t, "disc-root", nil, true)
	leaf := f.mustCreate(t, "twig", root, true)

	now := time.Now()
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	active := testutil.SeedDiscount(t, f.ctx, f.tx, "", root.ID, &past, &future)
	testutil.SeedDiscount(t, f.ctx, f.tx, "NEEDSCODE", root.ID, &past, &future)
	testutil.SeedDiscount(t, f.ctx, f.tx, "", root.ID, &future, nil)
	expired := now.Add(-time.Minute)
	testutil.SeedDiscount(t, f.ctx, f.tx, "", root.ID, &past, &expired)
	open := testutil.SeedDiscount(t, f.ctx, f.tx, "", leaf.ID, nil, nil)

	// Ancestor discounts apply to the leaf; coded, not-yet-started, and
	// expired ones do not.
	got, err := f.sets.ActiveDiscounts(f.ctx, f.tx, leaf.ID)
	if err != nil {
		t.Fatalf("active discounts: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("active discount count: want=2 got=%d", len(got))
	}
	ids := map[uuid.UUID]bool{}
	for _, d := range got {
		ids[d.ID] = true
	}
	if !ids[active.ID] || !ids[open.ID] {
		t.Fatalf("expected discounts missing: %v", ids)
	}
}
