package services

import (
	"errors"
	"testing"

	"github.com/google/uuid"

	pkgerrors "github.com/oakmart/oakmart-backend/internal/pkg/errors"
	"github.com/oakmart/oakmart-backend/internal/repos/testutil"
	"github.com/oakmart/oakmart-backend/internal/types"
)

func (f *catalogFixture) orders(t *testing.T, setID uuid.UUID) map[uuid.UUID]int {
	t.Helper()
	rows, err := f.pivotRepo.GetBySetID(f.ctx, f.tx, setID)
	if err != nil {
		t.Fatalf("load memberships: %v", err)
	}
	out := make(map[uuid.UUID]int, len(rows))
	for _, row := range rows {
		if row.Order == nil {
			t.Fatalf("membership of product %s has null order", row.ProductID)
		}
		out[row.ProductID] = *row.Order
	}
	return out
}

func seedProducts(t *testing.T, f *catalogFixture, n int, prefix string) []*types.Product {
	t.Helper()
	out := make([]*types.Product, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, testutil.SeedProduct(t, f.ctx, f.tx, prefix+string(rune('a'+i))))
	}
	return out
}

func TestSyncProductsFreshAttach(t *testing.T) {
	f := newCatalogFixture(t)

	set, err := f.sets.Create(f.ctx, f.tx, CreateSetInput{Slug: "new-arrivals", Public: true})
	if err != nil {
		t.Fatalf("create set: %v", err)
	}
	ps := seedProducts(t, f, 3, "sku-fresh-")

	err = f.products.SyncProducts(f.ctx, f.tx, set.ID, []uuid.UUID{ps[0].ID, ps[1].ID, ps[2].ID})
	if err != nil {
		t.Fatalf("sync: %v", err)
	}

	got := f.orders(t, set.ID)
	for i, p := range ps {
		if got[p.ID] != i {
			t.Fatalf("product %d order: want=%d got=%d", i, i, got[p.ID])
		}
	}
}

func TestSyncProductsDetachRenumbers(t *testing.T) {
	f := newCatalogFixture(t)

	set, err := f.sets.Create(f.ctx, f.tx, CreateSetInput{Slug: "sale", Public: true})
	if err != nil {
		t.Fatalf("create set: %v", err)
	}
	ps := seedProducts(t, f, 4, "sku-sale-")
	all := []uuid.UUID{ps[0].ID, ps[1].ID, ps[2].ID, ps[3].ID}
	if err := f.products.SyncProducts(f.ctx, f.tx, set.ID, all); err != nil {
		t.Fatalf("initial sync: %v", err)
	}

	// Drop the middle two; the survivors must renumber densely.
	if err := f.products.SyncProducts(f.ctx, f.tx, set.ID, []uuid.UUID{ps[0].ID, ps[3].ID}); err != nil {
		t.Fatalf("second sync: %v", err)
	}

	got := f.orders(t, set.ID)
	if len(got) != 2 {
		t.Fatalf("memberships: want=2 got=%d", len(got))
	}
	if got[ps[0].ID] != 0 || got[ps[3].ID] != 1 {
		t.Fatalf("renumbered orders: got p0=%d p3=%d", got[ps[0].ID], got[ps[3].ID])
	}
}

func TestSyncProductsMissingProduct(t *testing.T) {
	f := newCatalogFixture(t)

	set, err := f.sets.Create(f.ctx, f.tx, CreateSetInput{Slug: "ghost", Public: true})
	if err != nil {
		t.Fatalf("create set: %v", err)
	}
	err = f.products.SyncProducts(f.ctx, f.tx, set.ID, []uuid.UUID{uuid.New()})
	if !errors.Is(err, pkgerrors.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}

func TestSyncProductsMissingSet(t *testing.T) {
	f := newCatalogFixture(t)

	err := f.products.SyncProducts(f.ctx, f.tx, uuid.New(), nil)
	if !errors.Is(err, pkgerrors.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}

func TestSyncProductsGapFill(t *testing.T) {
	f := newCatalogFixture(t)

	set, err := f.sets.Create(f.ctx, f.tx, CreateSetInput{Slug: "imports", Public: true})
	if err != nil {
		t.Fatalf("create set: %v", err)
	}
	ps := seedProducts(t, f, 3, "sku-gap-")
	// Rows staged directly with holes: one ordered row at 1, two null rows.
	testutil.AttachProduct(t, f.ctx, f.tx, set.ID, ps[0].ID, testutil.PtrInt(1), 0)
	testutil.AttachProduct(t, f.ctx, f.tx, set.ID, ps[1].ID, nil, 1)
	testutil.AttachProduct(t, f.ctx, f.tx, set.ID, ps[2].ID, nil, 2)

	ids := []uuid.UUID{ps[0].ID, ps[1].ID, ps[2].ID}
	if err := f.products.SyncProducts(f.ctx, f.tx, set.ID, ids); err != nil {
		t.Fatalf("sync: %v", err)
	}

	got := f.orders(t, set.ID)
	seen := map[int]bool{}
	for _, order := range got {
		if order < 0 || order > 2 || seen[order] {
			t.Fatalf("orders not dense 0..2: %v", got)
		}
		seen[order] = true
	}
}

func TestReorderProductsSingleMove(t *testing.T) {
	f := newCatalogFixture(t)

	set, err := f.sets.Create(f.ctx, f.tx, CreateSetInput{Slug: "featured", Public: true})
	if err != nil {
		t.Fatalf("create set: %v", err)
	}
	ps := seedProducts(t, f, 4, "sku-feat-")
	ids := []uuid.UUID{ps[0].ID, ps[1].ID, ps[2].ID, ps[3].ID}
	if err := f.products.SyncProducts(f.ctx, f.tx, set.ID, ids); err != nil {
		t.Fatalf("sync: %v", err)
	}

	// [p0:0 p1:1 p2:2 p3:3], move p3 to 1 -> [p0:0 p3:1 p1:2 p2:3]
	err = f.products.ReorderProducts(f.ctx, f.tx, set.ID, []ProductMove{{ProductID: ps[3].ID, Order: 1}})
	if err != nil {
		t.Fatalf("reorder: %v", err)
	}

	got := f.orders(t, set.ID)
	want := map[uuid.UUID]int{ps[0].ID: 0, ps[3].ID: 1, ps[1].ID: 2, ps[2].ID: 3}
	for id, order := range want {
		if got[id] != order {
			t.Fatalf("order of %s: want=%d got=%d (all=%v)", id, order, got[id], got)
		}
	}
}

func TestReorderProductsMoveForward(t *testing.T) {
	f := newCatalogFixture(t)

	set, err := f.sets.Create(f.ctx, f.tx, CreateSetInput{Slug: "forward", Public: true})
	if err != nil {
		t.Fatalf("create set: %v", err)
	}
	ps := seedProducts(t, f, 4, "sku-fwd-")
	ids := []uuid.UUID{ps[0].ID, ps[1].ID, ps[2].ID, ps[3].ID}
	if err := f.products.SyncProducts(f.ctx, f.tx, set.ID, ids); err != nil {
		t.Fatalf("sync: %v", err)
	}

	// Move p0 from 0 to 2 -> [p1:0 p2:1 p0:2 p3:3]
	err = f.products.ReorderProducts(f.ctx, f.tx, set.ID, []ProductMove{{ProductID: ps[0].ID, Order: 2}})
	if err != nil {
		t.Fatalf("reorder: %v", err)
	}

	got := f.orders(t, set.ID)
	want := map[uuid.UUID]int{ps[1].ID: 0, ps[2].ID: 1, ps[0].ID: 2, ps[3].ID: 3}
	for id, order := range want {
		if got[id] != order {
			t.Fatalf("order of %s: want=%d got=%d (all=%v)", id, order, got[id], got)
		}
	}
}

func TestReorderProductsSequentialMovesCompose(t *testing.T) {
	f := newCatalogFixture(t)

	set, err := f.sets.Create(f.ctx, f.tx, CreateSetInput{Slug: "compose", Public: true})
	if err != nil {
		t.Fatalf("create set: %v", err)
	}
	ps := seedProducts(t, f, 4, "sku-comp-")
	ids := []uuid.UUID{ps[0].ID, ps[1].ID, ps[2].ID, ps[3].ID}
	if err := f.products.SyncProducts(f.ctx, f.tx, set.ID, ids); err != nil {
		t.Fatalf("sync: %v", err)
	}

	// Two overlapping moves in one call; the second applies to the state
	// produced by the first. [p0 p1 p2 p3] -> p3 to 0 -> [p3 p0 p1 p2]
	// -> p1 to 3 -> [p3 p0 p2 p1]
	err = f.products.ReorderProducts(f.ctx, f.tx, set.ID, []ProductMove{
		{ProductID: ps[3].ID, Order: 0},
		{ProductID: ps[1].ID, Order: 3},
	})
	if err != nil {
		t.Fatalf("reorder: %v", err)
	}

	got := f.orders(t, set.ID)
	want := map[uuid.UUID]int{ps[3].ID: 0, ps[0].ID: 1, ps[2].ID: 2, ps[1].ID: 3}
	for id, order := range want {
		if got[id] != order {
			t.Fatalf("order of %s: want=%d got=%d (all=%v)", id, order, got[id], got)
		}
	}
}

func TestReorderProductsClampsTarget(t *testing.T) {
	f := newCatalogFixture(t)

	set, err := f.sets.Create(f.ctx, f.tx, CreateSetInput{Slug: "clamp", Public: true})
	if err != nil {
		t.Fatalf("create set: %v", err)
	}
	ps := seedProducts(t, f, 3, "sku-clamp-")
	ids := []uuid.UUID{ps[0].ID, ps[1].ID, ps[2].ID}
	if err := f.products.SyncProducts(f.ctx, f.tx, set.ID, ids); err != nil {
		t.Fatalf("sync: %v", err)
	}

	err = f.products.ReorderProducts(f.ctx, f.tx, set.ID, []ProductMove{{ProductID: ps[0].ID, Order: 99}})
	if err != nil {
		t.Fatalf("reorder: %v", err)
	}
	got := f.orders(t, set.ID)
	if got[ps[0].ID] != 2 {
		t.Fatalf("clamped order: want=2 got=%d", got[ps[0].ID])
	}

	err = f.products.ReorderProducts(f.ctx, f.tx, set.ID, []ProductMove{{ProductID: ps[0].ID, Order: -5}})
	if err != nil {
		t.Fatalf("reorder: %v", err)
	}
	got = f.orders(t, set.ID)
	if got[ps[0].ID] != 0 {
		t.Fatalf("clamped order: want=0 got=%d", got[ps[0].ID])
	}
}

func TestReorderProductsHealsNullAndDuplicateOrders(t *testing.T) {
	f := newCatalogFixture(t)

	set, err := f.sets.Create(f.ctx, f.tx, CreateSetInput{Slug: "dirty", Public: true})
	if err != nil {
		t.Fatalf("create set: %v", err)
	}
	ps := seedProducts(t, f, 3, "sku-dirty-")
	// Duplicate orders plus a null: both repairs must run before the move.
	testutil.AttachProduct(t, f.ctx, f.tx, set.ID, ps[0].ID, testutil.PtrInt(1), 0)
	testutil.AttachProduct(t, f.ctx, f.tx, set.ID, ps[1].ID, testutil.PtrInt(1), 1)
	testutil.AttachProduct(t, f.ctx, f.tx, set.ID, ps[2].ID, nil, 2)

	err = f.products.ReorderProducts(f.ctx, f.tx, set.ID, []ProductMove{{ProductID: ps[2].ID, Order: 0}})
	if err != nil {
		t.Fatalf("reorder: %v", err)
	}

	got := f.orders(t, set.ID)
	if got[ps[2].ID] != 0 {
		t.Fatalf("moved product order: want=0 got=%d", got[ps[2].ID])
	}
	seen := map[int]bool{}
	for _, order := range got {
		if order < 0 || order > 2 || seen[order] {
			t.Fatalf("orders not dense after healing: %v", got)
		}
		seen[order] = true
	}
}

func TestReorderProductsUnattachedProduct(t *testing.T) {
	f := newCatalogFixture(t)

	set, err := f.sets.Create(f.ctx, f.tx, CreateSetInput{Slug: "strict", Public: true})
	if err != nil {
		t.Fatalf("create set: %v", err)
	}
	ps := seedProducts(t, f, 1, "sku-strict-")
	if err := f.products.SyncProducts(f.ctx, f.tx, set.ID, []uuid.UUID{ps[0].ID}); err != nil {
		t.Fatalf("sync: %v", err)
	}

	err = f.products.ReorderProducts(f.ctx, f.tx, set.ID, []ProductMove{{ProductID: uuid.New(), Order: 0}})
	if !errors.Is(err, pkgerrors.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}

func TestListProductsSortsNullsLast(t *testing.T) {
	f := newCatalogFixture(t)

	set, err := f.sets.Create(f.ctx, f.tx, CreateSetInput{Slug: "listing", Public: true})
	if err != nil {
		t.Fatalf("create set: %v", err)
	}
	ps := seedProducts(t, f, 3, "sku-list-")
	testutil.AttachProduct(t, f.ctx, f.tx, set.ID, ps[0].ID, nil, 0)
	testutil.AttachProduct(t, f.ctx, f.tx, set.ID, ps[1].ID, testutil.PtrInt(1), 1)
	testutil.AttachProduct(t, f.ctx, f.tx, set.ID, ps[2].ID, testutil.PtrInt(0), 2)

	rows, err := f.products.ListProducts(f.ctx, f.tx, set.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("rows: want=3 got=%d", len(rows))
	}
	if rows[0].ProductID != ps[2].ID || rows[1].ProductID != ps[1].ID || rows[2].ProductID != ps[0].ID {
		t.Fatalf("listing order wrong: %v %v %v", rows[0].ProductID, rows[1].ProductID, rows[2].ProductID)
	}
}

func TestFixOrderForSets(t *testing.T) {
	f := newCatalogFixture(t)

	s1, err := f.sets.Create(f.ctx, f.tx, CreateSetInput{Slug: "fix-a", Public: true})
	if err != nil {
		t.Fatalf("create s1: %v", err)
	}
	s2, err := f.sets.Create(f.ctx, f.tx, CreateSetInput{Slug: "fix-b", Public: true})
	if err != nil {
		t.Fatalf("create s2: %v", err)
	}
	ps := seedProducts(t, f, 3, "sku-fix-")
	ids := []uuid.UUID{ps[0].ID, ps[1].ID, ps[2].ID}
	if err := f.products.SyncProducts(f.ctx, f.tx, s1.ID, ids); err != nil {
		t.Fatalf("sync s1: %v", err)
	}
	// ps[0] is not attached to s2; the repair must skip that set silently.
	if err := f.products.SyncProducts(f.ctx, f.tx, s2.ID, []uuid.UUID{ps[1].ID, ps[2].ID}); err != nil {
		t.Fatalf("sync s2: %v", err)
	}

	err = f.products.FixOrderForSets(f.ctx, f.tx, []uuid.UUID{s1.ID, s2.ID}, ps[0].ID)
	if err != nil {
		t.Fatalf("fix order: %v", err)
	}

	got := f.orders(t, s1.ID)
	if got[ps[0].ID] != 2 {
		t.Fatalf("fixed order in s1: want=2 got=%d", got[ps[0].ID])
	}
	got2 := f.orders(t, s2.ID)
	if _, ok := got2[ps[0].ID]; ok {
		t.Fatalf("product must not appear in s2")
	}
}
