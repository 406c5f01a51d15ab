package repos

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/oakmart/oakmart-backend/internal/repos/testutil"
)

func TestAttributeRepoSyncForSet(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	repo := NewAttributeRepo(db, testutil.Logger(t))
	ctx := context.Background()

	set := testutil.SeedSet(t, ctx, tx, "attr-sync-set", nil, true, 0)
	a := testutil.SeedAttribute(t, ctx, tx, "color")
	b := testutil.SeedAttribute(t, ctx, tx, "material")
	c := testutil.SeedAttribute(t, ctx, tx, "finish")

	if err := repo.SyncForSet(ctx, tx, set.ID, []uuid.UUID{a.ID, b.ID, c.ID}); err != nil {
		t.Fatalf("initial sync: %v", err)
	}
	rows, err := repo.GetBySetID(ctx, tx, set.ID)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("rows: want=3 got=%d", len(rows))
	}
	for i, want := range []uuid.UUID{a.ID, b.ID, c.ID} {
		if rows[i].AttributeID != want || rows[i].Position != i {
			t.Fatalf("row %d: attribute=%s position=%d", i, rows[i].AttributeID, rows[i].Position)
		}
	}

	// Re-sync with a new order drops the stale association and re-indexes
	// the kept ones by their index in the new list.
	if err := repo.SyncForSet(ctx, tx, set.ID, []uuid.UUID{c.ID, a.ID}); err != nil {
		t.Fatalf("re-sync: %v", err)
	}
	rows, err = repo.GetBySetID(ctx, tx, set.ID)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("rows after re-sync: want=2 got=%d", len(rows))
	}
	if rows[0].AttributeID != c.ID || rows[0].Position != 0 {
		t.Fatalf("first row after re-sync: attribute=%s position=%d", rows[0].AttributeID, rows[0].Position)
	}
	if rows[1].AttributeID != a.ID || rows[1].Position != 1 {
		t.Fatalf("second row after re-sync: attribute=%s position=%d", rows[1].AttributeID, rows[1].Position)
	}

	// Empty list removes every association.
	if err := repo.SyncForSet(ctx, tx, set.ID, nil); err != nil {
		t.Fatalf("clear sync: %v", err)
	}
	rows, err = repo.GetBySetID(ctx, tx, set.ID)
	if err != nil {
		t.Fatalf("reload after clear: %v", err)
	}
	if len(rows) != 0 {
		t.Fatalf("rows after clear: want=0 got=%d", len(rows))
	}
}
