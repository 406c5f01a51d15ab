package testutil

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/oakmart/oakmart-backend/internal/types"
)

func SeedUser(tb testing.TB, ctx context.Context, tx *gorm.DB, email, role string) *types.User {
	tb.Helper()
	u := &types.User{
		ID:        uuid.New(),
		Email:     email,
		Password:  "pw",
		FirstName: "A",
		LastName:  "B",
		Role:      role,
	}
	if err := tx.WithContext(ctx).Create(u).Error; err != nil {
		tb.Fatalf("seed user: %v", err)
	}
	return u
}

func SeedSet(tb testing.TB, ctx context.Context, tx *gorm.DB, slug string, parent *types.Set, public bool, order int) *types.Set {
	tb.Helper()
	s := &types.Set{
		ID:           uuid.New(),
		Slug:         slug,
		Name:         datatypes.JSON([]byte(fmt.Sprintf(`{"en":%q}`, slug))),
		Public:       public,
		PublicParent: true,
		Order:        order,
	}
	if parent != nil {
		s.ParentID = &parent.ID
		s.PublicParent = parent.Public && parent.PublicParent
	}
	if err := tx.WithContext(ctx).Create(s).Error; err != nil {
		tb.Fatalf("seed set %q: %v", slug, err)
	}
	return s
}

func SeedProduct(tb testing.TB, ctx context.Context, tx *gorm.DB, sku string) *types.Product {
	tb.Helper()
	p := &types.Product{
		ID:     uuid.New(),
		SKU:    sku,
		Name:   datatypes.JSON([]byte(fmt.Sprintf(`{"en":%q}`, sku))),
		Status: "published",
	}
	if err := tx.WithContext(ctx).Create(p).Error; err != nil {
		tb.Fatalf("seed product %q: %v", sku, err)
	}
	return p
}

// AttachProduct inserts a pivot row directly, bypassing the membership
// ordering pass, so tests can stage arbitrary order states. Rows attach in
// call order; seq staggers CreatedAt so timestamps stay distinct too.
func AttachProduct(tb testing.TB, ctx context.Context, tx *gorm.DB, setID, productID uuid.UUID, order *int, seq int) *types.SetProduct {
	tb.Helper()
	row := &types.SetProduct{
		ID:        uuid.New(),
		SetID:     setID,
		ProductID: productID,
		Order:     order,
		CreatedAt: time.Now().Add(time.Duration(seq) * time.Millisecond),
	}
	if err := tx.WithContext(ctx).Create(row).Error; err != nil {
		tb.Fatalf("attach product: %v", err)
	}
	return row
}

func SeedAttribute(tb testing.TB, ctx context.Context, tx *gorm.DB, handle string) *types.Attribute {
	tb.Helper()
	a := &types.Attribute{
		ID:     uuid.New(),
		Handle: handle,
		Name:   datatypes.JSON([]byte(fmt.Sprintf(`{"en":%q}`, handle))),
	}
	if err := tx.WithContext(ctx).Create(a).Error; err != nil {
		tb.Fatalf("seed attribute %q: %v", handle, err)
	}
	return a
}

func SeedDiscount(tb testing.TB, ctx context.Context, tx *gorm.DB, code string, setID uuid.UUID, startsAt, endsAt *time.Time) *types.Discount {
	tb.Helper()
	d := &types.Discount{
		ID:       uuid.New(),
		Name:     datatypes.JSON([]byte(`{"en":"promo"}`)),
		Code:     code,
		StartsAt: startsAt,
		EndsAt:   endsAt,
	}
	if err := tx.WithContext(ctx).Create(d).Error; err != nil {
		tb.Fatalf("seed discount: %v", err)
	}
	link := &types.DiscountSet{ID: uuid.New(), DiscountID: d.ID, SetID: setID}
	if err := tx.WithContext(ctx).Create(link).Error; err != nil {
		tb.Fatalf("link discount: %v", err)
	}
	return d
}

func PtrInt(v int) *int { return &v }

func PtrUUID(v uuid.UUID) *uuid.UUID { return &v }

func PtrTime(v time.Time) *time.Time { return &v }
