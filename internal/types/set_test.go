package types

import (
	"testing"
	"time"
)

func TestSetSlugHelpers(t *testing.T) {
	parent := &Set{Slug: "apparel"}

	derived := &Set{Slug: "apparel-shoes"}
	if derived.IsSlugOverridden(parent) {
		t.Fatalf("derived slug reported as overridden")
	}
	if got := derived.SlugSuffix(parent); got != "shoes" {
		t.Fatalf("SlugSuffix = %q, want %q", got, "shoes")
	}

	overridden := &Set{Slug: "summer-sale"}
	if !overridden.IsSlugOverridden(parent) {
		t.Fatalf("overridden slug not detected")
	}
	if got := overridden.SlugSuffix(parent); got != "summer-sale" {
		t.Fatalf("SlugSuffix for overridden slug = %q, want full slug", got)
	}

	root := &Set{Slug: "apparel"}
	if root.IsSlugOverridden(nil) {
		t.Fatalf("root slug reported as overridden")
	}
	if got := root.SlugSuffix(nil); got != "apparel" {
		t.Fatalf("root SlugSuffix = %q, want full slug", got)
	}
}

func TestSetVisible(t *testing.T) {
	cases := []struct {
		public       bool
		publicParent bool
		want         bool
	}{
		{true, true, true},
		{true, false, false},
		{false, true, false},
		{false, false, false},
	}
	for _, c := range cases {
		s := &Set{Public: c.public, PublicParent: c.publicParent}
		if s.Visible() != c.want {
			t.Fatalf("Visible() with public=%v public_parent=%v = %v, want %v", c.public, c.publicParent, s.Visible(), c.want)
		}
	}
}

func TestDiscountActiveAt(t *testing.T) {
	now := time.Now()
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	open := &Discount{}
	if !open.ActiveAt(now) {
		t.Fatalf("open-ended discount should be active")
	}
	running := &Discount{StartsAt: &past, EndsAt: &future}
	if !running.ActiveAt(now) {
		t.Fatalf("running discount should be active")
	}
	expired := &Discount{EndsAt: &past}
	if expired.ActiveAt(now) {
		t.Fatalf("expired discount should be inactive")
	}
	upcoming := &Discount{StartsAt: &future}
	if upcoming.ActiveAt(now) {
		t.Fatalf("upcoming discount should be inactive")
	}
}
