package db

import (
	"testing"

	"gopkg.in/yaml.v3"
)

const sampleSeed = `
users:
  - email: admin@example.com
    password: changeme
    role: staff
products:
  - sku: TEE-001
    name: {en: "Basic Tee", de: "Basis-Shirt"}
  - sku: TEE-002
    name: {en: "Logo Tee"}
sets:
  - slug: apparel
    name: {en: "Apparel"}
    children:
      - slug: shirts
        name: {en: "Shirts"}
        products: [TEE-001, TEE-002]
      - slug: outlet
        slug_override: true
        public: false
        name: {en: "Outlet"}
`

func TestSeedCatalogUnmarshal(t *testing.T) {
	var catalog SeedCatalog
	if err := yaml.Unmarshal([]byte(sampleSeed), &catalog); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if len(catalog.Users) != 1 || catalog.Users[0].Role != "staff" {
		t.Fatalf("users parsed wrong: %+v", catalog.Users)
	}
	if len(catalog.Products) != 2 || catalog.Products[0].Name["de"] != "Basis-Shirt" {
		t.Fatalf("products parsed wrong: %+v", catalog.Products)
	}
	if len(catalog.Sets) != 1 {
		t.Fatalf("sets parsed wrong: %+v", catalog.Sets)
	}

	root := catalog.Sets[0]
	if root.Slug != "apparel" || len(root.Children) != 2 {
		t.Fatalf("root set parsed wrong: %+v", root)
	}
	shirts := root.Children[0]
	if len(shirts.Products) != 2 || shirts.Products[0] != "TEE-001" {
		t.Fatalf("child products parsed wrong: %+v", shirts)
	}
	outlet := root.Children[1]
	if !outlet.SlugOverride {
		t.Fatalf("slug_override must parse")
	}
	if outlet.Public == nil || *outlet.Public {
		t.Fatalf("explicit public: false must parse as set-to-false")
	}
	if shirts.Public != nil {
		t.Fatalf("omitted public must stay nil")
	}
}

func TestTranslatable(t *testing.T) {
	out, err := translatable(map[string]string{"en": "Shoes"})
	if err != nil {
		t.Fatalf("translatable: %v", err)
	}
	if string(out) != `{"en":"Shoes"}` {
		t.Fatalf("payload: got=%s", out)
	}

	out, err = translatable(nil)
	if err != nil {
		t.Fatalf("translatable nil: %v", err)
	}
	if out != nil {
		t.Fatalf("empty map must yield nil payload")
	}
}
