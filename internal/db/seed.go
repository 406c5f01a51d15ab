package db

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/oakmart/oakmart-backend/internal/pkg/logger"
	"github.com/oakmart/oakmart-backend/internal/repos"
	"github.com/oakmart/oakmart-backend/internal/services"
	"github.com/oakmart/oakmart-backend/internal/types"
)

// SeedCatalog mirrors the YAML layout consumed by LoadSeedFile. Sets nest
// recursively; products are referenced from sets by SKU.
type SeedCatalog struct {
	Users    []SeedUser    `yaml:"users"`
	Products []SeedProduct `yaml:"products"`
	Sets     []SeedSet     `yaml:"sets"`
}

type SeedUser struct {
	Email     string `yaml:"email"`
	Password  string `yaml:"password"`
	FirstName string `yaml:"first_name"`
	LastName  string `yaml:"last_name"`
	Role      string `yaml:"role"`
}

type SeedProduct struct {
	SKU    string            `yaml:"sku"`
	Name   map[string]string `yaml:"name"`
	Status string            `yaml:"status"`
}

type SeedSet struct {
	Slug         string            `yaml:"slug"`
	SlugOverride bool              `yaml:"slug_override"`
	Name         map[string]string `yaml:"name"`
	Description  map[string]string `yaml:"description"`
	Public       *bool             `yaml:"public"`
	HideOnIndex  bool              `yaml:"hide_on_index"`
	Products     []string          `yaml:"products"`
	Children     []SeedSet         `yaml:"children"`
}

type Seeder struct {
	log               *logger.Logger
	db                *gorm.DB
	authService       services.AuthService
	setService        services.SetService
	setProductService services.SetProductService
	productRepo       repos.ProductRepo
}

func NewSeeder(
	log *logger.Logger,
	db *gorm.DB,
	authService services.AuthService,
	setService services.SetService,
	setProductService services.SetProductService,
	productRepo repos.ProductRepo,
) *Seeder {
	return &Seeder{
		log:               log.With("service", "Seeder"),
		db:                db,
		authService:       authService,
		setService:        setService,
		setProductService: setProductService,
		productRepo:       productRepo,
	}
}

// LoadSeedFile reads the catalog described by the SEED_FILE env var and
// creates it through the regular services so slugs, ordering, and
// visibility are derived the same way as production writes. It is a no-op
// when SEED_FILE is unset.
func (s *Seeder) LoadSeedFile(ctx context.Context) error {
	path := os.Getenv("SEED_FILE")
	if path == "" {
		return nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read seed file: %w", err)
	}
	var catalog SeedCatalog
	if err := yaml.Unmarshal(raw, &catalog); err != nil {
		return fmt.Errorf("parse seed file: %w", err)
	}
	return s.Load(ctx, &catalog)
}

func (s *Seeder) Load(ctx context.Context, catalog *SeedCatalog) error {
	for _, u := range catalog.Users {
		user := &types.User{
			Email:     u.Email,
			FirstName: u.FirstName,
			LastName:  u.LastName,
			Role:      u.Role,
		}
		if user.Role == "" {
			user.Role = "customer"
		}
		if err := s.authService.Register(ctx, nil, user, u.Password); err != nil {
			return fmt.Errorf("seed user %q: %w", u.Email, err)
		}
	}

	productsBySKU := map[string]uuid.UUID{}
	for _, p := range catalog.Products {
		name, err := translatable(p.Name)
		if err != nil {
			return fmt.Errorf("seed product %q: %w", p.SKU, err)
		}
		status := p.Status
		if status == "" {
			status = "active"
		}
		product := &types.Product{SKU: p.SKU, Name: name, Status: status}
		if _, err := s.productRepo.Create(ctx, nil, []*types.Product{product}); err != nil {
			return fmt.Errorf("seed product %q: %w", p.SKU, err)
		}
		productsBySKU[p.SKU] = product.ID
	}

	for _, set := range catalog.Sets {
		if err := s.loadSet(ctx, &set, nil, productsBySKU); err != nil {
			return err
		}
	}
	s.log.Info("seed catalog loaded",
		"users", len(catalog.Users),
		"products", len(catalog.Products),
		"root_sets", len(catalog.Sets))
	return nil
}

func (s *Seeder) loadSet(ctx context.Context, seed *SeedSet, parentID *uuid.UUID, productsBySKU map[string]uuid.UUID) error {
	name, err := translatable(seed.Name)
	if err != nil {
		return fmt.Errorf("seed set %q: %w", seed.Slug, err)
	}
	description, err := translatable(seed.Description)
	if err != nil {
		return fmt.Errorf("seed set %q: %w", seed.Slug, err)
	}
	in := services.CreateSetInput{
		Name:         name,
		Description:  description,
		Slug:         seed.Slug,
		SlugOverride: seed.SlugOverride,
		Public:       true,
		HideOnIndex:  seed.HideOnIndex,
		ParentID:     parentID,
	}
	if seed.Public != nil {
		in.Public = *seed.Public
	}
	set, err := s.setService.Create(ctx, nil, in)
	if err != nil {
		return fmt.Errorf("seed set %q: %w", seed.Slug, err)
	}

	if len(seed.Products) > 0 {
		productIDs := make([]uuid.UUID, 0, len(seed.Products))
		for _, sku := range seed.Products {
			id, ok := productsBySKU[sku]
			if !ok {
				return fmt.Errorf("seed set %q: unknown product sku %q", seed.Slug, sku)
			}
			productIDs = append(productIDs, id)
		}
		if err := s.setProductService.SyncProducts(ctx, nil, set.ID, productIDs); err != nil {
			return fmt.Errorf("seed set %q products: %w", seed.Slug, err)
		}
	}

	for _, child := range seed.Children {
		if err := s.loadSet(ctx, &child, &set.ID, productsBySKU); err != nil {
			return err
		}
	}
	return nil
}

func translatable(m map[string]string) (datatypes.JSON, error) {
	if len(m) == 0 {
		return nil, nil
	}
	raw, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(raw), nil
}
