package app

import (
	"gorm.io/gorm"

	"github.com/oakmart/oakmart-backend/internal/pkg/logger"
	"github.com/oakmart/oakmart-backend/internal/repos"
)

type Repos struct {
	User       repos.UserRepo
	Set        repos.SetRepo
	SetProduct repos.SetProductRepo
	Product    repos.ProductRepo
	Attribute  repos.AttributeRepo
	Discount   repos.DiscountRepo
	Seo        repos.SeoRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		User:       repos.NewUserRepo(db, log),
		Set:        repos.NewSetRepo(db, log),
		SetProduct: repos.NewSetProductRepo(db, log),
		Product:    repos.NewProductRepo(db, log),
		Attribute:  repos.NewAttributeRepo(db, log),
		Discount:   repos.NewDiscountRepo(db, log),
		Seo:        repos.NewSeoRepo(db, log),
	}
}
