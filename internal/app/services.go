package app

import (
	"gorm.io/gorm"

	"github.com/oakmart/oakmart-backend/internal/events"
	"github.com/oakmart/oakmart-backend/internal/pkg/logger"
	"github.com/oakmart/oakmart-backend/internal/services"
)

type Services struct {
	Auth       services.AuthService
	Set        services.SetService
	SetProduct services.SetProductService
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, reposet Repos, bus events.Bus) Services {
	log.Info("Wiring services...")
	notifier := services.NewCatalogNotifier(log, bus)
	return Services{
		Auth: services.NewAuthService(db, log, reposet.User, cfg.JWTSecretKey, cfg.AccessTokenTTL),
		Set: services.NewSetService(
			db, log,
			reposet.Set,
			reposet.SetProduct,
			reposet.Attribute,
			reposet.Discount,
			reposet.Seo,
			notifier,
		),
		SetProduct: services.NewSetProductService(
			db, log,
			reposet.Set,
			reposet.SetProduct,
			reposet.Product,
		),
	}
}
