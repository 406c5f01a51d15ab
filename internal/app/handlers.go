package app

import (
	"github.com/oakmart/oakmart-backend/internal/handlers"
	"github.com/oakmart/oakmart-backend/internal/pkg/logger"
)

type Handlers struct {
	Auth       *handlers.AuthHandler
	Set        *handlers.SetHandler
	SetProduct *handlers.SetProductHandler
}

func wireHandlers(log *logger.Logger, serviceset Services) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Auth:       handlers.NewAuthHandler(log, serviceset.Auth),
		Set:        handlers.NewSetHandler(log, serviceset.Set),
		SetProduct: handlers.NewSetProductHandler(log, serviceset.SetProduct),
	}
}
