package app

import (
	"github.com/gin-gonic/gin"

	"github.com/oakmart/oakmart-backend/internal/server"
)

func wireRouter(cfg Config, handlerset Handlers, middlewareset Middleware) *gin.Engine {
	return server.NewRouter(server.RouterConfig{
		AuthHandler:       handlerset.Auth,
		AuthMiddleware:    middlewareset.Auth,
		SetHandler:        handlerset.Set,
		SetProductHandler: handlerset.SetProduct,
		AllowOrigins:      cfg.AllowOrigins,
	})
}
