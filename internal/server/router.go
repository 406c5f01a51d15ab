package server

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/oakmart/oakmart-backend/internal/handlers"
	"github.com/oakmart/oakmart-backend/internal/middleware"
)

type RouterConfig struct {
	AuthHandler       *handlers.AuthHandler
	AuthMiddleware    *middleware.AuthMiddleware
	SetHandler        *handlers.SetHandler
	SetProductHandler *handlers.SetProductHandler
	AllowOrigins      []string
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.Default()

	allowOrigins := cfg.AllowOrigins
	if len(allowOrigins) == 0 {
		allowOrigins = []string{"http://localhost:3000", "http://localhost:5174"}
	}
	router.Use(cors.New(cors.Config{
		AllowOrigins:     allowOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
	}))
	router.Use(otelgin.Middleware("oakmart-backend"))

	router.GET("/healthcheck", handlers.HealthCheck)

	api := router.Group("/api")
	{
		api.POST("/register", cfg.AuthHandler.Register)
		api.POST("/login", cfg.AuthHandler.Login)
	}

	// Reads are public; OptionalAuth lets staff tokens reveal hidden sets.
	reads := api.Group("/")
	reads.Use(cfg.AuthMiddleware.OptionalAuth())
	{
		reads.GET("/catalog-sets", cfg.SetHandler.ListSets)
		reads.GET("/catalog-sets/:id", cfg.SetHandler.GetSet)
		reads.GET("/catalog-sets/:id/products", cfg.SetProductHandler.ListSetProducts)
	}

	staff := api.Group("/")
	staff.Use(cfg.AuthMiddleware.RequireStaff())
	{
		staff.POST("/catalog-sets", cfg.SetHandler.CreateSet)
		staff.PATCH("/catalog-sets/:id", cfg.SetHandler.UpdateSet)
		staff.DELETE("/catalog-sets/:id", cfg.SetHandler.DeleteSet)
		staff.POST("/catalog-sets/reorder", cfg.SetHandler.ReorderSets)
		staff.POST("/catalog-sets/fix-order", cfg.SetProductHandler.FixOrder)
		staff.POST("/catalog-sets/:id/products", cfg.SetProductHandler.AttachProducts)
		staff.POST("/catalog-sets/:id/products/reorder", cfg.SetProductHandler.ReorderSetProducts)
	}

	return router
}
