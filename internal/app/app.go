package app

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/oakmart/oakmart-backend/internal/db"
	"github.com/oakmart/oakmart-backend/internal/events"
	"github.com/oakmart/oakmart-backend/internal/observability"
	"github.com/oakmart/oakmart-backend/internal/pkg/logger"
)

const observabilityShutdownTimeout = 5 * time.Second

type App struct {
	Log      *logger.Logger
	DB       *gorm.DB
	Router   *gin.Engine
	Cfg      Config
	Repos    Repos
	Services Services
	Bus      events.Bus

	webhooks     *events.WebhookDispatcher
	otelShutdown func(context.Context) error
	cancel       context.CancelFunc
}

func New() (*App, error) {
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	log.Info("Loading environment variables...")
	cfg := LoadConfig(log)

	pg, err := db.NewPostgresService(log)
	if err != nil {
		log.Sync()
		return nil, fmt.Errorf("init postgres: %w", err)
	}
	if err := pg.AutoMigrateAll(); err != nil {
		log.Sync()
		return nil, fmt.Errorf("postgres automigrate: %w", err)
	}
	theDB := pg.DB()

	// Redis-backed events when REDIS_ADDR is set, in-process otherwise.
	bus, err := events.NewRedisBus(log)
	if err != nil {
		log.Warn("redis bus unavailable, using in-memory events", "error", err)
		bus = events.NewMemoryBus(log)
	}

	reposet := wireRepos(theDB, log)
	serviceset := wireServices(theDB, log, cfg, reposet, bus)
	handlerset := wireHandlers(log, serviceset)
	middlewareset := wireMiddleware(log, serviceset)
	router := wireRouter(cfg, handlerset, middlewareset)

	a := &App{
		Log:      log,
		DB:       theDB,
		Router:   router,
		Cfg:      cfg,
		Repos:    reposet,
		Services: serviceset,
		Bus:      bus,
	}
	if len(cfg.WebhookEndpoints) > 0 {
		a.webhooks = events.NewWebhookDispatcher(log, cfg.WebhookEndpoints)
	}
	return a, nil
}

func (a *App) Start() {
	if a == nil || a.cancel != nil {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	a.cancel = cancel

	a.otelShutdown = observability.InitOTel(ctx, a.Log, observability.OtelConfig{
		ServiceName: "oakmart-backend",
		Environment: a.Cfg.Environment,
	})

	if a.webhooks != nil {
		if err := a.webhooks.Start(ctx, a.Bus); err != nil {
			a.Log.Warn("webhook dispatcher failed to start", "error", err)
		}
	}

	seeder := db.NewSeeder(a.Log, a.DB, a.Services.Auth, a.Services.Set, a.Services.SetProduct, a.Repos.Product)
	if err := seeder.LoadSeedFile(ctx); err != nil {
		a.Log.Warn("seed load failed", "error", err)
	}
}

func (a *App) Run(addr string) error {
	if a == nil || a.Router == nil {
		return fmt.Errorf("app not initialized")
	}
	return a.Router.Run(addr)
}

func (a *App) Close() {
	if a == nil {
		return
	}
	if a.cancel != nil {
		a.cancel()
		a.cancel = nil
	}
	if a.Bus != nil {
		if err := a.Bus.Close(); err != nil {
			a.Log.Warn("event bus close failed", "error", err)
		}
	}
	if a.otelShutdown != nil {
		ctx, cancel := context.WithTimeout(context.Background(), observabilityShutdownTimeout)
		defer cancel()
		if err := a.otelShutdown(ctx); err != nil {
			a.Log.Warn("otel shutdown failed", "error", err)
		}
		a.otelShutdown = nil
	}
	if a.Log != nil {
		a.Log.Sync()
	}
}
