package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jhoicas/Inventario-minero/internal/application/documents"
	"github.com/jhoicas/Inventario-minero/internal/application/inventory"
	"github.com/jhoicas/Inventario-minero/internal/application/usecase"
	"github.com/jhoicas/Inventario-minero/internal/domain/workflow"
	"github.com/jhoicas/Inventario-minero/internal/infrastructure/cache"
	"github.com/jhoicas/Inventario-minero/internal/infrastructure/memory"
	"github.com/jhoicas/Inventario-minero/internal/infrastructure/metrics"
	"github.com/jhoicas/Inventario-minero/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/Inventario-minero/internal/interfaces/http"
	"github.com/jhoicas/Inventario-minero/pkg/config"
	"github.com/jhoicas/Inventario-minero/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("store", cfg.Inventory.Store).
		Msg("iniciando aplicación")

	ctx := context.Background()

	var store inventory.Store
	switch cfg.Inventory.Store {
	case config.StoreMemory:
		log.Warn().Msg("store en memoria: los datos se pierden al reiniciar")
		store = memory.New()
	default:
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a PostgreSQL")
		}
		defer pool.Close()
		if cfg.DB.Migrate {
			if err := postgres.Migrate(ctx, pool); err != nil {
				log.Fatal().Err(err).Msg("migración del esquema")
			}
			log.Info().Msg("esquema aplicado")
		}
		store = postgres.NewStore(pool)
	}

	var balanceCache inventory.BalanceCache
	if cfg.Redis.Addr != "" {
		client, err := cache.NewClient(ctx, cfg.Redis)
		if err != nil {
			log.Warn().Err(err).Msg("redis no disponible, saldos sin cache")
		} else {
			defer func() { _ = client.Close() }()
			balanceCache = cache.NewBalanceCache(client, cfg.Redis.BalanceTTL, log)
		}
	}

	m := metrics.New()
	ledger := inventory.NewLedger(nil)
	seq := inventory.NewSequencer(store, m, nil)
	recorder := inventory.NewMovementRecorder(store, ledger, seq, balanceCache, m, log, nil)
	queries := inventory.NewQueryService(store, balanceCache)
	docs := documents.NewService(store, recorder, seq, documents.NewRoleAuthorizer(), log, documents.Options{
		Policy: workflow.Policy{
			EppWarningDays:  cfg.Inventory.EppWarningDays,
			LoanDueSoonDays: cfg.Inventory.LoanDueSoonDays,
		},
		QuotationValidityDays: cfg.Inventory.QuotationValidityDays,
	})

	repos := store.Repos()
	companyUC := usecase.NewCompanyUseCase(repos.Companies)
	warehouseUC := usecase.NewWarehouseUseCase(repos.Warehouses)
	productUC := usecase.NewProductUseCase(repos.Products)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		CompanyUC:      companyUC,
		WarehouseUC:    warehouseUC,
		ProductUC:      productUC,
		Recorder:       recorder,
		Queries:        queries,
		Documents:      docs,
		MetricsHandler: m.Handler(),
		JWTSecret:      cfg.JWT.Secret,
		Log:            log,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
