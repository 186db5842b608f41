package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/jhoicas/farmstock-api/internal/application/audit"
	"github.com/jhoicas/farmstock-api/internal/application/inventory"
	"github.com/jhoicas/farmstock-api/internal/application/usecase"
	"github.com/jhoicas/farmstock-api/internal/application/workflow"
	"github.com/jhoicas/farmstock-api/internal/infrastructure/memory"
	"github.com/jhoicas/farmstock-api/internal/infrastructure/postgres"
	infraredis "github.com/jhoicas/farmstock-api/internal/infrastructure/redis"
	"github.com/jhoicas/farmstock-api/internal/infrastructure/telemetry"
	httpRouter "github.com/jhoicas/farmstock-api/internal/interfaces/http"
	"github.com/jhoicas/farmstock-api/pkg/config"
	"github.com/jhoicas/farmstock-api/pkg/logger"
	"github.com/jhoicas/farmstock-api/pkg/metrics"
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
		Str("store", cfg.App.StoreDriver).
		Msg("iniciando aplicación")

	ctx := context.Background()

	// Almacenamiento: PostgreSQL en producción; memoria para desarrollo y demos.
	var (
		txRunner inventory.TxRunner
		repos    inventory.Repos
	)
	switch cfg.App.StoreDriver {
	case config.StoreMemory:
		store := memory.NewStore()
		txRunner, repos = store, store.Repos()
		log.Warn().Msg("store en memoria: los datos se pierden al reiniciar")
	default:
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a PostgreSQL")
		}
		defer pool.Close()
		txRunner, repos = postgres.NewTxRunner(pool), postgres.NewRepos(pool)
	}

	reg := metrics.New(cfg.Metrics.Prefix)
	observer := telemetry.NewObserver(reg)

	// Bitácora: stream de Redis si está configurado, si no al log.
	var (
		publisher audit.Publisher = audit.NewLogPublisher(log.Component("audit"))
		guard     workflow.FulfilGuard
	)
	if cfg.Redis.Enabled() {
		rdb, err := infraredis.NewClient(ctx, cfg.Redis)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a Redis")
		}
		defer rdb.Close()
		publisher = infraredis.NewStreamPublisher(rdb, cfg.Audit.Stream)
		guard = infraredis.NewFulfilGuard(rdb, cfg.Ledger.FulfilLockTTL, log.Component("fulfil-guard"))
	}
	sink := audit.NewAsyncSink(publisher, cfg.Audit.QueueSize, log.Component("audit"), observer)

	applier := inventory.NewMovementApplier(txRunner, inventory.ApplierConfig{
		AllowNegativeCorrections: cfg.Ledger.AllowNegativeCorrections,
	}).WithObserver(observer)
	registerMovementUC := inventory.NewRegisterMovementUseCase(applier, sink)
	balanceQuery := inventory.NewBalanceQueryService(repos)
	itemUC := usecase.NewItemUseCase(txRunner, repos.Items, sink)
	locationUC := usecase.NewLocationUseCase(repos.Locations)
	requestUC := workflow.NewRequestUseCase(txRunner, repos.Requests, applier, sink,
		workflow.WithFulfilGuard(guard),
		workflow.WithTransitionObserver(observer),
		workflow.WithLogger(log.Component("workflow")),
	)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: cfg.HTTP.RequestTimeout + 5*time.Second,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		ItemUC:           itemUC,
		LocationUC:       locationUC,
		RegisterMovement: registerMovementUC,
		Balances:         balanceQuery,
		Requests:         requestUC,
		Metrics:          reg,
		Log:              log,
		JWTSecret:        cfg.JWT.Secret,
		JWTIssuer:        cfg.JWT.Issuer,
		RequestTimeout:   cfg.HTTP.RequestTimeout,
		TransientRetries: cfg.HTTP.TransientRetries,
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
	if err := sink.Close(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("bitácora: eventos pendientes sin publicar")
	}

	log.Info().Msg("aplicación detenida")
}
