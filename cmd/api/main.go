package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/jhoicas/catalogo-api/internal/application/inventory"
	"github.com/jhoicas/catalogo-api/internal/application/usecase"
	"github.com/jhoicas/catalogo-api/internal/infrastructure/kafka"
	"github.com/jhoicas/catalogo-api/internal/infrastructure/memory"
	"github.com/jhoicas/catalogo-api/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/catalogo-api/internal/interfaces/http"
	"github.com/jhoicas/catalogo-api/pkg/config"
	"github.com/jhoicas/catalogo-api/pkg/logger"
)

const swaggerFile = "./docs/swagger.json"

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
		Str("store", cfg.Store.Driver).
		Msg("iniciando aplicación")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var txRunner inventory.TxRunner
	switch cfg.Store.Driver {
	case config.StoreDriverMemory:
		log.Warn().Msg("almacén en memoria: los datos se pierden al reiniciar")
		txRunner = memory.NewStore()
	default:
		if cfg.DB.AutoMigrate {
			if err := postgres.RunMigrations(cfg.DB.ConnectionString(), log.Component("migrations")); err != nil {
				log.Fatal().Err(err).Msg("migraciones")
			}
		}
		pool, err := postgres.NewPool(ctx, cfg.DB, cfg.App.Name)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a PostgreSQL")
		}
		defer pool.Close()
		txRunner = postgres.NewTxRunner(pool)
	}

	categoryUC := usecase.NewCategoryUseCase(txRunner)
	productUC := usecase.NewProductUseCase(txRunner)
	reconcileUC := inventory.NewReconcileStockUseCase(txRunner, cfg.Catalog.ConflictRetries, log.Component("reconcile"))
	discountUC := inventory.NewDiscountUseCase(txRunner, log.Component("discount"))

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	if _, err := os.Stat(swaggerFile); err == nil {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: swaggerFile,
			Path:     "docs",
			Title:    "Catálogo API",
		}))
	} else {
		log.Warn().Str("file", swaggerFile).Msg("swagger deshabilitado: archivo no encontrado")
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		CategoryUC:     categoryUC,
		ProductUC:      productUC,
		ReconcileStock: reconcileUC,
		Discount:       discountUC,
	})

	// Consumidor del feed de stock (opcional)
	consumerDone := make(chan struct{})
	if cfg.Kafka.Enabled() {
		consumer := kafka.NewFeedConsumer(kafka.NewReader(cfg.Kafka), reconcileUC, log.Component("kafka-feed"))
		go func() {
			defer close(consumerDone)
			if err := consumer.Run(ctx); err != nil {
				log.Error().Err(err).Msg("consumidor del feed finalizado")
			}
			if err := consumer.Close(); err != nil {
				log.Error().Err(err).Msg("cerrar reader de Kafka")
			}
		}()
		log.Info().Strs("brokers", cfg.Kafka.Brokers).Str("topic", cfg.Kafka.Topic).Msg("feed Kafka habilitado")
	} else {
		close(consumerDone)
	}

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil && !errors.Is(err, context.Canceled) {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	select {
	case <-consumerDone:
	case <-shutdownCtx.Done():
		log.Warn().Msg("el consumidor del feed no terminó a tiempo")
	}

	log.Info().Msg("aplicación detenida")
}
