package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/onda-do/registro-api/internal/application/auth"
	"github.com/onda-do/registro-api/internal/application/catalog"
	"github.com/onda-do/registro-api/internal/application/fiscal"
	"github.com/onda-do/registro-api/internal/application/ports"
	"github.com/onda-do/registro-api/internal/application/pricing"
	"github.com/onda-do/registro-api/internal/application/workflow"
	infrapdf "github.com/onda-do/registro-api/internal/infrastructure/pdf"
	"github.com/onda-do/registro-api/internal/infrastructure/postgres"
	"github.com/onda-do/registro-api/internal/infrastructure/sign"
	"github.com/onda-do/registro-api/internal/infrastructure/storage"
	httpRouter "github.com/onda-do/registro-api/internal/interfaces/http"
	"github.com/onda-do/registro-api/pkg/config"
	"github.com/onda-do/registro-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: "info",
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	clock := ports.RealClock{}
	txRunner := postgres.NewTxRunner(pool)

	userRepo := postgres.NewUserRepository(pool)
	serviceRepo := postgres.NewServiceRepository(pool)
	costRepo := postgres.NewCostRecordRepository(pool)
	requestRepo := postgres.NewRequestRepository(pool)
	auditRepo := postgres.NewAuditRepository(pool)

	docStore, err := storage.New(ctx, cfg.Storage)
	if err != nil {
		log.Fatal().Err(err).Msg("almacén de documentos")
	}
	log.Info().Str("driver", cfg.Storage.Driver).Msg("almacén de documentos listo")

	authUC := auth.NewAuthUseCase(userRepo, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	}, clock)
	serviceUC := catalog.NewServiceUseCase(serviceRepo, clock)
	pricingUC := pricing.NewUseCase(costRepo, txRunner, clock)
	fiscalUC := fiscal.NewUseCase(txRunner, clock)
	workflowUC := workflow.NewUseCase(
		txRunner, requestRepo, serviceRepo, costRepo, auditRepo,
		fiscalUC,
		infrapdf.NewCertificateRenderer(),
		docStore,
		sign.NewVerifier(),
		clock,
	)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Registro API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:     authUC,
		ServiceUC:  serviceUC,
		PricingUC:  pricingUC,
		FiscalUC:   fiscalUC,
		WorkflowUC: workflowUC,
		JWTSecret:  cfg.JWT.Secret,

		FiscalAlertMargin: cfg.Fiscal.AlertMargin,
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
