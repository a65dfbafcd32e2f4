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
	"github.com/jhoicas/medtrack-api/internal/application/alerts"
	"github.com/jhoicas/medtrack-api/internal/application/auth"
	"github.com/jhoicas/medtrack-api/internal/application/logs"
	"github.com/jhoicas/medtrack-api/internal/application/medicine"
	"github.com/jhoicas/medtrack-api/internal/infrastructure/mail"
	"github.com/jhoicas/medtrack-api/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/medtrack-api/internal/interfaces/http"
	"github.com/jhoicas/medtrack-api/internal/scheduler"
	"github.com/jhoicas/medtrack-api/pkg/config"
	"github.com/jhoicas/medtrack-api/pkg/logger"
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

	userRepo := postgres.NewUserRepository(pool)
	medicineRepo := postgres.NewMedicineRepository(pool)
	logRepo := postgres.NewInventoryLogRepository(pool)
	otpRepo := postgres.NewOtpRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	notifier := mail.NewSMTPNotifier(cfg.SMTP)

	authUC := auth.NewUseCase(userRepo, otpRepo, notifier, auth.JWTConfig{
		Secret: cfg.JWT.Secret,
		Issuer: cfg.JWT.Issuer,
	}, cfg.App.ResetBaseURL)
	medicineUC := medicine.NewUseCase(txRunner, medicineRepo)
	logsUC := logs.NewUseCase(logRepo)

	// Job diario de alertas de vencimiento
	reconciler := alerts.NewReconciler(
		userRepo, medicineRepo, notifier, log.Component("alerts"),
		alerts.WithWorkers(cfg.Alerts.Workers),
		alerts.WithSendTimeout(time.Duration(cfg.Alerts.SendTimeout)*time.Second),
	)
	sched, err := scheduler.New(cfg.Alerts, reconciler, log.Component("scheduler"))
	if err != nil {
		log.Fatal().Err(err).Msg("configurar scheduler de alertas")
	}
	sched.Start()

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
		Title:    "MedTrack API",
	}))

	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"service": cfg.App.Name, "docs": "/docs"})
	})
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:     authUC,
		MedicineUC: medicineUC,
		LogsUC:     logsUC,
		JWTSecret:  cfg.JWT.Secret,
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

	// Primero el cron: si hay una corrida en vuelo, esperarla antes de cortar HTTP.
	cronCtx := sched.Stop()
	select {
	case <-cronCtx.Done():
	case <-time.After(30 * time.Second):
		log.Warn().Msg("corrida de alertas en vuelo no terminó a tiempo")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("servidor detenido")
}
