// cleanup_logs vacía el historial de inventario (todos los usuarios).
// Herramienta de retención del operador, se ejecuta manualmente.
//
// Uso: go run ./cmd/cleanup_logs
// Requiere la misma configuración de base de datos que la API (env vars o .env).
package main

import (
	"context"
	"time"

	"github.com/jhoicas/medtrack-api/internal/application/logs"
	"github.com/jhoicas/medtrack-api/internal/infrastructure/postgres"
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

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	uc := logs.NewUseCase(postgres.NewInventoryLogRepository(pool))
	deleted, err := uc.Cleanup(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("limpiar historial de inventario")
	}
	log.Info().Int64("deleted", deleted).Msg("historial de inventario limpiado")
}
