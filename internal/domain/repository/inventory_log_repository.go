package repository

import (
	"context"

	"github.com/jhoicas/medtrack-api/internal/domain/entity"
)

// InventoryLogRepository define el puerto de persistencia para InventoryLog.
// Solo append y lectura: las entradas son inmutables. DeleteAll existe
// únicamente para la herramienta de retención del operador (cmd/cleanup_logs).
type InventoryLogRepository interface {
	Create(ctx context.Context, log *entity.InventoryLog) error
	ListByUser(ctx context.Context, userID string) ([]*entity.InventoryLog, error)
	DeleteAll(ctx context.Context) (int64, error)
}
