package logs

import (
	"context"

	"github.com/jhoicas/medtrack-api/internal/application/dto"
	"github.com/jhoicas/medtrack-api/internal/domain/repository"
)

// UseCase lectura del historial de inventario (las entradas son inmutables;
// la escritura ocurre solo dentro de las mutaciones de medicinas).
type UseCase struct {
	logRepo repository.InventoryLogRepository
}

// NewUseCase construye el caso de uso de historial.
func NewUseCase(logRepo repository.InventoryLogRepository) *UseCase {
	return &UseCase{logRepo: logRepo}
}

// ListByUser devuelve el historial del usuario, más reciente primero.
func (uc *UseCase) ListByUser(ctx context.Context, userID string) ([]dto.InventoryLogResponse, error) {
	entries, err := uc.logRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.InventoryLogResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, dto.InventoryLogResponse{
			ID:            e.ID,
			MedicineID:    e.MedicineID,
			MedicineName:  e.MedicineName,
			Action:        e.Action,
			QuantityDelta: e.QuantityDelta,
			Timestamp:     e.Timestamp,
		})
	}
	return out, nil
}

// Cleanup borra todo el historial (herramienta de retención del operador).
func (uc *UseCase) Cleanup(ctx context.Context) (int64, error) {
	return uc.logRepo.DeleteAll(ctx)
}
