package medicine

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/medtrack-api/internal/application/dto"
	"github.com/jhoicas/medtrack-api/internal/domain"
	"github.com/jhoicas/medtrack-api/internal/domain/entity"
	"github.com/jhoicas/medtrack-api/internal/domain/repository"
)

// UseCase casos de uso CRUD de medicinas. Cada mutación (create/update/delete)
// anexa exactamente una entrada al historial de inventario, en la misma
// transacción que la mutación: el historial nunca queda desfasado del estado.
// last_alert_sent pertenece en exclusiva al job de alertas y jamás se escribe
// por esta vía.
type UseCase struct {
	txRunner TxRunner
	medRepo  repository.MedicineRepository
}

// NewUseCase construye el caso de uso de medicinas.
func NewUseCase(txRunner TxRunner, medRepo repository.MedicineRepository) *UseCase {
	return &UseCase{txRunner: txRunner, medRepo: medRepo}
}

// Create agrega una medicina al inventario del usuario y registra "added".
func (uc *UseCase) Create(ctx context.Context, userID string, in dto.CreateMedicineRequest) (*dto.MedicineResponse, error) {
	if in.Name == "" || in.ExpiryDate.IsZero() {
		return nil, domain.ErrInvalidInput
	}
	if in.Quantity < 0 {
		return nil, domain.ErrNegativeQuantity
	}
	now := time.Now()
	med := &entity.Medicine{
		ID:           uuid.New().String(),
		UserID:       userID,
		Name:         in.Name,
		Description:  in.Description,
		Quantity:     in.Quantity,
		Price:        in.Price,
		ExpiryDate:   in.ExpiryDate,
		Manufacturer: in.Manufacturer,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	err := uc.txRunner.Run(ctx, func(
		medRepo repository.MedicineRepository,
		logRepo repository.InventoryLogRepository,
	) error {
		if err := medRepo.Create(ctx, med); err != nil {
			return err
		}
		return logRepo.Create(ctx, newLogEntry(med, entity.LogActionAdded, med.Quantity, now))
	})
	if err != nil {
		return nil, err
	}
	return toMedicineResponse(med), nil
}

// List devuelve todas las medicinas del usuario ordenadas por fecha de vencimiento.
func (uc *UseCase) List(ctx context.Context, userID string) ([]dto.MedicineResponse, error) {
	meds, err := uc.medRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.MedicineResponse, 0, len(meds))
	for _, m := range meds {
		out = append(out, *toMedicineResponse(m))
	}
	return out, nil
}

// Get devuelve una medicina por ID, solo si pertenece al usuario.
func (uc *UseCase) Get(ctx context.Context, id, userID string) (*dto.MedicineResponse, error) {
	med, err := uc.medRepo.GetByIDAndUser(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	if med == nil {
		return nil, domain.ErrNotFound
	}
	return toMedicineResponse(med), nil
}

// Update aplica una actualización parcial (solo campos de la lista blanca) y
// registra "updated" con el delta de cantidad con signo (0 si no cambió).
func (uc *UseCase) Update(ctx context.Context, id, userID string, in dto.UpdateMedicineRequest) (*dto.MedicineResponse, error) {
	if in.Quantity != nil && *in.Quantity < 0 {
		return nil, domain.ErrNegativeQuantity
	}
	var updated *entity.Medicine
	err := uc.txRunner.Run(ctx, func(
		medRepo repository.MedicineRepository,
		logRepo repository.InventoryLogRepository,
	) error {
		med, err := medRepo.GetByIDAndUser(ctx, id, userID)
		if err != nil {
			return err
		}
		if med == nil {
			return domain.ErrNotFound
		}
		delta := 0
		if in.Name != nil {
			med.Name = *in.Name
		}
		if in.Description != nil {
			med.Description = *in.Description
		}
		if in.Quantity != nil {
			delta = *in.Quantity - med.Quantity
			med.Quantity = *in.Quantity
		}
		if in.Price != nil {
			med.Price = *in.Price
		}
		if in.ExpiryDate != nil {
			med.ExpiryDate = *in.ExpiryDate
		}
		if in.Manufacturer != nil {
			med.Manufacturer = *in.Manufacturer
		}
		now := time.Now()
		med.UpdatedAt = now
		if err := medRepo.Update(ctx, med); err != nil {
			return err
		}
		updated = med
		return logRepo.Create(ctx, newLogEntry(med, entity.LogActionUpdated, delta, now))
	})
	if err != nil {
		return nil, err
	}
	return toMedicineResponse(updated), nil
}

// Delete elimina una medicina del usuario y registra "deleted".
func (uc *UseCase) Delete(ctx context.Context, id, userID string) error {
	return uc.txRunner.Run(ctx, func(
		medRepo repository.MedicineRepository,
		logRepo repository.InventoryLogRepository,
	) error {
		med, err := medRepo.GetByIDAndUser(ctx, id, userID)
		if err != nil {
			return err
		}
		if med == nil {
			return domain.ErrNotFound
		}
		if err := medRepo.Delete(ctx, id, userID); err != nil {
			return err
		}
		return logRepo.Create(ctx, newLogEntry(med, entity.LogActionDeleted, 0, time.Now()))
	})
}

func newLogEntry(med *entity.Medicine, action string, delta int, ts time.Time) *entity.InventoryLog {
	return &entity.InventoryLog{
		ID:            uuid.New().String(),
		UserID:        med.UserID,
		MedicineID:    med.ID,
		MedicineName:  med.Name,
		Action:        action,
		QuantityDelta: delta,
		Timestamp:     ts,
	}
}

func toMedicineResponse(m *entity.Medicine) *dto.MedicineResponse {
	if m == nil {
		return nil
	}
	return &dto.MedicineResponse{
		ID:            m.ID,
		Name:          m.Name,
		Description:   m.Description,
		Quantity:      m.Quantity,
		Price:         m.Price,
		ExpiryDate:    m.ExpiryDate,
		Manufacturer:  m.Manufacturer,
		LastAlertSent: m.LastAlertSent,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}
