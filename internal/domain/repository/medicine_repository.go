package repository

import (
	"context"
	"time"

	"github.com/jhoicas/medtrack-api/internal/domain/entity"
)

// MedicineRepository define el puerto de persistencia para Medicine (DIP).
//
// MarkAlertSent es una actualización dirigida de una sola columna
// (last_alert_sent): no puede pisar una actualización concurrente de otros
// campos hecha por la API de mutación. ListByUser devuelve un snapshot en una
// sola consulta (ninguna medicina se lee dos veces ni se omite dentro de una
// corrida del job).
type MedicineRepository interface {
	Create(ctx context.Context, m *entity.Medicine) error
	GetByIDAndUser(ctx context.Context, id, userID string) (*entity.Medicine, error)
	ListByUser(ctx context.Context, userID string) ([]*entity.Medicine, error)
	Update(ctx context.Context, m *entity.Medicine) error
	Delete(ctx context.Context, id, userID string) error
	MarkAlertSent(ctx context.Context, medicineID string, day time.Time) error
}
