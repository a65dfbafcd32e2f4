package medicine

import (
	"context"

	"github.com/jhoicas/medtrack-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando
// repositorios atados a esa tx. Garantiza que cada mutación de medicina y su
// entrada de historial se persistan juntas o ninguna.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		medRepo repository.MedicineRepository,
		logRepo repository.InventoryLogRepository,
	) error) error
}
