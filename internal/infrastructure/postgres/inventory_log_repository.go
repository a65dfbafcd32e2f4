package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/medtrack-api/internal/domain/entity"
	"github.com/jhoicas/medtrack-api/internal/domain/repository"
)

var _ repository.InventoryLogRepository = (*InventoryLogRepo)(nil)

// InventoryLogRepo implementación append-only del historial de inventario
// sobre PostgreSQL (usable con pool o tx). Sin UPDATE: las entradas son inmutables.
type InventoryLogRepo struct {
	q Querier
}

// NewInventoryLogRepository construye el adaptador. Pasar pool o tx (Querier).
func NewInventoryLogRepository(q Querier) *InventoryLogRepo {
	return &InventoryLogRepo{q: q}
}

// Create anexa una entrada al historial.
func (r *InventoryLogRepo) Create(ctx context.Context, log *entity.InventoryLog) error {
	query := `
		INSERT INTO inventory_logs (id, user_id, medicine_id, medicine_name, action, quantity_delta, timestamp)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.q.Exec(ctx, query,
		log.ID, log.UserID, log.MedicineID, log.MedicineName,
		log.Action, log.QuantityDelta, log.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("insert inventory log: %w", err)
	}
	return nil
}

// ListByUser devuelve el historial del usuario, más reciente primero.
// medicine_id no tiene FK: la medicina puede haber sido eliminada y la entrada
// sigue siendo historial válido.
func (r *InventoryLogRepo) ListByUser(ctx context.Context, userID string) ([]*entity.InventoryLog, error) {
	query := `
		SELECT id, user_id, medicine_id, medicine_name, action, quantity_delta, timestamp
		FROM inventory_logs WHERE user_id = $1 ORDER BY timestamp DESC`
	rows, err := r.q.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list inventory logs: %w", err)
	}
	defer rows.Close()
	var list []*entity.InventoryLog
	for rows.Next() {
		var e entity.InventoryLog
		if err := rows.Scan(&e.ID, &e.UserID, &e.MedicineID, &e.MedicineName, &e.Action, &e.QuantityDelta, &e.Timestamp); err != nil {
			return nil, fmt.Errorf("scan inventory log: %w", err)
		}
		list = append(list, &e)
	}
	return list, rows.Err()
}

// DeleteAll borra todo el historial y devuelve cuántas entradas se eliminaron.
// Solo para la herramienta de retención del operador.
func (r *InventoryLogRepo) DeleteAll(ctx context.Context) (int64, error) {
	tag, err := r.q.Exec(ctx, `DELETE FROM inventory_logs`)
	if err != nil {
		return 0, fmt.Errorf("delete inventory logs: %w", err)
	}
	return tag.RowsAffected(), nil
}
