package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/medtrack-api/internal/domain"
	"github.com/jhoicas/medtrack-api/internal/domain/entity"
	"github.com/jhoicas/medtrack-api/internal/domain/repository"
)

var _ repository.MedicineRepository = (*MedicineRepo)(nil)

// MedicineRepo implementación del puerto MedicineRepository sobre PostgreSQL (usable con pool o tx).
type MedicineRepo struct {
	q Querier
}

// NewMedicineRepository construye el adaptador. Pasar pool o tx (Querier).
func NewMedicineRepository(q Querier) *MedicineRepo {
	return &MedicineRepo{q: q}
}

const medicineColumns = `id, user_id, name, description, quantity, price, expiry_date, manufacturer, last_alert_sent, created_at, updated_at`

// Create persiste una nueva medicina.
func (r *MedicineRepo) Create(ctx context.Context, m *entity.Medicine) error {
	query := `
		INSERT INTO medicines (` + medicineColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := r.q.Exec(ctx, query,
		m.ID, m.UserID, m.Name, m.Description, m.Quantity, m.Price,
		m.ExpiryDate, m.Manufacturer, m.LastAlertSent, m.CreatedAt, m.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert medicine: %w", err)
	}
	return nil
}

// GetByIDAndUser obtiene una medicina por ID, solo si pertenece al usuario.
// Devuelve (nil, nil) si no existe.
func (r *MedicineRepo) GetByIDAndUser(ctx context.Context, id, userID string) (*entity.Medicine, error) {
	query := `
		SELECT ` + medicineColumns + `
		FROM medicines WHERE id = $1 AND user_id = $2`
	m, err := scanMedicine(r.q.QueryRow(ctx, query, id, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get medicine: %w", err)
	}
	return m, nil
}

// ListByUser devuelve el inventario completo del usuario ordenado por fecha de
// vencimiento ascendente. Una sola consulta: snapshot consistente para el job.
func (r *MedicineRepo) ListByUser(ctx context.Context, userID string) ([]*entity.Medicine, error) {
	query := `
		SELECT ` + medicineColumns + `
		FROM medicines WHERE user_id = $1 ORDER BY expiry_date`
	rows, err := r.q.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list medicines: %w", err)
	}
	defer rows.Close()
	var list []*entity.Medicine
	for rows.Next() {
		m, err := scanMedicine(rows)
		if err != nil {
			return nil, fmt.Errorf("scan medicine: %w", err)
		}
		list = append(list, m)
	}
	return list, rows.Err()
}

// Update actualiza los campos editables de una medicina. No toca last_alert_sent.
func (r *MedicineRepo) Update(ctx context.Context, m *entity.Medicine) error {
	query := `
		UPDATE medicines
		SET name = $2, description = $3, quantity = $4, price = $5,
		    expiry_date = $6, manufacturer = $7, updated_at = $8
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, query,
		m.ID, m.Name, m.Description, m.Quantity, m.Price,
		m.ExpiryDate, m.Manufacturer, m.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update medicine: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete elimina una medicina del usuario.
func (r *MedicineRepo) Delete(ctx context.Context, id, userID string) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM medicines WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("delete medicine: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// MarkAlertSent escribe únicamente last_alert_sent: no puede pisar una
// actualización concurrente de otros campos hecha por la API CRUD. GREATEST
// mantiene la monotonía del dedupe (nunca retrocede).
func (r *MedicineRepo) MarkAlertSent(ctx context.Context, medicineID string, day time.Time) error {
	query := `
		UPDATE medicines
		SET last_alert_sent = GREATEST(COALESCE(last_alert_sent, $2::date), $2::date)
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, query, medicineID, day)
	if err != nil {
		return fmt.Errorf("mark alert sent: %w", err)
	}
	if tag.RowsAffected() == 0 {
		// La medicina pudo ser eliminada entre el snapshot y la marca.
		return domain.ErrNotFound
	}
	return nil
}

// scanMedicine escanea una fila con las columnas de medicineColumns.
func scanMedicine(row pgx.Row) (*entity.Medicine, error) {
	var m entity.Medicine
	err := row.Scan(
		&m.ID, &m.UserID, &m.Name, &m.Description, &m.Quantity, &m.Price,
		&m.ExpiryDate, &m.Manufacturer, &m.LastAlertSent, &m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}
