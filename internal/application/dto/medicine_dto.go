package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateMedicineRequest entrada para agregar una medicina al inventario.
type CreateMedicineRequest struct {
	Name         string          `json:"name" validate:"required,min=1,max=200"`
	Description  string          `json:"description" validate:"omitempty,max=1000"`
	Quantity     int             `json:"quantity" validate:"min=0"`
	Price        decimal.Decimal `json:"price"`
	ExpiryDate   time.Time       `json:"expiry_date" validate:"required"`
	Manufacturer string          `json:"manufacturer" validate:"omitempty,max=200"`
}

// UpdateMedicineRequest entrada para actualización parcial: solo los campos
// presentes (no nil) se aplican. Lista blanca: name, description, quantity,
// price, expiry_date, manufacturer. last_alert_sent nunca se toca por esta vía.
type UpdateMedicineRequest struct {
	Name         *string          `json:"name"`
	Description  *string          `json:"description"`
	Quantity     *int             `json:"quantity"`
	Price        *decimal.Decimal `json:"price"`
	ExpiryDate   *time.Time       `json:"expiry_date"`
	Manufacturer *string          `json:"manufacturer"`
}

// MedicineResponse salida de una medicina.
type MedicineResponse struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	Description   string          `json:"description,omitempty"`
	Quantity      int             `json:"quantity"`
	Price         decimal.Decimal `json:"price"`
	ExpiryDate    time.Time       `json:"expiry_date"`
	Manufacturer  string          `json:"manufacturer,omitempty"`
	LastAlertSent *time.Time      `json:"last_alert_sent,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}
