package dto

import "time"

// InventoryLogResponse salida de una entrada del historial de inventario.
type InventoryLogResponse struct {
	ID            string    `json:"id"`
	MedicineID    string    `json:"medicine_id"`
	MedicineName  string    `json:"medicine_name"`
	Action        string    `json:"action"`
	QuantityDelta int       `json:"quantity_delta"`
	Timestamp     time.Time `json:"timestamp"`
}
