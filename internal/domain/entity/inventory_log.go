package entity

import "time"

// Acciones válidas para InventoryLog.
const (
	LogActionAdded   = "added"
	LogActionUpdated = "updated"
	LogActionDeleted = "deleted"
)

// InventoryLog es un registro append-only de una mutación de inventario:
// exactamente una entrada por create/update/delete de una medicina.
// Inmutable una vez creado: no existe update ni delete para esta entidad.
// MedicineName es un snapshot; la medicina referenciada puede dejar de existir
// y la entrada sigue siendo válida como historial.
type InventoryLog struct {
	ID            string
	UserID        string
	MedicineID    string
	MedicineName  string
	Action        string // added, updated, deleted
	QuantityDelta int    // cambio de cantidad con signo (0 si no cambió)
	Timestamp     time.Time
}
