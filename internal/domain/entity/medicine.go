package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Medicine representa una medicina en el inventario privado de un usuario.
// LastAlertSent es la última fecha calendario en la que se despachó con éxito
// una alerta que cubría esta medicina; es el único mecanismo de dedupe del job
// de alertas y solo avanza, nunca retrocede.
type Medicine struct {
	ID            string
	UserID        string
	Name          string
	Description   string
	Quantity      int // siempre >= 0
	Price         decimal.Decimal
	ExpiryDate    time.Time
	Manufacturer  string
	LastAlertSent *time.Time // nil = nunca alertada
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// AlertedOn indica si ya se envió una alerta para esta medicina el día calendario de ref.
// La comparación es por día en la zona horaria de ref.
func (m *Medicine) AlertedOn(ref time.Time) bool {
	if m.LastAlertSent == nil {
		return false
	}
	y1, m1, d1 := m.LastAlertSent.In(ref.Location()).Date()
	y2, m2, d2 := ref.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}
