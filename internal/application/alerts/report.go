package alerts

import "time"

// Report resume una corrida del job de alertas de vencimiento.
// No tiene esquema persistido: se expone por logs para operabilidad.
type Report struct {
	AsOf           time.Time `json:"as_of"`
	UsersProcessed int       `json:"users_processed"`
	EmailsSent     int       `json:"emails_sent"`
	SendFailures   int       `json:"send_failures"`
	ItemsMarked    int       `json:"items_marked"`
	MarkFailures   int       `json:"mark_failures"`
}
