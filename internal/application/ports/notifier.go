package ports

import "context"

// Notifier define el puerto de salida para entregar un mensaje a una dirección.
// Cualquier adaptador (SMTP, sendgrid, mock de test) debe implementar esta
// interfaz; la aplicación recibe la capacidad inyectada, nunca un transporter
// global de proceso. Una falla de envío es cualquier no-entrega a nivel de
// transporte, tratada de forma uniforme sin clasificación de causa.
type Notifier interface {
	// Send entrega un mensaje HTML a la dirección indicada. El contexto debe
	// llevar un timeout: un envío colgado se trata como falla, no como fatal.
	Send(ctx context.Context, to, subject, htmlBody string) error
}
