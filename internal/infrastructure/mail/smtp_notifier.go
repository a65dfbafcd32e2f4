package mail

import (
	"context"
	"fmt"

	"github.com/jhoicas/medtrack-api/internal/application/ports"
	"github.com/jhoicas/medtrack-api/pkg/config"
	gomail "gopkg.in/gomail.v2"
)

var _ ports.Notifier = (*SMTPNotifier)(nil)

// SMTPNotifier adaptador del puerto Notifier sobre SMTP (gomail).
// Abre una conexión por envío: el volumen es bajo (un puñado de correos por
// corrida diaria) y así cada envío falla de forma aislada.
type SMTPNotifier struct {
	dialer *gomail.Dialer
	from   string
}

// NewSMTPNotifier construye el adaptador con la configuración SMTP.
func NewSMTPNotifier(cfg config.SMTPConfig) *SMTPNotifier {
	from := cfg.From
	if from == "" {
		from = cfg.User
	}
	return &SMTPNotifier{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Password),
		from:   from,
	}
}

// Send entrega un mensaje HTML. gomail no acepta contexto, así que el envío
// corre en una goroutine y el deadline del contexto lo convierte en falla;
// la goroutine termina sola al cerrarse la conexión o expirar el socket.
func (n *SMTPNotifier) Send(ctx context.Context, to, subject, htmlBody string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", n.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", htmlBody)

	done := make(chan error, 1)
	go func() {
		done <- n.dialer.DialAndSend(msg)
	}()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("smtp send: %w", err)
		}
		return nil
	case <-ctx.Done():
		return fmt.Errorf("smtp send: %w", ctx.Err())
	}
}
