package alerts

import (
	"fmt"
	"html"
	"strings"

	"github.com/jhoicas/medtrack-api/internal/domain/entity"
)

// Formato de fecha en los correos (equivalente a toDateString del frontend).
const emailDateLayout = "Mon Jan 02 2006"

// composeExpiredEmail arma el correo individual de una medicina que vence hoy.
// Cada medicina vencida lleva su propio mensaje: urgencia distinta, correo distinto.
func composeExpiredEmail(user *entity.User, med *entity.Medicine) (subject, body string) {
	subject = fmt.Sprintf("Medicine Expiry Alert: %s", med.Name)
	var b strings.Builder
	b.WriteString("<h2>Medicine Expired</h2>")
	fmt.Fprintf(&b, "<p>Hi %s,</p>", html.EscapeString(user.Name))
	fmt.Fprintf(&b, "<p>Your medicine <strong>%s</strong> expired today (%s).</p>",
		html.EscapeString(med.Name), med.ExpiryDate.Format(emailDateLayout))
	b.WriteString("<p>Please take necessary action.</p>")
	b.WriteString("<p>Regards,<br/>MedTrack</p>")
	return subject, b.String()
}

// composeExpiringSoonEmail arma el correo consolidado: una sola lista con todas
// las medicinas del usuario que vencen dentro de los próximos 7 días.
func composeExpiringSoonEmail(user *entity.User, meds []*entity.Medicine) (subject, body string) {
	subject = "Medicine Expiry Alert"
	var b strings.Builder
	b.WriteString("<h2>Medicines Expiring Soon</h2>")
	fmt.Fprintf(&b, "<p>Hi %s,</p>", html.EscapeString(user.Name))
	b.WriteString("<p>The following medicines in your inventory are expiring within the next 7 days:</p>")
	b.WriteString("<ul>")
	for _, med := range meds {
		fmt.Fprintf(&b, "<li><strong>%s</strong> - Expires on %s</li>",
			html.EscapeString(med.Name), med.ExpiryDate.Format(emailDateLayout))
	}
	b.WriteString("</ul>")
	b.WriteString("<p>Please take necessary action.</p>")
	b.WriteString("<p>Regards,<br/>MedTrack</p>")
	return subject, b.String()
}
