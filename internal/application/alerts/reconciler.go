package alerts

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jhoicas/medtrack-api/internal/application/ports"
	"github.com/jhoicas/medtrack-api/internal/domain/entity"
	"github.com/jhoicas/medtrack-api/internal/domain/repository"
	"github.com/jhoicas/medtrack-api/pkg/logger"
)

// Valores por defecto del job. El horizonte de "vence pronto" es de 7 días,
// heredado del comportamiento original del producto.
const (
	defaultWorkers     = 4
	defaultSendTimeout = 15 * time.Second
	soonHorizonDays    = 7
)

// Reconciler es el job diario de alertas de vencimiento: recorre el inventario
// de todos los usuarios, decide qué medicinas requieren alerta hoy bajo la
// regla de dedupe "a lo sumo una alerta por medicina por día calendario",
// envía los correos y marca de forma durable last_alert_sent.
//
// Los usuarios se procesan concurrentemente (unidades independientes, sin
// estado mutable compartido); la secuencia leer-filtrar-enviar-marcar de cada
// usuario es secuencial para que el check-then-act del dedupe no tenga
// carreras dentro de la corrida.
type Reconciler struct {
	userRepo    repository.UserRepository
	medRepo     repository.MedicineRepository
	notifier    ports.Notifier
	log         *logger.Logger
	workers     int
	sendTimeout time.Duration
}

// Option ajusta parámetros del Reconciler.
type Option func(*Reconciler)

// WithWorkers fija cuántos usuarios se procesan en paralelo.
func WithWorkers(n int) Option {
	return func(r *Reconciler) {
		if n > 0 {
			r.workers = n
		}
	}
}

// WithSendTimeout fija el timeout por envío; un envío que excede el timeout
// cuenta como falla de envío, no aborta la corrida.
func WithSendTimeout(d time.Duration) Option {
	return func(r *Reconciler) {
		if d > 0 {
			r.sendTimeout = d
		}
	}
}

// NewReconciler construye el job con la capacidad de notificación inyectada.
func NewReconciler(
	userRepo repository.UserRepository,
	medRepo repository.MedicineRepository,
	notifier ports.Notifier,
	log *logger.Logger,
	opts ...Option,
) *Reconciler {
	r := &Reconciler{
		userRepo:    userRepo,
		medRepo:     medRepo,
		notifier:    notifier,
		log:         log,
		workers:     defaultWorkers,
		sendTimeout: defaultSendTimeout,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// resultado por usuario; el agregador de Run los suma.
type userOutcome struct {
	emailsSent   int
	sendFailures int
	itemsMarked  int
	markFailures int
	readErr      error
}

// Run ejecuta una corrida de reconciliación para la fecha calendario asOf.
// El caller decide la fecha (el trigger del scheduler calcula "hoy" en la zona
// horaria configurada); el algoritmo nunca consulta el reloj de pared, lo que
// hace la operación determinista y testeable.
//
// Fallas de envío o de marcado de una medicina se cuentan y no detienen al
// resto de medicinas ni usuarios. Una falla de lectura aborta la corrida:
// el listado de usuarios de inmediato, el listado de medicinas de un usuario
// en los límites de iteración (los usuarios en vuelo terminan su secuencia).
// La cancelación del contexto también se honra solo en esos límites.
func (r *Reconciler) Run(ctx context.Context, asOf time.Time) (*Report, error) {
	asOf = Midnight(asOf)

	users, err := r.userRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listar usuarios: %w", err)
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	jobs := make(chan *entity.User)
	outcomes := make(chan userOutcome)

	var wg sync.WaitGroup
	for i := 0; i < r.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for u := range jobs {
				outcomes <- r.processUser(runCtx, asOf, u)
			}
		}()
	}

	// Alimentador: deja de despachar usuarios al cancelarse la corrida.
	go func() {
		defer close(jobs)
		for _, u := range users {
			select {
			case <-runCtx.Done():
				return
			case jobs <- u:
			}
		}
	}()

	go func() {
		wg.Wait()
		close(outcomes)
	}()

	report := &Report{AsOf: asOf}
	var readErr error
	for out := range outcomes {
		report.UsersProcessed++
		report.EmailsSent += out.emailsSent
		report.SendFailures += out.sendFailures
		report.ItemsMarked += out.itemsMarked
		report.MarkFailures += out.markFailures
		if out.readErr != nil && readErr == nil {
			readErr = out.readErr
			cancel()
		}
	}
	if readErr != nil {
		return report, fmt.Errorf("listar medicinas: %w", readErr)
	}
	if err := ctx.Err(); err != nil {
		return report, err
	}
	return report, nil
}

// processUser ejecuta la secuencia completa de un usuario: leer snapshot,
// particionar por ventanas, filtrar ya-alertadas, enviar y marcar.
// Atómica respecto a cancelación: una vez iniciada no se interrumpe.
func (r *Reconciler) processUser(ctx context.Context, asOf time.Time, u *entity.User) userOutcome {
	var out userOutcome

	meds, err := r.medRepo.ListByUser(ctx, u.ID)
	if err != nil {
		out.readErr = err
		return out
	}

	expired, soon := partition(meds, asOf)

	// Medicinas que vencen hoy: un correo individual por cada una.
	for _, med := range expired {
		subject, body := composeExpiredEmail(u, med)
		if err := r.send(ctx, u.Email, subject, body); err != nil {
			out.sendFailures++
			r.log.Warn().Err(err).
				Str("user_id", u.ID).
				Str("medicine_id", med.ID).
				Msg("falla enviando alerta de medicina vencida")
			continue
		}
		out.emailsSent++
		r.mark(ctx, asOf, med, &out)
	}

	// Medicinas que vencen pronto: un solo correo consolidado.
	if len(soon) > 0 {
		subject, body := composeExpiringSoonEmail(u, soon)
		if err := r.send(ctx, u.Email, subject, body); err != nil {
			out.sendFailures++
			r.log.Warn().Err(err).
				Str("user_id", u.ID).
				Int("medicines", len(soon)).
				Msg("falla enviando alerta consolidada de vencimiento próximo")
			return out
		}
		out.emailsSent++
		for _, med := range soon {
			r.mark(ctx, asOf, med, &out)
		}
	}
	return out
}

// send envía con timeout propio. El contexto de envío se desacopla de la
// cancelación de la corrida: la secuencia de un usuario en vuelo termina
// completa aunque la corrida se cancele.
func (r *Reconciler) send(ctx context.Context, to, subject, body string) error {
	sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.sendTimeout)
	defer cancel()
	return r.notifier.Send(sendCtx, to, subject, body)
}

// mark registra el dedupe durable. Si falla, el correo ya salió: se acepta la
// posible re-notificación de mañana antes que bloquear el envío (at-least-once),
// y la falla queda contada para visibilidad del operador.
func (r *Reconciler) mark(ctx context.Context, asOf time.Time, med *entity.Medicine, out *userOutcome) {
	markCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.sendTimeout)
	defer cancel()
	if err := r.medRepo.MarkAlertSent(markCtx, med.ID, asOf); err != nil {
		out.markFailures++
		r.log.Error().Err(err).
			Str("medicine_id", med.ID).
			Msg("correo enviado pero no se pudo marcar last_alert_sent")
		return
	}
	out.itemsMarked++
}

// Midnight trunca t a la medianoche de su día calendario, conservando la zona.
func Midnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// partition separa el snapshot en las dos clases de alerta relativas a asOf
// (asOf debe ser medianoche):
//
//	vencidas hoy:  expiry en [asOf, asOf+1d)
//	vencen pronto: expiry en (asOf, asOf+7d], excluyendo las ya tomadas por
//	               la clase anterior — las clases son disjuntas para que una
//	               medicina reciba a lo sumo una alerta por corrida.
//
// En ambas clases se descartan las medicinas ya alertadas el mismo día
// (guard de idempotencia). Una medicina vencida antes de hoy no entra en
// ninguna ventana: comportamiento heredado, ver DESIGN.md.
func partition(meds []*entity.Medicine, asOf time.Time) (expired, soon []*entity.Medicine) {
	tomorrow := asOf.AddDate(0, 0, 1)
	horizon := asOf.AddDate(0, 0, soonHorizonDays)

	for _, med := range meds {
		if med.AlertedOn(asOf) {
			continue
		}
		exp := med.ExpiryDate
		switch {
		case !exp.Before(asOf) && exp.Before(tomorrow):
			expired = append(expired, med)
		case exp.After(asOf) && !exp.After(horizon):
			soon = append(soon, med)
		}
	}
	return expired, soon
}
