package alerts

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/medtrack-api/internal/domain/entity"
	"github.com/jhoicas/medtrack-api/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fakes en memoria
// ──────────────────────────────────────────────────────────────────────────────

type fakeUserRepo struct {
	users   []*entity.User
	listErr error
}

func (f *fakeUserRepo) Create(ctx context.Context, u *entity.User) error { return nil }
func (f *fakeUserRepo) GetByID(ctx context.Context, id string) (*entity.User, error) {
	return nil, nil
}
func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	return nil, nil
}
func (f *fakeUserRepo) UpdatePassword(ctx context.Context, id, hash string) error { return nil }
func (f *fakeUserRepo) List(ctx context.Context) ([]*entity.User, error) {
	return f.users, f.listErr
}

type fakeMedRepo struct {
	mu      sync.Mutex
	byUser  map[string][]*entity.Medicine
	listErr map[string]error // por usuario
	markErr error
	marked  []string // IDs marcados, en orden
}

func (f *fakeMedRepo) Create(ctx context.Context, m *entity.Medicine) error { return nil }
func (f *fakeMedRepo) GetByIDAndUser(ctx context.Context, id, userID string) (*entity.Medicine, error) {
	return nil, nil
}
func (f *fakeMedRepo) Update(ctx context.Context, m *entity.Medicine) error { return nil }
func (f *fakeMedRepo) Delete(ctx context.Context, id, userID string) error  { return nil }

func (f *fakeMedRepo) ListByUser(ctx context.Context, userID string) ([]*entity.Medicine, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.listErr[userID]; err != nil {
		return nil, err
	}
	return f.byUser[userID], nil
}

func (f *fakeMedRepo) MarkAlertSent(ctx context.Context, medicineID string, day time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.markErr != nil {
		return f.markErr
	}
	for _, meds := range f.byUser {
		for _, m := range meds {
			if m.ID == medicineID {
				d := day
				m.LastAlertSent = &d
				f.marked = append(f.marked, medicineID)
				return nil
			}
		}
	}
	return errors.New("medicina no encontrada")
}

type sentEmail struct {
	to      string
	subject string
	body    string
}

type fakeNotifier struct {
	mu     sync.Mutex
	sent   []sentEmail
	failTo map[string]bool // destinos que fallan
}

func (f *fakeNotifier) Send(ctx context.Context, to, subject, body string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failTo[to] {
		return errors.New("smtp: conexión rechazada")
	}
	f.sent = append(f.sent, sentEmail{to: to, subject: subject, body: body})
	return nil
}

func (f *fakeNotifier) sentTo(to string) []sentEmail {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []sentEmail
	for _, s := range f.sent {
		if s.to == to {
			out = append(out, s)
		}
	}
	return out
}

// ──────────────────────────────────────────────────────────────────────────────
// Helpers
// ──────────────────────────────────────────────────────────────────────────────

var hoy = time.Date(2026, time.March, 10, 0, 0, 0, 0, time.UTC)

func diasDespues(n int) time.Time { return hoy.AddDate(0, 0, n) }

func usuario(id, email string) *entity.User {
	return &entity.User{ID: id, Email: email, Name: "Usuario " + id}
}

func medicina(id, userID, name string, expiry time.Time) *entity.Medicine {
	return &entity.Medicine{ID: id, UserID: userID, Name: name, Quantity: 1, ExpiryDate: expiry}
}

func testReconciler(users *fakeUserRepo, meds *fakeMedRepo, n *fakeNotifier) *Reconciler {
	log := logger.New(logger.Config{Env: "development", Level: "error"})
	return NewReconciler(users, meds, n, log, WithWorkers(2))
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests del job de alertas
// ──────────────────────────────────────────────────────────────────────────────

// Medicina que vence hoy: un correo individual con su nombre y marca durable.
func TestRun_VenceHoy_CorreoIndividualYMarca(t *testing.T) {
	u := usuario("u1", "u1@test.com")
	m := medicina("m1", "u1", "Ibuprofeno", hoy)
	users := &fakeUserRepo{users: []*entity.User{u}}
	meds := &fakeMedRepo{byUser: map[string][]*entity.Medicine{"u1": {m}}}
	notifier := &fakeNotifier{}

	report, err := testReconciler(users, meds, notifier).Run(context.Background(), hoy)
	require.NoError(t, err)

	assert.Equal(t, 1, report.UsersProcessed)
	assert.Equal(t, 1, report.EmailsSent)
	assert.Equal(t, 1, report.ItemsMarked)
	assert.Equal(t, 0, report.SendFailures)

	sent := notifier.sentTo("u1@test.com")
	require.Len(t, sent, 1)
	assert.Contains(t, sent[0].subject, "Ibuprofeno", "el correo individual lleva el nombre de la medicina")
	assert.Contains(t, sent[0].body, "expired today")

	require.NotNil(t, m.LastAlertSent)
	assert.True(t, m.AlertedOn(hoy), "la marca debe cubrir el día de la corrida")
}

// Segunda corrida del mismo día: la marca persistida filtra todo, cero correos.
func TestRun_SegundaCorridaMismoDia_NoReenvia(t *testing.T) {
	u := usuario("u1", "u1@test.com")
	users := &fakeUserRepo{users: []*entity.User{u}}
	meds := &fakeMedRepo{byUser: map[string][]*entity.Medicine{
		"u1": {
			medicina("m1", "u1", "Ibuprofeno", hoy),
			medicina("m2", "u1", "Paracetamol", diasDespues(3)),
		},
	}}
	notifier := &fakeNotifier{}
	r := testReconciler(users, meds, notifier)

	first, err := r.Run(context.Background(), hoy)
	require.NoError(t, err)
	assert.Equal(t, 2, first.EmailsSent, "individual + consolidado")
	assert.Equal(t, 2, first.ItemsMarked)

	second, err := r.Run(context.Background(), hoy)
	require.NoError(t, err)
	assert.Equal(t, 0, second.EmailsSent, "misma fecha: el dedupe debe suprimir todo reenvío")
	assert.Equal(t, 0, second.ItemsMarked)
	assert.Len(t, notifier.sent, 2, "no debe haber correos nuevos en la segunda corrida")
}

// Corrida al día siguiente: la marca de ayer ya no filtra y la medicina vuelve a calificar.
func TestRun_DiaSiguiente_VuelveAAlertar(t *testing.T) {
	u := usuario("u1", "u1@test.com")
	users := &fakeUserRepo{users: []*entity.User{u}}
	meds := &fakeMedRepo{byUser: map[string][]*entity.Medicine{
		"u1": {medicina("m1", "u1", "Paracetamol", diasDespues(5))},
	}}
	notifier := &fakeNotifier{}
	r := testReconciler(users, meds, notifier)

	_, err := r.Run(context.Background(), hoy)
	require.NoError(t, err)

	manana := diasDespues(1)
	report, err := r.Run(context.Background(), manana)
	require.NoError(t, err)
	assert.Equal(t, 1, report.EmailsSent, "en días distintos la medicina califica de nuevo")
}

// Sin candidatas (vencida ayer, o más allá del horizonte): cero llamadas al notifier.
func TestRun_SinCandidatas_NoEnvia(t *testing.T) {
	u := usuario("u1", "u1@test.com")
	users := &fakeUserRepo{users: []*entity.User{u}}
	meds := &fakeMedRepo{byUser: map[string][]*entity.Medicine{
		"u1": {
			medicina("m1", "u1", "Vencida ayer", diasDespues(-1)),
			medicina("m2", "u1", "Muy lejana", diasDespues(8)),
		},
	}}
	notifier := &fakeNotifier{}

	report, err := testReconciler(users, meds, notifier).Run(context.Background(), hoy)
	require.NoError(t, err)
	assert.Equal(t, 0, report.EmailsSent)
	assert.Empty(t, notifier.sent, "sin candidatas el notifier no debe ser invocado")
}

// Ventanas: hoy es individual; días 1..7 van en un único consolidado; día 8 queda fuera.
func TestRun_VentanasYConsolidado(t *testing.T) {
	u := usuario("u1", "u1@test.com")
	users := &fakeUserRepo{users: []*entity.User{u}}
	meds := &fakeMedRepo{byUser: map[string][]*entity.Medicine{
		"u1": {
			medicina("m1", "u1", "Amoxicilina", hoy),
			medicina("m2", "u1", "Loratadina", diasDespues(3)),
			medicina("m3", "u1", "Omeprazol", diasDespues(7)),
			medicina("m4", "u1", "Aspirina", diasDespues(8)),
		},
	}}
	notifier := &fakeNotifier{}

	report, err := testReconciler(users, meds, notifier).Run(context.Background(), hoy)
	require.NoError(t, err)

	assert.Equal(t, 2, report.EmailsSent, "un individual + un consolidado")
	assert.Equal(t, 3, report.ItemsMarked, "m4 está fuera del horizonte y no se marca")

	sent := notifier.sentTo("u1@test.com")
	require.Len(t, sent, 2)

	var consolidado *sentEmail
	for i := range sent {
		if strings.Contains(sent[i].body, "Expiring Soon") {
			consolidado = &sent[i]
		}
	}
	require.NotNil(t, consolidado, "debe existir un correo consolidado")
	assert.Contains(t, consolidado.body, "Loratadina")
	assert.Contains(t, consolidado.body, "Omeprazol")
	assert.NotContains(t, consolidado.body, "Amoxicilina", "la que vence hoy va en su propio correo")
	assert.NotContains(t, consolidado.body, "Aspirina", "fuera del horizonte de 7 días")
}

// Falla de envío: se cuenta y NO se marca (mejor repetir mañana que perder la alerta).
func TestRun_FallaEnvio_NoMarca(t *testing.T) {
	u := usuario("u1", "u1@test.com")
	m := medicina("m1", "u1", "Ibuprofeno", hoy)
	users := &fakeUserRepo{users: []*entity.User{u}}
	meds := &fakeMedRepo{byUser: map[string][]*entity.Medicine{"u1": {m}}}
	notifier := &fakeNotifier{failTo: map[string]bool{"u1@test.com": true}}

	report, err := testReconciler(users, meds, notifier).Run(context.Background(), hoy)
	require.NoError(t, err, "fallas de envío no abortan la corrida")

	assert.Equal(t, 1, report.SendFailures)
	assert.Equal(t, 0, report.EmailsSent)
	assert.Equal(t, 0, report.ItemsMarked)
	assert.Nil(t, m.LastAlertSent, "sin envío exitoso no hay marca")
}

// Falla de marcado: el correo ya salió y se cuenta; la falla queda visible en el reporte.
func TestRun_FallaMarcado_CorreoContado(t *testing.T) {
	u := usuario("u1", "u1@test.com")
	users := &fakeUserRepo{users: []*entity.User{u}}
	meds := &fakeMedRepo{
		byUser:  map[string][]*entity.Medicine{"u1": {medicina("m1", "u1", "Ibuprofeno", hoy)}},
		markErr: errors.New("db caída"),
	}
	notifier := &fakeNotifier{}

	report, err := testReconciler(users, meds, notifier).Run(context.Background(), hoy)
	require.NoError(t, err)

	assert.Equal(t, 1, report.EmailsSent)
	assert.Equal(t, 1, report.MarkFailures)
	assert.Equal(t, 0, report.ItemsMarked)
}

// La falla de un usuario no contagia a los demás.
func TestRun_FallaDeUnUsuario_NoAfectaOtros(t *testing.T) {
	ua := usuario("ua", "ua@test.com")
	ub := usuario("ub", "ub@test.com")
	users := &fakeUserRepo{users: []*entity.User{ua, ub}}
	meds := &fakeMedRepo{byUser: map[string][]*entity.Medicine{
		"ua": {medicina("ma", "ua", "MedA", hoy)},
		"ub": {medicina("mb", "ub", "MedB", hoy)},
	}}
	notifier := &fakeNotifier{failTo: map[string]bool{"ua@test.com": true}}

	report, err := testReconciler(users, meds, notifier).Run(context.Background(), hoy)
	require.NoError(t, err)

	assert.Equal(t, 2, report.UsersProcessed)
	assert.Equal(t, 1, report.SendFailures)
	assert.Equal(t, 1, report.EmailsSent)
	require.Len(t, notifier.sentTo("ub@test.com"), 1, "el usuario sano recibe su alerta")
}

// Falla de lectura del inventario de un usuario: la corrida aborta con error.
func TestRun_FallaLectura_AbortaCorrida(t *testing.T) {
	ua := usuario("ua", "ua@test.com")
	users := &fakeUserRepo{users: []*entity.User{ua}}
	meds := &fakeMedRepo{
		byUser:  map[string][]*entity.Medicine{},
		listErr: map[string]error{"ua": errors.New("timeout de lectura")},
	}
	notifier := &fakeNotifier{}

	report, err := testReconciler(users, meds, notifier).Run(context.Background(), hoy)
	require.Error(t, err)
	require.NotNil(t, report, "el reporte parcial se devuelve igual")
	assert.Empty(t, notifier.sent)
}

// Falla al listar usuarios: error inmediato, nada se procesa.
func TestRun_FallaListarUsuarios_ErrorInmediato(t *testing.T) {
	users := &fakeUserRepo{listErr: errors.New("db caída")}
	meds := &fakeMedRepo{byUser: map[string][]*entity.Medicine{}}
	notifier := &fakeNotifier{}

	report, err := testReconciler(users, meds, notifier).Run(context.Background(), hoy)
	require.Error(t, err)
	assert.Nil(t, report)
	assert.Empty(t, notifier.sent)
}

// Medicina ya alertada hoy (marca preexistente): se filtra antes de enviar.
func TestRun_YaAlertadaHoy_Filtrada(t *testing.T) {
	u := usuario("u1", "u1@test.com")
	m := medicina("m1", "u1", "Ibuprofeno", hoy)
	marca := hoy
	m.LastAlertSent = &marca
	users := &fakeUserRepo{users: []*entity.User{u}}
	meds := &fakeMedRepo{byUser: map[string][]*entity.Medicine{"u1": {m}}}
	notifier := &fakeNotifier{}

	report, err := testReconciler(users, meds, notifier).Run(context.Background(), hoy)
	require.NoError(t, err)
	assert.Equal(t, 0, report.EmailsSent)
	assert.Empty(t, notifier.sent)
}

// asOf con hora del día: Run trunca a medianoche y el resultado es el mismo.
func TestRun_AsOfConHora_TruncaAMedianoche(t *testing.T) {
	u := usuario("u1", "u1@test.com")
	users := &fakeUserRepo{users: []*entity.User{u}}
	meds := &fakeMedRepo{byUser: map[string][]*entity.Medicine{
		"u1": {medicina("m1", "u1", "Ibuprofeno", hoy)},
	}}
	notifier := &fakeNotifier{}

	mediaManana := hoy.Add(10*time.Hour + 30*time.Minute)
	report, err := testReconciler(users, meds, notifier).Run(context.Background(), mediaManana)
	require.NoError(t, err)

	assert.Equal(t, hoy, report.AsOf)
	assert.Equal(t, 1, report.EmailsSent)
}

// Muchos usuarios con el pool de workers: todos procesados exactamente una vez.
func TestRun_MuchosUsuarios_TodosProcesados(t *testing.T) {
	var list []*entity.User
	byUser := map[string][]*entity.Medicine{}
	ids := []string{"u1", "u2", "u3", "u4", "u5", "u6", "u7", "u8"}
	for _, id := range ids {
		list = append(list, usuario(id, id+"@test.com"))
		byUser[id] = []*entity.Medicine{medicina("m-"+id, id, "Med "+id, hoy)}
	}
	users := &fakeUserRepo{users: list}
	meds := &fakeMedRepo{byUser: byUser}
	notifier := &fakeNotifier{}

	report, err := testReconciler(users, meds, notifier).Run(context.Background(), hoy)
	require.NoError(t, err)

	assert.Equal(t, len(ids), report.UsersProcessed)
	assert.Equal(t, len(ids), report.EmailsSent)
	for _, id := range ids {
		assert.Len(t, notifier.sentTo(id+"@test.com"), 1, "cada usuario recibe exactamente un correo")
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests de las funciones puras
// ──────────────────────────────────────────────────────────────────────────────

func TestMidnight(t *testing.T) {
	loc, err := time.LoadLocation("America/Bogota")
	require.NoError(t, err)
	ts := time.Date(2026, time.March, 10, 23, 59, 59, 0, loc)

	got := Midnight(ts)
	assert.Equal(t, time.Date(2026, time.March, 10, 0, 0, 0, 0, loc), got)
	assert.Equal(t, loc, got.Location(), "la zona horaria se conserva")
}

func TestPartition_ClasesDisjuntas(t *testing.T) {
	meds := []*entity.Medicine{
		medicina("hoy", "u", "Hoy", hoy),
		medicina("d1", "u", "Mañana", diasDespues(1)),
		medicina("d7", "u", "Límite", diasDespues(7)),
		medicina("d8", "u", "Fuera", diasDespues(8)),
		medicina("ayer", "u", "Pasada", diasDespues(-1)),
	}

	expired, soon := partition(meds, hoy)

	require.Len(t, expired, 1)
	assert.Equal(t, "hoy", expired[0].ID)
	require.Len(t, soon, 2)
	assert.Equal(t, "d1", soon[0].ID)
	assert.Equal(t, "d7", soon[1].ID)
}

func TestAlertedOn_ComparaPorDiaCalendario(t *testing.T) {
	m := medicina("m", "u", "Med", hoy)
	marca := hoy.Add(14 * time.Hour) // misma fecha, otra hora
	m.LastAlertSent = &marca

	assert.True(t, m.AlertedOn(hoy))
	assert.False(t, m.AlertedOn(diasDespues(1)))
}
