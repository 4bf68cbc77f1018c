package acta_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/janonimox/actas-api/internal/application/acta"
	"github.com/janonimox/actas-api/internal/application/dto"
	"github.com/janonimox/actas-api/internal/domain"
	"github.com/janonimox/actas-api/internal/domain/entity"
	"github.com/janonimox/actas-api/internal/domain/repository"
	"github.com/janonimox/actas-api/internal/infrastructure/memory"
)

type fakeStorage struct {
	saved   []byte
	removed []string
	err     error
}

func (f *fakeStorage) Save(_ context.Context, filename string, _ int64, r io.Reader) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	f.saved = b
	return "firmas/" + filename, nil
}

func (f *fakeStorage) Remove(_ context.Context, relPath string) error {
	f.removed = append(f.removed, relPath)
	return nil
}

type fakePDF struct{}

func (fakePDF) GenerateActaPDF(_ context.Context, a *entity.Acta) ([]byte, error) {
	return []byte("%PDF-" + a.ID), nil
}

var (
	admin = acta.Actor{UserID: "u-admin", Cesfam: "CESFAM Tongoy", Role: entity.RoleAdministrativo}
	otro  = acta.Actor{UserID: "u-otro", Cesfam: "CESFAM San Juan", Role: entity.RoleAdministrativo}
	super = acta.Actor{UserID: "u-super", Cesfam: "Departamento de Salud Coquimbo", Role: entity.RoleSuperusuario}
)

func day(y, m, d int) time.Time {
	return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
}

type fixture struct {
	uc      *acta.ActaUseCase
	store   *memory.Store
	storage *fakeStorage
}

func newFixture(t *testing.T, today time.Time, active *entity.Period) fixture {
	t.Helper()
	store := memory.NewStore()
	if active != nil {
		require.NoError(t, store.Periods().Create(context.Background(), active))
	}
	storage := &fakeStorage{}
	uc := acta.NewActaUseCase(store.Actas(), store, storage, fakePDF{}, func() time.Time { return today })
	return fixture{uc: uc, store: store, storage: storage}
}

func julio(corte int, estado string) *entity.Period {
	return &entity.Period{
		ID: "p-jul", Year: 2025, Month: 7,
		WindowOpen: day(2025, 7, 1), Cutoff: day(2025, 7, corte),
		Active: true, Status: estado,
	}
}

func draft() entity.Acta {
	return entity.Acta{
		Correlativo:  " 2025-014 ",
		ActaDate:     day(2025, 7, 10),
		FirstNames:   "MARÍA   JOSÉ",
		LastNames:    "rojas pizarro",
		RUT:          "12.345.678-5",
		Position:     "TENS",
		Workday:      "44 horas",
		Workplace:    "CESFAM Tongoy",
		ContractType: entity.ContractPlazoFijo,
		HealthScheme: entity.HealthFonasa,
		AFP:          "AFP Modelo",
		StartDate:    day(2025, 7, 1),
		EndDate:      day(2025, 12, 31),
	}
}

func TestCreate_AsignaPeriodoActivo(t *testing.T) {
	f := newFixture(t, day(2025, 7, 15), julio(20, entity.PeriodStatusOpen))

	out, err := f.uc.Create(context.Background(), admin, draft())
	require.NoError(t, err)
	assert.False(t, out.RolledForward)
	assert.Empty(t, out.Notice)
	assert.Equal(t, 2025, out.Acta.PeriodYear)
	assert.Equal(t, 7, out.Acta.PeriodMonth)
	assert.Equal(t, "Julio 2025", out.Acta.PeriodLabel)
	assert.Equal(t, entity.ActaStatusDraft, out.Acta.Status)
	assert.Equal(t, admin.UserID, out.Acta.UserID)
	assert.Equal(t, admin.Cesfam, out.Acta.Cesfam)

	assert.Equal(t, "María José", out.Acta.FirstNames)
	assert.Equal(t, "Rojas Pizarro", out.Acta.LastNames)
	assert.Equal(t, "12345678-5", out.Acta.RUT)
	assert.Equal(t, "2025-014", out.Acta.Correlativo)
}

func TestCreate_PasadoElCorteVaAlMesSiguiente(t *testing.T) {
	f := newFixture(t, day(2025, 7, 22), julio(20, entity.PeriodStatusOpen))

	out, err := f.uc.Create(context.Background(), admin, draft())
	require.NoError(t, err)
	assert.True(t, out.RolledForward)
	assert.Equal(t, 8, out.Acta.PeriodMonth)
	assert.Contains(t, out.Notice, "Agosto 2025")

	list, err := f.store.Periods().List(context.Background())
	require.NoError(t, err)
	assert.Len(t, list, 1, "la proyección no se persiste")
}

func TestCreate_PeriodoCerrado(t *testing.T) {
	f := newFixture(t, day(2025, 7, 2), julio(20, entity.PeriodStatusClosed))

	out, err := f.uc.Create(context.Background(), admin, draft())
	require.NoError(t, err)
	assert.True(t, out.RolledForward)
	assert.Equal(t, 8, out.Acta.PeriodMonth)
}

func TestCreate_SinPeriodoActivo(t *testing.T) {
	f := newFixture(t, day(2025, 7, 2), nil)

	_, err := f.uc.Create(context.Background(), admin, draft())
	assert.ErrorIs(t, err, domain.ErrNoActivePeriod)

	_, total, err := f.store.Actas().List(context.Background(), repository.ActaFilter{})
	require.NoError(t, err)
	assert.Zero(t, total, "no se guarda nada si no hay período")
}

func TestCreate_Invalida(t *testing.T) {
	f := newFixture(t, day(2025, 7, 2), julio(20, entity.PeriodStatusOpen))
	d := draft()
	d.ContractType = entity.ContractReemplazo

	_, err := f.uc.Create(context.Background(), admin, d)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestCreate_PeriodoNoCambiaDespues(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, day(2025, 7, 15), julio(20, entity.PeriodStatusOpen))

	out, err := f.uc.Create(ctx, admin, draft())
	require.NoError(t, err)

	// Se abre agosto y se cierra julio: el acta sigue en julio.
	require.NoError(t, f.store.Periods().DeactivateAll(ctx))
	require.NoError(t, f.store.Periods().Create(ctx, &entity.Period{
		ID: "p-ago", Year: 2025, Month: 8, WindowOpen: day(2025, 8, 1), Cutoff: day(2025, 8, 20),
		Active: true, Status: entity.PeriodStatusOpen,
	}))
	require.NoError(t, f.store.Periods().UpdateStatus(ctx, "p-jul", entity.PeriodStatusClosed))

	_, err = f.uc.RegisterMailing(ctx, admin, out.Acta.ID, day(2025, 8, 2))
	require.NoError(t, err)

	got, err := f.uc.GetByID(ctx, admin, out.Acta.ID)
	require.NoError(t, err)
	assert.Equal(t, 7, got.PeriodMonth)
	assert.Equal(t, 2025, got.PeriodYear)
}

func TestGetByID_NoEncontradoYProhibidoSonDistintos(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, day(2025, 7, 15), julio(20, entity.PeriodStatusOpen))
	out, err := f.uc.Create(ctx, admin, draft())
	require.NoError(t, err)

	_, err = f.uc.GetByID(ctx, otro, out.Acta.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = f.uc.GetByID(ctx, otro, "no-existe")
	assert.ErrorIs(t, err, domain.ErrActaNotFound)
	assert.False(t, errors.Is(err, domain.ErrForbidden))

	got, err := f.uc.GetByID(ctx, super, out.Acta.ID)
	require.NoError(t, err)
	assert.Equal(t, out.Acta.ID, got.ID)
}

func TestList_AlcancePorRol(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, day(2025, 7, 15), julio(20, entity.PeriodStatusOpen))
	_, err := f.uc.Create(ctx, admin, draft())
	require.NoError(t, err)
	_, err = f.uc.Create(ctx, admin, draft())
	require.NoError(t, err)
	_, err = f.uc.Create(ctx, otro, draft())
	require.NoError(t, err)

	mine, err := f.uc.List(ctx, admin, dto.ActaListQuery{Cesfam: otro.Cesfam})
	require.NoError(t, err)
	assert.Equal(t, 2, mine.Page.Total, "el filtro de cesfam se ignora para administrativos")
	for _, a := range mine.Items {
		assert.Equal(t, admin.UserID, a.UserID)
	}

	all, err := f.uc.List(ctx, super, dto.ActaListQuery{})
	require.NoError(t, err)
	assert.Equal(t, 3, all.Page.Total)

	sanJuan, err := f.uc.List(ctx, super, dto.ActaListQuery{Cesfam: otro.Cesfam})
	require.NoError(t, err)
	assert.Equal(t, 1, sanJuan.Page.Total)

	paged, err := f.uc.List(ctx, super, dto.ActaListQuery{PageRequest: dto.PageRequest{Limit: 2}})
	require.NoError(t, err)
	assert.Len(t, paged.Items, 2)
	assert.Equal(t, 3, paged.Page.Total)
}

func TestRegisterMailing(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, day(2025, 7, 15), julio(20, entity.PeriodStatusOpen))
	out, err := f.uc.Create(ctx, admin, draft())
	require.NoError(t, err)

	_, err = f.uc.RegisterMailing(ctx, otro, out.Acta.ID, day(2025, 7, 16))
	assert.ErrorIs(t, err, domain.ErrForbidden)

	got, err := f.uc.RegisterMailing(ctx, admin, out.Acta.ID, time.Date(2025, 7, 16, 15, 30, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, entity.ActaStatusSent, got.Status)
	assert.Equal(t, "2025-07-16", got.MailedAt)
	require.NotNil(t, got.MailedBy)
	assert.Equal(t, admin.UserID, *got.MailedBy)

	_, err = f.uc.RegisterMailing(ctx, admin, out.Acta.ID, time.Time{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestClose(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, day(2025, 7, 15), julio(20, entity.PeriodStatusOpen))
	out, err := f.uc.Create(ctx, admin, draft())
	require.NoError(t, err)

	_, err = f.uc.Close(ctx, admin, out.Acta.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = f.uc.Close(ctx, super, "no-existe")
	assert.ErrorIs(t, err, domain.ErrActaNotFound)

	closed, err := f.uc.Close(ctx, super, out.Acta.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.ActaStatusClosed, closed.Status)

	_, err = f.uc.Close(ctx, super, out.Acta.ID)
	assert.NoError(t, err, "cerrar dos veces no es error")

	_, err = f.uc.RegisterMailing(ctx, admin, out.Acta.ID, day(2025, 7, 20))
	assert.ErrorIs(t, err, domain.ErrConflict)
	_, err = f.uc.UpdateCorrelativo(ctx, admin, out.Acta.ID, "2025-099")
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestUpdateCorrelativo(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, day(2025, 7, 15), julio(20, entity.PeriodStatusOpen))
	out, err := f.uc.Create(ctx, admin, draft())
	require.NoError(t, err)

	_, err = f.uc.UpdateCorrelativo(ctx, admin, out.Acta.ID, "   ")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	got, err := f.uc.UpdateCorrelativo(ctx, admin, out.Acta.ID, "2025-020")
	require.NoError(t, err)
	assert.Equal(t, "2025-020", got.Correlativo)
}

func TestAttachSignature(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, day(2025, 7, 15), julio(20, entity.PeriodStatusOpen))
	out, err := f.uc.Create(ctx, admin, draft())
	require.NoError(t, err)

	got, err := f.uc.AttachSignature(ctx, admin, out.Acta.ID, "firma.png", 4, bytes.NewReader([]byte("\x89PNG")))
	require.NoError(t, err)
	assert.Equal(t, "firmas/firma.png", got.SignaturePath)
	assert.Equal(t, []byte("\x89PNG"), f.storage.saved)

	f.storage.err = domain.ErrInvalidInput
	_, err = f.uc.AttachSignature(ctx, admin, out.Acta.ID, "firma.gif", 4, bytes.NewReader(nil))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

// closingTx cierra el acta indicada justo antes de ejecutar la transacción,
// como lo haría un superusuario concurrente.
type closingTx struct {
	*memory.Store
	id string
}

func (c closingTx) RunActas(ctx context.Context, fn func(repository.PeriodRepository, repository.ActaRepository) error) error {
	if err := c.Actas().UpdateStatus(ctx, c.id, entity.ActaStatusClosed); err != nil {
		return err
	}
	return c.Store.RunActas(ctx, fn)
}

func TestEscrituras_ActaCerradaDuranteLaOperacion(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, day(2025, 7, 15), julio(20, entity.PeriodStatusOpen))
	out, err := f.uc.Create(ctx, admin, draft())
	require.NoError(t, err)
	id := out.Acta.ID

	uc := acta.NewActaUseCase(f.store.Actas(), closingTx{Store: f.store, id: id}, f.storage, fakePDF{},
		func() time.Time { return day(2025, 7, 15) })

	_, err = uc.UpdateCorrelativo(ctx, admin, id, "2025-099")
	assert.ErrorIs(t, err, domain.ErrConflict)

	_, err = uc.RegisterMailing(ctx, admin, id, day(2025, 7, 16))
	assert.ErrorIs(t, err, domain.ErrConflict)

	_, err = uc.AttachSignature(ctx, admin, id, "firma.png", 4, bytes.NewReader([]byte("\x89PNG")))
	assert.ErrorIs(t, err, domain.ErrConflict)
	assert.Equal(t, []string{"firmas/firma.png"}, f.storage.removed, "la firma guardada se elimina")

	got, err := f.store.Actas().GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, entity.ActaStatusClosed, got.Status)
	assert.Equal(t, "2025-014", got.Correlativo)
	assert.Empty(t, got.SignaturePath)
	assert.Nil(t, got.MailedAt)
}

func TestAttachSignature_ActaCerradaNoGuardaArchivo(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, day(2025, 7, 15), julio(20, entity.PeriodStatusOpen))
	out, err := f.uc.Create(ctx, admin, draft())
	require.NoError(t, err)
	_, err = f.uc.Close(ctx, super, out.Acta.ID)
	require.NoError(t, err)

	_, err = f.uc.AttachSignature(ctx, admin, out.Acta.ID, "firma.png", 4, bytes.NewReader([]byte("\x89PNG")))
	assert.ErrorIs(t, err, domain.ErrConflict)
	assert.Nil(t, f.storage.saved)
	assert.Empty(t, f.storage.removed)
}

func TestDownloadPDF(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, day(2025, 7, 15), julio(20, entity.PeriodStatusOpen))
	out, err := f.uc.Create(ctx, admin, draft())
	require.NoError(t, err)

	pdf, name, err := f.uc.DownloadPDF(ctx, admin, out.Acta.ID)
	require.NoError(t, err)
	assert.Equal(t, "acta-2025-014.pdf", name)
	assert.Equal(t, []byte("%PDF-"+out.Acta.ID), pdf)

	_, _, err = f.uc.DownloadPDF(ctx, otro, out.Acta.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden)
}
