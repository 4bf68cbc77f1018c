package acta

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/janonimox/actas-api/internal/application/dto"
	"github.com/janonimox/actas-api/internal/application/periodo"
	"github.com/janonimox/actas-api/internal/domain"
	domacta "github.com/janonimox/actas-api/internal/domain/acta"
	"github.com/janonimox/actas-api/internal/domain/entity"
	domperiodo "github.com/janonimox/actas-api/internal/domain/periodo"
	"github.com/janonimox/actas-api/internal/domain/repository"
	"github.com/janonimox/actas-api/pkg/rut"
)

// Actor usuario autenticado que ejecuta la operación (viene del token).
type Actor struct {
	UserID string
	Cesfam string
	Role   string
}

// IsPrivileged superusuario: ve y gestiona actas de cualquier CESFAM.
func (a Actor) IsPrivileged() bool {
	return a.Role == entity.RoleSuperusuario
}

// CanAccess dueño del acta o superusuario.
func (a Actor) CanAccess(acta *entity.Acta) bool {
	return a.IsPrivileged() || acta.OwnedBy(a.UserID)
}

// ActaUseCase flujo de captura de actas: crear, consultar, registrar envío físico, firma, cierre.
type ActaUseCase struct {
	repo      repository.ActaRepository
	txRunner  TxRunner
	storage   SignatureStorage
	generator ActaPDFGenerator
	now       func() time.Time
}

// NewActaUseCase construye el caso de uso. now entrega "hoy" en la zona horaria de la red.
func NewActaUseCase(
	repo repository.ActaRepository,
	txRunner TxRunner,
	storage SignatureStorage,
	generator ActaPDFGenerator,
	now func() time.Time,
) *ActaUseCase {
	if now == nil {
		now = time.Now
	}
	return &ActaUseCase{
		repo:      repo,
		txRunner:  txRunner,
		storage:   storage,
		generator: generator,
		now:       now,
	}
}

// Create valida el acta, resuelve el período de hoy y la persiste en estado borrador.
// El período asignado se copia del resolver y no vuelve a modificarse.
func (uc *ActaUseCase) Create(ctx context.Context, actor Actor, draft entity.Acta) (*dto.CreateActaResponse, error) {
	if actor.UserID == "" {
		return nil, domain.ErrUnauthorized
	}
	a := draft
	normalize(&a)
	if err := domacta.Validate(&a); err != nil {
		return nil, err
	}

	a.ID = uuid.New().String()
	a.Status = entity.ActaStatusDraft
	a.UserID = actor.UserID
	a.Cesfam = actor.Cesfam
	a.SignaturePath = ""
	a.MailedAt = nil
	a.MailedBy = nil
	a.CreatedAt = time.Now()
	a.UpdatedAt = nil

	var res domperiodo.Resolution
	err := uc.txRunner.RunActas(ctx, func(periods repository.PeriodRepository, actas repository.ActaRepository) error {
		var err error
		res, err = periodo.Resolve(ctx, periods, uc.now())
		if err != nil {
			return err
		}
		a.PeriodYear = res.Period.Year
		a.PeriodMonth = res.Period.Month
		return actas.Create(ctx, &a)
	})
	if err != nil {
		return nil, err
	}
	return &dto.CreateActaResponse{
		Acta:          *ToActaResponse(&a),
		RolledForward: res.RolledForward,
		Notice:        periodo.RolloverNotice(res),
	}, nil
}

// GetByID devuelve el acta si el actor es su dueño o superusuario.
// ErrActaNotFound y ErrForbidden son siempre distinguibles.
func (uc *ActaUseCase) GetByID(ctx context.Context, actor Actor, id string) (*dto.ActaResponse, error) {
	a, err := uc.load(ctx, uc.repo, actor, id)
	if err != nil {
		return nil, err
	}
	return ToActaResponse(a), nil
}

// List administrativo: solo sus actas. Superusuario: todas, con filtro opcional por CESFAM.
func (uc *ActaUseCase) List(ctx context.Context, actor Actor, q dto.ActaListQuery) (*dto.ActaListResponse, error) {
	q.DefaultPage()
	f := repository.ActaFilter{
		PeriodYear:  q.Year,
		PeriodMonth: q.Month,
		Status:      q.Status,
		Limit:       q.Limit,
		Offset:      q.Offset,
	}
	if actor.IsPrivileged() {
		f.Cesfam = q.Cesfam
	} else {
		f.UserID = actor.UserID
	}
	list, total, err := uc.repo.List(ctx, f)
	if err != nil {
		return nil, err
	}
	items := make([]dto.ActaResponse, 0, len(list))
	for _, a := range list {
		items = append(items, *ToActaResponse(a))
	}
	return &dto.ActaListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: q.Limit, Offset: q.Offset, Total: total},
	}, nil
}

// RegisterMailing registra la fecha de envío físico y deja el acta en estado enviado.
func (uc *ActaUseCase) RegisterMailing(ctx context.Context, actor Actor, id string, date time.Time) (*dto.ActaResponse, error) {
	if date.IsZero() {
		return nil, fmt.Errorf("%w: fecha de envío obligatoria", domain.ErrInvalidInput)
	}
	day := domperiodo.DateOnly(date)
	var out *entity.Acta
	err := uc.txRunner.RunActas(ctx, func(_ repository.PeriodRepository, actas repository.ActaRepository) error {
		a, err := uc.lockOpen(ctx, actas, actor, id)
		if err != nil {
			return err
		}
		if err := actas.RegisterMailing(ctx, id, day, actor.UserID); err != nil {
			return err
		}
		by := actor.UserID
		a.MailedAt = &day
		a.MailedBy = &by
		a.Status = entity.ActaStatusSent
		out = a
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ToActaResponse(out), nil
}

// UpdateCorrelativo corrige el número correlativo (no permitido en actas cerradas).
func (uc *ActaUseCase) UpdateCorrelativo(ctx context.Context, actor Actor, id, correlativo string) (*dto.ActaResponse, error) {
	correlativo = strings.TrimSpace(correlativo)
	if correlativo == "" {
		return nil, fmt.Errorf("%w: correlativo obligatorio", domain.ErrInvalidInput)
	}
	var out *entity.Acta
	err := uc.txRunner.RunActas(ctx, func(_ repository.PeriodRepository, actas repository.ActaRepository) error {
		a, err := uc.lockOpen(ctx, actas, actor, id)
		if err != nil {
			return err
		}
		if err := actas.UpdateCorrelativo(ctx, id, correlativo); err != nil {
			return err
		}
		a.Correlativo = correlativo
		out = a
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ToActaResponse(out), nil
}

// AttachSignature guarda la imagen de firma mediante el almacenamiento y persiste solo su ruta.
// Si la ruta no se puede persistir, el archivo guardado se elimina.
func (uc *ActaUseCase) AttachSignature(ctx context.Context, actor Actor, id, filename string, size int64, r io.Reader) (*dto.ActaResponse, error) {
	a, err := uc.load(ctx, uc.repo, actor, id)
	if err != nil {
		return nil, err
	}
	if a.Status == entity.ActaStatusClosed {
		return nil, errActaClosed
	}
	path, err := uc.storage.Save(ctx, filename, size, r)
	if err != nil {
		return nil, err
	}
	var out *entity.Acta
	err = uc.txRunner.RunActas(ctx, func(_ repository.PeriodRepository, actas repository.ActaRepository) error {
		a, err := uc.lockOpen(ctx, actas, actor, id)
		if err != nil {
			return err
		}
		if err := actas.UpdateSignaturePath(ctx, id, path); err != nil {
			return err
		}
		a.SignaturePath = path
		out = a
		return nil
	})
	if err != nil {
		if rmErr := uc.storage.Remove(context.WithoutCancel(ctx), path); rmErr != nil {
			return nil, errors.Join(err, fmt.Errorf("acta: eliminar firma %s: %w", path, rmErr))
		}
		return nil, err
	}
	return ToActaResponse(out), nil
}

// Close marca el acta como cerrada. Solo superusuario; cerrar dos veces no es error.
func (uc *ActaUseCase) Close(ctx context.Context, actor Actor, id string) (*dto.ActaResponse, error) {
	var out *entity.Acta
	err := uc.txRunner.RunActas(ctx, func(_ repository.PeriodRepository, actas repository.ActaRepository) error {
		a, err := actas.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if a == nil {
			return domain.ErrActaNotFound
		}
		if !actor.IsPrivileged() {
			return domain.ErrForbidden
		}
		if a.Status != entity.ActaStatusClosed {
			if err := actas.UpdateStatus(ctx, id, entity.ActaStatusClosed); err != nil {
				return err
			}
			a.Status = entity.ActaStatusClosed
		}
		out = a
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ToActaResponse(out), nil
}

// DownloadPDF genera el PDF del acta. Devuelve bytes y nombre sugerido del archivo.
func (uc *ActaUseCase) DownloadPDF(ctx context.Context, actor Actor, id string) ([]byte, string, error) {
	a, err := uc.load(ctx, uc.repo, actor, id)
	if err != nil {
		return nil, "", err
	}
	pdf, err := uc.generator.GenerateActaPDF(ctx, a)
	if err != nil {
		return nil, "", fmt.Errorf("acta: generar pdf: %w", err)
	}
	name := "acta-" + a.ID + ".pdf"
	if a.Correlativo != "" {
		name = "acta-" + strings.ReplaceAll(a.Correlativo, "/", "-") + ".pdf"
	}
	return pdf, name, nil
}

var errActaClosed = fmt.Errorf("%w: el acta está cerrada", domain.ErrConflict)

func (uc *ActaUseCase) load(ctx context.Context, actas repository.ActaRepository, actor Actor, id string) (*entity.Acta, error) {
	a, err := actas.GetByID(ctx, id)
	return authorize(a, err, actor)
}

// lockOpen bloquea el acta dentro de la transacción y exige que no esté cerrada.
func (uc *ActaUseCase) lockOpen(ctx context.Context, actas repository.ActaRepository, actor Actor, id string) (*entity.Acta, error) {
	a, err := actas.GetForUpdate(ctx, id)
	a, err = authorize(a, err, actor)
	if err != nil {
		return nil, err
	}
	if a.Status == entity.ActaStatusClosed {
		return nil, errActaClosed
	}
	return a, nil
}

func authorize(a *entity.Acta, err error, actor Actor) (*entity.Acta, error) {
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, domain.ErrActaNotFound
	}
	if !actor.CanAccess(a) {
		return nil, domain.ErrForbidden
	}
	return a, nil
}

// normalize limpia espacios, deja nombres en formato título y RUT en forma canónica.
func normalize(a *entity.Acta) {
	title := cases.Title(language.Spanish)
	a.Correlativo = strings.TrimSpace(a.Correlativo)
	a.FirstNames = title.String(strings.Join(strings.Fields(a.FirstNames), " "))
	a.LastNames = title.String(strings.Join(strings.Fields(a.LastNames), " "))
	a.ReplacedName = title.String(strings.Join(strings.Fields(a.ReplacedName), " "))
	if n, err := rut.Normalize(a.RUT); err == nil {
		a.RUT = n
	}
	if strings.TrimSpace(a.ReplacedRUT) != "" {
		if n, err := rut.Normalize(a.ReplacedRUT); err == nil {
			a.ReplacedRUT = n
		}
	}
	a.Email = strings.ToLower(strings.TrimSpace(a.Email))
	a.Convenio = strings.TrimSpace(a.Convenio)
	a.Responsible = strings.TrimSpace(a.Responsible)
	a.IsaprePlan = strings.TrimSpace(a.IsaprePlan)
}

// ToActaResponse mapea la entidad a DTO.
func ToActaResponse(a *entity.Acta) *dto.ActaResponse {
	if a == nil {
		return nil
	}
	p := entity.Period{Year: a.PeriodYear, Month: a.PeriodMonth}
	out := &dto.ActaResponse{
		ID:                 a.ID,
		Correlativo:        a.Correlativo,
		ActaDate:           formatDate(a.ActaDate),
		FirstNames:         a.FirstNames,
		LastNames:          a.LastNames,
		RUT:                a.RUT,
		BirthDate:          formatDate(a.BirthDate),
		BirthPlace:         a.BirthPlace,
		Address:            a.Address,
		Phone:              a.Phone,
		Email:              a.Email,
		MaritalStatus:      a.MaritalStatus,
		Nationality:        a.Nationality,
		Category:           a.Category,
		ContractType:       string(a.ContractType),
		Reason:             a.Reason,
		ReplacedRUT:        a.ReplacedRUT,
		ReplacedName:       a.ReplacedName,
		Convenio:           a.Convenio,
		Responsible:        a.Responsible,
		StartDate:          formatDate(a.StartDate),
		EndDate:            formatDate(a.EndDate),
		Workplace:          a.Workplace,
		Position:           a.Position,
		Workday:            a.Workday,
		WorkSchedule:       a.WorkSchedule,
		HealthScheme:       string(a.HealthScheme),
		IsaprePlan:         a.IsaprePlan,
		AFP:                a.AFP,
		Remarks:            a.Remarks,
		SupervisorName:     a.SupervisorName,
		SupervisorPosition: a.SupervisorPosition,
		PeriodYear:         a.PeriodYear,
		PeriodMonth:        a.PeriodMonth,
		PeriodLabel:        p.Label(),
		Status:             a.Status,
		UserID:             a.UserID,
		Cesfam:             a.Cesfam,
		SignaturePath:      a.SignaturePath,
		MailedBy:           a.MailedBy,
		CreatedAt:          a.CreatedAt,
		UpdatedAt:          a.UpdatedAt,
	}
	if a.MailedAt != nil {
		out.MailedAt = a.MailedAt.Format(dto.DateLayout)
	}
	return out
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(dto.DateLayout)
}
