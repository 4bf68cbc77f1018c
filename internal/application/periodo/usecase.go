package periodo

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/janonimox/actas-api/internal/application/dto"
	"github.com/janonimox/actas-api/internal/domain"
	"github.com/janonimox/actas-api/internal/domain/entity"
	domperiodo "github.com/janonimox/actas-api/internal/domain/periodo"
	"github.com/janonimox/actas-api/internal/domain/repository"
)

// CreateInput datos ya validados y tipados para crear un período.
type CreateInput struct {
	Year       int
	Month      int
	WindowOpen time.Time
	Cutoff     time.Time
}

// PeriodUseCase registro de períodos remunerativos (solo superusuario) y resolución del período vigente.
type PeriodUseCase struct {
	repo     repository.PeriodRepository
	txRunner TxRunner
	now      func() time.Time
}

// NewPeriodUseCase construye el caso de uso. now entrega la fecha de "hoy" en la zona horaria de la red.
func NewPeriodUseCase(repo repository.PeriodRepository, txRunner TxRunner, now func() time.Time) *PeriodUseCase {
	if now == nil {
		now = time.Now
	}
	return &PeriodUseCase{repo: repo, txRunner: txRunner, now: now}
}

// Create crea el período (Year, Month) activo y abierto, y desactiva el que estaba activo.
// Ambas cosas ocurren en la misma transacción; si (Year, Month) ya existe devuelve ErrDuplicatePeriod
// y el período activo anterior queda intacto.
func (uc *PeriodUseCase) Create(ctx context.Context, in CreateInput) (*dto.PeriodResponse, error) {
	if in.Year < 2000 || in.Year > 2100 || in.Month < 1 || in.Month > 12 {
		return nil, fmt.Errorf("%w: año o mes fuera de rango", domain.ErrInvalidInput)
	}
	if in.WindowOpen.IsZero() || in.Cutoff.IsZero() {
		return nil, fmt.Errorf("%w: fechas de inicio y corte son obligatorias", domain.ErrInvalidInput)
	}
	if domperiodo.AfterDay(in.WindowOpen, in.Cutoff) {
		return nil, fmt.Errorf("%w: la fecha de inicio no puede ser posterior a la fecha de corte", domain.ErrInvalidInput)
	}

	now := time.Now()
	p := &entity.Period{
		ID:         uuid.New().String(),
		Year:       in.Year,
		Month:      in.Month,
		WindowOpen: domperiodo.DateOnly(in.WindowOpen),
		Cutoff:     domperiodo.DateOnly(in.Cutoff),
		Active:     true,
		Status:     entity.PeriodStatusOpen,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	err := uc.txRunner.RunPeriods(ctx, func(periods repository.PeriodRepository) error {
		if err := periods.DeactivateAll(ctx); err != nil {
			return err
		}
		return periods.Create(ctx, p)
	})
	if err != nil {
		return nil, err
	}
	return ToPeriodResponse(p), nil
}

// SetStatus abre o cierra un período. Repetir el estado actual no es error.
func (uc *PeriodUseCase) SetStatus(ctx context.Context, id, status string) (*dto.PeriodResponse, error) {
	if !entity.ValidPeriodStatus(status) {
		return nil, fmt.Errorf("%w: %q (se espera abierto o cerrado)", domain.ErrInvalidStatus, status)
	}
	var out *entity.Period
	err := uc.txRunner.RunPeriods(ctx, func(periods repository.PeriodRepository) error {
		p, err := periods.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if p == nil {
			return domain.ErrPeriodNotFound
		}
		if p.Status != status {
			if err := periods.UpdateStatus(ctx, id, status); err != nil {
				return err
			}
			p.Status = status
		}
		out = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ToPeriodResponse(out), nil
}

// Activate deja id como el único período activo.
func (uc *PeriodUseCase) Activate(ctx context.Context, id string) (*dto.PeriodResponse, error) {
	var out *entity.Period
	err := uc.txRunner.RunPeriods(ctx, func(periods repository.PeriodRepository) error {
		p, err := periods.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if p == nil {
			return domain.ErrPeriodNotFound
		}
		if p.Active {
			out = p
			return nil
		}
		if err := periods.DeactivateAll(ctx); err != nil {
			return err
		}
		if err := periods.SetActive(ctx, id); err != nil {
			return err
		}
		p.Active = true
		out = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ToPeriodResponse(out), nil
}

// List devuelve todos los períodos, el más reciente primero.
func (uc *PeriodUseCase) List(ctx context.Context) (*dto.PeriodListResponse, error) {
	list, err := uc.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	items := make([]dto.PeriodResponse, 0, len(list))
	for _, p := range list {
		items = append(items, *ToPeriodResponse(p))
	}
	return &dto.PeriodListResponse{Items: items}, nil
}

// GetActive devuelve el período activo o nil si no hay ninguno.
func (uc *PeriodUseCase) GetActive(ctx context.Context) (*dto.PeriodResponse, error) {
	p, err := uc.repo.GetActive(ctx)
	if err != nil {
		return nil, err
	}
	return ToPeriodResponse(p), nil
}

// Current resuelve el período en que se archivarían las actas creadas hoy.
func (uc *PeriodUseCase) Current(ctx context.Context) (*dto.ResolvedPeriodResponse, error) {
	res, err := Resolve(ctx, uc.repo, uc.now())
	if err != nil {
		return nil, err
	}
	return &dto.ResolvedPeriodResponse{
		Period:        *ToPeriodResponse(&res.Period),
		RolledForward: res.RolledForward,
		Notice:        RolloverNotice(res),
	}, nil
}

// Resolve lee el período activo desde periods y aplica el resolver para asOf.
// Con periods atado a una transacción, la lectura y el uso posterior ven el mismo estado.
func Resolve(ctx context.Context, periods repository.PeriodRepository, asOf time.Time) (domperiodo.Resolution, error) {
	active, err := periods.GetActive(ctx)
	if err != nil {
		return domperiodo.Resolution{}, err
	}
	return domperiodo.Resolve(asOf, active)
}

// RolloverNotice aviso para el usuario cuando el acta se archiva en el mes siguiente.
func RolloverNotice(res domperiodo.Resolution) string {
	if !res.RolledForward {
		return ""
	}
	return fmt.Sprintf("El período vigente está cerrado o superó su fecha de corte. El acta se registrará en %s.", res.Period.Label())
}

// ToPeriodResponse mapea la entidad a DTO.
func ToPeriodResponse(p *entity.Period) *dto.PeriodResponse {
	if p == nil {
		return nil
	}
	out := &dto.PeriodResponse{
		ID:         p.ID,
		Year:       p.Year,
		Month:      p.Month,
		Label:      p.Label(),
		WindowOpen: p.WindowOpen.Format(dto.DateLayout),
		Cutoff:     p.Cutoff.Format(dto.DateLayout),
		Active:     p.Active,
		Status:     p.Status,
		Projected:  p.Projected,
	}
	if !p.CreatedAt.IsZero() {
		created := p.CreatedAt
		out.CreatedAt = &created
	}
	return out
}
