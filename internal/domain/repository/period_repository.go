package repository

import (
	"context"

	"github.com/janonimox/actas-api/internal/domain/entity"
)

// PeriodRepository define el puerto de persistencia del registro de períodos remunerativos.
// Create devuelve domain.ErrDuplicatePeriod si (Year, Month) ya existe.
// GetActive devuelve nil, nil si no hay período activo y domain.ErrMultipleActivePeriods si hay más de uno.
type PeriodRepository interface {
	Create(ctx context.Context, p *entity.Period) error
	GetByID(ctx context.Context, id string) (*entity.Period, error)
	GetActive(ctx context.Context) (*entity.Period, error)
	List(ctx context.Context) ([]*entity.Period, error)
	UpdateStatus(ctx context.Context, id, status string) error
	DeactivateAll(ctx context.Context) error
	SetActive(ctx context.Context, id string) error
}
