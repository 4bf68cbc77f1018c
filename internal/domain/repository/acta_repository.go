package repository

import (
	"context"
	"time"

	"github.com/janonimox/actas-api/internal/domain/entity"
)

// ActaFilter filtros de listado. Campos vacíos/cero no filtran.
type ActaFilter struct {
	UserID      string
	Cesfam      string
	PeriodYear  int
	PeriodMonth int
	Status      string
	Limit       int
	Offset      int
}

// ActaRepository define el puerto de persistencia para actas.
// No existe operación que modifique PeriodYear/PeriodMonth después de Create.
type ActaRepository interface {
	Create(ctx context.Context, a *entity.Acta) error
	GetByID(ctx context.Context, id string) (*entity.Acta, error)
	// GetForUpdate como GetByID, bloqueando la fila hasta el fin de la transacción.
	GetForUpdate(ctx context.Context, id string) (*entity.Acta, error)
	List(ctx context.Context, f ActaFilter) ([]*entity.Acta, int, error)
	RegisterMailing(ctx context.Context, id string, mailedAt time.Time, mailedBy string) error
	UpdateCorrelativo(ctx context.Context, id, correlativo string) error
	UpdateSignaturePath(ctx context.Context, id, path string) error
	UpdateStatus(ctx context.Context, id, status string) error
}
