package periodo

import (
	"context"

	"github.com/janonimox/actas-api/internal/domain/repository"
)

// TxRunner ejecuta fn dentro de una transacción con el repositorio de períodos atado a ella.
// Cada mutación del registro (crear, cambiar estado, activar) es una sola transacción.
type TxRunner interface {
	RunPeriods(ctx context.Context, fn func(periods repository.PeriodRepository) error) error
}
