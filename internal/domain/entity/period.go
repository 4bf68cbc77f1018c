package entity

import (
	"fmt"
	"time"

	"github.com/janonimox/actas-api/pkg/catalogo"
)

// Estados de un período remunerativo (coinciden con el CHECK ck_periodo_estado).
const (
	PeriodStatusOpen   = "abierto"
	PeriodStatusClosed = "cerrado"
)

// Period representa la ventana administrativa de un mes remunerativo.
// Solo un período puede estar activo a la vez; (Year, Month) es único.
type Period struct {
	ID         string
	Year       int
	Month      int       // 1..12
	WindowOpen time.Time // inicio de la ventana de ingreso (informativo)
	Cutoff     time.Time // último día en que se ingresan actas a este mes
	Active     bool
	Status     string // abierto | cerrado
	CreatedAt  time.Time
	UpdatedAt  time.Time

	// Projected es true cuando el valor fue calculado por el resolver y no existe en la base.
	Projected bool
}

// ValidPeriodStatus informa si status es abierto o cerrado.
func ValidPeriodStatus(status string) bool {
	return status == PeriodStatusOpen || status == PeriodStatusClosed
}

// IsClosed atajo para Status == cerrado.
func (p Period) IsClosed() bool {
	return p.Status == PeriodStatusClosed
}

// Label devuelve la etiqueta legible, p. ej. "Julio 2025".
func (p Period) Label() string {
	name := catalogo.NombreMes(p.Month)
	if name == "" {
		return fmt.Sprintf("%02d-%d", p.Month, p.Year)
	}
	return fmt.Sprintf("%s %d", name, p.Year)
}
