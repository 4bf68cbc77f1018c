// Package periodo decide en qué período remunerativo se archivan las actas nuevas.
// Es lógica pura: no hace I/O ni persiste la proyección del mes siguiente.
package periodo

import (
	"time"

	"github.com/janonimox/actas-api/internal/domain"
	"github.com/janonimox/actas-api/internal/domain/entity"
)

// Resolution resultado de Resolve.
type Resolution struct {
	Period        entity.Period
	RolledForward bool // true si el acta pasa al mes siguiente
}

// Resolve devuelve el período al que se asignan las actas creadas en asOf.
//
//   - active == nil               → domain.ErrNoActivePeriod
//   - active cerrado o asOf > corte → proyección del mes siguiente (RolledForward = true)
//   - en otro caso                → el período activo sin cambios
//
// La proyección hereda la fecha de corte del período de origen; la fecha real la
// define un superusuario al crear ese período.
func Resolve(asOf time.Time, active *entity.Period) (Resolution, error) {
	if active == nil {
		return Resolution{}, domain.ErrNoActivePeriod
	}
	if active.IsClosed() || AfterDay(asOf, active.Cutoff) {
		return Resolution{Period: Project(*active), RolledForward: true}, nil
	}
	return Resolution{Period: *active, RolledForward: false}, nil
}

// Project construye el período del mes siguiente a src sin persistirlo.
func Project(src entity.Period) entity.Period {
	year, month := NextMonth(src.Year, src.Month)
	return entity.Period{
		Year:       year,
		Month:      month,
		WindowOpen: time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC),
		Cutoff:     src.Cutoff,
		Active:     false,
		Status:     entity.PeriodStatusOpen,
		Projected:  true,
	}
}

// NextMonth devuelve el mes calendario siguiente (diciembre → enero del año siguiente).
func NextMonth(year, month int) (int, int) {
	if month >= 12 {
		return year + 1, 1
	}
	return year, month + 1
}

// AfterDay compara por día calendario: true si el día de a es posterior al día de b.
// Cada fecha se evalúa en su propia zona horaria.
func AfterDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	if ay != by {
		return ay > by
	}
	if am != bm {
		return am > bm
	}
	return ad > bd
}

// DateOnly trunca t a medianoche UTC conservando su día calendario local.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
