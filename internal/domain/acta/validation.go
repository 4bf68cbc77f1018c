// Package acta contiene las reglas de completitud de un acta según su tipo de contrato
// y su sistema de salud. Cada variante declara qué campos acompañantes exige o prohíbe.
package acta

import (
	"errors"
	"fmt"
	"strings"

	"github.com/janonimox/actas-api/internal/domain"
	"github.com/janonimox/actas-api/internal/domain/entity"
	"github.com/janonimox/actas-api/pkg/rut"
)

// ErrInvalidActa agrupa errores de validación de un acta.
var ErrInvalidActa = fmt.Errorf("%w: acta incompleta o inconsistente", domain.ErrInvalidInput)

// ContractRules campos acompañantes de un tipo de contrato.
type ContractRules struct {
	RequiresReplacement bool // RUT y nombre del titular reemplazado
	RequiresConvenio    bool // convenio y responsable
}

// RulesFor devuelve las reglas del tipo de contrato o error si no pertenece a la lista cerrada.
func RulesFor(t entity.ContractType) (ContractRules, error) {
	switch t {
	case entity.ContractPlazoFijo:
		return ContractRules{}, nil
	case entity.ContractPlazoFijoConvenio:
		return ContractRules{RequiresConvenio: true}, nil
	case entity.ContractReemplazo:
		return ContractRules{RequiresReplacement: true}, nil
	case entity.ContractReemplazoConvenio:
		return ContractRules{RequiresReplacement: true, RequiresConvenio: true}, nil
	default:
		return ContractRules{}, fmt.Errorf("tipo de contrato desconocido %q", t)
	}
}

// RequiresIsaprePlan indica si el sistema de salud exige nombre de plan.
func RequiresIsaprePlan(h entity.HealthScheme) (bool, error) {
	switch h {
	case entity.HealthFonasa:
		return false, nil
	case entity.HealthIsapre:
		return true, nil
	default:
		return false, fmt.Errorf("sistema de salud desconocido %q", h)
	}
}

// Validate revisa campos obligatorios, campos condicionales y coherencia de fechas.
// Devuelve todos los problemas juntos (errors.Join) envueltos en ErrInvalidActa.
func Validate(a *entity.Acta) error {
	if a == nil {
		return fmt.Errorf("%w: acta nula", ErrInvalidActa)
	}
	var errs []error

	required := map[string]string{
		"correlativo": a.Correlativo,
		"nombres":     a.FirstNames,
		"apellidos":   a.LastNames,
		"rut":         a.RUT,
		"cargo":       a.Position,
		"jornada":     a.Workday,
	}
	for _, field := range []string{"correlativo", "nombres", "apellidos", "rut", "cargo", "jornada"} {
		if blank(required[field]) {
			errs = append(errs, fmt.Errorf("%s es obligatorio", field))
		}
	}
	if !blank(a.RUT) {
		if err := rut.Validate(a.RUT); err != nil {
			errs = append(errs, err)
		}
	}

	rules, err := RulesFor(a.ContractType)
	if err != nil {
		errs = append(errs, err)
	} else {
		errs = append(errs, checkReplacement(a, rules.RequiresReplacement)...)
		errs = append(errs, checkConvenio(a, rules.RequiresConvenio)...)
	}

	needsPlan, err := RequiresIsaprePlan(a.HealthScheme)
	switch {
	case err != nil:
		errs = append(errs, err)
	case needsPlan && blank(a.IsaprePlan):
		errs = append(errs, errors.New("plan isapre es obligatorio para ISAPRE"))
	case !needsPlan && !blank(a.IsaprePlan):
		errs = append(errs, errors.New("plan isapre solo aplica a ISAPRE"))
	}

	if !a.StartDate.IsZero() && !a.EndDate.IsZero() && a.EndDate.Before(a.StartDate) {
		errs = append(errs, errors.New("fecha de término anterior a la fecha de inicio"))
	}

	if len(errs) > 0 {
		return errors.Join(append([]error{ErrInvalidActa}, errs...)...)
	}
	return nil
}

func checkReplacement(a *entity.Acta, required bool) []error {
	if !required {
		if !blank(a.ReplacedRUT) || !blank(a.ReplacedName) {
			return []error{fmt.Errorf("titular reemplazado no aplica a %q", a.ContractType)}
		}
		return nil
	}
	var errs []error
	if blank(a.ReplacedName) {
		errs = append(errs, errors.New("nombre del titular reemplazado es obligatorio"))
	}
	if blank(a.ReplacedRUT) {
		errs = append(errs, errors.New("rut del titular reemplazado es obligatorio"))
	} else if err := rut.Validate(a.ReplacedRUT); err != nil {
		errs = append(errs, fmt.Errorf("titular reemplazado: %w", err))
	}
	return errs
}

func checkConvenio(a *entity.Acta, required bool) []error {
	if !required {
		if !blank(a.Convenio) || !blank(a.Responsible) {
			return []error{fmt.Errorf("convenio y responsable no aplican a %q", a.ContractType)}
		}
		return nil
	}
	var errs []error
	if blank(a.Convenio) {
		errs = append(errs, errors.New("convenio es obligatorio"))
	}
	if blank(a.Responsible) {
		errs = append(errs, errors.New("responsable es obligatorio"))
	}
	return errs
}

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}
