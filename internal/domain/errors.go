package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound              = errors.New("recurso no encontrado")
	ErrUserNotFound          = errors.New("usuario no encontrado")
	ErrUsernameAlreadyExists = errors.New("el nombre de usuario ya está registrado")
	ErrInvalidInput          = errors.New("entrada inválida")
	ErrUnauthorized          = errors.New("no autorizado")
	ErrForbidden             = errors.New("acceso denegado")
	ErrConflict              = errors.New("conflicto con el estado actual")

	// Períodos remunerativos
	ErrNoActivePeriod        = errors.New("no hay un período remunerativo activo configurado")
	ErrMultipleActivePeriods = errors.New("configuración inválida: existe más de un período activo")
	ErrDuplicatePeriod       = errors.New("ya existe un período para ese año y mes")
	ErrInvalidStatus         = errors.New("estado de período inválido")
	ErrPeriodNotFound        = errors.New("período no encontrado")
	// ErrConcurrentActivation otra transacción activó un período entre la desactivación y esta escritura.
	ErrConcurrentActivation = fmt.Errorf("%w: otro período fue activado al mismo tiempo; reintente la operación", ErrConflict)

	// Actas
	ErrActaNotFound = errors.New("acta no encontrada")
)
