package http

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/go-playground/validator/v10"

	"github.com/janonimox/actas-api/internal/application/dto"
	"github.com/janonimox/actas-api/internal/domain"
	"github.com/janonimox/actas-api/internal/domain/entity"
	"github.com/janonimox/actas-api/pkg/logger"
)

// Acciones sugeridas al cliente cuando no hay período activo.
const (
	AccionCrearPeriodo = "crear_periodo"
	AccionSoloLectura  = "solo_lectura"
)

// respondError traduce errores de dominio a status + dto.ErrorResponse.
// Lo no reconocido es 500 y se registra con la ruta y el usuario.
func respondError(c *fiber.Ctx, log *logger.Logger, err error) error {
	status, body := mapError(err)
	if status == fiber.StatusNoContent {
		return c.SendStatus(status)
	}
	if body.Code == "NO_ACTIVE_PERIOD" {
		body.Accion = AccionSoloLectura
		if GetRole(c) == entity.RoleSuperusuario {
			body.Accion = AccionCrearPeriodo
		}
	}
	if status >= fiber.StatusInternalServerError && log != nil {
		log.Error().Err(err).
			Str("path", c.Path()).
			Str("method", c.Method()).
			Str("user_id", GetUserID(c)).
			Msg("error no controlado")
	}
	return c.Status(status).JSON(body)
}

func mapError(err error) (int, dto.ErrorResponse) {
	switch {
	case err == nil:
		return fiber.StatusNoContent, dto.ErrorResponse{}
	case errors.Is(err, domain.ErrNoActivePeriod):
		return fiber.StatusConflict, dto.ErrorResponse{Code: "NO_ACTIVE_PERIOD", Message: "No hay un período remunerativo activo configurado"}
	case errors.Is(err, domain.ErrMultipleActivePeriods):
		return fiber.StatusInternalServerError, dto.ErrorResponse{Code: "MULTIPLE_ACTIVE_PERIODS", Message: "Configuración inválida: existe más de un período activo"}
	case errors.Is(err, domain.ErrDuplicatePeriod):
		return fiber.StatusConflict, dto.ErrorResponse{Code: "DUPLICATE_PERIOD", Message: err.Error()}
	case errors.Is(err, domain.ErrInvalidStatus):
		return fiber.StatusBadRequest, dto.ErrorResponse{Code: "INVALID_STATUS", Message: err.Error()}
	case errors.Is(err, domain.ErrForbidden):
		return fiber.StatusForbidden, dto.ErrorResponse{Code: "FORBIDDEN", Message: "no tiene acceso a este recurso"}
	case errors.Is(err, domain.ErrActaNotFound),
		errors.Is(err, domain.ErrPeriodNotFound),
		errors.Is(err, domain.ErrNotFound):
		return fiber.StatusNotFound, dto.ErrorResponse{Code: "NOT_FOUND", Message: err.Error()}
	case errors.Is(err, domain.ErrUsernameAlreadyExists):
		return fiber.StatusConflict, dto.ErrorResponse{Code: "USERNAME_EXISTS", Message: err.Error()}
	case errors.Is(err, domain.ErrInvalidInput):
		return fiber.StatusBadRequest, dto.ErrorResponse{Code: "VALIDATION", Message: validationMessage(err)}
	case errors.Is(err, domain.ErrUserNotFound), errors.Is(err, domain.ErrUnauthorized):
		return fiber.StatusUnauthorized, dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "credenciales inválidas"}
	case errors.Is(err, domain.ErrConflict):
		return fiber.StatusConflict, dto.ErrorResponse{Code: "CONFLICT", Message: err.Error()}
	default:
		return fiber.StatusInternalServerError, dto.ErrorResponse{Code: "INTERNAL", Message: "error interno"}
	}
}

// validationMessage une los mensajes de un errors.Join en una sola línea.
func validationMessage(err error) string {
	var joined interface{ Unwrap() []error }
	if errors.As(err, &joined) {
		parts := make([]string, 0)
		for _, e := range joined.Unwrap() {
			parts = append(parts, e.Error())
		}
		return strings.Join(parts, "; ")
	}
	return err.Error()
}

// badRequest respuesta para cuerpos que no se pueden parsear.
func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: msg})
}

// validationFailed respuesta 400 con el detalle por campo (nombre JSON → regla incumplida).
func validationFailed(c *fiber.Ctx, err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
	}
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[fe.Field()] = ruleMessage(fe)
	}
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
		Code:    "VALIDATION",
		Message: "hay campos con errores",
		Fields:  fields,
	})
}

func ruleMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "es obligatorio"
	case "datetime":
		return "fecha inválida (AAAA-MM-DD)"
	case "email":
		return "email inválido"
	case "max":
		return "largo máximo " + fe.Param()
	case "min":
		return "valor mínimo " + fe.Param()
	case "oneof":
		return "debe ser uno de: " + fe.Param()
	case "rut":
		return "RUT inválido"
	case "establecimiento", "afp", "nacionalidad", "estadocivil", "tipocontrato":
		return "valor fuera de la lista permitida"
	default:
		return "no cumple la regla " + fe.Tag()
	}
}
