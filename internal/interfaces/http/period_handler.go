package http

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/janonimox/actas-api/internal/application/dto"
	"github.com/janonimox/actas-api/internal/application/periodo"
	"github.com/janonimox/actas-api/pkg/logger"
)

// PeriodHandler registro de períodos remunerativos y período vigente.
type PeriodHandler struct {
	uc       *periodo.PeriodUseCase
	validate *validator.Validate
	log      *logger.Logger
}

// NewPeriodHandler construye el handler.
func NewPeriodHandler(uc *periodo.PeriodUseCase, validate *validator.Validate, log *logger.Logger) *PeriodHandler {
	return &PeriodHandler{uc: uc, validate: validate, log: log}
}

// Create godoc
// @Summary      Crear período remunerativo (queda activo y abierto)
// @Tags         periodos
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreatePeriodRequest  true  "anio, mes, fecha_inicio, fecha_corte"
// @Success      201   {object}  dto.PeriodResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/periodos [post]
func (h *PeriodHandler) Create(c *fiber.Ctx) error {
	var in dto.CreatePeriodRequest
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "cuerpo inválido")
	}
	if err := h.validate.Struct(in); err != nil {
		return validationFailed(c, err)
	}
	// El validador ya garantizó el formato de ambas fechas.
	open, _ := time.Parse(dto.DateLayout, in.WindowOpen)
	cutoff, _ := time.Parse(dto.DateLayout, in.Cutoff)

	out, err := h.uc.Create(c.Context(), periodo.CreateInput{
		Year:       in.Year,
		Month:      in.Month,
		WindowOpen: open,
		Cutoff:     cutoff,
	})
	if err != nil {
		return respondError(c, h.log, err)
	}
	h.log.Info().Str("periodo", out.Label).Str("user_id", GetUserID(c)).Msg("período creado y activado")
	return c.Status(fiber.StatusCreated).JSON(out)
}

// List godoc
// @Summary      Listar períodos (más reciente primero)
// @Tags         periodos
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.PeriodListResponse
// @Router       /api/periodos [get]
func (h *PeriodHandler) List(c *fiber.Ctx) error {
	out, err := h.uc.List(c.Context())
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(out)
}

// GetActive godoc
// @Summary      Período activo
// @Tags         periodos
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.PeriodResponse
// @Success      204
// @Router       /api/periodos/activo [get]
func (h *PeriodHandler) GetActive(c *fiber.Ctx) error {
	out, err := h.uc.GetActive(c.Context())
	if err != nil {
		return respondError(c, h.log, err)
	}
	if out == nil {
		return c.SendStatus(fiber.StatusNoContent)
	}
	return c.JSON(out)
}

// SetStatus godoc
// @Summary      Abrir o cerrar un período
// @Tags         periodos
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                      true  "ID del período"
// @Param        body  body  dto.SetPeriodStatusRequest  true  "estado: abierto | cerrado"
// @Success      200   {object}  dto.PeriodResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/periodos/{id}/estado [patch]
func (h *PeriodHandler) SetStatus(c *fiber.Ctx) error {
	var in dto.SetPeriodStatusRequest
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "cuerpo inválido")
	}
	out, err := h.uc.SetStatus(c.Context(), c.Params("id"), in.Status)
	if err != nil {
		return respondError(c, h.log, err)
	}
	h.log.Info().Str("periodo", out.Label).Str("estado", out.Status).Str("user_id", GetUserID(c)).Msg("estado de período actualizado")
	return c.JSON(out)
}

// Activate godoc
// @Summary      Dejar un período existente como el único activo
// @Tags         periodos
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del período"
// @Success      200  {object}  dto.PeriodResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/periodos/{id}/activar [post]
func (h *PeriodHandler) Activate(c *fiber.Ctx) error {
	out, err := h.uc.Activate(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(out)
}

// Current godoc
// @Summary      Período en que se registrarían las actas creadas hoy
// @Tags         periodos
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.ResolvedPeriodResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/periodos/vigente [get]
func (h *PeriodHandler) Current(c *fiber.Ctx) error {
	out, err := h.uc.Current(c.Context())
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(out)
}
