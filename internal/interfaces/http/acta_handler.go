package http

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/janonimox/actas-api/internal/application/acta"
	"github.com/janonimox/actas-api/internal/application/dto"
	"github.com/janonimox/actas-api/internal/domain/entity"
	"github.com/janonimox/actas-api/pkg/logger"
)

// ActaHandler captura y gestión de actas. Todas las rutas requieren token.
type ActaHandler struct {
	uc       *acta.ActaUseCase
	validate *validator.Validate
	log      *logger.Logger
}

// NewActaHandler construye el handler.
func NewActaHandler(uc *acta.ActaUseCase, validate *validator.Validate, log *logger.Logger) *ActaHandler {
	return &ActaHandler{uc: uc, validate: validate, log: log}
}

// Create godoc
// @Summary      Registrar acta (el período se asigna automáticamente)
// @Tags         actas
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateActaRequest  true  "Formulario del acta"
// @Success      201   {object}  dto.CreateActaResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse  "NO_ACTIVE_PERIOD"
// @Router       /api/actas [post]
func (h *ActaHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateActaRequest
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "cuerpo inválido")
	}
	if err := h.validate.Struct(in); err != nil {
		return validationFailed(c, err)
	}
	out, err := h.uc.Create(c.Context(), actorFrom(c), toActaDraft(in))
	if err != nil {
		return respondError(c, h.log, err)
	}
	ev := h.log.Info().Str("acta_id", out.Acta.ID).Str("periodo", out.Acta.PeriodLabel).Str("user_id", GetUserID(c))
	if out.RolledForward {
		ev = ev.Bool("periodo_adelantado", true)
	}
	ev.Msg("acta registrada")
	return c.Status(fiber.StatusCreated).JSON(out)
}

// List godoc
// @Summary      Listar actas (administrativo: propias; superusuario: todas)
// @Tags         actas
// @Security     Bearer
// @Produce      json
// @Param        cesfam  query  string  false  "Filtro CESFAM (solo superusuario)"
// @Param        anio    query  int     false  "Año del período"
// @Param        mes     query  int     false  "Mes del período"
// @Param        estado  query  string  false  "borrador | enviado | cerrado"
// @Param        limit   query  int     false  "Límite"   default(20)
// @Param        offset  query  int     false  "Offset"   default(0)
// @Success      200     {object}  dto.ActaListResponse
// @Router       /api/actas [get]
func (h *ActaHandler) List(c *fiber.Ctx) error {
	var q dto.ActaListQuery
	if err := c.QueryParser(&q); err != nil {
		return badRequest(c, "parámetros inválidos")
	}
	q.DefaultPage()
	if err := h.validate.Struct(q); err != nil {
		return validationFailed(c, err)
	}
	out, err := h.uc.List(c.Context(), actorFrom(c), q)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(out)
}

// GetByID godoc
// @Summary      Obtener acta
// @Tags         actas
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del acta"
// @Success      200  {object}  dto.ActaResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/actas/{id} [get]
func (h *ActaHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.uc.GetByID(c.Context(), actorFrom(c), c.Params("id"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(out)
}

// RegisterMailing godoc
// @Summary      Registrar envío físico del acta
// @Tags         actas
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string              true  "ID del acta"
// @Param        body  body  dto.MailingRequest  true  "fecha_envio"
// @Success      200   {object}  dto.ActaResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/actas/{id}/envio-fisico [put]
func (h *ActaHandler) RegisterMailing(c *fiber.Ctx) error {
	var in dto.MailingRequest
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "cuerpo inválido")
	}
	if err := h.validate.Struct(in); err != nil {
		return validationFailed(c, err)
	}
	date, _ := time.Parse(dto.DateLayout, in.Date)
	out, err := h.uc.RegisterMailing(c.Context(), actorFrom(c), c.Params("id"), date)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(out)
}

// UpdateCorrelativo godoc
// @Summary      Corregir número correlativo
// @Tags         actas
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                  true  "ID del acta"
// @Param        body  body  dto.CorrelativoRequest  true  "numero_correlativo"
// @Success      200   {object}  dto.ActaResponse
// @Router       /api/actas/{id}/correlativo [put]
func (h *ActaHandler) UpdateCorrelativo(c *fiber.Ctx) error {
	var in dto.CorrelativoRequest
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "cuerpo inválido")
	}
	if err := h.validate.Struct(in); err != nil {
		return validationFailed(c, err)
	}
	out, err := h.uc.UpdateCorrelativo(c.Context(), actorFrom(c), c.Params("id"), in.Correlativo)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(out)
}

// AttachSignature godoc
// @Summary      Subir firma escaneada (png, jpg, jpeg, webp)
// @Tags         actas
// @Security     Bearer
// @Accept       multipart/form-data
// @Produce      json
// @Param        id     path      string  true  "ID del acta"
// @Param        firma  formData  file    true  "Imagen de la firma"
// @Success      200    {object}  dto.ActaResponse
// @Failure      400    {object}  dto.ErrorResponse
// @Router       /api/actas/{id}/firma [put]
func (h *ActaHandler) AttachSignature(c *fiber.Ctx) error {
	fh, err := c.FormFile("firma")
	if err != nil {
		return badRequest(c, "se espera un archivo en el campo 'firma'")
	}
	f, err := fh.Open()
	if err != nil {
		return respondError(c, h.log, fmt.Errorf("abrir firma: %w", err))
	}
	defer f.Close()

	out, err := h.uc.AttachSignature(c.Context(), actorFrom(c), c.Params("id"), fh.Filename, fh.Size, f)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(out)
}

// Close godoc
// @Summary      Cerrar acta (solo superusuario)
// @Tags         actas
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del acta"
// @Success      200  {object}  dto.ActaResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/actas/{id}/cerrar [post]
func (h *ActaHandler) Close(c *fiber.Ctx) error {
	out, err := h.uc.Close(c.Context(), actorFrom(c), c.Params("id"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(out)
}

// DownloadPDF godoc
// @Summary      Descargar acta en PDF
// @Tags         actas
// @Security     Bearer
// @Produce      application/pdf
// @Param        id   path  string  true  "ID del acta"
// @Success      200  {file}    binary
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/actas/{id}/pdf [get]
func (h *ActaHandler) DownloadPDF(c *fiber.Ctx) error {
	pdf, name, err := h.uc.DownloadPDF(c.Context(), actorFrom(c), c.Params("id"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, name))
	return c.Send(pdf)
}

// toActaDraft convierte el formulario (fechas como texto) en la entidad tipada.
// Las fechas ya pasaron por la regla datetime del validador.
func toActaDraft(in dto.CreateActaRequest) entity.Acta {
	parse := func(s string) time.Time {
		t, _ := time.Parse(dto.DateLayout, s)
		return t
	}
	return entity.Acta{
		Correlativo:        in.Correlativo,
		ActaDate:           parse(in.ActaDate),
		FirstNames:         in.FirstNames,
		LastNames:          in.LastNames,
		RUT:                in.RUT,
		BirthDate:          parse(in.BirthDate),
		BirthPlace:         in.BirthPlace,
		Address:            in.Address,
		Phone:              in.Phone,
		Email:              in.Email,
		MaritalStatus:      in.MaritalStatus,
		Nationality:        in.Nationality,
		Category:           in.Category,
		ContractType:       entity.ContractType(in.ContractType),
		Reason:             in.Reason,
		ReplacedRUT:        in.ReplacedRUT,
		ReplacedName:       in.ReplacedName,
		Convenio:           in.Convenio,
		Responsible:        in.Responsible,
		StartDate:          parse(in.StartDate),
		EndDate:            parse(in.EndDate),
		Workplace:          in.Workplace,
		Position:           in.Position,
		Workday:            in.Workday,
		WorkSchedule:       in.WorkSchedule,
		HealthScheme:       entity.HealthScheme(in.HealthScheme),
		IsaprePlan:         in.IsaprePlan,
		AFP:                in.AFP,
		Remarks:            in.Remarks,
		SupervisorName:     in.SupervisorName,
		SupervisorPosition: in.SupervisorPosition,
	}
}
