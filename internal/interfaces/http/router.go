package http

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/janonimox/actas-api/internal/application/acta"
	"github.com/janonimox/actas-api/internal/application/auth"
	"github.com/janonimox/actas-api/internal/application/periodo"
	"github.com/janonimox/actas-api/internal/domain/entity"
	"github.com/janonimox/actas-api/pkg/logger"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC    *auth.AuthUseCase
	PeriodUC  *periodo.PeriodUseCase
	ActaUC    *acta.ActaUseCase
	JWTSecret string
	Logger    *logger.Logger
	// HealthCheck verifica dependencias externas (DB); nil responde siempre ok.
	HealthCheck func(ctx context.Context) error
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	log := deps.Logger
	if log == nil {
		log = logger.Nop()
	}
	validate := newValidator()

	app.Get("/health", func(c *fiber.Ctx) error {
		if deps.HealthCheck != nil {
			if err := deps.HealthCheck(c.Context()); err != nil {
				return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "degradado", "error": err.Error()})
			}
		}
		return c.JSON(fiber.Map{"status": "ok"})
	})

	api := app.Group("/api")
	authHandler := NewAuthHandler(deps.AuthUC, validate, log)
	periodHandler := NewPeriodHandler(deps.PeriodUC, validate, log)
	actaHandler := NewActaHandler(deps.ActaUC, validate, log)

	// Auth (público)
	api.Post("/auth/login", authHandler.Login)

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))
	onlySuper := RequireRole(entity.RoleSuperusuario)
	anyRole := RequireRole(entity.RoleSuperusuario, entity.RoleAdministrativo)

	// Usuarios (superusuario)
	protected.Post("/usuarios", onlySuper, authHandler.CreateUser)
	protected.Get("/usuarios", onlySuper, authHandler.ListUsers)

	// Períodos: vigente para todos; el registro solo superusuario
	periodos := protected.Group("/periodos")
	periodos.Get("/vigente", anyRole, periodHandler.Current)
	periodos.Get("/", onlySuper, periodHandler.List)
	periodos.Post("/", onlySuper, periodHandler.Create)
	periodos.Get("/activo", onlySuper, periodHandler.GetActive)
	periodos.Patch("/:id/estado", onlySuper, periodHandler.SetStatus)
	periodos.Post("/:id/activar", onlySuper, periodHandler.Activate)

	// Actas (acceso por dueño o superusuario, decidido en el caso de uso)
	actas := protected.Group("/actas", anyRole)
	actas.Post("/", actaHandler.Create)
	actas.Get("/", actaHandler.List)
	actas.Get("/:id", actaHandler.GetByID)
	actas.Put("/:id/envio-fisico", actaHandler.RegisterMailing)
	actas.Put("/:id/correlativo", actaHandler.UpdateCorrelativo)
	actas.Put("/:id/firma", actaHandler.AttachSignature)
	actas.Post("/:id/cerrar", onlySuper, actaHandler.Close)
	actas.Get("/:id/pdf", actaHandler.DownloadPDF)
}
