package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/janonimox/actas-api/internal/application/acta"
	"github.com/janonimox/actas-api/internal/application/auth"
	"github.com/janonimox/actas-api/internal/application/dto"
	"github.com/janonimox/actas-api/internal/application/periodo"
	"github.com/janonimox/actas-api/internal/domain/entity"
	"github.com/janonimox/actas-api/internal/domain/repository"
	"github.com/janonimox/actas-api/internal/infrastructure/memory"
	infrapdf "github.com/janonimox/actas-api/internal/infrastructure/pdf"
	"github.com/janonimox/actas-api/internal/infrastructure/postgres"
	"github.com/janonimox/actas-api/internal/infrastructure/storage"
	httpRouter "github.com/janonimox/actas-api/internal/interfaces/http"
	"github.com/janonimox/actas-api/pkg/config"
	"github.com/janonimox/actas-api/pkg/logger"
)

// txRunner transacciones de períodos y de actas sobre el mismo almacenamiento.
type txRunner interface {
	periodo.TxRunner
	acta.TxRunner
}

type backend struct {
	users   repository.UserRepository
	periods repository.PeriodRepository
	actas   repository.ActaRepository
	tx      txRunner
	health  func(ctx context.Context) error
	close   func()
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("storage", cfg.App.Storage).
		Msg("iniciando aplicación")

	loc, err := time.LoadLocation(cfg.App.Timezone)
	if err != nil {
		log.Fatal().Err(err).Str("timezone", cfg.App.Timezone).Msg("zona horaria inválida")
	}
	now := func() time.Time { return time.Now().In(loc) }

	ctx := context.Background()
	be, err := openBackend(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("inicializar almacenamiento")
	}
	defer be.close()

	signatures, err := storage.NewLocal(cfg.Upload.Dir, cfg.Upload.MaxBytes)
	if err != nil {
		log.Fatal().Err(err).Str("dir", cfg.Upload.Dir).Msg("directorio de firmas")
	}

	authUC := auth.NewAuthUseCase(be.users, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})
	periodUC := periodo.NewPeriodUseCase(be.periods, be.tx, now)
	actaUC := acta.NewActaUseCase(be.actas, be.tx, signatures, infrapdf.NewActaPDFGenerator(signatures), now)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
		BodyLimit:    int(cfg.Upload.MaxBytes) + 1<<20,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Actas API",
	}))

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:      authUC,
		PeriodUC:    periodUC,
		ActaUC:      actaUC,
		JWTSecret:   cfg.JWT.Secret,
		Logger:      log,
		HealthCheck: be.health,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}

// openBackend arma los repositorios según APP_STORAGE.
// En modo memory los datos se pierden al reiniciar y el superusuario SEED_ADMIN_* se crea al arrancar.
func openBackend(ctx context.Context, cfg *config.Config, log *logger.Logger) (*backend, error) {
	if cfg.App.Storage == "memory" {
		log.Warn().Msg("almacenamiento en memoria: los datos no persisten")
		store := memory.NewStore()
		if err := seedAdmin(ctx, cfg, store.Users()); err != nil {
			return nil, err
		}
		log.Info().Str("username", cfg.Seed.AdminUsername).Msg("superusuario en memoria creado")
		return &backend{
			users:   store.Users(),
			periods: store.Periods(),
			actas:   store.Actas(),
			tx:      store,
			close:   func() {},
		}, nil
	}

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		return nil, err
	}
	if cfg.DB.AutoMigrate {
		n, err := postgres.Migrate(pool)
		if err != nil {
			pool.Close()
			return nil, err
		}
		log.Info().Int("aplicadas", n).Msg("migraciones")
	}
	return &backend{
		users:   postgres.NewUserRepository(pool),
		periods: postgres.NewPeriodRepository(pool),
		actas:   postgres.NewActaRepository(pool),
		tx:      postgres.NewTxRunner(pool),
		health:  pool.Ping,
		close:   pool.Close,
	}, nil
}

func seedAdmin(ctx context.Context, cfg *config.Config, users repository.UserRepository) error {
	if cfg.Seed.AdminPassword == "" {
		return errors.New("APP_STORAGE=memory requiere SEED_ADMIN_PASSWORD")
	}
	uc := auth.NewAuthUseCase(users, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})
	_, err := uc.EnsureUser(ctx, dto.CreateUserRequest{
		Username: cfg.Seed.AdminUsername,
		Password: cfg.Seed.AdminPassword,
		Cesfam:   cfg.Seed.AdminCesfam,
		Role:     entity.RoleSuperusuario,
	})
	if err != nil {
		return fmt.Errorf("crear superusuario: %w", err)
	}
	return nil
}
