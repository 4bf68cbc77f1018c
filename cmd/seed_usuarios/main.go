// seed_usuarios crea el superusuario inicial y, opcionalmente, importa usuarios desde un CSV.
//
// Uso: go run ./cmd/seed_usuarios -password <clave> [-csv usuarios.csv]
//
// El CSV viene de Excel (Windows-1252, separador ';') con columnas
// username;password;cesfam;rol;email. La primera fila es encabezado.
package main

import (
	"context"
	"encoding/csv"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/janonimox/actas-api/internal/application/auth"
	"github.com/janonimox/actas-api/internal/application/dto"
	"github.com/janonimox/actas-api/internal/domain/entity"
	"github.com/janonimox/actas-api/internal/infrastructure/postgres"
	"github.com/janonimox/actas-api/pkg/config"
	"github.com/janonimox/actas-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Cargar configuración: %v\n", err)
		os.Exit(1)
	}

	username := flag.String("username", cfg.Seed.AdminUsername, "username del superusuario (o SEED_ADMIN_USERNAME)")
	password := flag.String("password", cfg.Seed.AdminPassword, "clave del superusuario (o SEED_ADMIN_PASSWORD)")
	cesfam := flag.String("cesfam", cfg.Seed.AdminCesfam, "establecimiento del superusuario (o SEED_ADMIN_CESFAM)")
	csvPath := flag.String("csv", "", "CSV Windows-1252 con usuarios a importar")
	flag.Parse()
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel})

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()
	if cfg.DB.AutoMigrate {
		if _, err := postgres.Migrate(pool); err != nil {
			log.Fatal().Err(err).Msg("migraciones")
		}
	}

	uc := auth.NewAuthUseCase(postgres.NewUserRepository(pool), auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})

	if *password == "" {
		log.Fatal().Msg("falta -password o SEED_ADMIN_PASSWORD")
	}
	created, err := uc.EnsureUser(ctx, dto.CreateUserRequest{
		Username: *username,
		Password: *password,
		Cesfam:   *cesfam,
		Role:     entity.RoleSuperusuario,
	})
	switch {
	case err != nil:
		log.Fatal().Err(err).Str("username", *username).Msg("crear superusuario")
	case created:
		log.Info().Str("username", *username).Msg("superusuario creado")
	default:
		log.Warn().Str("username", *username).Msg("el usuario ya existe")
	}

	if *csvPath == "" {
		return
	}
	f, err := os.Open(*csvPath)
	if err != nil {
		log.Fatal().Err(err).Msg("abrir CSV")
	}
	defer f.Close()

	rows, err := readUsers(f)
	if err != nil {
		log.Fatal().Err(err).Msg("leer CSV")
	}
	var nuevos, existentes, fallidos int
	for _, in := range rows {
		ok, err := uc.EnsureUser(ctx, in)
		switch {
		case err != nil:
			fallidos++
			log.Error().Err(err).Str("username", in.Username).Msg("fila rechazada")
		case ok:
			nuevos++
		default:
			existentes++
		}
	}
	log.Info().Int("creados", nuevos).Int("existentes", existentes).Int("rechazados", fallidos).Msg("importación terminada")
}

// readUsers decodifica el CSV de Excel (Windows-1252) a solicitudes de alta.
func readUsers(r io.Reader) ([]dto.CreateUserRequest, error) {
	cr := csv.NewReader(transform.NewReader(r, charmap.Windows1252.NewDecoder()))
	cr.Comma = ';'
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	records, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}
	out := make([]dto.CreateUserRequest, 0, len(records))
	for i, rec := range records {
		if i == 0 && strings.EqualFold(strings.TrimSpace(rec[0]), "username") {
			continue
		}
		if len(rec) < 3 {
			return nil, fmt.Errorf("fila %d: se esperan al menos username;password;cesfam", i+1)
		}
		in := dto.CreateUserRequest{
			Username: strings.TrimSpace(rec[0]),
			Password: rec[1],
			Cesfam:   strings.TrimSpace(rec[2]),
		}
		if len(rec) > 3 {
			in.Role = strings.TrimSpace(rec[3])
		}
		if len(rec) > 4 {
			in.Email = strings.TrimSpace(rec[4])
		}
		out = append(out, in)
	}
	return out, nil
}
