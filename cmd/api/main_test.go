package main

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/janonimox/actas-api/internal/application/auth"
	"github.com/janonimox/actas-api/internal/application/dto"
	"github.com/janonimox/actas-api/internal/domain/entity"
	"github.com/janonimox/actas-api/pkg/config"
	"github.com/janonimox/actas-api/pkg/logger"
)

func memoryConfig(password string) *config.Config {
	return &config.Config{
		App: config.AppConfig{Storage: "memory"},
		JWT: config.JWTConfig{Secret: "secreto-de-prueba", Expiration: 60, Issuer: "actas-api"},
		Seed: config.SeedConfig{
			AdminUsername: "admin",
			AdminPassword: password,
			AdminCesfam:   "Departamento de Salud Coquimbo",
		},
	}
}

func TestOpenBackend_MemoriaPermiteLogin(t *testing.T) {
	ctx := context.Background()
	cfg := memoryConfig("clave-inicial")

	be, err := openBackend(ctx, cfg, logger.Nop())
	require.NoError(t, err)
	defer be.close()

	uc := auth.NewAuthUseCase(be.users, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})
	out, err := uc.Login(ctx, dto.LoginRequest{Username: "admin", Password: "clave-inicial"})
	require.NoError(t, err)
	assert.NotEmpty(t, out.Token)
	assert.Equal(t, entity.RoleSuperusuario, out.User.Role)
	assert.Equal(t, "Departamento de Salud Coquimbo", out.User.Cesfam)
}

func TestOpenBackend_MemoriaSinClave(t *testing.T) {
	_, err := openBackend(context.Background(), memoryConfig(""), logger.Nop())
	assert.ErrorContains(t, err, "SEED_ADMIN_PASSWORD")
}
