package postgres

import (
	"embed"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	migrate "github.com/rubenv/sql-migrate"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// MigrationSource migraciones SQL embebidas en el binario.
func MigrationSource() migrate.MigrationSource {
	return &migrate.EmbedFileSystemMigrationSource{
		FileSystem: migrationsFS,
		Root:       "migrations",
	}
}

// Migrate aplica las migraciones pendientes y devuelve cuántas se aplicaron.
func Migrate(pool *pgxpool.Pool) (int, error) {
	db := stdlib.OpenDBFromPool(pool)
	defer db.Close()

	migrate.SetTable("schema_migrations")
	n, err := migrate.Exec(db, "postgres", MigrationSource(), migrate.Up)
	if err != nil {
		return n, fmt.Errorf("aplicar migraciones: %w", err)
	}
	return n, nil
}
