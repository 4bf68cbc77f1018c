package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/janonimox/actas-api/internal/application/acta"
	"github.com/janonimox/actas-api/internal/application/periodo"
	"github.com/janonimox/actas-api/internal/domain/repository"
)

var (
	_ periodo.TxRunner = (*TxRunner)(nil)
	_ acta.TxRunner    = (*TxRunner)(nil)
)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// RunPeriods ejecuta fn con el repositorio de períodos atado a la transacción.
func (r *TxRunner) RunPeriods(ctx context.Context, fn func(periods repository.PeriodRepository) error) error {
	return r.run(ctx, func(tx pgx.Tx) error {
		return fn(NewPeriodRepository(tx))
	})
}

// RunActas ejecuta fn con repositorios de períodos y actas atados a la transacción.
func (r *TxRunner) RunActas(ctx context.Context, fn func(
	periods repository.PeriodRepository,
	actas repository.ActaRepository,
) error) error {
	return r.run(ctx, func(tx pgx.Tx) error {
		return fn(NewPeriodRepository(tx), NewActaRepository(tx))
	})
}

// run inicia la transacción, ejecuta fn y hace Commit o Rollback.
func (r *TxRunner) run(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
