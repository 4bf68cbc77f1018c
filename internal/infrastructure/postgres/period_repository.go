package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/janonimox/actas-api/internal/domain"
	"github.com/janonimox/actas-api/internal/domain/entity"
	"github.com/janonimox/actas-api/internal/domain/repository"
)

var _ repository.PeriodRepository = (*PeriodRepo)(nil)

// PeriodRepo registro de períodos remunerativos sobre PostgreSQL.
// La unicidad de (anio, mes) y de período activo la garantizan los índices de la tabla.
type PeriodRepo struct {
	db Querier
}

// NewPeriodRepository construye el repositorio sobre el pool o una transacción.
func NewPeriodRepository(db Querier) *PeriodRepo {
	return &PeriodRepo{db: db}
}

const periodColumns = `id, anio, mes, fecha_inicio, fecha_corte, activo, estado, created_at, updated_at`

func (r *PeriodRepo) Create(ctx context.Context, p *entity.Period) error {
	query := `
		INSERT INTO periodos_remunerativos (` + periodColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.db.Exec(ctx, query,
		p.ID, p.Year, p.Month, p.WindowOpen, p.Cutoff, p.Active, p.Status, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return periodWriteError(err, p.Year, p.Month, "insert periodo")
	}
	return nil
}

// periodWriteError traduce los errores de escritura de periodos_remunerativos.
// uq_periodo_activo solo se viola si otra transacción activó un período después de
// nuestro DeactivateAll (READ COMMITTED), por eso se informa como activación concurrente.
func periodWriteError(err error, year, month int, op string) error {
	if name, ok := uniqueViolation(err); ok {
		switch name {
		case constraintPeriodYearMonth:
			return fmt.Errorf("%w: %02d-%d", domain.ErrDuplicatePeriod, month, year)
		case constraintPeriodActive:
			return domain.ErrConcurrentActivation
		}
		return domain.ErrConflict
	}
	if checkViolation(err) {
		return fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func (r *PeriodRepo) GetByID(ctx context.Context, id string) (*entity.Period, error) {
	p, err := scanPeriod(r.db.QueryRow(ctx,
		`SELECT `+periodColumns+` FROM periodos_remunerativos WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get periodo: %w", err)
	}
	return p, nil
}

// GetActive lee hasta dos filas activas para detectar una base inconsistente.
func (r *PeriodRepo) GetActive(ctx context.Context) (*entity.Period, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+periodColumns+` FROM periodos_remunerativos WHERE activo LIMIT 2`)
	if err != nil {
		return nil, fmt.Errorf("get periodo activo: %w", err)
	}
	defer rows.Close()
	var found []*entity.Period
	for rows.Next() {
		p, err := scanPeriod(rows)
		if err != nil {
			return nil, fmt.Errorf("scan periodo: %w", err)
		}
		found = append(found, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	switch len(found) {
	case 0:
		return nil, nil
	case 1:
		return found[0], nil
	default:
		return nil, domain.ErrMultipleActivePeriods
	}
}

// List más reciente primero.
func (r *PeriodRepo) List(ctx context.Context) ([]*entity.Period, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+periodColumns+` FROM periodos_remunerativos ORDER BY anio DESC, mes DESC`)
	if err != nil {
		return nil, fmt.Errorf("list periodos: %w", err)
	}
	defer rows.Close()
	var list []*entity.Period
	for rows.Next() {
		p, err := scanPeriod(rows)
		if err != nil {
			return nil, fmt.Errorf("scan periodo: %w", err)
		}
		list = append(list, p)
	}
	return list, rows.Err()
}

func (r *PeriodRepo) UpdateStatus(ctx context.Context, id, status string) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE periodos_remunerativos SET estado = $2, updated_at = NOW() WHERE id = $1`, id, status)
	if err != nil {
		if checkViolation(err) {
			return domain.ErrInvalidStatus
		}
		return fmt.Errorf("update estado periodo: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrPeriodNotFound
	}
	return nil
}

func (r *PeriodRepo) DeactivateAll(ctx context.Context) error {
	_, err := r.db.Exec(ctx,
		`UPDATE periodos_remunerativos SET activo = FALSE, updated_at = NOW() WHERE activo`)
	if err != nil {
		return fmt.Errorf("desactivar periodos: %w", err)
	}
	return nil
}

func (r *PeriodRepo) SetActive(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE periodos_remunerativos SET activo = TRUE, updated_at = NOW() WHERE id = $1`, id)
	if err != nil {
		return periodWriteError(err, 0, 0, "activar periodo")
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrPeriodNotFound
	}
	return nil
}

func scanPeriod(row pgx.Row) (*entity.Period, error) {
	var p entity.Period
	err := row.Scan(&p.ID, &p.Year, &p.Month, &p.WindowOpen, &p.Cutoff, &p.Active, &p.Status, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}
