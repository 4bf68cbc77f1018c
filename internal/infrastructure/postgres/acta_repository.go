package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/janonimox/actas-api/internal/domain"
	"github.com/janonimox/actas-api/internal/domain/entity"
	"github.com/janonimox/actas-api/internal/domain/repository"
)

var _ repository.ActaRepository = (*ActaRepo)(nil)

// ActaRepo persistencia de actas sobre PostgreSQL.
type ActaRepo struct {
	db Querier
}

// NewActaRepository construye el repositorio sobre el pool o una transacción.
func NewActaRepository(db Querier) *ActaRepo {
	return &ActaRepo{db: db}
}

const actaColumns = `
	id, numero_correlativo, fecha_acta,
	nombres, apellidos, rut, fecha_nacimiento, lugar_nacimiento, direccion, telefono, email,
	estado_civil, nacionalidad, categoria,
	tipo_contrato, motivo, rut_reemplazo, nombre_reemplazo, convenio, responsable,
	fecha_inicio, fecha_termino,
	lugar_trabajo, cargo, jornada, horario_jornada,
	salud, plan_isapre, afp,
	observaciones, nombre_encargado, cargo_encargado,
	periodo_anio, periodo_mes, estado, usuario_id, cesfam,
	firma_path, fecha_envio_fisico, usuario_envio_fisico,
	tipo_firma, fecha_firma, hash_firma, cn_firma, serial_firma, p7s_path,
	created_at, updated_at`

func (r *ActaRepo) Create(ctx context.Context, a *entity.Acta) error {
	query := `INSERT INTO actas (` + actaColumns + `) VALUES (` + placeholders(48) + `)`
	_, err := r.db.Exec(ctx, query,
		a.ID, a.Correlativo, nullDate(a.ActaDate),
		a.FirstNames, a.LastNames, a.RUT, nullDate(a.BirthDate), a.BirthPlace, a.Address, a.Phone, a.Email,
		a.MaritalStatus, a.Nationality, a.Category,
		string(a.ContractType), a.Reason, a.ReplacedRUT, a.ReplacedName, a.Convenio, a.Responsible,
		nullDate(a.StartDate), nullDate(a.EndDate),
		a.Workplace, a.Position, a.Workday, a.WorkSchedule,
		string(a.HealthScheme), a.IsaprePlan, a.AFP,
		a.Remarks, a.SupervisorName, a.SupervisorPosition,
		a.PeriodYear, a.PeriodMonth, a.Status, a.UserID, a.Cesfam,
		nullString(a.SignaturePath), a.MailedAt, a.MailedBy,
		nullString(a.SignatureType), a.SignedAt, nullString(a.SignatureHash), nullString(a.SignatureCN),
		nullString(a.SignatureSerial), nullString(a.SignatureP7SPath),
		a.CreatedAt, a.UpdatedAt,
	)
	if err != nil {
		if _, ok := uniqueViolation(err); ok {
			return domain.ErrConflict
		}
		if checkViolation(err) {
			return fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
		}
		return fmt.Errorf("insert acta: %w", err)
	}
	return nil
}

func (r *ActaRepo) GetByID(ctx context.Context, id string) (*entity.Acta, error) {
	a, err := scanActa(r.db.QueryRow(ctx, `SELECT `+actaColumns+` FROM actas WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get acta: %w", err)
	}
	return a, nil
}

// GetForUpdate obtiene el acta y bloquea la fila (SELECT FOR UPDATE). Solo tiene efecto dentro de una transacción.
func (r *ActaRepo) GetForUpdate(ctx context.Context, id string) (*entity.Acta, error) {
	a, err := scanActa(r.db.QueryRow(ctx, `SELECT `+actaColumns+` FROM actas WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get acta for update: %w", err)
	}
	return a, nil
}

// List aplica los filtros no vacíos de f; devuelve la página pedida y el total sin paginar.
func (r *ActaRepo) List(ctx context.Context, f repository.ActaFilter) ([]*entity.Acta, int, error) {
	var (
		conds []string
		args  []any
	)
	add := func(cond string, v any) {
		args = append(args, v)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}
	if f.UserID != "" {
		add("usuario_id = $%d", f.UserID)
	}
	if f.Cesfam != "" {
		add("cesfam = $%d", f.Cesfam)
	}
	if f.PeriodYear != 0 {
		add("periodo_anio = $%d", f.PeriodYear)
	}
	if f.PeriodMonth != 0 {
		add("periodo_mes = $%d", f.PeriodMonth)
	}
	if f.Status != "" {
		add("estado = $%d", f.Status)
	}
	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM actas`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count actas: %w", err)
	}

	args = append(args, f.Limit, f.Offset)
	query := fmt.Sprintf(`SELECT %s FROM actas%s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		actaColumns, where, len(args)-1, len(args))
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list actas: %w", err)
	}
	defer rows.Close()
	var list []*entity.Acta
	for rows.Next() {
		a, err := scanActa(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan acta: %w", err)
		}
		list = append(list, a)
	}
	return list, total, rows.Err()
}

func (r *ActaRepo) RegisterMailing(ctx context.Context, id string, mailedAt time.Time, mailedBy string) error {
	return r.exec(ctx, `
		UPDATE actas SET fecha_envio_fisico = $2, usuario_envio_fisico = $3, estado = $4, updated_at = NOW()
		WHERE id = $1`, id, mailedAt, mailedBy, entity.ActaStatusSent)
}

func (r *ActaRepo) UpdateCorrelativo(ctx context.Context, id, correlativo string) error {
	return r.exec(ctx, `UPDATE actas SET numero_correlativo = $2, updated_at = NOW() WHERE id = $1`, id, correlativo)
}

func (r *ActaRepo) UpdateSignaturePath(ctx context.Context, id, path string) error {
	return r.exec(ctx, `
		UPDATE actas SET firma_path = $2, tipo_firma = $3, updated_at = NOW()
		WHERE id = $1`, id, path, entity.SignatureTypeImage)
}

func (r *ActaRepo) UpdateStatus(ctx context.Context, id, status string) error {
	return r.exec(ctx, `UPDATE actas SET estado = $2, updated_at = NOW() WHERE id = $1`, id, status)
}

func (r *ActaRepo) exec(ctx context.Context, query string, args ...any) error {
	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		if checkViolation(err) {
			return fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
		}
		return fmt.Errorf("update acta: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrActaNotFound
	}
	return nil
}

func scanActa(row pgx.Row) (*entity.Acta, error) {
	var (
		a                                        entity.Acta
		contractType, health                     string
		actaDate, birthDate, startDate, endDate  *time.Time
		sigPath, sigType, sigHash, sigCN, sigSer *string
		p7sPath                                  *string
	)
	err := row.Scan(
		&a.ID, &a.Correlativo, &actaDate,
		&a.FirstNames, &a.LastNames, &a.RUT, &birthDate, &a.BirthPlace, &a.Address, &a.Phone, &a.Email,
		&a.MaritalStatus, &a.Nationality, &a.Category,
		&contractType, &a.Reason, &a.ReplacedRUT, &a.ReplacedName, &a.Convenio, &a.Responsible,
		&startDate, &endDate,
		&a.Workplace, &a.Position, &a.Workday, &a.WorkSchedule,
		&health, &a.IsaprePlan, &a.AFP,
		&a.Remarks, &a.SupervisorName, &a.SupervisorPosition,
		&a.PeriodYear, &a.PeriodMonth, &a.Status, &a.UserID, &a.Cesfam,
		&sigPath, &a.MailedAt, &a.MailedBy,
		&sigType, &a.SignedAt, &sigHash, &sigCN, &sigSer, &p7sPath,
		&a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	a.ContractType = entity.ContractType(contractType)
	a.HealthScheme = entity.HealthScheme(health)
	a.ActaDate = derefTime(actaDate)
	a.BirthDate = derefTime(birthDate)
	a.StartDate = derefTime(startDate)
	a.EndDate = derefTime(endDate)
	a.SignaturePath = derefString(sigPath)
	a.SignatureType = derefString(sigType)
	a.SignatureHash = derefString(sigHash)
	a.SignatureCN = derefString(sigCN)
	a.SignatureSerial = derefString(sigSer)
	a.SignatureP7SPath = derefString(p7sPath)
	return &a, nil
}

func placeholders(n int) string {
	ph := make([]string, n)
	for i := range ph {
		ph[i] = fmt.Sprintf("$%d", i+1)
	}
	return strings.Join(ph, ", ")
}

func nullDate(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func derefTime(t *time.Time) time.Time {
	if t == nil {
		return time.Time{}
	}
	return *t
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
