package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/janonimox/actas-api/internal/domain"
	"github.com/janonimox/actas-api/internal/domain/entity"
	"github.com/janonimox/actas-api/internal/domain/repository"
)

var (
	_ repository.UserRepository   = (*UserRepo)(nil)
	_ repository.PeriodRepository = (*PeriodRepo)(nil)
	_ repository.ActaRepository   = (*ActaRepo)(nil)
)

// ── Usuarios ──

// UserRepo implementa repository.UserRepository en memoria.
type UserRepo struct{ s *Store }

func (r *UserRepo) Create(_ context.Context, u *entity.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.users {
		if existing.Username == u.Username {
			return domain.ErrUsernameAlreadyExists
		}
	}
	r.s.users[u.ID] = *u
	return nil
}

func (r *UserRepo) GetByID(_ context.Context, id string) (*entity.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (r *UserRepo) GetByUsername(_ context.Context, username string) (*entity.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, u := range r.s.users {
		if u.Username == username {
			out := u
			return &out, nil
		}
	}
	return nil, nil
}

func (r *UserRepo) List(_ context.Context, limit, offset int) ([]*entity.User, error) {
	r.s.mu.RLock()
	list := make([]*entity.User, 0, len(r.s.users))
	for _, u := range r.s.users {
		out := u
		list = append(list, &out)
	}
	r.s.mu.RUnlock()
	sort.Slice(list, func(i, j int) bool { return list[i].Username < list[j].Username })
	return page(list, limit, offset), nil
}

// ── Períodos ──

// PeriodRepo implementa repository.PeriodRepository en memoria.
// Replica las restricciones de la tabla: (anio, mes) único y a lo más un activo.
type PeriodRepo struct{ s *Store }

func (r *PeriodRepo) Create(_ context.Context, p *entity.Period) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.periods {
		if existing.Year == p.Year && existing.Month == p.Month {
			return fmt.Errorf("%w: %02d-%d", domain.ErrDuplicatePeriod, p.Month, p.Year)
		}
		if p.Active && existing.Active {
			return domain.ErrConcurrentActivation
		}
	}
	stored := *p
	stored.Projected = false
	r.s.periods[p.ID] = stored
	return nil
}

func (r *PeriodRepo) GetByID(_ context.Context, id string) (*entity.Period, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	p, ok := r.s.periods[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (r *PeriodRepo) GetActive(_ context.Context) (*entity.Period, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var found *entity.Period
	for _, p := range r.s.periods {
		if !p.Active {
			continue
		}
		if found != nil {
			return nil, domain.ErrMultipleActivePeriods
		}
		out := p
		found = &out
	}
	return found, nil
}

func (r *PeriodRepo) List(_ context.Context) ([]*entity.Period, error) {
	r.s.mu.RLock()
	list := make([]*entity.Period, 0, len(r.s.periods))
	for _, p := range r.s.periods {
		out := p
		list = append(list, &out)
	}
	r.s.mu.RUnlock()
	sort.Slice(list, func(i, j int) bool {
		if list[i].Year != list[j].Year {
			return list[i].Year > list[j].Year
		}
		return list[i].Month > list[j].Month
	})
	return list, nil
}

func (r *PeriodRepo) UpdateStatus(_ context.Context, id, status string) error {
	if !entity.ValidPeriodStatus(status) {
		return domain.ErrInvalidStatus
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.periods[id]
	if !ok {
		return domain.ErrPeriodNotFound
	}
	p.Status = status
	p.UpdatedAt = time.Now()
	r.s.periods[id] = p
	return nil
}

func (r *PeriodRepo) DeactivateAll(_ context.Context) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for id, p := range r.s.periods {
		if p.Active {
			p.Active = false
			p.UpdatedAt = time.Now()
			r.s.periods[id] = p
		}
	}
	return nil
}

func (r *PeriodRepo) SetActive(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.periods[id]
	if !ok {
		return domain.ErrPeriodNotFound
	}
	for otherID, other := range r.s.periods {
		if otherID != id && other.Active {
			return domain.ErrConcurrentActivation
		}
	}
	p.Active = true
	p.UpdatedAt = time.Now()
	r.s.periods[id] = p
	return nil
}

// ── Actas ──

// ActaRepo implementa repository.ActaRepository en memoria.
type ActaRepo struct{ s *Store }

func (r *ActaRepo) Create(_ context.Context, a *entity.Acta) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.actas[a.ID]; ok {
		return domain.ErrConflict
	}
	r.s.actas[a.ID] = *a
	return nil
}

func (r *ActaRepo) GetByID(_ context.Context, id string) (*entity.Acta, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	a, ok := r.s.actas[id]
	if !ok {
		return nil, nil
	}
	return &a, nil
}

// GetForUpdate equivale a GetByID: txMu ya serializa las transacciones.
func (r *ActaRepo) GetForUpdate(ctx context.Context, id string) (*entity.Acta, error) {
	return r.GetByID(ctx, id)
}

func (r *ActaRepo) List(_ context.Context, f repository.ActaFilter) ([]*entity.Acta, int, error) {
	r.s.mu.RLock()
	list := make([]*entity.Acta, 0)
	for _, a := range r.s.actas {
		if f.UserID != "" && a.UserID != f.UserID {
			continue
		}
		if f.Cesfam != "" && a.Cesfam != f.Cesfam {
			continue
		}
		if f.PeriodYear != 0 && a.PeriodYear != f.PeriodYear {
			continue
		}
		if f.PeriodMonth != 0 && a.PeriodMonth != f.PeriodMonth {
			continue
		}
		if f.Status != "" && a.Status != f.Status {
			continue
		}
		out := a
		list = append(list, &out)
	}
	r.s.mu.RUnlock()
	sort.Slice(list, func(i, j int) bool { return list[i].CreatedAt.After(list[j].CreatedAt) })
	return page(list, f.Limit, f.Offset), len(list), nil
}

func (r *ActaRepo) RegisterMailing(_ context.Context, id string, mailedAt time.Time, mailedBy string) error {
	return r.update(id, func(a *entity.Acta) {
		a.MailedAt = &mailedAt
		a.MailedBy = &mailedBy
		a.Status = entity.ActaStatusSent
	})
}

func (r *ActaRepo) UpdateCorrelativo(_ context.Context, id, correlativo string) error {
	return r.update(id, func(a *entity.Acta) { a.Correlativo = correlativo })
}

func (r *ActaRepo) UpdateSignaturePath(_ context.Context, id, path string) error {
	return r.update(id, func(a *entity.Acta) {
		a.SignaturePath = path
		a.SignatureType = entity.SignatureTypeImage
	})
}

func (r *ActaRepo) UpdateStatus(_ context.Context, id, status string) error {
	return r.update(id, func(a *entity.Acta) { a.Status = status })
}

func (r *ActaRepo) update(id string, fn func(a *entity.Acta)) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a, ok := r.s.actas[id]
	if !ok {
		return domain.ErrActaNotFound
	}
	fn(&a)
	now := time.Now()
	a.UpdatedAt = &now
	r.s.actas[id] = a
	return nil
}

func page[T any](list []T, limit, offset int) []T {
	if offset >= len(list) {
		return []T{}
	}
	list = list[offset:]
	if limit > 0 && limit < len(list) {
		list = list[:limit]
	}
	return list
}
