// Package memory implementa los repositorios en memoria (tests y APP_STORAGE=memory).
package memory

import (
	"context"
	"sync"

	"github.com/janonimox/actas-api/internal/domain/entity"
	"github.com/janonimox/actas-api/internal/domain/repository"
)

// Store guarda usuarios, períodos y actas en mapas protegidos por un mutex.
// Las transacciones se serializan con txMu y se deshacen restaurando una copia de los mapas.
type Store struct {
	txMu sync.Mutex
	mu   sync.RWMutex

	users   map[string]entity.User
	periods map[string]entity.Period
	actas   map[string]entity.Acta
}

// NewStore crea un Store vacío.
func NewStore() *Store {
	return &Store{
		users:   make(map[string]entity.User),
		periods: make(map[string]entity.Period),
		actas:   make(map[string]entity.Acta),
	}
}

// Users repositorio de usuarios sobre el Store.
func (s *Store) Users() *UserRepo { return &UserRepo{s: s} }

// Periods repositorio de períodos sobre el Store.
func (s *Store) Periods() *PeriodRepo { return &PeriodRepo{s: s} }

// Actas repositorio de actas sobre el Store.
func (s *Store) Actas() *ActaRepo { return &ActaRepo{s: s} }

// RunPeriods ejecuta fn como una transacción: si fn falla, los períodos vuelven al estado previo.
func (s *Store) RunPeriods(ctx context.Context, fn func(periods repository.PeriodRepository) error) error {
	return s.run(ctx, func() error { return fn(s.Periods()) })
}

// RunActas igual que RunPeriods, con repositorios de períodos y actas.
func (s *Store) RunActas(ctx context.Context, fn func(periods repository.PeriodRepository, actas repository.ActaRepository) error) error {
	return s.run(ctx, func() error { return fn(s.Periods(), s.Actas()) })
}

func (s *Store) run(ctx context.Context, fn func() error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.txMu.Lock()
	defer s.txMu.Unlock()

	snap := s.snapshot()
	if err := fn(); err != nil {
		s.restore(snap)
		return err
	}
	return nil
}

type snapshot struct {
	users   map[string]entity.User
	periods map[string]entity.Period
	actas   map[string]entity.Acta
}

func (s *Store) snapshot() snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return snapshot{
		users:   copyMap(s.users),
		periods: copyMap(s.periods),
		actas:   copyMap(s.actas),
	}
}

func (s *Store) restore(snap snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users = snap.users
	s.periods = snap.periods
	s.actas = snap.actas
}

func copyMap[V any](m map[string]V) map[string]V {
	out := make(map[string]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
