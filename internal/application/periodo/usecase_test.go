package periodo_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/janonimox/actas-api/internal/application/periodo"
	"github.com/janonimox/actas-api/internal/domain"
	"github.com/janonimox/actas-api/internal/domain/entity"
	"github.com/janonimox/actas-api/internal/infrastructure/memory"
)

func day(y, m, d int) time.Time {
	return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
}

func newUseCase(today time.Time) (*periodo.PeriodUseCase, *memory.Store) {
	store := memory.NewStore()
	uc := periodo.NewPeriodUseCase(store.Periods(), store, func() time.Time { return today })
	return uc, store
}

func input(y, m, corteDia int) periodo.CreateInput {
	return periodo.CreateInput{Year: y, Month: m, WindowOpen: day(y, m, 1), Cutoff: day(y, m, corteDia)}
}

func TestCreate_DesactivaElAnterior(t *testing.T) {
	ctx := context.Background()
	uc, store := newUseCase(day(2025, 7, 5))

	junio, err := uc.Create(ctx, input(2025, 6, 20))
	require.NoError(t, err)
	assert.True(t, junio.Active)
	assert.Equal(t, entity.PeriodStatusOpen, junio.Status)
	assert.Equal(t, "Junio 2025", junio.Label)

	julio, err := uc.Create(ctx, input(2025, 7, 21))
	require.NoError(t, err)

	active, err := store.Periods().GetActive(ctx)
	require.NoError(t, err)
	require.NotNil(t, active)
	assert.Equal(t, julio.ID, active.ID)

	prev, err := store.Periods().GetByID(ctx, junio.ID)
	require.NoError(t, err)
	assert.False(t, prev.Active)
}

func TestCreate_DuplicadoNoTocaElActivo(t *testing.T) {
	ctx := context.Background()
	uc, store := newUseCase(day(2025, 7, 5))

	_, err := uc.Create(ctx, input(2025, 6, 20))
	require.NoError(t, err)
	julio, err := uc.Create(ctx, input(2025, 7, 21))
	require.NoError(t, err)

	_, err = uc.Create(ctx, input(2025, 6, 25))
	assert.ErrorIs(t, err, domain.ErrDuplicatePeriod)

	active, err := store.Periods().GetActive(ctx)
	require.NoError(t, err)
	require.NotNil(t, active)
	assert.Equal(t, julio.ID, active.ID, "el rollback conserva el período activo")
}

func TestCreate_ConcurrenteMismoMes(t *testing.T) {
	ctx := context.Background()
	uc, store := newUseCase(day(2025, 7, 5))

	const n = 8
	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = uc.Create(ctx, input(2025, 8, 20))
		}(i)
	}
	wg.Wait()

	ok := 0
	for _, err := range errs {
		if err == nil {
			ok++
			continue
		}
		assert.ErrorIs(t, err, domain.ErrDuplicatePeriod)
	}
	assert.Equal(t, 1, ok)

	list, err := store.Periods().List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestCreate_Validaciones(t *testing.T) {
	ctx := context.Background()
	uc, _ := newUseCase(day(2025, 7, 5))

	cases := []periodo.CreateInput{
		{Year: 2025, Month: 13, WindowOpen: day(2025, 1, 1), Cutoff: day(2025, 1, 20)},
		{Year: 1999, Month: 1, WindowOpen: day(1999, 1, 1), Cutoff: day(1999, 1, 20)},
		{Year: 2025, Month: 6},
		{Year: 2025, Month: 6, WindowOpen: day(2025, 6, 21), Cutoff: day(2025, 6, 20)},
	}
	for _, in := range cases {
		_, err := uc.Create(ctx, in)
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	}
}

func TestSetStatus(t *testing.T) {
	ctx := context.Background()
	uc, _ := newUseCase(day(2025, 7, 5))
	p, err := uc.Create(ctx, input(2025, 7, 20))
	require.NoError(t, err)

	_, err = uc.SetStatus(ctx, p.ID, "pausado")
	assert.ErrorIs(t, err, domain.ErrInvalidStatus)

	out, err := uc.SetStatus(ctx, p.ID, entity.PeriodStatusClosed)
	require.NoError(t, err)
	assert.Equal(t, entity.PeriodStatusClosed, out.Status)

	out, err = uc.SetStatus(ctx, p.ID, entity.PeriodStatusClosed)
	require.NoError(t, err, "repetir el estado no es error")
	assert.Equal(t, entity.PeriodStatusClosed, out.Status)

	_, err = uc.SetStatus(ctx, "no-existe", entity.PeriodStatusOpen)
	assert.ErrorIs(t, err, domain.ErrPeriodNotFound)
}

func TestActivate(t *testing.T) {
	ctx := context.Background()
	uc, store := newUseCase(day(2025, 7, 5))
	junio, err := uc.Create(ctx, input(2025, 6, 20))
	require.NoError(t, err)
	_, err = uc.Create(ctx, input(2025, 7, 20))
	require.NoError(t, err)

	out, err := uc.Activate(ctx, junio.ID)
	require.NoError(t, err)
	assert.True(t, out.Active)

	active, err := store.Periods().GetActive(ctx)
	require.NoError(t, err)
	assert.Equal(t, junio.ID, active.ID)

	_, err = uc.Activate(ctx, "no-existe")
	assert.ErrorIs(t, err, domain.ErrPeriodNotFound)
}

func TestList_MasRecientePrimero(t *testing.T) {
	ctx := context.Background()
	uc, _ := newUseCase(day(2025, 7, 5))
	for _, m := range []int{3, 11, 7} {
		_, err := uc.Create(ctx, input(2024, m, 20))
		require.NoError(t, err)
	}
	_, err := uc.Create(ctx, input(2025, 1, 20))
	require.NoError(t, err)

	out, err := uc.List(ctx)
	require.NoError(t, err)
	require.Len(t, out.Items, 4)
	got := make([]string, 0, 4)
	for _, p := range out.Items {
		got = append(got, p.Label)
	}
	assert.Equal(t, []string{"Enero 2025", "Noviembre 2024", "Julio 2024", "Marzo 2024"}, got)
}

func TestCurrent(t *testing.T) {
	ctx := context.Background()

	t.Run("sin periodo activo", func(t *testing.T) {
		uc, _ := newUseCase(day(2025, 7, 5))
		_, err := uc.Current(ctx)
		assert.ErrorIs(t, err, domain.ErrNoActivePeriod)
	})

	t.Run("dentro del corte", func(t *testing.T) {
		uc, _ := newUseCase(day(2025, 7, 20))
		_, err := uc.Create(ctx, input(2025, 7, 20))
		require.NoError(t, err)

		out, err := uc.Current(ctx)
		require.NoError(t, err)
		assert.False(t, out.RolledForward)
		assert.Empty(t, out.Notice)
		assert.Equal(t, 7, out.Period.Month)
	})

	t.Run("pasado el corte de diciembre", func(t *testing.T) {
		uc, _ := newUseCase(day(2025, 12, 22))
		_, err := uc.Create(ctx, input(2025, 12, 19))
		require.NoError(t, err)

		out, err := uc.Current(ctx)
		require.NoError(t, err)
		assert.True(t, out.RolledForward)
		assert.True(t, out.Period.Projected)
		assert.Equal(t, 2026, out.Period.Year)
		assert.Equal(t, 1, out.Period.Month)
		assert.Empty(t, out.Period.ID)
		assert.Contains(t, out.Notice, "Enero 2026")
	})

	t.Run("periodo cerrado", func(t *testing.T) {
		uc, _ := newUseCase(day(2025, 7, 1))
		p, err := uc.Create(ctx, input(2025, 7, 20))
		require.NoError(t, err)
		_, err = uc.SetStatus(ctx, p.ID, entity.PeriodStatusClosed)
		require.NoError(t, err)

		out, err := uc.Current(ctx)
		require.NoError(t, err)
		assert.True(t, out.RolledForward)
		assert.Equal(t, 8, out.Period.Month)
	})
}

func TestGetActive_SinActivo(t *testing.T) {
	uc, _ := newUseCase(day(2025, 7, 5))
	out, err := uc.GetActive(context.Background())
	require.NoError(t, err)
	assert.Nil(t, out)
}
