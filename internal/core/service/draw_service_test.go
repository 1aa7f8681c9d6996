package service

import (
	"context"
	"errors"
	"math/rand/v2"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rl1809/banko/internal/core/domain"
)

func allValues() []int {
	values := make([]int, 0, domain.PoolSize)
	for v := domain.MinValue; v <= domain.MaxValue; v++ {
		values = append(values, v)
	}
	return values
}

func assertUniqueInRange(t *testing.T, values []int) {
	t.Helper()
	seen := make(map[int]bool, len(values))
	for _, v := range values {
		assert.True(t, domain.ValidValue(v), "value %d out of range", v)
		assert.False(t, seen[v], "value %d drawn twice", v)
		seen[v] = true
	}
}

func TestDraw_Success(t *testing.T) {
	repo := newMockNumberRepo()
	svc := NewDrawService(repo, nil)

	got, err := svc.Draw(context.Background(), 5)
	require.NoError(t, err)
	require.Len(t, got, 5)
	assertUniqueInRange(t, got)

	all, err := svc.AllDrawn(context.Background())
	require.NoError(t, err)
	require.Len(t, all, 5)
	assert.Equal(t, got, domain.Values(all), "store should hold values in insertion order")
}

func TestDraw_InvalidCount(t *testing.T) {
	repo := newMockNumberRepo()
	svc := NewDrawService(repo, nil)

	for _, n := range []int{0, -1, -90} {
		_, err := svc.Draw(context.Background(), n)
		assert.ErrorIs(t, err, ErrInvalidCount)
	}
	assert.Equal(t, 0, repo.count())
}

func TestDraw_InvalidCountMessageNamesBounds(t *testing.T) {
	svc := NewDrawService(newMockNumberRepo(), nil)

	_, err := svc.Draw(context.Background(), 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "requested 0")
	assert.Contains(t, err.Error(), "90")
}

func TestDraw_PoolExhausted(t *testing.T) {
	repo := newMockNumberRepo()
	repo.seed(allValues()...)
	svc := NewDrawService(repo, nil)

	_, err := svc.Draw(context.Background(), 1)
	assert.ErrorIs(t, err, ErrPoolExhausted)
	assert.Equal(t, domain.PoolSize, repo.count())
}

func TestDraw_RequestExceedsRemaining(t *testing.T) {
	repo := newMockNumberRepo()
	repo.seed(allValues()[:85]...)
	svc := NewDrawService(repo, nil)

	_, err := svc.Draw(context.Background(), 6)
	require.ErrorIs(t, err, ErrPoolExhausted)
	assert.Contains(t, err.Error(), "requested 6")
	assert.Contains(t, err.Error(), "only 5")
	assert.Equal(t, 85, repo.count())

	got, err := svc.Draw(context.Background(), 5)
	require.NoError(t, err)
	assert.ElementsMatch(t, []int{86, 87, 88, 89, 90}, got)
}

func TestDraw_DrainsWholePool(t *testing.T) {
	svc := NewDrawService(newMockNumberRepo(), nil)

	got, err := svc.Draw(context.Background(), domain.PoolSize)
	require.NoError(t, err)
	assert.ElementsMatch(t, allValues(), got)

	remaining, err := svc.Remaining(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, remaining)
}

func TestDraw_NeverRepeatsStoredValues(t *testing.T) {
	repo := newMockNumberRepo()
	repo.seed(1, 2, 3, 4, 5)
	svc := NewDrawService(repo, nil)

	got, err := svc.Draw(context.Background(), 80)
	require.NoError(t, err)
	for _, v := range got {
		assert.Greater(t, v, 5)
	}
}

func TestDraw_PartialFailureKeepsCommittedValues(t *testing.T) {
	repo := newMockNumberRepo()
	repo.failAfter = 2
	svc := NewDrawService(repo, nil)

	got, err := svc.Draw(context.Background(), 5)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrPersistence)
	assert.ErrorIs(t, err, errStoreDown)

	var partial *PartialDrawError
	require.True(t, errors.As(err, &partial))
	assert.Len(t, partial.Added, 2)
	assert.Equal(t, 5, partial.Requested)
	assert.Equal(t, partial.Added, got)
	assert.Equal(t, 2, repo.count())
	assert.Contains(t, err.Error(), "added 2 of 5")
}

func TestDraw_LoadFailure(t *testing.T) {
	repo := newMockNumberRepo()
	repo.allDrawnErr = errStoreDown
	svc := NewDrawService(repo, nil)

	_, err := svc.Draw(context.Background(), 3)
	assert.ErrorIs(t, err, ErrPersistence)
	assert.Equal(t, 0, repo.count())
}

func TestDraw_DuplicateIsResampled(t *testing.T) {
	repo := newMockNumberRepo()
	repo.stealNext = 3
	svc := NewDrawService(repo, nil)

	got, err := svc.Draw(context.Background(), 4)
	require.NoError(t, err)
	require.Len(t, got, 4)

	all, err := svc.AllDrawn(context.Background())
	require.NoError(t, err)
	assert.Len(t, all, 7, "3 stolen values plus 4 drawn")
	assertUniqueInRange(t, domain.Values(all))
}

func TestDraw_DuplicateRetriesAreBounded(t *testing.T) {
	repo := newMockNumberRepo()
	repo.alwaysDuplicate = true
	svc := NewDrawService(repo, nil)

	_, err := svc.Draw(context.Background(), 5)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrPersistence)

	var partial *PartialDrawError
	require.True(t, errors.As(err, &partial))
	assert.Empty(t, partial.Added)
}

func TestDraw_DuplicateWhenPoolRunsDry(t *testing.T) {
	repo := newMockNumberRepo()
	repo.seed(allValues()[:89]...)
	repo.stealNext = 1
	svc := NewDrawService(repo, nil)

	_, err := svc.Draw(context.Background(), 1)
	assert.ErrorIs(t, err, ErrPoolExhausted)
	assert.Equal(t, domain.PoolSize, repo.count())
}

func TestDraw_ConcurrentSharedService(t *testing.T) {
	repo := newMockNumberRepo()
	svc := NewDrawService(repo, nil)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Draw(context.Background(), 9)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	all, err := svc.AllDrawn(context.Background())
	require.NoError(t, err)
	assert.Len(t, all, domain.PoolSize)
	assertUniqueInRange(t, domain.Values(all))
}

// Each writer has its own lock, as separate processes would, so only the
// store's unique constraint keeps values distinct.
func TestDraw_ConcurrentIndependentWriters(t *testing.T) {
	repo := newMockNumberRepo()

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			svc := NewDrawService(repo, NewLocalDrawLock())
			for j := 0; j < 5; j++ {
				_, err := svc.Draw(context.Background(), 2)
				assert.NoError(t, err)
			}
		}()
	}
	wg.Wait()

	all, err := repo.AllDrawn(context.Background())
	require.NoError(t, err)
	assert.Len(t, all, 40)
	assertUniqueInRange(t, domain.Values(all))
}

func TestDraw_RandomSequencesStayUnique(t *testing.T) {
	for seed := uint64(1); seed <= 20; seed++ {
		repo := newMockNumberRepo()
		svc := NewDrawService(repo, nil, WithRandSource(rand.NewPCG(seed, seed*7)))
		steps := rand.New(rand.NewPCG(seed, 99))

		for {
			remaining, err := svc.Remaining(context.Background())
			require.NoError(t, err)
			if remaining == 0 {
				break
			}
			n := 1 + steps.IntN(min(remaining, 12))
			before := repo.count()
			_, err = svc.Draw(context.Background(), n)
			require.NoError(t, err)
			require.Equal(t, before+n, repo.count())
		}

		all, err := repo.AllDrawn(context.Background())
		require.NoError(t, err)
		assertUniqueInRange(t, domain.Values(all))
		assert.Len(t, all, domain.PoolSize)
	}
}

func TestDraw_SeededSamplingIsDeterministic(t *testing.T) {
	draw := func() []int {
		svc := NewDrawService(newMockNumberRepo(), nil, WithRandSource(rand.NewPCG(42, 42)))
		got, err := svc.Draw(context.Background(), 10)
		require.NoError(t, err)
		return got
	}
	assert.Equal(t, draw(), draw())
}

func TestDrawnToday_UsesLocalDayWindow(t *testing.T) {
	loc := time.FixedZone("CET", 3600)
	clock := time.Date(2026, 3, 14, 23, 59, 0, 0, loc)

	repo := newMockNumberRepo()
	repo.now = func() time.Time { return clock }
	svc := NewDrawService(repo, nil, WithClock(func() time.Time { return clock }))

	_, err := svc.Draw(context.Background(), 3)
	require.NoError(t, err)

	today, err := svc.DrawnToday(context.Background())
	require.NoError(t, err)
	assert.Len(t, today, 3)

	clock = time.Date(2026, 3, 15, 0, 1, 0, 0, loc)
	today, err = svc.DrawnToday(context.Background())
	require.NoError(t, err)
	assert.Empty(t, today, "yesterday's draws must not count as today")

	_, err = svc.Draw(context.Background(), 2)
	require.NoError(t, err)

	today, err = svc.DrawnToday(context.Background())
	require.NoError(t, err)
	all, err := svc.AllDrawn(context.Background())
	require.NoError(t, err)
	assert.Len(t, today, 2)
	assert.Subset(t, domain.Values(all), domain.Values(today))
}

func TestBoard(t *testing.T) {
	repo := newMockNumberRepo()
	repo.seed(1, 90, 45, 10)
	svc := NewDrawService(repo, nil)

	board, err := svc.Board(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []int{1, 90, 45, 10}, board.Chronological)
	assert.Equal(t, 1, board.Grid[0][0])
	assert.Equal(t, 10, board.Grid[0][9])
	assert.Equal(t, 45, board.Grid[4][4])
	assert.Equal(t, 90, board.Grid[8][9])
	assert.Equal(t, 0, board.Grid[0][1])
	assert.Len(t, board.Today, 4)
}

func TestBoard_EmptyStoreIsValid(t *testing.T) {
	svc := NewDrawService(newMockNumberRepo(), nil)

	board, err := svc.Board(context.Background())
	require.NoError(t, err)
	assert.Empty(t, board.Chronological)
	assert.Empty(t, board.Today)
}
