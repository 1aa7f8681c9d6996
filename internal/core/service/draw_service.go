package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"go.uber.org/zap"

	"github.com/rl1809/banko/internal/core/domain"
	"github.com/rl1809/banko/internal/port"
)

// maxDuplicateRetries bounds re-sampling after unique constraint collisions
// caused by writers outside the lock domain.
const maxDuplicateRetries = 16

type DrawService struct {
	numbers port.NumberRepository
	lock    port.DrawLock
	log     *zap.Logger
	now     func() time.Time
	intN    func(n int) int
}

type DrawOption func(*DrawService)

func WithDrawLogger(log *zap.Logger) DrawOption {
	return func(s *DrawService) { s.log = log }
}

func WithClock(now func() time.Time) DrawOption {
	return func(s *DrawService) { s.now = now }
}

// WithRandSource makes sampling deterministic. The source is only used while
// the draw lock is held.
func WithRandSource(src rand.Source) DrawOption {
	r := rand.New(src)
	return func(s *DrawService) { s.intN = r.IntN }
}

func NewDrawService(numbers port.NumberRepository, lock port.DrawLock, opts ...DrawOption) *DrawService {
	if lock == nil {
		lock = NewLocalDrawLock()
	}
	s := &DrawService{
		numbers: numbers,
		lock:    lock,
		log:     zap.NewNop(),
		now:     time.Now,
		intN:    rand.IntN,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Draw samples n values without replacement from the undrawn pool and
// appends them to the store one at a time. Appends that succeeded before a
// failure stay committed and are reported through *PartialDrawError.
func (s *DrawService) Draw(ctx context.Context, n int) ([]int, error) {
	if n <= 0 {
		return nil, fmt.Errorf("%w: requested %d, must be between 1 and %d", ErrInvalidCount, n, domain.PoolSize)
	}

	unlock, err := s.lock.Lock(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: acquire draw lock: %w", ErrPersistence, err)
	}
	defer unlock()

	drawn, err := s.drawnSet(ctx)
	if err != nil {
		return nil, err
	}
	pool := poolOf(drawn)
	if n > len(pool) {
		return nil, fmt.Errorf("%w: requested %d, only %d numbers remain", ErrPoolExhausted, n, len(pool))
	}

	picked := s.sample(pool, n)
	// drawn now also holds this call's picks, so a replacement never
	// collides with a value still waiting to be appended.
	for _, v := range picked {
		drawn[v] = struct{}{}
	}

	added := make([]int, 0, n)
	retries := 0
	for _, v := range picked {
		for {
			_, err := s.numbers.Append(ctx, v)
			if err == nil {
				added = append(added, v)
				break
			}
			if !errors.Is(err, port.ErrDuplicateValue) {
				s.log.Error("append drawn number failed",
					zap.Int("value", v), zap.Int("added", len(added)), zap.Error(err))
				return added, &PartialDrawError{Requested: n, Added: added, Err: fmt.Errorf("%w: %w", ErrPersistence, err)}
			}

			retries++
			if retries > maxDuplicateRetries {
				return added, &PartialDrawError{
					Requested: n,
					Added:     added,
					Err:       fmt.Errorf("%w: gave up after %d duplicate collisions", ErrPersistence, maxDuplicateRetries),
				}
			}
			s.log.Warn("drawn number collided, resampling", zap.Int("value", v), zap.Int("retry", retries))

			v, err = s.replacement(ctx, drawn)
			if err != nil {
				return added, &PartialDrawError{Requested: n, Added: added, Err: err}
			}
		}
	}

	s.log.Info("numbers drawn", zap.Ints("values", added))
	return added, nil
}

// replacement refreshes the taken set from the store and picks one value
// from what is left.
func (s *DrawService) replacement(ctx context.Context, taken map[int]struct{}) (int, error) {
	fresh, err := s.drawnSet(ctx)
	if err != nil {
		return 0, err
	}
	for v := range fresh {
		taken[v] = struct{}{}
	}
	pool := poolOf(taken)
	if len(pool) == 0 {
		return 0, fmt.Errorf("%w: no numbers remain", ErrPoolExhausted)
	}
	v := pool[s.intN(len(pool))]
	taken[v] = struct{}{}
	return v, nil
}

// sample is a partial Fisher-Yates shuffle: the first n slots end up holding
// a uniformly random n-subset of pool.
func (s *DrawService) sample(pool []int, n int) []int {
	for i := 0; i < n; i++ {
		j := i + s.intN(len(pool)-i)
		pool[i], pool[j] = pool[j], pool[i]
	}
	return pool[:n:n]
}

func (s *DrawService) drawnSet(ctx context.Context) (map[int]struct{}, error) {
	all, err := s.numbers.AllDrawn(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: load drawn numbers: %w", ErrPersistence, err)
	}
	set := make(map[int]struct{}, len(all))
	for _, d := range all {
		set[d.Value] = struct{}{}
	}
	return set, nil
}

func poolOf(drawn map[int]struct{}) []int {
	pool := make([]int, 0, domain.PoolSize)
	for v := domain.MinValue; v <= domain.MaxValue; v++ {
		if _, ok := drawn[v]; !ok {
			pool = append(pool, v)
		}
	}
	return pool
}

func (s *DrawService) AllDrawn(ctx context.Context) ([]domain.DrawnNumber, error) {
	all, err := s.numbers.AllDrawn(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	return all, nil
}

// DrawnToday returns the numbers drawn within the current local calendar day.
// The window is computed at call time.
func (s *DrawService) DrawnToday(ctx context.Context) ([]domain.DrawnNumber, error) {
	from, to := dayWindow(s.now())
	today, err := s.numbers.DrawnBetween(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	return today, nil
}

func (s *DrawService) Board(ctx context.Context) (domain.Board, error) {
	all, err := s.AllDrawn(ctx)
	if err != nil {
		return domain.Board{}, err
	}
	today, err := s.DrawnToday(ctx)
	if err != nil {
		return domain.Board{}, err
	}
	return domain.NewBoard(all, today), nil
}

// Remaining reports how many values are still in the pool.
func (s *DrawService) Remaining(ctx context.Context) (int, error) {
	drawn, err := s.drawnSet(ctx)
	if err != nil {
		return 0, err
	}
	return len(poolOf(drawn)), nil
}

func dayWindow(now time.Time) (time.Time, time.Time) {
	y, m, d := now.Date()
	start := time.Date(y, m, d, 0, 0, 0, 0, now.Location())
	return start, start.AddDate(0, 0, 1)
}
