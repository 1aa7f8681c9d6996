package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/rl1809/banko/internal/core/domain"
	"github.com/rl1809/banko/internal/port"
)

var errStoreDown = errors.New("store down")

// Mock NumberRepository with a unique constraint on value
type mockNumberRepo struct {
	mu      sync.Mutex
	numbers []domain.DrawnNumber
	nextID  int64
	now     func() time.Time

	// failAfter makes Append fail once this many appends have succeeded (<0 disables)
	failAfter int
	appended  int

	// stealNext simulates a writer outside the lock domain taking the value
	// just before our append lands
	stealNext int

	// alwaysDuplicate makes every Append report a collision
	alwaysDuplicate bool

	allDrawnErr error
}

func newMockNumberRepo() *mockNumberRepo {
	return &mockNumberRepo{now: time.Now, failAfter: -1}
}

func (m *mockNumberRepo) insertLocked(value int) int64 {
	m.nextID++
	m.numbers = append(m.numbers, domain.DrawnNumber{ID: m.nextID, Value: value, DrawnAt: m.now()})
	return m.nextID
}

func (m *mockNumberRepo) has(value int) bool {
	for _, n := range m.numbers {
		if n.Value == value {
			return true
		}
	}
	return false
}

func (m *mockNumberRepo) Append(ctx context.Context, value int) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.alwaysDuplicate {
		return 0, port.ErrDuplicateValue
	}
	if m.failAfter >= 0 && m.appended >= m.failAfter {
		return 0, errStoreDown
	}
	if m.stealNext > 0 {
		m.stealNext--
		m.insertLocked(value)
		return 0, port.ErrDuplicateValue
	}
	if m.has(value) {
		return 0, port.ErrDuplicateValue
	}
	m.appended++
	return m.insertLocked(value), nil
}

func (m *mockNumberRepo) AllDrawn(ctx context.Context) ([]domain.DrawnNumber, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.allDrawnErr != nil {
		return nil, m.allDrawnErr
	}
	out := make([]domain.DrawnNumber, len(m.numbers))
	copy(out, m.numbers)
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *mockNumberRepo) DrawnBetween(ctx context.Context, from, to time.Time) ([]domain.DrawnNumber, error) {
	all, err := m.AllDrawn(ctx)
	if err != nil {
		return nil, err
	}
	var out []domain.DrawnNumber
	for _, n := range all {
		if !n.DrawnAt.Before(from) && n.DrawnAt.Before(to) {
			out = append(out, n)
		}
	}
	return out, nil
}

func (m *mockNumberRepo) seed(values ...int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, v := range values {
		m.insertLocked(v)
	}
}

func (m *mockNumberRepo) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.numbers)
}

// Mock ClaimRepository
type mockClaimRepo struct {
	mu     sync.Mutex
	claims []domain.Claim
	err    error
}

func (m *mockClaimRepo) RecordClaim(ctx context.Context, name string, claimType domain.ClaimType) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.err != nil {
		return 0, m.err
	}
	id := int64(len(m.claims) + 1)
	m.claims = append(m.claims, domain.Claim{ID: id, ClaimantName: name, Type: claimType, RecordedAt: time.Now()})
	return id, nil
}

func (m *mockClaimRepo) ListClaims(ctx context.Context) ([]domain.Claim, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]domain.Claim, 0, len(m.claims))
	for i := len(m.claims) - 1; i >= 0; i-- {
		out = append(out, m.claims[i])
	}
	return out, nil
}

// Mock Notifier
type mockNotifier struct {
	mu    sync.Mutex
	err   error
	calls int
}

func (m *mockNotifier) VerifyAndNotify(ctx context.Context, claimantName string, claimType domain.ClaimType) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	return m.err
}
