package storage

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/rl1809/banko/internal/core/domain"
)

type memorySession struct {
	principal domain.Principal
	expiresAt time.Time
}

// MemorySessionStore keeps sessions in process memory. Used when Redis is
// not configured.
type MemorySessionStore struct {
	mu       sync.Mutex
	sessions map[string]memorySession
	ttl      time.Duration
	now      func() time.Time
}

func NewMemorySessionStore(ttl time.Duration) *MemorySessionStore {
	return &MemorySessionStore{
		sessions: make(map[string]memorySession),
		ttl:      ttl,
		now:      time.Now,
	}
}

func (m *MemorySessionStore) Create(ctx context.Context, principal domain.Principal) (string, error) {
	token := uuid.NewString()

	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[token] = memorySession{principal: principal, expiresAt: m.now().Add(m.ttl)}
	return token, nil
}

func (m *MemorySessionStore) Principal(ctx context.Context, token string) (domain.Principal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[token]
	if !ok {
		return domain.Anonymous, nil
	}
	if m.ttl > 0 && !m.now().Before(s.expiresAt) {
		delete(m.sessions, token)
		return domain.Anonymous, nil
	}
	return s.principal, nil
}

func (m *MemorySessionStore) Delete(ctx context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, token)
	return nil
}
