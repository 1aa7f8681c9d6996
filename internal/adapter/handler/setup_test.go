package handler

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/rl1809/banko/internal/adapter/storage"
	"github.com/rl1809/banko/internal/core/domain"
	"github.com/rl1809/banko/internal/core/service"
)

const (
	testAdminUser = "host"
	testAdminPass = "secret"
	// httptest.NewRequest uses this remote address
	testRemoteHost = "192.0.2.1"
)

type fakeNotifier struct {
	mu  sync.Mutex
	err error
}

func (f *fakeNotifier) VerifyAndNotify(ctx context.Context, name string, claimType domain.ClaimType) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.err
}

type testEnv struct {
	store    *storage.SQLiteAdapter
	sessions *storage.MemorySessionStore
	notifier *fakeNotifier
	draws    *service.DrawService
	claims   *service.ClaimService
	gate     *service.AccessGate
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()
	store, err := storage.OpenSQLite(filepath.Join(t.TempDir(), "banko.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	notifier := &fakeNotifier{}
	return &testEnv{
		store:    store,
		sessions: storage.NewMemorySessionStore(time.Hour),
		notifier: notifier,
		draws:    service.NewDrawService(store, nil),
		claims:   service.NewClaimService(store, notifier, nil),
		gate:     service.NewAccessGate(testAdminUser, testAdminPass),
	}
}

func (e *testEnv) drawnCount(t *testing.T) int {
	t.Helper()
	all, err := e.store.AllDrawn(context.Background())
	require.NoError(t, err)
	return len(all)
}
