package runcache

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/hybridchat/internal/db"
	"github.com/kailas-cloud/hybridchat/internal/domain/run"
)

type mockDelegator struct {
	run   *run.Run
	calls int
}

func (m *mockDelegator) Delegate(_ context.Context, _ string) *run.Run {
	m.calls++
	return m.run
}

func completedRun(text string) *run.Run {
	r := run.New("run_1", "thread_1", time.Now())
	r.Advance(run.Completed)
	r.SetText(text)
	r.Finish(run.OutcomeExtracted)
	return r
}

// mockKVStore implements the consumer interface for tests.
type mockKVStore struct {
	getFn func(ctx context.Context, key string) ([]byte, error)
	setFn func(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

func (m *mockKVStore) Get(ctx context.Context, key string) ([]byte, error) {
	if m.getFn != nil {
		return m.getFn(ctx, key)
	}
	return nil, db.ErrKeyNotFound
}

func (m *mockKVStore) SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if m.setFn != nil {
		return m.setFn(ctx, key, value, ttl)
	}
	return nil
}

func newTestCachedDelegator(t *testing.T, inner *mockDelegator) (*CachedDelegator, *mockKVStore) {
	t.Helper()
	ms := &mockKVStore{}
	cd := New(inner, ms, time.Hour, nil, zap.NewNop())
	return cd, ms
}
