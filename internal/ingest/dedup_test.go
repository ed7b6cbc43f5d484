package ingest

import (
	"context"
	"sync"
	"testing"
	"time"

	"leadflow_backend/platform/logger"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

type fakeRecordStore struct {
	mu       sync.Mutex
	reserved map[string]bool
	calls    int
}

func newFakeRecordStore() *fakeRecordStore {
	return &fakeRecordStore{reserved: make(map[string]bool)}
}

func (f *fakeRecordStore) Reserve(_ context.Context, dedupKey string, _ uuid.UUID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.reserved[dedupKey] {
		return false, nil
	}
	f.reserved[dedupKey] = true
	return true, nil
}

func newTestRedis(t *testing.T) *redis.Client {
	t.Helper()
	srv := miniredis.RunT(t)
	return redis.NewClient(&redis.Options{Addr: srv.Addr()})
}

func TestGuardFreshThenDuplicate(t *testing.T) {
	store := newFakeRecordStore()
	guard := NewGuard(newTestRedis(t), store, time.Hour, logger.New("development"))
	tenantID := uuid.New()

	fresh, err := guard.CheckAndReserve(context.Background(), "reply:r-1", tenantID)
	if err != nil {
		t.Fatalf("CheckAndReserve: %v", err)
	}
	if !fresh {
		t.Fatal("first reservation must be fresh")
	}

	fresh, err = guard.CheckAndReserve(context.Background(), "reply:r-1", tenantID)
	if err != nil {
		t.Fatalf("CheckAndReserve: %v", err)
	}
	if fresh {
		t.Error("second reservation must be a duplicate")
	}
	if store.calls != 1 {
		t.Errorf("durable store calls = %d, want 1 (fast path must short-circuit)", store.calls)
	}
}

func TestGuardDistinctKeysAreIndependent(t *testing.T) {
	store := newFakeRecordStore()
	guard := NewGuard(newTestRedis(t), store, time.Hour, logger.New("development"))
	tenantID := uuid.New()

	for _, key := range []string{"reply:r-1", "reply:r-2", "workflow:wf:lead:SUCCESS"} {
		fresh, err := guard.CheckAndReserve(context.Background(), key, tenantID)
		if err != nil {
			t.Fatalf("CheckAndReserve(%s): %v", key, err)
		}
		if !fresh {
			t.Errorf("key %s must be fresh", key)
		}
	}
}

func TestGuardWithoutRedisUsesDurableRecord(t *testing.T) {
	store := newFakeRecordStore()
	guard := NewGuard(nil, store, time.Hour, logger.New("development"))
	tenantID := uuid.New()

	fresh, _ := guard.CheckAndReserve(context.Background(), "reply:r-1", tenantID)
	if !fresh {
		t.Fatal("first reservation must be fresh")
	}
	fresh, _ = guard.CheckAndReserve(context.Background(), "reply:r-1", tenantID)
	if fresh {
		t.Error("second reservation must be a duplicate")
	}
	if store.calls != 2 {
		t.Errorf("durable store calls = %d, want 2", store.calls)
	}
}

func TestGuardDegradesWhenRedisDown(t *testing.T) {
	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	srv.Close()

	store := newFakeRecordStore()
	guard := NewGuard(client, store, time.Hour, logger.New("development"))

	fresh, err := guard.CheckAndReserve(context.Background(), "reply:r-1", uuid.New())
	if err != nil {
		t.Fatalf("CheckAndReserve must degrade to the durable path, got %v", err)
	}
	if !fresh {
		t.Error("durable path must still answer fresh")
	}
}
