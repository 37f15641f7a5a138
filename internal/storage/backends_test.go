package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/quasilyte/gdata/v2"
)

func TestMemoryStore(t *testing.T) {
	m := NewMemoryStore()
	ctx := context.Background()

	if _, ok, _ := m.Get(ctx, "k"); ok {
		t.Fatal("empty store reported a value")
	}
	m.Set(ctx, "k", 5)
	m.Set(ctx, "k", 2)
	if v, ok, _ := m.Get(ctx, "k"); !ok || v != 5 {
		t.Errorf("Get() = %d, %v; want 5", v, ok)
	}

	for _, s := range []int{3, 9, 1, 9} {
		m.RecordRun(ctx, Run{Score: s})
	}
	top, _ := m.TopRuns(ctx, 3)
	if len(top) != 3 || top[0].Score != 9 || top[1].Score != 9 || top[2].Score != 3 {
		t.Errorf("TopRuns() = %v", top)
	}
	recent, _ := m.RecentRuns(ctx, 2)
	if len(recent) != 2 || recent[0].Score != 9 || recent[1].Score != 1 {
		t.Errorf("RecentRuns() = %v", recent)
	}

	m.Close()
	if err := m.Set(ctx, "k", 10); !errors.Is(err, ErrClosed) {
		t.Errorf("Set() after Close() = %v, want ErrClosed", err)
	}
}

// recordingBackend counts writes and can fail on demand.
type recordingBackend struct {
	mu     sync.Mutex
	values map[string]int
	writes int
	fail   bool
}

func (r *recordingBackend) Get(_ context.Context, key string) (int, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.values[key]
	return v, ok, nil
}

func (r *recordingBackend) Set(_ context.Context, key string, value int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail {
		return errors.New("unavailable")
	}
	r.writes++
	r.values[key] = value
	return nil
}

func (r *recordingBackend) Close() error { return nil }

func (r *recordingBackend) setFail(v bool) {
	r.mu.Lock()
	r.fail = v
	r.mu.Unlock()
}

func TestAsyncStoreWritesOnClose(t *testing.T) {
	inner := &recordingBackend{values: make(map[string]int)}
	a := NewAsyncStore(inner, nil)
	ctx := context.Background()

	for i := 1; i <= 50; i++ {
		if err := a.Set(ctx, "bestScore", i); err != nil {
			t.Fatalf("Set() = %v", err)
		}
	}
	if err := a.Close(); err != nil {
		t.Fatal(err)
	}

	if inner.values["bestScore"] != 50 {
		t.Errorf("stored value = %d, want 50", inner.values["bestScore"])
	}
	if inner.writes == 0 || inner.writes > 50 {
		t.Errorf("writes = %d", inner.writes)
	}
}

func TestAsyncStoreGetSeesQueuedValue(t *testing.T) {
	inner := &recordingBackend{values: map[string]int{"bestScore": 3}}
	inner.setFail(true)
	a := NewAsyncStore(inner, nil)
	defer a.Close()
	ctx := context.Background()

	a.Set(ctx, "bestScore", 8)
	v, ok, err := a.Get(ctx, "bestScore")
	if err != nil || !ok || v < 3 {
		t.Fatalf("Get() = %d, %v, %v", v, ok, err)
	}

	// The failing write stays queued and shows through Get
	deadline := time.Now().Add(2 * time.Second)
	for a.Pending() == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if v, _, _ := a.Get(ctx, "bestScore"); v != 8 {
		t.Errorf("Get() = %d, want queued 8", v)
	}
	inner.setFail(false)
}

func TestAsyncStoreRetriesFailedWrite(t *testing.T) {
	inner := &recordingBackend{values: make(map[string]int)}
	inner.setFail(true)
	a := NewAsyncStore(inner, nil)
	ctx := context.Background()

	a.Set(ctx, "bestScore", 4)
	deadline := time.Now().Add(2 * time.Second)
	for a.Pending() == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}

	inner.setFail(false)
	a.Close()
	if inner.values["bestScore"] != 4 {
		t.Errorf("failed write was not retried, stored %d", inner.values["bestScore"])
	}
}

func TestAsyncWriterLeavesInnerOpen(t *testing.T) {
	inner := NewMemoryStore()
	a := NewAsyncWriter(inner, nil)
	ctx := context.Background()

	a.Set(ctx, "bestScore", 6)
	if err := a.Close(); err != nil {
		t.Fatal(err)
	}
	if v, ok, err := inner.Get(ctx, "bestScore"); err != nil || !ok || v != 6 {
		t.Fatalf("inner Get() = %d, %v, %v; want 6", v, ok, err)
	}
	if err := inner.Set(ctx, "bestScore", 7); err != nil {
		t.Errorf("inner closed by writer: %v", err)
	}
}

func TestGdataStore(t *testing.T) {
	appName := fmt.Sprintf("taprunner_test_%d", time.Now().UnixNano())
	manager, err := gdata.Open(gdata.Config{AppName: appName})
	if err != nil {
		t.Skip("Cannot create gdata manager for testing")
	}
	t.Cleanup(func() {
		if home, err := os.UserHomeDir(); err == nil {
			os.RemoveAll(filepath.Join(home, ".local", "share", appName))
		}
	})

	g := NewGdataStore(manager)
	ctx := context.Background()

	if _, ok, err := g.Get(ctx, "bestScore"); err != nil || ok {
		t.Fatalf("Get() on fresh save data = %v, %v", ok, err)
	}
	if err := g.Set(ctx, "bestScore", 12); err != nil {
		t.Fatalf("Set() failed: %v", err)
	}
	g.Set(ctx, "bestScore", 4)

	v, ok, err := g.Get(ctx, "bestScore")
	if err != nil || !ok || v != 12 {
		t.Errorf("Get() = %d, %v, %v; want 12", v, ok, err)
	}
}

func TestRedisStore(t *testing.T) {
	addr := os.Getenv("TAPRUNNER_TEST_REDIS")
	if addr == "" {
		t.Skip("TAPRUNNER_TEST_REDIS not set")
	}
	ctx := context.Background()

	r, err := OpenRedis(ctx, addr)
	if err != nil {
		t.Fatalf("OpenRedis() failed: %v", err)
	}
	defer r.Close()

	key := fmt.Sprintf("test_%d", time.Now().UnixNano())
	defer r.Delete(ctx, key)

	if _, ok, err := r.Get(ctx, key); err != nil || ok {
		t.Fatalf("Get() on missing key = %v, %v", ok, err)
	}
	r.Set(ctx, key, 6)
	r.Set(ctx, key, 2)
	if v, ok, err := r.Get(ctx, key); err != nil || !ok || v != 6 {
		t.Errorf("Get() = %d, %v, %v; want 6", v, ok, err)
	}
}
