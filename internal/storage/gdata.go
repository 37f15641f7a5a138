package storage

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"github.com/quasilyte/gdata/v2"
)

// gdataObject is the save-data object holding best scores.
const gdataObject = "scores"

// GdataStore keeps best scores in the platform's per-user save directory
// (XDG data dir on Linux, browser storage on wasm) through gdata.
type GdataStore struct {
	mu      sync.Mutex
	manager *gdata.Manager
}

var _ Backend = (*GdataStore)(nil)

// OpenGdata opens the save-data area of the named application.
func OpenGdata(appName string) (*GdataStore, error) {
	if appName == "" {
		appName = "taprunner"
	}
	manager, err := gdata.Open(gdata.Config{AppName: appName})
	if err != nil {
		return nil, fmt.Errorf("storage: cannot open save data %q: %w", appName, err)
	}
	return NewGdataStore(manager), nil
}

// NewGdataStore wraps an existing gdata manager.
func NewGdataStore(manager *gdata.Manager) *GdataStore {
	return &GdataStore{manager: manager}
}

// Get returns the value stored under key.
func (g *GdataStore) Get(_ context.Context, key string) (int, bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.load(key)
}

func (g *GdataStore) load(key string) (int, bool, error) {
	if !g.manager.ObjectPropExists(gdataObject, key) {
		return 0, false, nil
	}
	data, err := g.manager.LoadObjectProp(gdataObject, key)
	if err != nil {
		return 0, false, fmt.Errorf("storage: cannot load %q: %w", key, err)
	}
	v, err := strconv.Atoi(string(data))
	if err != nil {
		return 0, false, fmt.Errorf("storage: corrupt value for %q: %w", key, err)
	}
	return v, true, nil
}

// Set stores value under key unless a larger value is already stored.
// A corrupt stored value is overwritten.
func (g *GdataStore) Set(_ context.Context, key string, value int) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if cur, ok, err := g.load(key); err == nil && ok && cur >= value {
		return nil
	}
	if err := g.manager.SaveObjectProp(gdataObject, key, []byte(strconv.Itoa(value))); err != nil {
		return fmt.Errorf("storage: cannot save %q: %w", key, err)
	}
	return nil
}

// Close is a no-op; gdata writes through on every save.
func (g *GdataStore) Close() error {
	return nil
}
