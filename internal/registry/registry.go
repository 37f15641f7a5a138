// Package registry provides a global registry for best-score store backends.
// Backends register themselves in init() functions, allowing the CLI to
// open one by name without hardcoded dependencies.
package registry

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// Store is the key-value interface every backend implements.
type Store interface {
	// Get returns the value stored under key, ok is false if it was never set.
	Get(ctx context.Context, key string) (value int, ok bool, err error)

	// Set stores value under key unless a larger value is already stored.
	Set(ctx context.Context, key string, value int) error

	// Close releases the backend's resources.
	Close() error
}

// BackendInfo contains metadata about a registered backend.
type BackendInfo struct {
	Name        string
	Description string
	DefaultDSN  string
}

// Factory opens a backend for the given DSN (a path, URL or app name).
type Factory func(ctx context.Context, dsn string) (Store, error)

type entry struct {
	info    BackendInfo
	factory Factory
}

var (
	entries = make(map[string]entry)
	mu      sync.RWMutex
)

// Register adds a backend factory to the registry.
// Typically called from an init() function.
// Panics if a backend with the same name is already registered.
func Register(info BackendInfo, f Factory) {
	mu.Lock()
	defer mu.Unlock()

	if _, exists := entries[info.Name]; exists {
		panic(fmt.Sprintf("registry: backend %q already registered", info.Name))
	}
	entries[info.Name] = entry{info: info, factory: f}
}

// List returns information about all registered backends, sorted by name.
func List() []BackendInfo {
	mu.RLock()
	defer mu.RUnlock()

	result := make([]BackendInfo, 0, len(entries))
	for _, e := range entries {
		result = append(result, e.info)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Name < result[j].Name
	})

	return result
}

// Open opens a backend by name. An empty dsn uses the backend's default.
// Returns an error if the name is not registered.
func Open(ctx context.Context, name, dsn string) (Store, error) {
	mu.RLock()
	e, ok := entries[name]
	mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("registry: unknown store %q", name)
	}
	if dsn == "" {
		dsn = e.info.DefaultDSN
	}

	s, err := e.factory(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("registry: cannot open %s store: %w", name, err)
	}
	return s, nil
}

// Exists checks if a backend with the given name is registered.
func Exists(name string) bool {
	mu.RLock()
	defer mu.RUnlock()

	_, ok := entries[name]
	return ok
}
