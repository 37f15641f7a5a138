// Package storage provides persistence backends for the tap runner best
// score and the run history. All backends share the same key-value shape:
// a best-score value stored under a key never decreases.
package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"time"
)

// ErrClosed is returned by stores used after Close.
var ErrClosed = errors.New("storage: store is closed")

// Backend is a best-score key-value store.
type Backend interface {
	// Get returns the value stored under key. ok is false when the key has
	// never been written.
	Get(ctx context.Context, key string) (value int, ok bool, err error)

	// Set stores value under key unless a larger value is already stored.
	Set(ctx context.Context, key string, value int) error

	// Close releases the backend's resources.
	Close() error
}

// Run is one finished session.
type Run struct {
	ID        string // UUID assigned on record
	Player    string // Local user or SSH session name
	Score     int
	Ticks     uint64
	Reason    string // "floor" or "obstacle"; sessions left early are not recorded
	Seed      int64
	CreatedAt time.Time
}

// RunRecorder is implemented by backends that keep a run history.
type RunRecorder interface {
	RecordRun(ctx context.Context, run Run) (Run, error)
	TopRuns(ctx context.Context, limit int) ([]Run, error)
	RecentRuns(ctx context.Context, limit int) ([]Run, error)
}

// Stats contains aggregated run statistics.
type Stats struct {
	RunsCount  int
	HighScore  int
	AvgScore   float64
	TotalScore int64
	LastPlayed time.Time
}

// expandHome expands a leading ~ to the user's home directory.
func expandHome(path string) (string, error) {
	if path == "" || path[0] != '~' {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, path[1:]), nil
}

// parseTime converts a sqlite DATETIME column, which the driver may return
// as time.Time or as a string.
func parseTime(v any) time.Time {
	switch t := v.(type) {
	case time.Time:
		return t
	case string:
		if parsed, err := time.Parse("2006-01-02 15:04:05", t); err == nil {
			return parsed
		}
	}
	return time.Time{}
}
