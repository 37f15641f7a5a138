package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/user"

	"github.com/charmbracelet/log"
	"golang.org/x/term"

	"github.com/vovakirdan/taprunner/internal/config"
	"github.com/vovakirdan/taprunner/internal/core"
	"github.com/vovakirdan/taprunner/internal/platform/tui"
	"github.com/vovakirdan/taprunner/internal/registry"
	"github.com/vovakirdan/taprunner/internal/storage"
)

// newLogger creates the process logger. Interactive commands own the
// terminal, so they log to --log-file or nowhere.
func newLogger(interactive bool) (*log.Logger, func(), error) {
	level, err := log.ParseLevel(flagLogLevel)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid --log-level: %w", err)
	}

	var w io.Writer = os.Stderr
	cleanup := func() {}
	if interactive {
		w = io.Discard
		if flagLogFile != "" {
			f, err := os.OpenFile(flagLogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
			if err != nil {
				return nil, nil, fmt.Errorf("cannot open log file: %w", err)
			}
			w = f
			cleanup = func() { f.Close() }
		}
	}

	logger := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		Level:           level,
		Prefix:          "taprunner",
	})
	return logger, cleanup, nil
}

// loadGameConfig loads the game config and applies --seed.
func loadGameConfig() (config.Config, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return cfg, err
	}
	if flagSeed != 0 {
		cfg.Seed = flagSeed
	}
	return cfg, nil
}

// openServices opens the configured store. With async set, writes go through
// a background writer. A store that cannot be opened is reported and the
// game continues with an in-memory one when required is false.
func openServices(ctx context.Context, logger *log.Logger, async, required bool) (tui.Services, func(), error) {
	svc := tui.Services{Logger: logger}

	raw, err := registry.Open(ctx, flagStore, flagDSN)
	if err != nil {
		if required {
			return svc, nil, err
		}
		logger.Warn("could not open store, scores will not be kept", "store", flagStore, "error", err)
		raw = storage.NewMemoryStore()
	}

	var backend storage.Backend = raw
	if runs, ok := raw.(storage.RunRecorder); ok {
		svc.Runs = runs
	}
	if async {
		backend = storage.NewAsyncStore(backend, logger)
	}
	svc.Store = backend

	cleanup := func() {
		if err := backend.Close(); err != nil && !errors.Is(err, storage.ErrClosed) {
			logger.Warn("could not close store", "error", err)
		}
	}
	return svc, cleanup, nil
}

// runtimeConfig returns the host settings for the current terminal.
func runtimeConfig() core.RuntimeConfig {
	rt := core.DefaultConfig()
	if w, h, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
		rt.ScreenW = w
		rt.ScreenH = h
	}
	rt.TickRate = flagFPS
	rt.Seed = flagSeed
	return rt
}

// playerName is recorded with local runs.
func playerName() string {
	if u, err := user.Current(); err == nil && u.Username != "" {
		return u.Username
	}
	return "local"
}

func exitErr(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}
