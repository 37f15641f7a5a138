package tui

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/taprunner/internal/config"
	"github.com/vovakirdan/taprunner/internal/metrics"
	"github.com/vovakirdan/taprunner/internal/storage"
)

// Services are the process-wide collaborators shared by every session.
// Any field may be nil.
type Services struct {
	Store   storage.Backend
	Runs    storage.RunRecorder
	Metrics *metrics.Metrics
	Logger  *log.Logger
}

func (s Services) logger() *log.Logger {
	if s.Logger == nil {
		return log.New(io.Discard)
	}
	return s.Logger
}

// BestScore reads the stored best score for cfg's key, 0 when unknown.
func (s Services) BestScore(ctx context.Context, cfg config.Config) int {
	if s.Store == nil {
		return 0
	}
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	best, ok, err := s.Store.Get(ctx, cfg.Resolved().Session.BestScoreKey)
	if err != nil {
		s.logger().Warn("could not read best score", "error", err)
		return 0
	}
	if !ok {
		return 0
	}
	return best
}

// GameOptions builds the options of one game session.
func (s Services) GameOptions(cfg config.Config, player string) GameOptions {
	return GameOptions{
		Config:  cfg,
		Store:   s.Store,
		Runs:    s.Runs,
		Metrics: s.Metrics,
		Logger:  s.logger(),
		Player:  player,
	}
}
