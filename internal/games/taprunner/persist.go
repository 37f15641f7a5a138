package taprunner

import (
	"context"
)

// ScoreStore is the key-value collaborator holding the best score.
// ok is false when the key has never been written.
type ScoreStore interface {
	Get(ctx context.Context, key string) (value int, ok bool, err error)
	Set(ctx context.Context, key string, value int) error
}

// loadBest reads the persisted best score. Failures leave it at zero.
func (e *Engine) loadBest() {
	if e.store == nil {
		return
	}
	key := e.cfg.Session.BestScoreKey
	v, ok, err := e.store.Get(e.ctx, key)
	if err != nil {
		e.logger.Warn("cannot read best score", "key", key, "err", err)
		return
	}
	if ok && v > 0 {
		e.best = v
	}
}

// Flush writes the best score if it improved since the last successful
// write. It runs automatically when a session ends; hosts call it when
// quitting mid-session. A failed write is logged and retried on the next
// flush.
func (e *Engine) Flush() {
	if !e.bestDirty || e.store == nil {
		return
	}
	key := e.cfg.Session.BestScoreKey
	if err := e.store.Set(e.ctx, key, e.best); err != nil {
		e.logger.Warn("cannot persist best score", "key", key, "value", e.best, "err", err)
		return
	}
	e.bestDirty = false
}

// PendingWrite reports whether an improved best score has not been stored yet.
func (e *Engine) PendingWrite() bool {
	return e.bestDirty && e.store != nil
}
