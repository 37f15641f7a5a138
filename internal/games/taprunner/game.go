// Package taprunner implements the single-button tap runner engine.
// A player falls under gravity, taps apply an upward impulse, and obstacle
// pairs scroll toward the player. The engine is pure game logic: it never
// draws, owns no goroutines, and is driven by a host calling Tick once per
// frame.
package taprunner

import (
	"context"
	"io"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/taprunner/internal/config"
	"github.com/vovakirdan/taprunner/internal/core"
)

// Options carries the engine's external collaborators. All fields are optional.
type Options struct {
	Store   ScoreStore      // Best score persistence, nil = in-memory only
	Logger  *log.Logger     // Persistence failures are logged here
	Rand    RandFactory     // Gap placement source, default math/rand
	Context context.Context // Used for store calls, default Background
}

// Engine is one tap runner session. It is not safe for concurrent use:
// a single frame driver calls Submit and Tick.
type Engine struct {
	cfg     config.Config // Resolved
	field   core.Field
	restart core.Rect
	gen     *Generator

	player    PlayerBody
	obstacles []ObstaclePair
	state     SessionState

	score         int
	best          int
	bestDirty     bool
	rewardReached bool

	tick      uint64
	elapsedMs float64
	bgOffset  float64
	seed      int64

	pending []Intent
	events  []Event

	store  ScoreStore
	logger *log.Logger
	ctx    context.Context
}

// New validates cfg and creates an engine in the Ready state. The best score
// is read from the store once here. An inconsistent config yields a
// *config.ConfigurationError and no engine.
func New(cfg config.Config, opts Options) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	resolved := cfg.Resolved()

	gen, err := NewGenerator(resolved, opts.Rand)
	if err != nil {
		return nil, err
	}

	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}

	rc := resolved.Session.RestartControl
	e := &Engine{
		cfg:       resolved,
		field:     core.Field{Width: resolved.Field.Width, Height: resolved.Field.Height},
		restart:   core.NewRect(rc.X, rc.Y, rc.W, rc.H),
		gen:       gen,
		obstacles: make([]ObstaclePair, 0, 8),
		seed:      resolved.Seed,
		store:     opts.Store,
		logger:    logger,
		ctx:       ctx,
	}
	e.reset()
	e.loadBest()
	return e, nil
}

// Submit buffers an intent. It is applied at the start of the next Tick.
func (e *Engine) Submit(in Intent) {
	e.pending = append(e.pending, in)
}

// Tick advances the engine by elapsedMs and returns the resulting snapshot.
// Only pending intents are processed while Ready or GameOver.
func (e *Engine) Tick(elapsedMs float64) Snapshot {
	e.events = e.events[:0]

	flap := e.drainIntents()
	if e.state == StatePlaying {
		e.step(e.stepFactor(elapsedMs), flap)
	}
	return e.Snapshot()
}

// drainIntents applies buffered intents in submission order and reports
// whether the player flaps this tick.
func (e *Engine) drainIntents() bool {
	flap := false
	for _, in := range e.pending {
		switch in.Kind {
		case IntentTap:
			switch e.state {
			case StateReady:
				e.state = StatePlaying
				e.emit(Event{Kind: EventStarted})
				flap = true
			case StatePlaying:
				flap = true
			case StateGameOver:
				if in.HasPoint && e.IsInsideRestartControl(in.X, in.Y) {
					e.restartSession()
				}
			}
		case IntentRestart:
			if e.state == StateGameOver {
				e.restartSession()
			}
		}
	}
	e.pending = e.pending[:0]
	return flap
}

// IsInsideRestartControl reports whether a point in virtual units is inside
// the restart control shown on the game over screen.
func (e *Engine) IsInsideRestartControl(x, y float64) bool {
	return e.restart.Contains(x, y)
}

// RestartControl returns the restart control rectangle in virtual units.
func (e *Engine) RestartControl() core.Rect {
	return e.restart
}

// SetSeed changes the gap placement seed used by the next fresh session.
// While Ready no pair exists yet, so it applies immediately.
func (e *Engine) SetSeed(seed int64) {
	e.seed = seed
	if e.state == StateReady && len(e.obstacles) == 0 {
		e.gen.Reset(seed)
	}
}

// Seed returns the current gap placement seed.
func (e *Engine) Seed() int64 {
	return e.seed
}

// State returns the current session state.
func (e *Engine) State() SessionState {
	return e.state
}

// Score returns the current session score.
func (e *Engine) Score() int {
	return e.score
}

// BestScore returns the best score known to this engine.
func (e *Engine) BestScore() int {
	return e.best
}

// Config returns the resolved configuration.
func (e *Engine) Config() config.Config {
	return e.cfg
}

// Field returns the virtual play field.
func (e *Engine) Field() core.Field {
	return e.field
}

func (e *Engine) restartSession() {
	e.reset()
	e.emit(Event{Kind: EventRestarted})
}

// reset puts the session into a fresh Ready state. The best score survives.
func (e *Engine) reset() {
	e.state = StateReady
	e.player = NewPlayer(e.cfg.Player)
	e.obstacles = e.obstacles[:0]
	e.gen.Reset(e.seed)
	e.score = 0
	e.rewardReached = false
	e.tick = 0
	e.elapsedMs = 0
	e.bgOffset = 0
}

// endSession freezes the session and flushes an improved best score.
func (e *Engine) endSession(reason GameOverReason) {
	e.state = StateGameOver
	e.emit(Event{Kind: EventGameOver, Reason: reason})
	e.Flush()
}

func (e *Engine) emit(ev Event) {
	ev.Score = e.score
	e.events = append(e.events, ev)
}
