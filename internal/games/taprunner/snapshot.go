package taprunner

import (
	"github.com/vovakirdan/taprunner/internal/core"
)

// Snapshot is a read-only copy of the engine state for the presentation
// layer. Mutating it never affects the engine.
type Snapshot struct {
	State     SessionState `yaml:"state"`
	Score     int          `yaml:"score"`
	BestScore int          `yaml:"best_score"`

	Player    PlayerBody     `yaml:"player"`
	Obstacles []ObstaclePair `yaml:"obstacles"`

	FieldWidth  float64 `yaml:"field_width"`
	FieldHeight float64 `yaml:"field_height"`

	Tick             uint64    `yaml:"tick"`       // Playing ticks this session
	ElapsedMs        float64   `yaml:"elapsed_ms"` // Clamped playing time this session
	BackgroundOffset float64   `yaml:"background_offset"`
	RestartControl   core.Rect `yaml:"restart_control"`
	RewardReached    bool      `yaml:"reward_reached"`

	// Events emitted by the last tick, in order.
	Events []Event `yaml:"events,omitempty"`
}

// Snapshot returns a deep copy of the current state.
func (e *Engine) Snapshot() Snapshot {
	obstacles := make([]ObstaclePair, len(e.obstacles))
	copy(obstacles, e.obstacles)

	var events []Event
	if len(e.events) > 0 {
		events = make([]Event, len(e.events))
		copy(events, e.events)
	}

	return Snapshot{
		State:            e.state,
		Score:            e.score,
		BestScore:        e.best,
		Player:           e.player,
		Obstacles:        obstacles,
		FieldWidth:       e.field.Width,
		FieldHeight:      e.field.Height,
		Tick:             e.tick,
		ElapsedMs:        e.elapsedMs,
		BackgroundOffset: e.bgOffset,
		RestartControl:   e.restart,
		RewardReached:    e.rewardReached,
		Events:           events,
	}
}

// Field returns the snapshot's play field.
func (s Snapshot) Field() core.Field {
	return core.Field{Width: s.FieldWidth, Height: s.FieldHeight}
}

// Has reports whether the last tick emitted an event of the given kind.
func (s Snapshot) Has(kind EventKind) bool {
	for _, ev := range s.Events {
		if ev.Kind == kind {
			return true
		}
	}
	return false
}

// GameOverReason returns why the session ended on the last tick, if it did.
func (s Snapshot) GameOverReason() GameOverReason {
	for _, ev := range s.Events {
		if ev.Kind == EventGameOver {
			return ev.Reason
		}
	}
	return ReasonNone
}
