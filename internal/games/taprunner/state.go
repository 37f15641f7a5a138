package taprunner

// SessionState is the engine's top-level mode.
type SessionState int

const (
	StateReady    SessionState = iota // Waiting for the first tap, no physics
	StatePlaying                      // Physics, spawning and scoring active
	StateGameOver                     // Frozen until a restart
)

// String returns a human-readable name for the state.
func (s SessionState) String() string {
	switch s {
	case StateReady:
		return "ready"
	case StatePlaying:
		return "playing"
	case StateGameOver:
		return "game_over"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (s SessionState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// IntentKind identifies a discrete input event.
type IntentKind int

const (
	IntentTap IntentKind = iota
	IntentRestart
)

// Intent is a discrete input submitted by the host. Coordinates are in
// virtual field units and only meaningful when HasPoint is set.
type Intent struct {
	Kind     IntentKind
	X, Y     float64
	HasPoint bool
}

// Tap returns a tap intent without a pointer position (keyboard).
func Tap() Intent {
	return Intent{Kind: IntentTap}
}

// TapAt returns a tap intent at a point in virtual units (mouse, touch).
func TapAt(x, y float64) Intent {
	return Intent{Kind: IntentTap, X: x, Y: y, HasPoint: true}
}

// RestartRequest returns an explicit restart intent.
func RestartRequest() Intent {
	return Intent{Kind: IntentRestart}
}

// EventKind identifies something that happened during a tick.
type EventKind int

const (
	EventStarted EventKind = iota
	EventFlapped
	EventScored
	EventRewardReached
	EventBestImproved
	EventGameOver
	EventRestarted
)

// String returns a human-readable name for the event kind.
func (k EventKind) String() string {
	switch k {
	case EventStarted:
		return "started"
	case EventFlapped:
		return "flapped"
	case EventScored:
		return "scored"
	case EventRewardReached:
		return "reward_reached"
	case EventBestImproved:
		return "best_improved"
	case EventGameOver:
		return "game_over"
	case EventRestarted:
		return "restarted"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (k EventKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// GameOverReason tells why a session ended.
type GameOverReason int

const (
	ReasonNone GameOverReason = iota
	ReasonFloor
	ReasonObstacle
)

// String returns a human-readable name for the reason.
func (r GameOverReason) String() string {
	switch r {
	case ReasonFloor:
		return "floor"
	case ReasonObstacle:
		return "obstacle"
	default:
		return "none"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (r GameOverReason) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// Event is emitted by Tick. Score is the session score after the event.
type Event struct {
	Kind   EventKind      `yaml:"kind"`
	Score  int            `yaml:"score"`
	Reason GameOverReason `yaml:"reason,omitempty"`
}
