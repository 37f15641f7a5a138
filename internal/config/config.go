// Package config provides YAML-based game configuration loading and
// validation for the tap runner engine.
package config

// Config contains all tunables of the tap runner engine. Every numeric value
// is expressed in virtual field units, per reference frame where it is a rate.
// JSON uses the same field names as YAML.
type Config struct {
	Field     FieldConfig    `yaml:"field" json:"field"`
	Physics   PhysicsConfig  `yaml:"physics" json:"physics"`
	Obstacles ObstacleConfig `yaml:"obstacles" json:"obstacles"`
	Player    PlayerConfig   `yaml:"player" json:"player"`
	Session   SessionConfig  `yaml:"session" json:"session"`

	// Seed feeds the gap placement RNG. 0 lets the host pick one.
	Seed int64 `yaml:"seed" json:"seed"`
}

// FieldConfig defines the virtual play field.
type FieldConfig struct {
	Width  float64 `yaml:"width" json:"width"`
	Height float64 `yaml:"height" json:"height"`
}

// PhysicsConfig defines the player's vertical physics and the frame timing.
type PhysicsConfig struct {
	Gravity      float64 `yaml:"gravity" json:"gravity"`               // Added to vy every reference frame
	JumpVelocity float64 `yaml:"jump_velocity" json:"jump_velocity"`   // vy after a tap (negative = up)
	MaxFallSpeed float64 `yaml:"max_fall_speed" json:"max_fall_speed"` // Terminal velocity, 0 = uncapped

	// ReferenceFrameMs is the frame length the rates above are tuned for.
	// A tick of exactly this many milliseconds advances one full step.
	ReferenceFrameMs float64 `yaml:"reference_frame_ms" json:"reference_frame_ms"`

	// MaxFrameMs caps a single tick's elapsed time to survive frame stalls.
	MaxFrameMs float64 `yaml:"max_frame_ms" json:"max_frame_ms"`
}

// ObstacleConfig defines obstacle pairs and their spawning.
type ObstacleConfig struct {
	Speed         float64 `yaml:"speed" json:"speed"`                   // Leftward scroll per reference frame
	Width         float64 `yaml:"width" json:"width"`                   // Pair width
	GapHeight     float64 `yaml:"gap_height" json:"gap_height"`         // Passable gap height
	Spacing       float64 `yaml:"spacing" json:"spacing"`               // Distance between consecutive pairs
	SpawnLead     float64 `yaml:"spawn_lead" json:"spawn_lead"`         // Distance past the right edge for the first pair
	MarginTop     float64 `yaml:"margin_top" json:"margin_top"`         // Minimum gap top offset
	MarginBottom  float64 `yaml:"margin_bottom" json:"margin_bottom"`   // Minimum space below the gap
	RemovalMargin float64 `yaml:"removal_margin" json:"removal_margin"` // How far past the left edge a pair is dropped
}

// PlayerConfig defines the player body.
type PlayerConfig struct {
	X      float64 `yaml:"x" json:"x"`             // Fixed horizontal position, 0 = quarter of the field width
	StartY float64 `yaml:"start_y" json:"start_y"` // Initial vertical position, 0 = 45% of the field height
	Radius float64 `yaml:"radius" json:"radius"`   // Collision half extent, also used for drawing
}

// SessionConfig defines scoring extras and the game over screen.
type SessionConfig struct {
	RewardScoreThreshold int        `yaml:"reward_score_threshold" json:"reward_score_threshold"` // 0 disables the reward
	RewardMessage        string     `yaml:"reward_message" json:"reward_message"`
	BestScoreKey         string     `yaml:"best_score_key" json:"best_score_key"`
	BackgroundParallax   float64    `yaml:"background_parallax" json:"background_parallax"`
	RestartControl       RectConfig `yaml:"restart_control" json:"restart_control"` // Zero value = derived from the field
}

// RectConfig is a rectangle in virtual units.
type RectConfig struct {
	X float64 `yaml:"x" json:"x"`
	Y float64 `yaml:"y" json:"y"`
	W float64 `yaml:"w" json:"w"`
	H float64 `yaml:"h" json:"h"`
}

// IsZero reports whether no rectangle was configured.
func (r RectConfig) IsZero() bool {
	return r == RectConfig{}
}

// Resolved returns a copy of the config with every derived value filled in.
func (c Config) Resolved() Config {
	out := c
	if out.Player.X == 0 {
		out.Player.X = out.Field.Width * 0.25
	}
	if out.Player.StartY == 0 {
		out.Player.StartY = out.Field.Height * 0.45
	}
	if out.Session.BestScoreKey == "" {
		out.Session.BestScoreKey = DefaultBestScoreKey
	}
	if out.Session.RestartControl.IsZero() {
		w := out.Field.Width * 0.42
		h := out.Field.Height * 0.08
		out.Session.RestartControl = RectConfig{
			X: out.Field.Width/2 - w/2,
			Y: out.Field.Height * 0.66,
			W: w,
			H: h,
		}
	}
	return out
}

// MaxStepFactor returns the largest dt factor a single tick can apply.
func (c Config) MaxStepFactor() float64 {
	if c.Physics.ReferenceFrameMs <= 0 {
		return 0
	}
	return c.Physics.MaxFrameMs / c.Physics.ReferenceFrameMs
}
