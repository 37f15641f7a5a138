package config

import (
	"fmt"
	"math"
	"strings"
)

// ConfigurationError reports mutually inconsistent geometry or physics
// constants. It is only ever returned at construction time.
type ConfigurationError struct {
	Problems []string
}

// Error implements the error interface.
func (e *ConfigurationError) Error() string {
	return "config: invalid configuration: " + strings.Join(e.Problems, "; ")
}

func (e *ConfigurationError) addf(format string, args ...any) {
	e.Problems = append(e.Problems, fmt.Sprintf(format, args...))
}

// Validate checks the resolved config and returns a *ConfigurationError
// listing every problem found, or nil.
func (c Config) Validate() error {
	r := c.Resolved()
	verr := &ConfigurationError{}

	finite := []struct {
		name string
		v    float64
	}{
		{"field.width", r.Field.Width},
		{"field.height", r.Field.Height},
		{"physics.gravity", r.Physics.Gravity},
		{"physics.jump_velocity", r.Physics.JumpVelocity},
		{"physics.max_fall_speed", r.Physics.MaxFallSpeed},
		{"physics.reference_frame_ms", r.Physics.ReferenceFrameMs},
		{"physics.max_frame_ms", r.Physics.MaxFrameMs},
		{"obstacles.speed", r.Obstacles.Speed},
		{"obstacles.width", r.Obstacles.Width},
		{"obstacles.gap_height", r.Obstacles.GapHeight},
		{"obstacles.spacing", r.Obstacles.Spacing},
		{"obstacles.spawn_lead", r.Obstacles.SpawnLead},
		{"obstacles.margin_top", r.Obstacles.MarginTop},
		{"obstacles.margin_bottom", r.Obstacles.MarginBottom},
		{"obstacles.removal_margin", r.Obstacles.RemovalMargin},
		{"player.x", r.Player.X},
		{"player.start_y", r.Player.StartY},
		{"player.radius", r.Player.Radius},
		{"session.background_parallax", r.Session.BackgroundParallax},
	}
	for _, f := range finite {
		if math.IsNaN(f.v) || math.IsInf(f.v, 0) {
			verr.addf("%s must be finite", f.name)
		}
	}
	if len(verr.Problems) > 0 {
		return verr
	}

	if r.Field.Width <= 0 || r.Field.Height <= 0 {
		verr.addf("field must have positive size, got %vx%v", r.Field.Width, r.Field.Height)
	}

	if r.Physics.Gravity <= 0 {
		verr.addf("physics.gravity must be > 0, got %v", r.Physics.Gravity)
	}
	if r.Physics.JumpVelocity >= 0 {
		verr.addf("physics.jump_velocity must be < 0 (upward), got %v", r.Physics.JumpVelocity)
	}
	if r.Physics.MaxFallSpeed < 0 {
		verr.addf("physics.max_fall_speed must be >= 0, got %v", r.Physics.MaxFallSpeed)
	}
	if r.Physics.ReferenceFrameMs <= 0 {
		verr.addf("physics.reference_frame_ms must be > 0, got %v", r.Physics.ReferenceFrameMs)
	}
	if r.Physics.MaxFrameMs <= 0 {
		verr.addf("physics.max_frame_ms must be > 0, got %v", r.Physics.MaxFrameMs)
	}

	obs := r.Obstacles
	if obs.Speed <= 0 {
		verr.addf("obstacles.speed must be > 0, got %v", obs.Speed)
	}
	if obs.Width <= 0 {
		verr.addf("obstacles.width must be > 0, got %v", obs.Width)
	}
	if obs.GapHeight <= 0 {
		verr.addf("obstacles.gap_height must be > 0, got %v", obs.GapHeight)
	}
	if obs.Spacing <= 0 {
		verr.addf("obstacles.spacing must be > 0, got %v", obs.Spacing)
	} else if obs.Spacing < obs.Width {
		verr.addf("obstacles.spacing (%v) must be >= obstacles.width (%v)", obs.Spacing, obs.Width)
	}
	maxTravel := obs.Speed * r.MaxStepFactor()
	if obs.Spacing > 0 && obs.Spacing <= maxTravel {
		verr.addf("obstacles.spacing (%v) must exceed the largest per-tick travel (%v)", obs.Spacing, maxTravel)
	}
	// The newest pair must cross field.width - spacing on some tick before
	// it is dropped past the left margin.
	if limit := r.Field.Width + obs.RemovalMargin + obs.Width - maxTravel; obs.Spacing > 0 && obs.Spacing >= limit {
		verr.addf("obstacles.spacing (%v) must be < field.width + removal_margin + width - largest per-tick travel (%v)",
			obs.Spacing, limit)
	}
	if obs.SpawnLead < 0 || obs.MarginTop < 0 || obs.MarginBottom < 0 || obs.RemovalMargin < 0 {
		verr.addf("obstacle margins and spawn lead must be >= 0")
	}
	if obs.MarginTop+obs.GapHeight+obs.MarginBottom > r.Field.Height {
		verr.addf("gap placement range is empty: margin_top (%v) + gap_height (%v) + margin_bottom (%v) > field.height (%v)",
			obs.MarginTop, obs.GapHeight, obs.MarginBottom, r.Field.Height)
	}

	p := r.Player
	if p.Radius <= 0 {
		verr.addf("player.radius must be > 0, got %v", p.Radius)
	} else if 2*p.Radius >= obs.GapHeight {
		verr.addf("player diameter (%v) must be smaller than obstacles.gap_height (%v)", 2*p.Radius, obs.GapHeight)
	}
	if p.X-p.Radius < 0 || p.X+p.Radius > r.Field.Width {
		verr.addf("player.x (%v) must keep the player inside the field", p.X)
	}
	if p.StartY-p.Radius < 0 || p.StartY+p.Radius > r.Field.Height {
		verr.addf("player.start_y (%v) must keep the player inside the field", p.StartY)
	}

	s := r.Session
	if s.RewardScoreThreshold < 0 {
		verr.addf("session.reward_score_threshold must be >= 0, got %d", s.RewardScoreThreshold)
	}
	if s.BackgroundParallax < 0 {
		verr.addf("session.background_parallax must be >= 0, got %v", s.BackgroundParallax)
	}
	if rc := s.RestartControl; rc.W <= 0 || rc.H <= 0 {
		verr.addf("session.restart_control must have positive size")
	}

	if len(verr.Problems) > 0 {
		return verr
	}
	return nil
}
