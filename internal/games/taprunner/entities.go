package taprunner

import (
	"github.com/vovakirdan/taprunner/internal/config"
	"github.com/vovakirdan/taprunner/internal/core"
)

// PlayerBody is the controlled sprite. X and Radius are constant per session.
type PlayerBody struct {
	X      float64 `yaml:"x"`
	Y      float64 `yaml:"y"`
	VY     float64 `yaml:"vy"`
	Radius float64 `yaml:"radius"`
}

// NewPlayer creates a player at its start position with zero velocity.
// cfg must be resolved.
func NewPlayer(cfg config.PlayerConfig) PlayerBody {
	return PlayerBody{
		X:      cfg.X,
		Y:      cfg.StartY,
		VY:     0,
		Radius: cfg.Radius,
	}
}

// Bounds returns the player's collision box. The half extent is the radius,
// which is also what the presentation layer draws.
func (p PlayerBody) Bounds() core.Rect {
	return core.RectFromCenter(p.X, p.Y, p.Radius, p.Radius)
}

// ObstaclePair is one vertical barrier with a passable gap.
type ObstaclePair struct {
	X            float64 `yaml:"x"`              // Left edge
	GapTopOffset float64 `yaml:"gap_top_offset"` // Y where the gap starts
	GapHeight    float64 `yaml:"gap_height"`
	Width        float64 `yaml:"width"`
	Scored       bool    `yaml:"scored"`
}

// NewObstaclePair creates an unscored pair.
func NewObstaclePair(xSpawn, gapTopOffset, gapHeight, width float64) ObstaclePair {
	return ObstaclePair{
		X:            xSpawn,
		GapTopOffset: gapTopOffset,
		GapHeight:    gapHeight,
		Width:        width,
	}
}

// Right returns the trailing edge.
func (o ObstaclePair) Right() float64 {
	return o.X + o.Width
}

// GapBottom returns the y where the bottom barrier starts.
func (o ObstaclePair) GapBottom() float64 {
	return o.GapTopOffset + o.GapHeight
}

// TopRect returns the barrier above the gap.
func (o ObstaclePair) TopRect() core.Rect {
	return core.NewRect(o.X, 0, o.Width, o.GapTopOffset)
}

// BottomRect returns the barrier below the gap, down to the field floor.
func (o ObstaclePair) BottomRect(field core.Field) core.Rect {
	return core.NewRect(o.X, o.GapBottom(), o.Width, field.Height-o.GapBottom())
}
