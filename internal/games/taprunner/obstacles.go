package taprunner

import (
	"math/rand"

	"github.com/vovakirdan/taprunner/internal/config"
	"github.com/vovakirdan/taprunner/internal/core"
)

// RandomSource supplies uniform values in [0, 1) for gap placement.
// *rand.Rand satisfies it.
type RandomSource interface {
	Float64() float64
}

// RandFactory builds a RandomSource from a seed. The engine calls it on
// construction and on every restart.
type RandFactory func(seed int64) RandomSource

// DefaultRand seeds math/rand.
func DefaultRand(seed int64) RandomSource {
	return rand.New(rand.NewSource(seed))
}

// Generator decides when and where a new obstacle pair is inserted.
// It uses distance based spacing: the first pair enters spawnLead units past
// the right edge, each further pair exactly spacing units behind the
// trailing one once that pair has moved left of fieldWidth - spacing.
type Generator struct {
	cfg     config.ObstacleConfig
	field   core.Field
	newRand RandFactory
	rng     RandomSource
	minGap  float64
	maxGap  float64
}

// NewGenerator creates a generator for a resolved config. It fails with a
// *config.ConfigurationError when the gap placement range is empty.
func NewGenerator(cfg config.Config, newRand RandFactory) (*Generator, error) {
	obs := cfg.Obstacles
	minGap := obs.MarginTop
	maxGap := cfg.Field.Height - obs.MarginBottom - obs.GapHeight
	if maxGap < minGap {
		return nil, &config.ConfigurationError{Problems: []string{
			"gap placement range is empty: margin_top + gap_height + margin_bottom exceeds field.height",
		}}
	}
	if newRand == nil {
		newRand = DefaultRand
	}

	g := &Generator{
		cfg:     obs,
		field:   core.Field{Width: cfg.Field.Width, Height: cfg.Field.Height},
		newRand: newRand,
		minGap:  minGap,
		maxGap:  maxGap,
	}
	g.Reset(cfg.Seed)
	return g, nil
}

// Reset reseeds the gap placement source.
func (g *Generator) Reset(seed int64) {
	g.rng = g.newRand(seed)
}

// GapRange returns the inclusive range of gap top offsets.
func (g *Generator) GapRange() (float64, float64) {
	return g.minGap, g.maxGap
}

// NextSpawnX reports whether a pair is due and where it enters.
func (g *Generator) NextSpawnX(pairs []ObstaclePair) (float64, bool) {
	if len(pairs) == 0 {
		return g.field.Width + g.cfg.SpawnLead, true
	}
	last := pairs[len(pairs)-1]
	if last.X < g.field.Width-g.cfg.Spacing {
		return last.X + g.cfg.Spacing, true
	}
	return 0, false
}

// Fire appends at most one new pair to the tail of pairs.
// It never removes entries.
func (g *Generator) Fire(pairs []ObstaclePair) ([]ObstaclePair, bool) {
	x, ok := g.NextSpawnX(pairs)
	if !ok {
		return pairs, false
	}
	return append(pairs, g.spawn(x)), true
}

func (g *Generator) spawn(x float64) ObstaclePair {
	gapTop := g.minGap + g.rng.Float64()*(g.maxGap-g.minGap)
	return NewObstaclePair(x, gapTop, g.cfg.GapHeight, g.cfg.Width)
}
