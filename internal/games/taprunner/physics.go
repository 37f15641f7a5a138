package taprunner

import (
	"math"

	"github.com/vovakirdan/taprunner/internal/core"
)

// stepFactor converts elapsed milliseconds into reference frames.
// Negative or NaN input counts as no time, stalls are capped at MaxFrameMs.
func (e *Engine) stepFactor(elapsedMs float64) float64 {
	if math.IsNaN(elapsedMs) {
		return 0
	}
	dt := core.ClampF(elapsedMs, 0, e.cfg.Physics.MaxFrameMs)
	return dt / e.cfg.Physics.ReferenceFrameMs
}

// step runs one Playing tick. The first terminal condition ends the session
// and skips the remaining steps.
func (e *Engine) step(f float64, flap bool) {
	e.tick++
	e.elapsedMs += f * e.cfg.Physics.ReferenceFrameMs

	e.integrate(f, flap)
	if e.applyBounds() {
		e.endSession(ReasonFloor)
		return
	}

	e.scroll(f)
	e.removeOffscreen()
	e.obstacles, _ = e.gen.Fire(e.obstacles)

	if e.collides() {
		e.endSession(ReasonObstacle)
		return
	}

	e.scorePassed()
}

// integrate applies gravity, then the tap impulse.
func (e *Engine) integrate(f float64, flap bool) {
	phys := e.cfg.Physics
	p := &e.player

	p.VY += phys.Gravity * f
	if phys.MaxFallSpeed > 0 && p.VY > phys.MaxFallSpeed {
		p.VY = phys.MaxFallSpeed
	}
	p.Y += p.VY * f

	if flap {
		p.VY = phys.JumpVelocity
		e.emit(Event{Kind: EventFlapped})
	}
}

// applyBounds keeps the player inside the field. The ceiling is soft,
// the floor is lethal. It reports whether the player hit the floor.
func (e *Engine) applyBounds() bool {
	p := &e.player
	if p.Y-p.Radius < 0 {
		p.Y = p.Radius
		p.VY = 0
	}
	if p.Y+p.Radius > e.field.Height {
		p.Y = e.field.Height - p.Radius
		return true
	}
	return false
}

// scroll moves every pair and the background left.
func (e *Engine) scroll(f float64) {
	dx := e.cfg.Obstacles.Speed * f
	for i := range e.obstacles {
		e.obstacles[i].X -= dx
	}

	e.bgOffset += dx * e.cfg.Session.BackgroundParallax
	if e.field.Width > 0 {
		e.bgOffset = math.Mod(e.bgOffset, e.field.Width)
	}
}

// removeOffscreen pops pairs whose trailing edge passed the left margin.
// Pairs are sorted by X, so only the head needs checking.
func (e *Engine) removeOffscreen() {
	limit := -e.cfg.Obstacles.RemovalMargin
	n := 0
	for n < len(e.obstacles) && e.obstacles[n].Right() < limit {
		n++
	}
	if n > 0 {
		e.obstacles = append(e.obstacles[:0], e.obstacles[n:]...)
	}
}

// collides tests the player box against both barriers of every pair that
// overlaps it horizontally. Touching edges do not collide.
func (e *Engine) collides() bool {
	box := e.player.Bounds()
	for _, o := range e.obstacles {
		top := o.TopRect()
		if !box.OverlapsX(top) {
			continue
		}
		if box.Intersects(top) || box.Intersects(o.BottomRect(e.field)) {
			return true
		}
	}
	return false
}

// scorePassed scores every pair whose trailing edge is behind the player.
func (e *Engine) scorePassed() {
	for i := range e.obstacles {
		o := &e.obstacles[i]
		if o.Scored || o.Right() >= e.player.X {
			continue
		}
		o.Scored = true
		e.score++
		e.emit(Event{Kind: EventScored})

		threshold := e.cfg.Session.RewardScoreThreshold
		if threshold > 0 && !e.rewardReached && e.score >= threshold {
			e.rewardReached = true
			e.emit(Event{Kind: EventRewardReached})
		}
	}

	if e.score > e.best {
		e.best = e.score
		e.bestDirty = true
		e.emit(Event{Kind: EventBestImproved})
	}
}
