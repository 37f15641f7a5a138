package tui

import (
	"fmt"
	"math"

	"github.com/vovakirdan/taprunner/internal/core"
	"github.com/vovakirdan/taprunner/internal/games/taprunner"
)

// ViewOptions carries host-side state the snapshot does not know about.
type ViewOptions struct {
	RewardMessage string
	Paused        bool
}

// Background scenery as fractions of the field, scrolled by the snapshot's
// background offset.
var scenery = []struct {
	X, Y float64
	R    rune
}{
	{0.05, 0.09, '.'}, {0.26, 0.22, '*'}, {0.42, 0.06, '.'}, {0.58, 0.17, '.'},
	{0.74, 0.11, '*'}, {0.89, 0.23, '.'}, {0.17, 0.34, '.'}, {0.50, 0.41, '*'},
	{0.83, 0.38, '.'}, {0.33, 0.52, '.'}, {0.67, 0.59, '.'}, {0.94, 0.47, '*'},
}

// DrawSnapshot renders snap onto s, fitting the field into the whole screen.
// It returns the viewport used, so mouse clicks can be mapped back to
// virtual coordinates.
func DrawSnapshot(s *core.Screen, snap taprunner.Snapshot, opts ViewOptions) core.Viewport {
	s.Clear()
	field := snap.Field()
	vp := core.NewViewport(field, s.Width(), s.Height())
	clip := fieldBox(vp)

	drawScenery(s, vp, clip, snap)
	for _, o := range snap.Obstacles {
		fillRect(s, vp, clip, o.TopRect(), '█', core.ColorGreen)
		fillRect(s, vp, clip, o.BottomRect(field), '█', core.ColorGreen)
	}
	drawPlayer(s, vp, clip, snap)
	drawFrame(s, clip)
	drawHUD(s, clip, snap, opts)

	switch snap.State {
	case taprunner.StateReady:
		s.DrawTextCentered(clip.Y+clip.H/3, "TAP TO START", core.ColorBrightYellow)
		s.DrawTextCentered(clip.Y+clip.H/3+1, "space / click", core.ColorGray)
	case taprunner.StateGameOver:
		drawGameOver(s, vp, clip, snap)
	}
	if opts.Paused && snap.State == taprunner.StatePlaying {
		s.DrawTextCentered(clip.Y+clip.H/2, "PAUSED", core.ColorBrightYellow)
	}
	return vp
}

// fieldBox returns the cells covered by the field.
func fieldBox(vp core.Viewport) core.Box {
	x0, y0, x1, y1 := vp.FieldCells()
	return core.NewBox(x0, y0, x1-x0, y1-y0)
}

// fillRect fills the cells covering r, clipped to the field.
func fillRect(s *core.Screen, vp core.Viewport, clip core.Box, r core.Rect, ch rune, c core.Color) {
	if r.Empty() {
		return
	}
	x0, y0, x1, y1 := vp.RectToCells(r)
	x0 = core.Max(x0, clip.X)
	y0 = core.Max(y0, clip.Y)
	x1 = core.Min(x1, clip.Right())
	y1 = core.Min(y1, clip.Bottom())
	if x1 <= x0 || y1 <= y0 {
		return
	}
	s.FillBox(core.NewBox(x0, y0, x1-x0, y1-y0), ch, c)
}

func drawScenery(s *core.Screen, vp core.Viewport, clip core.Box, snap taprunner.Snapshot) {
	w := snap.FieldWidth
	if w <= 0 {
		return
	}
	for _, p := range scenery {
		x := math.Mod(p.X*w-snap.BackgroundOffset, w)
		if x < 0 {
			x += w
		}
		cx, cy := vp.ToCell(x, p.Y*snap.FieldHeight)
		if cx >= clip.X && cx < clip.Right() && cy >= clip.Y && cy < clip.Bottom() {
			s.SetColored(cx, cy, p.R, core.ColorDim)
		}
	}
}

func drawPlayer(s *core.Screen, vp core.Viewport, clip core.Box, snap taprunner.Snapshot) {
	color := core.ColorBrightYellow
	if snap.State == taprunner.StateGameOver {
		color = core.ColorBrightRed
	}
	fillRect(s, vp, clip, snap.Player.Bounds(), '▓', color)

	// Always show at least one cell, even when the body is smaller than a cell.
	cx, cy := vp.ToCell(snap.Player.X, snap.Player.Y)
	if cx >= clip.X && cx < clip.Right() && cy >= clip.Y && cy < clip.Bottom() {
		s.SetColored(cx, cy, '@', color)
	}
}

// drawFrame outlines the field when the screen has room around it.
func drawFrame(s *core.Screen, clip core.Box) {
	if clip.X > 0 && clip.Right() < s.Width() {
		for y := clip.Y; y < clip.Bottom(); y++ {
			s.SetColored(clip.X-1, y, '│', core.ColorGray)
			s.SetColored(clip.Right(), y, '│', core.ColorGray)
		}
	}
	if clip.Bottom() < s.Height() {
		s.DrawHLine(clip.X, clip.Bottom(), clip.W, '▀', core.ColorYellow)
	} else {
		s.DrawHLine(clip.X, clip.Bottom()-1, clip.W, '▁', core.ColorYellow)
	}
}

func drawHUD(s *core.Screen, clip core.Box, snap taprunner.Snapshot, opts ViewOptions) {
	score := fmt.Sprintf(" %d ", snap.Score)
	s.DrawTextColored(clip.X+(clip.W-len(score))/2, clip.Y, score, core.ColorWhite)

	best := fmt.Sprintf("BEST %d", snap.BestScore)
	s.DrawTextColored(clip.Right()-len(best)-1, clip.Y, best, core.ColorGray)

	if snap.RewardReached && opts.RewardMessage != "" && snap.State == taprunner.StatePlaying {
		s.DrawTextCentered(clip.Y+1, opts.RewardMessage, core.ColorBrightGreen)
	}
}

func drawGameOver(s *core.Screen, vp core.Viewport, clip core.Box, snap taprunner.Snapshot) {
	top := clip.Y + clip.H/4
	s.DrawTextCentered(top, "GAME OVER", core.ColorBrightRed)
	s.DrawTextCentered(top+2, fmt.Sprintf("Score: %d", snap.Score), core.ColorWhite)
	s.DrawTextCentered(top+3, fmt.Sprintf("Best:  %d", snap.BestScore), core.ColorWhite)
	if snap.Score >= snap.BestScore && snap.Score > 0 {
		s.DrawTextCentered(top+4, "New best!", core.ColorBrightGreen)
	}

	// Only cells that click back into the control are drawn as the button.
	x0, y0, x1, y1 := vp.HitCells(snap.RestartControl)
	button := core.NewBox(x0, y0, x1-x0, y1-y0)
	if button.W > 0 && button.H > 0 {
		s.FillBox(button, ' ', core.ColorDefault)
		label := "RESTART"
		switch {
		case button.W >= len(label)+2 && button.H >= 3:
			s.DrawBox(button, core.ColorCyan)
		case button.W >= len(label)+4:
			label = "[ RESTART ]"
		case button.W < len(label):
			label = label[:button.W]
		}
		s.DrawTextColored(button.X+(button.W-len(label))/2, button.Y+button.H/2, label, core.ColorCyan)
	}
	s.DrawTextCentered(button.Bottom(), "r / enter / click", core.ColorGray)
}
