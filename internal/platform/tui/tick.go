// Package tui provides the Bubble Tea host for the tap runner engine.
// It owns the frame driver, maps keys and mouse clicks to engine intents,
// and draws engine snapshots into a terminal screen buffer.
package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/taprunner/internal/core"
)

// TickMsg is sent to trigger an engine tick.
type TickMsg time.Time

// tickCmd returns a Bubble Tea command that sends a tick message after one
// frame at the runtime's tick rate.
func tickCmd(rt core.RuntimeConfig) tea.Cmd {
	interval := time.Duration(rt.FrameMillis() * float64(time.Millisecond))
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

// frameClock measures wall-clock time between ticks.
type frameClock struct {
	last time.Time
}

// Elapsed returns milliseconds since the previous call. The first call
// returns 0.
func (c *frameClock) Elapsed(now time.Time) float64 {
	if c.last.IsZero() {
		c.last = now
		return 0
	}
	ms := float64(now.Sub(c.last)) / float64(time.Millisecond)
	c.last = now
	return ms
}

// Reset forgets the previous tick, so a resumed loop does not see the pause.
func (c *frameClock) Reset() {
	c.last = time.Time{}
}
