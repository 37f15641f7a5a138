package taprunner

import (
	"github.com/vovakirdan/taprunner/internal/config"
)

// SimOptions scripts a headless run.
type SimOptions struct {
	MaxTicks  int        `yaml:"max_ticks"` // Ticks to run, 0 = 3600
	FrameMs   float64    `yaml:"frame_ms"`  // Elapsed time per tick, 0 = reference frame
	Taps      []uint64   `yaml:"taps"`      // Zero-based tick indexes that tap before ticking
	Autopilot bool       `yaml:"autopilot"` // Tap to hold the next gap's center
	Restarts  bool       `yaml:"restarts"`  // Keep ticking past game over by restarting
	Store     ScoreStore `yaml:"-"`
}

// SimResult is the outcome of a headless run.
type SimResult struct {
	Ticks  int      `yaml:"ticks"`
	Runs   []int    `yaml:"runs"` // Final score of every finished session
	Final  Snapshot `yaml:"final"`
	Events []Event  `yaml:"events"`
}

// Simulate runs an engine without a host loop. Every tick receives the
// same elapsed time, so a run is reproducible from its config and options.
func Simulate(cfg config.Config, opts SimOptions) (SimResult, error) {
	e, err := New(cfg, Options{Store: opts.Store})
	if err != nil {
		return SimResult{}, err
	}

	maxTicks := opts.MaxTicks
	if maxTicks <= 0 {
		maxTicks = 3600
	}
	frame := opts.FrameMs
	if frame <= 0 {
		frame = e.cfg.Physics.ReferenceFrameMs
	}

	taps := make(map[uint64]bool, len(opts.Taps))
	for _, t := range opts.Taps {
		taps[t] = true
	}

	var res SimResult
	for i := 0; i < maxTicks; i++ {
		if taps[uint64(i)] || (opts.Autopilot && e.autopilotWantsTap()) {
			e.Submit(Tap())
		}
		snap := e.Tick(frame)
		res.Ticks++
		res.Events = append(res.Events, snap.Events...)

		if snap.Has(EventGameOver) {
			res.Runs = append(res.Runs, snap.Score)
			if !opts.Restarts {
				break
			}
			e.Submit(RestartRequest())
		}
	}
	res.Final = e.Snapshot()
	res.Final.Events = nil
	return res, nil
}

// autopilotWantsTap aims for the center of the next gap the player has not
// cleared yet, or the middle of the field when none is on screen.
func (e *Engine) autopilotWantsTap() bool {
	if e.state == StateReady {
		return true
	}
	if e.state != StatePlaying {
		return false
	}

	target := e.field.Height / 2
	for _, o := range e.obstacles {
		if o.Right() >= e.player.X-e.player.Radius {
			target = o.GapTopOffset + o.GapHeight*0.6
			break
		}
	}
	return e.player.Y > target && e.player.VY >= 0
}
