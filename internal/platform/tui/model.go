package tui

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/vovakirdan/taprunner/internal/config"
	"github.com/vovakirdan/taprunner/internal/core"
	"github.com/vovakirdan/taprunner/internal/games/taprunner"
	"github.com/vovakirdan/taprunner/internal/metrics"
	"github.com/vovakirdan/taprunner/internal/storage"
)

// GameOptions wires a game session to its collaborators. Only Config is
// required.
type GameOptions struct {
	Config  config.Config
	Runtime core.RuntimeConfig

	Store   storage.Backend     // Best score, nil = in-memory only
	Runs    storage.RunRecorder // Run history, nil = not recorded
	Metrics *metrics.Metrics
	Logger  *log.Logger

	Player string // Recorded with every run
}

// GameModel is the Bubble Tea model hosting one tap runner engine.
// It drives Tick from the frame timer and feeds it keys and clicks.
type GameModel struct {
	engine     *taprunner.Engine
	screen     *core.Screen
	viewport   core.Viewport
	keyMapper  *KeyMapper
	clock      *frameClock
	opts       GameOptions
	writer     *storage.AsyncStore // Owned write-behind for a synchronous Store
	last       taprunner.Snapshot
	randomSeed bool // Pick a fresh seed for every session
	standalone bool // Back quits the program instead of returning to a menu
	paused     bool
	quitting   bool
	backToMenu bool
}

// NewGameModel creates the engine and the model around it.
// An invalid config is reported as *config.ConfigurationError.
func NewGameModel(opts GameOptions) (GameModel, error) {
	cfg := opts.Config
	if opts.Runtime.Seed != 0 {
		cfg.Seed = opts.Runtime.Seed
	}
	if opts.Runtime.TickRate <= 0 {
		opts.Runtime.TickRate = 60
	}
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}

	// Best score writes happen inside Tick, so they must not reach a slow
	// backend on the frame goroutine.
	engineOpts := taprunner.Options{Logger: opts.Logger}
	var writer *storage.AsyncStore
	switch store := opts.Store.(type) {
	case nil:
	case *storage.AsyncStore:
		engineOpts.Store = store
	default:
		writer = storage.NewAsyncWriter(store, opts.Logger)
		engineOpts.Store = writer
	}

	engine, err := taprunner.New(cfg, engineOpts)
	if err != nil {
		if writer != nil {
			writer.Close()
		}
		return GameModel{}, err
	}

	m := GameModel{
		engine:     engine,
		screen:     core.NewScreen(opts.Runtime.ScreenW, opts.Runtime.ScreenH),
		viewport:   core.NewViewport(engine.Field(), opts.Runtime.ScreenW, opts.Runtime.ScreenH),
		keyMapper:  NewKeyMapper(),
		clock:      &frameClock{},
		opts:       opts,
		writer:     writer,
		randomSeed: cfg.Seed == 0,
	}
	if m.randomSeed {
		engine.SetSeed(time.Now().UnixNano())
	}
	opts.Metrics.SetBest(engine.BestScore())
	m.last = engine.Snapshot()
	return m, nil
}

// Init starts the frame timer.
func (m GameModel) Init() tea.Cmd {
	return tickCmd(m.opts.Runtime)
}

// Update handles messages and updates the model state.
func (m GameModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		return m.handleMouse(msg)

	case tea.WindowSizeMsg:
		return m.handleResize(msg)

	case TickMsg:
		return m.handleTick(time.Time(msg))
	}

	return m, nil
}

// handleKey processes keyboard input.
func (m GameModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+s" {
		m.saveScreenshot()
		return m, nil
	}

	action, isQuit := m.keyMapper.MapGameKey(msg)
	if isQuit {
		m.engine.Flush()
		m.quitting = true
		return m, tea.Sequence(m.closeWriter(), tea.Quit)
	}

	switch action {
	case core.ActionTap:
		if !m.paused {
			m.engine.Submit(taprunner.Tap())
		}
	case core.ActionRestart:
		m.engine.Submit(taprunner.RestartRequest())
	case core.ActionPause:
		if m.engine.State() == taprunner.StatePlaying {
			m.paused = !m.paused
			m.clock.Reset()
		}
	case core.ActionBack:
		if m.paused || m.engine.State() != taprunner.StatePlaying {
			m.engine.Flush()
			m.backToMenu = true
			if m.standalone {
				m.quitting = true
				return m, tea.Sequence(m.closeWriter(), tea.Quit)
			}
			return m, m.closeWriter()
		}
	}
	return m, nil
}

// handleMouse turns a left click into a positioned tap, so the engine can
// hit-test the restart control.
func (m GameModel) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if m.paused || msg.Action != tea.MouseActionPress || msg.Button != tea.MouseButtonLeft {
		return m, nil
	}
	x, y := m.viewport.ToVirtual(msg.X, msg.Y)
	m.engine.Submit(taprunner.TapAt(x, y))
	return m, nil
}

// handleResize refits the field into the new window. The session itself is
// unaffected.
func (m GameModel) handleResize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	m.opts.Runtime.ScreenW = msg.Width
	m.opts.Runtime.ScreenH = msg.Height
	m.screen.Resize(msg.Width, msg.Height)
	m.viewport = core.NewViewport(m.engine.Field(), msg.Width, msg.Height)
	return m, nil
}

// handleTick advances the engine by the wall-clock time since the last tick.
func (m GameModel) handleTick(now time.Time) (tea.Model, tea.Cmd) {
	if m.quitting || m.backToMenu {
		return m, nil
	}
	if m.paused {
		return m, tickCmd(m.opts.Runtime)
	}

	snap := m.engine.Tick(m.clock.Elapsed(now))
	m.last = snap
	m.opts.Metrics.Observe(snap)

	var record tea.Cmd
	if snap.Has(taprunner.EventGameOver) {
		record = m.recordRun(snap)
		if m.randomSeed {
			m.engine.SetSeed(time.Now().UnixNano())
		}
	}

	return m, tea.Batch(tickCmd(m.opts.Runtime), record)
}

// recordRun returns a command that appends the finished session to the run
// history off the frame goroutine.
func (m GameModel) recordRun(snap taprunner.Snapshot) tea.Cmd {
	if m.opts.Runs == nil {
		return nil
	}
	runs, logger := m.opts.Runs, m.opts.Logger
	run := storage.Run{
		Player: m.opts.Player,
		Score:  snap.Score,
		Ticks:  snap.Tick,
		Reason: snap.GameOverReason().String(),
		Seed:   m.engine.Seed(),
	}
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if _, err := runs.RecordRun(ctx, run); err != nil {
			logger.Warn("could not record run", "score", run.Score, "error", err)
		}
		return nil
	}
}

// closeWriter returns a command that drains the owned best score writer.
func (m GameModel) closeWriter() tea.Cmd {
	if m.writer == nil {
		return nil
	}
	w, logger := m.writer, m.opts.Logger
	return func() tea.Msg {
		if err := w.Close(); err != nil {
			logger.Warn("could not write best score", "error", err)
		}
		return nil
	}
}

// saveScreenshot saves the current screen to a file.
func (m *GameModel) saveScreenshot() {
	DrawSnapshot(m.screen, m.last, m.viewOptions())

	home, err := os.UserHomeDir()
	if err != nil {
		return
	}
	dir := filepath.Join(home, ".taprunner", "screenshots")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		m.opts.Logger.Warn("could not create screenshot directory", "error", err)
		return
	}

	timestamp := time.Now().Format("20060102_150405")
	path := filepath.Join(dir, fmt.Sprintf("taprunner_%s.txt", timestamp))
	if err := os.WriteFile(path, []byte(m.screen.String()), 0o600); err != nil {
		m.opts.Logger.Warn("could not save screenshot", "error", err)
	}
}

func (m GameModel) viewOptions() ViewOptions {
	return ViewOptions{
		RewardMessage: m.engine.Config().Session.RewardMessage,
		Paused:        m.paused,
	}
}

// View renders the last snapshot.
func (m GameModel) View() string {
	if m.quitting {
		return ""
	}
	DrawSnapshot(m.screen, m.last, m.viewOptions())
	return RenderScreen(m.screen)
}

// Engine returns the hosted engine.
func (m GameModel) Engine() *taprunner.Engine {
	return m.engine
}

// Snapshot returns the state drawn by the next View.
func (m GameModel) Snapshot() taprunner.Snapshot {
	return m.last
}

// IsPaused reports whether the frame driver is paused.
func (m GameModel) IsPaused() bool {
	return m.paused
}

// IsQuitting returns true if user requested to quit entirely.
func (m GameModel) IsQuitting() bool {
	return m.quitting
}

// BackToMenu returns true if user requested to go back to menu.
func (m GameModel) BackToMenu() bool {
	return m.backToMenu
}

// Run plays a single game in the terminal until the user quits.
func Run(opts GameOptions) error {
	model, err := NewGameModel(opts)
	if err != nil {
		return err
	}
	model.standalone = true

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)

	_, err = p.Run()
	return err
}
