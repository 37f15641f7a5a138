package tui

import (
	"context"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/taprunner/internal/config"
	"github.com/vovakirdan/taprunner/internal/core"
	"github.com/vovakirdan/taprunner/internal/games/taprunner"
	"github.com/vovakirdan/taprunner/internal/metrics"
	"github.com/vovakirdan/taprunner/internal/storage"
)

var (
	spaceKey = tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	enterKey = tea.KeyMsg{Type: tea.KeyEnter}
	downKey  = tea.KeyMsg{Type: tea.KeyDown}
)

type harness struct {
	t       *testing.T
	model   GameModel
	now     time.Time
	lastCmd tea.Cmd       // Returned by the latest tick
	slowest time.Duration // Longest single Update
}

type runStore interface {
	storage.Backend
	storage.RunRecorder
}

func newHarness(t *testing.T, store *storage.MemoryStore) *harness {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Seed = 7
	if store == nil {
		return newHarnessWith(t, cfg, nil)
	}
	return newHarnessWith(t, cfg, store)
}

func newHarnessWith(t *testing.T, cfg config.Config, store runStore) *harness {
	t.Helper()
	opts := GameOptions{
		Config:  cfg,
		Runtime: core.RuntimeConfig{ScreenW: 80, ScreenH: 24, TickRate: 60},
		Metrics: metrics.New(),
		Player:  "tester",
	}
	if store != nil {
		opts.Store = store
		opts.Runs = store
	}

	m, err := NewGameModel(opts)
	if err != nil {
		t.Fatalf("NewGameModel() failed: %v", err)
	}
	return &harness{t: t, model: m, now: time.Unix(1_700_000_000, 0)}
}

func (h *harness) send(msg tea.Msg) tea.Cmd {
	h.t.Helper()
	start := time.Now()
	next, cmd := h.model.Update(msg)
	if d := time.Since(start); d > h.slowest {
		h.slowest = d
	}
	m, ok := next.(GameModel)
	if !ok {
		h.t.Fatalf("Update returned %T", next)
	}
	h.model = m
	return cmd
}

// tick advances the wall clock by one reference frame and ticks.
func (h *harness) tick() taprunner.Snapshot {
	h.now = h.now.Add(16 * time.Millisecond)
	h.lastCmd = h.send(TickMsg(h.now))
	return h.model.Snapshot()
}

// exec runs cmd the way the program would, batches included.
func (h *harness) exec(cmd tea.Cmd) {
	if cmd == nil {
		return
	}
	if batch, ok := cmd().(tea.BatchMsg); ok {
		for _, c := range batch {
			h.exec(c)
		}
	}
}

func (h *harness) tickUntil(state taprunner.SessionState, limit int) {
	h.t.Helper()
	for i := 0; i < limit; i++ {
		if h.tick().State == state {
			return
		}
	}
	h.t.Fatalf("state %v not reached in %d ticks", state, limit)
}

func TestTapStartsSession(t *testing.T) {
	h := newHarness(t, nil)
	h.tick()

	h.send(spaceKey)
	snap := h.tick()
	if snap.State != taprunner.StatePlaying {
		t.Fatalf("state = %v, want playing", snap.State)
	}
	if !snap.Has(taprunner.EventStarted) {
		t.Error("missing started event")
	}
	if snap.Player.VY >= 0 {
		t.Errorf("player should move up after the first tap, vy = %v", snap.Player.VY)
	}
}

func TestGameOverRecordsRun(t *testing.T) {
	store := storage.NewMemoryStore()
	h := newHarness(t, store)

	h.send(spaceKey)
	h.tickUntil(taprunner.StateGameOver, 400)
	h.exec(h.lastCmd)

	runs, err := store.RecentRuns(context.Background(), 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 1 {
		t.Fatalf("got %d runs, want 1", len(runs))
	}
	if runs[0].Player != "tester" || runs[0].Reason != "floor" || runs[0].Seed != 7 {
		t.Errorf("unexpected run %+v", runs[0])
	}

	// Frozen: more ticks do not record again.
	h.tick()
	h.exec(h.lastCmd)
	h.tick()
	h.exec(h.lastCmd)
	runs, _ = store.RecentRuns(context.Background(), 10)
	if len(runs) != 1 {
		t.Errorf("got %d runs after idle ticks, want 1", len(runs))
	}
}

// slowStore takes its time on every write.
type slowStore struct {
	delay time.Duration

	mu   sync.Mutex
	best int
	runs int
}

func (s *slowStore) Get(context.Context, string) (int, bool, error) {
	return 0, false, nil
}

func (s *slowStore) Set(_ context.Context, _ string, value int) error {
	time.Sleep(s.delay)
	s.mu.Lock()
	defer s.mu.Unlock()
	if value > s.best {
		s.best = value
	}
	return nil
}

func (s *slowStore) RecordRun(_ context.Context, run storage.Run) (storage.Run, error) {
	time.Sleep(s.delay)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs++
	return run, nil
}

func (s *slowStore) TopRuns(context.Context, int) ([]storage.Run, error) { return nil, nil }

func (s *slowStore) RecentRuns(context.Context, int) ([]storage.Run, error) { return nil, nil }

func (s *slowStore) Close() error { return nil }

func (s *slowStore) stored() (best, runs int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.best, s.runs
}

func TestSlowStoreDoesNotStallFrames(t *testing.T) {
	store := &slowStore{delay: 250 * time.Millisecond}
	cfg := config.DefaultConfig()
	cfg.Obstacles.GapHeight = 400
	cfg.Seed = 7
	h := newHarnessWith(t, cfg, store)

	// Keep the player around y=300 until one pair is passed, then let it fall.
	h.send(spaceKey)
	for i := 0; ; i++ {
		if i > 3000 {
			t.Fatal("session did not end")
		}
		snap := h.tick()
		if snap.State == taprunner.StateGameOver {
			if snap.Score < 1 {
				t.Fatalf("died before scoring, reason %v", snap.GameOverReason())
			}
			break
		}
		if snap.Score < 1 && snap.Player.Y > 300 && snap.Player.VY > 0 {
			h.send(spaceKey)
		}
	}

	if h.slowest >= 100*time.Millisecond {
		t.Errorf("slowest frame took %v with a %v store", h.slowest, store.delay)
	}

	h.exec(h.lastCmd)
	deadline := time.Now().Add(3 * time.Second)
	for {
		best, runs := store.stored()
		if best >= 1 && runs == 1 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("store got best %d and %d runs, want best >= 1 and 1 run", best, runs)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestClickRestartControl(t *testing.T) {
	h := newHarness(t, nil)
	h.send(spaceKey)
	h.tickUntil(taprunner.StateGameOver, 400)

	// A click outside the control is ignored.
	h.send(tea.MouseMsg{X: 0, Y: 0, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	if snap := h.tick(); snap.State != taprunner.StateGameOver {
		t.Fatalf("click outside restart control changed state to %v", snap.State)
	}

	// The far corner of the drawn button still restarts.
	_, _, x1, y1 := h.model.viewport.HitCells(h.model.Snapshot().RestartControl)
	h.send(tea.MouseMsg{X: x1 - 1, Y: y1 - 1, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	snap := h.tick()
	if snap.State != taprunner.StateReady {
		t.Fatalf("state = %v, want ready", snap.State)
	}
	if !snap.Has(taprunner.EventRestarted) {
		t.Error("missing restarted event")
	}
}

func TestRestartKey(t *testing.T) {
	h := newHarness(t, nil)
	h.send(spaceKey)
	h.tickUntil(taprunner.StateGameOver, 400)

	h.send(runeKey('r'))
	if snap := h.tick(); snap.State != taprunner.StateReady || snap.Score != 0 {
		t.Errorf("after restart: state %v score %d", snap.State, snap.Score)
	}
}

func TestPauseFreezesEngine(t *testing.T) {
	h := newHarness(t, nil)
	h.send(spaceKey)
	h.tick()

	h.send(runeKey('p'))
	if !h.model.IsPaused() {
		t.Fatal("p should pause a running session")
	}
	before := h.model.Snapshot().Tick
	h.tick()
	h.tick()
	if got := h.model.Snapshot().Tick; got != before {
		t.Errorf("tick advanced while paused: %d -> %d", before, got)
	}

	// Taps are dropped while paused.
	h.send(spaceKey)
	h.send(runeKey('p'))
	snap := h.tick()
	if snap.Has(taprunner.EventFlapped) {
		t.Error("tap made while paused should be dropped")
	}
	if snap.Tick != before+1 {
		t.Errorf("tick = %d, want %d", snap.Tick, before+1)
	}
}

func TestBackOnlyOutsidePlay(t *testing.T) {
	h := newHarness(t, nil)
	h.send(spaceKey)
	h.tick()

	h.send(runeKey('b'))
	if h.model.BackToMenu() {
		t.Fatal("back must be ignored mid-session")
	}

	h.tickUntil(taprunner.StateGameOver, 400)
	h.send(runeKey('b'))
	if !h.model.BackToMenu() {
		t.Error("back should leave from the game over screen")
	}
}

func TestQuit(t *testing.T) {
	h := newHarness(t, nil)
	h.tick()

	cmd := h.send(runeKey('q'))
	if !h.model.IsQuitting() {
		t.Fatal("q should quit")
	}
	if cmd == nil {
		t.Error("quit should return tea.Quit")
	}
	if h.model.View() != "" {
		t.Error("view should be empty after quit")
	}
}

func TestResizeKeepsSession(t *testing.T) {
	h := newHarness(t, nil)
	h.send(spaceKey)
	h.tick()
	h.tick()
	before := h.model.Snapshot()

	h.send(tea.WindowSizeMsg{Width: 120, Height: 40})
	if h.model.viewport.Cols != 120 || h.model.viewport.Rows != 40 {
		t.Errorf("viewport not refit: %+v", h.model.viewport)
	}
	if h.model.Engine().State() != taprunner.StatePlaying || h.model.Snapshot().Tick != before.Tick {
		t.Error("resize must not reset the session")
	}
}

func TestFrameClock(t *testing.T) {
	var c frameClock
	t0 := time.Unix(0, 0)
	if got := c.Elapsed(t0); got != 0 {
		t.Errorf("first elapsed = %v, want 0", got)
	}
	if got := c.Elapsed(t0.Add(20 * time.Millisecond)); got != 20 {
		t.Errorf("elapsed = %v, want 20", got)
	}
	c.Reset()
	if got := c.Elapsed(t0.Add(time.Second)); got != 0 {
		t.Errorf("elapsed after reset = %v, want 0", got)
	}
}

func TestSessionFlow(t *testing.T) {
	store := storage.NewMemoryStore()
	cfg := config.DefaultConfig()
	cfg.Seed = 3
	services := Services{Store: store, Runs: store}
	rt := core.RuntimeConfig{ScreenW: 80, ScreenH: 24, TickRate: 60}

	var m tea.Model = NewSessionModel(services, cfg, rt, "alice")
	m, _ = m.Update(enterKey)
	s := m.(SessionModel)
	if s.screen != screenGame || s.gameModel == nil {
		t.Fatalf("enter on Play should start a game, screen = %v", s.screen)
	}
	if s.SessionID() == "" {
		t.Error("session id not assigned")
	}

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	s = m.(SessionModel)
	if s.screen != screenMenu {
		t.Fatalf("esc on the ready screen should return to the menu, screen = %v", s.screen)
	}

	m, _ = m.Update(downKey)
	m, _ = m.Update(enterKey)
	s = m.(SessionModel)
	if s.screen != screenScores {
		t.Fatalf("second entry should open the run history, screen = %v", s.screen)
	}

	m, _ = m.Update(runeKey('b'))
	if m.(SessionModel).screen != screenMenu {
		t.Error("back from run history should return to the menu")
	}
}

func TestQuitMidSessionRecordsNoRun(t *testing.T) {
	store := storage.NewMemoryStore()
	h := newHarness(t, store)
	h.send(spaceKey)
	h.tick()

	h.exec(h.send(runeKey('q')))
	runs, _ := store.RecentRuns(context.Background(), 10)
	if len(runs) != 0 {
		t.Errorf("quitting mid-session recorded %v", runs)
	}
}
