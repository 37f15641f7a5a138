package taprunner

import (
	"context"
	"errors"
	"math/rand"
	"reflect"
	"testing"

	"github.com/vovakirdan/taprunner/internal/config"
)

const frameMs = 16

// memStore is an in-memory ScoreStore that counts writes.
type memStore struct {
	values  map[string]int
	sets    int
	failSet error
	failGet error
}

func newMemStore() *memStore {
	return &memStore{values: make(map[string]int)}
}

func (s *memStore) Get(_ context.Context, key string) (int, bool, error) {
	if s.failGet != nil {
		return 0, false, s.failGet
	}
	v, ok := s.values[key]
	return v, ok, nil
}

func (s *memStore) Set(_ context.Context, key string, value int) error {
	if s.failSet != nil {
		return s.failSet
	}
	s.sets++
	s.values[key] = value
	return nil
}

// easyConfig has a gap wide enough that a simple autopilot never dies.
func easyConfig() config.Config {
	cfg := config.DefaultConfig()
	cfg.Obstacles.GapHeight = 400
	cfg.Seed = 7
	return cfg
}

func newEngine(t *testing.T, cfg config.Config, opts Options) *Engine {
	t.Helper()
	e, err := New(cfg, opts)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return e
}

// autopilot flaps whenever the player falls below y=300.
func autopilot(e *Engine, snap Snapshot) {
	if snap.Player.Y > 300 && snap.Player.VY > 0 {
		e.Submit(Tap())
	}
}

// playToScore starts a session and keeps the player alive until target.
func playToScore(t *testing.T, e *Engine, target int) {
	t.Helper()
	e.Submit(Tap())
	for i := 0; i < 5000; i++ {
		snap := e.Tick(frameMs)
		if snap.State == StateGameOver {
			t.Fatalf("died at score %d before reaching %d", snap.Score, target)
		}
		if snap.Score >= target {
			return
		}
		autopilot(e, snap)
	}
	t.Fatalf("score %d not reached", target)
}

// fallToFloor stops tapping until the session ends.
func fallToFloor(t *testing.T, e *Engine) Snapshot {
	t.Helper()
	for i := 0; i < 500; i++ {
		snap := e.Tick(frameMs)
		if snap.State == StateGameOver {
			return snap
		}
	}
	t.Fatal("session did not end")
	return Snapshot{}
}

func TestNewStartsReady(t *testing.T) {
	e := newEngine(t, config.DefaultConfig(), Options{})
	snap := e.Snapshot()

	if snap.State != StateReady {
		t.Errorf("initial state = %v, want ready", snap.State)
	}
	if snap.Player.X != 90 || snap.Player.Y != 288 || snap.Player.VY != 0 || snap.Player.Radius != 18 {
		t.Errorf("initial player = %+v", snap.Player)
	}
	if len(snap.Obstacles) != 0 {
		t.Errorf("expected no obstacles, got %d", len(snap.Obstacles))
	}
	if snap.FieldWidth != 360 || snap.FieldHeight != 640 {
		t.Errorf("field = %vx%v", snap.FieldWidth, snap.FieldHeight)
	}
}

func TestReadyHasNoPhysics(t *testing.T) {
	e := newEngine(t, config.DefaultConfig(), Options{})
	for i := 0; i < 30; i++ {
		e.Tick(frameMs)
	}
	snap := e.Snapshot()
	if snap.Player.Y != 288 || snap.Tick != 0 || len(snap.Obstacles) != 0 {
		t.Errorf("Ready ticks changed the world: %+v", snap)
	}
}

func TestTapStartsAndFlaps(t *testing.T) {
	e := newEngine(t, config.DefaultConfig(), Options{})
	e.Submit(Tap())

	// Intents wait for the next tick
	if e.State() != StateReady {
		t.Fatal("Submit must not change state before Tick")
	}

	snap := e.Tick(frameMs)
	if snap.State != StatePlaying {
		t.Fatalf("state = %v, want playing", snap.State)
	}
	if snap.Player.VY != -8.2 {
		t.Errorf("vy after first tap = %v, want -8.2", snap.Player.VY)
	}
	if !snap.Has(EventStarted) || !snap.Has(EventFlapped) {
		t.Errorf("expected started and flapped events, got %+v", snap.Events)
	}
}

func TestTapWhilePlayingFlaps(t *testing.T) {
	e := newEngine(t, config.DefaultConfig(), Options{})
	e.Submit(Tap())
	e.Tick(frameMs)
	for i := 0; i < 10; i++ {
		e.Tick(frameMs)
	}

	// Several taps in one tick are one impulse
	e.Submit(Tap())
	e.Submit(Tap())
	snap := e.Tick(frameMs)
	if snap.Player.VY != -8.2 {
		t.Errorf("vy = %v, want -8.2", snap.Player.VY)
	}
	flaps := 0
	for _, ev := range snap.Events {
		if ev.Kind == EventFlapped {
			flaps++
		}
	}
	if flaps != 1 {
		t.Errorf("flapped events = %d, want 1", flaps)
	}
}

// With no taps from y=288, vy=0: y_n = 288 + 0.15*n*(n+1).
// The floor is hit once y_n + 18 > 640, i.e. n*(n+1) > 2226.67, so n = 47.
func TestFloorDeathExactTick(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Physics.Gravity = 0.3
	cfg.Physics.JumpVelocity = -8.2
	cfg.Obstacles.Speed = 2.5
	cfg.Obstacles.GapHeight = 160
	cfg.Field.Height = 640
	cfg.Player.StartY = 288

	e := newEngine(t, cfg, Options{})
	e.state = StatePlaying

	var snap Snapshot
	for i := 1; i <= 50; i++ {
		snap = e.Tick(frameMs)
		if snap.State == StateGameOver {
			break
		}
	}

	if snap.State != StateGameOver {
		t.Fatal("expected game over within 50 ticks")
	}
	if snap.Tick != 47 {
		t.Errorf("game over at tick %d, want 47", snap.Tick)
	}
	if snap.GameOverReason() != ReasonFloor {
		t.Errorf("reason = %v, want floor", snap.GameOverReason())
	}
	if snap.Player.Y != 640-18 {
		t.Errorf("player y = %v, want clamped to %v", snap.Player.Y, 640-18)
	}
}

func TestCeilingIsSoft(t *testing.T) {
	e := newEngine(t, config.DefaultConfig(), Options{})
	e.state = StatePlaying
	e.player.Y = 20
	e.player.VY = -8.2

	snap := e.Tick(frameMs)
	if snap.State != StatePlaying {
		t.Fatalf("ceiling ended the session")
	}
	if snap.Player.Y != 18 {
		t.Errorf("y = %v, want clamped to radius 18", snap.Player.Y)
	}
	if snap.Player.VY != 0 {
		t.Errorf("vy = %v, want 0 at the ceiling", snap.Player.VY)
	}
}

func TestFloorIsLethal(t *testing.T) {
	e := newEngine(t, config.DefaultConfig(), Options{})
	e.state = StatePlaying
	e.player.Y = 620
	e.player.VY = 5

	snap := e.Tick(frameMs)
	if snap.State != StateGameOver {
		t.Fatalf("state = %v, want game over", snap.State)
	}
	if snap.GameOverReason() != ReasonFloor {
		t.Errorf("reason = %v", snap.GameOverReason())
	}
}

func TestCollisionBoundary(t *testing.T) {
	// Player box is [72, 108] horizontally with radius 18 at x=90.
	// Pair spans x [60, 115], gap [100, 260].
	tests := []struct {
		name string
		y    float64
		want bool
	}{
		{"touching gap top", 118, false},
		{"one unit into top barrier", 117, true},
		{"one unit below gap top", 119, false},
		{"touching gap bottom", 242, false},
		{"one unit into bottom barrier", 243, true},
		{"one unit above gap bottom", 241, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for run := 0; run < 3; run++ {
				e := newEngine(t, config.DefaultConfig(), Options{})
				e.obstacles = append(e.obstacles, NewObstaclePair(60, 100, 160, 55))
				e.player.Y = tt.y

				if got := e.collides(); got != tt.want {
					t.Errorf("collides() at y=%v = %v, want %v", tt.y, got, tt.want)
				}
			}
		})
	}
}

func TestCollisionHorizontalTouchIsClear(t *testing.T) {
	e := newEngine(t, config.DefaultConfig(), Options{})
	// Player box right edge is 108; a pair starting there only touches.
	e.obstacles = append(e.obstacles, NewObstaclePair(108, 300, 160, 55))
	if e.collides() {
		t.Error("touching left edge should not collide")
	}
	e.obstacles[0].X = 107
	if !e.collides() {
		t.Error("one unit overlap should collide")
	}
}

func TestObstacleCollisionEndsSession(t *testing.T) {
	e := newEngine(t, config.DefaultConfig(), Options{})
	e.Submit(Tap())

	var snap Snapshot
	for i := 0; i < 1000; i++ {
		e.Submit(Tap()) // Hug the ceiling until a top barrier arrives
		snap = e.Tick(frameMs)
		if snap.State == StateGameOver {
			break
		}
	}

	if snap.State != StateGameOver {
		t.Fatal("expected obstacle collision")
	}
	if snap.GameOverReason() != ReasonObstacle {
		t.Errorf("reason = %v, want obstacle", snap.GameOverReason())
	}

	// Frozen: further ticks change nothing
	before := e.Snapshot()
	e.Submit(Tap())
	after := e.Tick(frameMs)
	after.Events = nil
	before.Events = nil
	if !reflect.DeepEqual(before, after) {
		t.Error("game over state must be frozen")
	}
}

func TestScoreMonotonicAndAtMostOnce(t *testing.T) {
	e := newEngine(t, easyConfig(), Options{})
	rng := rand.New(rand.NewSource(3))

	e.Submit(Tap())
	prev := 0
	scoredEvents := 0
	for i := 0; i < 3000; i++ {
		// Jittery frame times, including stalls and zero-length frames
		dt := float64(rng.Intn(60))
		snap := e.Tick(dt)

		delta := snap.Score - prev
		if delta != 0 && delta != 1 {
			t.Fatalf("tick %d: score jumped by %d", snap.Tick, delta)
		}
		prev = snap.Score
		for _, ev := range snap.Events {
			if ev.Kind == EventScored {
				scoredEvents++
			}
		}
		if snap.State == StateGameOver {
			break
		}
		autopilot(e, snap)
	}

	if prev == 0 {
		t.Fatal("autopilot never scored")
	}
	if scoredEvents != prev {
		t.Errorf("scored events = %d, score = %d", scoredEvents, prev)
	}
}

func TestScoreOncePerPair(t *testing.T) {
	e := newEngine(t, config.DefaultConfig(), Options{})
	e.state = StatePlaying
	e.obstacles = append(e.obstacles, NewObstaclePair(30, 100, 160, 55)) // Right edge 85 < 90

	e.scorePassed()
	e.scorePassed()
	e.scorePassed()

	if e.score != 1 {
		t.Errorf("score = %d, want 1", e.score)
	}
	if !e.obstacles[0].Scored {
		t.Error("pair should be marked scored")
	}
}

func TestRewardThreshold(t *testing.T) {
	e := newEngine(t, easyConfig(), Options{})

	playToScore(t, e, 4)
	if e.Snapshot().RewardReached {
		t.Fatal("reward reached too early")
	}

	sawEvent := false
	for i := 0; i < 500 && e.Score() < 5; i++ {
		snap := e.Tick(frameMs)
		if snap.Has(EventRewardReached) {
			sawEvent = true
		}
		autopilot(e, snap)
	}
	if !sawEvent {
		t.Error("expected a reward event at score 5")
	}
	if !e.Snapshot().RewardReached {
		t.Error("RewardReached should stay set")
	}
}

func TestRestartIsIdempotent(t *testing.T) {
	fresh := newEngine(t, config.DefaultConfig(), Options{}).Snapshot()

	normalize := func(s Snapshot) Snapshot {
		s.Events = nil
		s.BestScore = 0
		return s
	}

	floorDeath := func(e *Engine) {
		e.Submit(Tap())
		fallToFloor(t, e)
	}
	obstacleDeath := func(e *Engine) {
		e.Submit(Tap())
		for i := 0; i < 1000 && e.State() != StateGameOver; i++ {
			e.Submit(Tap())
			e.Tick(frameMs)
		}
	}

	for name, die := range map[string]func(*Engine){"floor": floorDeath, "obstacle": obstacleDeath} {
		t.Run(name, func(t *testing.T) {
			e := newEngine(t, config.DefaultConfig(), Options{})
			die(e)
			if e.State() != StateGameOver {
				t.Fatal("session did not end")
			}

			e.Submit(RestartRequest())
			snap := e.Tick(frameMs)
			if !snap.Has(EventRestarted) {
				t.Error("expected restarted event")
			}
			if !reflect.DeepEqual(normalize(snap), normalize(fresh)) {
				t.Errorf("restart state differs from fresh\n got: %+v\nwant: %+v", snap, fresh)
			}
		})
	}
}

func TestRestartReseedsGenerator(t *testing.T) {
	cfg := easyConfig()
	a := newEngine(t, cfg, Options{})
	b := newEngine(t, cfg, Options{})

	a.Submit(Tap())
	first := a.Tick(frameMs).Obstacles[0]
	fallToFloor(t, a)
	a.Submit(RestartRequest())
	a.Tick(frameMs)
	a.Submit(Tap())
	again := a.Tick(frameMs).Obstacles[0]

	b.Submit(Tap())
	ref := b.Tick(frameMs).Obstacles[0]

	if first != ref || again != ref {
		t.Errorf("gap placement not reseeded: first=%+v again=%+v ref=%+v", first, again, ref)
	}
}

func TestRestartIgnoredOutsideGameOver(t *testing.T) {
	e := newEngine(t, config.DefaultConfig(), Options{})
	e.Submit(Tap())
	e.Tick(frameMs)
	e.Tick(frameMs)

	e.Submit(RestartRequest())
	snap := e.Tick(frameMs)
	if snap.State != StatePlaying || snap.Tick != 3 {
		t.Errorf("restart while playing should be ignored: state=%v tick=%d", snap.State, snap.Tick)
	}
}

func TestTapOnGameOverScreen(t *testing.T) {
	e := newEngine(t, config.DefaultConfig(), Options{})
	e.Submit(Tap())
	fallToFloor(t, e)

	// Keyboard tap and a tap outside the control are ignored
	e.Submit(Tap())
	e.Submit(TapAt(5, 5))
	if snap := e.Tick(frameMs); snap.State != StateGameOver {
		t.Fatalf("state = %v, want game over", snap.State)
	}

	rc := e.RestartControl()
	cx, cy := rc.Center()
	if !e.IsInsideRestartControl(cx, cy) {
		t.Fatal("center of restart control should be inside")
	}
	e.Submit(TapAt(cx, cy))
	if snap := e.Tick(frameMs); snap.State != StateReady {
		t.Errorf("state = %v, want ready after restart tap", snap.State)
	}
}

func TestIsInsideRestartControl(t *testing.T) {
	e := newEngine(t, config.DefaultConfig(), Options{})
	rc := e.RestartControl()

	tests := []struct {
		x, y float64
		want bool
	}{
		{rc.X, rc.Y, true},
		{rc.X - 1, rc.Y, false},
		{rc.Right(), rc.Y, false},
		{rc.X + 1, rc.Bottom() - 1, true},
		{rc.X, rc.Bottom(), false},
	}
	for _, tt := range tests {
		if got := e.IsInsideRestartControl(tt.x, tt.y); got != tt.want {
			t.Errorf("IsInsideRestartControl(%v, %v) = %v, want %v", tt.x, tt.y, got, tt.want)
		}
	}
}

func TestBestScoreKeptWhenNotBeaten(t *testing.T) {
	store := newMemStore()
	store.values[config.DefaultBestScoreKey] = 7

	e := newEngine(t, easyConfig(), Options{Store: store})
	if e.BestScore() != 7 {
		t.Fatalf("best = %d, want 7 from store", e.BestScore())
	}

	playToScore(t, e, 3)
	fallToFloor(t, e)

	if e.BestScore() != 7 {
		t.Errorf("best = %d, want 7", e.BestScore())
	}
	if store.sets != 0 {
		t.Errorf("store writes = %d, want 0", store.sets)
	}
}

func TestBestScoreSingleWrite(t *testing.T) {
	store := newMemStore()
	store.values[config.DefaultBestScoreKey] = 7

	e := newEngine(t, easyConfig(), Options{Store: store})
	playToScore(t, e, 9)
	if e.BestScore() != 9 {
		t.Errorf("in-memory best = %d, want 9", e.BestScore())
	}
	if store.sets != 0 {
		t.Errorf("store written mid-session %d times", store.sets)
	}

	fallToFloor(t, e)
	if store.sets != 1 {
		t.Errorf("store writes = %d, want exactly 1", store.sets)
	}
	if store.values[config.DefaultBestScoreKey] != e.BestScore() {
		t.Errorf("stored best = %d, engine best = %d", store.values[config.DefaultBestScoreKey], e.BestScore())
	}

	// Nothing new to write
	e.Flush()
	if store.sets != 1 {
		t.Errorf("redundant flush wrote again")
	}
}

func TestBestScoreWriteFailureRetries(t *testing.T) {
	store := newMemStore()
	store.failSet = errors.New("disk full")

	e := newEngine(t, easyConfig(), Options{Store: store})
	playToScore(t, e, 1)
	fallToFloor(t, e)

	if !e.PendingWrite() {
		t.Fatal("failed write should stay pending")
	}
	if e.BestScore() < 1 {
		t.Errorf("in-memory best lost after failed write: %d", e.BestScore())
	}

	store.failSet = nil
	e.Flush()
	if e.PendingWrite() || store.sets != 1 {
		t.Errorf("retry did not write: pending=%v sets=%d", e.PendingWrite(), store.sets)
	}
}

func TestBestScoreReadFailure(t *testing.T) {
	store := newMemStore()
	store.failGet = errors.New("unavailable")

	e := newEngine(t, config.DefaultConfig(), Options{Store: store})
	if e.BestScore() != 0 {
		t.Errorf("best = %d, want 0 when the store cannot be read", e.BestScore())
	}
}

func TestConfigurationRejected(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Obstacles.GapHeight = 700
	cfg.Field.Height = 640

	e, err := New(cfg, Options{})
	if e != nil {
		t.Error("no engine should be created")
	}
	var cerr *config.ConfigurationError
	if !errors.As(err, &cerr) {
		t.Fatalf("expected *config.ConfigurationError, got %v", err)
	}
}

func TestGameDeterminism(t *testing.T) {
	// Same seed and inputs produce identical snapshots
	run := func() []Snapshot {
		e := newEngine(t, easyConfig(), Options{})
		e.Submit(Tap())
		var out []Snapshot
		for i := 0; i < 600; i++ {
			snap := e.Tick(frameMs)
			out = append(out, snap)
			if snap.State == StateGameOver {
				break
			}
			autopilot(e, snap)
		}
		return out
	}

	a, b := run(), run()
	if !reflect.DeepEqual(a, b) {
		t.Error("determinism failed: runs differ")
	}
}

func TestSetSeedChangesGaps(t *testing.T) {
	a := newEngine(t, config.DefaultConfig(), Options{})
	b := newEngine(t, config.DefaultConfig(), Options{})
	b.SetSeed(12345)

	a.Submit(Tap())
	b.Submit(Tap())
	ga := a.Tick(frameMs).Obstacles[0].GapTopOffset
	gb := b.Tick(frameMs).Obstacles[0].GapTopOffset
	if ga == gb {
		t.Errorf("different seeds produced the same gap %v", ga)
	}
}

func TestSnapshotIsACopy(t *testing.T) {
	e := newEngine(t, config.DefaultConfig(), Options{})
	e.Submit(Tap())
	snap := e.Tick(frameMs)

	snap.Obstacles[0].X = -999
	snap.Player.Y = -999
	if e.Snapshot().Obstacles[0].X == -999 || e.Snapshot().Player.Y == -999 {
		t.Error("mutating a snapshot changed the engine")
	}
}

func TestStepFactorClamps(t *testing.T) {
	e := newEngine(t, config.DefaultConfig(), Options{})
	tests := []struct {
		dt   float64
		want float64
	}{
		{16, 1},
		{8, 0.5},
		{0, 0},
		{-10, 0},
		{32, 2},
		{500, 2},
	}
	for _, tt := range tests {
		if got := e.stepFactor(tt.dt); got != tt.want {
			t.Errorf("stepFactor(%v) = %v, want %v", tt.dt, got, tt.want)
		}
	}
}

func TestBackgroundScrolls(t *testing.T) {
	e := newEngine(t, config.DefaultConfig(), Options{})
	e.Submit(Tap())
	snap := e.Tick(frameMs)
	if snap.BackgroundOffset != 2.5*0.25 {
		t.Errorf("background offset = %v, want %v", snap.BackgroundOffset, 2.5*0.25)
	}
}
