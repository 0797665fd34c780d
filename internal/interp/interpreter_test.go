package interp

import (
	"errors"
	"io"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/nchukanov/botwalk/internal/board"
	"github.com/nchukanov/botwalk/internal/command"
	"github.com/nchukanov/botwalk/internal/level"
)

func quietLogger() *log.Logger {
	return log.New(io.Discard)
}

// buildBoard assembles a board from compact row strings with optional
// definitions, so scenarios read the way level files do.
func buildBoard(t *testing.T, src level.Source) *board.Board {
	t.Helper()
	b, err := src.Build(quietLogger())
	if err != nil {
		t.Fatalf("building board: %v", err)
	}
	return b
}

func newTestInterp(t *testing.T, src level.Source, opts Options) *Interpreter {
	t.Helper()
	b := buildBoard(t, src)
	if opts.Logger == nil {
		opts.Logger = quietLogger()
	}
	start := board.Pose{Pos: b.Start(), Facing: board.East}
	return New(b, start, opts)
}

// recorder collects signals from a synchronous run.
type recorder struct {
	sigs []Signal
}

func (r *recorder) observe(sig Signal) { r.sigs = append(r.sigs, sig) }

func (r *recorder) failReason(t *testing.T) FailReason {
	t.Helper()
	for _, sig := range r.sigs {
		if f, ok := sig.(SequenceFailed); ok {
			return f.Reason
		}
	}
	t.Fatal("no sequence-failed signal recorded")
	return 0
}

func (r *recorder) countStepsTaken() int {
	n := 0
	for _, sig := range r.sigs {
		if _, ok := sig.(StepTaken); ok {
			n++
		}
	}
	return n
}

func mustParse(t *testing.T, src string) []command.Command {
	t.Helper()
	program, err := command.Parse(src)
	if err != nil {
		t.Fatalf("parsing %q: %v", src, err)
	}
	return program
}

func TestRunCompletesOnEnd(t *testing.T) {
	nextLevel := 0
	rec := &recorder{}
	it := newTestInterp(t, level.Source{Rows: []string{"S.E"}}, Options{
		LevelID: "straight",
		Hooks:   Hooks{NextLevel: func() { nextLevel++ }},
	})
	it.Subscribe(rec.observe)

	if err := it.Run(mustParse(t, "F F")); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if it.State() != Completed {
		t.Errorf("state = %v, want completed", it.State())
	}
	if it.Steps() != 2 {
		t.Errorf("steps = %d, want 2", it.Steps())
	}
	if it.Pose().Pos != (board.Position{X: 2, Y: 0}) {
		t.Errorf("final position = %v, want (2,0)", it.Pose().Pos)
	}
	if nextLevel != 1 {
		t.Errorf("next-level hook called %d times, want 1", nextLevel)
	}

	started, ok := rec.sigs[0].(SequenceStarted)
	if !ok {
		t.Fatalf("first signal is %T, want SequenceStarted", rec.sigs[0])
	}
	if started.Planned != 2 {
		t.Errorf("planned steps = %d, want 2", started.Planned)
	}
	var sawCompleted, sawLevel bool
	for _, sig := range rec.sigs {
		switch s := sig.(type) {
		case SequenceCompleted:
			sawCompleted = true
		case LevelCompleted:
			sawLevel = true
			if s.LevelID != "straight" || s.Steps != 2 {
				t.Errorf("level-completed carries %q/%d, want straight/2", s.LevelID, s.Steps)
			}
		}
	}
	if !sawCompleted || !sawLevel {
		t.Error("expected both sequence-completed and level-completed signals")
	}
}

func TestBlockedStepIsNotFailure(t *testing.T) {
	restarts := 0
	rec := &recorder{}
	it := newTestInterp(t, level.Source{Rows: []string{"S#E"}}, Options{
		Hooks: Hooks{RequestRestart: func() { restarts++ }},
	})
	it.Subscribe(rec.observe)

	if err := it.Run(mustParse(t, "F")); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	// The step is consumed and the player stays put; the run only fails at
	// resolution because it ended away from the end tile.
	if it.Steps() != 1 {
		t.Errorf("steps = %d, want 1", it.Steps())
	}
	if it.Pose().Pos != (board.Position{X: 0, Y: 0}) {
		t.Errorf("position = %v, want unchanged (0,0)", it.Pose().Pos)
	}
	var blocked bool
	for _, sig := range rec.sigs {
		if _, ok := sig.(MoveBlocked); ok {
			blocked = true
		}
		if _, ok := sig.(PlayerMoved); ok {
			t.Error("blocked step must not emit player-moved")
		}
	}
	if !blocked {
		t.Error("expected a move-blocked signal")
	}
	if it.State() != Failed || rec.failReason(t) != ReasonOffEnd {
		t.Errorf("state/reason = %v/%v, want failed/off-end", it.State(), rec.failReason(t))
	}
	if restarts != 1 {
		t.Errorf("restart hook called %d times, want 1", restarts)
	}
}

func TestFallAbortsNestedLoops(t *testing.T) {
	rec := &recorder{}
	it := newTestInterp(t, level.Source{Rows: []string{"S E"}}, Options{})
	it.Subscribe(rec.observe)

	// The very first forward falls into the gap; neither the inner nor the
	// outer loop may run any further iterations.
	if err := it.Run(mustParse(t, "2[2[F F]]")); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if it.State() != Failed {
		t.Errorf("state = %v, want failed", it.State())
	}
	if rec.failReason(t) != ReasonFall {
		t.Errorf("reason = %v, want fall", rec.failReason(t))
	}
	if got := rec.countStepsTaken(); got != 1 {
		t.Errorf("%d steps executed after the fall, want exactly 1", got)
	}
}

func TestLoopExpansion(t *testing.T) {
	it := newTestInterp(t, level.Source{Rows: []string{"S....E"}}, Options{})
	if err := it.Run(mustParse(t, "5[F]")); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if it.State() != Completed || it.Steps() != 5 {
		t.Errorf("state=%v steps=%d, want completed/5", it.State(), it.Steps())
	}
}

func TestZeroCountLoopRunsOnce(t *testing.T) {
	it := newTestInterp(t, level.Source{Rows: []string{"SE"}}, Options{})
	program := []command.Command{command.Loop{Times: 0, Body: []command.Command{command.Forward}}}
	if err := it.Run(program); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if it.State() != Completed || it.Steps() != 1 {
		t.Errorf("state=%v steps=%d, want completed/1 (zero-count loop runs once)", it.State(), it.Steps())
	}
}

func TestSwitchActivatesBridge(t *testing.T) {
	src := level.Source{
		Defs: []level.Definition{
			{Key: "o1", Template: level.Template{Kind: board.KindSwitch, SwitchID: 1}},
			{Key: "b1", Template: level.Template{Kind: board.KindBridge, SwitchRef: 1, ActiveWhenOn: true}},
		},
		Rows: []string{"So1b1E"},
	}
	rec := &recorder{}
	it := newTestInterp(t, src, Options{})
	it.Subscribe(rec.observe)

	// Step onto the switch, then cross the bridge it just raised.
	if err := it.Run(mustParse(t, "F F F")); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if it.State() != Completed {
		t.Fatalf("state = %v, want completed", it.State())
	}

	var switchChanged, bridgeChanged bool
	for _, sig := range rec.sigs {
		tc, ok := sig.(TileChanged)
		if !ok {
			continue
		}
		switch tc.Pos {
		case board.Position{X: 1, Y: 0}:
			switchChanged = true
			if tc.Tile.Kind != board.KindSwitch || !tc.Tile.On {
				t.Errorf("switch change carries %+v, want an on switch", tc.Tile)
			}
		case board.Position{X: 2, Y: 0}:
			bridgeChanged = true
			if tc.Tile.Kind != board.KindBridge || !tc.Tile.Active {
				t.Errorf("bridge change carries %+v, want an active bridge", tc.Tile)
			}
		}
	}
	if !switchChanged || !bridgeChanged {
		t.Error("expected tile-changed signals for both the switch and its bridge")
	}
}

func TestInactiveBridgeIsAFall(t *testing.T) {
	src := level.Source{
		Defs: []level.Definition{
			{Key: "b1", Template: level.Template{Kind: board.KindBridge, SwitchRef: 1, ActiveWhenOn: true}},
			{Key: "o1", Template: level.Template{Kind: board.KindSwitch, SwitchID: 1}},
		},
		Rows: []string{
			"o1  ",
			"Sb1E",
		},
	}
	rec := &recorder{}
	it := newTestInterp(t, src, Options{})
	it.Subscribe(rec.observe)

	if err := it.Run(mustParse(t, "F")); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if it.State() != Failed || rec.failReason(t) != ReasonFall {
		t.Errorf("stepping onto an inactive bridge: state=%v, want failed by fall", it.State())
	}
}

func TestWeakFloorCollapseFailsRun(t *testing.T) {
	src := level.Source{
		Defs: []level.Definition{
			{Key: "W2", Template: level.Template{Kind: board.KindWeakFloor, InitialSteps: 2}},
		},
		Rows: []string{"SW2E"},
	}
	rec := &recorder{}
	it := newTestInterp(t, src, Options{})
	it.Subscribe(rec.observe)

	// Cross onto the weak floor, walk back, then step onto it again: the
	// second landing exhausts it and the run fails.
	if err := it.Run(mustParse(t, "F L L F L L F")); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if it.State() != Failed {
		t.Errorf("state = %v, want failed", it.State())
	}
	if rec.failReason(t) != ReasonCollapsed {
		t.Errorf("reason = %v, want collapsed", rec.failReason(t))
	}
	if it.Steps() != 7 {
		t.Errorf("steps = %d, want 7 (nothing runs after the collapse)", it.Steps())
	}
	if it.Board().CheckMove(board.Position{X: 1, Y: 0}) != board.MoveFall {
		t.Error("the collapsed cell should be a gap afterwards")
	}
}

func TestEndTileMidProgramIsPendingOnly(t *testing.T) {
	rec := &recorder{}
	it := newTestInterp(t, level.Source{Rows: []string{"SE."}}, Options{})
	it.Subscribe(rec.observe)

	// The first step lands on the end tile but the program keeps going and
	// finishes on plain floor, so the run fails at resolution.
	if err := it.Run(mustParse(t, "F F")); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if it.State() != Failed || rec.failReason(t) != ReasonOffEnd {
		t.Errorf("state/reason = %v/%v, want failed/off-end", it.State(), rec.failReason(t))
	}
	if it.Pose().Pos != (board.Position{X: 2, Y: 0}) {
		t.Errorf("final position = %v, want (2,0)", it.Pose().Pos)
	}
}

func TestHaltDuringSuspension(t *testing.T) {
	it := newTestInterp(t, level.Source{Rows: []string{"S..........E"}}, Options{
		StepDelay: 30 * time.Millisecond,
	})

	done := make(chan error, 1)
	go func() { done <- it.Run(mustParse(t, "11[F]")) }()

	time.Sleep(75 * time.Millisecond)
	it.Halt()
	it.Halt() // idempotent

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run returned error: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after halt")
	}

	if it.State() != Halted {
		t.Errorf("state = %v, want halted", it.State())
	}
	if it.Steps() < 1 || it.Steps() >= 11 {
		t.Errorf("steps = %d, want a partial run", it.Steps())
	}
}

func TestHaltWhenIdleIsANoop(t *testing.T) {
	it := newTestInterp(t, level.Source{Rows: []string{"SE"}}, Options{})
	it.Halt()
	if it.State() != Idle {
		t.Errorf("state = %v, want idle", it.State())
	}
	// The interpreter still runs normally afterwards.
	if err := it.Run(mustParse(t, "F")); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if it.State() != Completed {
		t.Errorf("state = %v, want completed", it.State())
	}
}

func TestRunWhileRunningIsRejected(t *testing.T) {
	it := newTestInterp(t, level.Source{Rows: []string{"S..................E"}}, Options{
		StepDelay: 20 * time.Millisecond,
	})

	done := make(chan error, 1)
	go func() { done <- it.Run(mustParse(t, "19[F]")) }()

	time.Sleep(35 * time.Millisecond)
	if err := it.Run(mustParse(t, "F")); !errors.Is(err, ErrAlreadyRunning) {
		t.Errorf("second Run returned %v, want ErrAlreadyRunning", err)
	}

	it.Halt()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("first Run did not return after halt")
	}
	if it.State() != Halted {
		t.Errorf("state = %v, want halted (the rejected call must not disturb the run)", it.State())
	}
}

func TestTurnsNeverTouchTheBoard(t *testing.T) {
	it := newTestInterp(t, level.Source{Rows: []string{"SE"}}, Options{})
	if err := it.Run(mustParse(t, "L R R L")); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if it.Pose().Pos != (board.Position{X: 0, Y: 0}) {
		t.Errorf("turns moved the player to %v", it.Pose().Pos)
	}
	if it.Pose().Facing != board.East {
		t.Errorf("facing = %v, want east after balanced turns", it.Pose().Facing)
	}
	if it.State() != Failed {
		t.Errorf("state = %v, want failed (still on the start tile)", it.State())
	}
}
