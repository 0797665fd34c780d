// Package interp executes a command program against a board: depth-first
// loop expansion, timed pacing between steps, and mid-run cancellation.
// A single interpreter runs one program at a time; Run blocks until the run
// resolves and Halt may be called from any goroutine.
package interp

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/nchukanov/botwalk/internal/board"
	"github.com/nchukanov/botwalk/internal/command"
)

// State is the interpreter lifecycle state.
type State int

const (
	Idle State = iota
	Running
	Completed
	Failed
	Halted
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Running:
		return "running"
	case Completed:
		return "completed"
	case Failed:
		return "failed"
	case Halted:
		return "halted"
	default:
		return "unknown"
	}
}

// ErrAlreadyRunning is returned when Run is called on a running interpreter.
// The call is a no-op; the in-flight run is unaffected.
var ErrAlreadyRunning = errors.New("interp: already running")

// Hooks are the collaborator callbacks the interpreter may invoke: a restart
// trigger on failure and a next-level trigger on completion. Both are
// optional. They are supplied explicitly at construction; there is no
// ambient global state.
type Hooks struct {
	RequestRestart func()
	NextLevel      func()
}

// Options configures an interpreter.
type Options struct {
	// StepDelay is the fixed suspension after each atomic step. Zero means
	// no pacing (headless runs, tests).
	StepDelay time.Duration

	Logger *log.Logger
	Hooks  Hooks
	Tracer trace.Tracer // optional; one span per run when set

	// Level identity, carried on the LevelCompleted signal.
	LevelID    string
	LevelIndex int
}

// Interpreter walks a command program against a board and the player pose.
// Board state is only ever mutated from within the single sequential
// execution path of Run; Halt merely requests cancellation.
type Interpreter struct {
	b      *board.Board
	logger *log.Logger
	opts   Options

	mu        sync.Mutex
	state     State
	pose      board.Pose
	steps     int
	runID     string
	cancel    context.CancelFunc
	observers []Observer
}

// New creates an interpreter for one board, with the player at the given
// starting pose.
func New(b *board.Board, start board.Pose, opts Options) *Interpreter {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	return &Interpreter{
		b:      b,
		logger: logger,
		opts:   opts,
		state:  Idle,
		pose:   start,
	}
}

// Subscribe registers an observer for run signals. Not safe to call while a
// run is in flight.
func (it *Interpreter) Subscribe(obs Observer) {
	it.mu.Lock()
	defer it.mu.Unlock()
	it.observers = append(it.observers, obs)
}

// State returns the current lifecycle state.
func (it *Interpreter) State() State {
	it.mu.Lock()
	defer it.mu.Unlock()
	return it.state
}

// Pose returns the player's current pose.
func (it *Interpreter) Pose() board.Pose {
	it.mu.Lock()
	defer it.mu.Unlock()
	return it.pose
}

// Steps returns the number of atomic steps taken in the current or most
// recent run.
func (it *Interpreter) Steps() int {
	it.mu.Lock()
	defer it.mu.Unlock()
	return it.steps
}

// Board returns the board this interpreter runs against.
func (it *Interpreter) Board() *board.Board {
	return it.b
}

// RunID returns the identifier of the current or most recent run, or ""
// before the first run.
func (it *Interpreter) RunID() string {
	it.mu.Lock()
	defer it.mu.Unlock()
	return it.runID
}

// Halt cancels the in-flight run, if any. The run aborts before its next
// atomic step, or immediately if it is suspended between steps. Idempotent
// and safe from any goroutine.
func (it *Interpreter) Halt() {
	it.mu.Lock()
	defer it.mu.Unlock()
	if it.state == Running && it.cancel != nil {
		it.cancel()
	}
}

// runOutcome is the internal result of executing (part of) a program.
type runOutcome int

const (
	outcomeOK runOutcome = iota
	outcomeFell
	outcomeCollapsed
	outcomeHalted
)

// Run executes the program and blocks until it completes, fails, or is
// halted. A second Run while one is in flight is rejected with
// ErrAlreadyRunning and a diagnostic; the running sequence is unaffected.
func (it *Interpreter) Run(program []command.Command) error {
	it.mu.Lock()
	if it.state == Running {
		it.mu.Unlock()
		it.logger.Warn("run rejected: a sequence is already running")
		return ErrAlreadyRunning
	}
	ctx, cancel := context.WithCancel(context.Background())
	it.state = Running
	it.steps = 0
	it.runID = uuid.NewString()
	it.cancel = cancel
	runID := it.runID
	it.mu.Unlock()
	defer cancel()

	var span trace.Span
	if it.opts.Tracer != nil {
		ctx, span = it.opts.Tracer.Start(ctx, "interp.run", trace.WithAttributes(
			attribute.String("run.id", runID),
			attribute.String("level.id", it.opts.LevelID),
			attribute.Int("program.steps", command.CountSteps(program)),
		))
		defer span.End()
	}

	it.emit(SequenceStarted{RunID: runID, Planned: command.CountSteps(program)})
	out := it.execList(ctx, program)
	return it.resolve(runID, out, span)
}

// resolve performs end-of-run resolution and fires the terminal signals.
func (it *Interpreter) resolve(runID string, out runOutcome, span trace.Span) error {
	it.mu.Lock()
	steps := it.steps
	pose := it.pose
	it.cancel = nil

	switch out {
	case outcomeHalted:
		it.state = Halted
		it.mu.Unlock()
		it.logger.Info("run halted", "run", runID, "steps", steps)
		it.setSpanOutcome(span, "halted")
		return nil

	case outcomeFell, outcomeCollapsed:
		it.state = Failed
		it.mu.Unlock()
		reason := ReasonFall
		if out == outcomeCollapsed {
			reason = ReasonCollapsed
		}
		it.logger.Info("run failed", "run", runID, "steps", steps, "reason", reason)
		it.setSpanOutcome(span, "failed")
		it.emit(SequenceFailed{RunID: runID, Steps: steps, Reason: reason})
		it.requestRestart()
		return nil
	}

	// Program exhausted without failing: the run succeeds only if the
	// player finished on the end tile.
	tile, ok := it.b.TileAt(pose.Pos)
	if ok && tile.Kind == board.KindEnd {
		it.state = Completed
		it.mu.Unlock()
		it.logger.Info("run completed", "run", runID, "steps", steps)
		it.setSpanOutcome(span, "completed")
		it.emit(SequenceCompleted{RunID: runID, Steps: steps})
		it.emit(LevelCompleted{LevelID: it.opts.LevelID, LevelIndex: it.opts.LevelIndex, Steps: steps})
		if it.opts.Hooks.NextLevel != nil {
			it.opts.Hooks.NextLevel()
		}
		return nil
	}

	it.state = Failed
	it.mu.Unlock()
	it.logger.Info("run failed", "run", runID, "steps", steps, "reason", ReasonOffEnd)
	it.setSpanOutcome(span, "failed")
	it.emit(SequenceFailed{RunID: runID, Steps: steps, Reason: ReasonOffEnd})
	it.requestRestart()
	return nil
}

// execList executes a command list depth-first. A failure or halt anywhere
// inside unwinds every enclosing loop without running remaining iterations.
func (it *Interpreter) execList(ctx context.Context, cmds []command.Command) runOutcome {
	for _, c := range cmds {
		switch cmd := c.(type) {
		case command.Step:
			if ctx.Err() != nil {
				return outcomeHalted
			}
			if out := it.execStep(cmd); out != outcomeOK {
				return out
			}
			if !it.pause(ctx) {
				return outcomeHalted
			}

		case command.Loop:
			times := cmd.Times
			if times < 1 {
				times = 1
			}
			for i := 0; i < times; i++ {
				if out := it.execList(ctx, cmd.Body); out != outcomeOK {
					return out
				}
				if ctx.Err() != nil {
					return outcomeHalted
				}
			}
		}
	}
	return outcomeOK
}

// execStep runs one atomic step: counter, signal, then the player action.
func (it *Interpreter) execStep(step command.Step) runOutcome {
	it.mu.Lock()
	it.steps++
	count := it.steps
	it.mu.Unlock()

	it.emit(StepTaken{Count: count, Step: step})

	switch step {
	case command.TurnLeft:
		it.mu.Lock()
		it.pose.Facing = it.pose.Facing.Left()
		pose := it.pose
		it.mu.Unlock()
		it.emit(PlayerMoved{Pose: pose})
		return outcomeOK

	case command.TurnRight:
		it.mu.Lock()
		it.pose.Facing = it.pose.Facing.Right()
		pose := it.pose
		it.mu.Unlock()
		it.emit(PlayerMoved{Pose: pose})
		return outcomeOK

	case command.Forward:
		return it.moveForward()
	}
	return outcomeOK
}

func (it *Interpreter) moveForward() runOutcome {
	it.mu.Lock()
	target := it.pose.Forward()
	it.mu.Unlock()

	switch it.b.CheckMove(target) {
	case board.MoveBlocked:
		// Not a failure; the step simply ends.
		it.emit(MoveBlocked{Target: target})
		return outcomeOK

	case board.MoveFall:
		return outcomeFell
	}

	it.mu.Lock()
	it.pose.Pos = target
	pose := it.pose
	it.mu.Unlock()
	it.emit(PlayerMoved{Pose: pose})

	landing := it.b.OnPlayerLanded(target)
	for _, ch := range landing.Changed {
		it.emit(TileChanged{Pos: ch.Pos, Tile: ch.Tile})
	}
	switch landing.Outcome {
	case board.LandUnsafe:
		// The move was legal but the floor broke under the player.
		return outcomeCollapsed
	case board.LandComplete:
		// Standing on the end tile mid-program is only pending success:
		// the remaining commands still run and end-of-run resolution
		// checks the final position.
	}
	return outcomeOK
}

// pause suspends for the configured step delay. Returns false if the run
// was halted during the suspension, in which case the next command must
// never start.
func (it *Interpreter) pause(ctx context.Context) bool {
	if it.opts.StepDelay <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(it.opts.StepDelay)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-ctx.Done():
		return false
	}
}

func (it *Interpreter) emit(sig Signal) {
	it.mu.Lock()
	observers := it.observers
	it.mu.Unlock()
	for _, obs := range observers {
		obs(sig)
	}
}

func (it *Interpreter) requestRestart() {
	if it.opts.Hooks.RequestRestart != nil {
		it.opts.Hooks.RequestRestart()
	}
}

func (it *Interpreter) setSpanOutcome(span trace.Span, outcome string) {
	if span == nil {
		return
	}
	it.mu.Lock()
	steps := it.steps
	it.mu.Unlock()
	span.SetAttributes(
		attribute.String("run.outcome", outcome),
		attribute.Int("run.steps", steps),
	)
}
