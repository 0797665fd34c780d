package interp

import (
	"github.com/nchukanov/botwalk/internal/board"
	"github.com/nchukanov/botwalk/internal/command"
)

// Signal is an observable event emitted during a run. Observers receive
// signals synchronously, in the order they occur; there is no global
// dispatch, only the observers registered on one interpreter.
type Signal interface {
	signal()
}

// SequenceStarted is emitted when a run begins.
type SequenceStarted struct {
	RunID   string
	Planned int // atomic steps the program would take if nothing fails
}

func (SequenceStarted) signal() {}

// StepTaken is emitted for each atomic step, before the action executes.
// Count is 1-based.
type StepTaken struct {
	Count int
	Step  command.Step
}

func (StepTaken) signal() {}

// PlayerMoved is emitted after a step changes the player's pose, whether by
// moving or turning.
type PlayerMoved struct {
	Pose board.Pose
}

func (PlayerMoved) signal() {}

// MoveBlocked is emitted when a forward step runs into a wall. Not a
// failure; the run continues.
type MoveBlocked struct {
	Target board.Position
}

func (MoveBlocked) signal() {}

// TileChanged is emitted for every tile whose visible state changed as a
// landing side effect (switch flipped, bridge toggled, weak floor decayed).
type TileChanged struct {
	Pos  board.Position
	Tile board.Tile
}

func (TileChanged) signal() {}

// SequenceCompleted is emitted when the program finishes with the player on
// the end tile.
type SequenceCompleted struct {
	RunID string
	Steps int
}

func (SequenceCompleted) signal() {}

// FailReason says why a run failed.
type FailReason int

const (
	// ReasonFall: the player stepped into a cell with nothing to stand on.
	ReasonFall FailReason = iota
	// ReasonCollapsed: a weak floor broke under the player.
	ReasonCollapsed
	// ReasonOffEnd: the program finished with the player away from the end
	// tile.
	ReasonOffEnd
)

func (r FailReason) String() string {
	switch r {
	case ReasonFall:
		return "fell"
	case ReasonCollapsed:
		return "floor collapsed"
	case ReasonOffEnd:
		return "finished off the end tile"
	default:
		return "unknown"
	}
}

// SequenceFailed is emitted when a run fails, either by falling or by
// finishing away from the end tile.
type SequenceFailed struct {
	RunID  string
	Steps  int
	Reason FailReason
}

func (SequenceFailed) signal() {}

// LevelCompleted is emitted alongside SequenceCompleted with the level
// identity, for persistence and progression.
type LevelCompleted struct {
	LevelID    string
	LevelIndex int
	Steps      int
}

func (LevelCompleted) signal() {}

// Observer receives signals from a running interpreter.
type Observer func(Signal)
