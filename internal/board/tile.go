// Package board owns the puzzle grid: tile kinds, move legality, and the
// side effects of landing on stateful tiles (switches, bridges, weak floors).
// It contains no external dependencies to keep the simulation pure and testable.
package board

// Position is a grid coordinate. Y grows upward: y=0 is the bottom row.
type Position struct {
	X, Y int
}

// Direction is one of the four cardinal facings.
type Direction int

const (
	North Direction = iota
	East
	South
	West
)

// Left returns the direction after a 90° counter-clockwise turn.
func (d Direction) Left() Direction {
	return (d + 3) % 4
}

// Right returns the direction after a 90° clockwise turn.
func (d Direction) Right() Direction {
	return (d + 1) % 4
}

// Delta returns the unit vector for one step in this direction.
func (d Direction) Delta() (dx, dy int) {
	switch d {
	case North:
		return 0, 1
	case East:
		return 1, 0
	case South:
		return 0, -1
	case West:
		return -1, 0
	}
	return 0, 0
}

func (d Direction) String() string {
	switch d {
	case North:
		return "north"
	case East:
		return "east"
	case South:
		return "south"
	case West:
		return "west"
	default:
		return "unknown"
	}
}

// Pose is the player's position plus facing.
type Pose struct {
	Pos    Position
	Facing Direction
}

// Forward returns the cell one step ahead of the pose.
func (p Pose) Forward() Position {
	dx, dy := p.Facing.Delta()
	return Position{X: p.Pos.X + dx, Y: p.Pos.Y + dy}
}

// TileKind identifies what a cell is.
type TileKind int

const (
	KindFloor TileKind = iota
	KindWall
	KindAir
	KindStart
	KindEnd
	KindSwitch
	KindBridge
	KindWeakFloor
)

func (k TileKind) String() string {
	switch k {
	case KindFloor:
		return "floor"
	case KindWall:
		return "wall"
	case KindAir:
		return "air"
	case KindStart:
		return "start"
	case KindEnd:
		return "end"
	case KindSwitch:
		return "switch"
	case KindBridge:
		return "bridge"
	case KindWeakFloor:
		return "weakfloor"
	default:
		return "unknown"
	}
}

// Tile is one cell of the board. Kind-specific fields are zero for kinds
// that do not use them.
type Tile struct {
	Kind TileKind
	Pos  Position

	// Switch fields. On is runtime state, false at load.
	SwitchID int
	On       bool

	// Bridge fields. Active is runtime state, always recomputed from the
	// controlling switch; InitiallyActive only matters before the load-time
	// sync pass runs.
	SwitchRef       int
	ActiveWhenOn    bool
	InitiallyActive bool
	Active          bool

	// WeakFloor fields. StepsLeft counts down to zero, at which point the
	// tile degrades to air in place.
	InitialSteps int
	StepsLeft    int
}

// Rune returns the display rune for a tile, used by the headless renderer
// and the TUI board view.
func (t Tile) Rune() rune {
	switch t.Kind {
	case KindFloor:
		return '.'
	case KindWall:
		return '#'
	case KindAir:
		return ' '
	case KindStart:
		return 'S'
	case KindEnd:
		return 'E'
	case KindSwitch:
		if t.On {
			return '*'
		}
		return 'o'
	case KindBridge:
		if t.Active {
			return '='
		}
		return '~'
	case KindWeakFloor:
		if t.StepsLeft >= 0 && t.StepsLeft <= 9 {
			return rune('0' + t.StepsLeft)
		}
		return '9'
	default:
		return '?'
	}
}
