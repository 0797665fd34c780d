package board

import (
	"fmt"
	"sort"
	"strings"
)

// MoveResult is the three-way outcome of attempting to enter a cell.
type MoveResult int

const (
	// MoveSuccess means the cell can be entered.
	MoveSuccess MoveResult = iota
	// MoveBlocked means a wall is in the way; the player stays put.
	MoveBlocked
	// MoveFall means there is nothing to stand on: off-board, air, or an
	// inactive bridge.
	MoveFall
)

func (r MoveResult) String() string {
	switch r {
	case MoveSuccess:
		return "success"
	case MoveBlocked:
		return "blocked"
	case MoveFall:
		return "fall"
	default:
		return "unknown"
	}
}

// TileChange reports a tile whose visible state changed, for renderers.
type TileChange struct {
	Pos  Position
	Tile Tile
}

// LandingOutcome classifies what happened when the player landed on a cell.
type LandingOutcome int

const (
	// LandNone is the common case: nothing special happened.
	LandNone LandingOutcome = iota
	// LandUnsafe means the tile broke under the player; the caller must
	// treat the landing as a fall even though the move itself was legal.
	LandUnsafe
	// LandComplete means the player is standing on the end tile.
	LandComplete
)

// Landing is the result of OnPlayerLanded: the outcome plus every tile whose
// visible state changed as a side effect.
type Landing struct {
	Outcome LandingOutcome
	Changed []TileChange
}

// Board is the full grid of tiles plus the rules for move legality and
// landing side effects. It exclusively owns all tile state; callers only
// observe tiles through TileAt and mutate through OnPlayerLanded.
//
// A Board is built fresh on every level (re)load and never patched in place
// across runs, so restarts always start from a clean state.
type Board struct {
	width  int
	height int
	tiles  [][]*Tile // tiles[y][x]; nil means no tile at that cell
	start  Position

	switches map[int]*Tile
	bridges  []*Tile
}

// New builds a board of the given dimensions from a set of tiles. It
// validates the structural invariants (exactly one start, unique positions,
// bridges bound to known switches), clamps weak-floor step counts to at
// least 1, and runs the load-time switch sync pass in ascending position
// order so every bridge's active state agrees with its switch before the
// first move.
//
// Air tiles are not materialized: they are equivalent to absent cells.
func New(width, height int, tiles []Tile) (*Board, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("board: empty layout (%dx%d)", width, height)
	}

	b := &Board{
		width:    width,
		height:   height,
		tiles:    make([][]*Tile, height),
		switches: make(map[int]*Tile),
	}
	for y := range b.tiles {
		b.tiles[y] = make([]*Tile, width)
	}

	startCount := 0
	for _, t := range tiles {
		if t.Kind == KindAir {
			continue
		}
		p := t.Pos
		if p.X < 0 || p.X >= width || p.Y < 0 || p.Y >= height {
			return nil, fmt.Errorf("board: tile %s out of bounds at (%d,%d)", t.Kind, p.X, p.Y)
		}
		if b.tiles[p.Y][p.X] != nil {
			return nil, fmt.Errorf("board: duplicate tile at (%d,%d)", p.X, p.Y)
		}

		tile := t
		switch tile.Kind {
		case KindStart:
			startCount++
			b.start = p
		case KindSwitch:
			tile.On = false
			if _, dup := b.switches[tile.SwitchID]; dup {
				return nil, fmt.Errorf("board: duplicate switch id %d at (%d,%d)", tile.SwitchID, p.X, p.Y)
			}
		case KindBridge:
			tile.Active = tile.InitiallyActive
		case KindWeakFloor:
			if tile.InitialSteps <= 0 {
				tile.InitialSteps = 1
			}
			tile.StepsLeft = tile.InitialSteps
		}

		b.tiles[p.Y][p.X] = &tile
		switch tile.Kind {
		case KindSwitch:
			b.switches[tile.SwitchID] = b.tiles[p.Y][p.X]
		case KindBridge:
			b.bridges = append(b.bridges, b.tiles[p.Y][p.X])
		}
	}

	if startCount == 0 {
		return nil, fmt.Errorf("board: no start tile")
	}
	if startCount > 1 {
		return nil, fmt.Errorf("board: %d start tiles, want exactly 1", startCount)
	}
	for _, br := range b.bridges {
		if _, ok := b.switches[br.SwitchRef]; !ok {
			return nil, fmt.Errorf("board: bridge at (%d,%d) references unknown switch %d", br.Pos.X, br.Pos.Y, br.SwitchRef)
		}
	}

	// Load-time sync pass: bring every bridge in line with its switch so the
	// authored initially-active flags never survive inconsistently.
	for _, sw := range b.sortedSwitches() {
		b.syncSwitch(sw)
	}

	return b, nil
}

// Width returns the board width in cells.
func (b *Board) Width() int { return b.width }

// Height returns the board height in cells.
func (b *Board) Height() int { return b.height }

// Start returns the position of the start tile.
func (b *Board) Start() Position { return b.start }

// TileAt returns a copy of the tile at p, or false if the coordinate is
// outside the board or the cell is empty.
func (b *Board) TileAt(p Position) (Tile, bool) {
	if p.X < 0 || p.X >= b.width || p.Y < 0 || p.Y >= b.height {
		return Tile{}, false
	}
	t := b.tiles[p.Y][p.X]
	if t == nil {
		return Tile{}, false
	}
	return *t, true
}

// CheckMove reports whether the player may enter the target cell. It is a
// pure query: no tile state changes. Weak floors are always enterable;
// breaking is a landing effect, not a legality effect.
func (b *Board) CheckMove(target Position) MoveResult {
	t, ok := b.TileAt(target)
	if !ok {
		return MoveFall
	}
	switch t.Kind {
	case KindWall:
		return MoveBlocked
	case KindAir:
		return MoveFall
	case KindBridge:
		if !t.Active {
			return MoveFall
		}
		return MoveSuccess
	default:
		return MoveSuccess
	}
}

// OnPlayerLanded applies the side effects of landing on the cell at p and
// reports the outcome plus every tile whose visible state changed. It is
// called once per successful move, after the player's position has been
// updated.
//
// Landing on an unexpected kind (e.g. an inactive bridge, which CheckMove
// should have rejected) is a deliberate no-op.
func (b *Board) OnPlayerLanded(p Position) Landing {
	if p.X < 0 || p.X >= b.width || p.Y < 0 || p.Y >= b.height {
		return Landing{}
	}
	t := b.tiles[p.Y][p.X]
	if t == nil {
		return Landing{}
	}

	switch t.Kind {
	case KindSwitch:
		t.On = !t.On
		changed := []TileChange{{Pos: t.Pos, Tile: *t}}
		changed = append(changed, b.syncSwitch(t)...)
		return Landing{Changed: changed}

	case KindWeakFloor:
		if t.StepsLeft <= 0 {
			return Landing{}
		}
		t.StepsLeft--
		if t.StepsLeft == 0 {
			// Degrade in place; every later query sees air here.
			t.Kind = KindAir
			return Landing{
				Outcome: LandUnsafe,
				Changed: []TileChange{{Pos: t.Pos, Tile: *t}},
			}
		}
		return Landing{Changed: []TileChange{{Pos: t.Pos, Tile: *t}}}

	case KindEnd:
		return Landing{Outcome: LandComplete}

	default:
		return Landing{}
	}
}

// syncSwitch recomputes the active state of every bridge bound to sw.
// Idempotent: running it twice with unchanged switch state changes nothing.
func (b *Board) syncSwitch(sw *Tile) []TileChange {
	var changed []TileChange
	for _, br := range b.bridges {
		if br.SwitchRef != sw.SwitchID {
			continue
		}
		active := sw.On == br.ActiveWhenOn
		if br.Active != active {
			br.Active = active
			changed = append(changed, TileChange{Pos: br.Pos, Tile: *br})
		}
	}
	return changed
}

// sortedSwitches returns the switches in ascending position order
// (row-major, bottom row first) for the deterministic load-time sync pass.
func (b *Board) sortedSwitches() []*Tile {
	out := make([]*Tile, 0, len(b.switches))
	for _, sw := range b.switches {
		out = append(out, sw)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Pos.Y != out[j].Pos.Y {
			return out[i].Pos.Y < out[j].Pos.Y
		}
		return out[i].Pos.X < out[j].Pos.X
	})
	return out
}

// String renders the board as text, top row first, for headless output and
// debugging. Empty cells render as spaces.
func (b *Board) String() string {
	var sb strings.Builder
	for y := b.height - 1; y >= 0; y-- {
		for x := 0; x < b.width; x++ {
			t := b.tiles[y][x]
			if t == nil {
				sb.WriteRune(' ')
				continue
			}
			sb.WriteRune(t.Rune())
		}
		if y > 0 {
			sb.WriteRune('\n')
		}
	}
	return sb.String()
}
