// Package level loads puzzle levels: a compact symbol+definition text format,
// a YAML file format carrying either that shape or literal tile records, and
// a directory loader with optional live reload.
// This package depends on board but board does not depend on level.
package level

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/nchukanov/botwalk/internal/board"
)

// Template is a tile minus its position: the payload of a definition entry.
type Template struct {
	Kind board.TileKind

	// Switch
	SwitchID int

	// Bridge
	SwitchRef       int
	ActiveWhenOn    bool
	InitiallyActive bool

	// WeakFloor
	InitialSteps int
}

// Definition maps a key of one or more characters to a tile template.
// Multi-character keys consume one grid cell but several string characters.
type Definition struct {
	Key      string
	Template Template
}

// Source is the compact textual level description: definition entries plus
// row strings, top row first. Rows are consumed in reverse so grid y=0 is
// the bottom row, matching on-screen reading order.
type Source struct {
	Defs []Definition
	Rows []string
}

// Build scans the rows into tiles and constructs the board. Unknown symbols
// are skipped with a warning; structural problems (no rows, duplicate or
// ambiguous definition keys, no start tile) are errors.
func (s Source) Build(logger *log.Logger) (*board.Board, error) {
	if logger == nil {
		logger = log.Default()
	}
	if len(s.Rows) == 0 {
		return nil, fmt.Errorf("level: empty layout")
	}

	defs := make(map[string]Template, len(s.Defs))
	maxKeyLen := 0
	for _, d := range s.Defs {
		if d.Key == "" {
			return nil, fmt.Errorf("level: empty definition key")
		}
		if _, dup := defs[d.Key]; dup {
			// Two keys of equal maximal length matching at the same scan
			// position would make selection order-dependent, so duplicates
			// are rejected outright.
			return nil, fmt.Errorf("level: duplicate definition key %q", d.Key)
		}
		defs[d.Key] = d.Template
		if len(d.Key) > maxKeyLen {
			maxKeyLen = len(d.Key)
		}
	}

	height := len(s.Rows)
	width := 0
	var tiles []board.Tile

	for rowIdx, row := range s.Rows {
		y := height - 1 - rowIdx
		gx := 0 // grid-column cursor
		si := 0 // string-index cursor
		for si < len(row) {
			if key, ok := longestKey(row[si:], defs, maxKeyLen); ok {
				tmpl := defs[key]
				tiles = append(tiles, tileFromTemplate(tmpl, board.Position{X: gx, Y: y}))
				gx++
				si += len(key)
				continue
			}

			ch := row[si]
			switch ch {
			case '.':
				tiles = append(tiles, board.Tile{Kind: board.KindFloor, Pos: board.Position{X: gx, Y: y}})
			case '#':
				tiles = append(tiles, board.Tile{Kind: board.KindWall, Pos: board.Position{X: gx, Y: y}})
			case 'S':
				tiles = append(tiles, board.Tile{Kind: board.KindStart, Pos: board.Position{X: gx, Y: y}})
			case 'E':
				tiles = append(tiles, board.Tile{Kind: board.KindEnd, Pos: board.Position{X: gx, Y: y}})
			case ' ':
				// No tile here.
			default:
				logger.Warn("level: unrecognized symbol, treating as empty",
					"symbol", string(ch), "row", rowIdx, "col", si)
			}
			gx++
			si++
		}
		if gx > width {
			width = gx
		}
	}

	return board.New(width, height, tiles)
}

// longestKey finds the longest defined key that is a prefix of rest.
func longestKey(rest string, defs map[string]Template, maxKeyLen int) (string, bool) {
	limit := maxKeyLen
	if limit > len(rest) {
		limit = len(rest)
	}
	for n := limit; n >= 1; n-- {
		if _, ok := defs[rest[:n]]; ok {
			return rest[:n], true
		}
	}
	return "", false
}

func tileFromTemplate(tmpl Template, pos board.Position) board.Tile {
	return board.Tile{
		Kind:            tmpl.Kind,
		Pos:             pos,
		SwitchID:        tmpl.SwitchID,
		SwitchRef:       tmpl.SwitchRef,
		ActiveWhenOn:    tmpl.ActiveWhenOn,
		InitiallyActive: tmpl.InitiallyActive,
		InitialSteps:    tmpl.InitialSteps,
	}
}

// ParseKind maps a tile-kind name from a level file to a TileKind.
func ParseKind(s string) (board.TileKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "floor":
		return board.KindFloor, nil
	case "wall":
		return board.KindWall, nil
	case "air":
		return board.KindAir, nil
	case "start":
		return board.KindStart, nil
	case "end":
		return board.KindEnd, nil
	case "switch":
		return board.KindSwitch, nil
	case "bridge":
		return board.KindBridge, nil
	case "weakfloor", "weak_floor", "weak-floor":
		return board.KindWeakFloor, nil
	default:
		return 0, fmt.Errorf("level: unknown tile kind %q", s)
	}
}

// ParseFacing maps a direction name to a Direction. Empty defaults to east.
func ParseFacing(s string) (board.Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "east", "e":
		return board.East, nil
	case "north", "n":
		return board.North, nil
	case "south", "s":
		return board.South, nil
	case "west", "w":
		return board.West, nil
	default:
		return 0, fmt.Errorf("level: unknown facing %q", s)
	}
}
