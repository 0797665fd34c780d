package level

import (
	"fmt"

	"github.com/charmbracelet/log"
	"gopkg.in/yaml.v3"

	"github.com/nchukanov/botwalk/internal/board"
)

// yamlLevel is the on-disk YAML structure. A file carries the level grid in
// one of two interchangeable shapes: `rows` (+ optional `defs`) in the
// compact symbol format, or `tiles` as literal tile records with an explicit
// `size`.
type yamlLevel struct {
	ID          string     `yaml:"id"`
	Name        string     `yaml:"name"`
	StartFacing string     `yaml:"start_facing,omitempty"`
	Defs        []yamlDef  `yaml:"defs,omitempty"`
	Rows        []string   `yaml:"rows,omitempty"`
	Size        yamlSize   `yaml:"size,omitempty"`
	Tiles       []yamlTile `yaml:"tiles,omitempty"`
}

type yamlDef struct {
	Key             string `yaml:"key"`
	Kind            string `yaml:"kind"`
	Switch          int    `yaml:"switch,omitempty"`
	ActiveWhenOn    bool   `yaml:"active_when_on,omitempty"`
	InitiallyActive bool   `yaml:"initially_active,omitempty"`
	Steps           int    `yaml:"steps,omitempty"`
}

type yamlSize struct {
	W int `yaml:"w"`
	H int `yaml:"h"`
}

type yamlTile struct {
	X               int    `yaml:"x"`
	Y               int    `yaml:"y"`
	Kind            string `yaml:"kind"`
	Switch          int    `yaml:"switch,omitempty"`
	ActiveWhenOn    bool   `yaml:"active_when_on,omitempty"`
	InitiallyActive bool   `yaml:"initially_active,omitempty"`
	Steps           int    `yaml:"steps,omitempty"`
}

// Level is a parsed level definition, ready to build boards from. Building
// always produces a fresh Board so a restart never sees stale tile state.
type Level struct {
	ID          string
	Name        string
	StartFacing board.Direction

	// Compact shape. Empty Rows means the literal shape is used instead.
	Source Source

	// Literal shape.
	Width  int
	Height int
	Tiles  []board.Tile

	FilePath string
}

// Build constructs a fresh board from the level definition.
func (l Level) Build(logger *log.Logger) (*board.Board, error) {
	if len(l.Source.Rows) > 0 {
		return l.Source.Build(logger)
	}
	return board.New(l.Width, l.Height, l.Tiles)
}

// StartPose returns the player's starting pose on the given board.
func (l Level) StartPose(b *board.Board) board.Pose {
	return board.Pose{Pos: b.Start(), Facing: l.StartFacing}
}

// ParseYAML parses a YAML level file into a Level. It validates the tile
// kinds and facing but does not build the board; grid-level validation
// happens in Build.
func ParseYAML(data []byte) (Level, error) {
	var yl yamlLevel
	if err := yaml.Unmarshal(data, &yl); err != nil {
		return Level{}, fmt.Errorf("level: yaml unmarshal: %w", err)
	}
	if yl.ID == "" {
		return Level{}, fmt.Errorf("level: missing id")
	}
	if len(yl.Rows) == 0 && len(yl.Tiles) == 0 {
		return Level{}, fmt.Errorf("level %s: neither rows nor tiles given", yl.ID)
	}

	facing, err := ParseFacing(yl.StartFacing)
	if err != nil {
		return Level{}, fmt.Errorf("level %s: %w", yl.ID, err)
	}

	lvl := Level{
		ID:          yl.ID,
		Name:        yl.Name,
		StartFacing: facing,
	}

	if len(yl.Rows) > 0 {
		defs := make([]Definition, 0, len(yl.Defs))
		for _, d := range yl.Defs {
			kind, kindErr := ParseKind(d.Kind)
			if kindErr != nil {
				return Level{}, fmt.Errorf("level %s, def %q: %w", yl.ID, d.Key, kindErr)
			}
			defs = append(defs, Definition{
				Key: d.Key,
				Template: Template{
					Kind:            kind,
					SwitchID:        d.Switch,
					SwitchRef:       d.Switch,
					ActiveWhenOn:    d.ActiveWhenOn,
					InitiallyActive: d.InitiallyActive,
					InitialSteps:    d.Steps,
				},
			})
		}
		lvl.Source = Source{Defs: defs, Rows: yl.Rows}
		return lvl, nil
	}

	if yl.Size.W <= 0 || yl.Size.H <= 0 {
		return Level{}, fmt.Errorf("level %s: literal tiles need a positive size", yl.ID)
	}
	lvl.Width = yl.Size.W
	lvl.Height = yl.Size.H
	for _, t := range yl.Tiles {
		kind, kindErr := ParseKind(t.Kind)
		if kindErr != nil {
			return Level{}, fmt.Errorf("level %s, tile (%d,%d): %w", yl.ID, t.X, t.Y, kindErr)
		}
		lvl.Tiles = append(lvl.Tiles, board.Tile{
			Kind:            kind,
			Pos:             board.Position{X: t.X, Y: t.Y},
			SwitchID:        t.Switch,
			SwitchRef:       t.Switch,
			ActiveWhenOn:    t.ActiveWhenOn,
			InitiallyActive: t.InitiallyActive,
			InitialSteps:    t.Steps,
		})
	}
	return lvl, nil
}
