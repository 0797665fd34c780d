package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/nchukanov/botwalk/internal/board"
)

var (
	styleFloor     = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	styleWall      = lipgloss.NewStyle().Foreground(lipgloss.Color("250"))
	styleStart     = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	styleEnd       = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
	styleSwitchOff = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	styleSwitchOn  = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
	styleBridgeOn  = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	styleBridgeOff = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	styleWeak      = lipgloss.NewStyle().Foreground(lipgloss.Color("208"))
	stylePlayer    = lipgloss.NewStyle().Foreground(lipgloss.Color("13")).Bold(true)
)

// playerRune maps the facing direction to an arrow glyph.
func playerRune(d board.Direction) rune {
	switch d {
	case board.North:
		return '^'
	case board.East:
		return '>'
	case board.South:
		return 'v'
	case board.West:
		return '<'
	default:
		return '@'
	}
}

func tileStyle(t board.Tile) lipgloss.Style {
	switch t.Kind {
	case board.KindWall:
		return styleWall
	case board.KindStart:
		return styleStart
	case board.KindEnd:
		return styleEnd
	case board.KindSwitch:
		if t.On {
			return styleSwitchOn
		}
		return styleSwitchOff
	case board.KindBridge:
		if t.Active {
			return styleBridgeOn
		}
		return styleBridgeOff
	case board.KindWeakFloor:
		return styleWeak
	default:
		return styleFloor
	}
}

// RenderBoard draws the board with the player overlaid, top row first.
func RenderBoard(b *board.Board, pose board.Pose) string {
	var sb strings.Builder
	for y := b.Height() - 1; y >= 0; y-- {
		if y < b.Height()-1 {
			sb.WriteRune('\n')
		}
		for x := 0; x < b.Width(); x++ {
			p := board.Position{X: x, Y: y}
			if p == pose.Pos {
				sb.WriteString(stylePlayer.Render(string(playerRune(pose.Facing))))
				continue
			}
			t, ok := b.TileAt(p)
			if !ok {
				sb.WriteRune(' ')
				continue
			}
			sb.WriteString(tileStyle(t).Render(string(t.Rune())))
		}
	}
	return sb.String()
}
