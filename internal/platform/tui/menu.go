package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nchukanov/botwalk/internal/level"
)

var (
	styleCursor   = lipgloss.NewStyle().Foreground(lipgloss.Color("13")).Bold(true)
	styleMenuItem = lipgloss.NewStyle()
	styleMenuDim  = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
)

// MenuModel is the Bubble Tea model for the level picker.
type MenuModel struct {
	levels   []level.Level
	cursor   int
	width    int
	height   int
	selected int // -1 until the user picks a level
	quitting bool
}

// NewMenuModel creates a menu over the given levels.
func NewMenuModel(levels []level.Level) MenuModel {
	return MenuModel{
		levels:   levels,
		selected: -1,
		width:    80,
		height:   24,
	}
}

// Init implements tea.Model.
func (m MenuModel) Init() tea.Cmd {
	return nil
}

// Update handles menu navigation.
func (m MenuModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			m.quitting = true
			return m, tea.Quit
		case "up", "k", "w":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j", "s":
			if m.cursor < len(m.levels)-1 {
				m.cursor++
			}
		case "enter", " ":
			if len(m.levels) > 0 {
				m.selected = m.cursor
			}
		}
	}
	return m, nil
}

// View renders the level list.
func (m MenuModel) View() string {
	if m.quitting {
		return ""
	}

	var sb strings.Builder
	sb.WriteString(styleTitle.Render(" botwalk — pick a level"))
	sb.WriteString("\n\n")

	if len(m.levels) == 0 {
		sb.WriteString(styleMenuDim.Render("  no levels found"))
		sb.WriteString("\n")
		return sb.String()
	}

	for i, lvl := range m.levels {
		name := lvl.Name
		if name == "" {
			name = lvl.ID
		}
		line := fmt.Sprintf("%s (%s)", name, lvl.ID)
		if i == m.cursor {
			sb.WriteString(styleCursor.Render("> " + line))
		} else {
			sb.WriteString(styleMenuItem.Render("  " + line))
		}
		sb.WriteString("\n")
	}

	sb.WriteString("\n")
	sb.WriteString(styleMenuDim.Render("  up/down: move  enter: play  q: quit"))
	return sb.String()
}

// Selected returns the picked level index, or -1.
func (m MenuModel) Selected() int { return m.selected }
