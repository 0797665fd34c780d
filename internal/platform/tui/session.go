package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nchukanov/botwalk/internal/level"
)

// sessionScreen says which screen a session is showing.
type sessionScreen int

const (
	screenMenu sessionScreen = iota
	screenPlay
)

// SessionModel drives the menu → play → menu flow for one user session,
// both locally and over SSH.
type SessionModel struct {
	levels []level.Level
	deps   PlayDeps

	screen sessionScreen
	menu   MenuModel
	play   PlayModel

	width  int
	height int
}

// NewSessionModel creates a session starting at the level picker.
func NewSessionModel(levels []level.Level, deps PlayDeps) SessionModel {
	return SessionModel{
		levels: levels,
		deps:   deps,
		menu:   NewMenuModel(levels),
		width:  80,
		height: 24,
	}
}

// NewSessionModelAt creates a session that opens directly on one level.
func NewSessionModelAt(levels []level.Level, deps PlayDeps, startIndex int) SessionModel {
	m := NewSessionModel(levels, deps)
	if startIndex >= 0 && startIndex < len(levels) {
		m.screen = screenPlay
		m.play = NewPlayModel(levels[startIndex], startIndex, deps)
	}
	return m
}

// Init implements tea.Model.
func (m SessionModel) Init() tea.Cmd {
	if m.screen == screenPlay {
		return m.play.Init()
	}
	return m.menu.Init()
}

// Update routes messages to the active screen and handles transitions.
func (m SessionModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if size, ok := msg.(tea.WindowSizeMsg); ok {
		m.width = size.Width
		m.height = size.Height
	}

	switch m.screen {
	case screenMenu:
		updated, cmd := m.menu.Update(msg)
		m.menu = updated.(MenuModel)
		if idx := m.menu.Selected(); idx >= 0 {
			return m.enterLevel(idx)
		}
		return m, cmd

	case screenPlay:
		updated, cmd := m.play.Update(msg)
		m.play = updated.(PlayModel)
		if m.play.BackRequested() {
			m.screen = screenMenu
			m.menu = NewMenuModel(m.levels)
			return m, m.menu.Init()
		}
		if m.play.NextRequested() {
			next := m.play.levelIndex + 1
			if next < len(m.levels) {
				return m.enterLevel(next)
			}
			m.screen = screenMenu
			m.menu = NewMenuModel(m.levels)
			return m, m.menu.Init()
		}
		return m, cmd
	}
	return m, nil
}

func (m SessionModel) enterLevel(idx int) (tea.Model, tea.Cmd) {
	m.screen = screenPlay
	m.play = NewPlayModel(m.levels[idx], idx, m.deps)
	m.play.width = m.width
	m.play.height = m.height
	return m, m.play.Init()
}

// View renders the active screen.
func (m SessionModel) View() string {
	switch m.screen {
	case screenPlay:
		return m.play.View()
	default:
		return m.menu.View()
	}
}
