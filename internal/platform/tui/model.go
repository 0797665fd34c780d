// Package tui provides the Bubble Tea integration for botwalk: the play
// screen, the level picker, and the SSH server. It is a thin collaborator
// over the core's signals and queries; all game rules live in the board and
// interpreter packages.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"go.opentelemetry.io/otel/trace"

	"github.com/nchukanov/botwalk/internal/command"
	"github.com/nchukanov/botwalk/internal/config"
	"github.com/nchukanov/botwalk/internal/interp"
	"github.com/nchukanov/botwalk/internal/level"
	"github.com/nchukanov/botwalk/internal/storage"
)

// signalMsg wraps an interpreter signal for the Bubble Tea loop.
type signalMsg struct {
	sig interp.Signal
}

// runFinishedMsg is sent when Run returns.
type runFinishedMsg struct {
	state interp.State
}

// restartRequestedMsg is sent by the interpreter's restart hook.
type restartRequestedMsg struct{}

// levelFileChangedMsg is sent by the level watcher.
type levelFileChangedMsg struct {
	path string
}

var (
	styleTitle  = lipgloss.NewStyle().Bold(true)
	styleStatus = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	styleFail   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	styleWin    = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
)

// PlayDeps bundles the collaborators the play screen needs.
type PlayDeps struct {
	Store   *storage.Store
	Logger  *log.Logger
	Tracer  trace.Tracer
	Config  config.Config
	Watcher *level.Watcher
}

// PlayModel is the Bubble Tea model for playing one level: a program input
// line, a live board view fed by interpreter signals, and run controls.
type PlayModel struct {
	lvl        level.Level
	levelIndex int
	deps       PlayDeps

	it    *interp.Interpreter
	msgCh chan tea.Msg

	input textinput.Model
	keys  keyMap
	help  help.Model

	width    int
	height   int
	running  bool
	status   string
	loadErr  string
	backing  bool // user asked to return to the menu
	advance  bool // user asked for the next level
	quitting bool
}

// NewPlayModel creates a play model for one level.
func NewPlayModel(lvl level.Level, levelIndex int, deps PlayDeps) PlayModel {
	if deps.Logger == nil {
		deps.Logger = log.Default()
	}

	input := textinput.New()
	input.Placeholder = "F F L 3[F R]"
	input.Prompt = "program> "
	input.Focus()

	m := PlayModel{
		lvl:        lvl,
		levelIndex: levelIndex,
		deps:       deps,
		msgCh:      make(chan tea.Msg, 256),
		input:      input,
		keys:       defaultKeyMap(),
		help:       help.New(),
		width:      80,
		height:     24,
	}
	m.reset()
	return m
}

// reset builds a fresh board and interpreter. The board is fully replaced,
// never patched, so stale stepped-on effects cannot survive a restart.
func (m *PlayModel) reset() {
	b, err := m.lvl.Build(m.deps.Logger)
	if err != nil {
		m.loadErr = err.Error()
		m.it = nil
		return
	}
	m.loadErr = ""

	msgCh := m.msgCh
	it := interp.New(b, m.lvl.StartPose(b), interp.Options{
		StepDelay:  m.deps.Config.StepDelay(),
		Logger:     m.deps.Logger,
		Tracer:     m.deps.Tracer,
		LevelID:    m.lvl.ID,
		LevelIndex: m.levelIndex,
		Hooks: interp.Hooks{
			RequestRestart: func() { msgCh <- restartRequestedMsg{} },
		},
	})
	it.Subscribe(func(sig interp.Signal) { msgCh <- signalMsg{sig: sig} })
	m.it = it
}

// Init starts listening for interpreter signals (and watcher events).
func (m PlayModel) Init() tea.Cmd {
	cmds := []tea.Cmd{waitMsg(m.msgCh), textinput.Blink}
	if m.deps.Watcher != nil {
		cmds = append(cmds, waitWatch(m.deps.Watcher))
	}
	return tea.Batch(cmds...)
}

// waitMsg forwards the next message from the run goroutine.
func waitMsg(ch chan tea.Msg) tea.Cmd {
	return func() tea.Msg { return <-ch }
}

// waitWatch forwards the next changed level file path.
func waitWatch(w *level.Watcher) tea.Cmd {
	return func() tea.Msg {
		path, ok := <-w.Events
		if !ok {
			return nil
		}
		return levelFileChangedMsg{path: path}
	}
}

// Update handles messages.
func (m PlayModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case signalMsg:
		m.applySignal(msg.sig)
		return m, waitMsg(m.msgCh)

	case restartRequestedMsg:
		return m, waitMsg(m.msgCh)

	case runFinishedMsg:
		m.running = false
		m.recordAttempt(msg.state)
		if msg.state == interp.Failed {
			m.reset()
		}
		return m, waitMsg(m.msgCh)

	case levelFileChangedMsg:
		if m.lvl.FilePath != "" && msg.path == m.lvl.FilePath {
			m.reloadFromDisk()
		}
		return m, waitWatch(m.deps.Watcher)
	}

	return m, nil
}

func (m PlayModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.haltIfRunning()
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, m.keys.Halt):
		m.haltIfRunning()
		return m, nil

	case key.Matches(msg, m.keys.Reset):
		m.haltIfRunning()
		m.reset()
		m.status = "level reset"
		return m, nil

	case key.Matches(msg, m.keys.Back):
		m.haltIfRunning()
		m.backing = true
		return m, nil

	case key.Matches(msg, m.keys.Next):
		if m.it != nil && m.it.State() == interp.Completed {
			m.advance = true
		}
		return m, nil

	case key.Matches(msg, m.keys.Run):
		m.startRun()
		return m, nil
	}

	if !m.running {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

// startRun parses the program line and launches the interpreter.
func (m *PlayModel) startRun() {
	if m.running || m.it == nil {
		return
	}
	program, err := command.Parse(m.input.Value())
	if err != nil {
		m.status = styleFail.Render(err.Error())
		return
	}
	if len(program) == 0 {
		m.status = "empty program"
		return
	}

	// A failed or completed run leaves stale tile state behind; start every
	// run from a clean board.
	if m.it.State() != interp.Idle {
		m.reset()
		if m.it == nil {
			return
		}
	}

	m.running = true
	m.status = "running..."
	it := m.it
	msgCh := m.msgCh
	go func() {
		_ = it.Run(program)
		msgCh <- runFinishedMsg{state: it.State()}
	}()
}

func (m *PlayModel) haltIfRunning() {
	if m.running && m.it != nil {
		m.it.Halt()
	}
}

func (m *PlayModel) applySignal(sig interp.Signal) {
	switch s := sig.(type) {
	case interp.SequenceStarted:
		m.status = fmt.Sprintf("running: %d steps planned", s.Planned)
	case interp.StepTaken:
		m.status = fmt.Sprintf("step %d: %s", s.Count, s.Step)
	case interp.MoveBlocked:
		m.status = fmt.Sprintf("bump: wall at (%d,%d)", s.Target.X, s.Target.Y)
	case interp.SequenceCompleted:
		m.status = styleWin.Render(fmt.Sprintf("Level complete in %d steps! ctrl+n for next", s.Steps))
	case interp.SequenceFailed:
		m.status = styleFail.Render(fmt.Sprintf("Failed after %d steps: %s", s.Steps, s.Reason))
	case interp.LevelCompleted:
		if m.deps.Store != nil {
			if _, err := m.deps.Store.SaveCompletion(s.LevelID, m.it.RunID(), s.Steps); err != nil {
				m.deps.Logger.Warn("could not save completion", "error", err)
			}
		}
	}
}

func (m *PlayModel) recordAttempt(state interp.State) {
	if m.deps.Store == nil || m.it == nil {
		return
	}
	if _, err := m.deps.Store.SaveAttempt(m.lvl.ID, m.it.RunID(), state.String(), m.it.Steps()); err != nil {
		m.deps.Logger.Warn("could not save attempt", "error", err)
	}
}

// reloadFromDisk re-reads the level file after an edit and rebuilds.
func (m *PlayModel) reloadFromDisk() {
	m.haltIfRunning()
	data, err := level.NewLoader(".", m.deps.Logger).LoadFile(m.lvl.FilePath)
	if err != nil {
		m.status = styleFail.Render("reload failed: " + err.Error())
		return
	}
	m.lvl = data
	m.reset()
	m.status = "level reloaded"
}

// View renders the play screen.
func (m PlayModel) View() string {
	if m.quitting {
		return ""
	}

	var sb strings.Builder
	title := m.lvl.Name
	if title == "" {
		title = m.lvl.ID
	}
	sb.WriteString(styleTitle.Render(fmt.Sprintf(" %s (%s)", title, m.lvl.ID)))
	sb.WriteString("\n\n")

	if m.loadErr != "" {
		sb.WriteString(styleFail.Render("level failed to load: " + m.loadErr))
		sb.WriteString("\n")
		return sb.String()
	}

	sb.WriteString(RenderBoard(m.it.Board(), m.it.Pose()))
	sb.WriteString("\n\n")
	sb.WriteString(m.input.View())
	sb.WriteString("\n")
	if m.status != "" {
		sb.WriteString(styleStatus.Render(m.status))
	}
	sb.WriteString("\n")
	sb.WriteString(m.help.View(m.keys))
	return sb.String()
}

// BackRequested reports whether the user asked to return to the menu.
func (m PlayModel) BackRequested() bool { return m.backing }

// NextRequested reports whether the user asked for the next level.
func (m PlayModel) NextRequested() bool { return m.advance }
