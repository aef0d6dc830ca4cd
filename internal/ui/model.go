package ui

import (
	"context"
	"reflect"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/atomicstack/popup-launcher/internal/backend"
	"github.com/atomicstack/popup-launcher/internal/controller"
	"github.com/atomicstack/popup-launcher/internal/ipc"
)

type msgHandler func(tea.Msg) tea.Cmd

// Config collects what the model is built from.
type Config struct {
	Deps    controller.Deps
	Options controller.Options
	// Watcher streams provider refreshes and theme changes; may be nil.
	Watcher *backend.Watcher
	// Sessions delivers service-mode open requests; nil outside service mode.
	Sessions <-chan *ipc.Session
	// Width and Height pin the terminal size; zero follows the terminal.
	Width  int
	Height int
	// StaticCursor disables cursor blinking.
	StaticCursor bool
}

// Model implements the Bubble Tea model for the launcher.
type Model struct {
	ctrl  *controller.Controller
	input textinput.Model
	hints help.Model

	width       int
	height      int
	fixedWidth  bool
	fixedHeight bool

	backend     *backend.Watcher
	sessions    <-chan *ipc.Session
	cancelQuery context.CancelFunc

	// list is the on-screen position of the result rows from the last View.
	list listArea

	quitting bool
	exitCode int

	handlers map[reflect.Type]msgHandler
}

// NewModel builds the model and its controller. The model is the
// controller's host: terminating a one-shot session quits the program.
func NewModel(cfg Config) *Model {
	m := &Model{
		backend:  cfg.Watcher,
		sessions: cfg.Sessions,
		hints:    help.New(),
	}
	if cfg.Width > 0 {
		m.width = cfg.Width
		m.fixedWidth = true
	}
	if cfg.Height > 0 {
		m.height = cfg.Height
		m.fixedHeight = true
	}
	cfg.Deps.Host = m
	m.ctrl = controller.New(cfg.Deps, cfg.Options)

	m.input = textinput.New()
	m.input.Prompt = ""
	if cfg.StaticCursor {
		m.input.Cursor.SetMode(cursor.CursorStatic)
	}
	m.ctrl.SetTextSink(m.setInputValue)
	m.registerHandlers()
	return m
}

// Controller exposes the controller driving the model.
func (m *Model) Controller() *controller.Controller {
	return m.ctrl
}

// Terminate ends a one-shot session once the current update has finished.
func (m *Model) Terminate(code int) {
	m.quitting = true
	m.exitCode = code
}

// ExitCode is the code the process should exit with after the program ends.
func (m *Model) ExitCode() int {
	return m.exitCode
}

// Init is part of the tea.Model interface.
func (m *Model) Init() tea.Cmd {
	cmds := []tea.Cmd{}
	if m.backend != nil {
		cmds = append(cmds, waitForBackendEvent(m.backend))
	}
	if m.sessions != nil {
		cmds = append(cmds, waitForSession(m.sessions))
	}
	if cmd := m.input.Focus(); cmd != nil {
		cmds = append(cmds, cmd)
	}
	return m.finishUpdate(cmds)
}

// Update responds to Bubble Tea messages.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	cmds := make([]tea.Cmd, 0, 4)
	if handler := m.handlerFor(msg); handler != nil {
		if cmd := handler(msg); cmd != nil {
			cmds = append(cmds, cmd)
		}
		return m, m.finishUpdate(cmds)
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if cmd != nil {
		cmds = append(cmds, cmd)
	}
	return m, m.finishUpdate(cmds)
}

func (m *Model) registerHandlers() {
	m.handlers = map[reflect.Type]msgHandler{
		reflect.TypeOf(tea.KeyMsg{}):        m.handleKeyMsg,
		reflect.TypeOf(tea.MouseMsg{}):      m.handleMouseMsg,
		reflect.TypeOf(tea.WindowSizeMsg{}): m.handleWindowSizeMsg,
		reflect.TypeOf(queryResultMsg{}):    m.handleQueryResultMsg,
		reflect.TypeOf(backendEventMsg{}):   m.handleBackendEventMsg,
		reflect.TypeOf(backendDoneMsg{}):    m.handleBackendDoneMsg,
		reflect.TypeOf(sessionMsg{}):        m.handleSessionMsg,
		reflect.TypeOf(sessionsClosedMsg{}): m.handleSessionsClosedMsg,
	}
}

func (m *Model) handlerFor(msg tea.Msg) msgHandler {
	if msg == nil || m.handlers == nil {
		return nil
	}
	t := reflect.TypeOf(msg)
	if handler, ok := m.handlers[t]; ok {
		return handler
	}
	if t.Kind() == reflect.Ptr {
		if handler, ok := m.handlers[t.Elem()]; ok {
			return handler
		}
	}
	return nil
}

// finishUpdate runs the work deferred to the end of an event: idle
// callbacks first, then any query they or the handler scheduled.
func (m *Model) finishUpdate(cmds []tea.Cmd) tea.Cmd {
	m.ctrl.Idle().Drain()
	if cmd := m.startQuery(); cmd != nil {
		cmds = append(cmds, cmd)
	}
	if m.quitting {
		m.stopQuery()
		cmds = append(cmds, tea.Quit)
	}
	if len(cmds) == 0 {
		return nil
	}
	return tea.Batch(cmds...)
}
