package ui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/atomicstack/popup-launcher/internal/backend"
	"github.com/atomicstack/popup-launcher/internal/ipc"
	"github.com/atomicstack/popup-launcher/internal/logging"
	"github.com/atomicstack/popup-launcher/internal/logging/events"
)

func waitForBackendEvent(w *backend.Watcher) tea.Cmd {
	return func() tea.Msg {
		evt, ok := <-w.Events()
		if !ok {
			return backendDoneMsg{}
		}
		return backendEventMsg{event: evt}
	}
}

type backendEventMsg struct {
	event backend.Event
}

type backendDoneMsg struct{}

func (m *Model) handleBackendEventMsg(msg tea.Msg) tea.Cmd {
	eventMsg, ok := msg.(backendEventMsg)
	if !ok {
		return nil
	}
	m.applyBackendEvent(eventMsg.event)
	if m.backend != nil {
		return waitForBackendEvent(m.backend)
	}
	return nil
}

func (m *Model) handleBackendDoneMsg(msg tea.Msg) tea.Cmd {
	m.backend = nil
	return nil
}

func (m *Model) applyBackendEvent(evt backend.Event) {
	if evt.Err != nil {
		logging.Warn(fmt.Sprintf("watch %s: %v", evt.Name, evt.Err))
		return
	}
	switch evt.Kind {
	case backend.KindRefresh:
		m.ctrl.ProviderRefreshed(evt.Name)
	case backend.KindTheme:
		themes := m.ctrl.Themes()
		if err := themes.Refresh(evt.Name, evt.Data); err != nil {
			m.ctrl.State().SetError(err.Error())
			logging.Warn(err.Error())
			return
		}
		events.UI.ThemeReloaded(len(themes.Names()))
	}
}

func waitForSession(ch <-chan *ipc.Session) tea.Cmd {
	return func() tea.Msg {
		s, ok := <-ch
		if !ok {
			return sessionsClosedMsg{}
		}
		return sessionMsg{session: s}
	}
}

type sessionMsg struct {
	session *ipc.Session
}

type sessionsClosedMsg struct{}

// handleSessionMsg opens the launcher for a service request. A dmenu
// request stays attached until the controller answers it.
func (m *Model) handleSessionMsg(msg tea.Msg) tea.Cmd {
	sm, ok := msg.(sessionMsg)
	if !ok || sm.session == nil {
		return nil
	}
	var sender ipc.Messenger
	if sm.session.Attached() {
		sender = sm.session
	}
	m.ctrl.Open(sm.session.Params(), sender)
	cmds := []tea.Cmd{m.input.Focus()}
	if m.sessions != nil {
		cmds = append(cmds, waitForSession(m.sessions))
	}
	return tea.Batch(cmds...)
}

func (m *Model) handleSessionsClosedMsg(msg tea.Msg) tea.Cmd {
	m.sessions = nil
	return tea.Quit
}
