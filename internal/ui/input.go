package ui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/atomicstack/popup-launcher/internal/keybind"
)

// handleKeyMsg offers the key to the bind resolver and hands it to the
// text input when no bind claims it.
func (m *Model) handleKeyMsg(msg tea.Msg) tea.Cmd {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return nil
	}
	if !keyMsg.Paste {
		if k, err := keybind.Parse(keyMsg.String()); err == nil && m.ctrl.HandleKey(k) {
			return nil
		}
	}
	switch keyMsg.Type {
	case tea.KeyPgDown, tea.KeyPgUp:
		m.ctrl.SelectPage(keyMsg.Type == tea.KeyPgDown, max(m.list.rows, 1))
		return nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(keyMsg)
	m.ctrl.TextEdited(m.input.Value())
	return cmd
}

// setInputValue mirrors a programmatic text change into the widget.
func (m *Model) setInputValue(text string) {
	m.input.SetValue(text)
	m.input.CursorEnd()
}
