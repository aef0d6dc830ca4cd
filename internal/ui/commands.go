package ui

import (
	"context"
	"errors"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/atomicstack/popup-launcher/internal/provider"
)

// queryResultMsg carries the items of one finished query.
type queryResultMsg struct {
	seq   int
	items []provider.Item
	err   error
}

// startQuery launches the query the controller scheduled, cancelling the
// one still in flight.
func (m *Model) startQuery() tea.Cmd {
	req, ok := m.ctrl.TakeQuery()
	if !ok {
		return nil
	}
	m.stopQuery()
	ctx, cancel := context.WithCancel(context.Background())
	m.cancelQuery = cancel
	ctrl := m.ctrl
	return func() tea.Msg {
		items, err := ctrl.RunQuery(ctx, req)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return queryResultMsg{seq: req.Seq, items: items, err: err}
	}
}

func (m *Model) stopQuery() {
	if m.cancelQuery != nil {
		m.cancelQuery()
		m.cancelQuery = nil
	}
}

func (m *Model) handleQueryResultMsg(msg tea.Msg) tea.Cmd {
	result, ok := msg.(queryResultMsg)
	if !ok {
		return nil
	}
	m.ctrl.SetResults(result.seq, result.items, result.err)
	return nil
}
