package ui

import (
	tea "github.com/charmbracelet/bubbletea"
)

// listArea records where the result rows were drawn so pointer events can
// be mapped back to list indexes.
type listArea struct {
	// frame is the outer box of the launcher.
	frameLeft, frameTop, frameWidth, frameHeight int
	// rows are the visible result rows; start is the index of the first.
	left, top, width, rows, start int
}

func (a listArea) insideFrame(x, y int) bool {
	return x >= a.frameLeft && x < a.frameLeft+a.frameWidth &&
		y >= a.frameTop && y < a.frameTop+a.frameHeight
}

// rowAt maps a terminal cell to a list index, -1 when no row is there.
func (a listArea) rowAt(x, y int) int {
	if a.rows <= 0 || x < a.left || x >= a.left+a.width {
		return -1
	}
	if y < a.top || y >= a.top+a.rows {
		return -1
	}
	return a.start + y - a.top
}

func (m *Model) handleMouseMsg(msg tea.Msg) tea.Cmd {
	ev, ok := msg.(tea.MouseMsg)
	if !ok {
		return nil
	}
	if s := m.ctrl.Surface(); s == nil || !s.Visible {
		return nil
	}
	switch ev.Button {
	case tea.MouseButtonWheelUp:
		m.ctrl.SelectPrevious()
		return nil
	case tea.MouseButtonWheelDown:
		m.ctrl.SelectNext()
		return nil
	}
	row := m.list.rowAt(ev.X, ev.Y)
	if row >= m.ctrl.Level().Len() {
		row = -1
	}
	switch ev.Action {
	case tea.MouseActionMotion:
		m.ctrl.PointerMoved(ev.X, ev.Y, row)
	case tea.MouseActionPress:
		if ev.Button != tea.MouseButtonLeft {
			return nil
		}
		if !m.list.insideFrame(ev.X, ev.Y) {
			m.ctrl.PointerClicked(-1)
			return nil
		}
		if row >= 0 {
			m.ctrl.PointerClicked(row)
		}
	}
	return nil
}

func (m *Model) handleWindowSizeMsg(msg tea.Msg) tea.Cmd {
	resize, ok := msg.(tea.WindowSizeMsg)
	if !ok {
		return nil
	}
	if !m.fixedWidth {
		m.width = resize.Width
	}
	if !m.fixedHeight {
		m.height = resize.Height
	}
	return nil
}
