package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/truncate"

	"github.com/atomicstack/popup-launcher/internal/format/table"
	"github.com/atomicstack/popup-launcher/internal/session"
	"github.com/atomicstack/popup-launcher/internal/theme"
)

const (
	fallbackWidth  = 60
	fallbackHeight = 18
)

// View implements tea.Model.
func (m *Model) View() string {
	m.list = listArea{}
	surface := m.ctrl.Surface()
	if surface == nil || !surface.Visible {
		return ""
	}
	st := m.ctrl.State()
	styles := surface.Styles
	frame := *styles.Frame

	outerW, outerH := m.frameSize(surface)
	innerW := max(outerW-frame.GetHorizontalFrameSize(), 1)
	innerH := max(outerH-frame.GetVerticalFrameSize(), 1)

	var top []string
	if surface.HasInput && surface.SearchVisible {
		top = append(top, m.renderInput(surface, innerW))
	}
	if st.Error != "" {
		for _, line := range strings.Split(st.Error, "\n") {
			top = append(top, fit(styles.Error.Render(line), innerW))
		}
	}
	var bottom []string
	if surface.HasHints && surface.HintsVisible {
		if hints := m.renderHints(surface, innerW); hints != "" {
			bottom = append(bottom, hints)
		}
	}

	sections := append([]string(nil), top...)
	if surface.ContentVisible {
		rows := max(innerH-len(top)-len(bottom), 1)
		listW := innerW
		side := ""
		if pane := m.ctrl.Preview(); surface.PreviewAttached && pane != nil {
			if pw := previewWidth(surface, innerW); pw > 0 {
				side = renderPreview(surface, pane, pw, rows)
				listW = innerW - pw - 1
			}
		}
		list, start, shown := m.renderList(surface, st, listW, rows)
		if side != "" {
			list = lipgloss.JoinHorizontal(lipgloss.Top, list, " ", side)
		}
		sections = append(sections, list)
		m.list = listArea{
			left:  frame.GetBorderLeftSize() + frame.GetPaddingLeft(),
			top:   frame.GetBorderTopSize() + frame.GetPaddingTop() + len(top),
			width: listW,
			rows:  shown,
			start: start,
		}
	}
	sections = append(sections, bottom...)

	body := lipgloss.JoinVertical(lipgloss.Left, sections...)
	out := frame.Width(innerW + frame.GetHorizontalPadding()).Render(body)
	m.list.frameWidth = lipgloss.Width(out)
	m.list.frameHeight = lipgloss.Height(out)
	return out
}

// frameSize resolves the outer size of the launcher from the surface
// geometry and the terminal size.
func (m *Model) frameSize(s *theme.Surface) (int, int) {
	w := clampDim(s.Size.Width, s.Size.MinWidth, s.Size.MaxWidth, m.width, fallbackWidth)
	h := clampDim(s.Size.Height, s.Size.MinHeight, s.Size.MaxHeight, m.height, fallbackHeight)
	return w, h
}

func clampDim(v, lo, hi, limit, fallback int) int {
	if v <= 0 {
		v = limit
		if v <= 0 {
			v = fallback
		}
	}
	if hi > 0 && v > hi {
		v = hi
	}
	if lo > 0 && v < lo {
		v = lo
	}
	if limit > 0 && v > limit {
		v = limit
	}
	return v
}

func (m *Model) renderInput(s *theme.Surface, width int) string {
	styles := s.Styles
	m.input.Prompt = s.Prompt
	m.input.Placeholder = s.Placeholder
	m.input.PromptStyle = *styles.FilterPrompt
	m.input.TextStyle = *styles.Filter
	m.input.PlaceholderStyle = *styles.FilterPlaceholder
	m.input.Width = max(width-lipgloss.Width(s.Prompt)-1, 1)
	return fit(m.input.View(), width)
}

// renderList draws the visible window of the result list. It returns the
// rendered block, the index of the first visible row and the row count.
func (m *Model) renderList(s *theme.Surface, st *session.State, width, rows int) (string, int, int) {
	styles := s.Styles
	l := m.ctrl.Level()
	pad := lipgloss.NewStyle().Width(width)
	if s.Size.Height > 0 {
		pad = pad.Height(rows)
	}
	if l.Len() == 0 {
		return pad.Render(fit(styles.Placeholder.Render(s.ListPlaceholder), width)), 0, 0
	}
	l.EnsureCursorVisible(rows)
	start := max(l.ViewportOffset, 0)
	end := min(start+rows, l.Len())

	var quick map[int]string
	if !st.HideQuickActivate {
		quick = m.ctrl.Binds().QuickKeys()
	}
	cells := make([][]string, 0, end-start)
	for i := start; i < end; i++ {
		item := l.Items[i]
		label := styles.Item
		if i == l.Cursor {
			label = styles.SelectedItem
		}
		row := []string{label.Render(item.Label)}
		if s.ShowSubtext && item.Subtext != "" {
			row = append(row, styles.Subtext.Render(item.Subtext))
		}
		cells = append(cells, row)
	}
	columns := table.Format(cells, nil)

	lines := make([]string, 0, end-start)
	for i := start; i < end; i++ {
		indicator := styles.ItemIndicator.Render(s.Indicator)
		if i == l.Cursor {
			indicator = styles.SelectedIndicator.Render(s.SelectedIndicator)
		}
		line := indicator + columns[i-start]
		if k, ok := quick[i]; ok {
			hint := styles.HintKey.Render(k)
			room := width - lipgloss.Width(hint) - 1
			if room > lipgloss.Width(indicator) {
				line = fit(line, room)
				gap := width - lipgloss.Width(line) - lipgloss.Width(hint)
				line += strings.Repeat(" ", max(gap, 1)) + hint
			}
		}
		lines = append(lines, fit(line, width))
	}
	return pad.Render(strings.Join(lines, "\n")), start, end - start
}

// renderHints draws the bound actions of the current selection.
func (m *Model) renderHints(s *theme.Surface, width int) string {
	descs := m.ctrl.Hints()
	if len(descs) == 0 {
		return ""
	}
	bindings := make([]key.Binding, 0, len(descs))
	for _, d := range descs {
		bindings = append(bindings, key.NewBinding(
			key.WithKeys(d.Bind),
			key.WithHelp(d.Bind, d.HintLabel()),
		))
	}
	m.hints.Width = width
	m.hints.ShortSeparator = s.HintSeparator
	m.hints.Styles.ShortKey = *s.Styles.HintKey
	m.hints.Styles.ShortDesc = *s.Styles.HintLabel
	m.hints.Styles.ShortSeparator = *s.Styles.HintLabel
	return m.hints.ShortHelpView(bindings)
}

// fit truncates an ANSI-styled line to width cells.
func fit(line string, width int) string {
	if width <= 0 || lipgloss.Width(line) <= width {
		return line
	}
	return truncate.StringWithTail(line, uint(width), "…")
}
