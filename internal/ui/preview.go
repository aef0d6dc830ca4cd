package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/atomicstack/popup-launcher/internal/preview"
	"github.com/atomicstack/popup-launcher/internal/theme"
)

// previewMinListWidth is the narrowest list kept next to a preview pane.
const previewMinListWidth = 20

// previewWidth returns the columns given to the preview pane, 0 when the
// launcher is too narrow to split.
func previewWidth(s *theme.Surface, inner int) int {
	w := s.PreviewWidth
	if w <= 0 {
		w = inner / 2
	}
	if inner-w-1 < previewMinListWidth {
		w = inner - previewMinListWidth - 1
	}
	if w < 10 {
		return 0
	}
	return w
}

// renderPreview draws the pane as a title row over its body, clipped to
// width by height cells.
func renderPreview(s *theme.Surface, pane *preview.Pane, width, height int) string {
	styles := s.Styles
	title := strings.TrimSpace(pane.Title)
	if s.PreviewTitle != "" {
		title = s.PreviewTitle + title
	}
	lines := make([]string, 0, height)
	if title != "" {
		lines = append(lines, fit(styles.PreviewTitle.Render(title), width))
	}
	if pane.Err != "" {
		lines = append(lines, fit(styles.PreviewError.Render(pane.Err), width))
	} else {
		for _, line := range pane.Lines {
			if len(lines) >= height {
				break
			}
			lines = append(lines, fit(styles.PreviewBody.Render(line), width))
		}
	}
	if len(lines) > height {
		lines = lines[:height]
	}
	return lipgloss.NewStyle().Width(width).Render(strings.Join(lines, "\n"))
}
