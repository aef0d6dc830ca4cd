package theme

import (
	"fmt"

	"github.com/atomicstack/popup-launcher/internal/session"
)

// Size is the concrete geometry of a surface. Zero means unconstrained.
type Size struct {
	Width     int
	Height    int
	MinWidth  int
	MaxWidth  int
	MinHeight int
	MaxHeight int
}

// Surface is the presentation state of one theme. Surfaces are created once
// at startup and only updated in place afterwards.
type Surface struct {
	Name   string
	Styles *Styles
	Size   Size

	Prompt            string
	Indicator         string
	SelectedIndicator string
	ListPlaceholder   string
	ShowSubtext       bool
	HintSeparator     string
	PreviewWidth      int
	PreviewTitle      string

	// HasInput, HasHints and HasPreview record which optional sections the
	// layout declares.
	HasInput   bool
	HasHints   bool
	HasPreview bool

	// Visible is false while the surface is hidden between service sessions.
	Visible        bool
	SearchVisible  bool
	HintsVisible   bool
	ContentVisible bool
	// PreviewAttached is set while a preview pane is shown next to the list.
	PreviewAttached bool

	// Placeholder is the input placeholder currently shown.
	Placeholder string
	// Error is the text shown in the error row.
	Error string
}

var validBorders = map[string]struct{}{
	"": {}, "rounded": {}, "normal": {}, "thick": {}, "double": {}, "hidden": {}, "none": {},
}

// NewSurface builds the surface for a decoded layout.
func NewSurface(name string, l *Layout) (*Surface, error) {
	if l == nil || l.Window == nil || l.List == nil {
		return nil, fmt.Errorf("%w: [window] and [list] are required", ErrMissingSection)
	}
	if _, ok := validBorders[l.Window.Border]; !ok {
		return nil, fmt.Errorf("unknown border %q", l.Window.Border)
	}
	s := &Surface{Name: name}
	s.apply(l)
	s.Visible = true
	s.SearchVisible = true
	s.HintsVisible = true
	s.ContentVisible = true
	return s, nil
}

// apply copies layout data onto the surface, leaving session visibility alone.
func (s *Surface) apply(l *Layout) {
	w := l.Window
	s.Styles = NewStyles(l.Colors, w.Border)
	if w.Padding > 0 {
		frame := s.Styles.Frame.Padding(0, w.Padding)
		s.Styles.Frame = &frame
	}
	s.Size = Size{
		Width:     w.Width,
		Height:    w.Height,
		MinWidth:  w.MinWidth,
		MaxWidth:  w.MaxWidth,
		MinHeight: w.MinHeight,
		MaxHeight: w.MaxHeight,
	}
	s.Indicator = l.List.Indicator
	s.SelectedIndicator = l.List.SelectedIndicator
	if s.SelectedIndicator == "" {
		s.SelectedIndicator = s.Indicator
	}
	s.ListPlaceholder = l.List.Placeholder
	s.ShowSubtext = l.List.ShowSubtext

	s.HasInput = l.Input != nil
	s.Prompt, s.Placeholder = "", ""
	if l.Input != nil {
		s.Prompt = l.Input.Prompt
		s.Placeholder = l.Input.Placeholder
	}
	s.HasHints = l.Hints != nil
	s.HintSeparator = "  "
	if l.Hints != nil && l.Hints.Separator != "" {
		s.HintSeparator = l.Hints.Separator
	}
	s.HasPreview = l.Preview != nil
	s.PreviewWidth, s.PreviewTitle = 0, ""
	if l.Preview != nil {
		s.PreviewWidth = l.Preview.Width
		s.PreviewTitle = l.Preview.Title
	}
}

// Override applies the set fields of g and returns the previous values of
// exactly those fields, for restoring later.
func (s *Surface) Override(g session.Geometry) session.Geometry {
	var prev session.Geometry
	swap := func(val *int, dst *int) *int {
		if val == nil {
			return nil
		}
		old := *dst
		*dst = *val
		return &old
	}
	prev.Height = swap(g.Height, &s.Size.Height)
	prev.Width = swap(g.Width, &s.Size.Width)
	prev.MinHeight = swap(g.MinHeight, &s.Size.MinHeight)
	prev.MinWidth = swap(g.MinWidth, &s.Size.MinWidth)
	prev.MaxHeight = swap(g.MaxHeight, &s.Size.MaxHeight)
	prev.MaxWidth = swap(g.MaxWidth, &s.Size.MaxWidth)
	return prev
}

// Restore applies each set field of g, clearing it as it goes.
func (s *Surface) Restore(g *session.Geometry) {
	restore := func(val **int, dst *int) {
		if *val == nil {
			return
		}
		*dst = **val
		*val = nil
	}
	restore(&g.Height, &s.Size.Height)
	restore(&g.Width, &s.Size.Width)
	restore(&g.MaxWidth, &s.Size.MaxWidth)
	restore(&g.MinWidth, &s.Size.MinWidth)
	restore(&g.MaxHeight, &s.Size.MaxHeight)
	restore(&g.MinHeight, &s.Size.MinHeight)
}

// DetachPreview removes the preview pane.
func (s *Surface) DetachPreview() {
	s.PreviewAttached = false
}
