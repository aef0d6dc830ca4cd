package theme

import "github.com/charmbracelet/lipgloss"

// Styles describes the Lip Gloss styles of one surface.
type Styles struct {
	Item              *lipgloss.Style
	Subtext           *lipgloss.Style
	ItemIndicator     *lipgloss.Style
	SelectedItem      *lipgloss.Style
	SelectedIndicator *lipgloss.Style
	Error             *lipgloss.Style
	Placeholder       *lipgloss.Style
	Filter            *lipgloss.Style
	FilterPrompt      *lipgloss.Style
	FilterPlaceholder *lipgloss.Style
	HintKey           *lipgloss.Style
	HintLabel         *lipgloss.Style
	Frame             *lipgloss.Style
	PreviewTitle      *lipgloss.Style
	PreviewBody       *lipgloss.Style
	PreviewError      *lipgloss.Style
}

var defaultColors = Colors{
	Item:         "249",
	Subtext:      "241",
	Selected:     "255",
	SelectedBg:   "238",
	Indicator:    "33",
	Prompt:       "34",
	Placeholder:  "241",
	Error:        "196",
	Border:       "238",
	HintKey:      "33",
	HintLabel:    "245",
	PreviewTitle: "245",
	PreviewBody:  "250",
}

var defaultStyles = NewStyles(Colors{}, "")

// Default exposes the standard style set.
func Default() *Styles {
	return defaultStyles
}

// NewStyles builds a style set from colors, falling back to the default
// palette for every empty entry.
func NewStyles(c Colors, border string) *Styles {
	c = c.withDefaults()
	item := lipgloss.NewStyle().Foreground(lipgloss.Color(c.Item))
	if c.ListBackground != "" {
		item = item.Background(lipgloss.Color(c.ListBackground))
	}
	return &Styles{
		Item:    ptr(item),
		Subtext: ptr(lipgloss.NewStyle().Foreground(lipgloss.Color(c.Subtext)).Italic(true)),
		ItemIndicator: ptr(
			lipgloss.NewStyle().Foreground(lipgloss.Color(c.Border)),
		),
		SelectedItem: ptr(
			lipgloss.NewStyle().Foreground(lipgloss.Color(c.Selected)).Background(lipgloss.Color(c.SelectedBg)).Bold(true),
		),
		SelectedIndicator: ptr(
			lipgloss.NewStyle().Foreground(lipgloss.Color(c.Indicator)).Background(lipgloss.Color(c.SelectedBg)),
		),
		Error: ptr(
			lipgloss.NewStyle().Foreground(lipgloss.Color(c.Error)).Bold(true),
		),
		Placeholder: ptr(
			lipgloss.NewStyle().Foreground(lipgloss.Color(c.Placeholder)).Italic(true),
		),
		Filter: ptr(
			lipgloss.NewStyle().Foreground(lipgloss.Color(c.Item)),
		),
		FilterPrompt: ptr(
			lipgloss.NewStyle().Foreground(lipgloss.Color(c.Prompt)).Bold(true),
		),
		FilterPlaceholder: ptr(
			lipgloss.NewStyle().Foreground(lipgloss.Color(c.Placeholder)),
		),
		HintKey: ptr(
			lipgloss.NewStyle().Foreground(lipgloss.Color(c.HintKey)).Bold(true),
		),
		HintLabel: ptr(
			lipgloss.NewStyle().Foreground(lipgloss.Color(c.HintLabel)),
		),
		Frame: ptr(
			lipgloss.NewStyle().Border(borderFor(border)).BorderForeground(lipgloss.Color(c.Border)),
		),
		PreviewTitle: ptr(
			lipgloss.NewStyle().Foreground(lipgloss.Color(c.PreviewTitle)).Bold(true),
		),
		PreviewBody: ptr(
			lipgloss.NewStyle().Foreground(lipgloss.Color(c.PreviewBody)),
		),
		PreviewError: ptr(
			lipgloss.NewStyle().Foreground(lipgloss.Color(c.Error)).Bold(true),
		),
	}
}

func (c Colors) withDefaults() Colors {
	fill := func(dst *string, def string) {
		if *dst == "" {
			*dst = def
		}
	}
	fill(&c.Item, defaultColors.Item)
	fill(&c.Subtext, defaultColors.Subtext)
	fill(&c.Selected, defaultColors.Selected)
	fill(&c.SelectedBg, defaultColors.SelectedBg)
	fill(&c.Indicator, defaultColors.Indicator)
	fill(&c.Prompt, defaultColors.Prompt)
	fill(&c.Placeholder, defaultColors.Placeholder)
	fill(&c.Error, defaultColors.Error)
	fill(&c.Border, defaultColors.Border)
	fill(&c.HintKey, defaultColors.HintKey)
	fill(&c.HintLabel, defaultColors.HintLabel)
	fill(&c.PreviewTitle, defaultColors.PreviewTitle)
	fill(&c.PreviewBody, defaultColors.PreviewBody)
	return c
}

func borderFor(name string) lipgloss.Border {
	switch name {
	case "normal":
		return lipgloss.NormalBorder()
	case "thick":
		return lipgloss.ThickBorder()
	case "double":
		return lipgloss.DoubleBorder()
	case "hidden", "none":
		return lipgloss.HiddenBorder()
	default:
		return lipgloss.RoundedBorder()
	}
}

func ptr(style lipgloss.Style) *lipgloss.Style {
	return &style
}
