package theme

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/pelletier/go-toml/v2"
)

// ErrMissingSection is returned when a layout lacks a mandatory section.
var ErrMissingSection = errors.New("missing layout section")

// Layout is the TOML description of one themed surface. The window and list
// sections are required; input, hints and preview are optional and their
// absence removes the matching part of the surface.
type Layout struct {
	Window  *WindowLayout  `toml:"window"`
	List    *ListLayout    `toml:"list"`
	Input   *InputLayout   `toml:"input"`
	Hints   *HintsLayout   `toml:"hints"`
	Preview *PreviewLayout `toml:"preview"`
	Colors  Colors         `toml:"colors"`
}

type WindowLayout struct {
	Width     int    `toml:"width"`
	Height    int    `toml:"height"`
	MinWidth  int    `toml:"min_width"`
	MaxWidth  int    `toml:"max_width"`
	MinHeight int    `toml:"min_height"`
	MaxHeight int    `toml:"max_height"`
	Border    string `toml:"border"`
	Padding   int    `toml:"padding"`
}

type ListLayout struct {
	Indicator         string `toml:"indicator"`
	SelectedIndicator string `toml:"selected_indicator"`
	Placeholder       string `toml:"placeholder"`
	ShowSubtext       bool   `toml:"show_subtext"`
}

type InputLayout struct {
	Prompt      string `toml:"prompt"`
	Placeholder string `toml:"placeholder"`
}

type HintsLayout struct {
	Separator string `toml:"separator"`
}

type PreviewLayout struct {
	Width int    `toml:"width"`
	Title string `toml:"title"`
}

// Colors are lipgloss color strings; empty values keep the default palette.
type Colors struct {
	Item           string `toml:"item"`
	Subtext        string `toml:"subtext"`
	Selected       string `toml:"selected"`
	SelectedBg     string `toml:"selected_bg"`
	Indicator      string `toml:"indicator"`
	Prompt         string `toml:"prompt"`
	Placeholder    string `toml:"placeholder"`
	Error          string `toml:"error"`
	Border         string `toml:"border"`
	HintKey        string `toml:"hint_key"`
	HintLabel      string `toml:"hint_label"`
	PreviewTitle   string `toml:"preview_title"`
	PreviewBody    string `toml:"preview_body"`
	ListBackground string `toml:"list_background"`
}

// ParseLayout decodes a layout document. Unknown keys are rejected so typos
// surface as theme errors instead of silently using defaults.
func ParseLayout(data []byte) (*Layout, error) {
	var l Layout
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&l); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			return nil, fmt.Errorf("unknown layout keys: %s", strict.String())
		}
		var derr *toml.DecodeError
		if errors.As(err, &derr) {
			row, col := derr.Position()
			return nil, fmt.Errorf("layout line %d column %d: %w", row, col, err)
		}
		return nil, fmt.Errorf("decode layout: %w", err)
	}
	if l.Window == nil {
		return nil, fmt.Errorf("%w: [window]", ErrMissingSection)
	}
	if l.List == nil {
		return nil, fmt.Errorf("%w: [list]", ErrMissingSection)
	}
	return &l, nil
}
