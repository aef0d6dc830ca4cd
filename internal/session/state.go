package session

import (
	"strings"

	"github.com/atomicstack/popup-launcher/internal/action"
)

// Geometry holds optional surface size values. A nil field means unset.
type Geometry struct {
	Height    *int
	Width     *int
	MinHeight *int
	MinWidth  *int
	MaxHeight *int
	MaxWidth  *int
}

// Clear unsets every field.
func (g *Geometry) Clear() {
	*g = Geometry{}
}

// IsZero reports whether no field is set.
func (g Geometry) IsZero() bool {
	return g.Height == nil && g.Width == nil && g.MinHeight == nil &&
		g.MinWidth == nil && g.MaxHeight == nil && g.MaxWidth == nil
}

// Dmenu groups the flags that only carry meaning while Enabled is true.
type Dmenu struct {
	Enabled      bool
	KeepOpen     bool
	ExitAfter    bool
	CurrentIndex int
}

// State is the mutable record of one launcher session. It is owned by the
// event-loop goroutine; nothing else may touch it.
type State struct {
	Provider       string
	PrefixProvider string
	CurrentPrefix  string
	CurrentSet     string

	Query              string
	LastQuery          string
	Placeholder string
	// InitialPlaceholder is the surface placeholder replaced by Placeholder,
	// nil when nothing was replaced.
	InitialPlaceholder *string

	Dmenu Dmenu

	// Parameters are one-shot overrides for the current invocation.
	Parameters Geometry
	// Initial holds the surface values replaced by Parameters, restored on reset.
	Initial Geometry

	AsyncAfter *action.After

	Error        string
	Theme        string
	DefaultTheme string

	NoSearch          bool
	NoHints           bool
	InputOnly         bool
	ParamClose        bool
	HideQuickActivate bool
	Visible           bool

	Connected bool
	Service   bool
}

// New returns a state using theme as both the current and the configured default theme.
func New(theme string) *State {
	if strings.TrimSpace(theme) == "" {
		theme = "default"
	}
	return &State{Theme: theme, DefaultTheme: theme}
}

// ActiveProvider returns the provider driving keybind resolution. An
// explicit provider wins over a prefix provider.
func (s *State) ActiveProvider() string {
	if s.Provider != "" {
		return s.Provider
	}
	return s.PrefixProvider
}

// SetError records a user-facing error line. Earlier lines are kept so that
// several failing themes are all reported.
func (s *State) SetError(msg string) {
	msg = strings.TrimSpace(msg)
	if msg == "" {
		return
	}
	if s.Error == "" {
		s.Error = msg
		return
	}
	s.Error += "\n" + msg
}

// SetAsyncAfter records the deferred after-action for the query pipeline.
func (s *State) SetAsyncAfter(a action.After) {
	s.AsyncAfter = &a
}

// TakeAsyncAfter consumes the deferred after-action marker.
func (s *State) TakeAsyncAfter() (action.After, bool) {
	if s.AsyncAfter == nil {
		return action.AfterNothing, false
	}
	a := *s.AsyncAfter
	s.AsyncAfter = nil
	return a, true
}

// Interactive reports whether keys other than close should be honoured.
func (s *State) Interactive() bool {
	return s.Connected || s.Dmenu.Enabled
}
