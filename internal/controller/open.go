package controller

import (
	"fmt"

	"github.com/atomicstack/popup-launcher/internal/ipc"
	"github.com/atomicstack/popup-launcher/internal/logging"
	"github.com/atomicstack/popup-launcher/internal/logging/events"
	"github.com/atomicstack/popup-launcher/internal/provider"
	"github.com/atomicstack/popup-launcher/internal/session"
)

// Open starts a session from params. sender, when non-nil, is the client
// waiting for the chosen value; a client still attached from an earlier
// session is cancelled first.
func (c *Controller) Open(params ipc.OpenParams, sender ipc.Messenger) {
	if c.sender != nil {
		prev := c.sender
		c.sender = nil
		if err := prev.Send(ipc.Cancelled); err != nil {
			logging.Error(fmt.Errorf("cancel previous client: %w", err))
		}
	}

	st := c.st
	if params.Theme != "" {
		st.Theme = params.Theme
	}
	st.NoSearch = params.NoSearch
	st.NoHints = params.NoHints
	st.InputOnly = params.InputOnly
	st.ParamClose = params.ParamClose
	st.HideQuickActivate = params.HideQuickActivate

	st.Dmenu.Enabled = params.Dmenu
	st.Dmenu.CurrentIndex = params.CurrentIndex
	if params.KeepOpen {
		st.Dmenu.KeepOpen = true
	}
	if params.ExitAfter {
		st.Dmenu.ExitAfter = true
	}
	st.Provider = params.Provider
	if params.Dmenu {
		if st.Provider == "" {
			st.Provider = provider.DmenuName
		}
		if c.dmenu != nil && params.Lines != nil {
			c.dmenu.SetLines(params.Lines)
		}
	}

	surface := c.Surface()
	if params.Placeholder != "" {
		if st.InitialPlaceholder == nil {
			prev := surface.Placeholder
			st.InitialPlaceholder = &prev
		}
		st.Placeholder = params.Placeholder
		surface.Placeholder = params.Placeholder
	}

	st.Parameters = session.Geometry{
		Width:     params.Width,
		Height:    params.Height,
		MinWidth:  params.MinWidth,
		MaxWidth:  params.MaxWidth,
		MinHeight: params.MinHeight,
		MaxHeight: params.MaxHeight,
	}
	if !st.Parameters.IsZero() {
		mergeInitial(&st.Initial, surface.Override(st.Parameters))
	}

	surface.SearchVisible = !st.NoSearch
	surface.HintsVisible = !st.NoHints && !st.InputOnly
	surface.ContentVisible = !st.InputOnly
	surface.Visible = true
	st.Visible = true

	if sender != nil {
		c.sender = sender
	}
	events.Session.Open(st.Provider, st.Theme, st.Dmenu.Enabled)
	c.SetInputText(params.Query)
}

// mergeInitial records prev into initial, keeping values saved by an earlier
// override that has not been restored yet.
func mergeInitial(initial *session.Geometry, prev session.Geometry) {
	keep := func(dst **int, val *int) {
		if *dst == nil && val != nil {
			*dst = val
		}
	}
	keep(&initial.Height, prev.Height)
	keep(&initial.Width, prev.Width)
	keep(&initial.MinHeight, prev.MinHeight)
	keep(&initial.MinWidth, prev.MinWidth)
	keep(&initial.MaxHeight, prev.MaxHeight)
	keep(&initial.MaxWidth, prev.MaxWidth)
}
