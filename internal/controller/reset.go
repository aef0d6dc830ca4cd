package controller

import (
	"fmt"

	"github.com/atomicstack/popup-launcher/internal/ipc"
	"github.com/atomicstack/popup-launcher/internal/logging"
	"github.com/atomicstack/popup-launcher/internal/logging/events"
)

// Quit ends the session. The immediate half runs now; restoring the surface
// for the next session is queued for the next idle point so the surface is
// never toggled mid-frame. cancelled selects the interrupted exit code for
// one-shot sessions.
func (c *Controller) Quit(cancelled bool) {
	events.Session.Quit(cancelled, c.st.Service)
	if c.sender != nil {
		sender := c.sender
		c.sender = nil
		if err := sender.Send(ipc.Cancelled); err != nil {
			logging.Error(fmt.Errorf("send cancellation: %w", err))
		}
	}

	surface := c.Surface()
	if c.st.Service {
		surface.Visible = false
	} else if c.host != nil {
		code := 0
		if cancelled {
			code = ExitCancelled
		}
		c.host.Terminate(code)
	}
	surface.DetachPreview()
	c.pane = nil
	c.previews.ClearAll()

	st := c.st
	st.CurrentPrefix = ""
	st.PrefixProvider = ""
	st.Provider = ""
	st.Parameters.Clear()
	st.NoSearch = false
	st.NoHints = false
	st.Placeholder = ""
	st.Visible = false
	st.Dmenu.CurrentIndex = 0
	st.Dmenu.Enabled = false
	st.InputOnly = false
	st.ParamClose = false
	st.HideQuickActivate = false
	st.Query = ""
	st.CurrentSet = ""
	if st.Dmenu.ExitAfter {
		st.Dmenu.ExitAfter = false
		st.Dmenu.KeepOpen = false
	}

	if !c.restoring {
		c.restoring = true
		c.idle.Push(c.restore)
	}
}

// restore prepares the surface for the next session.
func (c *Controller) restore() {
	c.restoring = false
	st := c.st
	st.LastQuery = c.input

	surface := c.Surface()
	if st.InitialPlaceholder != nil {
		surface.Placeholder = *st.InitialPlaceholder
		st.InitialPlaceholder = nil
	}
	surface.SearchVisible = true
	surface.HintsVisible = true
	surface.ContentVisible = true

	c.SetInputText("")
	surface.Restore(&st.Initial)
	st.Theme = st.DefaultTheme
	events.Session.Restore(st.LastQuery, st.Theme)
}
