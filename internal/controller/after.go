package controller

import (
	"github.com/atomicstack/popup-launcher/internal/action"
	"github.com/atomicstack/popup-launcher/internal/logging/events"
)

// After applies the effect of an after-action. query is the input text at
// the time the action ran.
func (c *Controller) After(a action.After, query string) {
	events.Action.After(a.String())
	switch a {
	case action.AfterClose:
		c.Quit(false)
	case action.AfterKeepOpen:
		c.SelectNext()
	case action.AfterClearReload:
		if c.input == "" {
			c.InputChanged("")
		} else {
			c.SetInputText(c.st.CurrentPrefix)
		}
	case action.AfterReload:
		c.runQuery(query)
	case action.AfterAsyncReload, action.AfterAsyncClearReload:
		c.st.SetAsyncAfter(a)
	case action.AfterNothing:
	}
}

// ResumeAsyncAfter consumes a deferred async after-action once the provider
// refresh it waited for has landed, applying its synchronous equivalent.
// Reports whether a marker was pending.
func (c *Controller) ResumeAsyncAfter() bool {
	a, ok := c.st.TakeAsyncAfter()
	if !ok {
		return false
	}
	c.After(a.Sync(), c.input)
	return true
}

// ProviderRefreshed handles an asynchronous provider refresh: a pending
// async after-action is resumed, otherwise the current query is re-run.
func (c *Controller) ProviderRefreshed(name string) {
	if c.ResumeAsyncAfter() {
		return
	}
	if c.st.Visible || !c.st.Service {
		c.runQuery(c.input)
	}
}
