package controller

import (
	"fmt"
	"strings"

	"github.com/atomicstack/popup-launcher/internal/logging"
	"github.com/atomicstack/popup-launcher/internal/logging/events"
	"github.com/atomicstack/popup-launcher/internal/provider"
	"github.com/atomicstack/popup-launcher/internal/ui/state"
)

// SetInputText replaces the input text programmatically. The change is
// mirrored into the widget under a guard so the widget's own change
// notification does not run the query a second time.
func (c *Controller) SetInputText(text string) {
	c.guard = true
	if c.textSink != nil {
		c.textSink(text)
	}
	c.guard = false
	c.InputChanged(text)
}

// TextEdited is called when the user edits the input widget.
func (c *Controller) TextEdited(text string) {
	if c.guard || text == c.input {
		return
	}
	c.InputChanged(text)
}

// InputChanged records the new input text and schedules a query for it.
func (c *Controller) InputChanged(text string) {
	c.input = text
	c.pointer.Disable()
	if d := c.opts.ArgumentDelimiter; d != "" && strings.Contains(text, d) {
		return
	}
	c.runQuery(text)
}

// runQuery plans text and leaves the request for the event loop to run.
func (c *Controller) runQuery(text string) {
	plan := c.pipeline.Plan(text, c.st.Provider)
	c.st.PrefixProvider = plan.PrefixProvider
	c.st.CurrentPrefix = plan.CurrentPrefix
	c.st.Query = plan.Text
	c.seq++
	c.pending = &QueryRequest{Seq: c.seq, Text: text, Plan: plan, Set: c.st.CurrentSet}
	events.Filter.Changed(plan.Text, plan.Providers)
}

// SetResults installs the items of query seq. Results of superseded queries
// are dropped; it reports whether items were applied.
func (c *Controller) SetResults(seq int, items []provider.Item, err error) bool {
	if seq != c.seq {
		return false
	}
	if err != nil {
		events.Action.Error(err)
		logging.Warn(fmt.Sprintf("query %q: %v", c.st.Query, err))
	}
	kept := state.FilterDmenu(items, c.st.Query, c.st.Dmenu.Enabled)
	events.Filter.Results(len(items), len(kept))
	c.level.UpdateItems(kept)
	if c.st.Dmenu.Enabled && c.st.Dmenu.CurrentIndex > 0 {
		c.level.SelectIndex(c.st.Dmenu.CurrentIndex)
	}
	c.selectionChanged()
	return true
}

// Seq is the sequence number of the most recent query.
func (c *Controller) Seq() int {
	return c.seq
}
