package controller

import (
	"fmt"
	"strings"

	"github.com/atomicstack/popup-launcher/internal/action"
	"github.com/atomicstack/popup-launcher/internal/ipc"
	"github.com/atomicstack/popup-launcher/internal/keybind"
	"github.com/atomicstack/popup-launcher/internal/logging"
	"github.com/atomicstack/popup-launcher/internal/logging/events"
	"github.com/atomicstack/popup-launcher/internal/provider"
)

// HandleKey resolves a key press and runs its effect. It reports false when
// the key should pass through to the input widget.
func (c *Controller) HandleKey(k keybind.Key) bool {
	res := c.resolver.Resolve(keybind.Input{
		Key:          k,
		Interactive:  c.st.Interactive(),
		Dmenu:        c.st.Dmenu.Enabled,
		KeepOpen:     c.st.Dmenu.KeepOpen && !c.st.Dmenu.ExitAfter,
		Provider:     c.st.ActiveProvider(),
		PrefixActive: c.st.PrefixProvider != "",
		Selected:     c.level.Selected(),
	})

	switch res.Outcome {
	case keybind.NotHandled:
		events.Keybind.NotHandled(k.String())
		return false
	case keybind.Swallowed:
		events.Keybind.Swallowed(k.String())
		return true
	case keybind.DmenuAccept:
		text := c.input
		if text == "" {
			text = ipc.Cancelled
		}
		events.Keybind.Resolved(k.String(), res.Outcome.String(), text, action.AfterClose.String())
		c.Emit(text)
		c.Quit(false)
		return true
	case keybind.Global:
		events.Keybind.Resolved(k.String(), string(res.Source), res.Binding.Descriptor.Action, "")
		c.runGlobal(res.Binding.Action)
		return true
	}

	act := res.Binding.Action
	events.Keybind.Resolved(k.String(), string(res.Source), act.Name, res.After.String())
	switch act.Kind {
	case action.KindSet:
		c.st.CurrentSet = act.Arg
		c.st.Provider = ""
	case action.KindProvider:
		c.st.Provider = act.Arg
	}
	query := c.input
	if !act.IsMeta() {
		c.activate(res.Item, res.Provider, query, res.Binding.Descriptor)
	}
	c.After(res.After, c.input)
	return true
}

func (c *Controller) runGlobal(act action.Action) {
	switch act.Kind {
	case action.KindClose:
		c.Quit(true)
	case action.KindSelectNext:
		c.SelectNext()
	case action.KindSelectPrevious:
		c.SelectPrevious()
	case action.KindToggleExact:
		c.ToggleExact()
	case action.KindResumeLastQuery:
		c.ResumeLastQuery()
	case action.KindQuickActivate:
		c.QuickActivate(act.Index)
	}
}

func (c *Controller) activate(item *provider.Item, name, query string, d action.Descriptor) {
	events.Command.Activate(name, d.Action, query)
	p, ok := c.providers.Find(name)
	if !ok {
		logging.Error(fmt.Errorf("activate %s: unknown provider %q", d.Action, name))
		return
	}
	if err := p.Activate(name, item, query, d); err != nil {
		events.Action.Error(err)
		logging.Error(fmt.Errorf("activate %s on %s: %w", d.Action, name, err))
	}
}

// ActivateDefault runs the default action of the selected item. An item
// with several actions and no default-flagged descriptor is a configuration
// error reported in the error row.
func (c *Controller) ActivateDefault() {
	item := c.level.Selected()
	if item == nil {
		return
	}
	p, ok := c.providers.Find(item.Provider)
	if !ok {
		logging.Error(fmt.Errorf("activate: unknown provider %q", item.Provider))
		return
	}
	d, err := keybind.DefaultDescriptor(item.Actions, p.Actions(item.Actions))
	if err != nil {
		err = fmt.Errorf("provider %s: %w", item.Provider, err)
		logging.Error(err)
		c.st.SetError(err.Error())
		return
	}
	query := c.input
	c.activate(item, item.Provider, query, d)
	c.After(d.AfterOrClose(), c.input)
}

// QuickActivate selects the item at index i and activates it.
func (c *Controller) QuickActivate(i int) {
	if c.level.SelectIndex(i) {
		c.selectionChanged()
	}
	c.ActivateDefault()
}

// SelectNext moves the cursor down. Keyboard moves suspend mouse targeting.
func (c *Controller) SelectNext() {
	c.pointer.Disable()
	if c.level.SelectNext() {
		c.selectionChanged()
	}
}

// SelectPage moves the cursor a page of rows down, or up when down is false.
// Pages stop at the list ends.
func (c *Controller) SelectPage(down bool, rows int) {
	c.pointer.Disable()
	var moved bool
	if down {
		moved = c.level.MoveCursorPageDown(rows)
	} else {
		moved = c.level.MoveCursorPageUp(rows)
	}
	if moved {
		c.selectionChanged()
	}
}

// SelectPrevious moves the cursor up.
func (c *Controller) SelectPrevious() {
	c.pointer.Disable()
	if c.level.SelectPrevious() {
		c.selectionChanged()
	}
}

// ToggleExact strips the exact-search prefix from the input when present
// and adds it otherwise.
func (c *Controller) ToggleExact() {
	prefix := c.opts.ExactPrefix
	if prefix == "" {
		return
	}
	if rest, ok := strings.CutPrefix(c.input, prefix); ok {
		c.SetInputText(rest)
		return
	}
	c.SetInputText(prefix + c.input)
}

// ResumeLastQuery restores the query of the previous session.
func (c *Controller) ResumeLastQuery() {
	if c.st.LastQuery != "" {
		c.SetInputText(c.st.LastQuery)
	}
}
