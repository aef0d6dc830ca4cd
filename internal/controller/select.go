package controller

import (
	"github.com/atomicstack/popup-launcher/internal/action"
	"github.com/atomicstack/popup-launcher/internal/logging/events"
)

// selectionChanged refreshes the preview pane for the selected item.
func (c *Controller) selectionChanged() {
	events.UI.Cursor(c.st.ActiveProvider(), c.level.Cursor)
	surface := c.Surface()
	item := c.level.Selected()
	if item == nil {
		c.pane = nil
		surface.DetachPreview()
		c.previews.ClearAll()
		return
	}
	if !surface.HasPreview || !c.previews.Has(item.Provider) {
		c.pane = nil
		surface.DetachPreview()
		return
	}
	pane, ok := c.previews.Handle(item.Provider, *item)
	if !ok {
		c.pane = nil
		surface.DetachPreview()
		return
	}
	c.pane = &pane
	surface.PreviewAttached = true
}

// PointerMoved handles pointer motion over the list row at index, -1 when
// the pointer is outside the list. The first motion after a keyboard move
// only re-arms the pointer.
func (c *Controller) PointerMoved(x, y, index int) {
	if c.pointer.Motion(x, y) {
		events.UI.PointerEnabled(x, y)
	}
	if !c.pointer.Targetable() || index < 0 || index == c.level.Cursor {
		return
	}
	if c.level.SelectIndex(index) {
		c.selectionChanged()
	}
}

// PointerClicked handles a click on the list row at index, -1 when the
// click landed outside the list. Row clicks are ignored until the pointer
// has moved since the last keyboard move.
func (c *Controller) PointerClicked(index int) {
	if c.pointer.Disabled {
		return
	}
	if index < 0 {
		if c.opts.ClickToClose {
			c.Quit(true)
		}
		return
	}
	if !c.pointer.Targetable() {
		return
	}
	if c.level.SelectIndex(index) {
		c.selectionChanged()
	}
	c.ActivateDefault()
}

// Hints returns the bound actions to show for the current selection:
// provider-global binds of the active provider followed by the selected
// item's binds. menus:parent is hidden while a prefix selects the provider.
func (c *Controller) Hints() []action.Descriptor {
	binds := c.resolver.Table()
	var out []action.Descriptor
	add := func(descs []action.Descriptor) {
		for _, d := range descs {
			if d.Bind == "" {
				continue
			}
			if d.Action == action.NameMenusParent && c.st.PrefixProvider != "" {
				continue
			}
			out = append(out, d)
		}
	}
	if p := c.st.ActiveProvider(); p != "" {
		add(binds.GlobalDescriptors(p))
	}
	if item := c.level.Selected(); item != nil {
		add(binds.Descriptors(item.Provider, item.Actions))
	}
	return out
}

// SwitchProvider makes name the current provider and reloads with an empty
// query.
func (c *Controller) SwitchProvider(name string) {
	c.st.Provider = name
	c.SetInputText("")
}
