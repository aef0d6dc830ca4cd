package state

import (
	"github.com/atomicstack/popup-launcher/internal/provider"
)

// Level holds the filtered result list the cursor ranges over plus the
// viewport used to render it.
type Level struct {
	ID    string
	Items []provider.Item
	// Cursor is the selected index, -1 when nothing is selected.
	Cursor         int
	ViewportOffset int
	// Wrap makes next/previous wrap around the list ends.
	Wrap bool
}

// NewLevel constructs a Level over items.
func NewLevel(id string, items []provider.Item, wrap bool) *Level {
	l := &Level{ID: id, Cursor: -1, Wrap: wrap}
	l.UpdateItems(items)
	return l
}

// Len reports the number of items.
func (l *Level) Len() int {
	return len(l.Items)
}

// Selected returns the item under the cursor, nil when nothing is selected.
func (l *Level) Selected() *provider.Item {
	if l.Cursor < 0 || l.Cursor >= len(l.Items) {
		return nil
	}
	return &l.Items[l.Cursor]
}

// UpdateItems replaces the items. The first item is selected automatically;
// an empty list has no selection.
func (l *Level) UpdateItems(items []provider.Item) {
	l.Items = provider.CloneItems(items)
	if len(l.Items) == 0 {
		l.Cursor = -1
		l.ViewportOffset = 0
		return
	}
	l.Cursor = 0
	if l.ViewportOffset > len(l.Items)-1 {
		l.ViewportOffset = 0
	}
}
