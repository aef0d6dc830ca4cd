package state

import (
	"github.com/atomicstack/popup-launcher/internal/provider"
)

// DmenuScoreFactor is the per-rune score an item needs to survive the dmenu filter.
const DmenuScoreFactor = 18

// KeepDmenu reports whether item passes the dmenu filter for query. Outside
// dmenu mode, or with a blank query, every item is kept. The query is
// measured the way the scorer measured it.
func KeepDmenu(item provider.Item, query string, dmenu bool) bool {
	n := provider.DmenuQueryLen(query)
	if !dmenu || n == 0 {
		return true
	}
	return uint64(item.DmenuScore) >= uint64(DmenuScoreFactor)*uint64(n)
}

// FilterDmenu returns the items that pass KeepDmenu, preserving order.
func FilterDmenu(items []provider.Item, query string, dmenu bool) []provider.Item {
	if !dmenu || provider.DmenuQueryLen(query) == 0 {
		return provider.CloneItems(items)
	}
	out := make([]provider.Item, 0, len(items))
	for _, item := range items {
		if KeepDmenu(item, query, dmenu) {
			out = append(out, item)
		}
	}
	return out
}
