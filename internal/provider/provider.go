package provider

import (
	"context"

	"github.com/atomicstack/popup-launcher/internal/action"
)

// Item is a single query result supplied by a provider.
type Item struct {
	ID       string
	Label    string
	Subtext  string
	Provider string
	// Actions lists the action identifiers this item supports, in order.
	Actions []string
	// Score ranks items across providers; higher is better.
	Score int
	// DmenuScore is the relevance score consulted by the dmenu filter.
	DmenuScore uint32
}

// Query is a request for items.
type Query struct {
	// Provider is the name the query is addressed to, e.g. "menus:power".
	Provider string
	Text     string
	Exact    bool
	Set      string
}

// Provider is a pluggable data source.
type Provider interface {
	Name() string
	Query(ctx context.Context, q Query) ([]Item, error)
	// Actions returns the descriptors for the given action identifiers. An
	// empty list returns every descriptor the provider knows.
	Actions(ids []string) []action.Descriptor
	Activate(provider string, item *Item, query string, d action.Descriptor) error
}

// Refresher is implemented by providers whose data changes asynchronously.
type Refresher interface {
	Refreshed() <-chan struct{}
}

// FilterDescriptors returns the descriptors named in ids, in configuration order.
func FilterDescriptors(all []action.Descriptor, ids []string) []action.Descriptor {
	if len(ids) == 0 {
		return append([]action.Descriptor(nil), all...)
	}
	allowed := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		allowed[id] = struct{}{}
	}
	out := make([]action.Descriptor, 0, len(ids))
	for _, d := range all {
		if _, ok := allowed[d.Action]; ok {
			out = append(out, d)
		}
	}
	return out
}

// CloneItems produces a shallow copy of the provided items.
func CloneItems(items []Item) []Item {
	dup := make([]Item, len(items))
	copy(dup, items)
	return dup
}
