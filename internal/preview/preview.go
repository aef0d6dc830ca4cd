package preview

import (
	"sync"

	"github.com/atomicstack/popup-launcher/internal/provider"
)

// Previewer renders preview lines for an item.
type Previewer interface {
	Preview(item provider.Item) ([]string, error)
}

// Pane is the preview shown next to the list.
type Pane struct {
	Provider string
	ItemID   string
	Title    string
	Lines    []string
	Err      string
}

// Registry maps providers to previewers and caches rendered panes.
type Registry struct {
	mu         sync.Mutex
	previewers map[string]Previewer
	cache      map[string]Pane
}

// NewRegistry returns an empty preview registry.
func NewRegistry() *Registry {
	return &Registry{
		previewers: make(map[string]Previewer),
		cache:      make(map[string]Pane),
	}
}

// Register installs the previewer for provider.
func (r *Registry) Register(name string, p Previewer) {
	r.mu.Lock()
	r.previewers[name] = p
	r.mu.Unlock()
}

// Has reports whether provider has a previewer. "menus:<x>" uses the menus previewer.
func (r *Registry) Has(name string) bool {
	if r == nil {
		return false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.previewers[provider.BaseName(name)]
	return ok
}

// Handle renders the preview for item, serving repeated requests from the cache.
func (r *Registry) Handle(name string, item provider.Item) (Pane, bool) {
	if r == nil {
		return Pane{}, false
	}
	base := provider.BaseName(name)
	key := base + "\x00" + item.ID
	r.mu.Lock()
	p, ok := r.previewers[base]
	if cached, hit := r.cache[key]; hit {
		r.mu.Unlock()
		return cached, true
	}
	r.mu.Unlock()
	if !ok {
		return Pane{}, false
	}
	pane := Pane{Provider: base, ItemID: item.ID, Title: item.Label}
	lines, err := p.Preview(item)
	if err != nil {
		pane.Err = err.Error()
	} else {
		pane.Lines = lines
	}
	r.mu.Lock()
	r.cache[key] = pane
	r.mu.Unlock()
	return pane, true
}

// ClearAll drops every cached pane.
func (r *Registry) ClearAll() {
	if r == nil {
		return
	}
	r.mu.Lock()
	r.cache = make(map[string]Pane)
	r.mu.Unlock()
}

// Cached reports the number of cached panes.
func (r *Registry) Cached() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.cache)
}
