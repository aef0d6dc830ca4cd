package provider

import (
	"sort"
	"strings"
)

// MenusName is the provider that owns every "menus:<name>" namespace.
const MenusName = "menus"

// Registry exposes lookup utilities for the configured providers.
type Registry struct {
	providers map[string]Provider
	// defaults are queried when no provider or prefix is active.
	defaults []string
}

// NewRegistry builds a registry. Providers listed in defaults are queried
// when nothing narrows the query.
func NewRegistry(defaults []string, providers ...Provider) *Registry {
	r := &Registry{providers: make(map[string]Provider, len(providers))}
	for _, p := range providers {
		if p == nil {
			continue
		}
		r.providers[p.Name()] = p
	}
	for _, name := range defaults {
		if _, ok := r.providers[name]; ok {
			r.defaults = append(r.defaults, name)
		}
	}
	return r
}

// Find locates a provider by name. "menus:<x>" resolves to the menus provider.
func (r *Registry) Find(name string) (Provider, bool) {
	if r == nil {
		return nil, false
	}
	if p, ok := r.providers[name]; ok {
		return p, true
	}
	if base := BaseName(name); base != name {
		p, ok := r.providers[base]
		return p, ok
	}
	return nil, false
}

// Names returns every registered provider name, sorted.
func (r *Registry) Names() []string {
	if r == nil {
		return nil
	}
	names := make([]string, 0, len(r.providers))
	for name := range r.providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Defaults returns the providers queried when nothing narrows the query.
func (r *Registry) Defaults() []string {
	if r == nil {
		return nil
	}
	return append([]string(nil), r.defaults...)
}

// Refreshers returns the providers that publish asynchronous refreshes.
func (r *Registry) Refreshers() map[string]Refresher {
	out := map[string]Refresher{}
	if r == nil {
		return out
	}
	for name, p := range r.providers {
		if rf, ok := p.(Refresher); ok {
			out[name] = rf
		}
	}
	return out
}

// BaseName maps a namespaced provider such as "menus:power" to its owner.
func BaseName(name string) string {
	if strings.HasPrefix(name, MenusName+":") {
		return MenusName
	}
	return name
}
