package keybind

import (
	"fmt"

	"github.com/atomicstack/popup-launcher/internal/action"
	"github.com/atomicstack/popup-launcher/internal/provider"
)

// Binding is a bind-table hit: the configured descriptor and its decoded action.
type Binding struct {
	Key        Key
	Descriptor action.Descriptor
	Action     action.Action
}

// After returns the binding's after-action, Close when unset.
func (b Binding) After() action.After {
	return b.Descriptor.AfterOrClose()
}

// Table holds every configured bind. It is built once at startup and only
// read afterwards.
type Table struct {
	global         map[Key]Binding
	provider       map[string][]Binding
	providerGlobal map[string][]Binding
	descriptors    map[string][]action.Descriptor
}

// NewTable returns an empty bind table.
func NewTable() *Table {
	return &Table{
		global:         make(map[Key]Binding),
		provider:       make(map[string][]Binding),
		providerGlobal: make(map[string][]Binding),
		descriptors:    make(map[string][]action.Descriptor),
	}
}

// AddGlobal binds keys to a provider-agnostic action such as "close" or
// "quickactivate:2". A later bind for the same key replaces the earlier one.
func (t *Table) AddGlobal(name string, keys ...string) error {
	act, err := action.DecodeGlobal(name)
	if err != nil {
		return err
	}
	if act.Kind == action.KindUnknown {
		return fmt.Errorf("keybind: unknown global action %q", name)
	}
	for _, raw := range keys {
		k, err := Parse(raw)
		if err != nil {
			return fmt.Errorf("keybind: global %q: %w", name, err)
		}
		t.global[k] = Binding{
			Key:        k,
			Descriptor: action.Descriptor{Action: name, Bind: raw},
			Action:     act,
		}
	}
	return nil
}

// AddProvider registers the item actions of a provider. Every descriptor is
// kept for hints; those with a Bind also become item-specific binds.
func (t *Table) AddProvider(name string, descs ...action.Descriptor) error {
	bindings, err := decodeBindings(name, descs)
	if err != nil {
		return err
	}
	t.descriptors[name] = append(t.descriptors[name], descs...)
	t.provider[name] = append(t.provider[name], bindings...)
	return nil
}

// AddProviderGlobal registers binds that apply while the provider is active,
// independent of the selected item.
func (t *Table) AddProviderGlobal(name string, descs ...action.Descriptor) error {
	bindings, err := decodeBindings(name, descs)
	if err != nil {
		return err
	}
	t.providerGlobal[name] = append(t.providerGlobal[name], bindings...)
	return nil
}

func decodeBindings(name string, descs []action.Descriptor) ([]Binding, error) {
	out := make([]Binding, 0, len(descs))
	for _, d := range descs {
		if d.Bind == "" {
			continue
		}
		k, err := Parse(d.Bind)
		if err != nil {
			return nil, fmt.Errorf("keybind: provider %s action %q: %w", name, d.Action, err)
		}
		out = append(out, Binding{Key: k, Descriptor: d, Action: action.DecodeProvider(d.Action)})
	}
	return out, nil
}

// Bind looks up the global table.
func (t *Table) Bind(k Key) (Binding, bool) {
	b, ok := t.global[k]
	return b, ok
}

// ProviderBind looks up an item bind for provider restricted to the item's
// allowed actions. The first configured match wins.
func (t *Table) ProviderBind(name string, k Key, allowed []string) (Binding, bool) {
	set := make(map[string]struct{}, len(allowed))
	for _, a := range allowed {
		set[a] = struct{}{}
	}
	for _, b := range t.lookup(t.provider, name) {
		if b.Key != k {
			continue
		}
		if _, ok := set[b.Descriptor.Action]; ok {
			return b, true
		}
	}
	return Binding{}, false
}

// ProviderGlobalBind looks up a bind registered globally for provider.
func (t *Table) ProviderGlobalBind(name string, k Key) (Binding, bool) {
	for _, b := range t.lookup(t.providerGlobal, name) {
		if b.Key == k {
			return b, true
		}
	}
	return Binding{}, false
}

// Descriptors returns the provider's descriptors for the given actions, in
// configuration order. An empty actions list returns every descriptor.
func (t *Table) Descriptors(name string, actions []string) []action.Descriptor {
	all, ok := t.descriptors[name]
	if !ok {
		all = t.descriptors[provider.BaseName(name)]
	}
	return provider.FilterDescriptors(all, actions)
}

func (t *Table) lookup(m map[string][]Binding, name string) []Binding {
	if b, ok := m[name]; ok {
		return b
	}
	return m[provider.BaseName(name)]
}

// GlobalDescriptors returns the descriptors of the provider-global binds for name.
func (t *Table) GlobalDescriptors(name string) []action.Descriptor {
	bindings := t.lookup(t.providerGlobal, name)
	out := make([]action.Descriptor, 0, len(bindings))
	for _, b := range bindings {
		out = append(out, b.Descriptor)
	}
	return out
}

// QuickKeys maps each quick-activate index to the key bound to it. When
// several keys share an index the one that sorts first is shown.
func (t *Table) QuickKeys() map[int]string {
	out := make(map[int]string)
	for k, b := range t.global {
		if b.Action.Kind != action.KindQuickActivate {
			continue
		}
		s := k.String()
		if prev, ok := out[b.Action.Index]; !ok || s < prev {
			out[b.Action.Index] = s
		}
	}
	return out
}
