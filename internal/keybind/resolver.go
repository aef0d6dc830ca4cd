package keybind

import (
	"errors"
	"fmt"

	"github.com/atomicstack/popup-launcher/internal/action"
	"github.com/atomicstack/popup-launcher/internal/provider"
)

// ErrNoDefaultAction is returned when an item declares several actions and
// none of their descriptors is flagged default.
var ErrNoDefaultAction = errors.New("no default action")

// Outcome classifies a resolution.
type Outcome int

const (
	// NotHandled lets the key pass through to the input widget.
	NotHandled Outcome = iota
	// Swallowed consumes the key without any effect.
	Swallowed
	// DmenuAccept confirms the raw input text in dmenu mode.
	DmenuAccept
	// Dispatch runs a provider-scoped bind: a meta transition or an activation.
	Dispatch
	// Global runs a provider-agnostic action from the global table.
	Global
)

var outcomeNames = [...]string{"not_handled", "swallowed", "dmenu_accept", "dispatch", "global"}

func (o Outcome) String() string {
	if int(o) < len(outcomeNames) {
		return outcomeNames[o]
	}
	return fmt.Sprintf("Outcome(%d)", int(o))
}

// Source tells which table a dispatched bind came from.
type Source string

const (
	SourceProviderGlobal Source = "provider_global"
	SourceItem           Source = "item"
	SourceGlobal         Source = "global"
)

// Input is everything resolution depends on.
type Input struct {
	Key Key
	// Interactive is false while no providers are connected outside dmenu mode.
	Interactive bool
	Dmenu       bool
	// KeepOpen is dmenu keep-open without exit-after.
	KeepOpen bool
	// Provider is the active provider: the current provider, else the prefix provider.
	Provider     string
	PrefixActive bool
	// Selected is the selected item, nil when the list has no selection.
	Selected *provider.Item
}

// Resolution is the result of resolving one key press.
type Resolution struct {
	Outcome Outcome
	Source  Source
	Binding Binding
	// Provider is the provider activate is invoked with.
	Provider string
	// Item is the item handed to activate; nil for provider-global binds.
	Item  *provider.Item
	After action.After
}

// Resolver applies the bind priority chain. It has no side effects; callers
// apply meta transitions and dispatch.
type Resolver struct {
	table *Table
}

// NewResolver returns a resolver over table.
func NewResolver(table *Table) *Resolver {
	if table == nil {
		table = NewTable()
	}
	return &Resolver{table: table}
}

// Table exposes the underlying bind table.
func (r *Resolver) Table() *Table {
	return r.table
}

// Resolve maps a key press to its winning bind. The chain, first match wins:
// the non-interactive gate, dmenu accept with no selection, the active
// provider's global binds, the selected item's binds, and the global table.
func (r *Resolver) Resolve(in Input) Resolution {
	if !in.Interactive && !in.Dmenu {
		if b, ok := r.table.Bind(in.Key); ok && b.Action.Kind == action.KindClose {
			return Resolution{Outcome: Global, Source: SourceGlobal, Binding: b}
		}
		return Resolution{Outcome: Swallowed}
	}

	if in.Dmenu && in.Key == Accept && in.Selected == nil {
		return Resolution{Outcome: DmenuAccept}
	}

	var (
		res   Resolution
		found bool
	)
	if in.Provider != "" {
		if b, ok := r.table.ProviderGlobalBind(in.Provider, in.Key); ok {
			res = Resolution{
				Outcome:  Dispatch,
				Source:   SourceProviderGlobal,
				Binding:  b,
				Provider: in.Provider,
				After:    b.After(),
			}
			found = true
		}
	}

	if !found && in.Selected != nil {
		item := in.Selected
		if b, ok := r.table.ProviderBind(item.Provider, in.Key, item.Actions); ok {
			res = Resolution{
				Outcome:  Dispatch,
				Source:   SourceItem,
				Binding:  b,
				Provider: item.Provider,
				Item:     item,
				After:    b.After(),
			}
			if in.KeepOpen {
				res.After = action.AfterNothing
			}
			found = true
		}
	}

	if !found || (res.Binding.Action.Kind == action.KindMenusParent && in.PrefixActive) {
		if b, ok := r.table.Bind(in.Key); ok {
			return Resolution{Outcome: Global, Source: SourceGlobal, Binding: b}
		}
		return Resolution{Outcome: NotHandled}
	}
	return res
}

// DefaultDescriptor picks the descriptor run when an item is activated
// without a specific bind. A single-action item uses that action; otherwise
// the descriptor flagged default wins.
func DefaultDescriptor(actions []string, descs []action.Descriptor) (action.Descriptor, error) {
	if len(actions) == 1 {
		for _, d := range descs {
			if d.Action == actions[0] {
				return d, nil
			}
		}
		return action.Descriptor{}, fmt.Errorf("%w: action %q has no descriptor", ErrNoDefaultAction, actions[0])
	}
	for _, d := range descs {
		if d.IsDefault() {
			return d, nil
		}
	}
	return action.Descriptor{}, fmt.Errorf("%w among %v", ErrNoDefaultAction, actions)
}
