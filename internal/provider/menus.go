package provider

import (
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/atomicstack/popup-launcher/internal/action"
	"github.com/lithammer/fuzzysearch/fuzzy"
)

// Actions understood by the menus provider.
const (
	MenusRun  = "run"
	MenusOpen = "open"
)

// MenuEntry is one configured menu row.
type MenuEntry struct {
	Label   string `mapstructure:"label"`
	Subtext string `mapstructure:"subtext"`
	Exec    string `mapstructure:"exec"`
	// Menu is the menu the entry belongs to; empty means the root menu.
	Menu string `mapstructure:"menu"`
	// Submenu, when set, makes the entry open "menus:<Submenu>".
	Submenu string `mapstructure:"submenu"`
}

var runCommandFn = func(command string) error {
	cmd := exec.Command("sh", "-c", command)
	if err := cmd.Start(); err != nil {
		return err
	}
	go func() { _ = cmd.Wait() }()
	return nil
}

// Menus serves configured menu entries grouped into named menus.
type Menus struct {
	descriptors []action.Descriptor
	entries     []MenuEntry
	parents     map[string]string
	navigate    func(provider string)
}

// NewMenus builds the menus provider. navigate is called with the provider
// name to switch to when a submenu is opened or left.
func NewMenus(entries []MenuEntry, descriptors []action.Descriptor, navigate func(string)) *Menus {
	if len(descriptors) == 0 {
		yes := true
		nothing := action.AfterNothing
		descriptors = []action.Descriptor{
			{Action: MenusRun, Default: &yes, Bind: "enter", Label: "run"},
			{Action: MenusOpen, Default: &yes, Bind: "enter", After: &nothing, Label: "open"},
		}
	}
	parents := make(map[string]string)
	for _, e := range entries {
		if e.Submenu != "" {
			parents[e.Submenu] = e.Menu
		}
	}
	return &Menus{
		descriptors: descriptors,
		entries:     append([]MenuEntry(nil), entries...),
		parents:     parents,
		navigate:    navigate,
	}
}

func (m *Menus) Name() string { return MenusName }

// MenusGlobalDescriptors are the provider-global binds of the menus
// provider when none are configured.
func MenusGlobalDescriptors() []action.Descriptor {
	nothing := action.AfterNothing
	return []action.Descriptor{
		{Action: action.NameMenusParent, Bind: "shift+tab", After: &nothing, Label: "back"},
	}
}

// SetNavigator replaces the provider switch callback.
func (m *Menus) SetNavigator(navigate func(string)) {
	m.navigate = navigate
}

func (m *Menus) Query(ctx context.Context, q Query) ([]Item, error) {
	menu := menuName(q.Provider)
	items := make([]Item, 0, len(m.entries))
	for i, e := range m.entries {
		if e.Menu != menu {
			continue
		}
		item := Item{
			ID:       fmt.Sprintf("%s#%d", q.Provider, i),
			Label:    e.Label,
			Subtext:  e.Subtext,
			Provider: providerForMenu(menu),
		}
		if e.Submenu != "" {
			item.Actions = []string{MenusOpen}
		} else {
			item.Actions = []string{MenusRun}
		}
		items = append(items, item)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return rankItems(items, q.Text, q.Exact), nil
}

func (m *Menus) Actions(ids []string) []action.Descriptor {
	return FilterDescriptors(m.descriptors, ids)
}

func (m *Menus) Activate(provider string, item *Item, _ string, d action.Descriptor) error {
	if d.Action == action.NameMenusParent {
		m.goTo(m.parentOf(menuName(provider)))
		return nil
	}
	if item == nil {
		return nil
	}
	entry, ok := m.entryFor(item)
	if !ok {
		return fmt.Errorf("menus: unknown entry %q", item.ID)
	}
	switch d.Action {
	case MenusOpen:
		if entry.Submenu == "" {
			return fmt.Errorf("menus: %q has no submenu", entry.Label)
		}
		m.goTo(providerForMenu(entry.Submenu))
		return nil
	case MenusRun:
		if strings.TrimSpace(entry.Exec) == "" {
			return fmt.Errorf("menus: %q has no command", entry.Label)
		}
		if err := runCommandFn(entry.Exec); err != nil {
			return fmt.Errorf("menus: run %q: %w", entry.Exec, err)
		}
		return nil
	default:
		return fmt.Errorf("menus: unsupported action %q", d.Action)
	}
}

func (m *Menus) goTo(provider string) {
	if m.navigate != nil {
		m.navigate(provider)
	}
}

func (m *Menus) parentOf(menu string) string {
	if menu == "" {
		return ""
	}
	return providerForMenu(m.parents[menu])
}

func (m *Menus) entryFor(item *Item) (MenuEntry, bool) {
	idx := strings.LastIndex(item.ID, "#")
	if idx < 0 {
		return MenuEntry{}, false
	}
	var n int
	if _, err := fmt.Sscanf(item.ID[idx+1:], "%d", &n); err != nil {
		return MenuEntry{}, false
	}
	if n < 0 || n >= len(m.entries) {
		return MenuEntry{}, false
	}
	return m.entries[n], true
}

func menuName(provider string) string {
	if strings.HasPrefix(provider, MenusName+":") {
		return strings.TrimPrefix(provider, MenusName+":")
	}
	return ""
}

func providerForMenu(menu string) string {
	if menu == "" {
		return MenusName
	}
	return MenusName + ":" + menu
}

// rankItems keeps the items matching query. Exact queries use substring
// matching; otherwise fuzzy matches are ranked by distance.
func rankItems(items []Item, query string, exact bool) []Item {
	trimmed := strings.TrimSpace(query)
	if trimmed == "" {
		return CloneItems(items)
	}
	lower := strings.ToLower(trimmed)
	if exact {
		filtered := make([]Item, 0, len(items))
		for _, item := range items {
			if strings.Contains(strings.ToLower(item.Label), lower) {
				item.Score = 100
				filtered = append(filtered, item)
			}
		}
		return filtered
	}
	labels := make([]string, len(items))
	for i, item := range items {
		labels[i] = item.Label
	}
	ranks := fuzzy.RankFindNormalizedFold(trimmed, labels)
	distance := make(map[int]int, len(ranks))
	for _, rank := range ranks {
		distance[rank.OriginalIndex] = rank.Distance
	}
	filtered := make([]Item, 0, len(ranks))
	for idx, item := range items {
		d, ok := distance[idx]
		if !ok {
			if !strings.Contains(strings.ToLower(item.Subtext), lower) {
				continue
			}
			d = 100
		}
		item.Score = 100 - d
		if strings.HasPrefix(strings.ToLower(item.Label), lower) {
			item.Score += 50
		}
		filtered = append(filtered, item)
	}
	return filtered
}

// Preview describes what activating item does: the command it runs or the
// entries of the submenu it opens.
func (m *Menus) Preview(item Item) ([]string, error) {
	entry, ok := m.entryFor(&item)
	if !ok {
		return nil, fmt.Errorf("menus: unknown entry %q", item.ID)
	}
	if entry.Submenu == "" {
		return []string{"$ " + entry.Exec}, nil
	}
	lines := []string{}
	for _, e := range m.entries {
		if e.Menu == entry.Submenu {
			lines = append(lines, e.Label)
		}
	}
	if len(lines) == 0 {
		lines = append(lines, "(empty menu)")
	}
	return lines, nil
}
