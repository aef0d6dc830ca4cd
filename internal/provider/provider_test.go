package provider

import (
	"context"
	"strings"
	"testing"

	"github.com/atomicstack/popup-launcher/internal/action"
)

func TestDmenuScoreRewardsTightMatches(t *testing.T) {
	if got := DmenuScore("", "anything"); got != 0 {
		t.Fatalf("expected 0 for empty query, got %d", got)
	}
	if got := DmenuScore("xyz", "firefox"); got != 0 {
		t.Fatalf("expected 0 for non-matching line, got %d", got)
	}
	prefix := DmenuScore("fir", "firefox")
	scattered := DmenuScore("fox", "f-o-r-e-x-t-r-a-x")
	if prefix < 18*3 {
		t.Fatalf("expected prefix match above dmenu threshold, got %d", prefix)
	}
	if scattered >= prefix {
		t.Fatalf("expected scattered match (%d) below prefix match (%d)", scattered, prefix)
	}
}

func TestDmenuQueryAndActivate(t *testing.T) {
	d := NewDmenu(nil)
	if err := d.ReadLines(strings.NewReader("alpha\n\nbeta\r\ngamma\n")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	select {
	case <-d.Refreshed():
	default:
		t.Fatalf("expected refresh notification after reading lines")
	}

	items, err := d.Query(context.Background(), Query{Provider: DmenuName})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 3 || items[1].Label != "beta" {
		t.Fatalf("unexpected items %#v", items)
	}
	if items[0].Provider != DmenuName || items[0].Actions[0] != DmenuSelect {
		t.Fatalf("expected dmenu item metadata, got %#v", items[0])
	}

	items, err = d.Query(context.Background(), Query{Provider: DmenuName, Text: "gam"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if items[0].Label != "gamma" {
		t.Fatalf("expected best match first, got %#v", items)
	}

	var emitted []string
	d.SetEmitter(func(s string) { emitted = append(emitted, s) })
	descs := d.Actions([]string{DmenuSelect})
	if len(descs) != 1 || !descs[0].IsDefault() {
		t.Fatalf("expected default select descriptor, got %#v", descs)
	}
	if err := d.Activate(DmenuName, &items[0], "gam", descs[0]); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(emitted) != 1 || emitted[0] != "gamma" {
		t.Fatalf("expected gamma emitted, got %v", emitted)
	}
	if err := d.Activate(DmenuName, &items[0], "", action.Descriptor{Action: "copy"}); err == nil {
		t.Fatalf("expected error for unsupported action")
	}
}

func TestMenusQueryNavigationAndRun(t *testing.T) {
	restore := runCommandFn
	t.Cleanup(func() { runCommandFn = restore })
	var ran []string
	runCommandFn = func(cmd string) error {
		ran = append(ran, cmd)
		return nil
	}

	var navigated []string
	entries := []MenuEntry{
		{Label: "Power", Submenu: "power"},
		{Label: "Terminal", Exec: "foot"},
		{Label: "Reboot", Exec: "systemctl reboot", Menu: "power"},
		{Label: "Shutdown", Exec: "systemctl poweroff", Menu: "power"},
	}
	m := NewMenus(entries, nil, func(p string) { navigated = append(navigated, p) })

	root, err := m.Query(context.Background(), Query{Provider: MenusName})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(root) != 2 || root[0].Actions[0] != MenusOpen || root[1].Actions[0] != MenusRun {
		t.Fatalf("unexpected root items %#v", root)
	}

	open := m.Actions([]string{MenusOpen})
	if err := m.Activate(MenusName, &root[0], "", open[0]); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(navigated) != 1 || navigated[0] != "menus:power" {
		t.Fatalf("expected navigation to menus:power, got %v", navigated)
	}

	power, err := m.Query(context.Background(), Query{Provider: "menus:power", Text: "reb"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(power) != 1 || power[0].Label != "Reboot" || power[0].Provider != "menus:power" {
		t.Fatalf("unexpected power items %#v", power)
	}
	run := m.Actions([]string{MenusRun})
	if err := m.Activate("menus:power", &power[0], "reb", run[0]); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ran) != 1 || ran[0] != "systemctl reboot" {
		t.Fatalf("expected reboot command, got %v", ran)
	}

	parent := action.Descriptor{Action: action.NameMenusParent}
	if err := m.Activate("menus:power", nil, "", parent); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if navigated[len(navigated)-1] != MenusName {
		t.Fatalf("expected navigation back to root menu, got %v", navigated)
	}
}

func TestMenusExactQueryUsesSubstring(t *testing.T) {
	m := NewMenus([]MenuEntry{{Label: "Terminal", Exec: "foot"}, {Label: "Trim", Exec: "trim"}}, nil, nil)
	items, err := m.Query(context.Background(), Query{Provider: MenusName, Text: "tmi", Exact: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 0 {
		t.Fatalf("expected no exact matches, got %#v", items)
	}
	items, err = m.Query(context.Background(), Query{Provider: MenusName, Text: "rim", Exact: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 1 || items[0].Label != "Trim" {
		t.Fatalf("expected Trim, got %#v", items)
	}
}

func TestRegistryFindsNamespacedMenus(t *testing.T) {
	m := NewMenus(nil, nil, nil)
	d := NewDmenu(nil)
	r := NewRegistry([]string{MenusName, "missing"}, m, d)
	if p, ok := r.Find("menus:power"); !ok || p.Name() != MenusName {
		t.Fatalf("expected menus provider for namespaced lookup")
	}
	if _, ok := r.Find("files"); ok {
		t.Fatalf("expected unknown provider lookup to fail")
	}
	if got := r.Defaults(); len(got) != 1 || got[0] != MenusName {
		t.Fatalf("expected only registered defaults, got %v", got)
	}
	if _, ok := r.Refreshers()[DmenuName]; !ok {
		t.Fatalf("expected dmenu to be a refresher")
	}
}

func TestMenusPreview(t *testing.T) {
	m := NewMenus([]MenuEntry{
		{Label: "Power", Submenu: "power"},
		{Label: "Reboot", Exec: "systemctl reboot", Menu: "power"},
	}, nil, nil)
	root, _ := m.Query(context.Background(), Query{Provider: MenusName})
	lines, err := m.Preview(root[0])
	if err != nil || len(lines) != 1 || lines[0] != "Reboot" {
		t.Fatalf("expected submenu listing, got %v %v", lines, err)
	}
	power, _ := m.Query(context.Background(), Query{Provider: "menus:power"})
	lines, err = m.Preview(power[0])
	if err != nil || lines[0] != "$ systemctl reboot" {
		t.Fatalf("expected command preview, got %v %v", lines, err)
	}
}
