package state

import (
	"testing"

	"github.com/atomicstack/popup-launcher/internal/provider"
)

func scored(scores ...uint32) []provider.Item {
	items := make([]provider.Item, len(scores))
	for i, s := range scores {
		items[i] = provider.Item{ID: string(rune('a' + i)), DmenuScore: s}
	}
	return items
}

func TestFilterDmenuThreshold(t *testing.T) {
	got := FilterDmenu(scored(30, 40, 50), "ab", true)
	if len(got) != 2 || got[0].DmenuScore != 40 || got[1].DmenuScore != 50 {
		t.Fatalf("expected [40 50], got %#v", got)
	}
}

func TestFilterDmenuBoundary(t *testing.T) {
	if !KeepDmenu(provider.Item{DmenuScore: 54}, "abc", true) {
		t.Fatalf("expected score equal to threshold to be kept")
	}
	if KeepDmenu(provider.Item{DmenuScore: 53}, "abc", true) {
		t.Fatalf("expected score below threshold to be dropped")
	}
	// runes, not bytes
	if !KeepDmenu(provider.Item{DmenuScore: 36}, "äö", true) {
		t.Fatalf("expected threshold computed from rune count")
	}
}

func TestFilterDmenuInactive(t *testing.T) {
	items := scored(0, 1, 2)
	if got := FilterDmenu(items, "", true); len(got) != 3 {
		t.Fatalf("expected empty query to keep all, got %d", len(got))
	}
	if got := FilterDmenu(items, "abc", false); len(got) != 3 {
		t.Fatalf("expected non-dmenu mode to keep all, got %d", len(got))
	}
}

func TestFilterDmenuIgnoresSurroundingSpaces(t *testing.T) {
	items := []provider.Item{
		{ID: "alpha", DmenuScore: provider.DmenuScore("a  ", "alpha")},
		{ID: "beta", DmenuScore: provider.DmenuScore("a  ", "beta")},
	}
	got := FilterDmenu(items, "a  ", true)
	if len(got) != 2 || got[0].ID != "alpha" {
		t.Fatalf("expected scored lines kept for a padded query, got %#v", got)
	}
	if got := FilterDmenu(scored(0, 0), "   ", true); len(got) != 2 {
		t.Fatalf("expected blank query to keep all, got %d", len(got))
	}
}
