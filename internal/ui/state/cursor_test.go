package state

import (
	"testing"

	"github.com/atomicstack/popup-launcher/internal/provider"
)

func newTestLevel(wrap bool, ids ...string) *Level {
	items := make([]provider.Item, len(ids))
	for i, id := range ids {
		items[i] = provider.Item{ID: id, Label: id}
	}
	return NewLevel("test", items, wrap)
}

func TestSelectNextWrapReturnsToStart(t *testing.T) {
	for n := 1; n <= 5; n++ {
		ids := make([]string, n)
		for i := range ids {
			ids[i] = string(rune('a' + i))
		}
		for start := 0; start < n; start++ {
			l := newTestLevel(true, ids...)
			l.Cursor = start
			for i := 0; i < n; i++ {
				l.SelectNext()
			}
			if l.Cursor != start {
				t.Fatalf("n=%d start=%d: expected cursor back at start, got %d", n, start, l.Cursor)
			}
		}
	}
}

func TestSelectNextWithoutWrapStopsAtEnd(t *testing.T) {
	l := newTestLevel(false, "a", "b", "c")
	for i := 0; i < 5; i++ {
		l.SelectNext()
	}
	if l.Cursor != 2 {
		t.Fatalf("expected cursor 2, got %d", l.Cursor)
	}
	if l.SelectNext() {
		t.Fatalf("expected no movement at the end")
	}
}

func TestSelectNextWrapsFromLast(t *testing.T) {
	l := newTestLevel(true, "a", "b", "c")
	l.Cursor = 2
	if !l.SelectNext() {
		t.Fatalf("expected movement")
	}
	if l.Cursor != 0 {
		t.Fatalf("expected cursor 0, got %d", l.Cursor)
	}
}

func TestSelectPrevious(t *testing.T) {
	l := newTestLevel(true, "a", "b", "c")
	l.SelectPrevious()
	if l.Cursor != 2 {
		t.Fatalf("expected wrap to 2, got %d", l.Cursor)
	}
	l.Wrap = false
	l.Cursor = 0
	if l.SelectPrevious() {
		t.Fatalf("expected no movement at the start without wrap")
	}
}

func TestEmptyLevelHasNoSelection(t *testing.T) {
	l := newTestLevel(true)
	if l.Cursor != -1 || l.Selected() != nil {
		t.Fatalf("expected no selection, got cursor %d", l.Cursor)
	}
	if l.SelectNext() || l.SelectPrevious() {
		t.Fatalf("expected no movement on an empty list")
	}
	l.UpdateItems([]provider.Item{{ID: "x"}})
	if sel := l.Selected(); sel == nil || sel.ID != "x" {
		t.Fatalf("expected first item autoselected, got %#v", sel)
	}
}

func TestSelectIndex(t *testing.T) {
	l := newTestLevel(false, "a", "b", "c")
	if !l.SelectIndex(2) || l.Selected().ID != "c" {
		t.Fatalf("expected c selected")
	}
	l.SelectIndex(9)
	if l.Selected() != nil {
		t.Fatalf("expected out of range index to clear the selection")
	}
}

func TestMoveCursorPaging(t *testing.T) {
	l := newTestLevel(false, "a", "b", "c", "d", "e")
	if !l.MoveCursorPageDown(2) || l.Cursor != 2 {
		t.Fatalf("expected cursor 2 after page down, got %d", l.Cursor)
	}
	l.MoveCursorPageDown(10)
	if l.Cursor != 4 {
		t.Fatalf("expected cursor clamped to 4, got %d", l.Cursor)
	}
	l.MoveCursorPageUp(3)
	if l.Cursor != 1 {
		t.Fatalf("expected cursor 1, got %d", l.Cursor)
	}
}

func TestEnsureCursorVisible(t *testing.T) {
	l := newTestLevel(false, "a", "b", "c", "d", "e")
	l.Cursor = 4
	l.EnsureCursorVisible(2)
	if l.ViewportOffset != 3 {
		t.Fatalf("expected offset 3, got %d", l.ViewportOffset)
	}
	l.Cursor = 1
	l.EnsureCursorVisible(2)
	if l.ViewportOffset != 1 {
		t.Fatalf("expected offset 1, got %d", l.ViewportOffset)
	}
}

func TestPointerNeedsRealMotion(t *testing.T) {
	p := NewPointer(false)
	if !p.Targetable() {
		t.Fatalf("expected pointer targetable initially")
	}
	p.Disable()
	if p.Targetable() {
		t.Fatalf("expected disabled pointer")
	}
	if p.Motion(10, 10) {
		t.Fatalf("expected first motion to only set the baseline")
	}
	if p.Motion(10, 10) || p.Targetable() {
		t.Fatalf("expected same coordinates to keep targeting off")
	}
	if !p.Motion(11, 10) || !p.Targetable() {
		t.Fatalf("expected moved pointer to re-enable targeting")
	}

	off := NewPointer(true)
	off.Motion(1, 1)
	off.Motion(2, 2)
	if off.Targetable() {
		t.Fatalf("expected mouse-disabled pointer to stay untargetable")
	}
}
