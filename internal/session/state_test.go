package session

import (
	"testing"

	"github.com/atomicstack/popup-launcher/internal/action"
)

func TestActiveProviderPrefersExplicitProvider(t *testing.T) {
	s := New("")
	if s.Theme != "default" || s.DefaultTheme != "default" {
		t.Fatalf("expected default theme fallback, got %q/%q", s.Theme, s.DefaultTheme)
	}
	s.PrefixProvider = "menus"
	if got := s.ActiveProvider(); got != "menus" {
		t.Fatalf("expected prefix provider, got %q", got)
	}
	s.Provider = "dmenu"
	if got := s.ActiveProvider(); got != "dmenu" {
		t.Fatalf("expected explicit provider to win, got %q", got)
	}
}

func TestAsyncAfterIsConsumedOnce(t *testing.T) {
	s := New("default")
	if _, ok := s.TakeAsyncAfter(); ok {
		t.Fatalf("expected no pending marker")
	}
	s.SetAsyncAfter(action.AfterAsyncReload)
	got, ok := s.TakeAsyncAfter()
	if !ok || got != action.AfterAsyncReload {
		t.Fatalf("expected AsyncReload marker, got %s/%v", got, ok)
	}
	if _, ok := s.TakeAsyncAfter(); ok {
		t.Fatalf("expected marker cleared after take")
	}
}

func TestSetErrorAppendsLines(t *testing.T) {
	s := New("default")
	s.SetError("Theme [a]: broken")
	s.SetError("  ")
	s.SetError("Theme [b]: broken")
	if s.Error != "Theme [a]: broken\nTheme [b]: broken" {
		t.Fatalf("unexpected error text %q", s.Error)
	}
}

func TestGeometryClear(t *testing.T) {
	v := 10
	g := Geometry{Height: &v, MaxWidth: &v}
	if g.IsZero() {
		t.Fatalf("expected non-zero geometry")
	}
	g.Clear()
	if !g.IsZero() {
		t.Fatalf("expected geometry cleared, got %#v", g)
	}
}
