package backend

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/atomicstack/popup-launcher/internal/provider"
)

// Kind represents the type of data emitted by the backend watcher.
type Kind int

const (
	// KindRefresh announces that a provider has new data.
	KindRefresh Kind = iota
	// KindTheme carries a changed theme layout.
	KindTheme
)

// Event conveys a provider refresh, a theme change, or an error.
type Event struct {
	Kind Kind
	// Name is the provider or theme name.
	Name string
	Data []byte
	Err  error
}

// Options configure a Watcher.
type Options struct {
	Refreshers map[string]provider.Refresher
	// ThemesDir is watched for layout changes when non-empty.
	ThemesDir string
	// Throttle is the minimum gap between two events of one source.
	Throttle time.Duration
	// Intervals override Throttle per provider name, or for theme files
	// under ThemesSource.
	Intervals map[string]time.Duration
}

// Watcher forwards provider refresh signals and theme file changes to the UI.
type Watcher struct {
	ctx    context.Context
	cancel context.CancelFunc

	events chan Event
	wg     sync.WaitGroup
}

// NewWatcher starts watching the configured sources.
func NewWatcher(opts Options) (*Watcher, error) {
	ctx, cancel := context.WithCancel(context.Background())
	gate := newThrottle(opts.Throttle, opts.Intervals)
	w := &Watcher{
		ctx:    ctx,
		cancel: cancel,
		events: make(chan Event, 16),
	}
	if opts.ThemesDir != "" {
		fsw, err := fsnotify.NewWatcher()
		if err != nil {
			cancel()
			return nil, fmt.Errorf("create theme watcher: %w", err)
		}
		if err := fsw.Add(opts.ThemesDir); err != nil {
			fsw.Close()
			cancel()
			return nil, fmt.Errorf("watch themes dir: %w", err)
		}
		w.wg.Add(1)
		go w.watchThemes(fsw, gate)
	}
	for name, r := range opts.Refreshers {
		w.wg.Add(1)
		go w.forward(name, r.Refreshed(), gate)
	}

	go func() {
		w.wg.Wait()
		close(w.events)
	}()

	return w, nil
}

// Events returns a channel of backend events.
func (w *Watcher) Events() <-chan Event {
	return w.events
}

// Stop cancels the watcher.
func (w *Watcher) Stop() {
	w.cancel()
}

// Wait blocks until all goroutines have exited and the events channel is
// closed. Call after Stop when a clean shutdown is required.
func (w *Watcher) Wait() {
	w.wg.Wait()
}

func (w *Watcher) emit(evt Event) bool {
	select {
	case <-w.ctx.Done():
		return false
	case w.events <- evt:
		return true
	}
}

func (w *Watcher) forward(name string, refreshed <-chan struct{}, throttle *throttle) {
	defer w.wg.Done()
	for {
		select {
		case <-w.ctx.Done():
			return
		case _, ok := <-refreshed:
			if !ok {
				return
			}
			if !throttle.wait(w.ctx, name) {
				return
			}
			if !w.emit(Event{Kind: KindRefresh, Name: name}) {
				return
			}
		}
	}
}

func (w *Watcher) watchThemes(fsw *fsnotify.Watcher, throttle *throttle) {
	defer w.wg.Done()
	defer fsw.Close()
	for {
		select {
		case <-w.ctx.Done():
			return
		case ev, ok := <-fsw.Events:
			if !ok {
				return
			}
			if filepath.Ext(ev.Name) != ".toml" || !ev.Has(fsnotify.Write|fsnotify.Create) {
				continue
			}
			name := themeName(ev.Name)
			if !throttle.wait(w.ctx, themeKey(name)) {
				return
			}
			data, err := os.ReadFile(ev.Name)
			if err != nil {
				err = fmt.Errorf("read theme %s: %w", name, err)
			}
			if !w.emit(Event{Kind: KindTheme, Name: name, Data: data, Err: err}) {
				return
			}
		case err, ok := <-fsw.Errors:
			if !ok {
				return
			}
			if !w.emit(Event{Kind: KindTheme, Err: fmt.Errorf("theme watcher: %w", err)}) {
				return
			}
		}
	}
}

func themeName(path string) string {
	base := filepath.Base(path)
	return base[:len(base)-len(filepath.Ext(base))]
}
