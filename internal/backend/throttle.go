package backend

import (
	"context"
	"strings"
	"sync"
	"time"
)

// ThemesSource names the interval override shared by every theme file.
const ThemesSource = "themes"

const themeKeyPrefix = ThemesSource + "/"

func themeKey(name string) string { return themeKeyPrefix + name }

// throttle spaces out events per source key. Each provider and each theme
// file keeps its own schedule so a busy source never delays another.
type throttle struct {
	interval  time.Duration
	intervals map[string]time.Duration

	mu   sync.Mutex
	next map[string]time.Time
}

func newThrottle(interval time.Duration, intervals map[string]time.Duration) *throttle {
	t := &throttle{interval: max(interval, 0), next: map[string]time.Time{}}
	if len(intervals) > 0 {
		t.intervals = make(map[string]time.Duration, len(intervals))
		for k, v := range intervals {
			t.intervals[k] = max(v, 0)
		}
	}
	return t
}

// intervalFor returns the gap for key: an exact override, then the theme
// override for theme files, then the default.
func (t *throttle) intervalFor(key string) time.Duration {
	if d, ok := t.intervals[key]; ok {
		return d
	}
	if strings.HasPrefix(key, themeKeyPrefix) {
		if d, ok := t.intervals[ThemesSource]; ok {
			return d
		}
	}
	return t.interval
}

// wait blocks until key may fire again. It reports false when ctx ended first.
func (t *throttle) wait(ctx context.Context, key string) bool {
	if t == nil {
		return ctx.Err() == nil
	}
	interval := t.intervalFor(key)
	if interval <= 0 {
		return ctx.Err() == nil
	}
	for {
		t.mu.Lock()
		delay := time.Until(t.next[key])
		if delay <= 0 {
			t.next[key] = time.Now().Add(interval)
			t.mu.Unlock()
			return true
		}
		t.mu.Unlock()

		timer := time.NewTimer(min(delay, interval))
		select {
		case <-ctx.Done():
			timer.Stop()
			return false
		case <-timer.C:
		}
	}
}
