package events

import "github.com/atomicstack/popup-launcher/internal/logging"

type SessionTracer struct{}

type KeybindTracer struct{}

var (
	Session = SessionTracer{}
	Keybind = KeybindTracer{}
)

func (SessionTracer) Open(provider, theme string, dmenu bool) {
	logging.Trace("session.open", map[string]interface{}{"provider": provider, "theme": theme, "dmenu": dmenu})
}

func (SessionTracer) Quit(cancelled, service bool) {
	logging.Trace("session.quit", map[string]interface{}{"cancelled": cancelled, "service": service})
}

func (SessionTracer) Restore(lastQuery, theme string) {
	logging.Trace("session.restore", map[string]interface{}{"lastQuery": lastQuery, "theme": theme})
}

func (KeybindTracer) Resolved(key, source, action, after string) {
	logging.Trace("keybind.resolved", map[string]interface{}{
		"key":    key,
		"source": source,
		"action": action,
		"after":  after,
	})
}

func (KeybindTracer) NotHandled(key string) {
	logging.Trace("keybind.unhandled", map[string]interface{}{"key": key})
}

func (KeybindTracer) Swallowed(key string) {
	logging.Trace("keybind.swallowed", map[string]interface{}{"key": key})
}
