package events

import "github.com/atomicstack/popup-launcher/internal/logging"

type UITracer struct{}

type FilterTracer struct{}

type ActionTracer struct{}

type CommandTracer struct{}

var (
	UI      = UITracer{}
	Filter  = FilterTracer{}
	Action  = ActionTracer{}
	Command = CommandTracer{}
)

func (UITracer) Cursor(provider string, cursor int) {
	logging.Trace("selection.cursor", map[string]interface{}{"provider": provider, "cursor": cursor})
}

func (UITracer) PointerEnabled(x, y int) {
	logging.Trace("pointer.enabled", map[string]interface{}{"x": x, "y": y})
}

func (UITracer) ThemeReloaded(themes int) {
	logging.Trace("theme.reload", map[string]interface{}{"themes": themes})
}

func (ActionTracer) Error(err error) {
	if err == nil {
		return
	}
	logging.Trace("action.error", map[string]interface{}{"error": err.Error()})
}

func (ActionTracer) After(after string) {
	logging.Trace("action.after", map[string]interface{}{"after": after})
}

func (FilterTracer) Changed(query string, providers []string) {
	logging.Trace("query.changed", map[string]interface{}{"query": query, "providers": providers})
}

func (FilterTracer) Results(total, kept int) {
	logging.Trace("query.results", map[string]interface{}{"total": total, "kept": kept})
}

func (CommandTracer) Activate(provider, action, query string) {
	logging.Trace("command.activate", map[string]interface{}{"provider": provider, "action": action, "query": query})
}

func (CommandTracer) Emit(text string, service bool) {
	logging.Trace("command.emit", map[string]interface{}{"text": text, "service": service})
}
