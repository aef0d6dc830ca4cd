// Package controller resolves user input into actions and owns the session
// lifecycle: after-actions, the two-phase reset and reopening.
package controller

import (
	"context"
	"fmt"

	"github.com/atomicstack/popup-launcher/internal/ipc"
	"github.com/atomicstack/popup-launcher/internal/keybind"
	"github.com/atomicstack/popup-launcher/internal/logging"
	"github.com/atomicstack/popup-launcher/internal/logging/events"
	"github.com/atomicstack/popup-launcher/internal/preview"
	"github.com/atomicstack/popup-launcher/internal/provider"
	"github.com/atomicstack/popup-launcher/internal/query"
	"github.com/atomicstack/popup-launcher/internal/session"
	"github.com/atomicstack/popup-launcher/internal/theme"
	"github.com/atomicstack/popup-launcher/internal/ui/state"
)

// ExitCancelled is the exit code of a one-shot session the user cancelled.
const ExitCancelled = 130

// Host is the process hosting a one-shot session.
type Host interface {
	// Terminate ends the process with code once the terminal is restored.
	Terminate(code int)
}

// Options are the behaviour switches read from configuration.
type Options struct {
	Wrap              bool
	DisableMouse      bool
	ClickToClose      bool
	ExactPrefix       string
	ArgumentDelimiter string
}

// Deps are the collaborators a Controller works with.
type Deps struct {
	State     *session.State
	Themes    *theme.Registry
	Binds     *keybind.Table
	Providers *provider.Registry
	Previews  *preview.Registry
	Pipeline  *query.Pipeline
	Host      Host
	// Stdout receives emitted values outside service mode.
	Stdout    ipc.Messenger
}

// QueryRequest is a query the event loop should run off-thread.
type QueryRequest struct {
	Seq  int
	Text string
	Plan query.Plan
	Set  string
}

// Controller coordinates session state, selection and bind resolution. It
// is owned by the event loop and is not safe for concurrent use.
type Controller struct {
	st        *session.State
	themes    *theme.Registry
	resolver  *keybind.Resolver
	providers *provider.Registry
	previews  *preview.Registry
	pipeline  *query.Pipeline
	host      Host
	stdout    ipc.Messenger
	dmenu     *provider.Dmenu
	opts      Options

	level   *state.Level
	pointer *state.Pointer
	idle    IdleQueue

	input     string
	guard     bool
	textSink  func(string)
	sender    ipc.Messenger
	pending   *QueryRequest
	seq       int
	pane      *preview.Pane
	restoring bool
}

// New wires a controller. The dmenu provider emits through the controller
// and the menus provider navigates through it.
func New(deps Deps, opts Options) *Controller {
	if deps.State == nil {
		deps.State = session.New("")
	}
	if deps.Themes == nil {
		deps.Themes = theme.NewRegistry()
	}
	if deps.Providers == nil {
		deps.Providers = provider.NewRegistry(nil)
	}
	if deps.Previews == nil {
		deps.Previews = preview.NewRegistry()
	}
	if deps.Pipeline == nil {
		deps.Pipeline = query.New(deps.Providers, nil, opts.ExactPrefix)
	}
	if deps.Stdout == nil {
		deps.Stdout = ipc.NewStdout(nil)
	}
	c := &Controller{
		st:        deps.State,
		themes:    deps.Themes,
		resolver:  keybind.NewResolver(deps.Binds),
		providers: deps.Providers,
		previews:  deps.Previews,
		pipeline:  deps.Pipeline,
		host:      deps.Host,
		stdout:    deps.Stdout,
		opts:      opts,
		level:     state.NewLevel("results", nil, opts.Wrap),
		pointer:   state.NewPointer(opts.DisableMouse),
	}
	if p, ok := c.providers.Find(provider.DmenuName); ok {
		if d, ok := p.(*provider.Dmenu); ok {
			d.SetEmitter(func(text string) { c.Emit(text) })
			c.dmenu = d
		}
	}
	if p, ok := c.providers.Find(provider.MenusName); ok {
		if m, ok := p.(*provider.Menus); ok {
			m.SetNavigator(c.SwitchProvider)
		}
	}
	return c
}

func (c *Controller) State() *session.State { return c.st }
func (c *Controller) Level() *state.Level { return c.level }
func (c *Controller) Pointer() *state.Pointer { return c.pointer }
func (c *Controller) Idle() *IdleQueue { return &c.idle }
func (c *Controller) Options() Options { return c.opts }
func (c *Controller) Preview() *preview.Pane { return c.pane }
func (c *Controller) InputText() string { return c.input }
func (c *Controller) Themes() *theme.Registry { return c.themes }
func (c *Controller) Binds() *keybind.Table { return c.resolver.Table() }
func (c *Controller) Providers() *provider.Registry { return c.providers }

// Surface resolves the active surface. A missing default theme is fatal.
func (c *Controller) Surface() *theme.Surface {
	return c.themes.MustResolveActive(c.st)
}

// SetTextSink installs the function that mirrors programmatic text changes
// into the input widget.
func (c *Controller) SetTextSink(fn func(string)) {
	c.textSink = fn
}

// Attached reports whether an IPC client is waiting for a value.
func (c *Controller) Attached() bool {
	return c.sender != nil
}

// TakeQuery returns the pending query request, if any.
func (c *Controller) TakeQuery() (QueryRequest, bool) {
	if c.pending == nil {
		return QueryRequest{}, false
	}
	req := *c.pending
	c.pending = nil
	return req, true
}

// RunQuery executes req against the providers. Safe to call off the event loop.
func (c *Controller) RunQuery(ctx context.Context, req QueryRequest) ([]provider.Item, error) {
	return c.pipeline.Run(ctx, req.Plan, req.Set)
}

// Emit delivers a chosen value: to the attached IPC client in service mode,
// to stdout otherwise. The attached client is answered at most once.
func (c *Controller) Emit(text string) {
	events.Command.Emit(text, c.st.Service)
	if c.st.Service {
		if c.sender == nil {
			logging.Warn(fmt.Sprintf("no client attached for value %q", text))
			return
		}
		sender := c.sender
		c.sender = nil
		if err := sender.Send(text); err != nil {
			logging.Error(fmt.Errorf("send value: %w", err))
		}
		return
	}
	if err := c.stdout.Send(text); err != nil {
		logging.Error(err)
	}
}
