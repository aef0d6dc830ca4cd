package controller

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/atomicstack/popup-launcher/internal/action"
	"github.com/atomicstack/popup-launcher/internal/ipc"
	"github.com/atomicstack/popup-launcher/internal/keybind"
	"github.com/atomicstack/popup-launcher/internal/provider"
	"github.com/atomicstack/popup-launcher/internal/session"
	"github.com/atomicstack/popup-launcher/internal/theme"
)

type fakeHost struct {
	codes []int
}

func (h *fakeHost) Terminate(code int) { h.codes = append(h.codes, code) }

type fakeMessenger struct {
	sent []string
}

func (m *fakeMessenger) Send(text string) error {
	m.sent = append(m.sent, text)
	return nil
}

type activation struct {
	provider string
	action   string
	item     string
}

type staticProvider struct {
	name      string
	labels    []string
	descs     []action.Descriptor
	activated []activation
}

func (p *staticProvider) Name() string { return p.name }

func (p *staticProvider) Query(_ context.Context, q provider.Query) ([]provider.Item, error) {
	items := make([]provider.Item, 0, len(p.labels))
	for _, label := range p.labels {
		actions := make([]string, 0, len(p.descs))
		for _, d := range p.descs {
			actions = append(actions, d.Action)
		}
		items = append(items, provider.Item{ID: label, Label: label, Provider: q.Provider, Actions: actions})
	}
	return items, nil
}

func (p *staticProvider) Actions(ids []string) []action.Descriptor {
	return provider.FilterDescriptors(p.descs, ids)
}

func (p *staticProvider) Activate(name string, item *provider.Item, _ string, d action.Descriptor) error {
	a := activation{provider: name, action: d.Action}
	if item != nil {
		a.item = item.ID
	}
	p.activated = append(p.activated, a)
	return nil
}

func afterPtr(a action.After) *action.After { return &a }

func yes() *bool { v := true; return &v }

type harness struct {
	ctrl   *Controller
	host   *fakeHost
	stdout *fakeMessenger
	files  *staticProvider
	dmenu  *provider.Dmenu
}

func newHarness(t *testing.T, opts Options) *harness {
	t.Helper()
	files := &staticProvider{
		name:   "files",
		labels: []string{"a.txt", "b.txt", "c.txt"},
		descs: []action.Descriptor{
			{Action: "open", Default: yes(), Bind: "enter"},
			{Action: "copy", Bind: "ctrl+c", After: afterPtr(action.AfterKeepOpen)},
		},
	}
	dmenu := provider.NewDmenu(nil)

	binds := keybind.NewTable()
	must := func(err error) {
		t.Helper()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	must(binds.AddGlobal(action.NameClose, "esc"))
	must(binds.AddGlobal(action.NameSelectNext, "down"))
	must(binds.AddGlobal(action.NameSelectPrevious, "up"))
	must(binds.AddGlobal(action.NameToggleExact, "ctrl+x"))
	must(binds.AddGlobal(action.NameResumeLastQuery, "ctrl+p"))
	must(binds.AddGlobal(action.QuickActivate(2), "f3"))
	must(binds.AddProvider("files", files.descs...))
	must(binds.AddProviderGlobal("files",
		action.Descriptor{Action: "set:recent", Bind: "ctrl+e", After: afterPtr(action.AfterNothing)},
		action.Descriptor{Action: "provider:apps", Bind: "ctrl+a", After: afterPtr(action.AfterNothing)},
		action.Descriptor{Action: "refresh", Bind: "ctrl+r", After: afterPtr(action.AfterAsyncReload)},
	))
	must(binds.AddProvider(provider.DmenuName, dmenu.Actions(nil)...))

	st := session.New("")
	st.Connected = true
	themes := theme.NewRegistry()
	themes.SetFatal(func(code int, err error) { t.Fatalf("unexpected fatal %d: %v", code, err) })
	if n := themes.Build(nil, st); n != 1 {
		t.Fatalf("expected the default theme to build, got %d", n)
	}

	h := &harness{host: &fakeHost{}, stdout: &fakeMessenger{}, files: files, dmenu: dmenu}
	h.ctrl = New(Deps{
		State:     st,
		Themes:    themes,
		Binds:     binds,
		Providers: provider.NewRegistry([]string{"files"}, files, dmenu),
		Host:      h.host,
		Stdout:    h.stdout,
	}, opts)
	return h
}

// settle runs the pending query the way the event loop does.
func (h *harness) settle(t *testing.T) {
	t.Helper()
	req, ok := h.ctrl.TakeQuery()
	if !ok {
		return
	}
	items, err := h.ctrl.RunQuery(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected query error: %v", err)
	}
	h.ctrl.SetResults(req.Seq, items, nil)
}

func (h *harness) key(t *testing.T, s string) bool {
	t.Helper()
	return h.ctrl.HandleKey(keybind.MustParse(s))
}

func TestMetaBindDoesNotActivate(t *testing.T) {
	h := newHarness(t, Options{})
	h.ctrl.Open(ipc.OpenParams{Provider: "files"}, nil)
	h.settle(t)

	if !h.key(t, "ctrl+e") {
		t.Fatalf("expected ctrl+e to be handled")
	}
	st := h.ctrl.State()
	if st.CurrentSet != "recent" || st.Provider != "" {
		t.Fatalf("expected set switch to clear provider, got set=%q provider=%q", st.CurrentSet, st.Provider)
	}
	if len(h.files.activated) != 0 {
		t.Fatalf("expected no activation, got %v", h.files.activated)
	}
	if len(h.host.codes) != 0 {
		t.Fatalf("expected session to stay open")
	}

	st.Provider = "files"
	h.key(t, "ctrl+a")
	if st.Provider != "apps" || len(h.files.activated) != 0 {
		t.Fatalf("expected provider switch without activation, got %q %v", st.Provider, h.files.activated)
	}
}

func TestItemBindActivatesAndKeepsOpen(t *testing.T) {
	h := newHarness(t, Options{})
	h.ctrl.Open(ipc.OpenParams{}, nil)
	h.settle(t)

	h.key(t, "ctrl+c")
	want := []activation{{provider: "files", action: "copy", item: "a.txt"}}
	if diff := cmp.Diff(want, h.files.activated, cmp.AllowUnexported(activation{})); diff != "" {
		t.Fatalf("unexpected activations (-want +got):\n%s", diff)
	}
	if h.ctrl.Level().Cursor != 1 {
		t.Fatalf("expected KeepOpen to advance the cursor, got %d", h.ctrl.Level().Cursor)
	}
	if len(h.host.codes) != 0 {
		t.Fatalf("expected session to stay open")
	}

	h.key(t, "enter")
	if len(h.host.codes) != 1 || h.host.codes[0] != 0 {
		t.Fatalf("expected clean exit after open, got %v", h.host.codes)
	}
}

func TestUnboundKeyPassesThrough(t *testing.T) {
	h := newHarness(t, Options{})
	h.ctrl.Open(ipc.OpenParams{}, nil)
	h.settle(t)
	if h.key(t, "x") {
		t.Fatalf("expected plain key to pass through")
	}
	h.ctrl.State().Connected = false
	if !h.key(t, "x") {
		t.Fatalf("expected key to be swallowed while not interactive")
	}
	h.key(t, "esc")
	if len(h.host.codes) != 1 || h.host.codes[0] != ExitCancelled {
		t.Fatalf("expected close to exit with %d, got %v", ExitCancelled, h.host.codes)
	}
}

func TestAsyncReloadIsDeferred(t *testing.T) {
	h := newHarness(t, Options{})
	h.ctrl.Open(ipc.OpenParams{Provider: "files"}, nil)
	h.settle(t)

	h.key(t, "ctrl+r")
	if _, ok := h.ctrl.TakeQuery(); ok {
		t.Fatalf("expected no synchronous re-query")
	}
	st := h.ctrl.State()
	if st.AsyncAfter == nil || *st.AsyncAfter != action.AfterAsyncReload {
		t.Fatalf("expected pending async marker, got %v", st.AsyncAfter)
	}
	if len(h.files.activated) != 1 || h.files.activated[0].item != "" {
		t.Fatalf("expected provider-global activation without item, got %v", h.files.activated)
	}

	h.ctrl.ProviderRefreshed("files")
	if st.AsyncAfter != nil {
		t.Fatalf("expected marker consumed")
	}
	if _, ok := h.ctrl.TakeQuery(); !ok {
		t.Fatalf("expected reload after the refresh landed")
	}
}

func TestDmenuAcceptWithEmptyInputCancels(t *testing.T) {
	h := newHarness(t, Options{})
	h.ctrl.Open(ipc.OpenParams{Dmenu: true}, nil)
	h.settle(t)

	if !h.key(t, "enter") {
		t.Fatalf("expected accept to be handled")
	}
	if diff := cmp.Diff([]string{ipc.Cancelled}, h.stdout.sent); diff != "" {
		t.Fatalf("unexpected output (-want +got):\n%s", diff)
	}
	if len(h.host.codes) != 1 || h.host.codes[0] != 0 {
		t.Fatalf("expected non-cancelled quit, got %v", h.host.codes)
	}
}

func TestDmenuAcceptEmitsTypedText(t *testing.T) {
	h := newHarness(t, Options{})
	h.ctrl.Open(ipc.OpenParams{Dmenu: true, Query: "custom"}, nil)
	h.settle(t)
	h.key(t, "enter")
	if diff := cmp.Diff([]string{"custom"}, h.stdout.sent); diff != "" {
		t.Fatalf("unexpected output (-want +got):\n%s", diff)
	}
}

func TestDmenuKeepOpenForcesNothing(t *testing.T) {
	h := newHarness(t, Options{})
	h.ctrl.Open(ipc.OpenParams{Dmenu: true, KeepOpen: true, Lines: []string{"one", "two"}}, nil)
	h.settle(t)

	h.key(t, "enter")
	h.key(t, "down")
	h.key(t, "enter")
	if diff := cmp.Diff([]string{"one", "two"}, h.stdout.sent); diff != "" {
		t.Fatalf("unexpected output (-want +got):\n%s", diff)
	}
	if len(h.host.codes) != 0 || !h.ctrl.State().Dmenu.Enabled {
		t.Fatalf("expected session to stay open")
	}
}

func TestDmenuExitAfterIsOneShot(t *testing.T) {
	h := newHarness(t, Options{})
	h.ctrl.Open(ipc.OpenParams{Dmenu: true, KeepOpen: true, ExitAfter: true, Lines: []string{"one"}}, nil)
	h.settle(t)

	h.key(t, "enter")
	st := h.ctrl.State()
	if len(h.host.codes) != 1 {
		t.Fatalf("expected exit-after to close the session, got %v", h.host.codes)
	}
	if st.Dmenu.KeepOpen || st.Dmenu.ExitAfter || st.Dmenu.Enabled {
		t.Fatalf("expected dmenu flags cleared, got %+v", st.Dmenu)
	}
}

func TestDmenuPreselectsCurrentIndex(t *testing.T) {
	h := newHarness(t, Options{})
	h.ctrl.Open(ipc.OpenParams{Dmenu: true, CurrentIndex: 2, Lines: []string{"a", "b", "c"}}, nil)
	h.settle(t)
	if h.ctrl.Level().Cursor != 2 {
		t.Fatalf("expected cursor at 2, got %d", h.ctrl.Level().Cursor)
	}
}

func TestResetIsIdempotent(t *testing.T) {
	open := ipc.OpenParams{
		Provider:    "files",
		Theme:       "missing",
		Query:       "b",
		Placeholder: "pick",
		Width:       intPtr(50),
		NoHints:     true,
		Dmenu:       true,
		ExitAfter:   true,
	}
	once := newHarness(t, Options{})
	once.ctrl.Open(open, nil)
	once.ctrl.Quit(false)
	once.ctrl.Idle().Drain()

	twice := newHarness(t, Options{})
	twice.ctrl.Open(open, nil)
	twice.ctrl.Quit(false)
	twice.ctrl.Quit(false)
	if n := twice.ctrl.Idle().Len(); n != 1 {
		t.Fatalf("expected one restore queued, got %d", n)
	}
	twice.ctrl.Idle().Drain()

	if diff := cmp.Diff(once.ctrl.State(), twice.ctrl.State()); diff != "" {
		t.Fatalf("state differs after repeated reset (-once +twice):\n%s", diff)
	}
	if diff := cmp.Diff(once.ctrl.Surface().Size, twice.ctrl.Surface().Size); diff != "" {
		t.Fatalf("surface differs after repeated reset (-once +twice):\n%s", diff)
	}
}

func TestRestoreWaitsForIdle(t *testing.T) {
	h := newHarness(t, Options{})
	h.ctrl.Open(ipc.OpenParams{Query: "abc", Placeholder: "pick", Width: intPtr(50), NoHints: true}, nil)
	surface := h.ctrl.Surface()
	if surface.Size.Width != 50 || surface.Placeholder != "pick" || surface.HintsVisible {
		t.Fatalf("expected overrides applied, got %+v", surface.Size)
	}

	h.ctrl.Quit(true)
	st := h.ctrl.State()
	if st.LastQuery != "" || h.ctrl.InputText() != "abc" {
		t.Fatalf("expected phase 2 to be deferred")
	}
	if st.Parameters.Width != nil || st.NoHints || st.Visible {
		t.Fatalf("expected phase 1 clears, got %+v", st)
	}
	if surface.Size.Width != 50 {
		t.Fatalf("expected geometry restore to wait for idle")
	}

	h.ctrl.Idle().Drain()
	if st.LastQuery != "abc" || h.ctrl.InputText() != "" {
		t.Fatalf("expected last query snapshot, got %q / %q", st.LastQuery, h.ctrl.InputText())
	}
	if surface.Size.Width != 72 || st.Initial.Width != nil {
		t.Fatalf("expected initial width restored, got %d", surface.Size.Width)
	}
	if surface.Placeholder != "Search..." || st.InitialPlaceholder != nil {
		t.Fatalf("expected placeholder restored, got %q", surface.Placeholder)
	}
	if !surface.HintsVisible || !surface.SearchVisible || !surface.ContentVisible {
		t.Fatalf("expected sections visible again")
	}

	h.key(t, "ctrl+p")
	if h.ctrl.InputText() != "abc" {
		t.Fatalf("expected resume last query, got %q", h.ctrl.InputText())
	}
}

func TestRestoreClearsPlaceholderOnThemeWithoutOne(t *testing.T) {
	h := newHarness(t, Options{})
	bare := "[window]\nwidth = 40\n[list]\n[input]\nprompt = \"> \"\n"
	if err := h.ctrl.Themes().Refresh("bare", []byte(bare)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	h.ctrl.Open(ipc.OpenParams{Theme: "bare", Placeholder: "pick one"}, nil)
	surface := h.ctrl.Surface()
	if surface.Name != "bare" || surface.Placeholder != "pick one" {
		t.Fatalf("expected placeholder on bare theme, got %q on %q", surface.Placeholder, surface.Name)
	}

	h.ctrl.Quit(false)
	h.ctrl.Idle().Drain()
	if surface.Placeholder != "" {
		t.Fatalf("expected placeholder cleared after reset, got %q", surface.Placeholder)
	}
	if h.ctrl.State().InitialPlaceholder != nil {
		t.Fatalf("expected saved placeholder consumed")
	}

	h.ctrl.Open(ipc.OpenParams{Theme: "bare"}, nil)
	if h.ctrl.Surface().Placeholder != "" {
		t.Fatalf("expected next session without placeholder, got %q", h.ctrl.Surface().Placeholder)
	}
}

func TestServiceQuitHidesAndCancelsClient(t *testing.T) {
	h := newHarness(t, Options{})
	h.ctrl.State().Service = true
	client := &fakeMessenger{}
	h.ctrl.Open(ipc.OpenParams{Dmenu: true, Lines: []string{"x"}}, client)
	if !h.ctrl.Attached() {
		t.Fatalf("expected client attached")
	}
	h.key(t, "esc")
	if diff := cmp.Diff([]string{ipc.Cancelled}, client.sent); diff != "" {
		t.Fatalf("unexpected client replies (-want +got):\n%s", diff)
	}
	if len(h.host.codes) != 0 {
		t.Fatalf("expected service process to keep running")
	}
	if h.ctrl.Surface().Visible {
		t.Fatalf("expected surface hidden")
	}
	h.ctrl.Quit(true)
	if len(client.sent) != 1 {
		t.Fatalf("expected the client answered once, got %v", client.sent)
	}
}

func TestServiceDmenuAnswersClient(t *testing.T) {
	h := newHarness(t, Options{})
	h.ctrl.State().Service = true
	client := &fakeMessenger{}
	h.ctrl.Open(ipc.OpenParams{Dmenu: true, Lines: []string{"alpha", "beta"}}, client)
	h.settle(t)
	h.key(t, "down")
	h.key(t, "enter")
	if diff := cmp.Diff([]string{"beta"}, client.sent); diff != "" {
		t.Fatalf("unexpected client replies (-want +got):\n%s", diff)
	}
	if len(h.stdout.sent) != 0 {
		t.Fatalf("expected nothing on stdout in service mode")
	}
}

func TestToggleExact(t *testing.T) {
	h := newHarness(t, Options{ExactPrefix: "'"})
	var mirrored []string
	h.ctrl.SetTextSink(func(s string) { mirrored = append(mirrored, s) })
	h.ctrl.Open(ipc.OpenParams{Query: "foo"}, nil)

	h.key(t, "ctrl+x")
	if h.ctrl.InputText() != "'foo" {
		t.Fatalf("expected prefix added, got %q", h.ctrl.InputText())
	}
	h.key(t, "ctrl+x")
	if h.ctrl.InputText() != "foo" {
		t.Fatalf("expected prefix stripped, got %q", h.ctrl.InputText())
	}
	if diff := cmp.Diff([]string{"foo", "'foo", "foo"}, mirrored); diff != "" {
		t.Fatalf("unexpected widget updates (-want +got):\n%s", diff)
	}
}

func TestGuardSuppressesEcho(t *testing.T) {
	h := newHarness(t, Options{})
	h.ctrl.SetTextSink(func(s string) { h.ctrl.TextEdited(s + "!") })
	h.ctrl.SetInputText("abc")
	if h.ctrl.InputText() != "abc" {
		t.Fatalf("expected widget echo ignored, got %q", h.ctrl.InputText())
	}
	if h.ctrl.Seq() != 1 {
		t.Fatalf("expected exactly one query, got %d", h.ctrl.Seq())
	}
}

func TestStaleResultsAreDropped(t *testing.T) {
	h := newHarness(t, Options{})
	h.ctrl.SetInputText("a")
	old, _ := h.ctrl.TakeQuery()
	h.ctrl.TextEdited("ab")
	if h.ctrl.SetResults(old.Seq, []provider.Item{{ID: "x"}}, nil) {
		t.Fatalf("expected stale results dropped")
	}
	h.settle(t)
	if h.ctrl.Level().Len() != 3 {
		t.Fatalf("expected current results, got %d", h.ctrl.Level().Len())
	}
}

func TestArgumentDelimiterSkipsQuery(t *testing.T) {
	h := newHarness(t, Options{ArgumentDelimiter: "#"})
	h.ctrl.TextEdited("foo#bar")
	if _, ok := h.ctrl.TakeQuery(); ok {
		t.Fatalf("expected no query while an argument is typed")
	}
}

func TestQuickActivate(t *testing.T) {
	h := newHarness(t, Options{})
	h.ctrl.Open(ipc.OpenParams{}, nil)
	h.settle(t)
	h.key(t, "f3")
	if len(h.files.activated) != 1 || h.files.activated[0].item != "c.txt" || h.files.activated[0].action != "open" {
		t.Fatalf("expected quick activate of c.txt, got %v", h.files.activated)
	}
}

func TestActivateDefaultWithoutDefaultDescriptor(t *testing.T) {
	h := newHarness(t, Options{})
	h.files.descs = []action.Descriptor{{Action: "open"}, {Action: "copy"}}
	h.ctrl.Open(ipc.OpenParams{}, nil)
	h.settle(t)
	h.ctrl.ActivateDefault()
	if len(h.files.activated) != 0 {
		t.Fatalf("expected no activation, got %v", h.files.activated)
	}
	if h.ctrl.State().Error == "" {
		t.Fatalf("expected an error to be reported")
	}
}

func TestPointerNeedsRealMotion(t *testing.T) {
	h := newHarness(t, Options{})
	h.ctrl.Open(ipc.OpenParams{}, nil)
	h.settle(t)
	h.key(t, "down")

	h.ctrl.PointerMoved(5, 5, 2)
	if h.ctrl.Level().Cursor != 1 {
		t.Fatalf("expected first motion to only set a baseline, got %d", h.ctrl.Level().Cursor)
	}
	h.ctrl.PointerMoved(6, 5, 2)
	if h.ctrl.Level().Cursor != 2 {
		t.Fatalf("expected hover to select, got %d", h.ctrl.Level().Cursor)
	}
	h.key(t, "up")
	h.ctrl.PointerMoved(6, 5, 0)
	if h.ctrl.Level().Cursor != 1 {
		t.Fatalf("expected keyboard move to suspend hover, got %d", h.ctrl.Level().Cursor)
	}
}

func TestClickAfterKeyboardMoveIsIgnored(t *testing.T) {
	h := newHarness(t, Options{})
	h.ctrl.Open(ipc.OpenParams{}, nil)
	h.settle(t)

	h.ctrl.PointerMoved(5, 5, 0)
	h.ctrl.PointerMoved(6, 5, 0)
	h.key(t, "down")
	h.ctrl.PointerClicked(0)
	if len(h.files.activated) != 0 {
		t.Fatalf("expected stale click ignored, got %v", h.files.activated)
	}
	if h.ctrl.Level().Cursor != 1 {
		t.Fatalf("expected keyboard cursor kept, got %d", h.ctrl.Level().Cursor)
	}

	h.ctrl.PointerMoved(6, 5, 0)
	h.ctrl.PointerMoved(7, 5, 0)
	h.ctrl.PointerClicked(0)
	want := []activation{{provider: "files", action: "open", item: "a.txt"}}
	if diff := cmp.Diff(want, h.files.activated, cmp.AllowUnexported(activation{})); diff != "" {
		t.Fatalf("unexpected activations (-want +got):\n%s", diff)
	}
}

func TestClickOutsideCloses(t *testing.T) {
	h := newHarness(t, Options{ClickToClose: true})
	h.ctrl.Open(ipc.OpenParams{}, nil)
	h.ctrl.PointerClicked(-1)
	if len(h.host.codes) != 1 || h.host.codes[0] != ExitCancelled {
		t.Fatalf("expected cancelled quit, got %v", h.host.codes)
	}
}

func TestHintsHideMenusParentUnderPrefix(t *testing.T) {
	h := newHarness(t, Options{})
	binds := h.ctrl.Binds()
	if err := binds.AddProviderGlobal(provider.MenusName, provider.MenusGlobalDescriptors()...); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	st := h.ctrl.State()
	st.Provider = "menus:power"
	if hints := h.ctrl.Hints(); len(hints) != 1 || hints[0].Action != action.NameMenusParent {
		t.Fatalf("expected menus:parent hint, got %v", hints)
	}
	st.Provider = ""
	st.PrefixProvider = "menus:power"
	if hints := h.ctrl.Hints(); len(hints) != 0 {
		t.Fatalf("expected menus:parent hidden, got %v", hints)
	}
}

func TestThemeFallsBackToDefault(t *testing.T) {
	h := newHarness(t, Options{})
	h.ctrl.State().Theme = "missing"
	if s := h.ctrl.Surface(); s.Name != theme.DefaultName {
		t.Fatalf("expected default surface, got %q", s.Name)
	}

	st := session.New("")
	themes := theme.NewRegistry()
	var fatal error
	code := 0
	themes.SetFatal(func(c int, err error) { code, fatal = c, err })
	s := themes.MustResolveActive(st)
	if code != ExitCancelled || !errors.Is(fatal, theme.ErrNoSurface) {
		t.Fatalf("expected fatal exit %d, got %d %v", ExitCancelled, code, fatal)
	}
	if s == nil {
		t.Fatalf("expected a detached surface when the fatal hook returns")
	}
	if _, ok := themes.Get(theme.DefaultName); ok {
		t.Fatalf("expected the fallback surface to stay unregistered")
	}
}

func intPtr(v int) *int { return &v }
