package app

import (
	"fmt"
	"io"
	"os"
	"sort"
	"time"

	"github.com/atomicstack/popup-launcher/internal/backend"
	"github.com/atomicstack/popup-launcher/internal/controller"
	"github.com/atomicstack/popup-launcher/internal/ipc"
	"github.com/atomicstack/popup-launcher/internal/keybind"
	"github.com/atomicstack/popup-launcher/internal/logging"
	"github.com/atomicstack/popup-launcher/internal/preview"
	"github.com/atomicstack/popup-launcher/internal/provider"
	"github.com/atomicstack/popup-launcher/internal/query"
	"github.com/atomicstack/popup-launcher/internal/session"
	"github.com/atomicstack/popup-launcher/internal/theme"
	"github.com/atomicstack/popup-launcher/internal/ui"
)

// watchThrottle spaces out repeated refreshes of one source. Editors write
// theme files in bursts, so those wait longer.
const (
	watchThrottle = 150 * time.Millisecond
	themeThrottle = 300 * time.Millisecond
)

// runtime is everything Run wires together.
type runtime struct {
	model   *ui.Model
	state   *session.State
	themes  *theme.Registry
	dmenu   *provider.Dmenu
	watcher *backend.Watcher
	server  *ipc.Server
}

func build(cfg Config, out io.Writer) (*runtime, error) {
	st := session.New(cfg.Theme)
	st.Service = cfg.Service

	dmenu := provider.NewDmenu(cfg.Providers[provider.DmenuName].Actions)
	menus := provider.NewMenus(cfg.Menus, cfg.Providers[provider.MenusName].Actions, nil)
	providers := provider.NewRegistry(cfg.DefaultProviders, dmenu, menus)
	st.Connected = len(providers.Defaults()) > 0
	if !st.Connected {
		logging.Warn(fmt.Sprintf("no usable default provider in %v; only dmenu sessions accept input", cfg.DefaultProviders))
	}

	binds, err := buildBinds(cfg, providers)
	if err != nil {
		return nil, err
	}

	themes := theme.NewRegistry()
	layouts, err := theme.LoadDir(cfg.ThemesDir)
	if err != nil {
		logging.Error(err)
		st.SetError(err.Error())
	}
	themes.Build(layouts, st)

	previews := preview.NewRegistry()
	previews.Register(provider.MenusName, menus)

	watchDir := cfg.ThemesDir
	if _, err := os.Stat(watchDir); watchDir != "" && err != nil {
		logging.Warn(fmt.Sprintf("not watching themes dir: %v", err))
		watchDir = ""
	}
	watcher, err := backend.NewWatcher(backend.Options{
		Refreshers: providers.Refreshers(),
		ThemesDir:  watchDir,
		Throttle:   watchThrottle,
		Intervals:  map[string]time.Duration{backend.ThemesSource: themeThrottle},
	})
	if err != nil {
		return nil, fmt.Errorf("start watcher: %w", err)
	}

	rt := &runtime{state: st, themes: themes, dmenu: dmenu, watcher: watcher}
	uiCfg := ui.Config{
		Deps: controller.Deps{
			State:     st,
			Themes:    themes,
			Binds:     binds,
			Providers: providers,
			Previews:  previews,
			Pipeline:  query.New(providers, cfg.Prefixes, cfg.Options.ExactPrefix),
			Stdout:    ipc.NewStdout(out),
		},
		Options: cfg.Options,
		Watcher: watcher,
	}
	if cfg.Service {
		server, err := ipc.NewServer(cfg.SocketPath)
		if err != nil {
			watcher.Stop()
			return nil, fmt.Errorf("service socket: %w", err)
		}
		rt.server = server
		uiCfg.Sessions = server.Sessions()
	}
	rt.model = ui.NewModel(uiCfg)
	if !cfg.Service {
		rt.model.Controller().Open(cfg.Open, nil)
	}
	return rt, nil
}

// buildBinds assembles the bind table: global binds in name order, then
// every registered provider's item and provider-global actions. Providers
// without configured actions use their built-in descriptors.
func buildBinds(cfg Config, providers *provider.Registry) (*keybind.Table, error) {
	table := keybind.NewTable()
	names := make([]string, 0, len(cfg.Keybinds))
	for name := range cfg.Keybinds {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := table.AddGlobal(name, cfg.Keybinds[name]...); err != nil {
			return nil, err
		}
	}

	for _, name := range providers.Names() {
		p, _ := providers.Find(name)
		pb := cfg.Providers[name]
		actions := pb.Actions
		if len(actions) == 0 {
			actions = p.Actions(nil)
		}
		if err := table.AddProvider(name, actions...); err != nil {
			return nil, err
		}
		global := pb.Global
		if len(global) == 0 && name == provider.MenusName {
			global = provider.MenusGlobalDescriptors()
		}
		if err := table.AddProviderGlobal(name, global...); err != nil {
			return nil, err
		}
	}

	configured := make([]string, 0, len(cfg.Providers))
	for name := range cfg.Providers {
		configured = append(configured, name)
	}
	sort.Strings(configured)
	for _, name := range configured {
		if _, ok := providers.Find(name); !ok {
			logging.Warn(fmt.Sprintf("actions configured for unknown provider %q", name))
		}
	}
	return table, nil
}
