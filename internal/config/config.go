package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/atomicstack/popup-launcher/internal/action"
	"github.com/atomicstack/popup-launcher/internal/app"
	"github.com/atomicstack/popup-launcher/internal/controller"
	"github.com/atomicstack/popup-launcher/internal/ipc"
	"github.com/atomicstack/popup-launcher/internal/provider"
	"github.com/atomicstack/popup-launcher/internal/query"
)

// ErrHelp is returned when --help was requested and usage has been printed.
var ErrHelp = errors.New("help requested")

// Config captures runtime configuration for the application.
type Config struct {
	App     app.Config
	Logging Logging
	Flags   map[string]string
	Args    []string
	// File is the config file that was read, empty when none was found.
	File string
}

type Logging struct {
	FilePath string
	Level    string
	Trace    bool
}

const envPrefix = "POPUP_LAUNCHER_"

// File is the schema of the TOML config file.
type File struct {
	Theme                   string                  `mapstructure:"theme"`
	ThemesDir               string                  `mapstructure:"themes_dir"`
	SelectionWrap           bool                    `mapstructure:"selection_wrap"`
	DisableMouse            bool                    `mapstructure:"disable_mouse"`
	ClickToClose            bool                    `mapstructure:"click_to_close"`
	ExactSearchPrefix       string                  `mapstructure:"exact_search_prefix"`
	GlobalArgumentDelimiter string                  `mapstructure:"global_argument_delimiter"`
	DefaultProviders        []string                `mapstructure:"default_providers"`
	Keybinds                map[string][]string     `mapstructure:"keybinds"`
	Providers               map[string]ProviderFile `mapstructure:"providers"`
	Prefixes                []query.Prefix          `mapstructure:"prefixes"`
	Menus                   MenusFile               `mapstructure:"menus"`
	// Extra collects keys outside the schema; only flag-only keys may land here.
	Extra map[string]interface{} `mapstructure:",remain"`
}

// ProviderFile configures the actions of one provider.
type ProviderFile struct {
	Actions []DescriptorFile `mapstructure:"actions"`
	Global  []DescriptorFile `mapstructure:"global"`
}

// DescriptorFile is one configured action.
type DescriptorFile struct {
	Action  string `mapstructure:"action"`
	Default *bool  `mapstructure:"default"`
	After   string `mapstructure:"after"`
	Bind    string `mapstructure:"bind"`
	Label   string `mapstructure:"label"`
}

type MenusFile struct {
	Entries []provider.MenuEntry `mapstructure:"entries"`
}

// DefaultKeybinds are the global binds used for actions the config file
// does not rebind.
func DefaultKeybinds() map[string][]string {
	binds := map[string][]string{
		action.NameClose:           {"esc", "ctrl+c"},
		action.NameSelectNext:      {"down", "ctrl+j", "ctrl+n"},
		action.NameSelectPrevious:  {"up", "ctrl+k", "ctrl+p"},
		action.NameToggleExact:     {"ctrl+e"},
		action.NameResumeLastQuery: {"ctrl+r"},
	}
	for i := 0; i < 9; i++ {
		binds[action.QuickActivate(i)] = []string{"alt+" + strconv.Itoa(i+1)}
	}
	return binds
}

// Load parses configuration from CLI arguments, environment variables and
// the config file.
func Load() (Config, error) {
	return LoadArgs(os.Args[1:], os.Environ())
}

// LoadArgs allows tests to supply specific args/environment.
func LoadArgs(args []string, environ []string) (Config, error) {
	env := parseEnv(environ)
	v := viper.New()
	v.SetConfigType("toml")
	setDefaults(v)

	var ran bool
	cmd := &cobra.Command{
		Use:           "popup-launcher",
		Short:         "Keyboard-driven launcher for the terminal",
		Args:          cobra.NoArgs,
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(*cobra.Command, []string) error {
			ran = true
			return nil
		},
	}
	cmd.SetArgs(append([]string{}, args...))
	fs := cmd.Flags()
	registerFlags(fs)
	for flagName, key := range viperFlags {
		if err := v.BindPFlag(key, fs.Lookup(flagName)); err != nil {
			return Config{}, fmt.Errorf("bind flag %s: %w", flagName, err)
		}
	}

	if err := cmd.Execute(); err != nil {
		return Config{}, err
	}
	if !ran {
		return Config{}, ErrHelp
	}

	path, explicit := configPath(fs, env)
	used := ""
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			if explicit || !errors.Is(err, os.ErrNotExist) {
				return Config{}, fmt.Errorf("read config file %s: %w", path, err)
			}
		} else {
			used = path
		}
	}
	applyEnv(v, fs, env)

	var file File
	if err := v.Unmarshal(&file); err != nil {
		return Config{}, fmt.Errorf("parse config file %s: %w", used, err)
	}
	for key := range file.Extra {
		if _, ok := viperKeys[key]; !ok {
			return Config{}, fmt.Errorf("config: unknown key %q", key)
		}
	}

	appCfg, err := buildApp(fs, v, file)
	if err != nil {
		return Config{}, err
	}
	cfg := Config{
		App: appCfg,
		Logging: Logging{
			FilePath: v.GetString("log_file"),
			Level:    v.GetString("log_level"),
			Trace:    v.GetBool("trace"),
		},
		Flags: changedFlags(fs),
		Args:  append([]string(nil), args...),
		File:  used,
	}
	return cfg, nil
}

// viperFlags maps flags to the config keys they override.
var viperFlags = map[string]string{
	"theme":          "theme",
	"themes-dir":     "themes_dir",
	"wrap":           "selection_wrap",
	"disable-mouse":  "disable_mouse",
	"click-to-close": "click_to_close",
	"socket":         "socket",
	"log-file":       "log_file",
	"log-level":      "log_level",
	"trace":          "trace",
}

// viperKeys are the keys that exist only as flags or env vars.
var viperKeys = map[string]struct{}{
	"socket":    {},
	"log_file":  {},
	"log_level": {},
	"trace":     {},
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("theme", "default")
	v.SetDefault("exact_search_prefix", "'")
	v.SetDefault("global_argument_delimiter", "#")
	v.SetDefault("default_providers", []string{provider.MenusName})
	v.SetDefault("log_level", "info")
}

func registerFlags(fs *pflag.FlagSet) {
	fs.String("config", "", "path to the config file")
	fs.Bool("service", false, "run as a hidden service opened over the socket")
	fs.Bool("connect", false, "ask a running service to open instead of starting a new launcher")
	fs.String("socket", "", "path to the service socket")

	fs.StringP("provider", "p", "", "provider to open with")
	fs.StringP("theme", "t", "", "theme to open with")
	fs.String("themes-dir", "", "directory of theme layout files")
	fs.StringP("query", "q", "", "initial query")
	fs.String("placeholder", "", "placeholder shown in the empty input")

	fs.BoolP("dmenu", "d", false, "read lines from stdin and print the chosen one")
	fs.BoolP("keep-open", "k", false, "keep the launcher open after a dmenu selection")
	fs.Bool("exit-after", false, "close after the next dmenu selection even with keep-open")
	fs.Int("current-index", 0, "preselect this dmenu line")

	fs.Int("width", 0, "surface width in cells (0 uses the theme)")
	fs.Int("height", 0, "surface height in rows (0 uses the theme)")
	fs.Int("min-width", 0, "minimum surface width")
	fs.Int("max-width", 0, "maximum surface width")
	fs.Int("min-height", 0, "minimum surface height")
	fs.Int("max-height", 0, "maximum surface height")

	fs.Bool("no-search", false, "hide the search input")
	fs.Bool("no-hints", false, "hide the keybind hints")
	fs.Bool("input-only", false, "show only the input")
	fs.Bool("close", false, "close when the input is confirmed")
	fs.Bool("hide-quick-activate", false, "hide quick-activate hints")

	fs.Bool("wrap", false, "wrap the selection at the list ends")
	fs.Bool("disable-mouse", false, "ignore mouse input")
	fs.Bool("click-to-close", false, "close when clicking outside the surface")

	fs.String("log-file", "", "path to the log file")
	fs.String("log-level", "", "log level (debug, info, warn, error)")
	fs.Bool("trace", false, "enable verbose JSON trace logging")
}

// configPath returns the config file to read and whether it was asked for
// explicitly.
func configPath(fs *pflag.FlagSet, env map[string]string) (string, bool) {
	if p, _ := fs.GetString("config"); p != "" {
		return p, true
	}
	if p := envOrDefault(env, envPrefix+"CONFIG", ""); p != "" {
		return p, true
	}
	base := envOrDefault(env, "XDG_CONFIG_HOME", "")
	if base == "" {
		home := envOrDefault(env, "HOME", "")
		if home == "" {
			return "", false
		}
		base = filepath.Join(home, ".config")
	}
	return filepath.Join(base, "popup-launcher", "config.toml"), false
}

// applyEnv layers POPUP_LAUNCHER_* values over the config file. Flags set on
// the command line still win.
func applyEnv(v *viper.Viper, fs *pflag.FlagSet, env map[string]string) {
	for flagName, key := range viperFlags {
		if fs.Changed(flagName) {
			continue
		}
		if val, ok := env[envPrefix+strings.ToUpper(key)]; ok && strings.TrimSpace(val) != "" {
			v.Set(key, val)
		}
	}
	for _, key := range []string{"exact_search_prefix", "global_argument_delimiter"} {
		if val, ok := env[envPrefix+strings.ToUpper(key)]; ok {
			v.Set(key, val)
		}
	}
}

func buildApp(fs *pflag.FlagSet, v *viper.Viper, file File) (app.Config, error) {
	str := func(name string) string { s, _ := fs.GetString(name); return s }
	flag := func(name string) bool { b, _ := fs.GetBool(name); return b }

	open := ipc.OpenParams{
		Provider:          str("provider"),
		Theme:             str("theme"),
		Query:             str("query"),
		Placeholder:       str("placeholder"),
		NoSearch:          flag("no-search"),
		NoHints:           flag("no-hints"),
		InputOnly:         flag("input-only"),
		ParamClose:        flag("close"),
		HideQuickActivate: flag("hide-quick-activate"),
		Dmenu:             flag("dmenu"),
		KeepOpen:          flag("keep-open"),
		ExitAfter:         flag("exit-after"),
	}
	index, _ := fs.GetInt("current-index")
	if index < 0 {
		return app.Config{}, fmt.Errorf("current-index must be >= 0 (got %d)", index)
	}
	open.CurrentIndex = index
	for name, dst := range map[string]**int{
		"width":      &open.Width,
		"height":     &open.Height,
		"min-width":  &open.MinWidth,
		"max-width":  &open.MaxWidth,
		"min-height": &open.MinHeight,
		"max-height": &open.MaxHeight,
	} {
		if !fs.Changed(name) {
			continue
		}
		n, _ := fs.GetInt(name)
		if n < 0 {
			return app.Config{}, fmt.Errorf("%s must be >= 0 (got %d)", name, n)
		}
		*dst = &n
	}

	keybinds := DefaultKeybinds()
	for name, keys := range file.Keybinds {
		keybinds[name] = keys
	}

	providers := make(map[string]app.ProviderBinds, len(file.Providers))
	for name, pf := range file.Providers {
		actions, err := descriptors(name, pf.Actions)
		if err != nil {
			return app.Config{}, err
		}
		global, err := descriptors(name, pf.Global)
		if err != nil {
			return app.Config{}, err
		}
		providers[name] = app.ProviderBinds{Actions: actions, Global: global}
	}

	service := flag("service")
	connect := flag("connect")
	if service && connect {
		return app.Config{}, errors.New("--service and --connect are mutually exclusive")
	}

	return app.Config{
		SocketPath: v.GetString("socket"),
		Service:    service,
		Connect:    connect,
		Open:       open,
		Theme:      v.GetString("theme"),
		ThemesDir:  v.GetString("themes_dir"),
		Options: controller.Options{
			Wrap:              v.GetBool("selection_wrap"),
			DisableMouse:      v.GetBool("disable_mouse"),
			ClickToClose:      v.GetBool("click_to_close"),
			ExactPrefix:       v.GetString("exact_search_prefix"),
			ArgumentDelimiter: v.GetString("global_argument_delimiter"),
		},
		Keybinds:         keybinds,
		Providers:        providers,
		DefaultProviders: file.DefaultProviders,
		Prefixes:         file.Prefixes,
		Menus:            file.Menus.Entries,
	}, nil
}

func descriptors(providerName string, in []DescriptorFile) ([]action.Descriptor, error) {
	out := make([]action.Descriptor, 0, len(in))
	for _, d := range in {
		if d.Action == "" {
			return nil, fmt.Errorf("provider %s: action without a name", providerName)
		}
		desc := action.Descriptor{Action: d.Action, Default: d.Default, Bind: d.Bind, Label: d.Label}
		if d.After != "" {
			after, err := action.ParseAfter(d.After)
			if err != nil {
				return nil, fmt.Errorf("provider %s action %q: %w", providerName, d.Action, err)
			}
			desc.After = &after
		}
		out = append(out, desc)
	}
	return out, nil
}

func changedFlags(fs *pflag.FlagSet) map[string]string {
	out := make(map[string]string)
	fs.Visit(func(f *pflag.Flag) {
		out[f.Name] = f.Value.String()
	})
	return out
}

func parseEnv(environ []string) map[string]string {
	values := make(map[string]string, len(environ))
	for _, entry := range environ {
		if entry == "" {
			continue
		}
		parts := strings.SplitN(entry, "=", 2)
		if len(parts) != 2 {
			continue
		}
		values[parts[0]] = parts[1]
	}
	return values
}

func envOrDefault(env map[string]string, key, fallback string) string {
	if v, ok := env[key]; ok {
		return v
	}
	return fallback
}

// MustLoad returns configuration or exits.
func MustLoad() Config {
	cfg, err := Load()
	if errors.Is(err, ErrHelp) {
		os.Exit(0)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		os.Exit(2)
	}
	return cfg
}

// Validate checks the parts of the configuration that need the whole picture.
func Validate(cfg Config) error {
	if cfg.App.Open.Dmenu && cfg.App.Service {
		return errors.New("--dmenu cannot be combined with --service; use --connect")
	}
	for _, p := range cfg.App.Prefixes {
		if p.Prefix == "" || p.Provider == "" {
			return fmt.Errorf("prefix entry needs both prefix and provider (got prefix %q, provider %q)", p.Prefix, p.Provider)
		}
	}
	return nil
}
