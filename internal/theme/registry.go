package theme

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/atomicstack/popup-launcher/internal/logging"
	"github.com/atomicstack/popup-launcher/internal/session"
)

// DefaultName is the theme every lookup falls back to.
const DefaultName = "default"

// ExitMissingSurface is the process exit code used when no surface resolves.
const ExitMissingSurface = 130

// ErrNoSurface is returned when neither the current theme nor the default
// theme has a surface.
var ErrNoSurface = errors.New("no usable theme surface")

//go:embed layouts/default.toml
var defaultLayout []byte

// DefaultLayout returns the built-in layout used for the default theme.
func DefaultLayout() []byte {
	return append([]byte(nil), defaultLayout...)
}

// Registry maps theme names to surfaces.
type Registry struct {
	surfaces map[string]*Surface
	fatal    func(code int, err error)
}

// NewRegistry returns an empty registry whose fatal hook prints the error
// and exits the process.
func NewRegistry() *Registry {
	return &Registry{
		surfaces: make(map[string]*Surface),
		fatal: func(code int, err error) {
			fmt.Fprintf(os.Stderr, "popup-launcher: %v\n", err)
			os.Exit(code)
		},
	}
}

// SetFatal replaces the hook run by MustResolveActive.
func (r *Registry) SetFatal(fn func(code int, err error)) {
	if fn != nil {
		r.fatal = fn
	}
}

// Build creates a surface for every layout. The built-in default layout is
// added when layouts has no "default" entry. A theme that fails records
// "Theme [name]: <err>" in the session error and is skipped. Returns the
// number of surfaces built.
func (r *Registry) Build(layouts map[string][]byte, st *session.State) int {
	names := make([]string, 0, len(layouts)+1)
	for name := range layouts {
		names = append(names, name)
	}
	if _, ok := layouts[DefaultName]; !ok {
		names = append(names, DefaultName)
	}
	sort.Strings(names)
	built := 0
	for _, name := range names {
		data, ok := layouts[name]
		if !ok {
			data = defaultLayout
		}
		surface, err := buildSurface(name, data)
		if err != nil {
			msg := fmt.Sprintf("Theme [%s]: %v", name, err)
			st.SetError(msg)
			logging.Warn(msg)
			continue
		}
		r.surfaces[name] = surface
		built++
	}
	return built
}

func buildSurface(name string, data []byte) (*Surface, error) {
	l, err := ParseLayout(data)
	if err != nil {
		return nil, err
	}
	return NewSurface(name, l)
}

// Refresh re-reads a theme layout. Existing surfaces are updated in place;
// unknown themes get a new surface.
func (r *Registry) Refresh(name string, data []byte) error {
	l, err := ParseLayout(data)
	if err != nil {
		return fmt.Errorf("Theme [%s]: %w", name, err)
	}
	if existing, ok := r.surfaces[name]; ok {
		if _, valid := validBorders[l.Window.Border]; !valid {
			return fmt.Errorf("Theme [%s]: unknown border %q", name, l.Window.Border)
		}
		existing.apply(l)
		return nil
	}
	surface, err := NewSurface(name, l)
	if err != nil {
		return fmt.Errorf("Theme [%s]: %w", name, err)
	}
	r.surfaces[name] = surface
	return nil
}

// Get returns the surface registered for name.
func (r *Registry) Get(name string) (*Surface, bool) {
	s, ok := r.surfaces[name]
	return s, ok
}

// Names lists the registered themes, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.surfaces))
	for name := range r.surfaces {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ResolveActive returns the surface of the session's current theme, falling
// back to the default theme.
func (r *Registry) ResolveActive(st *session.State) (*Surface, error) {
	if s, ok := r.surfaces[st.Theme]; ok {
		return s, nil
	}
	if s, ok := r.surfaces[DefaultName]; ok {
		return s, nil
	}
	return nil, fmt.Errorf("%w: theme %q and %q unavailable", ErrNoSurface, st.Theme, DefaultName)
}

// MustResolveActive is ResolveActive that treats a missing surface as fatal.
// Should the fatal hook return, a detached built-in surface is handed back
// so callers never see nil.
func (r *Registry) MustResolveActive(st *session.State) *Surface {
	s, err := r.ResolveActive(st)
	if err != nil {
		logging.Error(err)
		r.fatal(ExitMissingSurface, err)
		s, err = buildSurface(DefaultName, DefaultLayout())
		if err != nil {
			panic(err)
		}
	}
	return s
}

// LoadDir reads every "<name>.toml" layout in dir. A missing directory is
// not an error.
func LoadDir(dir string) (map[string][]byte, error) {
	layouts := map[string][]byte{}
	if strings.TrimSpace(dir) == "" {
		return layouts, nil
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return layouts, nil
		}
		return nil, fmt.Errorf("read themes dir: %w", err)
	}
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".toml" {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			return nil, fmt.Errorf("read theme %s: %w", e.Name(), err)
		}
		layouts[NameFromPath(e.Name())] = data
	}
	return layouts, nil
}

// NameFromPath maps a layout file path to its theme name.
func NameFromPath(path string) string {
	return strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
}
