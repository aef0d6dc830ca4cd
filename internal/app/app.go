package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/sync/errgroup"

	"github.com/atomicstack/popup-launcher/internal/action"
	"github.com/atomicstack/popup-launcher/internal/controller"
	"github.com/atomicstack/popup-launcher/internal/ipc"
	"github.com/atomicstack/popup-launcher/internal/logging"
	"github.com/atomicstack/popup-launcher/internal/provider"
	"github.com/atomicstack/popup-launcher/internal/query"
)

// Config describes user-provided application options.
type Config struct {
	SocketPath string
	// Service keeps the launcher running hidden, opened over the socket.
	Service bool
	// Connect forwards Open to a running service instead of starting a UI.
	Connect bool
	// Open is the session opened at startup, or sent with Connect.
	Open ipc.OpenParams

	Theme     string
	ThemesDir string
	Options   controller.Options

	// Keybinds maps global action names to their keys.
	Keybinds         map[string][]string
	Providers        map[string]ProviderBinds
	DefaultProviders []string
	Prefixes         []query.Prefix
	Menus            []provider.MenuEntry
}

// ProviderBinds are the configured action descriptors of one provider.
type ProviderBinds struct {
	Actions []action.Descriptor
	Global  []action.Descriptor
}

// ExitError asks main to exit with Code.
type ExitError struct {
	Code int
}

func (e ExitError) Error() string {
	return fmt.Sprintf("exit status %d", e.Code)
}

var (
	stdin  io.Reader = os.Stdin
	stdout io.Writer = os.Stdout
)

// Run bootstraps and executes the Bubble Tea program, or hands the request
// to a running service with Connect.
func Run(cfg Config) error {
	if cfg.Connect {
		return connect(context.Background(), cfg, stdin, stdout)
	}

	rt, err := build(cfg, stdout)
	if err != nil {
		return err
	}
	defer rt.watcher.Stop()

	if cfg.Open.Dmenu && !cfg.Service {
		go func() {
			if err := rt.dmenu.ReadLines(stdin); err != nil {
				logging.Error(err)
			}
		}()
	}

	program := tea.NewProgram(rt.model, programOptions(cfg)...)
	rt.themes.SetFatal(func(code int, err error) {
		_ = program.ReleaseTerminal()
		fmt.Fprintf(os.Stderr, "popup-launcher: %v\n", err)
		os.Exit(code)
	})

	if cfg.Service {
		err = runService(program, rt)
	} else {
		_, err = program.Run()
	}
	if errors.Is(err, tea.ErrProgramKilled) {
		return nil
	}
	if err != nil {
		return err
	}
	if code := rt.model.ExitCode(); code != 0 {
		return ExitError{Code: code}
	}
	return nil
}

func programOptions(cfg Config) []tea.ProgramOption {
	opts := []tea.ProgramOption{tea.WithAltScreen()}
	if !cfg.Options.DisableMouse {
		opts = append(opts, tea.WithMouseAllMotion())
	}
	if cfg.Open.Dmenu && !cfg.Service {
		// stdin carries the lines and stdout the answer.
		opts = append(opts, tea.WithInputTTY(), tea.WithOutput(os.Stderr))
	}
	return opts
}

// runService serves the socket for as long as the program runs.
func runService(program *tea.Program, rt *runtime) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := rt.server.Serve(gctx); err != nil {
			program.Quit()
			return fmt.Errorf("serve %s: %w", rt.server.SocketPath(), err)
		}
		return nil
	})
	g.Go(func() error {
		defer cancel()
		_, err := program.Run()
		return err
	})
	return g.Wait()
}
