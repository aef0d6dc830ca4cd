package app

import (
	"context"
	"fmt"
	"io"
	"os"

	"golang.org/x/term"

	"github.com/atomicstack/popup-launcher/internal/controller"
	"github.com/atomicstack/popup-launcher/internal/ipc"
	"github.com/atomicstack/popup-launcher/internal/provider"
)

// isTerminalFn reports whether r is an interactive terminal; replaced in tests.
var isTerminalFn = func(r io.Reader) bool {
	f, ok := r.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// connect sends cfg.Open to a running service. Dmenu requests forward the
// piped lines and print the chosen value; a cancelled session exits 130.
func connect(ctx context.Context, cfg Config, in io.Reader, out io.Writer) error {
	client, err := ipc.NewClient(cfg.SocketPath)
	if err != nil {
		return fmt.Errorf("service socket: %w", err)
	}
	params := cfg.Open
	if params.Dmenu && params.Lines == nil && !isTerminalFn(in) {
		lines, err := readDmenuLines(in)
		if err != nil {
			return err
		}
		params.Lines = lines
	}
	result, err := client.Open(ctx, params)
	if err != nil {
		return fmt.Errorf("open launcher: %w", err)
	}
	if !params.Dmenu {
		return nil
	}
	if result == ipc.Cancelled {
		return ExitError{Code: controller.ExitCancelled}
	}
	_, err = fmt.Fprintln(out, result)
	return err
}

// readDmenuLines reads lines with the same rules the dmenu provider applies
// to its own stdin.
func readDmenuLines(in io.Reader) ([]string, error) {
	d := provider.NewDmenu(nil)
	if err := d.ReadLines(in); err != nil {
		return nil, err
	}
	return d.Lines(), nil
}
