package ipc

import (
	"errors"
	"os"
	"path/filepath"
)

const (
	// SocketFileName is the filename of the service socket within the runtime dir.
	SocketFileName = "launcher.sock"

	// ActionOpen shows the launcher. Dmenu requests keep the connection open
	// until a value is chosen or the session is cancelled.
	ActionOpen = "open"
	// ActionPing checks that the service is running.
	ActionPing = "ping"

	StatusOK    = "ok"
	StatusError = "error"

	// Cancelled is sent to an attached client whose session ended without a value.
	Cancelled = "CNCLD"

	envSocket = "POPUP_LAUNCHER_SOCKET"
)

// Request is one service request. Each connection carries exactly one.
type Request struct {
	Action string      `json:"action"`
	Open   *OpenParams `json:"open,omitempty"`
}

// OpenParams configure the session opened by a request.
type OpenParams struct {
	Provider    string `json:"provider,omitempty"`
	Theme       string `json:"theme,omitempty"`
	Query       string `json:"query,omitempty"`
	Placeholder string `json:"placeholder,omitempty"`

	Width     *int `json:"width,omitempty"`
	Height    *int `json:"height,omitempty"`
	MinWidth  *int `json:"minWidth,omitempty"`
	MaxWidth  *int `json:"maxWidth,omitempty"`
	MinHeight *int `json:"minHeight,omitempty"`
	MaxHeight *int `json:"maxHeight,omitempty"`

	NoSearch          bool `json:"noSearch,omitempty"`
	NoHints           bool `json:"noHints,omitempty"`
	InputOnly         bool `json:"inputOnly,omitempty"`
	ParamClose        bool `json:"paramClose,omitempty"`
	HideQuickActivate bool `json:"hideQuickActivate,omitempty"`

	Dmenu        bool     `json:"dmenu,omitempty"`
	KeepOpen     bool     `json:"keepOpen,omitempty"`
	ExitAfter    bool     `json:"exitAfter,omitempty"`
	CurrentIndex int      `json:"currentIndex,omitempty"`
	Lines        []string `json:"lines,omitempty"`
}

// Response answers a request. For dmenu requests Result carries the chosen
// value, or Cancelled.
type Response struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
	Result string `json:"result,omitempty"`
}

// DefaultSocketPath returns the expected location of the service socket.
func DefaultSocketPath() (string, error) {
	if env := os.Getenv(envSocket); env != "" {
		return env, nil
	}
	base := os.Getenv("XDG_RUNTIME_DIR")
	if base == "" {
		base = os.TempDir()
		if base == "" {
			return "", errors.New("no runtime directory available")
		}
	}
	return filepath.Join(base, "popup-launcher", SocketFileName), nil
}
