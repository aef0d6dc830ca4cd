package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/rs/zerolog"
)

const defaultLogFile = "popup-launcher.log"

var (
	mu           sync.Mutex
	traceEnabled bool
	logPath      = defaultLogFile
	level        = zerolog.InfoLevel
	// output overrides the log file, used by tests.
	output io.Writer
)

// Error writes errors to the shared log file.
func Error(err error) {
	if err == nil {
		return
	}
	withLogger(func(l zerolog.Logger) {
		l.Error().Err(err).Send()
	})
}

// Warn records a non-fatal problem.
func Warn(msg string) {
	withLogger(func(l zerolog.Logger) {
		l.Warn().Msg(msg)
	})
}

// SetTraceEnabled toggles emission of structured trace entries.
func SetTraceEnabled(enabled bool) {
	mu.Lock()
	traceEnabled = enabled
	mu.Unlock()
}

// TraceEnabled reports whether trace entries are emitted.
func TraceEnabled() bool {
	mu.Lock()
	defer mu.Unlock()
	return traceEnabled
}

// Trace appends a structured entry to the shared log when tracing is enabled.
func Trace(event string, payload interface{}) {
	if !TraceEnabled() {
		return
	}
	withLogger(func(l zerolog.Logger) {
		evt := l.WithLevel(zerolog.TraceLevel).Str("event", event)
		if payload != nil {
			evt = evt.Interface("payload", payload)
		}
		evt.Send()
	})
}

// SetLevel parses a level name ("debug", "info", …). Unknown names keep the current level.
func SetLevel(name string) {
	parsed, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(name)))
	if err != nil || name == "" {
		return
	}
	mu.Lock()
	level = parsed
	mu.Unlock()
}

// Configure sets the log destination. Empty values fall back to the default
// path. Directories are created automatically when missing.
func Configure(path string) {
	mu.Lock()
	defer mu.Unlock()
	if strings.TrimSpace(path) == "" {
		logPath = defaultLogFile
		return
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "unable to create log directory: %v\n", err)
		logPath = defaultLogFile
		return
	}
	logPath = path
}

// SetOutput redirects entries to w instead of the log file. A nil writer restores the file.
func SetOutput(w io.Writer) {
	mu.Lock()
	output = w
	mu.Unlock()
}

func withLogger(fn func(zerolog.Logger)) {
	mu.Lock()
	w := output
	path := logPath
	lvl := level
	enabled := traceEnabled
	mu.Unlock()

	if enabled {
		lvl = zerolog.TraceLevel
	}
	if w == nil {
		f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "logging failed: %v\n", err)
			return
		}
		defer f.Close()
		w = f
	}
	fn(zerolog.New(w).Level(lvl).With().Timestamp().Logger())
}
