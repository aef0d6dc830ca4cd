package action

import (
	"errors"
	"fmt"
	"strings"
)

// After names what happens to the session once an action has executed.
type After int

const (
	AfterClose After = iota
	AfterKeepOpen
	AfterClearReload
	AfterReload
	AfterAsyncReload
	AfterAsyncClearReload
	AfterNothing
)

// ErrUnknownAfter is returned when a configured after-action has no matching variant.
var ErrUnknownAfter = errors.New("unknown after action")

var afterNames = map[After]string{
	AfterClose:            "Close",
	AfterKeepOpen:         "KeepOpen",
	AfterClearReload:      "ClearReload",
	AfterReload:           "Reload",
	AfterAsyncReload:      "AsyncReload",
	AfterAsyncClearReload: "AsyncClearReload",
	AfterNothing:          "Nothing",
}

func (a After) String() string {
	if name, ok := afterNames[a]; ok {
		return name
	}
	return fmt.Sprintf("After(%d)", int(a))
}

// IsAsync reports whether the variant is deferred until a provider refresh completes.
func (a After) IsAsync() bool {
	return a == AfterAsyncReload || a == AfterAsyncClearReload
}

// Sync maps an async variant to the effect applied once its refresh has landed.
func (a After) Sync() After {
	switch a {
	case AfterAsyncReload:
		return AfterReload
	case AfterAsyncClearReload:
		return AfterClearReload
	default:
		return a
	}
}

// ParseAfter decodes the configuration spelling of an after-action. Both
// "ClearReload" and "clear_reload" are accepted.
func ParseAfter(raw string) (After, error) {
	norm := strings.ToLower(strings.ReplaceAll(strings.TrimSpace(raw), "_", ""))
	for after, name := range afterNames {
		if strings.ToLower(name) == norm {
			return after, nil
		}
	}
	return AfterClose, fmt.Errorf("%w: %q", ErrUnknownAfter, raw)
}
