package action

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Wire names of the provider-agnostic actions understood by the global bind table.
const (
	NameClose           = "close"
	NameSelectNext      = "select_next"
	NameSelectPrevious  = "select_previous"
	NameToggleExact     = "toggle_exact"
	NameResumeLastQuery = "resume_last_query"
	NameQuickActivate   = "quickactivate"
	NameMenusParent     = "menus:parent"

	prefixSet      = "set:"
	prefixProvider = "provider:"
)

// ErrBadQuickActivate is returned when a quick-activate suffix is not an unsigned index.
var ErrBadQuickActivate = errors.New("invalid quick activate index")

// Kind tags a decoded action.
type Kind int

const (
	// KindActivate is a provider action handed to the provider layer.
	KindActivate Kind = iota
	KindSet
	KindProvider
	KindMenusParent
	KindClose
	KindSelectNext
	KindSelectPrevious
	KindToggleExact
	KindResumeLastQuery
	KindQuickActivate
	// KindUnknown is a global bind whose name the controller does not know.
	KindUnknown
)

// Action is the decoded form of a bind's action string.
type Action struct {
	Kind Kind
	// Name is the raw wire string.
	Name string
	// Arg carries the set or provider name for the switch variants.
	Arg string
	// Index is the absolute list position for quick-activate.
	Index int
}

// IsMeta reports whether the action is a pure session-state transition.
func (a Action) IsMeta() bool {
	return a.Kind == KindSet || a.Kind == KindProvider
}

// DecodeProvider decodes an action bound to a provider or to a provider's items.
func DecodeProvider(raw string) Action {
	switch {
	case strings.HasPrefix(raw, prefixSet):
		return Action{Kind: KindSet, Name: raw, Arg: strings.TrimPrefix(raw, prefixSet)}
	case strings.HasPrefix(raw, prefixProvider):
		return Action{Kind: KindProvider, Name: raw, Arg: strings.TrimPrefix(raw, prefixProvider)}
	case raw == NameMenusParent:
		return Action{Kind: KindMenusParent, Name: raw}
	default:
		return Action{Kind: KindActivate, Name: raw}
	}
}

// DecodeGlobal decodes an action from the global bind table.
func DecodeGlobal(raw string) (Action, error) {
	switch raw {
	case NameClose:
		return Action{Kind: KindClose, Name: raw}, nil
	case NameSelectNext:
		return Action{Kind: KindSelectNext, Name: raw}, nil
	case NameSelectPrevious:
		return Action{Kind: KindSelectPrevious, Name: raw}, nil
	case NameToggleExact:
		return Action{Kind: KindToggleExact, Name: raw}, nil
	case NameResumeLastQuery:
		return Action{Kind: KindResumeLastQuery, Name: raw}, nil
	}
	if strings.HasPrefix(raw, NameQuickActivate) {
		_, suffix, ok := strings.Cut(raw, ":")
		if !ok {
			return Action{}, fmt.Errorf("%w: %q", ErrBadQuickActivate, raw)
		}
		idx, err := strconv.ParseUint(suffix, 10, 32)
		if err != nil {
			return Action{}, fmt.Errorf("%w: %q", ErrBadQuickActivate, raw)
		}
		return Action{Kind: KindQuickActivate, Name: raw, Index: int(idx)}, nil
	}
	return Action{Kind: KindUnknown, Name: raw}, nil
}

// QuickActivate returns the wire name for the quick-activate action at index i.
func QuickActivate(i int) string {
	return NameQuickActivate + ":" + strconv.Itoa(i)
}
