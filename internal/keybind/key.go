package keybind

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

// Mods is a modifier mask.
type Mods uint8

const (
	ModCtrl Mods = 1 << iota
	ModAlt
	ModShift
)

// ErrBadKey is returned for bind strings that do not name a key.
var ErrBadKey = errors.New("invalid key")

// Key is a key code plus its modifier mask. Named keys use lower case
// ("enter", "tab", "f1"); printable keys keep the rune as typed.
type Key struct {
	Code string
	Mods Mods
}

var modNames = map[string]Mods{
	"ctrl":    ModCtrl,
	"control": ModCtrl,
	"alt":     ModAlt,
	"meta":    ModAlt,
	"shift":   ModShift,
}

var codeAliases = map[string]string{
	"return":    "enter",
	"escape":    "esc",
	"space":     " ",
	"spacebar":  " ",
	"bs":        "backspace",
	"del":       "delete",
	"pageup":    "pgup",
	"pagedown":  "pgdown",
	"arrowup":   "up",
	"arrowdown": "down",
}

// Parse reads bind strings such as "ctrl+j", "shift+tab", "f1" or "enter".
// Bubble Tea's key names ("ctrl+j", "alt+enter", "shift+tab", "ctrl+@")
// parse to the same Key as the configured spelling.
func Parse(s string) (Key, error) {
	if s == " " {
		return Key{Code: " "}, nil
	}
	raw := strings.TrimSpace(s)
	if raw == "" {
		return Key{}, fmt.Errorf("%w: empty", ErrBadKey)
	}
	if raw == "+" {
		return Key{Code: "+"}, nil
	}
	parts := strings.Split(raw, "+")
	// "ctrl++" ends with an empty part: the key itself is "+".
	if strings.HasSuffix(raw, "++") {
		parts = append(parts[:len(parts)-2], "+")
	}
	var k Key
	for _, part := range parts[:len(parts)-1] {
		mod, ok := modNames[strings.ToLower(strings.TrimSpace(part))]
		if !ok {
			return Key{}, fmt.Errorf("%w: unknown modifier %q in %q", ErrBadKey, part, s)
		}
		k.Mods |= mod
	}
	code := parts[len(parts)-1]
	if code == "" {
		return Key{}, fmt.Errorf("%w: missing key in %q", ErrBadKey, s)
	}
	if utf8.RuneCountInString(code) > 1 {
		code = strings.ToLower(code)
		if alias, ok := codeAliases[code]; ok {
			code = alias
		}
	}
	k.Code = code
	return k, nil
}

// MustParse is Parse for literals known to be valid.
func MustParse(s string) Key {
	k, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return k
}

func (k Key) String() string {
	var b strings.Builder
	if k.Mods&ModCtrl != 0 {
		b.WriteString("ctrl+")
	}
	if k.Mods&ModAlt != 0 {
		b.WriteString("alt+")
	}
	if k.Mods&ModShift != 0 {
		b.WriteString("shift+")
	}
	if k.Code == " " {
		b.WriteString("space")
	} else {
		b.WriteString(k.Code)
	}
	return b.String()
}

// Accept is the key that confirms the current input in dmenu mode.
var Accept = Key{Code: "enter"}
